// lifecycle.go
//
// Hour bank allocation management for primary schools
// Copyright (c) 2026 ekrako (https://github.com/ekrako)
//
// This file is part of AcadeMaster.
// AcadeMaster is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// AcadeMaster is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with AcadeMaster.
// If not, see <https://www.gnu.org/licenses/>.

package services

import (
	"strings"
	"time"

	"github.com/ekrako/AcadeMaster/internal/models"
	"github.com/ekrako/AcadeMaster/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExportFormatVersion tags exported scenario files.
const ExportFormatVersion = "1.0"

const (
	duplicateSuffix = " - עותק"
	importSuffix    = " (מיובא)"
)

// ScenarioExport is the portable scenario file: the scenario with its child
// rows plus the hour type definitions its banks and allocations reference,
// so another account can reconstruct the registry entries it lacks.
type ScenarioExport struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exportedAt"`
	Scenario   models.Scenario   `json:"scenario"`
	HourTypes  []models.HourType `json:"hourTypes"`
}

// ImportValidation partitions an export file's hour types against the
// importing user's registry. IsValid is always true: missing types are
// created or skipped at import time, never a reason to refuse the file.
type ImportValidation struct {
	IsValid           bool              `json:"isValid"`
	MissingHourTypes  []models.HourType `json:"missingHourTypes"`
	ExistingHourTypes []models.HourType `json:"existingHourTypes"`
	Warnings          []string          `json:"warnings"`
}

// DuplicateScenario deep-copies a scenario under a fresh id. Teachers,
// classes and allocations get new ids with cross-references rewritten, the
// copy starts inactive, and aggregates are recomputed from the copied
// allocation set.
func DuplicateScenario(db *gorm.DB, userID, id string) (*models.Scenario, error) {
	var copied *models.Scenario

	err := db.Transaction(func(tx *gorm.DB) error {
		source, err := GetScenario(tx, userID, id)
		if err != nil {
			return err
		}

		dup := cloneScenario(source, userID, source.Name+duplicateSuffix)
		dup.IsActive = false
		RecomputeAggregates(dup)

		if err := tx.Create(dup).Error; err != nil {
			return err
		}
		copied = dup
		return nil
	})
	if err != nil {
		return nil, err
	}
	return copied, nil
}

// ExportScenario builds the portable file for a scenario: banks with a zero
// total are dropped, and only hour types actually referenced by the
// remaining banks or allocations travel with it.
func ExportScenario(db *gorm.DB, userID, id string) (*ScenarioExport, error) {
	scenario, err := GetScenario(db, userID, id)
	if err != nil {
		return nil, err
	}

	banks := make([]models.HourBank, 0, len(scenario.HourBanks))
	referenced := make(map[string]bool)
	for _, bank := range scenario.HourBanks {
		if bank.TotalHours > 0 {
			banks = append(banks, bank)
			referenced[bank.HourTypeID] = true
		}
	}
	for _, a := range scenario.Allocations {
		referenced[a.HourTypeID] = true
	}
	scenario.HourBanks = banks

	hourTypes := make([]models.HourType, 0, len(referenced))
	for hourTypeID := range referenced {
		hourType, err := GetHourType(db, userID, hourTypeID)
		if err != nil {
			if _, ok := err.(*types.NotFoundError); ok {
				continue
			}
			return nil, err
		}
		hourTypes = append(hourTypes, *hourType)
	}

	return &ScenarioExport{
		Version:    ExportFormatVersion,
		ExportedAt: time.Now().UTC(),
		Scenario:   *scenario,
		HourTypes:  hourTypes,
	}, nil
}

// ValidateScenarioImport previews what importing the file would do for this
// user: which hour types already exist (matched by id or name) and which
// would have to be created, plus advisory warnings.
func ValidateScenarioImport(db *gorm.DB, userID string, export *ScenarioExport) (*ImportValidation, error) {
	owned, err := ListHourTypes(db, userID)
	if err != nil {
		return nil, err
	}

	result := &ImportValidation{
		IsValid:           true,
		MissingHourTypes:  []models.HourType{},
		ExistingHourTypes: []models.HourType{},
		Warnings:          []string{},
	}

	for _, imported := range export.HourTypes {
		match := matchHourType(owned, imported)
		if match == nil {
			if strings.TrimSpace(imported.Name) == "" {
				result.Warnings = append(result.Warnings,
					"קובץ הייצוא מכיל סוג שעה ללא שם")
				continue
			}
			result.MissingHourTypes = append(result.MissingHourTypes, imported)
			continue
		}
		result.ExistingHourTypes = append(result.ExistingHourTypes, *match)
		if match.Color != imported.Color {
			result.Warnings = append(result.Warnings,
				"לסוג השעה \""+match.Name+"\" מוגדר צבע שונה מזה שבקובץ")
		}
		if match.IsClassHour != imported.IsClassHour {
			result.Warnings = append(result.Warnings,
				"לסוג השעה \""+match.Name+"\" מוגדרת שיטת הקצאה שונה מזו שבקובץ")
		}
	}

	if len(export.Scenario.HourBanks) == 0 {
		result.Warnings = append(result.Warnings,
			"התרחיש המיובא אינו מכיל בנקי שעות")
	}

	return result, nil
}

// ImportScenario persists an exported scenario as a new scenario of this
// user. Hour type references are remapped onto the user's registry by id or
// name; unmatched types are created when createMissing is set and otherwise
// dropped along with their banks and allocations. All child entities get
// fresh ids.
func ImportScenario(db *gorm.DB, userID string, export *ScenarioExport, createMissing bool) (*models.Scenario, error) {
	var imported *models.Scenario

	err := db.Transaction(func(tx *gorm.DB) error {
		owned, err := ListHourTypes(tx, userID)
		if err != nil {
			return err
		}

		hourTypeIDs := types.NewIDMap()
		for _, candidate := range export.HourTypes {
			if match := matchHourType(owned, candidate); match != nil {
				hourTypeIDs.Put(candidate.ID, match.ID)
				continue
			}
			if !createMissing || strings.TrimSpace(candidate.Name) == "" {
				continue
			}
			created, err := CreateHourType(tx, userID, HourTypeInput{
				Name:        candidate.Name,
				Description: candidate.Description,
				Color:       candidate.Color,
				IsClassHour: candidate.IsClassHour,
			})
			if err != nil {
				return err
			}
			owned = append(owned, *created)
			hourTypeIDs.Put(candidate.ID, created.ID)
		}

		source := export.Scenario
		dup := cloneScenario(&source, userID, source.Name+importSuffix)
		dup.IsActive = false

		banks := dup.HourBanks[:0]
		for _, bank := range dup.HourBanks {
			if !hourTypeIDs.Has(bank.HourTypeID) {
				continue
			}
			bank.HourTypeID = hourTypeIDs.New(bank.HourTypeID)
			banks = append(banks, bank)
		}
		dup.HourBanks = banks

		allocations := dup.Allocations[:0]
		for _, a := range dup.Allocations {
			if !hourTypeIDs.Has(a.HourTypeID) {
				continue
			}
			a.HourTypeID = hourTypeIDs.New(a.HourTypeID)
			allocations = append(allocations, a)
		}
		dup.Allocations = allocations

		RecomputeAggregates(dup)
		if err := tx.Create(dup).Error; err != nil {
			return err
		}
		imported = dup
		return nil
	})
	if err != nil {
		return nil, err
	}
	return imported, nil
}

// cloneScenario builds an unsaved deep copy of a scenario under the given
// name, with fresh ids everywhere and teacher/class cross-references
// rewritten. Aggregates are left for the caller to recompute.
func cloneScenario(source *models.Scenario, userID, name string) *models.Scenario {
	teacherIDs := types.NewIDMap()
	for _, t := range source.Teachers {
		teacherIDs.Put(t.ID, uuid.NewString())
	}
	classIDs := types.NewIDMap()
	for _, c := range source.Classes {
		classIDs.Put(c.ID, uuid.NewString())
	}

	dup := &models.Scenario{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: source.Description,
		IsActive:    source.IsActive,
	}

	dup.HourBanks = make([]models.HourBank, 0, len(source.HourBanks))
	for _, bank := range source.HourBanks {
		bank.ID = uuid.NewString()
		bank.ScenarioID = dup.ID
		dup.HourBanks = append(dup.HourBanks, bank)
	}

	dup.Teachers = make([]models.Teacher, 0, len(source.Teachers))
	for _, t := range source.Teachers {
		t.ID = teacherIDs.New(t.ID)
		t.ScenarioID = dup.ID
		t.HomeroomClassIDs = models.IDList(classIDs.Remap(t.HomeroomClassIDs))
		dup.Teachers = append(dup.Teachers, t)
	}

	dup.Classes = make([]models.Class, 0, len(source.Classes))
	for _, c := range source.Classes {
		c.ID = classIDs.New(c.ID)
		c.ScenarioID = dup.ID
		if c.HomeroomTeacherID != "" {
			c.HomeroomTeacherID = teacherIDs.New(c.HomeroomTeacherID)
		}
		dup.Classes = append(dup.Classes, c)
	}

	dup.Allocations = make([]models.Allocation, 0, len(source.Allocations))
	for _, a := range source.Allocations {
		if !teacherIDs.Has(a.TeacherID) {
			continue
		}
		a.ID = uuid.NewString()
		a.ScenarioID = dup.ID
		a.TeacherID = teacherIDs.New(a.TeacherID)
		a.ClassIDs = models.IDList(classIDs.Remap(a.ClassIDs))
		a.CreatedAt = time.Time{}
		dup.Allocations = append(dup.Allocations, a)
	}

	return dup
}

// matchHourType finds the user's hour type matching an imported one, by id
// first and case-insensitive name second.
func matchHourType(owned []models.HourType, candidate models.HourType) *models.HourType {
	for i := range owned {
		if owned[i].ID == candidate.ID {
			return &owned[i]
		}
	}
	name := strings.ToLower(strings.TrimSpace(candidate.Name))
	if name == "" {
		return nil
	}
	for i := range owned {
		if strings.ToLower(strings.TrimSpace(owned[i].Name)) == name {
			return &owned[i]
		}
	}
	return nil
}
