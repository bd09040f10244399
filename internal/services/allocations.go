// allocations.go
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
	"fmt"

	"github.com/ekrako/AcadeMaster/internal/models"
	"github.com/ekrako/AcadeMaster/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxCellHours caps a single allocation cell (general or per-class).
const MaxCellHours = 40

// AllocationEntry is one hour type's worth of a teacher's editing session:
// general hours plus hours per class. Entries may legitimately total zero —
// the session keeps empty rows visible — and produce no allocation rows.
type AllocationEntry struct {
	GeneralHours float64            `json:"generalHours"`
	ClassHours   map[string]float64 `json:"classHours"`
}

// Total returns general plus all class hours.
func (e AllocationEntry) Total() float64 {
	total := e.GeneralHours
	for _, h := range e.ClassHours {
		total += h
	}
	return total
}

// AllocationInput carries a single allocation to create. The legacy scalar
// classId is folded into ClassIDs before any processing.
type AllocationInput struct {
	TeacherID  string                 `json:"teacherId"`
	HourTypeID string                 `json:"hourTypeId"`
	ClassID    string                 `json:"classId"`
	ClassIDs   types.FlexList[string] `json:"classIds"`
	Hours      float64                `json:"hours"`
	Notes      string                 `json:"notes"`
}

// CanonicalClassIDs resolves the classId/classIds duality: the plural form
// wins, a bare classId becomes a one-element list.
func (in AllocationInput) CanonicalClassIDs() []string {
	if len(in.ClassIDs) > 0 {
		return in.ClassIDs.Slice()
	}
	if in.ClassID != "" {
		return []string{in.ClassID}
	}
	return nil
}

// ValidateAllocationEntries checks a proposed replacement allocation set for
// one teacher against cell limits, bank availability and the teacher's max
// hours. Cell errors are keyed "hourTypeId" or "hourTypeId-classId"; the
// returned map is empty when the set is admissible.
//
// Bank availability is checked as-if the change were applied: the teacher's
// current hours of each type return to the bank before the new total draws
// from it.
func ValidateAllocationEntries(scenario *models.Scenario, teacher *models.Teacher, entries map[string]AllocationEntry) types.ValidationErrors {
	errs := types.ValidationErrors{}

	currentByType := make(map[string]float64)
	for _, a := range scenario.Allocations {
		if a.TeacherID == teacher.ID {
			currentByType[a.HourTypeID] += a.Hours
		}
	}

	grandTotal := 0.0
	for hourTypeID, entry := range entries {
		if entry.GeneralHours < 0 {
			errs[hourTypeID] = "מספר השעות לא יכול להיות שלילי"
		} else if entry.GeneralHours > MaxCellHours {
			errs[hourTypeID] = "לא ניתן להקצות יותר מ-40 שעות לכיתה אחת"
		}
		for classID, hours := range entry.ClassHours {
			key := fmt.Sprintf("%s-%s", hourTypeID, classID)
			if hours < 0 {
				errs[key] = "מספר השעות לא יכול להיות שלילי"
			} else if hours > MaxCellHours {
				errs[key] = "לא ניתן להקצות יותר מ-40 שעות לכיתה אחת"
			}
		}

		total := entry.Total()
		grandTotal += total
		if total <= 0 {
			continue
		}

		bank := findBank(scenario, hourTypeID)
		if bank == nil {
			errs[hourTypeID] = "לא הוגדר בנק שעות מסוג זה בתרחיש"
			continue
		}
		available := bank.RemainingHours + currentByType[hourTypeID]
		if total > available {
			errs[hourTypeID] = fmt.Sprintf("זמינות רק %s שעות מסוג זה (כבר מוקצות %s)",
				formatHours(available), formatHours(currentByType[hourTypeID]))
		}
	}

	if grandTotal > teacher.MaxHours {
		errs["maxHours"] = fmt.Sprintf("סה\"כ שעות למורה (%s) עולה על המקסימום (%s)",
			formatHours(grandTotal), formatHours(teacher.MaxHours))
	}

	return errs
}

// ReplaceTeacherAllocations replaces the whole allocation set of one teacher
// in one transaction: prior allocations are removed and their hours returned
// to the banks, the new entries become allocation rows (one general row plus
// one row per class with nonzero hours), banks and the teacher's allocated
// hours cache are recomputed, and the scenario version is bumped.
func ReplaceTeacherAllocations(db *gorm.DB, userID, scenarioID, teacherID string, version uint64, entries map[string]AllocationEntry) (*models.Scenario, error) {
	var updated *models.Scenario

	err := db.Transaction(func(tx *gorm.DB) error {
		scenario, err := lockScenario(tx, userID, scenarioID, version)
		if err != nil {
			return err
		}
		teacher := findTeacher(scenario, teacherID)
		if teacher == nil {
			return &types.NotFoundError{Resource: "teacher"}
		}

		if errs := ValidateAllocationEntries(scenario, teacher, entries); len(errs) > 0 {
			return errs
		}

		// Return the teacher's prior hours to the banks and drop the rows.
		for _, a := range scenario.Allocations {
			if a.TeacherID != teacherID {
				continue
			}
			if bank := findBank(scenario, a.HourTypeID); bank != nil {
				bank.AllocatedHours -= a.Hours
				bank.RemainingHours += a.Hours
			}
		}
		if err := tx.Where("scenario_id = ? AND teacher_id = ?", scenarioID, teacherID).
			Delete(&models.Allocation{}).Error; err != nil {
			return err
		}

		// Create the replacement rows and draw from the banks.
		grandTotal := 0.0
		for hourTypeID, entry := range entries {
			totalForType := 0.0

			if entry.GeneralHours > 0 {
				allocation := models.Allocation{
					ID:         uuid.NewString(),
					ScenarioID: scenarioID,
					TeacherID:  teacherID,
					HourTypeID: hourTypeID,
					ClassIDs:   models.IDList{},
					Hours:      entry.GeneralHours,
				}
				if err := tx.Create(&allocation).Error; err != nil {
					return err
				}
				totalForType += entry.GeneralHours
			}
			for classID, hours := range entry.ClassHours {
				if hours <= 0 {
					continue
				}
				allocation := models.Allocation{
					ID:         uuid.NewString(),
					ScenarioID: scenarioID,
					TeacherID:  teacherID,
					HourTypeID: hourTypeID,
					ClassIDs:   models.IDList{classID},
					Hours:      hours,
				}
				if err := tx.Create(&allocation).Error; err != nil {
					return err
				}
				totalForType += hours
			}

			if totalForType > 0 {
				if bank := findBank(scenario, hourTypeID); bank != nil {
					bank.AllocatedHours += totalForType
					bank.RemainingHours -= totalForType
				}
				grandTotal += totalForType
			}
		}

		for i := range scenario.HourBanks {
			if err := tx.Save(&scenario.HourBanks[i]).Error; err != nil {
				return err
			}
		}

		teacher.AllocatedHours = grandTotal
		if err := tx.Save(teacher).Error; err != nil {
			return err
		}
		if err := bumpVersion(tx, scenario); err != nil {
			return err
		}

		updated, err = GetScenario(tx, userID, scenarioID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CreateAllocation appends a single allocation, drawing its hours from the
// bank and the teacher's remaining capacity.
func CreateAllocation(db *gorm.DB, userID, scenarioID string, version uint64, input AllocationInput) (*models.Allocation, uint64, error) {
	var allocation *models.Allocation
	var newVersion uint64

	err := db.Transaction(func(tx *gorm.DB) error {
		scenario, err := lockScenario(tx, userID, scenarioID, version)
		if err != nil {
			return err
		}
		teacher := findTeacher(scenario, input.TeacherID)
		if teacher == nil {
			return &types.NotFoundError{Resource: "teacher"}
		}

		errs := types.ValidationErrors{}
		if input.Hours <= 0 {
			errs[input.HourTypeID] = "מספר השעות חייב להיות גדול מאפס"
		} else if input.Hours > MaxCellHours {
			errs[input.HourTypeID] = "לא ניתן להקצות יותר מ-40 שעות לכיתה אחת"
		}
		bank := findBank(scenario, input.HourTypeID)
		if bank == nil {
			errs[input.HourTypeID] = "לא הוגדר בנק שעות מסוג זה בתרחיש"
		} else if input.Hours > bank.RemainingHours {
			errs[input.HourTypeID] = fmt.Sprintf("זמינות רק %s שעות מסוג זה (כבר מוקצות %s)",
				formatHours(bank.RemainingHours), formatHours(bank.AllocatedHours))
		}
		if teacher.AllocatedHours+input.Hours > teacher.MaxHours {
			errs["maxHours"] = fmt.Sprintf("סה\"כ שעות למורה (%s) עולה על המקסימום (%s)",
				formatHours(teacher.AllocatedHours+input.Hours), formatHours(teacher.MaxHours))
		}
		if len(errs) > 0 {
			return errs
		}

		allocation = &models.Allocation{
			ID:         uuid.NewString(),
			ScenarioID: scenarioID,
			TeacherID:  input.TeacherID,
			HourTypeID: input.HourTypeID,
			ClassIDs:   models.IDList(input.CanonicalClassIDs()),
			Hours:      input.Hours,
			Notes:      input.Notes,
		}
		if err := tx.Create(allocation).Error; err != nil {
			return err
		}

		bank.AllocatedHours += input.Hours
		bank.RemainingHours -= input.Hours
		if err := tx.Save(bank).Error; err != nil {
			return err
		}
		teacher.AllocatedHours += input.Hours
		if err := tx.Save(teacher).Error; err != nil {
			return err
		}
		if err := bumpVersion(tx, scenario); err != nil {
			return err
		}
		newVersion = scenario.Version
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return allocation, newVersion, nil
}

// RemoveAllocation deletes a single allocation and returns its hours to the
// bank and the teacher.
func RemoveAllocation(db *gorm.DB, userID, scenarioID, allocationID string, version uint64) (uint64, error) {
	var newVersion uint64

	err := db.Transaction(func(tx *gorm.DB) error {
		scenario, err := lockScenario(tx, userID, scenarioID, version)
		if err != nil {
			return err
		}

		var allocation *models.Allocation
		for i := range scenario.Allocations {
			if scenario.Allocations[i].ID == allocationID {
				allocation = &scenario.Allocations[i]
				break
			}
		}
		if allocation == nil {
			return &types.NotFoundError{Resource: "allocation"}
		}

		if bank := findBank(scenario, allocation.HourTypeID); bank != nil {
			bank.AllocatedHours -= allocation.Hours
			bank.RemainingHours += allocation.Hours
			if err := tx.Save(bank).Error; err != nil {
				return err
			}
		}
		if teacher := findTeacher(scenario, allocation.TeacherID); teacher != nil {
			teacher.AllocatedHours -= allocation.Hours
			if err := tx.Save(teacher).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(allocation).Error; err != nil {
			return err
		}
		if err := bumpVersion(tx, scenario); err != nil {
			return err
		}
		newVersion = scenario.Version
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newVersion, nil
}

// RecomputeAggregates rebuilds every bank's allocated/remaining hours and
// every teacher's allocated hours cache from the scenario's allocation set.
// Used after duplication and import, where copied aggregates may be stale.
func RecomputeAggregates(scenario *models.Scenario) {
	allocatedByType := make(map[string]float64)
	allocatedByTeacher := make(map[string]float64)
	for _, a := range scenario.Allocations {
		allocatedByType[a.HourTypeID] += a.Hours
		allocatedByTeacher[a.TeacherID] += a.Hours
	}

	for i := range scenario.HourBanks {
		bank := &scenario.HourBanks[i]
		bank.AllocatedHours = allocatedByType[bank.HourTypeID]
		bank.RemainingHours = bank.TotalHours - bank.AllocatedHours
	}
	for i := range scenario.Teachers {
		teacher := &scenario.Teachers[i]
		teacher.AllocatedHours = allocatedByTeacher[teacher.ID]
	}
}

// formatHours renders hours without a trailing ".0" for whole values.
func formatHours(h float64) string {
	if h == float64(int64(h)) {
		return fmt.Sprintf("%d", int64(h))
	}
	return fmt.Sprintf("%.1f", h)
}
