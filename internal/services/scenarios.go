package services

import (
	"strings"

	"github.com/ekrako/AcadeMaster/internal/models"
	"github.com/ekrako/AcadeMaster/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScenarioInput carries the user-editable scenario fields. BankTotals maps
// hourTypeId -> totalHours for the scenario's hour banks.
type ScenarioInput struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	IsActive    bool               `json:"isActive"`
	BankTotals  map[string]float64 `json:"bankTotals"`
}

// ListScenarios returns the user's scenarios with their child collections,
// most recently updated first.
func ListScenarios(db *gorm.DB, userID string) ([]models.Scenario, error) {
	var scenarios []models.Scenario
	err := db.Where("user_id = ?", userID).
		Preload("HourBanks").
		Preload("Teachers").
		Preload("Classes").
		Preload("Allocations").
		Order("updated_at DESC").
		Find(&scenarios).Error
	if err != nil {
		return nil, err
	}
	return scenarios, nil
}

// GetScenario loads one scenario aggregate with all child collections.
func GetScenario(db *gorm.DB, userID, id string) (*models.Scenario, error) {
	var scenario models.Scenario
	err := db.Where("user_id = ? AND id = ?", userID, id).
		Preload("HourBanks").
		Preload("Teachers").
		Preload("Classes").
		Preload("Allocations").
		First(&scenario).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &types.NotFoundError{Resource: "scenario"}
		}
		return nil, err
	}
	return &scenario, nil
}

// CreateScenario validates and creates a scenario with one hour bank per
// entry in BankTotals.
func CreateScenario(db *gorm.DB, userID string, input ScenarioInput) (*models.Scenario, error) {
	input.Name = strings.TrimSpace(input.Name)
	if errs := validateScenarioName(db, userID, "", input.Name); len(errs) > 0 {
		return nil, errs
	}

	scenario := models.Scenario{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		IsActive:    input.IsActive,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		banks, err := buildHourBanks(tx, userID, scenario.ID, input.BankTotals)
		if err != nil {
			return err
		}
		scenario.HourBanks = banks
		return tx.Create(&scenario).Error
	})
	if err != nil {
		return nil, err
	}
	return &scenario, nil
}

// UpdateScenario updates the scenario fields and bank totals. Existing bank
// allocatedHours are preserved and remainingHours recomputed; the version
// token must match or the update is rejected.
func UpdateScenario(db *gorm.DB, userID, id string, version uint64, input ScenarioInput) (*models.Scenario, error) {
	input.Name = strings.TrimSpace(input.Name)

	var updated *models.Scenario
	err := db.Transaction(func(tx *gorm.DB) error {
		scenario, err := lockScenario(tx, userID, id, version)
		if err != nil {
			return err
		}

		if errs := validateScenarioName(tx, userID, id, input.Name); len(errs) > 0 {
			return errs
		}

		scenario.Name = input.Name
		scenario.Description = strings.TrimSpace(input.Description)
		scenario.IsActive = input.IsActive

		if input.BankTotals != nil {
			if err := applyBankTotals(tx, userID, scenario, input.BankTotals); err != nil {
				return err
			}
		}

		if err := bumpVersion(tx, scenario); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(scenario).Error; err != nil {
			return err
		}
		updated = scenario
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteScenario hard-deletes the scenario and its child rows.
func DeleteScenario(db *gorm.DB, userID, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var scenario models.Scenario
		err := tx.Where("user_id = ? AND id = ?", userID, id).First(&scenario).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return &types.NotFoundError{Resource: "scenario"}
			}
			return err
		}

		for _, child := range []interface{}{
			&models.HourBank{}, &models.Teacher{}, &models.Class{}, &models.Allocation{},
		} {
			if err := tx.Where("scenario_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&scenario).Error
	})
}

// lockScenario loads the scenario aggregate FOR UPDATE and checks the
// caller's version token against the stored one.
func lockScenario(tx *gorm.DB, userID, id string, version uint64) (*models.Scenario, error) {
	var scenario models.Scenario
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND id = ?", userID, id).
		First(&scenario).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &types.NotFoundError{Resource: "scenario"}
		}
		return nil, err
	}
	if scenario.Version != version {
		return nil, &types.VersionError{}
	}

	err = tx.Where("user_id = ? AND id = ?", userID, id).
		Preload("HourBanks").
		Preload("Teachers").
		Preload("Classes").
		Preload("Allocations").
		First(&scenario).Error
	if err != nil {
		return nil, err
	}
	return &scenario, nil
}

// bumpVersion advances the scenario version, guarding against a concurrent
// writer that slipped between load and update.
func bumpVersion(tx *gorm.DB, scenario *models.Scenario) error {
	newVersion := scenario.Version + 1
	result := tx.Model(&models.Scenario{}).
		Where("id = ? AND version = ?", scenario.ID, scenario.Version).
		Update("version", newVersion)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &types.VersionError{}
	}
	scenario.Version = newVersion
	return nil
}

// buildHourBanks creates fresh banks for the given hourTypeId -> totalHours
// map, rejecting hour types the user does not own.
func buildHourBanks(tx *gorm.DB, userID, scenarioID string, totals map[string]float64) ([]models.HourBank, error) {
	banks := make([]models.HourBank, 0, len(totals))
	for hourTypeID, total := range totals {
		if _, err := GetHourType(tx, userID, hourTypeID); err != nil {
			return nil, err
		}
		if total < 0 {
			return nil, types.ValidationErrors{hourTypeID: "מספר השעות לא יכול להיות שלילי"}
		}
		banks = append(banks, models.HourBank{
			ID:             uuid.NewString(),
			ScenarioID:     scenarioID,
			HourTypeID:     hourTypeID,
			TotalHours:     total,
			AllocatedHours: 0,
			RemainingHours: total,
		})
	}
	return banks, nil
}

// applyBankTotals updates the scenario's banks to the given totals, creating
// banks for newly budgeted hour types and preserving allocated hours.
func applyBankTotals(tx *gorm.DB, userID string, scenario *models.Scenario, totals map[string]float64) error {
	existing := make(map[string]*models.HourBank, len(scenario.HourBanks))
	for i := range scenario.HourBanks {
		existing[scenario.HourBanks[i].HourTypeID] = &scenario.HourBanks[i]
	}

	for hourTypeID, total := range totals {
		if total < 0 {
			return types.ValidationErrors{hourTypeID: "מספר השעות לא יכול להיות שלילי"}
		}
		if bank, ok := existing[hourTypeID]; ok {
			bank.TotalHours = total
			bank.RemainingHours = total - bank.AllocatedHours
			if err := tx.Save(bank).Error; err != nil {
				return err
			}
			continue
		}

		if _, err := GetHourType(tx, userID, hourTypeID); err != nil {
			return err
		}
		bank := models.HourBank{
			ID:             uuid.NewString(),
			ScenarioID:     scenario.ID,
			HourTypeID:     hourTypeID,
			TotalHours:     total,
			AllocatedHours: 0,
			RemainingHours: total,
		}
		if err := tx.Create(&bank).Error; err != nil {
			return err
		}
		scenario.HourBanks = append(scenario.HourBanks, bank)
	}
	return nil
}

// validateScenarioName checks the 2-100 character rule and per-user
// uniqueness, excluding excludeID when editing.
func validateScenarioName(db *gorm.DB, userID, excludeID, name string) types.ValidationErrors {
	errs := types.ValidationErrors{}

	if name == "" {
		errs["name"] = "שם התרחיש הוא שדה חובה"
		return errs
	}
	if n := len([]rune(name)); n < 2 || n > 100 {
		errs["name"] = "שם התרחיש חייב להכיל בין 2 ל-100 תווים"
		return errs
	}

	var count int64
	query := db.Model(&models.Scenario{}).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name))
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	query.Count(&count)
	if count > 0 {
		errs["name"] = "תרחיש עם שם זה כבר קיים"
	}
	return errs
}
