package services

import (
	"strings"

	"github.com/ekrako/AcadeMaster/internal/models"
	"github.com/ekrako/AcadeMaster/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClassInput carries the user-editable class fields.
type ClassInput struct {
	Name               string `json:"name"`
	Grade              string `json:"grade"`
	StudentCount       int    `json:"studentCount"`
	HomeroomTeacherID  string `json:"homeroomTeacherId"`
	IsSpecialEducation bool   `json:"isSpecialEducation"`
}

// AddClass validates and adds a class to the scenario.
func AddClass(db *gorm.DB, userID, scenarioID string, version uint64, input ClassInput) (*models.Class, uint64, error) {
	var class *models.Class
	var newVersion uint64

	err := db.Transaction(func(tx *gorm.DB) error {
		scenario, err := lockScenario(tx, userID, scenarioID, version)
		if err != nil {
			return err
		}

		normalizeClassInput(&input)
		if errs := validateClass(scenario, "", input); len(errs) > 0 {
			return errs
		}

		class = &models.Class{
			ID:                 uuid.NewString(),
			ScenarioID:         scenarioID,
			Name:               input.Name,
			Grade:              input.Grade,
			StudentCount:       input.StudentCount,
			HomeroomTeacherID:  input.HomeroomTeacherID,
			IsSpecialEducation: input.IsSpecialEducation,
		}
		if err := tx.Create(class).Error; err != nil {
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
	return class, newVersion, nil
}

// UpdateClass validates and updates a class within the scenario.
func UpdateClass(db *gorm.DB, userID, scenarioID, classID string, version uint64, input ClassInput) (*models.Class, uint64, error) {
	var class *models.Class
	var newVersion uint64

	err := db.Transaction(func(tx *gorm.DB) error {
		scenario, err := lockScenario(tx, userID, scenarioID, version)
		if err != nil {
			return err
		}

		existing := findClass(scenario, classID)
		if existing == nil {
			return &types.NotFoundError{Resource: "class"}
		}

		normalizeClassInput(&input)
		if errs := validateClass(scenario, classID, input); len(errs) > 0 {
			return errs
		}

		existing.Name = input.Name
		existing.Grade = input.Grade
		existing.StudentCount = input.StudentCount
		existing.HomeroomTeacherID = input.HomeroomTeacherID
		existing.IsSpecialEducation = input.IsSpecialEducation
		if err := tx.Save(existing).Error; err != nil {
			return err
		}
		if err := bumpVersion(tx, scenario); err != nil {
			return err
		}
		class = existing
		newVersion = scenario.Version
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return class, newVersion, nil
}

// RemoveClass deletes a class. Allocations that reference it are left in
// place; reports fall back to the raw id for unresolvable classes.
func RemoveClass(db *gorm.DB, userID, scenarioID, classID string, version uint64) (uint64, error) {
	var newVersion uint64

	err := db.Transaction(func(tx *gorm.DB) error {
		scenario, err := lockScenario(tx, userID, scenarioID, version)
		if err != nil {
			return err
		}

		class := findClass(scenario, classID)
		if class == nil {
			return &types.NotFoundError{Resource: "class"}
		}
		if err := tx.Delete(class).Error; err != nil {
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

func normalizeClassInput(input *ClassInput) {
	input.Name = strings.TrimSpace(input.Name)
	input.Grade = strings.TrimSpace(input.Grade)
}

func findClass(scenario *models.Scenario, classID string) *models.Class {
	for i := range scenario.Classes {
		if scenario.Classes[i].ID == classID {
			return &scenario.Classes[i]
		}
	}
	return nil
}

func validateClass(scenario *models.Scenario, excludeID string, input ClassInput) types.ValidationErrors {
	errs := types.ValidationErrors{}

	if input.Name == "" {
		errs["name"] = "שם הכיתה הוא שדה חובה"
	} else if len([]rune(input.Name)) < 2 {
		errs["name"] = "שם הכיתה חייב להכיל לפחות 2 תווים"
	} else if len([]rune(input.Name)) > 50 {
		errs["name"] = "שם הכיתה לא יכול להכיל יותר מ-50 תווים"
	} else {
		for _, c := range scenario.Classes {
			if c.ID != excludeID && strings.EqualFold(c.Name, input.Name) {
				errs["name"] = "כיתה עם שם זה כבר קיימת"
				break
			}
		}
	}

	if input.Grade == "" {
		errs["grade"] = "שכבה היא שדה חובה"
	}
	if input.StudentCount < 1 || input.StudentCount > 50 {
		errs["studentCount"] = "מספר תלמידים חייב להיות בין 1 ל-50"
	}

	return errs
}
