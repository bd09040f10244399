package services

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/ekrako/AcadeMaster/internal/models"
	"github.com/ekrako/AcadeMaster/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[\d\-+().\s]+$`)
)

// TeacherInput carries the user-editable teacher fields. A blank IDNumber
// triggers random unique 9-digit generation.
type TeacherInput struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	IDNumber         string   `json:"idNumber"`
	Subject          string   `json:"subject"`
	MaxHours         float64  `json:"maxHours"`
	HomeroomClassIDs []string `json:"homeroomClassIds"`
}

// AddTeacher validates and adds a teacher to the scenario.
func AddTeacher(db *gorm.DB, userID, scenarioID string, version uint64, input TeacherInput) (*models.Teacher, uint64, error) {
	var teacher *models.Teacher
	var newVersion uint64

	err := db.Transaction(func(tx *gorm.DB) error {
		scenario, err := lockScenario(tx, userID, scenarioID, version)
		if err != nil {
			return err
		}

		normalizeTeacherInput(&input)
		if input.IDNumber == "" {
			input.IDNumber = randomIDNumber(scenario.Teachers)
		}
		if errs := validateTeacher(scenario, "", input); len(errs) > 0 {
			return errs
		}

		teacher = &models.Teacher{
			ID:               uuid.NewString(),
			ScenarioID:       scenarioID,
			Name:             input.Name,
			Email:            input.Email,
			Phone:            input.Phone,
			IDNumber:         input.IDNumber,
			Subject:          input.Subject,
			MaxHours:         input.MaxHours,
			HomeroomClassIDs: models.IDList(input.HomeroomClassIDs),
		}
		if err := tx.Create(teacher).Error; err != nil {
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
	return teacher, newVersion, nil
}

// UpdateTeacher validates and updates a teacher within the scenario.
func UpdateTeacher(db *gorm.DB, userID, scenarioID, teacherID string, version uint64, input TeacherInput) (*models.Teacher, uint64, error) {
	var teacher *models.Teacher
	var newVersion uint64

	err := db.Transaction(func(tx *gorm.DB) error {
		scenario, err := lockScenario(tx, userID, scenarioID, version)
		if err != nil {
			return err
		}

		existing := findTeacher(scenario, teacherID)
		if existing == nil {
			return &types.NotFoundError{Resource: "teacher"}
		}

		normalizeTeacherInput(&input)
		if input.IDNumber == "" {
			input.IDNumber = existing.IDNumber
		}
		if errs := validateTeacher(scenario, teacherID, input); len(errs) > 0 {
			return errs
		}

		existing.Name = input.Name
		existing.Email = input.Email
		existing.Phone = input.Phone
		existing.IDNumber = input.IDNumber
		existing.Subject = input.Subject
		existing.MaxHours = input.MaxHours
		existing.HomeroomClassIDs = models.IDList(input.HomeroomClassIDs)
		if err := tx.Save(existing).Error; err != nil {
			return err
		}
		if err := bumpVersion(tx, scenario); err != nil {
			return err
		}
		teacher = existing
		newVersion = scenario.Version
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return teacher, newVersion, nil
}

// RemoveTeacher deletes a teacher together with their allocations, returning
// the allocated hours to the scenario's banks.
func RemoveTeacher(db *gorm.DB, userID, scenarioID, teacherID string, version uint64) (uint64, error) {
	var newVersion uint64

	err := db.Transaction(func(tx *gorm.DB) error {
		scenario, err := lockScenario(tx, userID, scenarioID, version)
		if err != nil {
			return err
		}

		teacher := findTeacher(scenario, teacherID)
		if teacher == nil {
			return &types.NotFoundError{Resource: "teacher"}
		}

		// Return the teacher's allocated hours to the banks before removal.
		for _, allocation := range scenario.Allocations {
			if allocation.TeacherID != teacherID {
				continue
			}
			if bank := findBank(scenario, allocation.HourTypeID); bank != nil {
				bank.AllocatedHours -= allocation.Hours
				bank.RemainingHours += allocation.Hours
				if err := tx.Save(bank).Error; err != nil {
					return err
				}
			}
		}
		if err := tx.Where("scenario_id = ? AND teacher_id = ?", scenarioID, teacherID).
			Delete(&models.Allocation{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(teacher).Error; err != nil {
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

func normalizeTeacherInput(input *TeacherInput) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.IDNumber = strings.TrimSpace(input.IDNumber)
	input.Subject = strings.TrimSpace(input.Subject)
}

func findTeacher(scenario *models.Scenario, teacherID string) *models.Teacher {
	for i := range scenario.Teachers {
		if scenario.Teachers[i].ID == teacherID {
			return &scenario.Teachers[i]
		}
	}
	return nil
}

func findBank(scenario *models.Scenario, hourTypeID string) *models.HourBank {
	for i := range scenario.HourBanks {
		if scenario.HourBanks[i].HourTypeID == hourTypeID {
			return &scenario.HourBanks[i]
		}
	}
	return nil
}

// randomIDNumber generates a random 9-digit id number not used by any
// teacher in the scenario.
func randomIDNumber(teachers []models.Teacher) string {
	used := make(map[string]bool, len(teachers))
	for _, t := range teachers {
		used[t.IDNumber] = true
	}
	for {
		candidate := fmt.Sprintf("%09d", rand.Intn(1_000_000_000))
		if !used[candidate] {
			return candidate
		}
	}
}

func validateTeacher(scenario *models.Scenario, excludeID string, input TeacherInput) types.ValidationErrors {
	errs := types.ValidationErrors{}

	if input.Name == "" {
		errs["name"] = "שם המורה הוא שדה חובה"
	} else if len([]rune(input.Name)) < 2 {
		errs["name"] = "שם המורה חייב להכיל לפחות 2 תווים"
	} else if len([]rune(input.Name)) > 100 {
		errs["name"] = "שם המורה לא יכול להכיל יותר מ-100 תווים"
	}

	for _, t := range scenario.Teachers {
		if t.ID != excludeID && t.IDNumber == input.IDNumber {
			errs["idNumber"] = "מספר תעודת זהות זה כבר קיים במערכת"
			break
		}
	}

	if input.Email != "" && !emailRe.MatchString(input.Email) {
		errs["email"] = "כתובת דוא\"ל לא תקינה"
	}
	if input.Phone != "" && !phoneRe.MatchString(input.Phone) {
		errs["phone"] = "מספר טלפון לא תקין"
	}
	if input.MaxHours < 1 || input.MaxHours > 60 {
		errs["maxHours"] = "מספר שעות מקסימלי חייב להיות בין 1 ל-60"
	}
	if len(input.HomeroomClassIDs) > 2 {
		errs["homeroomClassIds"] = "מורה יכול לחנך לכל היותר שתי כיתות"
	}

	return errs
}
