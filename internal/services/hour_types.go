package services

import (
	"regexp"
	"strings"

	"github.com/ekrako/AcadeMaster/internal/models"
	"github.com/ekrako/AcadeMaster/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// defaultColor is assigned to new hour types created without one.
const defaultColor = "#3B82F6"

// HourTypeInput carries the user-editable fields of a hour type.
type HourTypeInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	IsClassHour bool   `json:"isClassHour"`
}

// ListHourTypes returns the user's hour types ordered by name.
func ListHourTypes(db *gorm.DB, userID string) ([]models.HourType, error) {
	var hourTypes []models.HourType
	if err := db.Where("user_id = ?", userID).Order("name").Find(&hourTypes).Error; err != nil {
		return nil, err
	}
	return hourTypes, nil
}

// GetHourType returns one of the user's hour types by id.
func GetHourType(db *gorm.DB, userID, id string) (*models.HourType, error) {
	var hourType models.HourType
	err := db.Where("user_id = ? AND id = ?", userID, id).First(&hourType).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &types.NotFoundError{Resource: "hour type"}
		}
		return nil, err
	}
	return &hourType, nil
}

// CreateHourType validates and creates a hour type for the user.
func CreateHourType(db *gorm.DB, userID string, input HourTypeInput) (*models.HourType, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Color == "" {
		input.Color = defaultColor
	}
	if errs := validateHourType(db, userID, "", input); len(errs) > 0 {
		return nil, errs
	}

	hourType := models.HourType{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		Color:       input.Color,
		IsClassHour: input.IsClassHour,
	}
	if err := db.Create(&hourType).Error; err != nil {
		return nil, err
	}
	return &hourType, nil
}

// UpdateHourType validates and updates one of the user's hour types.
func UpdateHourType(db *gorm.DB, userID, id string, input HourTypeInput) (*models.HourType, error) {
	hourType, err := GetHourType(db, userID, id)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if errs := validateHourType(db, userID, id, input); len(errs) > 0 {
		return nil, errs
	}

	hourType.Name = input.Name
	hourType.Description = strings.TrimSpace(input.Description)
	hourType.Color = input.Color
	hourType.IsClassHour = input.IsClassHour
	if err := db.Save(hourType).Error; err != nil {
		return nil, err
	}
	return hourType, nil
}

// DeleteHourType removes a hour type. Banks and allocations that reference
// it are left in place and filtered out at read time.
func DeleteHourType(db *gorm.DB, userID, id string) error {
	result := db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.HourType{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &types.NotFoundError{Resource: "hour type"}
	}
	return nil
}

// validateHourType checks name length, case-insensitive uniqueness among the
// user's hour types (excluding excludeID when editing) and the color format.
func validateHourType(db *gorm.DB, userID, excludeID string, input HourTypeInput) types.ValidationErrors {
	errs := types.ValidationErrors{}

	if input.Name == "" {
		errs["name"] = "שם סוג השעה הוא שדה חובה"
	} else if len([]rune(input.Name)) < 2 || len([]rune(input.Name)) > 50 {
		errs["name"] = "שם סוג השעה חייב להכיל בין 2 ל-50 תווים"
	} else {
		var count int64
		query := db.Model(&models.HourType{}).
			Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(input.Name))
		if excludeID != "" {
			query = query.Where("id <> ?", excludeID)
		}
		query.Count(&count)
		if count > 0 {
			errs["name"] = "סוג שעה עם שם זה כבר קיים"
		}
	}

	if !hexColorRe.MatchString(input.Color) {
		errs["color"] = "צבע חייב להיות בפורמט #RRGGBB"
	}

	return errs
}
