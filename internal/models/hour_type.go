package models

import (
	"time"
)

// HourType is a user-scoped named category of work hours (teaching,
// coordination, etc.) referenced by hour banks and allocations.
// Deleting one does not cascade; stale references are filtered at read time.
type HourType struct {
	ID          string `gorm:"primaryKey;type:char(36)" json:"id"`
	UserID      string `gorm:"type:char(36);not null;index:idx_hour_type_user" json:"-"`
	Name        string `gorm:"size:50;not null" json:"name"`
	Description string `gorm:"size:255" json:"description,omitempty"`
	Color       string `gorm:"size:7;not null" json:"color"`
	IsClassHour bool   `json:"isClassHour"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName overrides the table name for HourType
func (HourType) TableName() string {
	return "hour_types"
}
