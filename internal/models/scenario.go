package models

import (
	"time"
)

// Scenario is the aggregate root of one complete allocation plan. Its
// teachers, classes, hour banks and allocations are child rows keyed by
// scenario_id; every multi-row change runs inside one transaction and bumps
// Version, which callers echo back for optimistic concurrency.
type Scenario struct {
	ID          string    `gorm:"primaryKey;type:char(36)" json:"id"`
	UserID      string    `gorm:"type:char(36);not null;index:idx_scenario_user" json:"-"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	Version     uint64    `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	HourBanks   []HourBank   `gorm:"foreignKey:ScenarioID;constraint:OnDelete:CASCADE" json:"hourBanks"`
	Teachers    []Teacher    `gorm:"foreignKey:ScenarioID;constraint:OnDelete:CASCADE" json:"teachers"`
	Classes     []Class      `gorm:"foreignKey:ScenarioID;constraint:OnDelete:CASCADE" json:"classes"`
	Allocations []Allocation `gorm:"foreignKey:ScenarioID;constraint:OnDelete:CASCADE" json:"allocations"`
}

// HourBank tracks how much of one hour type a scenario owns and how much of
// it has been consumed. remainingHours is maintained alongside the other two
// at every write site; it is not a database constraint.
type HourBank struct {
	ID             string  `gorm:"primaryKey;type:char(36)" json:"id"`
	ScenarioID     string  `gorm:"type:char(36);not null;index:idx_bank_scenario" json:"-"`
	HourTypeID     string  `gorm:"type:char(36);not null" json:"hourTypeId"`
	TotalHours     float64 `gorm:"not null;default:0" json:"totalHours"`
	AllocatedHours float64 `gorm:"not null;default:0" json:"allocatedHours"`
	RemainingHours float64 `gorm:"not null;default:0" json:"remainingHours"`
}

// Teacher is a scenario-scoped staff member. AllocatedHours is a derived
// cache recomputed whenever the teacher's allocation set changes.
type Teacher struct {
	ID               string  `gorm:"primaryKey;type:char(36)" json:"id"`
	ScenarioID       string  `gorm:"type:char(36);not null;index:idx_teacher_scenario" json:"-"`
	Name             string  `gorm:"size:100;not null" json:"name"`
	Email            string  `gorm:"size:255" json:"email,omitempty"`
	Phone            string  `gorm:"size:20" json:"phone,omitempty"`
	IDNumber         string  `gorm:"column:id_number;size:9;not null" json:"idNumber"`
	Subject          string  `gorm:"size:100" json:"subject,omitempty"`
	MaxHours         float64 `gorm:"not null;default:0" json:"maxHours"`
	AllocatedHours   float64 `gorm:"not null;default:0" json:"allocatedHours"`
	HomeroomClassIDs IDList  `gorm:"type:json" json:"homeroomClassIds"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Class is a scenario-scoped class.
type Class struct {
	ID                 string `gorm:"primaryKey;type:char(36)" json:"id"`
	ScenarioID         string `gorm:"type:char(36);not null;index:idx_class_scenario" json:"-"`
	Name               string `gorm:"size:50;not null" json:"name"`
	Grade              string `gorm:"size:10;not null" json:"grade"`
	StudentCount       int    `gorm:"not null;default:0" json:"studentCount"`
	HomeroomTeacherID  string `gorm:"type:char(36)" json:"homeroomTeacherId,omitempty"`
	IsSpecialEducation bool   `json:"isSpecialEducation"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Allocation grants hours of one hour type to one teacher, optionally tied
// to classes. ClassIDs is the canonical representation; an empty list means
// a general (non-class-specific) allocation. The legacy singular classId is
// folded into ClassIDs at the JSON boundary.
type Allocation struct {
	ID         string    `gorm:"primaryKey;type:char(36)" json:"id"`
	ScenarioID string    `gorm:"type:char(36);not null;index:idx_allocation_scenario" json:"-"`
	TeacherID  string    `gorm:"type:char(36);not null;index:idx_allocation_teacher" json:"teacherId"`
	HourTypeID string    `gorm:"type:char(36);not null" json:"hourTypeId"`
	ClassIDs   IDList    `gorm:"type:json" json:"classIds"`
	Hours      float64   `gorm:"not null;default:0" json:"hours"`
	Notes      string    `gorm:"size:500" json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IsGeneral reports whether the allocation is not tied to any class.
func (a Allocation) IsGeneral() bool {
	return len(a.ClassIDs) == 0
}

// TableName overrides the table name for Scenario
func (Scenario) TableName() string {
	return "scenarios"
}

// TableName overrides the table name for HourBank
func (HourBank) TableName() string {
	return "hour_banks"
}

// TableName overrides the table name for Teacher
func (Teacher) TableName() string {
	return "teachers"
}

// TableName overrides the table name for Class
func (Class) TableName() string {
	return "classes"
}

// TableName overrides the table name for Allocation
func (Allocation) TableName() string {
	return "allocations"
}
