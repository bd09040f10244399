// services_test.go
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

package services_test

import (
	"testing"

	"github.com/ekrako/AcadeMaster/internal/models"
	"github.com/ekrako/AcadeMaster/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testUser = "user-1"

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.HourType{},
		&models.Scenario{},
		&models.HourBank{},
		&models.Teacher{},
		&models.Class{},
		&models.Allocation{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// createHourType adds an hour type to the test user's registry
func createHourType(t *testing.T, db *gorm.DB, name string) *models.HourType {
	t.Helper()

	hourType, err := services.CreateHourType(db, testUser, services.HourTypeInput{
		Name:  name,
		Color: "#3B82F6",
	})
	if err != nil {
		t.Fatalf("Failed to create hour type %q: %v", name, err)
	}
	return hourType
}

// createScenario creates a scenario with the given bank totals
func createScenario(t *testing.T, db *gorm.DB, name string, bankTotals map[string]float64) *models.Scenario {
	t.Helper()

	scenario, err := services.CreateScenario(db, testUser, services.ScenarioInput{
		Name:       name,
		BankTotals: bankTotals,
	})
	if err != nil {
		t.Fatalf("Failed to create scenario %q: %v", name, err)
	}
	return scenario
}

// addTeacher adds a teacher and returns it with the new scenario version
func addTeacher(t *testing.T, db *gorm.DB, scenario *models.Scenario, name string, maxHours float64) (*models.Teacher, uint64) {
	t.Helper()

	teacher, newVersion, err := services.AddTeacher(db, testUser, scenario.ID, scenario.Version, services.TeacherInput{
		Name:     name,
		MaxHours: maxHours,
	})
	if err != nil {
		t.Fatalf("Failed to add teacher %q: %v", name, err)
	}
	return teacher, newVersion
}

// addClass adds a class and returns it with the new scenario version
func addClass(t *testing.T, db *gorm.DB, scenario *models.Scenario, name, grade string) (*models.Class, uint64) {
	t.Helper()

	class, newVersion, err := services.AddClass(db, testUser, scenario.ID, scenario.Version, services.ClassInput{
		Name:         name,
		Grade:        grade,
		StudentCount: 25,
	})
	if err != nil {
		t.Fatalf("Failed to add class %q: %v", name, err)
	}
	return class, newVersion
}

// reload fetches the scenario's current state
func reload(t *testing.T, db *gorm.DB, scenarioID string) *models.Scenario {
	t.Helper()

	scenario, err := services.GetScenario(db, testUser, scenarioID)
	if err != nil {
		t.Fatalf("Failed to reload scenario: %v", err)
	}
	return scenario
}

// bankFor returns the scenario's bank for the given hour type
func bankFor(t *testing.T, scenario *models.Scenario, hourTypeID string) *models.HourBank {
	t.Helper()

	for i := range scenario.HourBanks {
		if scenario.HourBanks[i].HourTypeID == hourTypeID {
			return &scenario.HourBanks[i]
		}
	}
	t.Fatalf("No bank for hour type %s", hourTypeID)
	return nil
}

// teacherFor returns the scenario's teacher with the given id
func teacherFor(t *testing.T, scenario *models.Scenario, teacherID string) *models.Teacher {
	t.Helper()

	for i := range scenario.Teachers {
		if scenario.Teachers[i].ID == teacherID {
			return &scenario.Teachers[i]
		}
	}
	t.Fatalf("No teacher %s in scenario", teacherID)
	return nil
}
