// allocations_test.go
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
	"strings"
	"testing"

	"github.com/ekrako/AcadeMaster/internal/services"
	"github.com/ekrako/AcadeMaster/internal/types"
)

// TestReplaceTeacherAllocations tests the whole-set replacement flow
func TestReplaceTeacherAllocations(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	special := createHourType(t, db, "שעות שילוב")

	scenario := createScenario(t, db, "תשפ\"ו", map[string]float64{
		frontal.ID: 100,
		special.ID: 40,
	})
	teacher, _ := addTeacher(t, db, scenario, "רות כהן", 30)
	scenario = reload(t, db, scenario.ID)
	classA, _ := addClass(t, db, scenario, "א1", "א")
	scenario = reload(t, db, scenario.ID)
	classB, _ := addClass(t, db, scenario, "ב1", "ב")
	scenario = reload(t, db, scenario.ID)

	updated, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{
			frontal.ID: {
				GeneralHours: 4,
				ClassHours:   map[string]float64{classA.ID: 10, classB.ID: 6},
			},
			special.ID: {
				ClassHours: map[string]float64{classA.ID: 5},
			},
		})
	if err != nil {
		t.Fatalf("ReplaceTeacherAllocations failed: %v", err)
	}

	// One general row plus one per class with nonzero hours
	if len(updated.Allocations) != 4 {
		t.Errorf("Expected 4 allocations, got %d", len(updated.Allocations))
	}
	generals := 0
	for _, a := range updated.Allocations {
		if a.IsGeneral() {
			generals++
			if a.Hours != 4 {
				t.Errorf("Expected general allocation of 4 hours, got %v", a.Hours)
			}
		}
	}
	if generals != 1 {
		t.Errorf("Expected 1 general allocation, got %d", generals)
	}

	// Bank bookkeeping
	frontalBank := bankFor(t, updated, frontal.ID)
	if frontalBank.AllocatedHours != 20 || frontalBank.RemainingHours != 80 {
		t.Errorf("Frontal bank allocated/remaining = %v/%v, want 20/80",
			frontalBank.AllocatedHours, frontalBank.RemainingHours)
	}
	specialBank := bankFor(t, updated, special.ID)
	if specialBank.AllocatedHours != 5 || specialBank.RemainingHours != 35 {
		t.Errorf("Special bank allocated/remaining = %v/%v, want 5/35",
			specialBank.AllocatedHours, specialBank.RemainingHours)
	}

	// Teacher's allocated hours cache
	if teacherFor(t, updated, teacher.ID).AllocatedHours != 25 {
		t.Errorf("Teacher allocated hours = %v, want 25", teacherFor(t, updated, teacher.ID).AllocatedHours)
	}

	// Version bumped
	if updated.Version != scenario.Version+1 {
		t.Errorf("Version = %d, want %d", updated.Version, scenario.Version+1)
	}
}

// TestReplaceReturnsHoursBeforeDrawing verifies availability is checked
// as-if the teacher's current hours were first returned to the bank
func TestReplaceReturnsHoursBeforeDrawing(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "תרחיש בסיס", map[string]float64{frontal.ID: 20})
	teacher, _ := addTeacher(t, db, scenario, "דנה לוי", 30)
	scenario = reload(t, db, scenario.ID)

	// First pass takes 18 of the 20 bank hours
	updated, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{frontal.ID: {GeneralHours: 18}})
	if err != nil {
		t.Fatalf("First replace failed: %v", err)
	}

	// Second pass takes 20: legal only because the 18 come back first
	updated, err = services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, updated.Version,
		map[string]services.AllocationEntry{frontal.ID: {GeneralHours: 20}})
	if err != nil {
		t.Fatalf("Replace within returned hours failed: %v", err)
	}

	bank := bankFor(t, updated, frontal.ID)
	if bank.AllocatedHours != 20 || bank.RemainingHours != 0 {
		t.Errorf("Bank allocated/remaining = %v/%v, want 20/0", bank.AllocatedHours, bank.RemainingHours)
	}

	// 21 hours can never fit a 20-hour bank
	_, err = services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, updated.Version,
		map[string]services.AllocationEntry{frontal.ID: {GeneralHours: 21}})
	errs, ok := err.(types.ValidationErrors)
	if !ok {
		t.Fatalf("Expected validation errors, got %v", err)
	}
	if !strings.Contains(errs[frontal.ID], "זמינות רק") {
		t.Errorf("Unexpected bank error message: %q", errs[frontal.ID])
	}
}

// TestReplaceRejectsCellLimits tests the per-cell 0-40 bounds
func TestReplaceRejectsCellLimits(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "תרחיש", map[string]float64{frontal.ID: 200})
	teacher, _ := addTeacher(t, db, scenario, "יעל מזרחי", 60)
	scenario = reload(t, db, scenario.ID)
	class, _ := addClass(t, db, scenario, "ג2", "ג")
	scenario = reload(t, db, scenario.ID)

	_, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{
			frontal.ID: {ClassHours: map[string]float64{class.ID: 41}},
		})
	errs, ok := err.(types.ValidationErrors)
	if !ok {
		t.Fatalf("Expected validation errors, got %v", err)
	}
	key := frontal.ID + "-" + class.ID
	if errs[key] != "לא ניתן להקצות יותר מ-40 שעות לכיתה אחת" {
		t.Errorf("Unexpected cell error for %s: %q", key, errs[key])
	}

	_, err = services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{
			frontal.ID: {GeneralHours: -1},
		})
	errs, ok = err.(types.ValidationErrors)
	if !ok {
		t.Fatalf("Expected validation errors, got %v", err)
	}
	if errs[frontal.ID] != "מספר השעות לא יכול להיות שלילי" {
		t.Errorf("Unexpected negative-hours error: %q", errs[frontal.ID])
	}
}

// TestReplaceRejectsTeacherMax tests the teacher grand total cap
func TestReplaceRejectsTeacherMax(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "תרחיש", map[string]float64{frontal.ID: 100})
	teacher, _ := addTeacher(t, db, scenario, "משה פרץ", 10)
	scenario = reload(t, db, scenario.ID)

	_, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{frontal.ID: {GeneralHours: 11}})
	errs, ok := err.(types.ValidationErrors)
	if !ok {
		t.Fatalf("Expected validation errors, got %v", err)
	}
	if !strings.Contains(errs["maxHours"], "עולה על המקסימום") {
		t.Errorf("Unexpected max-hours error: %q", errs["maxHours"])
	}
}

// TestReplaceVersionConflict tests stale version rejection
func TestReplaceVersionConflict(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "תרחיש", map[string]float64{frontal.ID: 50})
	teacher, _ := addTeacher(t, db, scenario, "אורית שמש", 30)
	scenario = reload(t, db, scenario.ID)

	// First writer succeeds
	if _, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{frontal.ID: {GeneralHours: 5}}); err != nil {
		t.Fatalf("First replace failed: %v", err)
	}

	// Second writer with the stale token is rejected with no state change
	_, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{frontal.ID: {GeneralHours: 9}})
	if _, ok := err.(*types.VersionError); !ok {
		t.Fatalf("Expected version error, got %v", err)
	}

	current := reload(t, db, scenario.ID)
	if bankFor(t, current, frontal.ID).AllocatedHours != 5 {
		t.Errorf("Stale write changed bank state: allocated = %v, want 5",
			bankFor(t, current, frontal.ID).AllocatedHours)
	}
}

// TestReplaceZeroEntriesClearsAllocations tests that an all-zero entry set
// removes the teacher's allocations and returns everything to the banks
func TestReplaceZeroEntriesClearsAllocations(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "תרחיש", map[string]float64{frontal.ID: 50})
	teacher, _ := addTeacher(t, db, scenario, "גיל עמר", 30)
	scenario = reload(t, db, scenario.ID)

	updated, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{frontal.ID: {GeneralHours: 12}})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	updated, err = services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, updated.Version,
		map[string]services.AllocationEntry{frontal.ID: {GeneralHours: 0}})
	if err != nil {
		t.Fatalf("Zero replace failed: %v", err)
	}

	if len(updated.Allocations) != 0 {
		t.Errorf("Expected no allocations, got %d", len(updated.Allocations))
	}
	bank := bankFor(t, updated, frontal.ID)
	if bank.AllocatedHours != 0 || bank.RemainingHours != 50 {
		t.Errorf("Bank allocated/remaining = %v/%v, want 0/50", bank.AllocatedHours, bank.RemainingHours)
	}
	if teacherFor(t, updated, teacher.ID).AllocatedHours != 0 {
		t.Errorf("Teacher allocated hours = %v, want 0", teacherFor(t, updated, teacher.ID).AllocatedHours)
	}
}

// TestCreateAndRemoveAllocation tests single-record bookkeeping
func TestCreateAndRemoveAllocation(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "תרחיש", map[string]float64{frontal.ID: 30})
	teacher, _ := addTeacher(t, db, scenario, "שרה גולן", 20)
	scenario = reload(t, db, scenario.ID)
	class, _ := addClass(t, db, scenario, "ד1", "ד")
	scenario = reload(t, db, scenario.ID)

	allocation, newVersion, err := services.CreateAllocation(db, testUser, scenario.ID, scenario.Version,
		services.AllocationInput{
			TeacherID:  teacher.ID,
			HourTypeID: frontal.ID,
			ClassID:    class.ID,
			Hours:      8,
		})
	if err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}
	if allocation.IsGeneral() {
		t.Error("Allocation with a class should not be general")
	}
	if len(allocation.ClassIDs) != 1 || allocation.ClassIDs[0] != class.ID {
		t.Errorf("Legacy classId not folded into classIds: %v", allocation.ClassIDs)
	}

	current := reload(t, db, scenario.ID)
	if bankFor(t, current, frontal.ID).RemainingHours != 22 {
		t.Errorf("Bank remaining = %v, want 22", bankFor(t, current, frontal.ID).RemainingHours)
	}

	newVersion, err = services.RemoveAllocation(db, testUser, scenario.ID, allocation.ID, newVersion)
	if err != nil {
		t.Fatalf("RemoveAllocation failed: %v", err)
	}

	current = reload(t, db, scenario.ID)
	if len(current.Allocations) != 0 {
		t.Errorf("Expected no allocations after removal, got %d", len(current.Allocations))
	}
	if bankFor(t, current, frontal.ID).RemainingHours != 30 {
		t.Errorf("Bank remaining = %v, want 30", bankFor(t, current, frontal.ID).RemainingHours)
	}
	if current.Version != newVersion {
		t.Errorf("Reloaded version = %d, want %d", current.Version, newVersion)
	}
}

// TestRemoveTeacherReconcilesBanks tests that deleting a teacher returns
// their hours to the banks and drops their allocations
func TestRemoveTeacherReconcilesBanks(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "תרחיש", map[string]float64{frontal.ID: 40})
	teacher, _ := addTeacher(t, db, scenario, "עדי ברק", 30)
	scenario = reload(t, db, scenario.ID)

	updated, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{frontal.ID: {GeneralHours: 15}})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if _, err := services.RemoveTeacher(db, testUser, scenario.ID, teacher.ID, updated.Version); err != nil {
		t.Fatalf("RemoveTeacher failed: %v", err)
	}

	current := reload(t, db, scenario.ID)
	if len(current.Teachers) != 0 {
		t.Errorf("Expected no teachers, got %d", len(current.Teachers))
	}
	if len(current.Allocations) != 0 {
		t.Errorf("Expected no allocations, got %d", len(current.Allocations))
	}
	bank := bankFor(t, current, frontal.ID)
	if bank.AllocatedHours != 0 || bank.RemainingHours != 40 {
		t.Errorf("Bank allocated/remaining = %v/%v, want 0/40", bank.AllocatedHours, bank.RemainingHours)
	}
}
