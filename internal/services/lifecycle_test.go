package services_test

import (
	"strings"
	"testing"

	"github.com/ekrako/AcadeMaster/internal/services"
)

// TestDuplicateScenario tests the deep copy semantics
func TestDuplicateScenario(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "מקור", map[string]float64{frontal.ID: 60})
	teacher, _ := addTeacher(t, db, scenario, "נועה אדרי", 30)
	scenario = reload(t, db, scenario.ID)
	class, _ := addClass(t, db, scenario, "ה1", "ה")
	scenario = reload(t, db, scenario.ID)

	original, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{
			frontal.ID: {GeneralHours: 3, ClassHours: map[string]float64{class.ID: 7}},
		})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	dup, err := services.DuplicateScenario(db, testUser, scenario.ID)
	if err != nil {
		t.Fatalf("DuplicateScenario failed: %v", err)
	}

	if dup.Name != "מקור - עותק" {
		t.Errorf("Duplicate name = %q, want %q", dup.Name, "מקור - עותק")
	}
	if dup.IsActive {
		t.Error("Duplicate should start inactive")
	}
	if dup.ID == original.ID {
		t.Error("Duplicate shares the source id")
	}

	// Child entities carry fresh ids with rewritten references
	if len(dup.Teachers) != 1 || len(dup.Classes) != 1 || len(dup.Allocations) != 2 {
		t.Fatalf("Duplicate children = %d teachers, %d classes, %d allocations",
			len(dup.Teachers), len(dup.Classes), len(dup.Allocations))
	}
	if dup.Teachers[0].ID == teacher.ID {
		t.Error("Duplicate teacher shares the source id")
	}
	for _, a := range dup.Allocations {
		if a.TeacherID != dup.Teachers[0].ID {
			t.Errorf("Allocation references teacher %s, want %s", a.TeacherID, dup.Teachers[0].ID)
		}
		if !a.IsGeneral() && a.ClassIDs[0] != dup.Classes[0].ID {
			t.Errorf("Allocation references class %s, want %s", a.ClassIDs[0], dup.Classes[0].ID)
		}
	}

	// Aggregates recomputed from the copied allocations
	bank := bankFor(t, dup, frontal.ID)
	if bank.AllocatedHours != 10 || bank.RemainingHours != 50 {
		t.Errorf("Duplicate bank allocated/remaining = %v/%v, want 10/50",
			bank.AllocatedHours, bank.RemainingHours)
	}
	if dup.Teachers[0].AllocatedHours != 10 {
		t.Errorf("Duplicate teacher allocated = %v, want 10", dup.Teachers[0].AllocatedHours)
	}

	// Source untouched
	source := reload(t, db, scenario.ID)
	if len(source.Allocations) != 2 || source.Name != "מקור" {
		t.Error("Source scenario changed by duplication")
	}
}

// TestExportScenario tests the portable file contents
func TestExportScenario(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	unused := createHourType(t, db, "שעות תקן")
	scenario := createScenario(t, db, "לייצוא", map[string]float64{
		frontal.ID: 50,
		unused.ID:  0,
	})

	export, err := services.ExportScenario(db, testUser, scenario.ID)
	if err != nil {
		t.Fatalf("ExportScenario failed: %v", err)
	}

	if export.Version != services.ExportFormatVersion {
		t.Errorf("Export version = %q, want %q", export.Version, services.ExportFormatVersion)
	}
	if export.ExportedAt.IsZero() {
		t.Error("ExportedAt not set")
	}

	// Zero-total banks are dropped, and only referenced hour types travel
	if len(export.Scenario.HourBanks) != 1 {
		t.Fatalf("Expected 1 exported bank, got %d", len(export.Scenario.HourBanks))
	}
	if len(export.HourTypes) != 1 || export.HourTypes[0].ID != frontal.ID {
		t.Errorf("Expected only the referenced hour type, got %v", export.HourTypes)
	}
}

// TestImportRoundTrip tests that export->import preserves structure through
// the hour type name remap
func TestImportRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "שנת הלימודים", map[string]float64{frontal.ID: 80})
	teacher, _ := addTeacher(t, db, scenario, "אבי כץ", 40)
	scenario = reload(t, db, scenario.ID)
	class, _ := addClass(t, db, scenario, "ו3", "ו")
	scenario = reload(t, db, scenario.ID)

	if _, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{
			frontal.ID: {GeneralHours: 6, ClassHours: map[string]float64{class.ID: 12}},
		}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	export, err := services.ExportScenario(db, testUser, scenario.ID)
	if err != nil {
		t.Fatalf("ExportScenario failed: %v", err)
	}

	imported, err := services.ImportScenario(db, testUser, export, false)
	if err != nil {
		t.Fatalf("ImportScenario failed: %v", err)
	}

	if !strings.HasSuffix(imported.Name, " (מיובא)") {
		t.Errorf("Imported name = %q, want the import suffix", imported.Name)
	}
	if len(imported.Teachers) != 1 || len(imported.Classes) != 1 || len(imported.Allocations) != 2 {
		t.Fatalf("Imported children = %d teachers, %d classes, %d allocations",
			len(imported.Teachers), len(imported.Classes), len(imported.Allocations))
	}
	if imported.Teachers[0].ID == teacher.ID {
		t.Error("Imported teacher shares the source id")
	}

	// Per-type totals preserved; hour type id resolved onto the registry
	bank := bankFor(t, imported, frontal.ID)
	if bank.TotalHours != 80 || bank.AllocatedHours != 18 || bank.RemainingHours != 62 {
		t.Errorf("Imported bank = %v/%v/%v, want 80/18/62",
			bank.TotalHours, bank.AllocatedHours, bank.RemainingHours)
	}
	if imported.Teachers[0].AllocatedHours != 18 {
		t.Errorf("Imported teacher allocated = %v, want 18", imported.Teachers[0].AllocatedHours)
	}
}

// TestImportCreatesMissingHourTypes tests the auto-create option against a
// registry that lacks the exporter's hour types
func TestImportCreatesMissingHourTypes(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "מבית ספר אחר", map[string]float64{frontal.ID: 30})

	export, err := services.ExportScenario(db, testUser, scenario.ID)
	if err != nil {
		t.Fatalf("ExportScenario failed: %v", err)
	}

	// Make the exported hour type look foreign: unknown id and name
	export.HourTypes[0].ID = "foreign-id"
	export.HourTypes[0].Name = "שעות העשרה"
	export.Scenario.HourBanks[0].HourTypeID = "foreign-id"

	// Without auto-create, the unmatched bank is dropped
	imported, err := services.ImportScenario(db, testUser, export, false)
	if err != nil {
		t.Fatalf("ImportScenario failed: %v", err)
	}
	if len(imported.HourBanks) != 0 {
		t.Errorf("Expected dropped bank without auto-create, got %d banks", len(imported.HourBanks))
	}

	// With auto-create, a registry entry appears and the bank survives
	imported, err = services.ImportScenario(db, testUser, export, true)
	if err != nil {
		t.Fatalf("ImportScenario with auto-create failed: %v", err)
	}
	if len(imported.HourBanks) != 1 {
		t.Fatalf("Expected 1 bank with auto-create, got %d", len(imported.HourBanks))
	}

	hourTypes, err := services.ListHourTypes(db, testUser)
	if err != nil {
		t.Fatalf("ListHourTypes failed: %v", err)
	}
	found := false
	for _, ht := range hourTypes {
		if ht.Name == "שעות העשרה" && ht.ID == imported.HourBanks[0].HourTypeID {
			found = true
		}
	}
	if !found {
		t.Error("Auto-created hour type missing from the registry")
	}
}

// TestValidateScenarioImport tests the missing/existing partition and that
// validation never refuses a file
func TestValidateScenarioImport(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "לבדיקה", map[string]float64{frontal.ID: 10})

	export, err := services.ExportScenario(db, testUser, scenario.ID)
	if err != nil {
		t.Fatalf("ExportScenario failed: %v", err)
	}

	// A drifted color on an existing type warns but stays valid
	export.HourTypes[0].Color = "#FF0000"

	result, err := services.ValidateScenarioImport(db, testUser, export)
	if err != nil {
		t.Fatalf("ValidateScenarioImport failed: %v", err)
	}
	if !result.IsValid {
		t.Error("Validation refused an importable file")
	}
	if len(result.ExistingHourTypes) != 1 || len(result.MissingHourTypes) != 0 {
		t.Errorf("Partition = %d existing / %d missing, want 1/0",
			len(result.ExistingHourTypes), len(result.MissingHourTypes))
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected a color drift warning")
	}

	// An unknown type lands in the missing partition
	export.HourTypes[0].ID = "foreign-id"
	export.HourTypes[0].Name = "שעות מחוננים"
	result, err = services.ValidateScenarioImport(db, testUser, export)
	if err != nil {
		t.Fatalf("ValidateScenarioImport failed: %v", err)
	}
	if !result.IsValid {
		t.Error("Validation refused a file with missing hour types")
	}
	if len(result.MissingHourTypes) != 1 {
		t.Errorf("Expected 1 missing hour type, got %d", len(result.MissingHourTypes))
	}
}
