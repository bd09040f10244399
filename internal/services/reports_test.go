package services_test

import (
	"testing"

	"github.com/ekrako/AcadeMaster/internal/models"
	"github.com/ekrako/AcadeMaster/internal/services"
)

// TestGenerateReportData tests the summary matrix totals
func TestGenerateReportData(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	special := createHourType(t, db, "שעות שילוב")
	idle := createHourType(t, db, "שעות תקן")

	scenario := createScenario(t, db, "דוח", map[string]float64{
		frontal.ID: 100,
		special.ID: 50,
		idle.ID:    20,
	})
	alice, _ := addTeacher(t, db, scenario, "אביגיל רון", 30)
	scenario = reload(t, db, scenario.ID)
	boaz, _ := addTeacher(t, db, scenario, "בועז נחום", 30)
	scenario = reload(t, db, scenario.ID)

	updated, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, alice.ID, scenario.Version,
		map[string]services.AllocationEntry{
			frontal.ID: {GeneralHours: 10},
			special.ID: {GeneralHours: 4},
		})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if _, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, boaz.ID, updated.Version,
		map[string]services.AllocationEntry{
			frontal.ID: {GeneralHours: 6},
		}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	report, err := services.GenerateReportData(db, testUser, scenario.ID)
	if err != nil {
		t.Fatalf("GenerateReportData failed: %v", err)
	}

	// Hour types without allocations stay out of the matrix
	if len(report.HourTypes) != 2 {
		t.Fatalf("Expected 2 hour types in report, got %d", len(report.HourTypes))
	}
	for _, ht := range report.HourTypes {
		if ht.ID == idle.ID {
			t.Error("Unallocated hour type appeared in report")
		}
	}

	// Row, column and grand totals agree with the cells
	var rowSum, colSum float64
	for _, total := range report.HourTypeTotals {
		rowSum += total
	}
	for _, total := range report.TeacherTotals {
		colSum += total
	}
	if rowSum != report.GrandTotal || colSum != report.GrandTotal {
		t.Errorf("Totals disagree: rows %v, columns %v, grand %v", rowSum, colSum, report.GrandTotal)
	}
	if report.GrandTotal != 20 {
		t.Errorf("Grand total = %v, want 20", report.GrandTotal)
	}

	var cellSum float64
	for _, row := range report.Matrix {
		for _, cell := range row {
			cellSum += cell
		}
	}
	if cellSum != report.GrandTotal {
		t.Errorf("Matrix cells sum to %v, grand total is %v", cellSum, report.GrandTotal)
	}
}

// TestGenerateDetailedReportData tests the class-level breakdown
func TestGenerateDetailedReportData(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "דוח מפורט", map[string]float64{frontal.ID: 100})
	teacher, _ := addTeacher(t, db, scenario, "חנה לב", 40)
	scenario = reload(t, db, scenario.ID)
	classA, _ := addClass(t, db, scenario, "א1", "א")
	scenario = reload(t, db, scenario.ID)
	classB, _ := addClass(t, db, scenario, "א2", "א")
	scenario = reload(t, db, scenario.ID)

	updated, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{
			frontal.ID: {GeneralHours: 5, ClassHours: map[string]float64{classA.ID: 8}},
		})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	// Legacy multi-class row: 6 hours spanning both classes
	if _, _, err := services.CreateAllocation(db, testUser, scenario.ID, updated.Version,
		services.AllocationInput{
			TeacherID:  teacher.ID,
			HourTypeID: frontal.ID,
			ClassIDs:   []string{classA.ID, classB.ID},
			Hours:      6,
		}); err != nil {
		t.Fatalf("CreateAllocation failed: %v", err)
	}

	report, err := services.GenerateDetailedReportData(db, testUser, scenario.ID)
	if err != nil {
		t.Fatalf("GenerateDetailedReportData failed: %v", err)
	}
	if len(report.HourTypes) != 1 {
		t.Fatalf("Expected 1 hour type block, got %d", len(report.HourTypes))
	}

	detail := report.HourTypes[0]
	// 1 general row + 1 single-class row + 2 split rows
	if len(detail.Rows) != 4 {
		t.Fatalf("Expected 4 detail rows, got %d", len(detail.Rows))
	}

	var generalHours, classAHours, classBHours float64
	for _, row := range detail.Rows {
		switch row.ClassID {
		case "general":
			generalHours += row.Hours
			if row.ClassName != "הקצאה כללית" {
				t.Errorf("General row class name = %q", row.ClassName)
			}
		case classA.ID:
			classAHours += row.Hours
		case classB.ID:
			classBHours += row.Hours
		}
	}
	if generalHours != 5 {
		t.Errorf("General hours = %v, want 5", generalHours)
	}
	// classA gets its own 8 plus half of the 6-hour split
	if classAHours != 11 {
		t.Errorf("Class A hours = %v, want 11", classAHours)
	}
	if classBHours != 3 {
		t.Errorf("Class B hours = %v, want 3", classBHours)
	}

	if detail.Total != 19 || report.GrandTotal != 19 {
		t.Errorf("Totals = %v/%v, want 19/19", detail.Total, report.GrandTotal)
	}
	if report.TeacherGrandTotals[teacher.ID] != 19 {
		t.Errorf("Teacher grand total = %v, want 19", report.TeacherGrandTotals[teacher.ID])
	}
}

// TestDetailedReportFallbackLabels tests labels for deleted classes
func TestDetailedReportFallbackLabels(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "עם יתומים", map[string]float64{frontal.ID: 50})
	teacher, _ := addTeacher(t, db, scenario, "טל שביט", 30)
	scenario = reload(t, db, scenario.ID)
	class, _ := addClass(t, db, scenario, "ב2", "ב")
	scenario = reload(t, db, scenario.ID)

	updated, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{
			frontal.ID: {ClassHours: map[string]float64{class.ID: 4}},
		})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	// Deleting the class keeps the allocation; the report falls back to
	// a generic label
	if _, err := services.RemoveClass(db, testUser, scenario.ID, class.ID, updated.Version); err != nil {
		t.Fatalf("RemoveClass failed: %v", err)
	}

	report, err := services.GenerateDetailedReportData(db, testUser, scenario.ID)
	if err != nil {
		t.Fatalf("GenerateDetailedReportData failed: %v", err)
	}
	if len(report.HourTypes) != 1 || len(report.HourTypes[0].Rows) != 1 {
		t.Fatalf("Unexpected report shape: %+v", report)
	}
	row := report.HourTypes[0].Rows[0]
	if row.ClassName != "כיתה "+class.ID {
		t.Errorf("Fallback class name = %q", row.ClassName)
	}
}

// TestTeacherUtilizations tests the under/optimal/over classification
func TestTeacherUtilizations(t *testing.T) {
	scenario := &models.Scenario{
		Teachers: []models.Teacher{
			{ID: "t1", MaxHours: 30, AllocatedHours: 12},
			{ID: "t2", MaxHours: 30, AllocatedHours: 27},
			{ID: "t3", MaxHours: 30, AllocatedHours: 33},
			{ID: "t4", MaxHours: 0, AllocatedHours: 0},
		},
	}

	got := services.TeacherUtilizations(scenario)
	want := map[string]string{
		"t1": services.UtilizationUnder,
		"t2": services.UtilizationOptimal,
		"t3": services.UtilizationOver,
		"t4": services.UtilizationUnder,
	}
	for _, u := range got {
		if u.Status != want[u.Teacher.ID] {
			t.Errorf("Teacher %s status = %q, want %q", u.Teacher.ID, u.Status, want[u.Teacher.ID])
		}
	}
}

// TestExportSummaryReport tests that the workbook renders
func TestExportSummaryReport(t *testing.T) {
	db := setupTestDB(t)
	frontal := createHourType(t, db, "שעות פרונטליות")
	scenario := createScenario(t, db, "לגיליון", map[string]float64{frontal.ID: 40})
	teacher, _ := addTeacher(t, db, scenario, "רוני הדר", 30)
	scenario = reload(t, db, scenario.ID)

	if _, err := services.ReplaceTeacherAllocations(db, testUser, scenario.ID, teacher.ID, scenario.Version,
		map[string]services.AllocationEntry{frontal.ID: {GeneralHours: 9}}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	workbook, err := services.ExportSummaryReport(db, testUser, scenario.ID)
	if err != nil {
		t.Fatalf("ExportSummaryReport failed: %v", err)
	}
	if len(workbook) == 0 {
		t.Fatal("Empty workbook")
	}
	// xlsx files are zip archives
	if workbook[0] != 'P' || workbook[1] != 'K' {
		t.Error("Workbook is not a zip archive")
	}

	detailed, err := services.ExportDetailedReport(db, testUser, scenario.ID)
	if err != nil {
		t.Fatalf("ExportDetailedReport failed: %v", err)
	}
	if len(detailed) <= len(workbook)/2 {
		t.Error("Detailed workbook suspiciously small")
	}
}
