package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/ekrako/AcadeMaster/internal/models"
	"gorm.io/gorm"
)

// Teacher utilization thresholds, in percent of maxHours.
const (
	UtilizationUnderThreshold = 80
	UtilizationOverThreshold  = 100
)

// ReportData is the summary matrix: hours per hour type per teacher,
// restricted to hour types that have at least one allocation. Matrix rows
// follow HourTypes, columns follow Teachers.
type ReportData struct {
	HourTypes      []models.HourType `json:"hourTypes"`
	Teachers       []models.Teacher  `json:"teachers"`
	Matrix         [][]float64       `json:"matrix"`
	HourTypeTotals []float64         `json:"hourTypeTotals"`
	TeacherTotals  []float64         `json:"teacherTotals"`
	GrandTotal     float64           `json:"grandTotal"`
}

// ClassAllocationDetail is one row of the detailed report: hours one teacher
// gives one class under one hour type. General allocations appear under the
// synthetic class id "general".
type ClassAllocationDetail struct {
	ClassID     string  `json:"classId"`
	ClassName   string  `json:"className"`
	TeacherID   string  `json:"teacherId"`
	TeacherName string  `json:"teacherName"`
	Hours       float64 `json:"hours"`
}

// HourTypeDetail groups the detailed rows of one hour type with per-teacher
// totals for that type.
type HourTypeDetail struct {
	HourType      models.HourType         `json:"hourType"`
	Rows          []ClassAllocationDetail `json:"rows"`
	TeacherTotals map[string]float64      `json:"teacherTotals"`
	Total         float64                 `json:"total"`
}

// DetailedReportData breaks allocations down to the class level, one block
// per hour type that has allocations.
type DetailedReportData struct {
	HourTypes          []HourTypeDetail   `json:"hourTypes"`
	TeacherGrandTotals map[string]float64 `json:"teacherGrandTotals"`
	GrandTotal         float64            `json:"grandTotal"`
}

// TeacherUtilization classifies one teacher's load against their maximum.
type TeacherUtilization struct {
	Teacher models.Teacher `json:"teacher"`
	Percent int            `json:"percent"`
	Status  string         `json:"status"`
}

const (
	UtilizationUnder   = "under"
	UtilizationOptimal = "optimal"
	UtilizationOver    = "over"
)

const generalClassName = "הקצאה כללית"

// GenerateReportData builds the summary matrix for a scenario. Hour types
// without allocations are excluded; allocations whose hour type no longer
// exists in the registry are excluded too.
func GenerateReportData(db *gorm.DB, userID, scenarioID string) (*ReportData, error) {
	scenario, err := GetScenario(db, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	hourTypes, err := ListHourTypes(db, userID)
	if err != nil {
		return nil, err
	}
	return buildReportData(scenario, hourTypes), nil
}

func buildReportData(scenario *models.Scenario, hourTypes []models.HourType) *ReportData {
	allocatedByType := make(map[string]float64)
	for _, a := range scenario.Allocations {
		allocatedByType[a.HourTypeID] += a.Hours
	}

	used := make([]models.HourType, 0, len(hourTypes))
	for _, ht := range hourTypes {
		if allocatedByType[ht.ID] > 0 {
			used = append(used, ht)
		}
	}

	teachers := make([]models.Teacher, len(scenario.Teachers))
	copy(teachers, scenario.Teachers)
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].Name < teachers[j].Name })

	teacherIdx := make(map[string]int, len(teachers))
	for i, t := range teachers {
		teacherIdx[t.ID] = i
	}
	typeIdx := make(map[string]int, len(used))
	for i, ht := range used {
		typeIdx[ht.ID] = i
	}

	report := &ReportData{
		HourTypes:      used,
		Teachers:       teachers,
		Matrix:         make([][]float64, len(used)),
		HourTypeTotals: make([]float64, len(used)),
		TeacherTotals:  make([]float64, len(teachers)),
	}
	for i := range report.Matrix {
		report.Matrix[i] = make([]float64, len(teachers))
	}

	for _, a := range scenario.Allocations {
		row, ok := typeIdx[a.HourTypeID]
		if !ok {
			continue
		}
		col, ok := teacherIdx[a.TeacherID]
		if !ok {
			continue
		}
		report.Matrix[row][col] += a.Hours
		report.HourTypeTotals[row] += a.Hours
		report.TeacherTotals[col] += a.Hours
		report.GrandTotal += a.Hours
	}

	return report
}

// GenerateDetailedReportData builds the class-level breakdown. Allocations
// spanning several classes split their hours evenly; allocations referencing
// a deleted class fall back to a "כיתה <id>" label, deleted teachers to
// "לא זוהה".
func GenerateDetailedReportData(db *gorm.DB, userID, scenarioID string) (*DetailedReportData, error) {
	scenario, err := GetScenario(db, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	hourTypes, err := ListHourTypes(db, userID)
	if err != nil {
		return nil, err
	}
	return buildDetailedReportData(scenario, hourTypes), nil
}

func buildDetailedReportData(scenario *models.Scenario, hourTypes []models.HourType) *DetailedReportData {
	classNames := make(map[string]string, len(scenario.Classes))
	for _, c := range scenario.Classes {
		classNames[c.ID] = c.Name
	}
	teacherNames := make(map[string]string, len(scenario.Teachers))
	for _, t := range scenario.Teachers {
		teacherNames[t.ID] = t.Name
	}

	byType := make(map[string][]models.Allocation)
	for _, a := range scenario.Allocations {
		byType[a.HourTypeID] = append(byType[a.HourTypeID], a)
	}

	report := &DetailedReportData{
		HourTypes:          []HourTypeDetail{},
		TeacherGrandTotals: make(map[string]float64),
	}

	for _, ht := range hourTypes {
		allocations := byType[ht.ID]
		if len(allocations) == 0 {
			continue
		}

		detail := HourTypeDetail{
			HourType:      ht,
			Rows:          []ClassAllocationDetail{},
			TeacherTotals: make(map[string]float64),
		}

		for _, a := range allocations {
			teacherName := teacherNames[a.TeacherID]
			if teacherName == "" {
				teacherName = "לא זוהה"
			}

			for _, row := range allocationRows(a, classNames, teacherName) {
				detail.Rows = append(detail.Rows, row)
				detail.TeacherTotals[a.TeacherID] += row.Hours
				detail.Total += row.Hours
				report.TeacherGrandTotals[a.TeacherID] += row.Hours
				report.GrandTotal += row.Hours
			}
		}

		sort.Slice(detail.Rows, func(i, j int) bool {
			if detail.Rows[i].ClassName != detail.Rows[j].ClassName {
				return detail.Rows[i].ClassName < detail.Rows[j].ClassName
			}
			return detail.Rows[i].TeacherName < detail.Rows[j].TeacherName
		})
		report.HourTypes = append(report.HourTypes, detail)
	}

	return report
}

// allocationRows expands one allocation into detail rows: a single general
// row, or one row per class with the hours split evenly.
func allocationRows(a models.Allocation, classNames map[string]string, teacherName string) []ClassAllocationDetail {
	if a.IsGeneral() {
		return []ClassAllocationDetail{{
			ClassID:     "general",
			ClassName:   generalClassName,
			TeacherID:   a.TeacherID,
			TeacherName: teacherName,
			Hours:       a.Hours,
		}}
	}

	perClass := a.Hours / float64(len(a.ClassIDs))
	rows := make([]ClassAllocationDetail, 0, len(a.ClassIDs))
	for _, classID := range a.ClassIDs {
		className := classNames[classID]
		if className == "" {
			className = fmt.Sprintf("כיתה %s", classID)
		}
		rows = append(rows, ClassAllocationDetail{
			ClassID:     classID,
			ClassName:   className,
			TeacherID:   a.TeacherID,
			TeacherName: teacherName,
			Hours:       perClass,
		})
	}
	return rows
}

// TeacherUtilizations classifies every teacher in the scenario by percent of
// their maximum hours actually allocated.
func TeacherUtilizations(scenario *models.Scenario) []TeacherUtilization {
	out := make([]TeacherUtilization, 0, len(scenario.Teachers))
	for _, t := range scenario.Teachers {
		out = append(out, TeacherUtilization{
			Teacher: t,
			Percent: utilizationPercent(t),
			Status:  classifyUtilization(utilizationPercent(t)),
		})
	}
	return out
}

func utilizationPercent(t models.Teacher) int {
	if t.MaxHours <= 0 {
		return 0
	}
	return int(math.Round(t.AllocatedHours / t.MaxHours * 100))
}

func classifyUtilization(percent int) string {
	switch {
	case percent < UtilizationUnderThreshold:
		return UtilizationUnder
	case percent > UtilizationOverThreshold:
		return UtilizationOver
	default:
		return UtilizationOptimal
	}
}
