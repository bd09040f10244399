package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Workbook colors and layout, kept in sync with the on-screen report.
const (
	headerFillColor = "4472C4"
	totalsFillColor = "E7E6E6"

	labelColWidth   = 20
	teacherColWidth = 15
	totalColWidth   = 12
	percentColWidth = 10
)

const summarySheetName = "סיכום"

// ExportSummaryReport renders the summary matrix as a single-sheet xlsx
// workbook and returns the file bytes.
func ExportSummaryReport(db *gorm.DB, userID, scenarioID string) ([]byte, error) {
	scenario, err := GetScenario(db, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	hourTypes, err := ListHourTypes(db, userID)
	if err != nil {
		return nil, err
	}
	report := buildReportData(scenario, hourTypes)

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), summarySheetName)

	if err := writeSummarySheet(f, summarySheetName, report); err != nil {
		return nil, err
	}
	return workbookBytes(f)
}

// ExportDetailedReport renders the class-level breakdown as an xlsx workbook
// with one sheet per hour type plus a summary sheet, and returns the file
// bytes.
func ExportDetailedReport(db *gorm.DB, userID, scenarioID string) ([]byte, error) {
	scenario, err := GetScenario(db, userID, scenarioID)
	if err != nil {
		return nil, err
	}
	hourTypes, err := ListHourTypes(db, userID)
	if err != nil {
		return nil, err
	}
	summary := buildReportData(scenario, hourTypes)
	detailed := buildDetailedReportData(scenario, hourTypes)

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), summarySheetName)
	if err := writeSummarySheet(f, summarySheetName, summary); err != nil {
		return nil, err
	}

	for _, detail := range detailed.HourTypes {
		sheet := sheetName(detail.HourType.Name)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := writeDetailSheet(f, sheet, detail); err != nil {
			return nil, err
		}
	}

	return workbookBytes(f)
}

func writeSummarySheet(f *excelize.File, sheet string, report *ReportData) error {
	styles, err := newReportStyles(f)
	if err != nil {
		return err
	}
	if err := setRightToLeft(f, sheet); err != nil {
		return err
	}

	// Header: hour type label, one column per teacher, total, percent.
	header := []interface{}{"סוג שעה"}
	for _, t := range report.Teachers {
		header = append(header, t.Name)
	}
	header = append(header, "סה\"כ", "אחוז")
	if err := writeRow(f, sheet, 1, header, styles.header); err != nil {
		return err
	}

	row := 2
	for i, ht := range report.HourTypes {
		cells := []interface{}{ht.Name}
		for j := range report.Teachers {
			cells = append(cells, numberOrBlank(report.Matrix[i][j]))
		}
		cells = append(cells, report.HourTypeTotals[i], percentCell(report.HourTypeTotals[i], report.GrandTotal))
		if err := writeRow(f, sheet, row, cells, styles.body); err != nil {
			return err
		}
		row++
	}

	// Totals per teacher.
	totals := []interface{}{"סה\"כ"}
	for j := range report.Teachers {
		totals = append(totals, report.TeacherTotals[j])
	}
	totals = append(totals, report.GrandTotal, "100%")
	if err := writeRow(f, sheet, row, totals, styles.totals); err != nil {
		return err
	}
	row++

	// Utilization per teacher against their max hours.
	utilization := []interface{}{"אחוז ניצול"}
	for _, t := range report.Teachers {
		utilization = append(utilization, fmt.Sprintf("%d%%", utilizationPercent(t)))
	}
	utilization = append(utilization, "", "")
	if err := writeRow(f, sheet, row, utilization, styles.totals); err != nil {
		return err
	}

	return setSummaryColumnWidths(f, sheet, len(report.Teachers))
}

func writeDetailSheet(f *excelize.File, sheet string, detail HourTypeDetail) error {
	styles, err := newReportStyles(f)
	if err != nil {
		return err
	}
	if err := setRightToLeft(f, sheet); err != nil {
		return err
	}

	header := []interface{}{"כיתה", "מורה", "שעות"}
	if err := writeRow(f, sheet, 1, header, styles.header); err != nil {
		return err
	}

	row := 2
	for _, r := range detail.Rows {
		cells := []interface{}{r.ClassName, r.TeacherName, r.Hours}
		if err := writeRow(f, sheet, row, cells, styles.body); err != nil {
			return err
		}
		row++
	}

	totals := []interface{}{"סה\"כ", "", detail.Total}
	if err := writeRow(f, sheet, row, totals, styles.totals); err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "B", labelColWidth); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "C", "C", totalColWidth)
}

type reportStyles struct {
	header int
	body   int
	totals int
}

func newReportStyles(f *excelize.File) (*reportStyles, error) {
	borders := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	header, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    borders,
	})
	if err != nil {
		return nil, err
	}

	body, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    borders,
	})
	if err != nil {
		return nil, err
	}

	totals, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{totalsFillColor}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    borders,
	})
	if err != nil {
		return nil, err
	}

	return &reportStyles{header: header, body: body, totals: totals}, nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}, style int) error {
	for i, value := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func setSummaryColumnWidths(f *excelize.File, sheet string, teacherCount int) error {
	if err := f.SetColWidth(sheet, "A", "A", labelColWidth); err != nil {
		return err
	}
	if teacherCount > 0 {
		first, err := excelize.ColumnNumberToName(2)
		if err != nil {
			return err
		}
		last, err := excelize.ColumnNumberToName(1 + teacherCount)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, first, last, teacherColWidth); err != nil {
			return err
		}
	}
	totalCol, err := excelize.ColumnNumberToName(2 + teacherCount)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, totalCol, totalCol, totalColWidth); err != nil {
		return err
	}
	percentCol, err := excelize.ColumnNumberToName(3 + teacherCount)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, percentCol, percentCol, percentColWidth)
}

func setRightToLeft(f *excelize.File, sheet string) error {
	rtl := true
	return f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl})
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func numberOrBlank(v float64) interface{} {
	if v == 0 {
		return ""
	}
	return v
}

func percentCell(part, whole float64) string {
	if whole <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", part/whole*100)
}

// sheetName makes an hour type name safe for use as a worksheet name:
// excel forbids a handful of characters and caps names at 31 characters.
func sheetName(name string) string {
	replacer := strings.NewReplacer("\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ", ":", " ")
	name = strings.TrimSpace(replacer.Replace(name))
	if name == "" {
		name = "גיליון"
	}
	runes := []rune(name)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
