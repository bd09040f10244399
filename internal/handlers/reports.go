package handlers

import (
	"fmt"
	"time"

	"github.com/ekrako/AcadeMaster/internal/services"
	"github.com/ekrako/AcadeMaster/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReportHandler handles report routes
type ReportHandler struct {
	DB *gorm.DB
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetReport handles GET /api/scenarios/:id/report
// @Summary Summary report
// @Description Hours per hour type per teacher, restricted to hour types with allocations
// @Tags Reports
// @Produce json
// @Param id path string true "Scenario ID"
// @Success 200 {object} services.ReportData
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/report [get]
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	report, err := services.GenerateReportData(h.DB, userID, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getReport")
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

// GetDetailedReport handles GET /api/scenarios/:id/report/detailed
// @Summary Detailed report
// @Description Class-level allocation breakdown per hour type
// @Tags Reports
// @Produce json
// @Param id path string true "Scenario ID"
// @Success 200 {object} services.DetailedReportData
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/report/detailed [get]
func (h *ReportHandler) GetDetailedReport(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	report, err := services.GenerateDetailedReportData(h.DB, userID, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getDetailedReport")
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

// ExportReport handles GET /api/scenarios/:id/report/export?format=summary|detailed
// @Summary Export report as xlsx
// @Description Download the report as a spreadsheet; format defaults to summary
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Scenario ID"
// @Param format query string false "summary or detailed" default(summary)
// @Success 200 {file} binary
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/report/export [get]
func (h *ReportHandler) ExportReport(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	format := c.Query("format", "summary")
	var workbook []byte
	switch format {
	case "summary":
		workbook, err = services.ExportSummaryReport(h.DB, userID, c.Params("id"))
	case "detailed":
		workbook, err = services.ExportDetailedReport(h.DB, userID, c.Params("id"))
	default:
		return utils.ErrorResponse(c,
			fmt.Sprintf("Unknown report format %q", format), fiber.StatusBadRequest, "exportReport")
	}
	if err != nil {
		return serviceError(c, err, "exportReport")
	}

	filename := fmt.Sprintf("report-%s-%s.xlsx", format, time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Status(fiber.StatusOK).Send(workbook)
}
