package handlers

import (
	"fmt"
	"time"

	"github.com/ekrako/AcadeMaster/internal/services"
	"github.com/ekrako/AcadeMaster/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TransferHandler handles scenario export and import routes
type TransferHandler struct {
	DB *gorm.DB
}

type importRequest struct {
	Data                   *services.ScenarioExport `json:"data" validate:"required"`
	CreateMissingHourTypes bool                     `json:"createMissingHourTypes"`
}

// ExportScenario handles GET /api/scenarios/:id/export
// @Summary Export scenario
// @Description Download a scenario as a portable JSON file including the hour types it references
// @Tags Transfer
// @Produce json
// @Param id path string true "Scenario ID"
// @Success 200 {object} services.ScenarioExport
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/export [get]
func (h *TransferHandler) ExportScenario(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	export, err := services.ExportScenario(h.DB, userID, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "exportScenario")
	}

	filename := fmt.Sprintf("%s-%s.json", export.Scenario.Name, time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Status(fiber.StatusOK).JSON(export)
}

// ValidateImport handles POST /api/scenarios/import/validate
// @Summary Validate scenario import
// @Description Preview what importing an export file would do: existing vs missing hour types plus warnings
// @Tags Transfer
// @Accept json
// @Produce json
// @Param file body importRequest true "Export file content"
// @Success 200 {object} services.ImportValidation
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /scenarios/import/validate [post]
func (h *TransferHandler) ValidateImport(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req importRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "validateImport")
	}

	result, err := services.ValidateScenarioImport(h.DB, userID, req.Data)
	if err != nil {
		return serviceError(c, err, "validateImport")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// ImportScenario handles POST /api/scenarios/import
// @Summary Import scenario
// @Description Persist an exported scenario as a new scenario, remapping hour types by id or name
// @Tags Transfer
// @Accept json
// @Produce json
// @Param file body importRequest true "Export file content and options"
// @Success 201 {object} models.Scenario
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /scenarios/import [post]
func (h *TransferHandler) ImportScenario(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req importRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "importScenario")
	}

	scenario, err := services.ImportScenario(h.DB, userID, req.Data, req.CreateMissingHourTypes)
	if err != nil {
		return serviceError(c, err, "importScenario")
	}
	return c.Status(fiber.StatusCreated).JSON(scenario)
}
