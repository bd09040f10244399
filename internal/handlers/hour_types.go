package handlers

import (
	"github.com/ekrako/AcadeMaster/internal/services"
	"github.com/ekrako/AcadeMaster/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HourTypeHandler handles hour type registry routes
type HourTypeHandler struct {
	DB *gorm.DB
}

type hourTypeRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	IsClassHour bool   `json:"isClassHour"`
}

func (r hourTypeRequest) input() services.HourTypeInput {
	return services.HourTypeInput{
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		IsClassHour: r.IsClassHour,
	}
}

// ListHourTypes handles GET /api/hour-types
// @Summary List hour types
// @Description Get all hour types of the authenticated user, ordered by name
// @Tags HourTypes
// @Produce json
// @Success 200 {array} models.HourType
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /hour-types [get]
func (h *HourTypeHandler) ListHourTypes(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	hourTypes, err := services.ListHourTypes(h.DB, userID)
	if err != nil {
		return serviceError(c, err, "listHourTypes")
	}
	return c.Status(fiber.StatusOK).JSON(hourTypes)
}

// GetHourType handles GET /api/hour-types/:id
// @Summary Get hour type
// @Description Get one hour type by id
// @Tags HourTypes
// @Produce json
// @Param id path string true "Hour type ID"
// @Success 200 {object} models.HourType
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /hour-types/{id} [get]
func (h *HourTypeHandler) GetHourType(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	hourType, err := services.GetHourType(h.DB, userID, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getHourType")
	}
	return c.Status(fiber.StatusOK).JSON(hourType)
}

// CreateHourType handles POST /api/hour-types
// @Summary Create hour type
// @Description Create a new hour type in the user's registry
// @Tags HourTypes
// @Accept json
// @Produce json
// @Param hourType body hourTypeRequest true "Hour type fields"
// @Success 201 {object} models.HourType
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /hour-types [post]
func (h *HourTypeHandler) CreateHourType(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req hourTypeRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "createHourType")
	}

	hourType, err := services.CreateHourType(h.DB, userID, req.input())
	if err != nil {
		return serviceError(c, err, "createHourType")
	}
	return c.Status(fiber.StatusCreated).JSON(hourType)
}

// UpdateHourType handles PUT /api/hour-types/:id
// @Summary Update hour type
// @Description Update an existing hour type
// @Tags HourTypes
// @Accept json
// @Produce json
// @Param id path string true "Hour type ID"
// @Param hourType body hourTypeRequest true "Hour type fields"
// @Success 200 {object} models.HourType
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /hour-types/{id} [put]
func (h *HourTypeHandler) UpdateHourType(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req hourTypeRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "updateHourType")
	}

	hourType, err := services.UpdateHourType(h.DB, userID, c.Params("id"), req.input())
	if err != nil {
		return serviceError(c, err, "updateHourType")
	}
	return c.Status(fiber.StatusOK).JSON(hourType)
}

// DeleteHourType handles DELETE /api/hour-types/:id
// @Summary Delete hour type
// @Description Delete an hour type from the registry. Scenario banks and allocations referencing it are left in place.
// @Tags HourTypes
// @Produce json
// @Param id path string true "Hour type ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /hour-types/{id} [delete]
func (h *HourTypeHandler) DeleteHourType(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	if err := services.DeleteHourType(h.DB, userID, c.Params("id")); err != nil {
		return serviceError(c, err, "deleteHourType")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
