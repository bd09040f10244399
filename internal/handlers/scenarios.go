// scenarios.go
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

package handlers

import (
	"github.com/ekrako/AcadeMaster/internal/services"
	"github.com/ekrako/AcadeMaster/internal/types"
	"github.com/ekrako/AcadeMaster/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ScenarioHandler handles scenario routes, including the teacher and class
// subresources.
type ScenarioHandler struct {
	DB *gorm.DB
}

type scenarioRequest struct {
	Name        string             `json:"name" validate:"required"`
	Description string             `json:"description"`
	IsActive    bool               `json:"isActive"`
	BankTotals  map[string]float64 `json:"bankTotals"`
	Version     types.FlexUint64   `json:"version"`
}

func (r scenarioRequest) input() services.ScenarioInput {
	return services.ScenarioInput{
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		BankTotals:  r.BankTotals,
	}
}

type teacherRequest struct {
	Name             string           `json:"name" validate:"required"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	IDNumber         string           `json:"idNumber"`
	Subject          string           `json:"subject"`
	MaxHours         float64          `json:"maxHours"`
	HomeroomClassIDs []string         `json:"homeroomClassIds"`
	Version          types.FlexUint64 `json:"version"`
}

func (r teacherRequest) input() services.TeacherInput {
	return services.TeacherInput{
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		IDNumber:         r.IDNumber,
		Subject:          r.Subject,
		MaxHours:         r.MaxHours,
		HomeroomClassIDs: r.HomeroomClassIDs,
	}
}

type classRequest struct {
	Name               string           `json:"name" validate:"required"`
	Grade              string           `json:"grade"`
	StudentCount       int              `json:"studentCount"`
	HomeroomTeacherID  string           `json:"homeroomTeacherId"`
	IsSpecialEducation bool             `json:"isSpecialEducation"`
	Version            types.FlexUint64 `json:"version"`
}

func (r classRequest) input() services.ClassInput {
	return services.ClassInput{
		Name:               r.Name,
		Grade:              r.Grade,
		StudentCount:       r.StudentCount,
		HomeroomTeacherID:  r.HomeroomTeacherID,
		IsSpecialEducation: r.IsSpecialEducation,
	}
}

// ListScenarios handles GET /api/scenarios
// @Summary List scenarios
// @Description Get all scenarios of the authenticated user with their child collections
// @Tags Scenarios
// @Produce json
// @Success 200 {array} models.Scenario
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /scenarios [get]
func (h *ScenarioHandler) ListScenarios(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	scenarios, err := services.ListScenarios(h.DB, userID)
	if err != nil {
		return serviceError(c, err, "listScenarios")
	}
	return c.Status(fiber.StatusOK).JSON(scenarios)
}

// GetScenario handles GET /api/scenarios/:id
// @Summary Get scenario
// @Description Get one scenario with banks, teachers, classes and allocations
// @Tags Scenarios
// @Produce json
// @Param id path string true "Scenario ID"
// @Success 200 {object} models.Scenario
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id} [get]
func (h *ScenarioHandler) GetScenario(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	scenario, err := services.GetScenario(h.DB, userID, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getScenario")
	}
	return c.Status(fiber.StatusOK).JSON(scenario)
}

// CreateScenario handles POST /api/scenarios
// @Summary Create scenario
// @Description Create a scenario with one hour bank per bankTotals entry
// @Tags Scenarios
// @Accept json
// @Produce json
// @Param scenario body scenarioRequest true "Scenario fields"
// @Success 201 {object} models.Scenario
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /scenarios [post]
func (h *ScenarioHandler) CreateScenario(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req scenarioRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "createScenario")
	}

	scenario, err := services.CreateScenario(h.DB, userID, req.input())
	if err != nil {
		return serviceError(c, err, "createScenario")
	}
	return c.Status(fiber.StatusCreated).JSON(scenario)
}

// UpdateScenario handles PUT /api/scenarios/:id
// @Summary Update scenario
// @Description Update scenario fields and bank totals, guarded by the version token
// @Tags Scenarios
// @Accept json
// @Produce json
// @Param id path string true "Scenario ID"
// @Param scenario body scenarioRequest true "Scenario fields and last-seen version"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id} [put]
func (h *ScenarioHandler) UpdateScenario(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req scenarioRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "updateScenario")
	}

	scenario, err := services.UpdateScenario(h.DB, userID, c.Params("id"), uint64(req.Version), req.input())
	if err != nil {
		return serviceError(c, err, "updateScenario")
	}
	return utils.MutationSuccessResponse(c, scenario.Version, scenario)
}

// DeleteScenario handles DELETE /api/scenarios/:id
// @Summary Delete scenario
// @Description Hard-delete a scenario and all its child rows
// @Tags Scenarios
// @Produce json
// @Param id path string true "Scenario ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id} [delete]
func (h *ScenarioHandler) DeleteScenario(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	if err := services.DeleteScenario(h.DB, userID, c.Params("id")); err != nil {
		return serviceError(c, err, "deleteScenario")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DuplicateScenario handles POST /api/scenarios/:id/duplicate
// @Summary Duplicate scenario
// @Description Deep-copy a scenario under a fresh id; the copy starts inactive
// @Tags Scenarios
// @Produce json
// @Param id path string true "Scenario ID"
// @Success 201 {object} models.Scenario
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/duplicate [post]
func (h *ScenarioHandler) DuplicateScenario(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	scenario, err := services.DuplicateScenario(h.DB, userID, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "duplicateScenario")
	}
	return c.Status(fiber.StatusCreated).JSON(scenario)
}

// AddTeacher handles POST /api/scenarios/:id/teachers
// @Summary Add teacher
// @Description Add a teacher to the scenario
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Scenario ID"
// @Param teacher body teacherRequest true "Teacher fields and last-seen version"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/teachers [post]
func (h *ScenarioHandler) AddTeacher(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req teacherRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "addTeacher")
	}

	teacher, newVersion, err := services.AddTeacher(h.DB, userID, c.Params("id"), uint64(req.Version), req.input())
	if err != nil {
		return serviceError(c, err, "addTeacher")
	}
	return utils.MutationSuccessResponse(c, newVersion, teacher)
}

// UpdateTeacher handles PUT /api/scenarios/:id/teachers/:teacherId
// @Summary Update teacher
// @Description Update a teacher in the scenario
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Scenario ID"
// @Param teacherId path string true "Teacher ID"
// @Param teacher body teacherRequest true "Teacher fields and last-seen version"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/teachers/{teacherId} [put]
func (h *ScenarioHandler) UpdateTeacher(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req teacherRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "updateTeacher")
	}

	teacher, newVersion, err := services.UpdateTeacher(h.DB, userID, c.Params("id"), c.Params("teacherId"), uint64(req.Version), req.input())
	if err != nil {
		return serviceError(c, err, "updateTeacher")
	}
	return utils.MutationSuccessResponse(c, newVersion, teacher)
}

// RemoveTeacher handles DELETE /api/scenarios/:id/teachers/:teacherId?version=N
// @Summary Remove teacher
// @Description Remove a teacher, returning their allocated hours to the banks
// @Tags Teachers
// @Produce json
// @Param id path string true "Scenario ID"
// @Param teacherId path string true "Teacher ID"
// @Param version query string true "Last-seen scenario version"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/teachers/{teacherId} [delete]
func (h *ScenarioHandler) RemoveTeacher(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	version, err := queryVersion(c)
	if err != nil {
		return serviceError(c, err, "removeTeacher")
	}

	newVersion, err := services.RemoveTeacher(h.DB, userID, c.Params("id"), c.Params("teacherId"), version)
	if err != nil {
		return serviceError(c, err, "removeTeacher")
	}
	return utils.MutationSuccessResponse(c, newVersion, nil)
}

// AddClass handles POST /api/scenarios/:id/classes
// @Summary Add class
// @Description Add a class to the scenario
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Scenario ID"
// @Param class body classRequest true "Class fields and last-seen version"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/classes [post]
func (h *ScenarioHandler) AddClass(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req classRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "addClass")
	}

	class, newVersion, err := services.AddClass(h.DB, userID, c.Params("id"), uint64(req.Version), req.input())
	if err != nil {
		return serviceError(c, err, "addClass")
	}
	return utils.MutationSuccessResponse(c, newVersion, class)
}

// UpdateClass handles PUT /api/scenarios/:id/classes/:classId
// @Summary Update class
// @Description Update a class in the scenario
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Scenario ID"
// @Param classId path string true "Class ID"
// @Param class body classRequest true "Class fields and last-seen version"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/classes/{classId} [put]
func (h *ScenarioHandler) UpdateClass(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req classRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "updateClass")
	}

	class, newVersion, err := services.UpdateClass(h.DB, userID, c.Params("id"), c.Params("classId"), uint64(req.Version), req.input())
	if err != nil {
		return serviceError(c, err, "updateClass")
	}
	return utils.MutationSuccessResponse(c, newVersion, class)
}

// RemoveClass handles DELETE /api/scenarios/:id/classes/:classId?version=N
// @Summary Remove class
// @Description Remove a class from the scenario; allocations referencing it are kept
// @Tags Classes
// @Produce json
// @Param id path string true "Scenario ID"
// @Param classId path string true "Class ID"
// @Param version query string true "Last-seen scenario version"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/classes/{classId} [delete]
func (h *ScenarioHandler) RemoveClass(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	version, err := queryVersion(c)
	if err != nil {
		return serviceError(c, err, "removeClass")
	}

	newVersion, err := services.RemoveClass(h.DB, userID, c.Params("id"), c.Params("classId"), version)
	if err != nil {
		return serviceError(c, err, "removeClass")
	}
	return utils.MutationSuccessResponse(c, newVersion, nil)
}
