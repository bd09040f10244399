package handlers

import (
	"github.com/ekrako/AcadeMaster/internal/services"
	"github.com/ekrako/AcadeMaster/internal/types"
	"github.com/ekrako/AcadeMaster/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AllocationHandler handles allocation routes
type AllocationHandler struct {
	DB *gorm.DB
}

type replaceAllocationsRequest struct {
	Entries map[string]services.AllocationEntry `json:"entries" validate:"required"`
	Version types.FlexUint64                    `json:"version"`
}

type createAllocationRequest struct {
	TeacherID  string                 `json:"teacherId" validate:"required"`
	HourTypeID string                 `json:"hourTypeId" validate:"required"`
	ClassID    string                 `json:"classId"`
	ClassIDs   types.FlexList[string] `json:"classIds"`
	Hours      float64                `json:"hours"`
	Notes      string                 `json:"notes"`
	Version    types.FlexUint64       `json:"version"`
}

// ReplaceTeacherAllocations handles PUT /api/scenarios/:id/teachers/:teacherId/allocations
// @Summary Replace a teacher's allocations
// @Description Atomically replace the teacher's whole allocation set per hour type: general hours plus hours per class
// @Tags Allocations
// @Accept json
// @Produce json
// @Param id path string true "Scenario ID"
// @Param teacherId path string true "Teacher ID"
// @Param allocations body replaceAllocationsRequest true "Entries keyed by hour type id, and last-seen version"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/teachers/{teacherId}/allocations [put]
func (h *AllocationHandler) ReplaceTeacherAllocations(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req replaceAllocationsRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "replaceAllocations")
	}

	scenario, err := services.ReplaceTeacherAllocations(
		h.DB, userID, c.Params("id"), c.Params("teacherId"), uint64(req.Version), req.Entries)
	if err != nil {
		return serviceError(c, err, "replaceAllocations")
	}
	return utils.MutationSuccessResponse(c, scenario.Version, scenario)
}

// CreateAllocation handles POST /api/scenarios/:id/allocations
// @Summary Create allocation
// @Description Add a single allocation, drawing from the hour bank and the teacher's capacity
// @Tags Allocations
// @Accept json
// @Produce json
// @Param id path string true "Scenario ID"
// @Param allocation body createAllocationRequest true "Allocation fields and last-seen version"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/allocations [post]
func (h *AllocationHandler) CreateAllocation(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	var req createAllocationRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err, "createAllocation")
	}

	allocation, newVersion, err := services.CreateAllocation(
		h.DB, userID, c.Params("id"), uint64(req.Version), services.AllocationInput{
			TeacherID:  req.TeacherID,
			HourTypeID: req.HourTypeID,
			ClassID:    req.ClassID,
			ClassIDs:   req.ClassIDs,
			Hours:      req.Hours,
			Notes:      req.Notes,
		})
	if err != nil {
		return serviceError(c, err, "createAllocation")
	}
	return utils.MutationSuccessResponse(c, newVersion, allocation)
}

// RemoveAllocation handles DELETE /api/scenarios/:id/allocations/:allocationId?version=N
// @Summary Remove allocation
// @Description Delete a single allocation, returning its hours to the bank and the teacher
// @Tags Allocations
// @Produce json
// @Param id path string true "Scenario ID"
// @Param allocationId path string true "Allocation ID"
// @Param version query string true "Last-seen scenario version"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /scenarios/{id}/allocations/{allocationId} [delete]
func (h *AllocationHandler) RemoveAllocation(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "data.authorization.user")
	}

	version, err := queryVersion(c)
	if err != nil {
		return serviceError(c, err, "removeAllocation")
	}

	newVersion, err := services.RemoveAllocation(h.DB, userID, c.Params("id"), c.Params("allocationId"), version)
	if err != nil {
		return serviceError(c, err, "removeAllocation")
	}
	return utils.MutationSuccessResponse(c, newVersion, nil)
}
