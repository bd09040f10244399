// common.go
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
	"fmt"
	"strconv"

	"github.com/authorizerdev/authorizer-go"
	"github.com/ekrako/AcadeMaster/internal/types"
	"github.com/ekrako/AcadeMaster/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// getUserID extracts the authenticated user's id from the request context.
// The auth middleware stores the authorizer user object; tests may store a
// plain map instead.
func getUserID(c *fiber.Ctx) (string, error) {
	user := c.Locals("user")
	if user == nil {
		return "", fmt.Errorf("user not found in context")
	}

	switch u := user.(type) {
	case *authorizer.User:
		if u.ID == "" {
			return "", fmt.Errorf("user ID not found")
		}
		return u.ID, nil
	case map[string]interface{}:
		if id, ok := u["id"].(string); ok && id != "" {
			return id, nil
		}
		return "", fmt.Errorf("user ID not found")
	}

	return "", fmt.Errorf("invalid user data format")
}

// parseBody unmarshals the request body into dst and runs its struct
// validation tags.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("Invalid request body: %v", err),
			Type:    "payload",
		}
	}
	if err := validate.Struct(dst); err != nil {
		return &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("Invalid request body: %v", err),
			Type:    "payload",
		}
	}
	return nil
}

// queryVersion reads the scenario version token from the query string, for
// endpoints without a request body.
func queryVersion(c *fiber.Ctx) (uint64, error) {
	raw := c.Query("version")
	if raw == "" {
		return 0, &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: "Missing required query parameter: version",
			Type:    "payload",
		}
	}
	version, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("Invalid version parameter: %v", err),
			Type:    "payload",
		}
	}
	return version, nil
}

// serviceError maps service layer errors onto the response envelope.
func serviceError(c *fiber.Ctx, err error, errorType string) error {
	switch e := err.(type) {
	case types.ValidationErrors:
		return utils.ValidationErrorResponse(c, e)
	case *types.VersionError:
		return utils.VersionErrorResponse(c)
	case *types.NotFoundError:
		return utils.NotFoundResponse(c, fmt.Sprintf("%s not found", e.Resource))
	case *types.CustomError:
		return utils.ErrorResponse(c, e.Message, e.Code, e.Type)
	}
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
}
