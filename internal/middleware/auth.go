package middleware

import (
	"fmt"

	"github.com/ekrako/AcadeMaster/internal/services"
	"github.com/ekrako/AcadeMaster/internal/types"
	"github.com/gofiber/fiber/v2"
)

const sessionCookie = "cookie_session"

// AuthUser gates a route behind a valid Authorizer session with the
// "user" role. On success the authenticated user lands in
// c.Locals("user") for handlers to scope their queries by.
func AuthUser() fiber.Handler {
	return requireRoles([]string{"user"}, "data.authorization.user")
}

func requireRoles(roles []string, errorType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := c.Cookies(sessionCookie)
		if session == "" {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: fmt.Sprintf("Authorizer cookie %q not found", sessionCookie),
				Type:    errorType,
			}
		}

		data, err := services.ValidateSession(session, roles)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: fmt.Sprintf("Invalid session: %v", err),
				Type:    errorType,
			}
		}

		if user, ok := data["user"]; ok {
			c.Locals("user", user)
		}

		return c.Next()
	}
}
