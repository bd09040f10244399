package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const defaultAPIVersion = "1.0.0"

// APIVersion reads the X-Api-Version header, normalizes short forms
// ("1" and "1.0" mean "1.0.0") and stores the result in the request
// context for handlers that need it.
func APIVersion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", defaultAPIVersion)

		switch version {
		case "1", "1.0":
			version = defaultAPIVersion
		}

		c.Locals("apiVersion", version)

		return c.Next()
	}
}
