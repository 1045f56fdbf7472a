package middleware

import (
	"github.com/alieuroshub001/euroshub-management/internal/httpx"
	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RequireCapability admits only identities whose role holds capability.
// It must run after AuthRequired.
func RequireCapability(capability models.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cc, ok := Identity(c)
		if !ok {
			return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
		}
		if !cc.Can(capability) {
			return httpx.Forbidden(c, "forbidden", "Insufficient permissions")
		}
		return c.Next()
	}
}
