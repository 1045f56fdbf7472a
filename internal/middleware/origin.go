package middleware

import (
	"strings"

	"github.com/alieuroshub001/euroshub-management/internal/httpx"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// OriginAllowed rejects requests whose Origin header is not in allowed. CORS
// does not cover websocket handshakes, so the upgrade route checks here.
// Requests without an Origin, or an empty allow-list, pass.
func OriginAllowed(allowed []string) fiber.Handler {
	allowedOrigins := lo.Compact(lo.Map(allowed, func(o string, _ int) string {
		return strings.TrimRight(strings.TrimSpace(o), "/")
	}))
	return func(c *fiber.Ctx) error {
		origin := strings.TrimSpace(c.Get(fiber.HeaderOrigin))
		if origin == "" || len(allowedOrigins) == 0 {
			return c.Next()
		}
		if !lo.Contains(allowedOrigins, origin) {
			return httpx.Forbidden(c, "forbidden_origin", "Origin not allowed")
		}
		return c.Next()
	}
}
