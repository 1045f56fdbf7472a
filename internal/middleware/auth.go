package middleware

import (
	"context"

	"github.com/alieuroshub001/euroshub-management/internal/auth"
	"github.com/alieuroshub001/euroshub-management/internal/httpx"
	"github.com/alieuroshub001/euroshub-management/internal/service"
	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID   = "userID"
	LocalIdentity = "identity"
)

// Authenticator binds a credential to a connection context.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (service.ConnContext, error)
}

// AuthRequired authenticates every request with the bearer credential in
// the Authorization header.
func AuthRequired(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return httpx.Unauthorized(c, "missing_access_token", "Missing access token")
		}
		token, ok := auth.BearerToken(authHeader)
		if !ok {
			return httpx.Unauthorized(c, "invalid_authorization", "Invalid authorization format")
		}
		return bind(c, authenticator, token)
	}
}

// WebSocketAuth authenticates a websocket handshake. Browsers cannot set
// headers on websocket requests, so the credential may also come from the
// token query parameter.
func WebSocketAuth(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			token = c.Query("token")
		}
		if token == "" {
			return httpx.Unauthorized(c, "missing_access_token", "Missing access token")
		}
		return bind(c, authenticator, token)
	}
}

func bind(c *fiber.Ctx, authenticator Authenticator, token string) error {
	cc, err := authenticator.Authenticate(c.UserContext(), token)
	if err != nil {
		return httpx.Unauthorized(c, "invalid_access_token", "Invalid or expired token")
	}

	// Store user info in context
	c.Locals(LocalUserID, cc.UserID)
	c.Locals(LocalIdentity, cc)
	return c.Next()
}

// Identity returns the connection context bound by AuthRequired or
// WebSocketAuth.
func Identity(c *fiber.Ctx) (service.ConnContext, bool) {
	cc, ok := c.Locals(LocalIdentity).(service.ConnContext)
	return cc, ok
}
