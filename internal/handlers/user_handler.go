package handlers

import (
	"github.com/alieuroshub001/euroshub-management/internal/httpx"
	"github.com/alieuroshub001/euroshub-management/internal/middleware"
	"github.com/alieuroshub001/euroshub-management/internal/service"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *service.UserService
	presence    *service.PresenceTracker
}

func NewUserHandler(userService *service.UserService, presence *service.PresenceTracker) *UserHandler {
	return &UserHandler{
		userService: userService,
		presence:    presence,
	}
}

// ListUsers returns the chat contact list of the caller
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, middleware.LocalUserID)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	contacts, err := h.userService.ListContacts(c.UserContext(), userID)
	if err != nil {
		return httpx.FromError(c, err, "list_users_failed")
	}

	return c.JSON(contacts)
}

// GetPresence returns the online state and last-seen time of :userId
func (h *UserHandler) GetPresence(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return httpx.BadRequest(c, "invalid_user", "Invalid userId")
	}

	record, err := h.presence.Status(c.UserContext(), uint(userID))
	if err != nil {
		return httpx.FromError(c, err, "presence_failed")
	}

	return c.JSON(record)
}

// GetCurrentUser gets the authenticated user's profile
func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, middleware.LocalUserID)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	user, err := h.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return httpx.FromError(c, err, "get_user_failed")
	}

	return c.JSON(user.ToResponse())
}
