package handlers

import (
	"github.com/alieuroshub001/euroshub-management/internal/httpx"
	"github.com/alieuroshub001/euroshub-management/internal/middleware"
	"github.com/alieuroshub001/euroshub-management/internal/service"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	result, err := h.authService.Login(c.UserContext(), input)
	if err != nil {
		return httpx.FromError(c, err, "login_failed")
	}

	return c.JSON(result)
}

// CreateUser adds an account. The route is restricted to roles holding the
// manage-users capability.
func (h *AuthHandler) CreateUser(c *fiber.Ctx) error {
	var input service.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	user, err := h.authService.CreateUser(c.UserContext(), input)
	if err != nil {
		return httpx.FromError(c, err, "create_user_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(user.ToResponse())
}

func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.authService.ListUsers(c.UserContext())
	if err != nil {
		return httpx.FromError(c, err, "list_users_failed")
	}
	return c.JSON(users)
}

func (h *AuthHandler) UpdateUserStatus(c *fiber.Ctx) error {
	actorID, err := httpx.LocalUint(c, middleware.LocalUserID)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	userID, err := c.ParamsInt("id")
	if err != nil || userID <= 0 {
		return httpx.BadRequest(c, "invalid_user_id", "Invalid user ID")
	}

	var input service.UpdateUserStatusInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	user, err := h.authService.SetUserStatus(c.UserContext(), actorID, uint(userID), input)
	if err != nil {
		return httpx.FromError(c, err, "update_user_status_failed")
	}

	message := "User deactivated successfully"
	if user.IsActive {
		message = "User activated successfully"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"user":    user.ToResponse(),
	})
}

// Logout acknowledges the request. Access tokens are stateless and expire on
// their own; clients discard them.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Logout successful"})
}
