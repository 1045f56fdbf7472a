package handlers

import (
	"github.com/alieuroshub001/euroshub-management/internal/handlers/ws"
	"github.com/alieuroshub001/euroshub-management/internal/service"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db       *gorm.DB
	hub      *ws.Hub
	presence *service.PresenceTracker
}

func NewHealthHandler(db *gorm.DB, hub *ws.Hub, presence *service.PresenceTracker) *HealthHandler {
	return &HealthHandler{db: db, hub: hub, presence: presence}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "ok"
	code := fiber.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":      status,
		"message":     "EurosHub Management API is running!",
		"connections": h.hub.Count(),
		"onlineUsers": len(h.presence.OnlineUsers()),
	})
}
