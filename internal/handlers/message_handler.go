package handlers

import (
	"github.com/alieuroshub001/euroshub-management/internal/httpx"
	"github.com/alieuroshub001/euroshub-management/internal/middleware"
	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/alieuroshub001/euroshub-management/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type MessageHandler struct {
	messageService *service.MessageService
	router         *service.MessageRouter
}

func NewMessageHandler(messageService *service.MessageService, router *service.MessageRouter) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		router:         router,
	}
}

type sendMessageRequest struct {
	ReceiverID uint   `json:"receiverId"`
	Content    string `json:"content"`
}

// SendMessage persists a message over HTTP and attempts live delivery.
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	cc, ok := middleware.Identity(c)
	if !ok {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input sendMessageRequest
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, err := h.router.Send(c.UserContext(), cc, input.ReceiverID, input.Content)
	if err != nil {
		return httpx.FromError(c, err, "send_message_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

// GetMessages returns one page of the conversation with :receiverId and
// marks the caller's unread messages in it as read.
func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, middleware.LocalUserID)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	peerID, err := c.ParamsInt("receiverId")
	if err != nil || peerID <= 0 {
		return httpx.BadRequest(c, "invalid_receiver", "Invalid receiverId")
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", service.DefaultPageSize)

	messages, err := h.messageService.ListConversation(c.UserContext(), userID, uint(peerID), page, limit)
	if err != nil {
		return httpx.FromError(c, err, "fetch_messages_failed")
	}

	return c.JSON(lo.Map(messages, func(m models.Message, _ int) models.MessageResponse {
		return m.ToResponse()
	}))
}

func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, middleware.LocalUserID)
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	count, err := h.messageService.CountUnread(c.UserContext(), userID)
	if err != nil {
		return httpx.FromError(c, err, "unread_count_failed")
	}

	return c.JSON(fiber.Map{
		"count": count,
	})
}
