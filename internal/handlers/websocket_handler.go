package handlers

import (
	"context"

	"github.com/alieuroshub001/euroshub-management/internal/handlers/ws"
	"github.com/alieuroshub001/euroshub-management/internal/middleware"
	"github.com/alieuroshub001/euroshub-management/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	presence *service.PresenceTracker
	router   *service.MessageRouter
	typing   *service.TypingNotifier
	log      *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, presence *service.PresenceTracker, router *service.MessageRouter, typing *service.TypingNotifier, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		presence: presence,
		router:   router,
		typing:   typing,
		log:      log,
	}
}

// RequireUpgrade rejects plain HTTP requests on the websocket route.
func (h *WebSocketHandler) RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket serves one authenticated connection until it closes.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	cc, ok := c.Locals(middleware.LocalIdentity).(service.ConnContext)
	if !ok {
		_ = c.Close()
		return
	}

	ctx := context.Background()
	client := h.hub.Register(cc, c)
	h.presence.OnConnect(ctx, cc)

	defer func() {
		h.hub.Unregister(client)
		h.presence.OnDisconnect(ctx, cc)
		// The underlying conn is reused once this handler returns.
		<-client.Done()
		h.log.Info("websocket disconnected",
			zap.Uint("user_id", cc.UserID),
			zap.String("conn_id", cc.ConnID.String()),
		)
	}()

	h.log.Info("websocket connected",
		zap.Uint("user_id", cc.UserID),
		zap.String("conn_id", cc.ConnID.String()),
	)

	msgCtx := &ws.MessageContext{
		Context: ctx,
		Conn:    cc,
		Hub:     h.hub,
		Router:  h.router,
		Typing:  h.typing,
	}

	// Handle incoming messages
	for {
		_, frame, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket read", zap.Uint("user_id", cc.UserID), zap.Error(err))
			}
			return
		}
		ws.Dispatch(msgCtx, frame, h.log)
	}
}
