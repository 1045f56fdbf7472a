package service

import (
	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/google/uuid"
)

// Server-to-client event names.
const (
	EventNewMessage     = "new-message"
	EventMessageSent    = "message-sent"
	EventMessageError   = "message-error"
	EventUserTyping     = "user-typing"
	EventUserStopTyping = "user-stop-typing"
	EventUserOnline     = "user-online"
	EventUserOffline    = "user-offline"
	EventPong           = "pong"
)

// Event is one server-to-client frame.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type UserPresencePayload struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}

type UserTypingPayload struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}

type UserStopTypingPayload struct {
	UserID uint `json:"userId"`
}

type MessageErrorPayload struct {
	Message string `json:"message"`
}

// Broker delivers events to live connections. Publishing never blocks and
// publishing to an identity or connection that is not live is a no-op.
type Broker interface {
	// PublishToUser delivers ev to every connection bound to userID.
	PublishToUser(userID uint, ev Event)
	// PublishToConn delivers ev to one connection.
	PublishToConn(connID uuid.UUID, ev Event)
	// PublishToAll delivers ev to every connection not bound to exceptUserID.
	PublishToAll(ev Event, exceptUserID uint)
}

// ConnContext is the identity bound to a connection at handshake. It never
// changes for the lifetime of the connection.
type ConnContext struct {
	ConnID   uuid.UUID
	UserID   uint
	Username string
	Role     models.Role
}

func (c ConnContext) Can(capability models.Capability) bool {
	return c.Role.Can(capability)
}
