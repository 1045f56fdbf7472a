package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/alieuroshub001/euroshub-management/internal/service"
)

// MessageContext provides all dependencies needed for message processing
type MessageContext struct {
	Context context.Context
	Conn    service.ConnContext
	Hub     *Hub
	Router  *service.MessageRouter
	Typing  *service.TypingNotifier
}

// Message interface for all inbound WebSocket message types
type Message interface {
	GetType() string
	Process(ctx *MessageContext) error
}

// SerializedMessage is the wire format wrapper
type SerializedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const EventError = "error"

// ErrorPayload is sent when a frame cannot be decoded or processed
type ErrorPayload struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func ToJson(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func FromJson(jsonBytes []byte, msg Message) error {
	if len(jsonBytes) == 0 || string(jsonBytes) == "null" {
		return nil
	}
	return json.Unmarshal(jsonBytes, msg)
}

func CreateMessage(msgType string, typeRegistry map[string]reflect.Type) (Message, error) {
	msgTypeReflect, ok := typeRegistry[msgType]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}

	instance := reflect.New(msgTypeReflect).Interface()
	return instance.(Message), nil
}

// SendError queues an error event for the connection in ctx
func SendError(ctx *MessageContext, code, message, details string) {
	ctx.Hub.PublishToConn(ctx.Conn.ConnID, service.Event{
		Type: EventError,
		Payload: ErrorPayload{
			Error:   message,
			Code:    code,
			Details: details,
		},
	})
}
