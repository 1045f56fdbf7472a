package service

import (
	"context"
	"errors"

	"github.com/alieuroshub001/euroshub-management/internal/apperr"
	"github.com/alieuroshub001/euroshub-management/internal/metrics"
	"github.com/alieuroshub001/euroshub-management/internal/models"
	"go.uber.org/zap"
)

const sendFailedMessage = "Failed to send message"

// MessageRouter persists a message, delivers it to the receiver when they
// are connected and acknowledges it to the sending connection.
type MessageRouter struct {
	messages *MessageService
	presence *PresenceTracker
	broker   Broker
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewMessageRouter(messages *MessageService, presence *PresenceTracker, broker Broker, m *metrics.Metrics, log *zap.Logger) *MessageRouter {
	return &MessageRouter{
		messages: messages,
		presence: presence,
		broker:   broker,
		metrics:  m,
		log:      log,
	}
}

// Send routes one message from cc. On failure a message-error event goes to
// cc's connection only and the error is returned to the caller.
func (r *MessageRouter) Send(ctx context.Context, cc ConnContext, receiverID uint, content string) (*models.Message, error) {
	message, err := r.messages.Append(ctx, cc.UserID, receiverID, content)
	if err != nil {
		text := sendFailedMessage
		outcome := "failed"
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			text = ve.Message
			outcome = "invalid"
		} else {
			r.log.Error("send message",
				zap.Uint("sender_id", cc.UserID),
				zap.Uint("receiver_id", receiverID),
				zap.Error(err),
			)
		}
		r.metrics.MessageOutcome(outcome)
		r.broker.PublishToConn(cc.ConnID, Event{
			Type:    EventMessageError,
			Payload: MessageErrorPayload{Message: text},
		})
		return nil, err
	}

	record := message.ToResponse()
	if r.presence.IsConnected(receiverID) {
		r.broker.PublishToUser(receiverID, Event{Type: EventNewMessage, Payload: record})
	}
	r.broker.PublishToConn(cc.ConnID, Event{Type: EventMessageSent, Payload: record})
	r.metrics.MessageOutcome("sent")
	return message, nil
}
