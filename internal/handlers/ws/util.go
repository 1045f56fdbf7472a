package ws

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"
)

var errMissingType = errors.New("missing message type")

func Serialize(msg Message) ([]byte, error) {
	payload, err := ToJson(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SerializedMessage{
		Type:    msg.GetType(),
		Payload: payload,
	})
}

func Deserialize(jsonBytes []byte) (Message, error) {
	var wrapper SerializedMessage
	if err := json.Unmarshal(jsonBytes, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Type == "" {
		return nil, errMissingType
	}

	msg, err := CreateMessage(wrapper.Type, typeRegistry)
	if err != nil {
		return nil, err
	}
	if err := FromJson(wrapper.Payload, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Dispatch decodes one inbound frame and processes it. Frames that cannot be
// decoded or processed are answered with an error event on the same
// connection.
func Dispatch(ctx *MessageContext, frame []byte, log *zap.Logger) {
	msg, err := Deserialize(frame)
	if err != nil {
		log.Debug("invalid frame", zap.Uint("user_id", ctx.Conn.UserID), zap.Error(err))
		SendError(ctx, "invalid_message", "Invalid message format", err.Error())
		return
	}

	if err := msg.Process(ctx); err != nil {
		log.Warn("process frame",
			zap.String("type", msg.GetType()),
			zap.Uint("user_id", ctx.Conn.UserID),
			zap.Error(err),
		)
		SendError(ctx, "processing_failed", "Failed to process message", "")
	}
}
