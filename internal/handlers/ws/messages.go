package ws

const (
	MsgSendMessage = "send-message"
	MsgTyping      = "typing"
	MsgStopTyping  = "stop-typing"
)

// MessageSend asks the server to route a chat message.
type MessageSend struct {
	ReceiverID uint   `json:"receiverId"`
	Content    string `json:"content"`
}

func (msg *MessageSend) GetType() string {
	return MsgSendMessage
}

// Process routes the message. Failures are reported to the sender as
// message-error by the router, so they are not returned here.
func (msg *MessageSend) Process(ctx *MessageContext) error {
	_, _ = ctx.Router.Send(ctx.Context, ctx.Conn, msg.ReceiverID, msg.Content)
	return nil
}

// MessageTyping signals that the sender started typing to ReceiverID.
type MessageTyping struct {
	ReceiverID uint `json:"receiverId"`
}

func (msg *MessageTyping) GetType() string {
	return MsgTyping
}

func (msg *MessageTyping) Process(ctx *MessageContext) error {
	ctx.Typing.NotifyTyping(ctx.Conn, msg.ReceiverID)
	return nil
}

// MessageStopTyping signals that the sender stopped typing to ReceiverID.
type MessageStopTyping struct {
	ReceiverID uint `json:"receiverId"`
}

func (msg *MessageStopTyping) GetType() string {
	return MsgStopTyping
}

func (msg *MessageStopTyping) Process(ctx *MessageContext) error {
	ctx.Typing.NotifyStopTyping(ctx.Conn, msg.ReceiverID)
	return nil
}
