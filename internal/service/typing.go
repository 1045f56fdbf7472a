package service

// TypingNotifier relays ephemeral typing signals. Nothing is stored and
// signals for receivers that are not connected are dropped.
type TypingNotifier struct {
	presence *PresenceTracker
	broker   Broker
}

func NewTypingNotifier(presence *PresenceTracker, broker Broker) *TypingNotifier {
	return &TypingNotifier{presence: presence, broker: broker}
}

func (t *TypingNotifier) NotifyTyping(cc ConnContext, toID uint) {
	if !t.deliverable(cc, toID) {
		return
	}
	t.broker.PublishToUser(toID, Event{
		Type:    EventUserTyping,
		Payload: UserTypingPayload{UserID: cc.UserID, Username: cc.Username},
	})
}

func (t *TypingNotifier) NotifyStopTyping(cc ConnContext, toID uint) {
	if !t.deliverable(cc, toID) {
		return
	}
	t.broker.PublishToUser(toID, Event{
		Type:    EventUserStopTyping,
		Payload: UserStopTypingPayload{UserID: cc.UserID},
	})
}

func (t *TypingNotifier) deliverable(cc ConnContext, toID uint) bool {
	return toID != 0 && toID != cc.UserID && t.presence.IsConnected(toID)
}
