package service

import (
	"context"
	"testing"
	"time"

	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// chatFixture wires the chat services over in-memory repositories and a
// recording broker.
type chatFixture struct {
	users    *MockUserRepository
	messages *MockMessageRepository
	broker   *recordingBroker
	cache    *recordingStore
	presence *PresenceTracker
	store    *MessageService
	router   *MessageRouter
	typing   *TypingNotifier
}

func newChatFixture(t *testing.T, usernames ...string) *chatFixture {
	t.Helper()

	f := &chatFixture{
		users:  NewMockUserRepository(),
		broker: &recordingBroker{},
		cache:  newRecordingStore(),
	}
	f.messages = NewMockMessageRepository(f.users)

	for i, name := range usernames {
		_ = f.users.Create(context.Background(), &models.User{
			ID:       uint(i + 1),
			Username: name,
			Email:    name + "@example.com",
			Role:     models.RoleEmployee,
			IsActive: true,
		})
	}

	log := zap.NewNop()
	f.presence = NewPresenceTracker(f.users, f.cache, f.broker, nil, log)
	f.store = NewMessageService(f.messages, f.users, 4000, nil)
	f.router = NewMessageRouter(f.store, f.presence, f.broker, nil, log)
	f.typing = NewTypingNotifier(f.presence, f.broker)
	return f
}

// connect opens a connection for userID and reports it to the tracker.
func (f *chatFixture) connect(userID uint) ConnContext {
	user, _ := f.users.FindByID(context.Background(), userID)
	cc := ConnContext{ConnID: uuid.New(), UserID: userID, Role: models.RoleEmployee}
	if user != nil {
		cc.Username = user.Username
	}
	f.presence.OnConnect(context.Background(), cc)
	return cc
}

// steppingClock returns a clock that advances by step on every reading.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}
