package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alieuroshub001/euroshub-management/internal/apperr"
	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceOnlineBroadcastOnce(t *testing.T) {
	f := newChatFixture(t, "alice", "bob")

	f.connect(2)
	f.connect(1)
	f.connect(1)

	var online []UserPresencePayload
	for _, p := range f.broker.broadcasts() {
		if p.event.Type == EventUserOnline {
			payload := p.event.Payload.(UserPresencePayload)
			if payload.UserID == 1 {
				assert.Equal(t, uint(1), p.except)
				online = append(online, payload)
			}
		}
	}
	require.Len(t, online, 1)
	assert.Equal(t, "alice", online[0].Username)
	assert.True(t, f.presence.IsConnected(1))
	assert.Equal(t, 2, f.presence.Connections(1))
	assert.Equal(t, []uint{1, 2}, f.presence.OnlineUsers())
}

func TestPresenceOfflineAfterLastConnection(t *testing.T) {
	f := newChatFixture(t, "alice")
	ctx := context.Background()

	first := f.connect(1)
	second := f.connect(1)

	f.presence.OnDisconnect(ctx, first)
	assert.True(t, f.presence.IsConnected(1))
	user, _ := f.users.FindByID(ctx, 1)
	assert.True(t, user.IsOnline)

	f.presence.OnDisconnect(ctx, second)
	assert.False(t, f.presence.IsConnected(1))
	user, _ = f.users.FindByID(ctx, 1)
	assert.False(t, user.IsOnline)

	var offline int
	for _, p := range f.broker.broadcasts() {
		if p.event.Type == EventUserOffline {
			offline++
			assert.Equal(t, UserPresencePayload{UserID: 1, Username: "alice"}, p.event.Payload)
		}
	}
	assert.Equal(t, 1, offline)

	// A stray disconnect for an identity with no live connections is ignored.
	f.presence.OnDisconnect(ctx, second)
	assert.Len(t, f.broker.broadcasts(), 2)
}

func TestPresenceLastSeenNonDecreasing(t *testing.T) {
	f := newChatFixture(t, "alice")
	ctx := context.Background()
	f.presence.now = steppingClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), time.Minute)

	var previous time.Time
	for i := 0; i < 3; i++ {
		cc := f.connect(1)
		user, _ := f.users.FindByID(ctx, 1)
		require.NotNil(t, user.LastSeen)
		assert.False(t, user.LastSeen.Before(previous))
		previous = *user.LastSeen

		f.presence.OnDisconnect(ctx, cc)
		user, _ = f.users.FindByID(ctx, 1)
		assert.True(t, user.LastSeen.After(previous))
		previous = *user.LastSeen
	}
}

func TestPresenceStatus(t *testing.T) {
	f := newChatFixture(t, "alice", "bob")
	ctx := context.Background()

	rec, err := f.presence.Status(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), rec.UserID)
	assert.False(t, rec.IsOnline)
	assert.Nil(t, rec.LastSeen)

	f.connect(2)
	rec, err = f.presence.Status(ctx, 2)
	require.NoError(t, err)
	assert.True(t, rec.IsOnline)
	assert.NotNil(t, rec.LastSeen)

	_, err = f.presence.Status(ctx, 42)
	assert.True(t, apperr.IsValidation(err))

	f.users.Fail(errStoreDown)
	_, err = f.presence.Status(ctx, 1)
	assert.True(t, apperr.IsPersistence(err))
}

func TestPresencePersistenceFailureKeepsConnection(t *testing.T) {
	f := newChatFixture(t, "alice")
	f.users.Fail(errStoreDown)

	cc := ConnContext{UserID: 1, Username: "alice", Role: models.RoleEmployee}
	f.presence.OnConnect(context.Background(), cc)

	assert.True(t, f.presence.IsConnected(1))
	assert.Len(t, f.broker.broadcasts(), 1)
}

func TestPresenceSlowOfflineWriteDoesNotOverrideReconnect(t *testing.T) {
	f := newChatFixture(t, "alice", "bob")
	ctx := context.Background()
	first := f.connect(1)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.users.OnPresenceWrite(func(_ uint, isOnline bool) {
		if !isOnline {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		f.presence.OnDisconnect(ctx, first)
	}()
	<-entered
	go func() {
		defer wg.Done()
		f.connect(1)
	}()
	// Give the reconnect time to reach the tracker before the offline write finishes.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.True(t, f.presence.IsConnected(1))
	assert.Equal(t, []string{EventUserOnline, EventUserOffline, EventUserOnline}, f.broker.presenceBroadcasts(1))

	user, err := f.users.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, user.IsOnline)
	rec, ok := f.cache.Get(1)
	require.True(t, ok)
	assert.True(t, rec.IsOnline)
}

func TestPresenceConcurrentConnectDisconnect(t *testing.T) {
	f := newChatFixture(t, "alice", "bob")
	ctx := context.Background()
	const workers = 16

	kept := make([]ConnContext, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := f.connect(1)
			b := f.connect(1)
			f.presence.OnDisconnect(ctx, a)
			kept[i] = b
		}(i)
	}
	wg.Wait()

	assert.Equal(t, workers, f.presence.Connections(1))
	assertAlternating(t, f.broker.presenceBroadcasts(1), EventUserOnline)
	user, err := f.users.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, user.IsOnline)

	for _, cc := range kept {
		wg.Add(1)
		go func(cc ConnContext) {
			defer wg.Done()
			f.presence.OnDisconnect(ctx, cc)
		}(cc)
	}
	wg.Wait()

	assert.False(t, f.presence.IsConnected(1))
	assert.Empty(t, f.presence.OnlineUsers())
	assertAlternating(t, f.broker.presenceBroadcasts(1), EventUserOffline)
	user, err = f.users.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, user.IsOnline)
	rec, ok := f.cache.Get(1)
	require.True(t, ok)
	assert.False(t, rec.IsOnline)
}

// assertAlternating checks that presence broadcasts alternate between online
// and offline, starting with online and ending with last.
func assertAlternating(t *testing.T, events []string, last string) {
	t.Helper()
	require.NotEmpty(t, events)
	for i, ev := range events {
		want := EventUserOnline
		if i%2 == 1 {
			want = EventUserOffline
		}
		assert.Equal(t, want, ev, "broadcast %d", i)
	}
	assert.Equal(t, last, events[len(events)-1])
}

func TestPresenceCacheSkipsStaleWrite(t *testing.T) {
	f := newChatFixture(t, "alice")
	ctx := context.Background()

	future := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
	user, err := f.users.FindByID(ctx, 1)
	require.NoError(t, err)
	user.LastSeen = &future
	require.NoError(t, f.users.Create(ctx, user))

	f.connect(1)
	_, ok := f.cache.Get(1)
	assert.False(t, ok, "cache written although the stored presence is newer")

	f.presence.now = func() time.Time { return future.Add(time.Minute) }
	cc := f.connect(1)
	rec, ok := f.cache.Get(1)
	require.True(t, ok)
	assert.True(t, rec.LastSeen.Equal(future.Add(time.Minute)))

	f.presence.now = func() time.Time { return future.Add(-time.Minute) }
	f.presence.OnDisconnect(ctx, cc)
	rec, ok = f.cache.Get(1)
	require.True(t, ok)
	assert.True(t, rec.LastSeen.Equal(future.Add(time.Minute)))
}
