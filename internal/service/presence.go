package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/alieuroshub001/euroshub-management/internal/apperr"
		"github.com/alieuroshub001/euroshub-management/internal/metrics"
	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/alieuroshub001/euroshub-management/internal/repository"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// presenceStripes is the number of transition locks shared by all
// identities.
const presenceStripes = 64

// PresenceStore caches presence records outside the user table.
type PresenceStore interface {
	Set(rec models.PresenceRecord) error
	Get(userID uint) (*models.PresenceRecord, bool)
}

// PresenceTracker counts live connections per identity. A user goes online
// when their first connection opens and offline when their last one closes;
// only those transitions are broadcast.
type PresenceTracker struct {
	mu    sync.Mutex
	conns map[uint]int

	// transitions serializes the count change, persistence and broadcast of
	// an identity, so other clients observe its transitions in count order.
	transitions [presenceStripes]sync.Mutex

	userRepo repository.UserRepositoryInterface
	cache    PresenceStore
	broker   Broker
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewPresenceTracker(userRepo repository.UserRepositoryInterface, store PresenceStore, broker Broker, m *metrics.Metrics, log *zap.Logger) *PresenceTracker {
	return &PresenceTracker{
		conns:    make(map[uint]int),
		userRepo: userRepo,
		cache:    store,
		broker:   broker,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

func (p *PresenceTracker) transition(userID uint) *sync.Mutex {
	return &p.transitions[userID%presenceStripes]
}

// OnConnect records a new live connection for cc's identity. The connection
// must already be registered with the broker.
func (p *PresenceTracker) OnConnect(ctx context.Context, cc ConnContext) {
	lk := p.transition(cc.UserID)
	lk.Lock()
	defer lk.Unlock()

	p.mu.Lock()
	p.conns[cc.UserID]++
	first := p.conns[cc.UserID] == 1
	online := len(p.conns)
	at := p.now()
	p.mu.Unlock()

	p.metrics.SetOnlineUsers(online)
	p.record(ctx, cc.UserID, true, at)

	if first {
		p.log.Info("user online", zap.Uint("user_id", cc.UserID), zap.String("username", cc.Username))
		p.broker.PublishToAll(Event{
			Type:    EventUserOnline,
			Payload: UserPresencePayload{UserID: cc.UserID, Username: cc.Username},
		}, cc.UserID)
	}
}

// OnDisconnect records that one connection of cc's identity has closed.
// Calls for an identity with no live connections are ignored.
func (p *PresenceTracker) OnDisconnect(ctx context.Context, cc ConnContext) {
	lk := p.transition(cc.UserID)
	lk.Lock()
	defer lk.Unlock()

	p.mu.Lock()
	n, ok := p.conns[cc.UserID]
	if !ok {
		p.mu.Unlock()
		return
	}
	n--
	if n == 0 {
		delete(p.conns, cc.UserID)
	} else {
		p.conns[cc.UserID] = n
	}
	online := len(p.conns)
	at := p.now()
	p.mu.Unlock()

	p.metrics.SetOnlineUsers(online)
	p.record(ctx, cc.UserID, n > 0, at)

	if n == 0 {
		p.log.Info("user offline", zap.Uint("user_id", cc.UserID), zap.String("username", cc.Username))
		p.broker.PublishToAll(Event{
			Type:    EventUserOffline,
			Payload: UserPresencePayload{UserID: cc.UserID, Username: cc.Username},
		}, cc.UserID)
	}
}

// record persists the presence change and mirrors it into the cache when the
// stored row moved. A failed write is logged and does not affect the
// connection.
func (p *PresenceTracker) record(ctx context.Context, userID uint, isOnline bool, at time.Time) {
	applied, err := p.userRepo.UpdatePresence(ctx, userID, isOnline, at)
	if err != nil {
		p.log.Warn("persist presence", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	if !applied || p.cache == nil {
		return
	}
	seen := at
	if err := p.cache.Set(models.PresenceRecord{UserID: userID, IsOnline: isOnline, LastSeen: &seen}); err != nil {
		p.log.Warn("cache presence", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (p *PresenceTracker) IsConnected(userID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conns[userID] > 0
}

// Connections returns the number of live connections bound to userID.
func (p *PresenceTracker) Connections(userID uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conns[userID]
}

// OnlineUsers returns the identities with at least one live connection in
// ascending order.
func (p *PresenceTracker) OnlineUsers() []uint {
	p.mu.Lock()
	ids := lo.Keys(p.conns)
	p.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Status returns the presence record of userID. The cache is consulted
// before the user directory; the online flag always reflects live
// connections on this node.
func (p *PresenceTracker) Status(ctx context.Context, userID uint) (models.PresenceRecord, error) {
	if p.cache != nil {
		if rec, ok := p.cache.Get(userID); ok {
			rec.IsOnline = p.IsConnected(userID)
			return *rec, nil
		}
	}
	user, err := p.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PresenceRecord{}, apperr.Validation("userId", "User not found")
		}
		return models.PresenceRecord{}, apperr.Persistence("find user", err)
	}

	rec := user.Presence()
	rec.IsOnline = p.IsConnected(userID)
	return rec, nil
}
