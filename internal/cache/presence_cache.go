package cache

import (
	"fmt"
	"time"

	"github.com/alieuroshub001/euroshub-management/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	PresenceTTL    = 24 * time.Hour
	onlineUsersKey = "presence:online"
)

// PresenceCache keeps the latest presence record per user in Redis so
// contact lists and status lookups avoid the user table. A nil cache, or one
// without a Redis client, behaves as an always-missing cache.
type PresenceCache struct {
	redis *RedisCache
}

func NewPresenceCache(redis *RedisCache) *PresenceCache {
	return &PresenceCache{redis: redis}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("presence:%d", userID)
}

func encodePresence(rec models.PresenceRecord) ([]byte, error) {
	return msgpack.Marshal(rec)
}

func decodePresence(data []byte) (*models.PresenceRecord, error) {
	var rec models.PresenceRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Set stores rec and keeps the online-users set in step with it.
func (pc *PresenceCache) Set(rec models.PresenceRecord) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	data, err := encodePresence(rec)
	if err != nil {
		return err
	}
	if err := pc.redis.Set(presenceKey(rec.UserID), data, PresenceTTL); err != nil {
		return err
	}
	if rec.IsOnline {
		return pc.redis.SetAdd(onlineUsersKey, rec.UserID)
	}
	return pc.redis.SetRemove(onlineUsersKey, rec.UserID)
}

func (pc *PresenceCache) Get(userID uint) (*models.PresenceRecord, bool) {
	if pc == nil || pc.redis == nil {
		return nil, false
	}
	data, err := pc.redis.Get(presenceKey(userID))
	if err != nil || data == nil {
		return nil, false
	}
	rec, err := decodePresence(data)
	if err != nil {
		return nil, false
	}
	return rec, true
}

// OnlineCount returns the size of the online-users set.
func (pc *PresenceCache) OnlineCount() (int64, error) {
	if pc == nil || pc.redis == nil {
		return 0, nil
	}
	return pc.redis.SetCard(onlineUsersKey)
}

// ResetOnline empties the online-users set. Called at startup, when no
// connection from a previous process can still be live.
func (pc *PresenceCache) ResetOnline() error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	return pc.redis.Delete(onlineUsersKey)
}
