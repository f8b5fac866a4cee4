package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/libreria-austral/storefront-gateway/pkg/redis"
)

type mirrorStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionFieldKey(sessionID, field string) string
}

// RedisMirror persists carts under the session's "cart" field, the durable
// analogue of localStorage.setItem("cart", ...).
type RedisMirror struct {
	store mirrorStore
	ttl   time.Duration
}

// NewRedisMirror builds the durable cart mirror.
func NewRedisMirror(store mirrorStore, ttl time.Duration) (*RedisMirror, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	return &RedisMirror{store: store, ttl: ttl}, nil
}

func (m *RedisMirror) SaveCart(ctx context.Context, sessionID string, lines []Line) error {
	encoded, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return m.store.Set(ctx, m.store.SessionFieldKey(sessionID, redis.FieldCart), encoded, m.ttl)
}

func (m *RedisMirror) LoadCart(ctx context.Context, sessionID string) ([]Line, bool, error) {
	raw, err := m.store.Get(ctx, m.store.SessionFieldKey(sessionID, redis.FieldCart))
	if err != nil {
		if redis.IsMissing(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, false, fmt.Errorf("decode cart: %w", err)
	}
	return lines, true, nil
}

func (m *RedisMirror) DeleteCart(ctx context.Context, sessionID string) error {
	return m.store.Del(ctx, m.store.SessionFieldKey(sessionID, redis.FieldCart))
}
