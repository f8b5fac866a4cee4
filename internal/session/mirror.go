package session

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

// RedisMirror keeps the pair under the session's "user" and "token" fields,
// the durable analogues of the browser's localStorage entries.
type RedisMirror struct {
	store mirrorStore
	ttl   time.Duration
}

// NewRedisMirror builds the durable session mirror.
func NewRedisMirror(store mirrorStore, ttl time.Duration) (*RedisMirror, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	return &RedisMirror{store: store, ttl: ttl}, nil
}

func (m *RedisMirror) SaveSession(ctx context.Context, sessionID string, identity Identity, credential string) error {
	encoded, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := m.store.Set(ctx, m.store.SessionFieldKey(sessionID, redis.FieldUser), encoded, m.ttl); err != nil {
		return err
	}
	return m.store.Set(ctx, m.store.SessionFieldKey(sessionID, redis.FieldToken), credential, m.ttl)
}

func (m *RedisMirror) LoadSession(ctx context.Context, sessionID string) (*Identity, string, bool, error) {
	rawUser, err := m.store.Get(ctx, m.store.SessionFieldKey(sessionID, redis.FieldUser))
	if err != nil {
		if redis.IsMissing(err) {
			return nil, "", false, nil
		}
		return nil, "", false, err
	}

	credential, err := m.store.Get(ctx, m.store.SessionFieldKey(sessionID, redis.FieldToken))
	if err != nil {
		if redis.IsMissing(err) {
			// Identity without credential is an incomplete pair.
			return nil, "", false, nil
		}
		return nil, "", false, err
	}

	var identity Identity
	if err := json.Unmarshal([]byte(rawUser), &identity); err != nil {
		return nil, "", false, fmt.Errorf("decode identity: %w", err)
	}
	return &identity, credential, true, nil
}

func (m *RedisMirror) DeleteSession(ctx context.Context, sessionID string) error {
	return m.store.Del(ctx,
		m.store.SessionFieldKey(sessionID, redis.FieldUser),
		m.store.SessionFieldKey(sessionID, redis.FieldToken),
	)
}
