package session

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libreria-austral/storefront-gateway/pkg/redis"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (s *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	}
	return nil
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (s *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *fakeStore) SessionFieldKey(sessionID, field string) string {
	return "sf:session:" + sessionID + ":" + field
}

func TestSessionMirrorRoundTrip(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mirror, err := NewRedisMirror(store, time.Hour)
	require.NoError(t, err)

	identity := Identity{ID: "u1", Name: "Ana", Role: "admin"}
	require.NoError(t, mirror.SaveSession(context.Background(), "s1", identity, "token"))

	loaded, credential, found, err := mirror.LoadSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "token", credential)
	require.NotNil(t, loaded)
	assert.Equal(t, identity, *loaded)
}

func TestSessionMirrorMissing(t *testing.T) {
	t.Parallel()

	mirror, err := NewRedisMirror(newFakeStore(), time.Hour)
	require.NoError(t, err)

	_, _, found, err := mirror.LoadSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionMirrorIncompletePair(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mirror, err := NewRedisMirror(store, time.Hour)
	require.NoError(t, err)

	// Identity present, credential missing: the pair must read as absent.
	store.values[store.SessionFieldKey("s1", redis.FieldUser)] = `{"id":"u1","name":"Ana","role":"client"}`

	_, _, found, err := mirror.LoadSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionMirrorDeleteClearsBothFields(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mirror, err := NewRedisMirror(store, time.Hour)
	require.NoError(t, err)

	require.NoError(t, mirror.SaveSession(context.Background(), "s1", Identity{ID: "u1"}, "token"))
	require.NoError(t, mirror.DeleteSession(context.Background(), "s1"))

	assert.Empty(t, store.values)
}
