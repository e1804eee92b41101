package artifact

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStore_Lifecycle(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Hour)
	ctx := context.Background()
	data := []byte("%PDF-1.4\x00\x01\x02")

	id, err := store.Put(ctx, Blob{Data: data, MimeType: "application/pdf", FileName: "audit-report-5.pdf"})
	require.NoError(t, err)

	key := artifactKey(id)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	blob, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, data, blob.Data)
	assert.Equal(t, "application/pdf", blob.MimeType)
	assert.Equal(t, "audit-report-5.pdf", blob.FileName)

	require.NoError(t, store.Release(ctx, id))
	assert.False(t, mr.Exists(key))

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Release(ctx, id))
}

func TestRedisStore_ExpiredArtifact(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Put(ctx, Blob{Data: []byte("%PDF"), MimeType: "application/pdf"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_UnknownID(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Minute)
	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
