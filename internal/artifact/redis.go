package artifact

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	fieldData     = "data"
	fieldMimeType = "mime_type"
	fieldFileName = "file_name"
)

// RedisStore хранит файлы в Redis. TTL страхует от файлов,
// которые не были освобождены (например, после падения процесса).
type RedisStore struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewRedisStore создаёт хранилище поверх клиента Redis
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redisClient: client,
		ttl:         ttl,
	}
}

func artifactKey(id uuid.UUID) string {
	return fmt.Sprintf("artifact:%s", id.String())
}

func (s *RedisStore) Put(ctx context.Context, blob Blob) (uuid.UUID, error) {
	id := uuid.New()
	key := artifactKey(id)

	_, err := s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			fieldData:     blob.Data,
			fieldMimeType: blob.MimeType,
			fieldFileName: blob.FileName,
		})
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to store artifact: %w", err)
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*Blob, error) {
	fields, err := s.redisClient.HGetAll(ctx, artifactKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	data, ok := fields[fieldData]
	if !ok {
		return nil, ErrNotFound
	}
	return &Blob{
		Data:     []byte(data),
		MimeType: fields[fieldMimeType],
		FileName: fields[fieldFileName],
	}, nil
}

func (s *RedisStore) Release(ctx context.Context, id uuid.UUID) error {
	if err := s.redisClient.Del(ctx, artifactKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to release artifact: %w", err)
	}
	return nil
}
