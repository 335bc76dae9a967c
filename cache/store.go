// api/cache/store.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	atlas_errors "github.com/mapcanvas/atlas/api/errors"
	logger "github.com/mapcanvas/atlas/api/logging"
)

// Entry is a cached response: enough to replay it without running the
// handler.
type Entry struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    []byte            `json:"body"`
}

// Store is the key/value capability the response cache is built on.
// All operations are single-key atomic; there is no cross-key
// transaction and none is required.
type Store interface {
	GetEntry(ctx context.Context, key string) (*Entry, error)
	SetEntry(ctx context.Context, key string, entry *Entry, ttl time.Duration) error

	IsTracked(ctx context.Context, metakey, key string) (bool, error)
	TrackKey(ctx context.Context, metakey, key string, ttl time.Duration) error
	DropTracked(ctx context.Context, metakeys ...string) error

	GetAttributes(ctx context.Context, key string) (map[string]string, error)
	SetAttributes(ctx context.Context, key string, attrs map[string]string, ttl time.Duration) error
	DeleteAttributes(ctx context.Context, keys ...string) error
}

// RedisStore implements Store on a shared Redis client. Tracked key
// sets are Redis sets so membership checks and wholesale drops stay
// single commands.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) GetEntry(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", atlas_errors.ErrCacheUnavailable, err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// A corrupt entry is a miss; it will be rewritten on the next store.
		logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return &entry, nil
}

func (s *RedisStore) SetEntry(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", atlas_errors.ErrCacheUnavailable, err)
	}
	return nil
}

func (s *RedisStore) IsTracked(ctx context.Context, metakey, key string) (bool, error) {
	member, err := s.client.SIsMember(ctx, metakey, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", atlas_errors.ErrCacheUnavailable, err)
	}
	return member, nil
}

func (s *RedisStore) TrackKey(ctx context.Context, metakey, key string, ttl time.Duration) error {
	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, metakey, key)
	pipe.Expire(ctx, metakey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", atlas_errors.ErrCacheUnavailable, err)
	}
	return nil
}

func (s *RedisStore) DropTracked(ctx context.Context, metakeys ...string) error {
	if len(metakeys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, metakeys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", atlas_errors.ErrCacheUnavailable, err)
	}
	return nil
}

func (s *RedisStore) GetAttributes(ctx context.Context, key string) (map[string]string, error) {
	attrs, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", atlas_errors.ErrCacheUnavailable, err)
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	return attrs, nil
}

func (s *RedisStore) SetAttributes(ctx context.Context, key string, attrs map[string]string, ttl time.Duration) error {
	values := make([]interface{}, 0, len(attrs)*2)
	for k, v := range attrs {
		values = append(values, k, v)
	}
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, values...)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", atlas_errors.ErrCacheUnavailable, err)
	}
	return nil
}

func (s *RedisStore) DeleteAttributes(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", atlas_errors.ErrCacheUnavailable, err)
	}
	return nil
}
