// api/auth/session.go
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mapcanvas/atlas/api/model"
)

// RedisSessionStore keeps session tokens in Redis, mapping each token
// to the username that opened it.
type RedisSessionStore struct {
	client *redis.Client
	users  UserStore
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, users UserStore, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, users: users, ttl: ttl}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Open creates a session for the user and returns its token.
func (s *RedisSessionStore) Open(ctx context.Context, username string) (string, error) {
	token := uuid.New().String()
	if err := s.client.Set(ctx, sessionKey(token), username, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Close removes a session token.
func (s *RedisSessionStore) Close(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// UserForSession resolves a session token to its user. Unknown or
// expired tokens return (nil, nil).
func (s *RedisSessionStore) UserForSession(ctx context.Context, token string) (*model.User, error) {
	username, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	return s.users.GetUserByUsername(ctx, username)
}
