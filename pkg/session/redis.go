package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces session keys in Redis.
const keyPrefix = "calshare:session:"

// RedisStore is a session store backed by Redis. TTL enforcement is
// delegated to the server-side key expiry, so expired sessions simply
// stop resolving.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Create mints a new session and stores it with the TTL as key expiry.
func (s *RedisStore) Create(ctx context.Context, userID, username string, ttl time.Duration) (*Session, error) {
	sess, err := newSession(userID, username, ttl, s.now())
	if err != nil {
		return nil, err
	}

	payload, err := sonic.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sess.Token, payload, ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Get resolves a token. Redis removes expired keys itself, so a miss is
// reported as absent regardless of cause.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := sonic.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	// Guard against clock skew between app and server.
	if sess.Expired(s.now()) {
		_ = s.client.Del(ctx, keyPrefix+token).Err()
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}
