package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codr1/Opsboard/internal/config"
)

const redisKeyPrefix = "opsboard:session:"

// RedisStore shares sessions between server instances. Keys expire with
// the session.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Address, err)
	}
	return &RedisStore{client: client, now: time.Now}, nil
}

func (s *RedisStore) Save(ctx context.Context, token string, sess Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+hashToken(token), data, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, token string) (Session, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+hashToken(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if !sess.ExpiresAt.After(s.now()) {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, redisKeyPrefix+hashToken(token)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NewSessionStore builds the store named in the auth config.
func NewSessionStore(ctx context.Context, cfg config.AuthConfig) (SessionStore, error) {
	switch cfg.SessionStore {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.SessionStore)
	}
}
