package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/resume-builder/internal/types"
)

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps preferences as JSON strings under resume:<id>:layout.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, &StoreError{Backend: "redis", Op: "ping", Cause: err}
	}
	log.Printf("[INFO] redis preference store connected to %s (db %d)", cfg.Addr, cfg.DB)
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, resumeID string) (*types.LayoutPreferences, error) {
	val, err := s.client.Get(ctx, Key(resumeID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Backend: "redis", Op: "get", Cause: err}
	}

	var p types.LayoutPreferences
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, &StoreError{Backend: "redis", Op: "decode", Cause: err}
	}
	return &p, nil
}

func (s *RedisStore) Put(ctx context.Context, resumeID string, p types.LayoutPreferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return &StoreError{Backend: "redis", Op: "encode", Cause: err}
	}
	if err := s.client.Set(ctx, Key(resumeID), raw, 0).Err(); err != nil {
		return &StoreError{Backend: "redis", Op: "set", Cause: err}
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, resumeID string) error {
	if err := s.client.Del(ctx, Key(resumeID)).Err(); err != nil {
		return &StoreError{Backend: "redis", Op: "delete", Cause: err}
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
