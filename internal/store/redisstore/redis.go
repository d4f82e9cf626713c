// Package redisstore implements store.KV as a single Redis hash.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yiblet/proboost/internal/store"
)

// DefaultHash is the Redis hash holding every key.
const DefaultHash = "proboost:kv"

const opTimeout = 5 * time.Second

// RedisStore stores all keys as fields of one hash.
type RedisStore struct {
	rc   redis.UniversalClient
	hash string
}

// New wraps an existing client. An empty hash selects DefaultHash.
func New(rc redis.UniversalClient, hash string) *RedisStore {
	if hash == "" {
		hash = DefaultHash
	}
	return &RedisStore{rc: rc, hash: hash}
}

// Open parses a redis:// URI, connects and pings the server.
func Open(uri, hash string) (*RedisStore, error) {
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis uri: %w", err)
	}
	rc := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		rc.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return New(rc, hash), nil
}

// Get retrieves a value by key
func (s *RedisStore) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	value, err := s.rc.HGet(ctx, s.hash, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get value: %w", err)
	}
	return value, nil
}

// Set stores a value
func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.rc.HSet(ctx, s.hash, key, value).Err(); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	return nil
}

// Delete removes a key
func (s *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := s.rc.HDel(ctx, s.hash, key).Result()
	if err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	return nil
}

// List returns all key-value pairs
func (s *RedisStore) List() (map[string]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	values, err := s.rc.HGetAll(ctx, s.hash).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list values: %w", err)
	}
	return values, nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.rc.Close()
}
