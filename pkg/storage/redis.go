package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores values as Redis strings under a key prefix.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to the Redis server at url (redis://host:port/db) and
// verifies the connection with a PING. A zero ttl stores keys without expiry.
func NewRedis(ctx context.Context, url, prefix string, ttl time.Duration) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisFromClient(client, prefix, ttl), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

// Get fetches the value for key.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := retry(ctx, func() error {
		v, err := b.client.Get(ctx, b.key(key)).Bytes()
		if err != nil {
			return classify(err)
		}
		data = v
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key with the configured TTL.
func (b *RedisBackend) Set(ctx context.Context, key string, data []byte) error {
	return retry(ctx, func() error {
		return classify(b.client.Set(ctx, b.key(key), data, b.ttl).Err())
	})
}

// Delete removes key.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return retry(ctx, func() error {
		return classify(b.client.Del(ctx, b.key(key)).Err())
	})
}

// Close closes the client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// Driver returns "redis".
func (b *RedisBackend) Driver() string { return "redis" }

func (b *RedisBackend) key(key string) string {
	return b.prefix + key
}

// classify marks connection-level failures as retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Retryable(err)
	}
	return err
}

// Ensure RedisBackend implements Backend.
var _ Backend = (*RedisBackend)(nil)
