package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 5 * time.Second

// RedisStore keeps the snapshot under one string key and each stream as a
// list, all under a shared key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to url and pings it before returning.
func NewRedisStore(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) key(parts ...string) string {
	if s.prefix == "" {
		return strings.Join(parts, ":")
	}
	return s.prefix + ":" + strings.Join(parts, ":")
}

func (s *RedisStore) ReadSnapshot() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	data, err := s.client.Get(ctx, s.key("nerves")).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get nerves: %w", err)
	}
	return data, nil
}

func (s *RedisStore) WriteSnapshot(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.key("nerves"), data, 0).Err(); err != nil {
		return fmt.Errorf("set nerves: %w", err)
	}
	return nil
}

func (s *RedisStore) AppendLine(stream Stream, line string) error {
	if stream != Ledger && stream != Dreams {
		return fmt.Errorf("unknown stream %q", stream)
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.RPush(ctx, s.key(string(stream)), line).Err(); err != nil {
		return fmt.Errorf("append %s: %w", stream, err)
	}
	return nil
}

// Tail returns the last n lines of stream in append order (all when n <= 0).
func (s *RedisStore) Tail(stream Stream, n int) ([]string, error) {
	if stream != Ledger && stream != Dreams {
		return nil, fmt.Errorf("unknown stream %q", stream)
	}
	start := int64(0)
	if n > 0 {
		start = -int64(n)
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	lines, err := s.client.LRange(ctx, s.key(string(stream)), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("tail %s: %w", stream, err)
	}
	return lines, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
