package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"currency-bot/internal"

	goredis "github.com/redis/go-redis/v9"
)

// SnapshotStore keeps raw snapshot bytes in Redis with SET key value EX ttl.
type SnapshotStore struct {
	client *goredis.Client
}

func New(client *goredis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// NewFromURL accepts redis://[user:password@]host:port[/db].
func NewFromURL(rawURL string) (*SnapshotStore, error) {
	opt, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return New(goredis.NewClient(opt)), nil
}

func (s *SnapshotStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, internal.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (s *SnapshotStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("redis set %s: ttl must be positive, got %s", key, ttl)
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *SnapshotStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Close() error {
	return s.client.Close()
}
