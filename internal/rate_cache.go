package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	SnapshotKey        = "currencies"
	DefaultSnapshotTTL = time.Hour
)

// SnapshotStore is a byte store with per-key expiration. Get returns
// ErrCacheMiss for absent or expired keys.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// FeedSource returns the raw upstream document.
type FeedSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

type ParseFunc func(raw []byte) (*RateSnapshot, error)

type SnapshotProvider interface {
	GetOrRefresh(ctx context.Context) (*RateSnapshot, error)
}

// RateCache keeps the whole snapshot under one key. Concurrent misses may both
// fetch and both write; the last write wins.
type RateCache struct {
	store  SnapshotStore
	source FeedSource
	parse  ParseFunc
	ttl    time.Duration
	logger *zap.Logger
}

func NewRateCache(store SnapshotStore, source FeedSource, parse ParseFunc, ttl time.Duration, logger *zap.Logger) *RateCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateCache{
		store:  store,
		source: source,
		parse:  parse,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "rate_cache")),
	}
}

// GetOrRefresh returns the cached snapshot, or fetches, parses and stores a
// fresh one. Fetch and parse errors are returned as is and nothing is written.
// A failed write is logged and the fresh snapshot is still returned.
func (c *RateCache) GetOrRefresh(ctx context.Context) (*RateSnapshot, error) {
	data, err := c.store.Get(ctx, SnapshotKey)
	switch {
	case err == nil:
		var snap RateSnapshot
		decErr := json.Unmarshal(data, &snap)
		if decErr == nil {
			return &snap, nil
		}
		c.logger.Warn("cached snapshot is undecodable, refreshing", zap.Error(decErr))
	case errors.Is(err, ErrCacheMiss):
		c.logger.Debug("cache miss", zap.String("key", SnapshotKey))
	default:
		c.logger.Warn("cache read failed, refreshing", zap.String("key", SnapshotKey), zap.Error(err))
	}

	return c.refresh(ctx)
}

func (c *RateCache) refresh(ctx context.Context) (*RateSnapshot, error) {
	raw, err := c.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh rates: %w", err)
	}

	snap, err := c.parse(raw)
	if err != nil {
		return nil, fmt.Errorf("refresh rates: %w", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		c.logger.Error("encode snapshot", zap.Error(err))
		return snap, nil
	}

	if err := c.store.Set(ctx, SnapshotKey, data, c.ttl); err != nil {
		c.logger.Warn("store snapshot failed", zap.String("key", SnapshotKey), zap.Error(err))
		return snap, nil
	}

	c.logger.Info("rates refreshed",
		zap.Int("currencies", len(snap.Rates)),
		zap.String("date", snap.Date.Display()),
		zap.Duration("ttl", c.ttl),
	)
	return snap, nil
}
