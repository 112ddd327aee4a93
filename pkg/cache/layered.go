package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache keeps a small in-process L1 in front of a shared L2 such as
// Redis. Writes go to L2 first; L2 hits are promoted into L1.
type LayeredCache struct {
	l1    *MemoryCache
	l2    Service
	l1TTL time.Duration
}

// NewLayeredCache creates a layered cache with memory in front of l2.
func NewLayeredCache(l2 Service, opts ...LayeredOption) *LayeredCache {
	cfg := LayeredConfig{
		MemoryMaxSize: 1000,
		MemoryTTL:     time.Minute,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &LayeredCache{
		l1:    NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		l2:    l2,
		l1TTL: cfg.MemoryTTL,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if err := lc.l2.Set(ctx, key, data, expiration); err != nil {
		return err
	}
	return lc.l1.setRaw(ctx, key, data, lc.promoteTTL(expiration))
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if data, _, err := lc.l1.getRaw(ctx, key); err == nil {
		return decode(data, dest)
	}

	if raw, ok := lc.l2.(rawStore); ok {
		data, left, err := raw.getRaw(ctx, key)
		if err != nil {
			return err
		}
		_ = lc.l1.setRaw(ctx, key, data, lc.promoteTTL(left))
		return decode(data, dest)
	}

	var data []byte
	if err := lc.l2.Get(ctx, key, &data); err != nil {
		return err
	}
	_ = lc.l1.setRaw(ctx, key, data, lc.l1TTL)
	return decode(data, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.l1.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.l2.Exists(ctx, keys...)
}

// promoteTTL keeps L1 entries no longer than the L2 entry they mirror.
func (lc *LayeredCache) promoteTTL(l2Left time.Duration) time.Duration {
	if l2Left > 0 && l2Left < lc.l1TTL {
		return l2Left
	}
	return lc.l1TTL
}

// Close closes both tiers.
func (lc *LayeredCache) Close() error {
	return errors.Join(lc.l1.Close(), lc.l2.Close())
}
