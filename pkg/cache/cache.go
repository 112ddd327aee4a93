// Package cache provides byte-oriented caches (memory, Redis and a two-tier
// combination) behind one Service interface. Values are stored as JSON
// except strings and byte slices, which are stored verbatim.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Service defines cache operations.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Close() error
}

// rawStore is implemented by backends that can hand out encoded entries,
// letting LayeredCache copy between tiers without a decode round trip.
type rawStore interface {
	getRaw(ctx context.Context, key string) ([]byte, time.Duration, error)
	setRaw(ctx context.Context, key string, data []byte, expiration time.Duration) error
}

// Key joins parts with ':'. Empty parts are skipped.
func Key(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ":")
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case *string:
		return []byte(*v), nil
	case []byte:
		return v, nil
	}
	return json.Marshal(value)
}

func decode(data []byte, dest interface{}) error {
	switch d := dest.(type) {
	case *string:
		*d = string(data)
		return nil
	case *[]byte:
		*d = append((*d)[:0], data...)
		return nil
	}
	return json.Unmarshal(data, dest)
}
