package repository

import (
	"context"
	"errors"
	"time"

	"OpenFOF/internal/domain/models"
	domrepo "OpenFOF/internal/domain/repository"
	"OpenFOF/pkg/cache"
	applogger "OpenFOF/pkg/logger"
)

// CachedPriceStore serves raw series from a cache in front of another store.
type CachedPriceStore struct {
	next    domrepo.PriceStore
	cache   cache.Service
	prefix  string
	ttl     time.Duration
	l       *applogger.Logger
	metrics domrepo.Metrics
}

// NewCachedPriceStore wraps next. prefix namespaces keys per backend.
func NewCachedPriceStore(next domrepo.PriceStore, c cache.Service, prefix string, ttl time.Duration) *CachedPriceStore {
	return &CachedPriceStore{next: next, cache: c, prefix: prefix, ttl: ttl}
}

// SetLogger injects a structured logger.
func (s *CachedPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

// SetMetrics injects a metrics recorder.
func (s *CachedPriceStore) SetMetrics(m domrepo.Metrics) { s.metrics = m }

func (s *CachedPriceStore) key(symbol string) string {
	return cache.Key("prices", s.prefix, symbol)
}

func (s *CachedPriceStore) Series(ctx context.Context, symbol string) ([]models.PriceObservation, error) {
	key := s.key(symbol)

	var cached []models.PriceObservation
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		s.lookup(true)
		return cached, nil
	case errors.Is(err, cache.ErrCacheMiss):
	default:
		// unreadable entries are dropped and refetched
		if s.l != nil {
			s.l.Warn("price cache get failed",
				applogger.String("key", key),
				applogger.Error(err),
			)
		}
		_ = s.cache.Delete(ctx, key)
	}
	s.lookup(false)

	out, err := s.next.Series(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, out, s.ttl); err != nil && s.l != nil {
		s.l.Warn("price cache set failed",
			applogger.String("key", key),
			applogger.Error(err),
		)
	}
	return out, nil
}

// Invalidate drops the cached series of symbol.
func (s *CachedPriceStore) Invalidate(ctx context.Context, symbol string) error {
	return s.cache.Delete(ctx, s.key(symbol))
}

func (s *CachedPriceStore) lookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}
