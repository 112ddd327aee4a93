package repository

import (
	"context"
	"fmt"
	"sync"

	"OpenFOF/internal/domain/models"
)

// MemoryPriceStore keeps closes in memory. It backs fixtures and imports.
type MemoryPriceStore struct {
	mu     sync.RWMutex
	series map[string][]models.PriceObservation
}

// NewMemoryPriceStore creates an empty store.
func NewMemoryPriceStore() *MemoryPriceStore {
	return &MemoryPriceStore{series: make(map[string][]models.PriceObservation)}
}

func (s *MemoryPriceStore) Series(_ context.Context, symbol string) ([]models.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obs, ok := s.series[symbol]
	if !ok || len(obs) == 0 {
		return nil, fmt.Errorf("price data for %s: %w", symbol, models.ErrNotFound)
	}
	return append([]models.PriceObservation(nil), obs...), nil
}

// StoreBatch appends closes for symbol.
func (s *MemoryPriceStore) StoreBatch(_ context.Context, symbol string, obs []models.PriceObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series[symbol] = append(s.series[symbol], obs...)
	return nil
}
