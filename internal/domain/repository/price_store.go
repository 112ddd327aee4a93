package repository

import (
	"context"

	"OpenFOF/internal/domain/models"
)

// PriceStore provides read-only access to raw daily closes.
// Series returns rows in any order; a symbol without history yields models.ErrNotFound.
type PriceStore interface {
	Series(ctx context.Context, symbol string) ([]models.PriceObservation, error)
}

// EventPublisher emits analytics events to downstream consumers.
type EventPublisher interface {
	PublishAnalyticsEvent(ctx context.Context, evt models.AnalyticsEvent) error
}

// Metrics records analytics instrumentation.
type Metrics interface {
	RecordQuery(query, result string, seconds float64)
	RecordSimulatedPaths(n int)
	RecordSeriesLoad(backend, result string)
	RecordCacheLookup(hit bool)
}

// PriceWriter persists daily closes. Backends that can be imported into implement it.
type PriceWriter interface {
	StoreBatch(ctx context.Context, symbol string, obs []models.PriceObservation) error
}
