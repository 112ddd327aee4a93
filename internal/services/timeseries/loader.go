package timeseries

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"OpenFOF/internal/domain/models"
	domrepo "OpenFOF/internal/domain/repository"
)

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Loader reads per-symbol price history from a PriceStore.
type Loader struct {
	store domrepo.PriceStore
}

// NewLoader builds a Loader over store.
func NewLoader(store domrepo.PriceStore) *Loader {
	return &Loader{store: store}
}

// Load returns the normalized series of symbol. When windowDays is set only
// observations dated on or after (last date - windowDays) are kept.
func (l *Loader) Load(ctx context.Context, symbol string, windowDays *int) (models.PriceSeries, error) {
	if windowDays != nil && *windowDays < 1 {
		return models.PriceSeries{}, fmt.Errorf("window of %d days: %w", *windowDays, models.ErrInvalidArgument)
	}
	raw, err := l.store.Series(ctx, symbol)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("load %s: %w", symbol, err)
	}
	s := Normalize(symbol, raw)
	if s.Empty() {
		return models.PriceSeries{}, fmt.Errorf("load %s: no valid observations: %w", symbol, models.ErrNotFound)
	}
	if windowDays == nil {
		return s, nil
	}
	return Window(s, *windowDays)
}

// LoadFull loads the whole history of symbol.
func (l *Loader) LoadFull(ctx context.Context, symbol string) (models.PriceSeries, error) {
	return l.Load(ctx, symbol, nil)
}

// LoadWindow loads the trailing days of symbol.
func (l *Loader) LoadWindow(ctx context.Context, symbol string, days int) (models.PriceSeries, error) {
	return l.Load(ctx, symbol, &days)
}

// LoadAll loads several symbols concurrently. Results keep the order of
// symbols; the first failing symbol in that order determines the error.
func (l *Loader) LoadAll(ctx context.Context, symbols []string, windowDays *int) ([]models.PriceSeries, error) {
	type loadResult struct {
		series models.PriceSeries
		err    error
	}

	results := make([]loadResult, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			s, err := l.Load(ctx, symbol, windowDays)
			results[i] = loadResult{series: s, err: err}
		}(i, symbol)
	}
	wg.Wait()

	out := make([]models.PriceSeries, 0, len(symbols))
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, r.series)
	}
	return out, nil
}

// Normalize sorts observations by day, drops non-positive or non-finite
// closes, and keeps the last row of any duplicated day.
func Normalize(symbol string, raw []models.PriceObservation) models.PriceSeries {
	obs := make([]models.PriceObservation, 0, len(raw))
	for _, o := range raw {
		if o.Close <= 0 || math.IsNaN(o.Close) || math.IsInf(o.Close, 0) || o.Date.IsZero() {
			continue
		}
		obs = append(obs, models.PriceObservation{Date: Day(o.Date), Close: o.Close})
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })

	out := make([]models.PriceObservation, 0, len(obs))
	for _, o := range obs {
		if n := len(out); n > 0 && out[n-1].Date.Equal(o.Date) {
			out[n-1] = o
			continue
		}
		out = append(out, o)
	}
	return models.PriceSeries{Symbol: symbol, Observations: out}
}

// Window keeps observations dated on or after (last date - days).
// The anchor is the data's own horizon, never the wall clock.
func Window(s models.PriceSeries, days int) (models.PriceSeries, error) {
	if days < 1 {
		return models.PriceSeries{}, fmt.Errorf("window of %d days: %w", days, models.ErrInvalidArgument)
	}
	if s.Empty() {
		return s, nil
	}
	return s.Since(s.Last().Date.AddDate(0, 0, -days)), nil
}
