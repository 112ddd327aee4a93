package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"OpenFOF/internal/domain/models"
	domrepo "OpenFOF/internal/domain/repository"
	domsvc "OpenFOF/internal/domain/service"
	"OpenFOF/internal/services/features"
	"OpenFOF/internal/services/projection"
	"OpenFOF/internal/services/timeseries"
	applogger "OpenFOF/pkg/logger"
)

// Query names used for metrics and events.
const (
	QueryTimeline          = "timeline"
	QueryCorrelationGroups = "correlation_groups"
	QueryHeatmap           = "heatmap"
	QueryDiversify         = "diversify"
	QueryProjection        = "projection"
	QueryAssetStats        = "asset_stats"
)

// PortfolioAnalytics answers the portfolio queries over a catalog and a price store.
type PortfolioAnalytics struct {
	catalog    domsvc.AssetCatalog
	loader     *timeseries.Loader
	engine     *projection.Engine
	events     domrepo.EventPublisher
	metrics    domrepo.Metrics
	l          *applogger.Logger
	minOverlap int
	fillLimit  int
	timeout    time.Duration
}

// Option configures PortfolioAnalytics.
type Option func(*PortfolioAnalytics)

// WithMinOverlap sets the minimum paired returns of a defined correlation.
func WithMinOverlap(n int) Option {
	return func(p *PortfolioAnalytics) { p.minOverlap = n }
}

// WithFillLimit sets the forward-fill bound of correlation alignment.
func WithFillLimit(n int) Option {
	return func(p *PortfolioAnalytics) { p.fillLimit = n }
}

// WithEvents publishes an event per completed query.
func WithEvents(pub domrepo.EventPublisher) Option {
	return func(p *PortfolioAnalytics) { p.events = pub }
}

// WithMetrics records query metrics.
func WithMetrics(m domrepo.Metrics) Option {
	return func(p *PortfolioAnalytics) { p.metrics = m }
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(p *PortfolioAnalytics) { p.l = l }
}

// WithTimeout bounds each query.
func WithTimeout(d time.Duration) Option {
	return func(p *PortfolioAnalytics) { p.timeout = d }
}

func NewPortfolioAnalytics(catalog domsvc.AssetCatalog, store domrepo.PriceStore, engine *projection.Engine, opts ...Option) *PortfolioAnalytics {
	p := &PortfolioAnalytics{
		catalog:    catalog,
		loader:     timeseries.NewLoader(store),
		engine:     engine,
		l:          applogger.Nop(),
		minOverlap: features.DefaultMinOverlap,
		fillLimit:  timeseries.DefaultFillLimit,
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// resolve maps ids to catalog assets, collapsing duplicates in first-seen order.
func (p *PortfolioAnalytics) resolve(ids []string) ([]models.Asset, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("asset ids: empty list: %w", models.ErrInvalidArgument)
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]models.Asset, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("asset ids: blank id: %w", models.ErrInvalidArgument)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		a, err := p.catalog.ByID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func symbolsOf(assets []models.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Symbol
	}
	return out
}

// loadAvailable loads full histories concurrently and drops symbols the
// store has no data for. Any other failure aborts.
func (p *PortfolioAnalytics) loadAvailable(ctx context.Context, symbols []string) ([]models.PriceSeries, error) {
	type slot struct {
		series models.PriceSeries
		err    error
	}
	slots := make([]slot, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			s, err := p.loader.LoadFull(ctx, symbol)
			slots[i] = slot{series: s, err: err}
		}(i, symbol)
	}
	wg.Wait()

	out := make([]models.PriceSeries, 0, len(symbols))
	for i, s := range slots {
		if errors.Is(s.err, models.ErrNotFound) {
			p.l.Debug("no price data, symbol skipped", applogger.String("symbol", symbols[i]))
			continue
		}
		if s.err != nil {
			return nil, s.err
		}
		out = append(out, s.series)
	}
	return out, nil
}

// correlation computes the return correlation of full histories aligned on
// a business-day grid with bounded forward fill.
func (p *PortfolioAnalytics) correlation(series []models.PriceSeries) (*models.CorrelationMatrix, error) {
	table, err := timeseries.Align(series, timeseries.AlignUnion,
		timeseries.WithResample(true),
		timeseries.WithFillLimit(p.fillLimit),
	)
	if err != nil {
		return nil, err
	}
	return features.CorrelationMatrix(table, p.minOverlap)
}

// observe records metrics and publishes the query event.
func (p *PortfolioAnalytics) observe(ctx context.Context, query string, symbols []string, start time.Time, err error) {
	result := resultLabel(err)
	elapsed := time.Since(start)
	if p.metrics != nil {
		p.metrics.RecordQuery(query, result, elapsed.Seconds())
	}
	if err != nil {
		if result == "error" {
			p.l.Error("analytics query failed",
				applogger.String("query", query),
				applogger.Strings("symbols", symbols),
				applogger.Error(err),
			)
		} else {
			p.l.Debug("analytics query rejected",
				applogger.String("query", query),
				applogger.String("result", result),
				applogger.Error(err),
			)
		}
	}
	if p.events == nil {
		return
	}
	evt := models.AnalyticsEvent{
		Query:      query,
		Symbols:    symbols,
		Result:     result,
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	if perr := p.events.PublishAnalyticsEvent(context.WithoutCancel(ctx), evt); perr != nil {
		p.l.Warn("analytics event publish failed",
			applogger.String("query", query),
			applogger.Error(perr),
		)
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, models.ErrDivisionByZero):
		return "division_by_zero"
	default:
		return "error"
	}
}
