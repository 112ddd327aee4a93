package usecase

import (
	"context"
	"fmt"
	"time"

	"OpenFOF/internal/domain/models"
	domrepo "OpenFOF/internal/domain/repository"
	"OpenFOF/internal/services/timeseries"
	applogger "OpenFOF/pkg/logger"
)

// ImportResult reports the rows written for one symbol.
type ImportResult struct {
	Symbol string
	Rows   int
	Err    error
}

// PriceImporter copies normalized daily closes from one store into a writable backend.
type PriceImporter struct {
	src     domrepo.PriceStore
	dst     domrepo.PriceWriter
	metrics domrepo.Metrics
	backend string
	l       *applogger.Logger
}

func NewPriceImporter(src domrepo.PriceStore, dst domrepo.PriceWriter, metrics domrepo.Metrics, backend string, l *applogger.Logger) *PriceImporter {
	if l == nil {
		l = applogger.Nop()
	}
	return &PriceImporter{src: src, dst: dst, metrics: metrics, backend: backend, l: l}
}

// ImportSymbol loads, normalizes and stores one symbol.
func (p *PriceImporter) ImportSymbol(ctx context.Context, symbol string) (int, error) {
	start := time.Now()
	raw, err := p.src.Series(ctx, symbol)
	if err != nil {
		p.record("error")
		return 0, fmt.Errorf("import %s: %w", symbol, err)
	}
	s := timeseries.Normalize(symbol, raw)
	if s.Empty() {
		p.record("not_found")
		return 0, fmt.Errorf("import %s: no valid rows: %w", symbol, models.ErrNotFound)
	}
	if err := p.dst.StoreBatch(ctx, symbol, s.Observations); err != nil {
		p.record("error")
		return 0, fmt.Errorf("import %s: %w", symbol, err)
	}
	p.record("ok")
	p.l.Info("symbol imported",
		applogger.String("symbol", symbol),
		applogger.String("backend", p.backend),
		applogger.Int("rows", s.Len()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return s.Len(), nil
}

// ImportAll imports symbols sequentially and reports each outcome. It
// stops early only when ctx is done.
func (p *PriceImporter) ImportAll(ctx context.Context, symbols []string) []ImportResult {
	out := make([]ImportResult, 0, len(symbols))
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			out = append(out, ImportResult{Symbol: symbol, Err: err})
			break
		}
		n, err := p.ImportSymbol(ctx, symbol)
		if err != nil {
			p.l.Error("symbol import failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
		out = append(out, ImportResult{Symbol: symbol, Rows: n, Err: err})
	}
	return out
}

func (p *PriceImporter) record(result string) {
	if p.metrics != nil {
		p.metrics.RecordSeriesLoad("import_"+p.backend, result)
	}
}
