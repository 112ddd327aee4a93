package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"OpenFOF/internal/domain/models"
	domrepo "OpenFOF/internal/domain/repository"
	pkgch "OpenFOF/pkg/clickhouse"
	applogger "OpenFOF/pkg/logger"
)

// CHPriceStore implements PriceStore backed by a ClickHouse daily closes table.
type CHPriceStore struct {
	db      *sql.DB
	table   string
	l       *applogger.Logger
	metrics domrepo.Metrics
}

// NewCHPriceStore creates a store over table.
func NewCHPriceStore(ch *pkgch.Client, table string) (*CHPriceStore, error) {
	t, err := validTable(table)
	if err != nil {
		return nil, err
	}
	return &CHPriceStore{db: ch.DB(), table: t}, nil
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

// SetMetrics injects a metrics recorder.
func (s *CHPriceStore) SetMetrics(m domrepo.Metrics) { s.metrics = m }

// Schema returns the DDL of the closes table.
func (s *CHPriceStore) Schema() []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol LowCardinality(String),
            date   Date,
            close  Float64
        )
        ENGINE = ReplacingMergeTree
        ORDER BY (symbol, date)
    `, s.table)}
}

func (s *CHPriceStore) Series(ctx context.Context, symbol string) ([]models.PriceObservation, error) {
	start := time.Now()
	const qtpl = `
        SELECT date, close
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY date ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol)
	if err != nil {
		s.fail("clickhouse series query error", symbol, err)
		return nil, fmt.Errorf("get series: %w", err)
	}
	defer rows.Close()

	out, err := scanObservations(rows)
	if err != nil {
		s.fail("clickhouse series scan error", symbol, err)
		return nil, err
	}
	if len(out) == 0 {
		s.record("not_found")
		return nil, fmt.Errorf("price data for %s: %w", symbol, models.ErrNotFound)
	}
	if s.l != nil {
		s.l.Info("clickhouse series ok",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	s.record("ok")
	return out, nil
}

// StoreBatch inserts closes for symbol using multi-row VALUES in chunks.
func (s *CHPriceStore) StoreBatch(ctx context.Context, symbol string, obs []models.PriceObservation) error {
	const chunkSize = 2000
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*3)
		for _, o := range obs[start:end] {
			values = append(values, "(?, ?, ?)")
			args = append(args, symbol, o.Date.UTC(), o.Close)
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, date, close) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.fail("clickhouse store batch error", symbol, err)
			return fmt.Errorf("store batch: %w", err)
		}
	}
	return nil
}

func (s *CHPriceStore) fail(msg, symbol string, err error) {
	if s.l != nil {
		s.l.Error(msg,
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
	s.record("error")
}

func (s *CHPriceStore) record(result string) {
	if s.metrics != nil {
		s.metrics.RecordSeriesLoad("clickhouse", result)
	}
}
