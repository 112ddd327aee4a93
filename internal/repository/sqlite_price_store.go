package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"OpenFOF/internal/domain/models"
	domrepo "OpenFOF/internal/domain/repository"
	applogger "OpenFOF/pkg/logger"
)

const sqliteDateLayout = "2006-01-02"

// SQLitePriceStore implements PriceStore over a local SQLite database.
type SQLitePriceStore struct {
	db      *sql.DB
	table   string
	l       *applogger.Logger
	metrics domrepo.Metrics
}

// OpenSQLitePriceStore opens (creating if needed) the database at path and
// ensures the closes table exists.
func OpenSQLitePriceStore(ctx context.Context, path, table string) (*SQLitePriceStore, error) {
	t, err := validTable(table)
	if err != nil {
		return nil, err
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// a single connection keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	s := &SQLitePriceStore{db: db, table: t}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// SetLogger injects a structured logger.
func (s *SQLitePriceStore) SetLogger(l *applogger.Logger) { s.l = l }

// SetMetrics injects a metrics recorder.
func (s *SQLitePriceStore) SetMetrics(m domrepo.Metrics) { s.metrics = m }

func (s *SQLitePriceStore) initSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol TEXT NOT NULL,
            date   TEXT NOT NULL,
            close  REAL NOT NULL,
            PRIMARY KEY (symbol, date)
        )`, s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *SQLitePriceStore) Series(ctx context.Context, symbol string) ([]models.PriceObservation, error) {
	start := time.Now()
	q := fmt.Sprintf(`SELECT date, close FROM %s WHERE symbol = ? ORDER BY date ASC`, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol)
	if err != nil {
		s.fail("sqlite series query error", symbol, err)
		return nil, fmt.Errorf("get series: %w", err)
	}
	defer rows.Close()

	out, err := scanObservations(rows)
	if err != nil {
		s.fail("sqlite series scan error", symbol, err)
		return nil, err
	}
	if len(out) == 0 {
		s.record("not_found")
		return nil, fmt.Errorf("price data for %s: %w", symbol, models.ErrNotFound)
	}
	if s.l != nil {
		s.l.Debug("sqlite series ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	s.record("ok")
	return out, nil
}

// StoreBatch upserts closes for symbol in one transaction.
func (s *SQLitePriceStore) StoreBatch(ctx context.Context, symbol string, obs []models.PriceObservation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (symbol, date, close) VALUES (?, ?, ?)
         ON CONFLICT(symbol, date) DO UPDATE SET close = excluded.close`, s.table))
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, symbol, o.Date.UTC().Format(sqliteDateLayout), o.Close); err != nil {
			s.fail("sqlite store batch error", symbol, err)
			return fmt.Errorf("insert close: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLitePriceStore) Close() error {
	return s.db.Close()
}

func (s *SQLitePriceStore) fail(msg, symbol string, err error) {
	if s.l != nil {
		s.l.Error(msg,
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
	s.record("error")
}

func (s *SQLitePriceStore) record(result string) {
	if s.metrics != nil {
		s.metrics.RecordSeriesLoad("sqlite", result)
	}
}
