package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"OpenFOF/internal/domain/models"
	domrepo "OpenFOF/internal/domain/repository"
	applogger "OpenFOF/pkg/logger"
	"OpenFOF/pkg/util"
)

// CSVPriceStore reads <dir>/<SYMBOL>.csv files with Date and Close columns.
type CSVPriceStore struct {
	dir     string
	l       *applogger.Logger
	metrics domrepo.Metrics
}

// NewCSVPriceStore creates a store rooted at dir.
func NewCSVPriceStore(dir string) *CSVPriceStore {
	return &CSVPriceStore{dir: dir}
}

// SetLogger injects a structured logger.
func (s *CSVPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

// SetMetrics injects a metrics recorder.
func (s *CSVPriceStore) SetMetrics(m domrepo.Metrics) { s.metrics = m }

// Path returns the file backing symbol.
func (s *CSVPriceStore) Path(symbol string) string {
	return filepath.Join(s.dir, filepath.Base(symbol)+".csv")
}

// Symbols lists the symbols that have a file in the directory.
func (s *CSVPriceStore) Symbols() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return out, nil
}

func (s *CSVPriceStore) Series(ctx context.Context, symbol string) ([]models.PriceObservation, error) {
	start := time.Now()
	out, err := s.read(ctx, symbol)
	result := "ok"
	switch {
	case errors.Is(err, models.ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
		if s.l != nil {
			s.l.Error("csv series read error",
				applogger.String("symbol", symbol),
				applogger.String("path", s.Path(symbol)),
				applogger.Error(err),
			)
		}
	default:
		if s.l != nil {
			s.l.Debug("csv series ok",
				applogger.String("symbol", symbol),
				applogger.Int("rows", len(out)),
				applogger.Duration("duration_ms", time.Since(start)),
			)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordSeriesLoad("csv", result)
	}
	return out, err
}

func (s *CSVPriceStore) read(ctx context.Context, symbol string) ([]models.PriceObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path(symbol))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("price data for %s: %w", symbol, models.ErrNotFound)
		}
		return nil, fmt.Errorf("open price data: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV reads Date and Close columns by header name. Rows whose date or
// close cannot be parsed are skipped.
func ParseCSV(r io.Reader) ([]models.PriceObservation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	dateCol, closeCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "date":
			dateCol = i
		case "close":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("header %v: Date and Close columns are required", header)
	}

	out := make([]models.PriceObservation, 0, 1024)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if dateCol >= len(rec) || closeCol >= len(rec) {
			continue
		}
		d, ok := util.ParseTime(rec[dateCol])
		if !ok {
			continue
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(rec[closeCol]), 64)
		if err != nil {
			continue
		}
		out = append(out, models.PriceObservation{Date: d, Close: c})
	}
	return out, nil
}
