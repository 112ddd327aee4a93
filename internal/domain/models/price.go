package models

import (
	"math"
	"time"
)

// PriceObservation is one daily close. Date is always truncated to UTC midnight.
type PriceObservation struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is the chronological close history of one symbol.
// Observations are sorted by date with unique days; transformations return new series.
type PriceSeries struct {
	Symbol       string
	Observations []PriceObservation
}

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.Observations) }

// Empty reports whether the series has no observations.
func (s PriceSeries) Empty() bool { return len(s.Observations) == 0 }

// Last returns the most recent observation. The series must not be empty.
func (s PriceSeries) Last() PriceObservation { return s.Observations[len(s.Observations)-1] }

// First returns the oldest observation. The series must not be empty.
func (s PriceSeries) First() PriceObservation { return s.Observations[0] }

// Since returns a new series holding observations dated on or after from.
func (s PriceSeries) Since(from time.Time) PriceSeries {
	out := PriceSeries{Symbol: s.Symbol}
	for _, o := range s.Observations {
		if !o.Date.Before(from) {
			out.Observations = append(out.Observations, o)
		}
	}
	return out
}

// Closes returns the close prices in date order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Close
	}
	return out
}

// AlignedPriceTable holds several series on one shared timeline.
// Columns run parallel to Dates; NaN marks a symbol without a price on that date.
type AlignedPriceTable struct {
	Dates   []time.Time
	Symbols []string
	columns map[string][]float64
}

// NewAlignedPriceTable builds a table. Every column must have len(dates) entries.
func NewAlignedPriceTable(dates []time.Time, symbols []string, columns map[string][]float64) *AlignedPriceTable {
	return &AlignedPriceTable{Dates: dates, Symbols: symbols, columns: columns}
}

// Len returns the number of timeline rows.
func (t *AlignedPriceTable) Len() int { return len(t.Dates) }

// Price returns the price of symbol at row i, or false when absent.
func (t *AlignedPriceTable) Price(i int, symbol string) (float64, bool) {
	col, ok := t.columns[symbol]
	if !ok || i < 0 || i >= len(col) || math.IsNaN(col[i]) {
		return 0, false
	}
	return col[i], true
}

// Column returns the price column of symbol (NaN where absent). Callers must not modify it.
func (t *AlignedPriceTable) Column(symbol string) []float64 {
	return t.columns[symbol]
}

// Row returns the prices present at row i keyed by symbol.
func (t *AlignedPriceTable) Row(i int) map[string]float64 {
	out := make(map[string]float64, len(t.Symbols))
	for _, s := range t.Symbols {
		if v, ok := t.Price(i, s); ok {
			out[s] = v
		}
	}
	return out
}
