package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"

	"OpenFOF/internal/domain/models"
)

// AlignMode selects how several timelines are merged.
type AlignMode int

const (
	// AlignUnion keeps every date present in any series.
	AlignUnion AlignMode = iota
	// AlignInner keeps only dates present in every series.
	AlignInner
)

func (m AlignMode) String() string {
	switch m {
	case AlignUnion:
		return "union"
	case AlignInner:
		return "inner"
	default:
		return fmt.Sprintf("AlignMode(%d)", int(m))
	}
}

// DefaultFillLimit is the maximum number of consecutive forward-filled periods.
const DefaultFillLimit = 3

type alignConfig struct {
	resample  bool
	fillLimit int
}

// AlignOption configures Align.
type AlignOption func(*alignConfig)

// WithResample adds every business day between the first and last date to a
// union timeline and forward-fills gaps.
func WithResample(enabled bool) AlignOption {
	return func(c *alignConfig) { c.resample = enabled }
}

// WithFillLimit bounds forward filling to n consecutive periods. n <= 0 disables filling.
func WithFillLimit(n int) AlignOption {
	return func(c *alignConfig) { c.fillLimit = n }
}

// Align merges series onto one ordered timeline.
func Align(series []models.PriceSeries, mode AlignMode, opts ...AlignOption) (*models.AlignedPriceTable, error) {
	cfg := alignConfig{fillLimit: DefaultFillLimit}
	for _, opt := range opts {
		opt(&cfg)
	}

	valid := make([]models.PriceSeries, 0, len(series))
	for _, s := range series {
		if !s.Empty() {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("align: no series with observations: %w", models.ErrInsufficientData)
	}

	var dates []time.Time
	switch mode {
	case AlignUnion:
		dates = unionDates(valid, cfg.resample)
	case AlignInner:
		dates = innerDates(valid)
		if len(dates) == 0 {
			return nil, fmt.Errorf("align: series share no dates: %w", models.ErrInsufficientData)
		}
	default:
		return nil, fmt.Errorf("align: mode %s: %w", mode, models.ErrInvalidArgument)
	}

	fill := 0
	if mode == AlignUnion && cfg.resample && cfg.fillLimit > 0 {
		fill = cfg.fillLimit
	}

	symbols := make([]string, 0, len(valid))
	columns := make(map[string][]float64, len(valid))
	for _, s := range valid {
		if _, dup := columns[s.Symbol]; dup {
			continue
		}
		symbols = append(symbols, s.Symbol)
		columns[s.Symbol] = buildColumn(s, dates, fill)
	}
	return models.NewAlignedPriceTable(dates, symbols, columns), nil
}

// buildColumn places the closes of s on dates, carrying the last close
// forward for at most fill consecutive missing rows.
func buildColumn(s models.PriceSeries, dates []time.Time, fill int) []float64 {
	col := make([]float64, len(dates))
	j := 0
	last := math.NaN()
	gap := 0
	for i, d := range dates {
		for j < len(s.Observations) && s.Observations[j].Date.Before(d) {
			j++
		}
		if j < len(s.Observations) && s.Observations[j].Date.Equal(d) {
			col[i] = s.Observations[j].Close
			last = col[i]
			gap = 0
			continue
		}
		gap++
		if !math.IsNaN(last) && gap <= fill {
			col[i] = last
			continue
		}
		col[i] = math.NaN()
	}
	return col
}

func unionDates(series []models.PriceSeries, resample bool) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	add := func(d time.Time) {
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}

	minDate, maxDate := series[0].First().Date, series[0].Last().Date
	for _, s := range series {
		for _, o := range s.Observations {
			add(o.Date)
		}
		if s.First().Date.Before(minDate) {
			minDate = s.First().Date
		}
		if s.Last().Date.After(maxDate) {
			maxDate = s.Last().Date
		}
	}
	if resample {
		for d := minDate; !d.After(maxDate); d = d.AddDate(0, 0, 1) {
			if IsBusinessDay(d) {
				add(d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func innerDates(series []models.PriceSeries) []time.Time {
	counts := make(map[time.Time]int)
	for _, s := range series {
		for _, o := range s.Observations {
			counts[o.Date]++
		}
	}
	var dates []time.Time
	for d, n := range counts {
		if n == len(series) {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// IsBusinessDay reports whether d falls on Monday through Friday.
func IsBusinessDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
