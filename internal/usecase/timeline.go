package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"OpenFOF/internal/catalog"
	"OpenFOF/internal/domain/models"
	"OpenFOF/internal/services/features"
	"OpenFOF/internal/services/timeseries"
	applogger "OpenFOF/pkg/logger"
)

const (
	maxFutureDays       = 90
	maxVolatilityWindow = 365
)

// Timeline builds the historical and projected performance of a portfolio
// over the lookback named by timeRange.
func (p *PortfolioAnalytics) Timeline(ctx context.Context, ids []string, timeRange string) (res *models.PortfolioTimeline, err error) {
	start := time.Now()
	var symbols []string
	defer func() { p.observe(ctx, QueryTimeline, symbols, start, err) }()

	days, ok := models.TimeRange(timeRange).Days()
	if !ok {
		return nil, fmt.Errorf("time range %q: %w", timeRange, models.ErrInvalidArgument)
	}
	assets, err := p.resolve(ids)
	if err != nil {
		return nil, err
	}
	symbols = symbolsOf(assets)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	full, err := p.loader.LoadAll(ctx, symbols, nil)
	if err != nil {
		return nil, err
	}
	windowed := make([]models.PriceSeries, len(full))
	for i, s := range full {
		w, werr := timeseries.Window(s, days)
		if werr != nil {
			return nil, werr
		}
		windowed[i] = w
	}

	table, err := timeseries.Align(windowed, timeseries.AlignUnion)
	if err != nil {
		return nil, err
	}
	historical := tablePoints(table)

	future, err := p.futurePoints(windowed, min(maxFutureDays, days/2))
	if err != nil {
		return nil, err
	}

	stats, err := p.timelineStats(full, historical, future, days)
	if err != nil {
		return nil, err
	}

	colors := make(map[string]string, len(symbols)+1)
	for _, s := range symbols {
		colors[s] = catalog.Color(s)
	}
	colors["average"] = catalog.AverageColor

	return &models.PortfolioTimeline{
		Historical:  historical,
		Future:      future,
		Stats:       stats,
		AssetColors: colors,
	}, nil
}

// tablePoints emits one point per row with at least one price.
func tablePoints(t *models.AlignedPriceTable) []models.DataPoint {
	out := make([]models.DataPoint, 0, t.Len())
	for i, d := range t.Dates {
		row := t.Row(i)
		if len(row) == 0 {
			continue
		}
		out = append(out, models.DataPoint{Date: d, Values: row, Average: meanOf(row)})
	}
	return out
}

// futurePoints projects every series in parallel and merges the per-symbol
// mean paths by date.
func (p *PortfolioAnalytics) futurePoints(series []models.PriceSeries, horizon int) ([]models.DataPoint, error) {
	if horizon <= 0 {
		return []models.DataPoint{}, nil
	}
	type slot struct {
		days []models.SimulationResult
		err  error
	}
	slots := make([]slot, len(series))
	var wg sync.WaitGroup
	for i, s := range series {
		wg.Add(1)
		go func(i int, s models.PriceSeries) {
			defer wg.Done()
			days, err := p.engine.Fork(i).ProjectDefault(s, horizon)
			slots[i] = slot{days: days, err: err}
		}(i, s)
	}
	wg.Wait()

	byDate := make(map[time.Time]map[string]float64)
	for i, s := range slots {
		if s.err != nil {
			return nil, s.err
		}
		if p.metrics != nil && len(s.days) > 0 {
			p.metrics.RecordSimulatedPaths(p.engine.Paths())
		}
		for _, r := range s.days {
			row, ok := byDate[r.Date]
			if !ok {
				row = make(map[string]float64, len(series))
				byDate[r.Date] = row
			}
			row[series[i].Symbol] = r.Mean
		}
	}

	out := make([]models.DataPoint, 0, len(byDate))
	for d, row := range byDate {
		out = append(out, models.DataPoint{Date: d, Values: row, Average: meanOf(row)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (p *PortfolioAnalytics) timelineStats(full []models.PriceSeries, historical, future []models.DataPoint, days int) (models.PortfolioStats, error) {
	var stats models.PortfolioStats

	volWindow := min(days, maxVolatilityWindow)
	volSum, volN := 0.0, 0
	for _, s := range full {
		v, err := features.Volatility(s, volWindow)
		if errors.Is(err, models.ErrInsufficientData) {
			p.l.Debug("volatility skipped",
				applogger.String("symbol", s.Symbol),
				applogger.Int("days", volWindow),
				applogger.Error(err),
			)
			continue
		}
		if err != nil {
			return stats, err
		}
		volSum += v
		volN++
	}
	if volN > 0 {
		stats.Volatility = volSum / float64(volN)
	}

	if len(historical) > 0 {
		first := historical[0].Average
		last := historical[len(historical)-1].Average
		stats.NetProfit = round2(last - first)
		if first != 0 {
			stats.NetProfitPercent = round2((last - first) / first * 100)
		}
		if len(future) > 0 {
			stats.PredictedProfit1Y = round2(future[len(future)-1].Average - last)
		}
	}

	if len(full) >= 2 {
		m, err := p.correlation(full)
		if err != nil {
			return stats, err
		}
		corr := 0.0
		if v, ok := m.MeanOffDiagonal(); ok {
			corr = round2(v)
		}
		stats.Correlation = ptr(corr)
	}
	return stats, nil
}

// meanOf sums in key order so repeated runs agree bit for bit.
func meanOf(values map[string]float64) float64 {
	if len(values) == 0 {
		return 0
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sum := 0.0
	for _, k := range keys {
		sum += values[k]
	}
	return sum / float64(len(values))
}
