package usecase

import (
	"context"
	"fmt"
	"time"

	"OpenFOF/internal/domain/models"
	"OpenFOF/internal/services/features"
)

// AssetStats reports the change, volatility and Sharpe ratio of one asset
// over the trailing days. The Sharpe ratio is omitted for zero volatility.
func (p *PortfolioAnalytics) AssetStats(ctx context.Context, id string, days int, riskFreeRate float64) (res *models.AssetStats, err error) {
	start := time.Now()
	var symbols []string
	defer func() { p.observe(ctx, QueryAssetStats, symbols, start, err) }()

	if days < 1 {
		return nil, fmt.Errorf("asset stats over %d days: %w", days, models.ErrInvalidArgument)
	}
	assets, err := p.resolve([]string{id})
	if err != nil {
		return nil, err
	}
	asset := assets[0]
	symbols = []string{asset.Symbol}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	s, err := p.loader.LoadFull(ctx, asset.Symbol)
	if err != nil {
		return nil, err
	}
	change, err := features.PercentageChange(s, days)
	if err != nil {
		return nil, err
	}
	vol, err := features.Volatility(s, days)
	if err != nil {
		return nil, err
	}

	out := &models.AssetStats{
		AssetID:          asset.ID,
		Symbol:           asset.Symbol,
		Days:             days,
		PercentageChange: change,
		Volatility:       vol,
	}
	if vol > 0 {
		sharpe, serr := features.SharpeRatio(change, vol, riskFreeRate)
		if serr != nil {
			return nil, serr
		}
		out.SharpeRatio = &sharpe
	}
	return out, nil
}

// Projection simulates one asset over horizonDays from its trailing
// windowDays of history. A pathCount of 0 uses the configured default.
func (p *PortfolioAnalytics) Projection(ctx context.Context, id string, horizonDays, pathCount, windowDays int) (res *models.Projection, err error) {
	start := time.Now()
	var symbols []string
	defer func() { p.observe(ctx, QueryProjection, symbols, start, err) }()

	if pathCount == 0 {
		pathCount = p.engine.Paths()
	}
	assets, err := p.resolve([]string{id})
	if err != nil {
		return nil, err
	}
	asset := assets[0]
	symbols = []string{asset.Symbol}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	s, err := p.loader.LoadWindow(ctx, asset.Symbol, windowDays)
	if err != nil {
		return nil, err
	}
	days, err := p.engine.Fork(0).Project(s, horizonDays, pathCount)
	if err != nil {
		return nil, err
	}
	if p.metrics != nil && len(days) > 0 {
		p.metrics.RecordSimulatedPaths(pathCount)
	}

	last := s.Last()
	return &models.Projection{
		AssetID:   asset.ID,
		Symbol:    asset.Symbol,
		LastPrice: last.Close,
		LastDate:  last.Date.Format(models.DateLayout),
		Paths:     pathCount,
		Days:      days,
	}, nil
}
