package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"OpenFOF/internal/catalog"
	"OpenFOF/internal/domain/models"
)

const maxSuggestions = 10

// CorrelationGroups scores every catalog category that holds a portfolio
// asset by the mean absolute correlation of its members to the portfolio.
func (p *PortfolioAnalytics) CorrelationGroups(ctx context.Context, ids []string) (res []models.CorrelationGroup, err error) {
	start := time.Now()
	var symbols []string
	defer func() { p.observe(ctx, QueryCorrelationGroups, symbols, start, err) }()

	assets, err := p.resolve(ids)
	if err != nil {
		return nil, err
	}
	symbols = symbolsOf(assets)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	m, loaded, err := p.universeMatrix(ctx, symbols)
	if err != nil {
		return nil, err
	}
	abs := m.Absolute()

	inPortfolio := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		inPortfolio[a.ID] = struct{}{}
	}

	type group struct {
		assetType string
		members   []string
		scores    []float64
		requested bool
	}
	var order []*group
	byType := make(map[string]*group)
	for _, a := range p.catalog.Candidates() {
		if _, ok := loaded[a.Symbol]; !ok {
			continue
		}
		score, _ := meanAgainst(abs, a.Symbol, symbols)
		g, ok := byType[a.Type]
		if !ok {
			g = &group{assetType: a.Type}
			byType[a.Type] = g
			order = append(order, g)
		}
		g.members = append(g.members, a.ID)
		g.scores = append(g.scores, score)
		if _, ok := inPortfolio[a.ID]; ok {
			g.requested = true
		}
	}

	out := make([]models.CorrelationGroup, 0, len(order))
	for _, g := range order {
		if !g.requested {
			continue
		}
		sum := 0.0
		for _, s := range g.scores {
			sum += s
		}
		out = append(out, models.CorrelationGroup{
			ID:               fmt.Sprintf("group-%03d", len(out)+1),
			Name:             catalog.CategoryName(g.assetType),
			AssetIDs:         g.members,
			CorrelationScore: round2(sum / float64(len(g.scores))),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CorrelationScore > out[j].CorrelationScore })
	return out, nil
}

// Heatmap returns the correlation grid of exactly the requested assets.
func (p *PortfolioAnalytics) Heatmap(ctx context.Context, ids []string) (res *models.Heatmap, err error) {
	start := time.Now()
	var symbols []string
	defer func() { p.observe(ctx, QueryHeatmap, symbols, start, err) }()

	assets, err := p.resolve(ids)
	if err != nil {
		return nil, err
	}
	symbols = symbolsOf(assets)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	series, err := p.loader.LoadAll(ctx, symbols, nil)
	if err != nil {
		return nil, err
	}
	m, err := p.correlation(series)
	if err != nil {
		return nil, err
	}

	grid := make([][]*float64, len(symbols))
	for i, a := range symbols {
		row := make([]*float64, len(symbols))
		for j, b := range symbols {
			if v, ok := m.Get(a, b); ok {
				row[j] = ptr(round2(v))
			}
		}
		grid[i] = row
	}
	return &models.Heatmap{Labels: symbols, Data: grid}, nil
}

// Diversify ranks catalog assets outside the portfolio by how much they
// would lower its correlation.
func (p *PortfolioAnalytics) Diversify(ctx context.Context, ids []string) (res []models.DiversificationCandidate, err error) {
	start := time.Now()
	var symbols []string
	defer func() { p.observe(ctx, QueryDiversify, symbols, start, err) }()

	assets, err := p.resolve(ids)
	if err != nil {
		return nil, err
	}
	symbols = symbolsOf(assets)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	m, loaded, err := p.universeMatrix(ctx, symbols)
	if err != nil {
		return nil, err
	}

	held := make(map[string]struct{}, len(assets))
	types := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		held[a.Symbol] = struct{}{}
		types[a.Type] = struct{}{}
	}

	out := make([]models.DiversificationCandidate, 0)
	for _, a := range p.catalog.Candidates() {
		if _, ok := held[a.Symbol]; ok {
			continue
		}
		if _, ok := loaded[a.Symbol]; !ok {
			continue
		}
		corr, ok := meanAgainst(m, a.Symbol, symbols)
		if !ok {
			continue
		}
		improvement, phrase, keep := correlationTier(corr)
		if !keep {
			continue
		}
		var reason strings.Builder
		if _, seen := types[a.Type]; !seen {
			improvement += 15
			fmt.Fprintf(&reason, "Different asset class (%s), ", catalog.CategoryLabel(a.Type))
		}
		reason.WriteString(phrase)
		out = append(out, models.DiversificationCandidate{
			ID:                  a.ID,
			Symbol:              a.Symbol,
			Name:                a.Name,
			Reason:              strings.TrimSpace(reason.String()),
			CorrelationScore:    round2(corr),
			ExpectedImprovement: roundTo(improvement, 1),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ExpectedImprovement != out[j].ExpectedImprovement {
			return out[i].ExpectedImprovement > out[j].ExpectedImprovement
		}
		return out[i].CorrelationScore < out[j].CorrelationScore
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out, nil
}

// correlationTier maps a mean correlation to its improvement score and
// reason phrase. Correlations of 0.7 or more are not worth suggesting.
func correlationTier(corr float64) (float64, string, bool) {
	switch {
	case corr < 0.3:
		return 20, "very low correlation with current portfolio provides strong diversification", true
	case corr < 0.5:
		return 12, "low correlation with current portfolio improves diversification", true
	case corr < 0.7:
		return 5, "moderate correlation provides some diversification benefit", true
	default:
		return 0, "", false
	}
}

// universeMatrix correlates the portfolio with every non-index catalog asset
// that has price data. loaded holds the symbols that did.
func (p *PortfolioAnalytics) universeMatrix(ctx context.Context, portfolio []string) (*models.CorrelationMatrix, map[string]struct{}, error) {
	universe := make([]string, 0, len(portfolio))
	seen := make(map[string]struct{})
	for _, a := range p.catalog.Candidates() {
		seen[a.Symbol] = struct{}{}
		universe = append(universe, a.Symbol)
	}
	for _, s := range portfolio {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			universe = append(universe, s)
		}
	}

	series, err := p.loadAvailable(ctx, universe)
	if err != nil {
		return nil, nil, err
	}
	if len(series) == 0 {
		return nil, nil, fmt.Errorf("correlation universe: no price data: %w", models.ErrInsufficientData)
	}
	loaded := make(map[string]struct{}, len(series))
	for _, s := range series {
		loaded[s.Symbol] = struct{}{}
	}
	m, err := p.correlation(series)
	if err != nil {
		return nil, nil, err
	}
	return m, loaded, nil
}

// meanAgainst averages the defined cells between symbol and others.
func meanAgainst(m *models.CorrelationMatrix, symbol string, others []string) (float64, bool) {
	sum, n := 0.0, 0
	for _, o := range others {
		if v, ok := m.Get(symbol, o); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
