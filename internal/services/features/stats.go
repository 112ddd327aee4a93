package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"OpenFOF/internal/domain/models"
)

// DefaultMinOverlap is the minimum number of paired returns for a defined correlation.
const DefaultMinOverlap = 5

// PercentageChange returns the fractional change between the last close and
// the latest close dated on or before (last date - days).
func PercentageChange(s models.PriceSeries, days int) (float64, error) {
	if days < 1 {
		return 0, fmt.Errorf("percentage change over %d days: %w", days, models.ErrInvalidArgument)
	}
	if s.Empty() {
		return 0, fmt.Errorf("percentage change %s: empty series: %w", s.Symbol, models.ErrInsufficientData)
	}
	last := s.Last()
	target := last.Date.AddDate(0, 0, -days)

	base := -1
	for i, o := range s.Observations {
		if o.Date.After(target) {
			break
		}
		base = i
	}
	if base < 0 {
		return 0, fmt.Errorf("percentage change %s: no price on or before %s: %w",
			s.Symbol, target.Format("2006-01-02"), models.ErrInsufficientData)
	}
	p0 := s.Observations[base].Close
	return (last.Close - p0) / p0, nil
}

// Volatility returns the annualized sample standard deviation of simple
// returns over the trailing days. A single return yields 0.
func Volatility(s models.PriceSeries, days int) (float64, error) {
	if days < 1 {
		return 0, fmt.Errorf("volatility over %d days: %w", days, models.ErrInvalidArgument)
	}
	if s.Empty() {
		return 0, fmt.Errorf("volatility %s: empty series: %w", s.Symbol, models.ErrInsufficientData)
	}
	window := s.Since(s.Last().Date.AddDate(0, 0, -days))
	if window.Len() < 2 {
		return 0, fmt.Errorf("volatility %s: %d observations in %d days: %w",
			s.Symbol, window.Len(), days, models.ErrInsufficientData)
	}
	returns := ComputeSimpleReturns(window.Closes())
	if len(returns) < 2 {
		return 0, nil
	}
	sd := stat.StdDev(returns, nil)
	if math.IsNaN(sd) {
		return 0, nil
	}
	return sd * math.Sqrt(TradingDaysPerYear), nil
}

// SharpeRatio returns (annualizedReturn - riskFreeRate) / volatility.
func SharpeRatio(annualizedReturn, volatility, riskFreeRate float64) (float64, error) {
	if volatility == 0 {
		return 0, fmt.Errorf("sharpe ratio: zero volatility: %w", models.ErrDivisionByZero)
	}
	return (annualizedReturn - riskFreeRate) / volatility, nil
}

// CorrelationMatrix computes pairwise Pearson correlations of simple returns
// over the rows where both symbols have a return. Pairs with fewer than
// minOverlap shared returns stay undefined.
//
// On a resampled union table a weekday-only series is forward-filled across
// weekend rows kept for a seven-day series. Those rows contribute zero returns
// for the weekday series, so correlations across mixed calendars shrink
// toward 0.
func CorrelationMatrix(table *models.AlignedPriceTable, minOverlap int) (*models.CorrelationMatrix, error) {
	if minOverlap < 1 {
		return nil, fmt.Errorf("correlation matrix: min overlap %d: %w", minOverlap, models.ErrInvalidArgument)
	}
	if table == nil {
		return nil, fmt.Errorf("correlation matrix: no table: %w", models.ErrInsufficientData)
	}

	symbols := table.Symbols
	returns := make([][]float64, len(symbols))
	for i, s := range symbols {
		returns[i] = columnReturns(table.Column(s))
	}

	m := models.NewCorrelationMatrix(symbols)
	xs := make([]float64, 0, table.Len())
	ys := make([]float64, 0, table.Len())
	for i := range symbols {
		if hasReturn(returns[i]) {
			m.SetAt(i, i, 1)
		}
		for j := i + 1; j < len(symbols); j++ {
			xs, ys = xs[:0], ys[:0]
			for k := range returns[i] {
				a, b := returns[i][k], returns[j][k]
				if math.IsNaN(a) || math.IsNaN(b) {
					continue
				}
				xs = append(xs, a)
				ys = append(ys, b)
			}
			if len(xs) < minOverlap || len(xs) < 2 {
				continue
			}
			m.SetAt(i, j, clampUnit(stat.Correlation(xs, ys, nil)))
		}
	}
	return m, nil
}

func hasReturn(r []float64) bool {
	for _, v := range r {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

// clampUnit bounds rounding noise to [-1, 1]; NaN (zero variance) passes through.
func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return v
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
