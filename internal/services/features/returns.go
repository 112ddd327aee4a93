package features

import "math"

// TradingDaysPerYear annualizes daily dispersion.
const TradingDaysPerYear = 252

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(closes)-1, or nil if insufficient data.
func ComputeLogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// ComputeSimpleReturns computes fractional changes (C_t - C_{t-1}) / C_{t-1}.
func ComputeSimpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (closes[i]-prev)/prev)
	}
	return out
}

// columnReturns computes simple returns over an aligned column. A return at
// row i exists only when rows i-1 and i both carry a price; other slots are NaN.
func columnReturns(col []float64) []float64 {
	out := make([]float64, len(col))
	for i := range col {
		out[i] = math.NaN()
		if i == 0 {
			continue
		}
		prev, cur := col[i-1], col[i]
		if math.IsNaN(prev) || math.IsNaN(cur) || prev <= 0 {
			continue
		}
		out[i] = (cur - prev) / prev
	}
	return out
}
