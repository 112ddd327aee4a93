package usecase

import "github.com/shopspring/decimal"

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return roundTo(v, 2)
}

func roundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func ptr[T any](v T) *T { return &v }
