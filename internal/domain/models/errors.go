package models

import "errors"

// Analytics errors. Callers wrap them with context and test with errors.Is.
var (
	// ErrNotFound is returned for an unknown asset id/symbol or a symbol without price history.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for malformed windows, day counts, empty
	// symbol lists or unrecognized time-range tokens.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientData is returned when there are not enough observations
	// to compute a statistic or a windowed lookup.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDivisionByZero is returned when a ratio has a zero denominator (Sharpe with zero volatility).
	ErrDivisionByZero = errors.New("division by zero")
)
