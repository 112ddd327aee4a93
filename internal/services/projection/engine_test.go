package projection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OpenFOF/internal/domain/models"
)

func history(closes ...float64) models.PriceSeries {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.PriceObservation, len(closes))
	for i, c := range closes {
		obs[i] = models.PriceObservation{Date: start.AddDate(0, 0, i), Close: c}
	}
	return models.PriceSeries{Symbol: "AAA", Observations: obs}
}

type constSource float64

func (c constSource) NormFloat64() float64 { return float64(c) }

func TestProjectZeroHorizonIsEmpty(t *testing.T) {
	out, err := NewEngine(WithSeed(1)).Project(history(10, 11, 12), 0, 100)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestProjectShortHistoryIsEmpty(t *testing.T) {
	out, err := NewEngine(WithSeed(1)).Project(history(10), 30, 100)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestProjectRejectsInvalidArguments(t *testing.T) {
	e := NewEngine(WithSeed(1))
	_, err := e.Project(history(10, 11), -1, 100)
	assert.True(t, errors.Is(err, models.ErrInvalidArgument))
	_, err = e.Project(history(10, 11), 5, 0)
	assert.True(t, errors.Is(err, models.ErrInvalidArgument))
}

func TestProjectSeededIsDeterministic(t *testing.T) {
	h := history(100, 101, 99, 102, 104, 103, 106)
	a, err := NewEngine(WithSeed(42)).Project(h, 20, 200)
	require.NoError(t, err)
	b, err := NewEngine(WithSeed(42)).Project(h, 20, 200)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewEngine(WithSeed(43)).Project(h, 20, 200)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestForkIsDeterministicPerStream(t *testing.T) {
	h := history(100, 101, 99, 102, 104, 103, 106)
	root := NewEngine(WithSeed(7))
	a, err := root.Fork(3).Project(h, 10, 50)
	require.NoError(t, err)
	b, err := NewEngine(WithSeed(7)).Fork(3).Project(h, 10, 50)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := root.Fork(4).Project(h, 10, 50)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestProjectSummariesArePositiveAndOrdered(t *testing.T) {
	h := history(100, 90, 120, 80, 130, 70, 140, 60)
	out, err := NewEngine(WithSeed(9)).Project(h, 30, 500)
	require.NoError(t, err)
	require.Len(t, out, 30)

	last := h.Last().Date
	for i, r := range out {
		assert.Equal(t, last.AddDate(0, 0, i+1), r.Date)
		assert.Greater(t, r.P5, 0.0)
		assert.Greater(t, r.Mean, 0.0)
		assert.LessOrEqual(t, r.P5, r.Median)
		assert.LessOrEqual(t, r.Median, r.P95)
		assert.GreaterOrEqual(t, r.StdDev, 0.0)
	}
}

func TestProjectConstantSourceFollowsDrift(t *testing.T) {
	// log returns are ln(1.1) twice: mu = ln(1.1), sigma = 0.
	h := history(100, 110, 121)
	out, err := NewEngine(WithSource(constSource(0))).Project(h, 2, 3)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, 133.1, out[0].Mean, 1e-9)
	assert.InDelta(t, 146.41, out[1].Median, 1e-9)
	assert.InDelta(t, 0, out[1].StdDev, 1e-9)
}

func TestPercentileInterpolatesLinearly(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, Percentile(s, 50), 1e-12)
	assert.InDelta(t, 1.15, Percentile(s, 5), 1e-12)
	assert.InDelta(t, 3.85, Percentile(s, 95), 1e-12)
	assert.Equal(t, 4.0, Percentile(s, 100))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 5))
}
