// Package projection simulates forward price paths with geometric Brownian
// motion calibrated on historical log returns.
package projection

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"OpenFOF/internal/domain/models"
	"OpenFOF/internal/services/features"
)

// DefaultPaths is the number of simulated paths per projection.
const DefaultPaths = 1000

// Source draws standard normal variates.
type Source interface {
	NormFloat64() float64
}

type globalSource struct{}

func (globalSource) NormFloat64() float64 { return rand.NormFloat64() }

type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (l *lockedSource) NormFloat64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.NormFloat64()
}

// Engine runs Monte Carlo projections. An Engine built WithSeed is not safe
// for concurrent use; Fork one per goroutine.
type Engine struct {
	src    Source
	seed   uint64
	seeded bool
	paths  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes every projection reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.seeded = true
		e.src = rand.New(rand.NewPCG(seed, 0))
	}
}

// WithSource draws variates from src. Draws are serialized.
func WithSource(src Source) Option {
	return func(e *Engine) {
		e.seeded = false
		e.src = &lockedSource{src: src}
	}
}

// WithPaths sets the path count used by ProjectDefault.
func WithPaths(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.paths = n
		}
	}
}

// NewEngine returns an Engine drawing from the process-wide generator unless
// configured otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{src: globalSource{}, paths: DefaultPaths}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Paths returns the configured default path count.
func (e *Engine) Paths() int { return e.paths }

// Fork derives an engine for the i-th independent stream. Seeded engines
// yield a deterministic stream per i; other engines share their source.
func (e *Engine) Fork(i int) *Engine {
	if !e.seeded {
		return e
	}
	return &Engine{
		src:    rand.New(rand.NewPCG(e.seed, uint64(i)+1)),
		seed:   e.seed,
		seeded: true,
		paths:  e.paths,
	}
}

// ProjectDefault projects with the configured path count.
func (e *Engine) ProjectDefault(s models.PriceSeries, horizonDays int) ([]models.SimulationResult, error) {
	return e.Project(s, horizonDays, e.paths)
}

// Project simulates pathCount price paths for horizonDays calendar days past
// the last observation of s and summarizes each day.
// A series with fewer than two observations or a zero horizon projects nothing.
func (e *Engine) Project(s models.PriceSeries, horizonDays, pathCount int) ([]models.SimulationResult, error) {
	if horizonDays < 0 {
		return nil, fmt.Errorf("project %s: horizon %d: %w", s.Symbol, horizonDays, models.ErrInvalidArgument)
	}
	if pathCount < 1 {
		return nil, fmt.Errorf("project %s: %d paths: %w", s.Symbol, pathCount, models.ErrInvalidArgument)
	}
	if s.Len() < 2 || horizonDays == 0 {
		return []models.SimulationResult{}, nil
	}

	logReturns := features.ComputeLogReturns(s.Closes())
	mu := stat.Mean(logReturns, nil)
	sigma := 0.0
	if len(logReturns) > 1 {
		sigma = stat.StdDev(logReturns, nil)
	}
	drift := mu - sigma*sigma/2

	// paths x days, path-major
	buf := make([]float64, pathCount*horizonDays)
	p0 := s.Last().Close
	for p := 0; p < pathCount; p++ {
		price := p0
		row := buf[p*horizonDays : (p+1)*horizonDays]
		for d := range row {
			price *= math.Exp(drift + sigma*e.src.NormFloat64())
			row[d] = price
		}
	}

	d0 := s.Last().Date
	out := make([]models.SimulationResult, horizonDays)
	day := make([]float64, pathCount)
	for d := 0; d < horizonDays; d++ {
		for p := 0; p < pathCount; p++ {
			day[p] = buf[p*horizonDays+d]
		}
		out[d] = summarize(d0.AddDate(0, 0, d+1), day)
	}
	return out, nil
}

// summarize sorts values in place.
func summarize(date time.Time, values []float64) models.SimulationResult {
	mean, variance := stat.PopMeanVariance(values, nil)
	slices.Sort(values)
	return models.SimulationResult{
		Date:   date,
		Mean:   mean,
		Median: Percentile(values, 50),
		StdDev: math.Sqrt(variance),
		P5:     Percentile(values, 5),
		P95:    Percentile(values, 95),
	}
}

// Percentile returns the q-th percentile (0..100) of sorted, interpolating
// linearly between the two nearest ranks.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q / 100 * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
