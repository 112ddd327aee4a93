package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OpenFOF/internal/domain/models"
	"OpenFOF/pkg/cache"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestParseCSV(t *testing.T) {
	in := "Date,Open,Close,Volume\n" +
		"2024-01-02,1,10.5,100\n" +
		"bad-date,1,11,100\n" +
		"2024-01-03,1,n/a,100\n" +
		"2024-01-04 00:00:00,1,12.25,100\n"
	obs, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, day(1), obs[0].Date)
	assert.Equal(t, 10.5, obs[0].Close)
	assert.Equal(t, 12.25, obs[1].Close)

	_, err = ParseCSV(strings.NewReader("Date,Price\n2024-01-02,1\n"))
	assert.Error(t, err)
}

type countingMetrics struct {
	loads   map[string]int
	hits    int
	misses  int
	queries int
	paths   int
}

func newCountingMetrics() *countingMetrics { return &countingMetrics{loads: map[string]int{}} }

func (m *countingMetrics) RecordQuery(string, string, float64) { m.queries++ }
func (m *countingMetrics) RecordSimulatedPaths(n int)          { m.paths += n }
func (m *countingMetrics) RecordSeriesLoad(backend, result string) {
	m.loads[backend+":"+result]++
}
func (m *countingMetrics) RecordCacheLookup(hit bool) {
	if hit {
		m.hits++
		return
	}
	m.misses++
}

func TestCSVPriceStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TLT.csv"), []byte("Date,Close\n2024-01-02,90\n2024-01-03,91\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	s := NewCSVPriceStore(dir)
	m := newCountingMetrics()
	s.SetMetrics(m)

	obs, err := s.Series(context.Background(), "TLT")
	require.NoError(t, err)
	assert.Len(t, obs, 2)

	_, err = s.Series(context.Background(), "GDX")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	symbols, err := s.Symbols()
	require.NoError(t, err)
	assert.Equal(t, []string{"TLT"}, symbols)
	assert.Equal(t, 1, m.loads["csv:ok"])
	assert.Equal(t, 1, m.loads["csv:not_found"])
}

func TestSQLitePriceStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLitePriceStore(ctx, ":memory:", "daily_closes")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.StoreBatch(ctx, "GDX", []models.PriceObservation{
		{Date: day(2), Close: 30},
		{Date: day(1), Close: 29},
	}))
	// upsert replaces the close of an existing day
	require.NoError(t, s.StoreBatch(ctx, "GDX", []models.PriceObservation{{Date: day(2), Close: 31}}))

	obs, err := s.Series(ctx, "GDX")
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, day(1), obs[0].Date)
	assert.Equal(t, 31.0, obs[1].Close)

	_, err = s.Series(ctx, "TLT")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestSQLitePriceStoreRejectsBadTable(t *testing.T) {
	_, err := OpenSQLitePriceStore(context.Background(), ":memory:", "closes; DROP TABLE x")
	assert.Error(t, err)
}

type countingStore struct {
	*MemoryPriceStore
	calls int
}

func (c *countingStore) Series(ctx context.Context, symbol string) ([]models.PriceObservation, error) {
	c.calls++
	return c.MemoryPriceStore.Series(ctx, symbol)
}

func TestCachedPriceStore(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryPriceStore: NewMemoryPriceStore()}
	require.NoError(t, inner.StoreBatch(ctx, "BITQ", []models.PriceObservation{{Date: day(0), Close: 12}}))

	mc := cache.NewMemoryCache()
	defer mc.Close()
	s := NewCachedPriceStore(inner, mc, "csv", time.Minute)
	m := newCountingMetrics()
	s.SetMetrics(m)

	for i := 0; i < 3; i++ {
		obs, err := s.Series(ctx, "BITQ")
		require.NoError(t, err)
		require.Len(t, obs, 1)
		assert.True(t, obs[0].Date.Equal(day(0)))
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 2, m.hits)
	assert.Equal(t, 1, m.misses)

	require.NoError(t, s.Invalidate(ctx, "BITQ"))
	_, err := s.Series(ctx, "BITQ")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	_, err = s.Series(ctx, "NONE")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCachedPriceStoreDropsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryPriceStore: NewMemoryPriceStore()}
	require.NoError(t, inner.StoreBatch(ctx, "TLT", []models.PriceObservation{{Date: day(0), Close: 1}}))

	mc := cache.NewMemoryCache()
	defer mc.Close()
	s := NewCachedPriceStore(inner, mc, "csv", time.Minute)
	require.NoError(t, mc.Set(ctx, s.key("TLT"), "not json", time.Minute))

	obs, err := s.Series(ctx, "TLT")
	require.NoError(t, err)
	assert.Len(t, obs, 1)
	assert.Equal(t, 1, inner.calls)
}
