package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OpenFOF/internal/domain/models"
)

func symbols(assets []models.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Symbol
	}
	return out
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, 8, c.Len())

	sym, err := c.ResolveSymbol("asset-004")
	require.NoError(t, err)
	assert.Equal(t, "SOXS", sym)

	a, err := c.BySymbol("tlt")
	require.NoError(t, err)
	assert.Equal(t, "asset-007", a.ID)

	assert.True(t, c.IsIndex("index-001"))
	assert.False(t, c.IsIndex("asset-001"))
	assert.Len(t, c.Candidates(), 7)
}

func TestLookupsReturnNotFound(t *testing.T) {
	c := Default()
	_, err := c.ByID("asset-999")
	assert.True(t, errors.Is(err, models.ErrNotFound))
	_, err = c.BySymbol("NOPE")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]models.Asset{
		{ID: "a", Symbol: "X", Type: "equity_etf"},
		{ID: "b", Symbol: "x", Type: "equity_etf"},
	})
	assert.Error(t, err)

	_, err = New([]models.Asset{{ID: "a", Symbol: "X"}})
	assert.Error(t, err)
}

func TestSearchRanksByRelevance(t *testing.T) {
	c := Default()

	got := symbols(c.Search("soxs"))
	assert.Equal(t, []string{"SOXS"}, got)

	// SQQQ matches by symbol prefix, the rest by name.
	got = symbols(c.Search("sq"))
	require.NotEmpty(t, got)
	assert.Equal(t, "SQQQ", got[0])

	got = symbols(c.Search("semiconductor"))
	assert.Equal(t, []string{"SOXS"}, got)

	got = symbols(c.Search("gold"))
	assert.Equal(t, []string{"GDX"}, got)

	assert.Empty(t, c.Search("  "))
	assert.Empty(t, c.Search("zzzz"))
}

func TestSearchTiesOrderedBySymbol(t *testing.T) {
	// Name matches outrank description-only matches.
	got := symbols(Default().Search("etf"))
	assert.Equal(t, []string{"BITQ", "GDX", "SPPIX", "TLT", "SOXS", "SQQQ"}, got)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `assets:
  - id: a-1
    symbol: AAA
    name: Alpha Fund
    type: equity_etf
  - id: i-1
    symbol: IDX
    name: Index
    type: index
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"AAA"}, symbols(c.Candidates()))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPresentation(t *testing.T) {
	assert.Equal(t, "Closed-End Funds", CategoryName("closed_end_fund"))
	assert.Equal(t, "Money Market", CategoryName("money_market"))
	assert.Equal(t, "bond etf", CategoryLabel("bond_etf"))

	assert.Equal(t, Color("BITQ"), Color("bitq"))
	assert.Regexp(t, `^#[0-9a-f]{6}$`, Color("TLT"))
}
