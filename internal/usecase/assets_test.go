package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OpenFOF/internal/catalog"
	"OpenFOF/internal/domain/models"
)

func TestAssetQueries(t *testing.T) {
	q := NewAssetQueries(catalog.Default())

	assert.Len(t, q.List(), 8)

	a, err := q.BySymbol("tlt")
	require.NoError(t, err)
	assert.Equal(t, "asset-007", a.ID)

	_, err = q.ByID("nope")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = q.Search("  ")
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	found, err := q.Search("GDX")
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Equal(t, "GDX", found[0].Symbol)
}

func TestPaginate(t *testing.T) {
	assets := catalog.Default().List()

	page := Paginate(assets, 2, 3)
	assert.Equal(t, assets[3:6], page.Data)
	assert.Equal(t, models.Pagination{
		Page: 2, PageSize: 3, TotalItems: 8, TotalPages: 3, HasNext: true, HasPrev: true,
	}, page.Pagination)

	last := Paginate(assets, 99, 3)
	assert.Equal(t, 3, last.Pagination.Page)
	assert.Len(t, last.Data, 2)
	assert.False(t, last.Pagination.HasNext)

	capped := Paginate(assets, 0, 500)
	assert.Equal(t, 1, capped.Pagination.Page)
	assert.Equal(t, MaxPageSize, capped.Pagination.PageSize)
	assert.Len(t, capped.Data, 8)

	empty := Paginate(nil, 1, 0)
	assert.Equal(t, DefaultPageSize, empty.Pagination.PageSize)
	assert.Equal(t, 0, empty.Pagination.TotalPages)
	assert.Equal(t, 1, empty.Pagination.Page)
	assert.Empty(t, empty.Data)
}

func TestPriceImporterCopiesNormalizedSeries(t *testing.T) {
	src := storeWith(t, map[string][]models.PriceObservation{
		"GDX": {
			{Date: monday.AddDate(0, 0, 1), Close: 31},
			{Date: monday, Close: 30},
			{Date: monday.AddDate(0, 0, 2), Close: -1},
		},
	})
	dst := storeWith(t, nil)
	imp := NewPriceImporter(src, dst, nil, "memory", nil)

	results := imp.ImportAll(t.Context(), []string{"GDX", "TLT"})
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Rows)
	assert.ErrorIs(t, results[1].Err, models.ErrNotFound)

	got, err := dst.Series(t.Context(), "GDX")
	require.NoError(t, err)
	assert.Equal(t, []models.PriceObservation{
		{Date: monday, Close: 30},
		{Date: monday.AddDate(0, 0, 1), Close: 31},
	}, got)
}
