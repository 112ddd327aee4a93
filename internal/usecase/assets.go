package usecase

import (
	"fmt"
	"strings"

	"OpenFOF/internal/domain/models"
	domsvc "OpenFOF/internal/domain/service"
)

// MaxPageSize bounds catalog pages.
const MaxPageSize = 100

// AssetQueries serves read-only catalog lookups.
type AssetQueries struct {
	catalog domsvc.AssetCatalog
}

func NewAssetQueries(catalog domsvc.AssetCatalog) *AssetQueries {
	return &AssetQueries{catalog: catalog}
}

func (q *AssetQueries) List() []models.Asset {
	return q.catalog.List()
}

func (q *AssetQueries) ByID(id string) (models.Asset, error) {
	return q.catalog.ByID(id)
}

func (q *AssetQueries) BySymbol(symbol string) (models.Asset, error) {
	return q.catalog.BySymbol(symbol)
}

// Search ranks assets matching query. A blank query is invalid.
func (q *AssetQueries) Search(query string) ([]models.Asset, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search: empty query: %w", models.ErrInvalidArgument)
	}
	return q.catalog.Search(query), nil
}

// DefaultPageSize applies when a page size is missing or below 1.
const DefaultPageSize = 10

// Paginate slices assets into the requested page. Page sizes above
// MaxPageSize are capped and the page is clamped into range.
func Paginate(assets []models.Asset, page, pageSize int) models.AssetPage {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	total := len(assets)
	pages := (total + pageSize - 1) / pageSize
	page = max(1, min(page, max(pages, 1)))

	lo := min((page-1)*pageSize, total)
	hi := min(lo+pageSize, total)
	data := make([]models.Asset, hi-lo)
	copy(data, assets[lo:hi])

	return models.AssetPage{
		Data: data,
		Pagination: models.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: pages,
			HasNext:    page < pages,
			HasPrev:    page > 1,
		},
	}
}
