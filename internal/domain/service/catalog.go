package service

import "OpenFOF/internal/domain/models"

// AssetCatalog is the read-only instrument list analytics queries resolve against.
type AssetCatalog interface {
	List() []models.Asset
	ByID(id string) (models.Asset, error)
	BySymbol(symbol string) (models.Asset, error)
	Search(query string) []models.Asset
	// Candidates returns every asset except the market-index reference, in catalog order.
	Candidates() []models.Asset
}
