package models

// Requests for analytics HTTP endpoints. Defined in domain for consistency and reuse.

type PortfolioRequest struct {
	AssetIDs  []string `json:"assetIds" validate:"required,min=1,max=50,dive,required"`
	TimeRange string   `json:"timeRange" default:"1Y" validate:"oneof=1D 5D 1M 6M 1Y 5Y MAX"`
}

type AssetIDsRequest struct {
	AssetIDs []string `json:"assetIds" validate:"required,min=1,max=50,dive,required"`
}

type ProjectionRequest struct {
	AssetID     string `json:"assetId" validate:"required"`
	// Nil until defaulted so an explicit 0 survives.
	HorizonDays *int   `json:"horizonDays" default:"90" validate:"gte=0,lte=3650"`
	// Paths of 0 selects the configured default.
	Paths       int    `json:"paths" validate:"gte=0,lte=20000"`
	WindowDays  int    `json:"windowDays" default:"365" validate:"gte=1,lte=36500"`
}

type AssetStatsRequest struct {
	ID           string  `param:"id" validate:"required"`
	Days         int     `query:"days" default:"364" validate:"gte=1,lte=36500"`
	RiskFreeRate float64 `query:"risk_free_rate" validate:"gte=0,lte=1"`
}

// Out-of-range pages and page sizes are clamped, not rejected.
type ListRequest struct {
	Page     int `query:"page" default:"1"`
	PageSize int `query:"page_size" default:"10"`
}

type SearchRequest struct {
	Query    string `query:"q" validate:"required"`
	Page     int    `query:"page" default:"1"`
	PageSize int    `query:"page_size" default:"10"`
}
