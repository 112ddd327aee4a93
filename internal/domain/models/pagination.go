package models

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// AssetPage is a paginated slice of the catalog.
type AssetPage struct {
	Data       []Asset    `json:"data"`
	Pagination Pagination `json:"pagination"`
}
