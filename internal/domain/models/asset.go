package models

// IndexCategory marks the market-index reference asset. It is never a
// grouping or diversification candidate.
const IndexCategory = "index"

// Asset is an entry of the instrument catalog.
type Asset struct {
	ID          string `json:"id" yaml:"id"`
	Symbol      string `json:"symbol" yaml:"symbol"`
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// IsIndex reports whether the asset is the market-index reference.
func (a Asset) IsIndex() bool { return a.Type == IndexCategory }
