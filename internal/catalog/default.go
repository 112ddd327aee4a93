package catalog

import "OpenFOF/internal/domain/models"

var defaultAssets = []models.Asset{
	{
		ID:          "asset-001",
		Symbol:      "BITQ",
		Name:        "Bitwise Crypto Industry Innovators ETF",
		Type:        "crypto_etf",
		Description: "ETF tracking companies that support or benefit from crypto and blockchain technology",
	},
	{
		ID:          "asset-002",
		Symbol:      "GDX",
		Name:        "VanEck Gold Miners ETF",
		Type:        "commodity_etf",
		Description: "ETF tracking gold mining companies",
	},
	{
		ID:          "asset-003",
		Symbol:      "RSBT",
		Name:        "RiverNorth Specialty Finance Corporation",
		Type:        "closed_end_fund",
		Description: "Specialty finance corporation focused on income generation",
	},
	{
		ID:          "asset-004",
		Symbol:      "SOXS",
		Name:        "Direxion Daily Semiconductor Bear 3X Shares",
		Type:        "leveraged_etf",
		Description: "3x inverse leveraged ETF for semiconductor sector",
	},
	{
		ID:          "asset-005",
		Symbol:      "SPPIX",
		Name:        "SP Funds S&P 500 Sharia Industry Exclusions ETF",
		Type:        "equity_etf",
		Description: "Shariah-compliant S&P 500 ETF",
	},
	{
		ID:          "asset-006",
		Symbol:      "SQQQ",
		Name:        "ProShares UltraPro Short QQQ",
		Type:        "leveraged_etf",
		Description: "3x inverse leveraged ETF for Nasdaq-100",
	},
	{
		ID:          "asset-007",
		Symbol:      "TLT",
		Name:        "iShares 20+ Year Treasury Bond ETF",
		Type:        "bond_etf",
		Description: "ETF tracking long-term U.S. Treasury bonds",
	},
	{
		ID:          "index-001",
		Symbol:      "S&P500",
		Name:        "S&P 500 Index",
		Type:        models.IndexCategory,
		Description: "Standard & Poor's 500 Index - broad U.S. equity market benchmark",
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultAssets)
	if err != nil {
		panic(err)
	}
	return c
}
