package catalog

import (
	"hash/fnv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AverageColor is the chart color of the portfolio average series.
const AverageColor = "#a855f7"

var palette = []string{
	"#3b82f6", "#ef4444", "#10b981", "#f59e0b", "#6366f1", "#ec4899",
	"#14b8a6", "#f97316", "#84cc16", "#06b6d4", "#e11d48", "#8b5cf6",
}

// Color returns a stable chart color for symbol.
func Color(symbol string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToUpper(symbol)))
	return palette[h.Sum32()%uint32(len(palette))]
}

var categoryNames = map[string]string{
	"equity_etf":      "Equity ETFs",
	"bond_etf":        "Bond ETFs",
	"commodity_etf":   "Commodity ETFs",
	"crypto_etf":      "Crypto ETFs",
	"leveraged_etf":   "Leveraged ETFs",
	"closed_end_fund": "Closed-End Funds",
}

// CategoryName returns the display name of an asset type.
func CategoryName(assetType string) string {
	if name, ok := categoryNames[assetType]; ok {
		return name
	}
	return cases.Title(language.English).String(strings.ReplaceAll(assetType, "_", " "))
}

// CategoryLabel renders an asset type for prose, e.g. "bond etf".
func CategoryLabel(assetType string) string {
	return strings.ReplaceAll(assetType, "_", " ")
}
