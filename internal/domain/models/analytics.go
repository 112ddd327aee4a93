package models

import (
	"encoding/json"
	"sort"
	"time"
)

// DateLayout is the wire format for dates in analytics responses.
const DateLayout = "2006-01-02T15:04:05"

// SimulationResult summarizes the simulated price distribution for one future day.
type SimulationResult struct {
	Date   time.Time `json:"-"`
	Mean   float64   `json:"mean"`
	Median float64   `json:"median"`
	StdDev float64   `json:"stdDev"`
	P5     float64   `json:"p5"`
	P95    float64   `json:"p95"`
}

// MarshalJSON renders Date in DateLayout.
func (r SimulationResult) MarshalJSON() ([]byte, error) {
	type alias SimulationResult
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{Date: r.Date.Format(DateLayout), alias: alias(r)})
}

// DataPoint is one row of a portfolio timeline: a price per symbol and their average.
type DataPoint struct {
	Date    time.Time
	Values  map[string]float64
	Average float64
}

// MarshalJSON flattens the point to {"date": ..., "<SYMBOL>": ..., "average": ...}.
func (p DataPoint) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Values)+2)
	for k, v := range p.Values {
		out[k] = v
	}
	out["date"] = p.Date.Format(DateLayout)
	out["average"] = p.Average
	return json.Marshal(out)
}

// PortfolioStats are the aggregate figures of a portfolio timeline.
type PortfolioStats struct {
	Volatility        float64  `json:"volatility"`
	NetProfit         float64  `json:"netProfit"`
	NetProfitPercent  float64  `json:"netProfitPercent"`
	PredictedProfit1Y float64  `json:"predictedProfit1Y"`
	Correlation       *float64 `json:"correlation,omitempty"`
}

// PortfolioTimeline is the past and projected performance of a portfolio.
type PortfolioTimeline struct {
	Historical  []DataPoint       `json:"historical"`
	Future      []DataPoint       `json:"future"`
	Stats       PortfolioStats    `json:"stats"`
	AssetColors map[string]string `json:"assetColors"`
}

// CorrelationGroup is a catalog category scored by its correlation to a portfolio.
type CorrelationGroup struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	AssetIDs         []string `json:"assetIds"`
	CorrelationScore float64  `json:"correlationScore"`
}

// Heatmap is a correlation grid in label order. Nil cells are undefined.
type Heatmap struct {
	Labels []string     `json:"labels"`
	Data   [][]*float64 `json:"data"`
}

// DiversificationCandidate is a ranked asset that would lower portfolio correlation.
type DiversificationCandidate struct {
	ID                  string  `json:"id"`
	Symbol              string  `json:"symbol"`
	Name                string  `json:"name"`
	Reason              string  `json:"reason"`
	CorrelationScore    float64 `json:"correlationScore"`
	ExpectedImprovement float64 `json:"expectedImprovement"`
}

// AssetStats are single-asset figures over a trailing window.
type AssetStats struct {
	AssetID          string   `json:"assetId"`
	Symbol           string   `json:"symbol"`
	Days             int      `json:"days"`
	PercentageChange float64  `json:"percentageChange"`
	Volatility       float64  `json:"volatility"`
	SharpeRatio      *float64 `json:"sharpeRatio,omitempty"`
}

// Projection is the simulated distribution of one asset over a horizon.
type Projection struct {
	AssetID   string             `json:"assetId"`
	Symbol    string             `json:"symbol"`
	LastPrice float64            `json:"lastPrice"`
	LastDate  string             `json:"lastDate"`
	Paths     int                `json:"paths"`
	Days      []SimulationResult `json:"days"`
}

// TimeRange is a named lookback token of the portfolio timeline.
type TimeRange string

// timeRangeDays maps tokens to calendar days.
var timeRangeDays = map[TimeRange]int{
	"1D":  1,
	"5D":  5,
	"1M":  30,
	"6M":  180,
	"1Y":  365,
	"5Y":  1825,
	"MAX": 3650,
}

// Days returns the calendar days of the range, or false for an unknown token.
func (r TimeRange) Days() (int, bool) {
	d, ok := timeRangeDays[r]
	return d, ok
}

// TimeRanges lists the accepted tokens, shortest first.
func TimeRanges() []TimeRange {
	out := make([]TimeRange, 0, len(timeRangeDays))
	for k := range timeRangeDays {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return timeRangeDays[out[i]] < timeRangeDays[out[j]] })
	return out
}

// AnalyticsEvent describes one completed analytics query.
type AnalyticsEvent struct {
	Query      string    `json:"query"`
	Symbols    []string  `json:"symbols"`
	Result     string    `json:"result"`
	DurationMs int64     `json:"durationMs"`
	Timestamp  time.Time `json:"timestamp"`
}
