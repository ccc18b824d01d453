package models

import "github.com/shopspring/decimal"

// RawRow is one untyped row as it arrives from the sheet endpoint.
// Column names are whatever the spreadsheet uses.
type RawRow map[string]any

type Holding struct {
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	MarketValue decimal.Decimal `json:"market_value"`
	// Extra carries sheet columns that have no canonical field.
	Extra map[string]any `json:"extra,omitempty"`
}

type HistoryPoint struct {
	Date             string          `json:"date"`
	TotalValue       decimal.Decimal `json:"total_value"`
	CumulativeGrowth string          `json:"cumulative_growth"`
	DailyGrowth      string          `json:"daily_growth,omitempty"`
	AnnualizedReturn string          `json:"annualized_return,omitempty"`
	Drawdown         float64         `json:"drawdown"`
	Sharpe           float64         `json:"sharpe"`
	Volatility       float64         `json:"volatility"`
}

// PerformanceStats keeps every column of the latest snapshot verbatim,
// keyed by the original sheet labels.
type PerformanceStats map[string]any

type QuoteRecord struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent string  `json:"change_percent"`
}

// MacroPoint is one entry of the index-vs-money-supply overlay.
type MacroPoint struct {
	Date      string  `json:"date"`
	SP500     float64 `json:"sp500"`
	M2        float64 `json:"m2"`
	Timestamp int64   `json:"timestamp"`
}
