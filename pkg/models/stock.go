// Package models defines the vendor-neutral data structures returned by
// every provider in finterm. One struct per standard model type.
package models

import "time"

// OHLCV represents a single candlestick bar of price data.
type OHLCV struct {
	Symbol    string    `json:"symbol,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	AdjClose  float64   `json:"adj_close,omitempty"`
}

// Quote represents a real-time stock quote.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name,omitempty"`
	LastPrice float64   `json:"last_price"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	PrevClose float64   `json:"prev_close"`
	Volume    float64   `json:"volume,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Timeframe represents chart timeframe for OHLCV data.
type Timeframe string

const (
	Timeframe1Min  Timeframe = "1m"
	Timeframe5Min  Timeframe = "5m"
	Timeframe15Min Timeframe = "15m"
	Timeframe1Hour Timeframe = "1h"
	Timeframe1Day  Timeframe = "1d"
	Timeframe1Week Timeframe = "1w"
	Timeframe1Mon  Timeframe = "1M"
)

// ParseTimeframe accepts the common spellings ("1d", "daily", "1wk", ...).
// Unknown values fall back to daily.
func ParseTimeframe(s string) Timeframe {
	switch s {
	case "1m", "1min":
		return Timeframe1Min
	case "5m", "5min":
		return Timeframe5Min
	case "15m", "15min":
		return Timeframe15Min
	case "1h", "60m", "60min", "hourly":
		return Timeframe1Hour
	case "1w", "1wk", "weekly":
		return Timeframe1Week
	case "1M", "1mo", "monthly":
		return Timeframe1Mon
	default:
		return Timeframe1Day
	}
}

// AnalystRating is one upgrade/downgrade/initiation from a broker.
type AnalystRating struct {
	Symbol      string    `json:"symbol"`
	Date        time.Time `json:"date"`
	Action      string    `json:"action"` // "Upgrade", "Downgrade", "Initiated", "Reiterated"
	Analyst     string    `json:"analyst"`
	Rating      string    `json:"rating"`       // e.g. "Hold → Buy"
	PriceTarget string    `json:"price_target"` // e.g. "$180 → $200"
}

// InsiderTrade is a single insider transaction filing.
type InsiderTrade struct {
	Symbol       string    `json:"symbol"`
	Insider      string    `json:"insider"`
	Relationship string    `json:"relationship"`
	Date         time.Time `json:"date"`
	Transaction  string    `json:"transaction"` // "Buy", "Sale", "Option Exercise"
	Cost         float64   `json:"cost"`
	Shares       float64   `json:"shares"`
	Value        float64   `json:"value"`
	SharesTotal  float64   `json:"shares_total"`
}
