package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CryptoQuote represents a real-time cryptocurrency quote.
type CryptoQuote struct {
	Symbol       string    `json:"symbol"`
	Price        float64   `json:"price"`
	Change24h    float64   `json:"change_24h"`
	ChangePct24h float64   `json:"change_pct_24h"`
	Volume24h    float64   `json:"volume_24h"`
	High24h      float64   `json:"high_24h"`
	Low24h       float64   `json:"low_24h"`
	Timestamp    time.Time `json:"timestamp"`
}

// CryptoListing is one row of a market-cap ranking.
type CryptoListing struct {
	Rank              int       `json:"rank"`
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name"`
	Price             float64   `json:"price"`
	MarketCap         float64   `json:"market_cap"`
	Volume24h         float64   `json:"volume_24h"`
	ChangePct24h      float64   `json:"change_pct_24h"`
	ChangePct7d       float64   `json:"change_pct_7d"`
	CirculatingSupply float64   `json:"circulating_supply,omitempty"`
	MaxSupply         float64   `json:"max_supply,omitempty"`
	LastUpdated       time.Time `json:"last_updated"`
}

// BookLevel is one price level of an order book. Exchanges quote prices
// and sizes as decimal strings, so they are kept exact.
type BookLevel struct {
	Side  string          `json:"side"` // "bid" or "ask"
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// OrderBook is a depth snapshot. Bids are sorted best (highest) first,
// asks best (lowest) first.
type OrderBook struct {
	Symbol    string      `json:"symbol"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Timestamp time.Time   `json:"timestamp"`
}

// Levels flattens the book into rows for tabular display: bids then asks.
func (ob *OrderBook) Levels() []BookLevel {
	out := make([]BookLevel, 0, len(ob.Bids)+len(ob.Asks))
	out = append(out, ob.Bids...)
	return append(out, ob.Asks...)
}

// Spread returns best ask minus best bid, or zero when a side is empty.
func (ob *OrderBook) Spread() decimal.Decimal {
	if len(ob.Bids) == 0 || len(ob.Asks) == 0 {
		return decimal.Zero
	}
	return ob.Asks[0].Price.Sub(ob.Bids[0].Price)
}

// Mid returns the midpoint of the best bid and ask.
func (ob *OrderBook) Mid() decimal.Decimal {
	if len(ob.Bids) == 0 || len(ob.Asks) == 0 {
		return decimal.Zero
	}
	return ob.Asks[0].Price.Add(ob.Bids[0].Price).Div(decimal.NewFromInt(2))
}

// OnChainPoint is a single observation of an on-chain metric.
type OnChainPoint struct {
	Asset     string    `json:"asset"`
	Metric    string    `json:"metric"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}
