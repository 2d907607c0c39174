package models

import "time"

// FXQuote is a bid/ask snapshot for a currency pair.
type FXQuote struct {
	Pair      string    `json:"pair"` // e.g. "EUR_USD"
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Mid       float64   `json:"mid"`
	Spread    float64   `json:"spread"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFXQuote fills Mid and Spread from bid and ask.
func NewFXQuote(pair string, bid, ask float64, ts time.Time) FXQuote {
	return FXQuote{
		Pair:      pair,
		Bid:       bid,
		Ask:       ask,
		Mid:       (bid + ask) / 2,
		Spread:    ask - bid,
		Timestamp: ts,
	}
}
