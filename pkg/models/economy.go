package models

import "time"

// EconomicObservation is one dated value of an economic time series.
type EconomicObservation struct {
	SeriesID string    `json:"series_id"`
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
}

// EconomicSeriesInfo describes a searchable economic series.
type EconomicSeriesInfo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Frequency   string    `json:"frequency"`
	Units       string    `json:"units"`
	Adjustment  string    `json:"seasonal_adjustment,omitempty"`
	Start       string    `json:"observation_start"`
	End         string    `json:"observation_end"`
	Popularity  int       `json:"popularity"`
	LastUpdated time.Time `json:"last_updated"`
}

// DatasetRow is one row of a generic vendor dataset. Column names are
// vendor-defined, so values are kept in a map keyed by column.
type DatasetRow struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}
