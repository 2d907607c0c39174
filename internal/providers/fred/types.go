package fred

// seriesList is the body of /series and /series/search. FRED spells the
// array "seriess".
type seriesList struct {
	Count  int          `json:"count"`
	Series []seriesMeta `json:"seriess"`
}

type seriesMeta struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ObservationStart string `json:"observation_start"`
	ObservationEnd   string `json:"observation_end"`
	Frequency        string `json:"frequency"`
	Units            string `json:"units"`
	Adjustment       string `json:"seasonal_adjustment_short"`
	LastUpdated      string `json:"last_updated"`
	Popularity       int    `json:"popularity"`
}

type observationList struct {
	Count        int           `json:"count"`
	Observations []observation `json:"observations"`
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"` // "." when missing
}
