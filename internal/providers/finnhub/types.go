package finnhub

type fhQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Time          int64   `json:"t"`
}

type fhNews struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

type fhSentiment struct {
	Symbol  string            `json:"symbol"`
	Reddit  []fhSentimentItem `json:"reddit"`
	Twitter []fhSentimentItem `json:"twitter"`
}

type fhSentimentItem struct {
	AtTime          string  `json:"atTime"`
	Mention         int     `json:"mention"`
	PositiveScore   float64 `json:"positiveScore"`
	NegativeScore   float64 `json:"negativeScore"`
	PositiveMention int     `json:"positiveMention"`
	NegativeMention int     `json:"negativeMention"`
	Score           float64 `json:"score"`
}
