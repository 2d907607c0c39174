package models

import "time"

// NewsArticle is a single headline with its source. Symbol is set for
// company news and empty for world news.
type NewsArticle struct {
	Symbol      string    `json:"symbol,omitempty"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Author      string    `json:"author,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
