package models

import "time"

// SentimentPoint is a social sentiment reading for a ticker.
type SentimentPoint struct {
	Symbol    string    `json:"symbol"`
	Source    string    `json:"source"` // e.g. "reddit", "twitter", "sentimentinvestor"
	Timestamp time.Time `json:"timestamp"`
	Mentions  int       `json:"mentions"`
	Positive  float64   `json:"positive"`
	Negative  float64   `json:"negative"`
	Score     float64   `json:"score"` // net sentiment, vendor scale
}

// SocialPost is one post from a discussion board.
type SocialPost struct {
	ID          string    `json:"id"`
	Community   string    `json:"community"` // subreddit
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Score       int       `json:"score"`
	Comments    int       `json:"comments"`
	UpvoteRatio float64   `json:"upvote_ratio"`
	Flair       string    `json:"flair,omitempty"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}
