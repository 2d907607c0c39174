// Package reddit reads subreddit listings through Reddit's public JSON
// endpoints. No OAuth app is needed; Reddit only asks for a descriptive
// User-Agent.
package reddit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName     = "reddit"
	baseURL          = "https://www.reddit.com"
	defaultUserAgent = "finterm/1.0"
)

// Provider implements provider.Provider for Reddit.
type Provider struct {
	provider.BaseProvider
	userAgent string
}

// New creates a Reddit provider that identifies itself with userAgent.
func New(userAgent string) *Provider {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Reddit - subreddit posts from the public JSON listing",
			"https://www.reddit.com",
			nil,
		),
		userAgent: userAgent,
	}
	p.RegisterFetcher(newPostsFetcher(userAgent))
	return p
}

// Ping reads one post from r/wallstreetbets.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{provider.ParamBaseURL: p.BaseURL()}
	var out listing
	if err := get(ctx, params, p.userAgent, "r/wallstreetbets/hot.json", url.Values{"limit": {"1"}}, &out); err != nil {
		return fmt.Errorf("reddit ping: %w", err)
	}
	return nil
}

type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	Flair       string  `json:"link_flair_text"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
}

func get(ctx context.Context, params provider.QueryParams, ua, path string, q url.Values, dest any) error {
	q.Set("raw_json", "1")
	u := provider.BaseURL(params, baseURL) + "/" + path + "?" + q.Encode()
	headers := map[string]string{"Accept": "application/json", "User-Agent": ua}
	if err := infra.GetJSON(ctx, u, headers, dest); err != nil {
		return fmt.Errorf("reddit %s: %w", path, err)
	}
	return nil
}
