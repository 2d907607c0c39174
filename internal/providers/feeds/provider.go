// Package feeds implements a keyless news provider over Google News RSS
// search. Several queries are fetched concurrently and merged.
package feeds

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName    = "feeds"
	baseURL         = "https://news.google.com/rss"
	defaultLanguage = "en-US"
)

// Provider implements provider.Provider for RSS news search.
type Provider struct {
	provider.BaseProvider
	lang string
}

// New creates a feeds provider. language is a BCP 47 tag such as "en-US";
// its region selects the Google News edition.
func New(language string) *Provider {
	if language == "" {
		language = defaultLanguage
	}
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Google News RSS - keyless headline search",
			"https://news.google.com",
			nil,
		),
		lang: language,
	}
	p.RegisterFetcher(newWorldNewsFetcher(language))
	return p
}

// Ping parses the edition's top stories feed.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{provider.ParamBaseURL: p.BaseURL()}
	if _, err := fetchFeed(ctx, gofeed.NewParser(), searchURL(params, "", p.lang)); err != nil {
		return fmt.Errorf("feeds ping: %w", err)
	}
	return nil
}

// searchURL builds the search feed URL, or the top stories feed when
// query is empty.
func searchURL(params provider.QueryParams, query, lang string) string {
	region, short := "US", lang
	if i := strings.IndexByte(lang, '-'); i > 0 {
		short, region = lang[:i], strings.ToUpper(lang[i+1:])
	}
	q := url.Values{
		"hl":   {lang},
		"gl":   {region},
		"ceid": {region + ":" + short},
	}
	base := provider.BaseURL(params, baseURL)
	if query == "" {
		return base + "?" + q.Encode()
	}
	q.Set("q", query)
	return base + "/search?" + q.Encode()
}

// fetchFeed downloads through the shared HTTP client so timeouts and the
// user agent apply, then parses with gofeed.
func fetchFeed(ctx context.Context, parser *gofeed.Parser, u string) (*gofeed.Feed, error) {
	data, err := infra.GetBytes(ctx, u, map[string]string{"Accept": "application/rss+xml, application/xml"})
	if err != nil {
		return nil, err
	}
	feed, err := parser.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}
