// Package finviz scrapes the Finviz quote page for analyst rating changes,
// insider transactions and headlines.
package finviz

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "finviz"
	baseURL      = "https://finviz.com"

	// Finviz rejects non-browser user agents.
	browserUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Provider implements provider.Provider for Finviz.
type Provider struct {
	provider.BaseProvider
	pages *pageLoader
}

// New creates a new Finviz provider.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Finviz - analyst ratings, insider trading and news (scraped)",
			"https://finviz.com",
			nil,
		),
		pages: newPageLoader(),
	}
	p.RegisterFetcher(newRatingsFetcher(p.pages))
	p.RegisterFetcher(newInsiderFetcher(p.pages))
	p.RegisterFetcher(newNewsFetcher(p.pages))
	return p
}

// Ping loads the SPY quote page.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{provider.ParamBaseURL: p.BaseURL()}
	if _, err := p.pages.load(ctx, params, "SPY"); err != nil {
		return fmt.Errorf("finviz ping: %w", err)
	}
	return nil
}

// pageLoader downloads quote pages once per symbol for all three fetchers.
type pageLoader struct {
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

func newPageLoader() *pageLoader {
	return &pageLoader{
		cache:   infra.NewCache(5 * time.Minute),
		limiter: infra.NewRateLimiter(1, time.Second), // conservative: 1 req/s
	}
}

func (l *pageLoader) load(ctx context.Context, params provider.QueryParams, symbol string) (*goquery.Document, error) {
	u := provider.BaseURL(params, baseURL) + "/quote.ashx?" + url.Values{"t": {symbol}, "p": {"d"}}.Encode()
	if cached, ok := l.cache.Get(u); ok {
		return cached.(*goquery.Document), nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := infra.GetBytes(ctx, u, map[string]string{"User-Agent": browserUA, "Accept": "text/html"})
	if err != nil {
		return nil, fmt.Errorf("finviz %s: %w", symbol, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("finviz %s: parse HTML: %w", symbol, err)
	}
	l.cache.Set(u, doc)
	return doc, nil
}
