package feeds

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
	"github.com/seenimoa/finterm/pkg/utils"
)

// maxConcurrentFeeds bounds the number of feeds downloaded at once.
const maxConcurrentFeeds = 4

type worldNewsFetcher struct {
	provider.BaseFetcher
	lang string
}

func newWorldNewsFetcher(lang string) *worldNewsFetcher {
	return &worldNewsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelWorldNews,
			"Google News headlines (query: comma-separated searches; empty for top stories)",
			nil,
			[]string{provider.ParamQuery, provider.ParamLimit},
			10*time.Minute, 4, time.Second,
		),
		lang: lang,
	}
}

func (f *worldNewsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	queries := splitQueries(params[provider.ParamQuery])
	limit := utils.ParseInt(params[provider.ParamLimit], 0)

	return f.Cached(ctx, params, func() (any, error) {
		var (
			mu       sync.Mutex
			articles []models.NewsArticle
			errs     []error
		)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrentFeeds)
		for _, q := range queries {
			g.Go(func() error {
				// Each goroutine gets its own parser; gofeed parsers are not
				// safe for concurrent use.
				feed, err := fetchFeed(gctx, gofeed.NewParser(), searchURL(params, q, f.lang))
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return nil
				}
				articles = append(articles, toArticles(feed)...)
				return nil
			})
		}
		_ = g.Wait()

		// A failed query is skipped unless every query failed.
		if len(errs) == len(queries) {
			return nil, errors.Join(errs...)
		}

		articles = dedupe(articles)
		sort.SliceStable(articles, func(i, j int) bool { return articles[i].PublishedAt.After(articles[j].PublishedAt) })
		if limit > 0 && len(articles) > limit {
			articles = articles[:limit]
		}
		return articles, nil
	})
}

// splitQueries returns the comma-separated searches, or a single empty
// query for the top stories feed.
func splitQueries(s string) []string {
	var out []string
	for _, q := range strings.Split(s, ",") {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

func toArticles(feed *gofeed.Feed) []models.NewsArticle {
	out := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   item.Title,
			URL:     item.Link,
			Summary: cleanHTML(item.Description),
			Source:  feed.Title,
		}
		// Google News titles end with " - <publisher>".
		if i := strings.LastIndex(item.Title, " - "); i > 0 {
			a.Title, a.Source = item.Title[:i], item.Title[i+3:]
		}
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			a.Author = item.Authors[0].Name
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		out = append(out, a)
	}
	return out
}

// dedupe drops repeated links, keeping the first occurrence.
func dedupe(in []models.NewsArticle) []models.NewsArticle {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, a := range in {
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		out = append(out, a)
	}
	return out
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
