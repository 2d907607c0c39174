package newsapi

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
	"github.com/seenimoa/finterm/pkg/utils"
)

const maxPageSize = 100

type naResponse struct {
	Status   string      `json:"status"`
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Articles []naArticle `json:"articles"`
}

type naArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

func toArticles(symbol string, items []naArticle) []models.NewsArticle {
	out := make([]models.NewsArticle, 0, len(items))
	for _, a := range items {
		// Articles pulled by the publisher come back as "[Removed]".
		if a.Title == "[Removed]" {
			continue
		}
		out = append(out, models.NewsArticle{
			Symbol:      symbol,
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source.Name,
			Author:      a.Author,
			Summary:     a.Description,
			PublishedAt: a.PublishedAt,
		})
	}
	return out
}

func pageSize(params provider.QueryParams) string {
	n := utils.ParseInt(params[provider.ParamLimit], 20)
	if n <= 0 || n > maxPageSize {
		n = maxPageSize
	}
	return strconv.Itoa(n)
}

// ---- World news ----

type worldNewsFetcher struct {
	provider.BaseFetcher
}

func newWorldNewsFetcher() *worldNewsFetcher {
	return &worldNewsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelWorldNews,
			"Business headlines, or article search when a query is given",
			nil,
			[]string{provider.ParamQuery, provider.ParamStartDate, provider.ParamEndDate, provider.ParamLimit},
			10*time.Minute, 1, time.Second,
		),
	}
}

func (f *worldNewsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	query := strings.TrimSpace(params[provider.ParamQuery])
	if query == "" {
		return f.Cached(ctx, params, func() (any, error) {
			q := url.Values{"category": {"business"}, "language": {"en"}, "pageSize": {pageSize(params)}}
			items, err := search(ctx, params, "top-headlines", q)
			if err != nil {
				return nil, err
			}
			return toArticles("", items), nil
		})
	}
	return everything(ctx, &f.BaseFetcher, params, query, "")
}

// ---- Company news ----

type companyNewsFetcher struct {
	provider.BaseFetcher
}

func newCompanyNewsFetcher() *companyNewsFetcher {
	return &companyNewsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanyNews,
			"Articles mentioning a ticker (default: last 7 days)",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamLimit},
			10*time.Minute, 1, time.Second,
		),
	}
}

func (f *companyNewsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	return everything(ctx, &f.BaseFetcher, params, symbol, symbol)
}

func everything(ctx context.Context, f *provider.BaseFetcher, params provider.QueryParams, query, symbol string) (*provider.FetchResult, error) {
	from, to, err := utils.DateRange(params[provider.ParamStartDate], params[provider.ParamEndDate], 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	return f.Cached(ctx, params, func() (any, error) {
		q := url.Values{
			"q":        {query},
			"from":     {utils.FormatDate(from)},
			"to":       {utils.FormatDate(to)},
			"sortBy":   {"publishedAt"},
			"language": {"en"},
			"pageSize": {pageSize(params)},
		}
		items, err := search(ctx, params, "everything", q)
		if err != nil {
			return nil, err
		}
		return toArticles(symbol, items), nil
	})
}
