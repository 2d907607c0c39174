package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
	"github.com/seenimoa/finterm/pkg/utils"
)

// ---- Quote ----

type quoteFetcher struct {
	provider.BaseFetcher
}

func newQuoteFetcher() *quoteFetcher {
	return &quoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityQuote,
			"Realtime quote from Finnhub",
			[]string{provider.ParamSymbol},
			nil,
			30*time.Second, 1, time.Second,
		),
	}
}

func (f *quoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])

	return f.Cached(ctx, params, func() (any, error) {
		var q fhQuote
		if err := get(ctx, params, "quote", url.Values{"symbol": {symbol}}, &q); err != nil {
			return nil, err
		}
		// Finnhub answers unknown symbols with an all-zero quote.
		if q.Current == 0 && q.Time == 0 {
			return nil, fmt.Errorf("finnhub: no quote for %s", symbol)
		}
		return []models.Quote{{
			Symbol:    symbol,
			LastPrice: q.Current,
			Change:    q.Change,
			ChangePct: q.ChangePercent,
			Open:      q.Open,
			High:      q.High,
			Low:       q.Low,
			PrevClose: q.PrevClose,
			Timestamp: utils.FromUnix(q.Time),
		}}, nil
	})
}

// ---- Company news ----

type companyNewsFetcher struct {
	provider.BaseFetcher
}

func newCompanyNewsFetcher() *companyNewsFetcher {
	return &companyNewsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanyNews,
			"Company news from Finnhub (default: last 7 days)",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamLimit},
			10*time.Minute, 1, time.Second,
		),
	}
}

func (f *companyNewsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	from, to, err := utils.DateRange(params[provider.ParamStartDate], params[provider.ParamEndDate], 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	limit := utils.ParseInt(params[provider.ParamLimit], 0)

	return f.Cached(ctx, params, func() (any, error) {
		var items []fhNews
		q := url.Values{"symbol": {symbol}, "from": {utils.FormatDate(from)}, "to": {utils.FormatDate(to)}}
		if err := get(ctx, params, "company-news", q, &items); err != nil {
			return nil, err
		}

		out := make([]models.NewsArticle, 0, len(items))
		for _, n := range items {
			out = append(out, models.NewsArticle{
				Symbol:      symbol,
				Title:       n.Headline,
				URL:         n.URL,
				Source:      n.Source,
				Summary:     n.Summary,
				PublishedAt: utils.FromUnix(n.Datetime),
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return out, nil
	})
}

// ---- Social sentiment ----

type sentimentFetcher struct {
	provider.BaseFetcher
}

func newSentimentFetcher() *sentimentFetcher {
	return &sentimentFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelSocialSentiment,
			"Reddit and Twitter sentiment from Finnhub",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate},
			10*time.Minute, 1, time.Second,
		),
	}
}

func (f *sentimentFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	from, to, err := utils.DateRange(params[provider.ParamStartDate], params[provider.ParamEndDate], 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	return f.Cached(ctx, params, func() (any, error) {
		var resp fhSentiment
		q := url.Values{"symbol": {symbol}, "from": {utils.FormatDate(from)}, "to": {utils.FormatDate(to)}}
		if err := get(ctx, params, "stock/social-sentiment", q, &resp); err != nil {
			return nil, err
		}

		var out []models.SentimentPoint
		add := func(source string, items []fhSentimentItem) {
			for _, it := range items {
				ts, err := utils.ParseDate(it.AtTime)
				if err != nil {
					continue
				}
				out = append(out, models.SentimentPoint{
					Symbol:    symbol,
					Source:    source,
					Timestamp: ts,
					Mentions:  it.Mention,
					Positive:  it.PositiveScore,
					Negative:  it.NegativeScore,
					Score:     it.Score,
				})
			}
		}
		add("reddit", resp.Reddit)
		add("twitter", resp.Twitter)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
		return out, nil
	})
}
