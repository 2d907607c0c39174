package sentimentinvestor

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
	"github.com/seenimoa/finterm/pkg/utils"
)

// Metrics served by the historical endpoint:
// AHI average hourly interest, RHI relative hourly interest,
// SGP social growth percentage, SI sentiment index.
var metrics = map[string]bool{"AHI": true, "RHI": true, "SGP": true, "SI": true}

const defaultMetric = "SI"

type historicalFetcher struct {
	provider.BaseFetcher
}

func newHistoricalFetcher() *historicalFetcher {
	return &historicalFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelSocialSentiment,
			"Hourly sentiment metric history (metric: AHI, RHI, SGP, SI)",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamMetric, provider.ParamStartDate, provider.ParamEndDate},
			15*time.Minute, 1, time.Second,
		),
	}
}

func (f *historicalFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	metric := strings.ToUpper(params[provider.ParamMetric])
	if metric == "" {
		metric = defaultMetric
	}
	if !metrics[metric] {
		return nil, fmt.Errorf("sentimentinvestor: unknown metric %q (want AHI, RHI, SGP or SI)", metric)
	}
	from, to, err := utils.DateRange(params[provider.ParamStartDate], params[provider.ParamEndDate], 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	return f.Cached(ctx, params, func() (any, error) {
		q := url.Values{
			"symbol": {symbol},
			"metric": {metric},
			"start":  {strconv.FormatInt(from.Unix(), 10)},
			"end":    {strconv.FormatInt(to.Unix(), 10)},
		}
		var resp siResponse
		if err := get(ctx, params, "historical", q, &resp); err != nil {
			return nil, err
		}
		return toPoints(symbol, metric, resp.Results), nil
	})
}

// toPoints reads {"timestamp_epoch": t, "<metric>": v} records.
func toPoints(symbol, metric string, results []map[string]any) []models.SentimentPoint {
	out := make([]models.SentimentPoint, 0, len(results))
	for _, r := range results {
		ts, ok := r["timestamp_epoch"].(float64)
		if !ok {
			continue
		}
		v, ok := r[metric].(float64)
		if !ok {
			v, ok = r[strings.ToLower(metric)].(float64)
		}
		if !ok {
			continue
		}
		out = append(out, models.SentimentPoint{
			Symbol:    symbol,
			Source:    providerName,
			Timestamp: utils.FromUnix(int64(ts)),
			Score:     v,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}
