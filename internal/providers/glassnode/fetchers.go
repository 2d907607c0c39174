package glassnode

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
	"github.com/seenimoa/finterm/pkg/utils"
)

// metricPaths maps the short names used at the prompt to endpoint paths.
// Any other value containing a slash is passed through unchanged.
var metricPaths = map[string]string{
	"active":           "addresses/active_count",
	"non_zero":         "addresses/non_zero_count",
	"exchange_balance": "distribution/balance_exchanges",
	"hashrate":         "mining/hash_rate_mean",
	"transactions":     "transactions/count",
	"price":            "market/price_usd_close",
}

type metricFetcher struct {
	provider.BaseFetcher
}

func newMetricFetcher() *metricFetcher {
	return &metricFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelOnChainMetric,
			"Daily on-chain metric for an asset (metric: active, non_zero, exchange_balance, hashrate, transactions, price or an endpoint path)",
			[]string{provider.ParamSymbol, provider.ParamMetric},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamInterval},
			time.Hour, 1, time.Second,
		),
	}
}

func metricPath(m string) (string, error) {
	m = strings.ToLower(strings.Trim(m, "/"))
	if p, ok := metricPaths[m]; ok {
		return p, nil
	}
	if strings.Contains(m, "/") {
		return m, nil
	}
	return "", fmt.Errorf("glassnode: unknown metric %q", m)
}

func interval(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", "1d", "24h":
		return "24h", nil
	case "1h":
		return "1h", nil
	case "1w", "1wk":
		return "1w", nil
	case "1mo", "1month":
		return "1month", nil
	default:
		return "", fmt.Errorf("glassnode: unsupported interval %q", s)
	}
}

func (f *metricFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	asset := strings.ToUpper(params[provider.ParamSymbol])
	path, err := metricPath(params[provider.ParamMetric])
	if err != nil {
		return nil, err
	}
	iv, err := interval(params[provider.ParamInterval])
	if err != nil {
		return nil, err
	}
	from, to, err := utils.DateRange(params[provider.ParamStartDate], params[provider.ParamEndDate], 365*24*time.Hour)
	if err != nil {
		return nil, err
	}

	return f.Cached(ctx, params, func() (any, error) {
		q := url.Values{
			"a": {asset},
			"i": {iv},
			"s": {strconv.FormatInt(from.Unix(), 10)},
			"u": {strconv.FormatInt(to.Unix(), 10)},
		}
		var pts []gnPoint
		if err := get(ctx, params, path, q, &pts); err != nil {
			return nil, err
		}
		out := make([]models.OnChainPoint, 0, len(pts))
		for _, p := range pts {
			if p.V == nil {
				continue
			}
			out = append(out, models.OnChainPoint{
				Asset:     asset,
				Metric:    path,
				Timestamp: utils.FromUnix(p.T),
				Value:     *p.V,
			})
		}
		return out, nil
	})
}
