package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
	"github.com/seenimoa/finterm/pkg/utils"
)

// ---- Time series ----

type historicalFetcher struct {
	provider.BaseFetcher
}

func newHistoricalFetcher() *historicalFetcher {
	return &historicalFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityHistorical,
			"Daily, weekly, monthly or intraday OHLCV from Alpha Vantage",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamInterval},
			30*time.Minute, 5, time.Minute,
		),
	}
}

// seriesFunction maps an interval to the API function and the key holding the series.
func seriesFunction(interval string) (function, key, avInterval string) {
	switch models.ParseTimeframe(interval) {
	case models.Timeframe1Week:
		return "TIME_SERIES_WEEKLY", "Weekly Time Series", ""
	case models.Timeframe1Mon:
		return "TIME_SERIES_MONTHLY", "Monthly Time Series", ""
	case models.Timeframe1Min:
		return "TIME_SERIES_INTRADAY", "Time Series (1min)", "1min"
	case models.Timeframe5Min:
		return "TIME_SERIES_INTRADAY", "Time Series (5min)", "5min"
	case models.Timeframe15Min:
		return "TIME_SERIES_INTRADAY", "Time Series (15min)", "15min"
	case models.Timeframe1Hour:
		return "TIME_SERIES_INTRADAY", "Time Series (60min)", "60min"
	default:
		return "TIME_SERIES_DAILY", "Time Series (Daily)", ""
	}
}

func (f *historicalFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	from, to, err := utils.DateRange(params[provider.ParamStartDate], params[provider.ParamEndDate], 0)
	if err != nil {
		return nil, err
	}
	if params[provider.ParamStartDate] == "" {
		from = time.Time{}
	}

	return f.Cached(ctx, params, func() (any, error) {
		function, key, interval := seriesFunction(params[provider.ParamInterval])
		q := url.Values{"function": {function}, "symbol": {symbol}, "outputsize": {"full"}}
		if interval != "" {
			q.Set("interval", interval)
		}

		doc, err := query(ctx, params, q)
		if err != nil {
			return nil, err
		}
		series := doc.Get(gjsonKey(key))
		if !series.Exists() {
			return nil, fmt.Errorf("alphavantage: no %q in response for %s", key, symbol)
		}

		var bars []models.OHLCV
		series.ForEach(func(date, bar gjson.Result) bool {
			ts, err := utils.ParseDate(date.String())
			if err != nil || !utils.InRange(ts, from, to) {
				return true
			}
			bars = append(bars, models.OHLCV{
				Symbol:    symbol,
				Timestamp: ts,
				Open:      bar.Get(`1\. open`).Float(),
				High:      bar.Get(`2\. high`).Float(),
				Low:       bar.Get(`3\. low`).Float(),
				Close:     bar.Get(`4\. close`).Float(),
				Volume:    bar.Get(`5\. volume`).Float(),
			})
			return true
		})
		sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
		return bars, nil
	})
}

// ---- Global quote ----

type quoteFetcher struct {
	provider.BaseFetcher
}

func newQuoteFetcher() *quoteFetcher {
	return &quoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityQuote,
			"Latest price and change from Alpha Vantage GLOBAL_QUOTE",
			[]string{provider.ParamSymbol},
			nil,
			time.Minute, 5, time.Minute,
		),
	}
}

func (f *quoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])

	return f.Cached(ctx, params, func() (any, error) {
		doc, err := query(ctx, params, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}})
		if err != nil {
			return nil, err
		}
		g := doc.Get("Global Quote")
		if !g.Exists() || g.Get(`01\. symbol`).String() == "" {
			return nil, fmt.Errorf("alphavantage: no quote for %s", symbol)
		}
		day, _ := utils.ParseDate(g.Get(`07\. latest trading day`).String())
		return []models.Quote{{
			Symbol:    g.Get(`01\. symbol`).String(),
			Open:      g.Get(`02\. open`).Float(),
			High:      g.Get(`03\. high`).Float(),
			Low:       g.Get(`04\. low`).Float(),
			LastPrice: g.Get(`05\. price`).Float(),
			Volume:    g.Get(`06\. volume`).Float(),
			Timestamp: day,
			PrevClose: g.Get(`08\. previous close`).Float(),
			Change:    g.Get(`09\. change`).Float(),
			ChangePct: utils.ParseNumber(g.Get(`10\. change percent`).String()),
		}}, nil
	})
}

// ---- FX quote ----

type fxQuoteFetcher struct {
	provider.BaseFetcher
}

func newFXQuoteFetcher() *fxQuoteFetcher {
	return &fxQuoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCurrencyQuote,
			"Realtime exchange rate from Alpha Vantage (symbol EURUSD or EUR/USD)",
			[]string{provider.ParamSymbol},
			nil,
			time.Minute, 5, time.Minute,
		),
	}
}

func (f *fxQuoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	base, quote, err := splitPair(params[provider.ParamSymbol])
	if err != nil {
		return nil, err
	}

	return f.Cached(ctx, params, func() (any, error) {
		doc, err := query(ctx, params, url.Values{
			"function":      {"CURRENCY_EXCHANGE_RATE"},
			"from_currency": {base},
			"to_currency":   {quote},
		})
		if err != nil {
			return nil, err
		}
		r := doc.Get("Realtime Currency Exchange Rate")
		if !r.Exists() {
			return nil, fmt.Errorf("alphavantage: no rate for %s/%s", base, quote)
		}
		ts, _ := utils.ParseDate(r.Get(`6\. Last Refreshed`).String())
		bid, ask := r.Get(`8\. Bid Price`).Float(), r.Get(`9\. Ask Price`).Float()
		if bid == 0 || ask == 0 {
			rate := r.Get(`5\. Exchange Rate`).Float()
			bid, ask = rate, rate
		}
		return []models.FXQuote{models.NewFXQuote(base+"_"+quote, bid, ask, ts)}, nil
	})
}

// splitPair accepts "EURUSD", "EUR/USD", "EUR_USD" or "EUR-USD".
func splitPair(symbol string) (string, string, error) {
	s := strings.ToUpper(strings.NewReplacer("/", "", "_", "", "-", "").Replace(symbol))
	if len(s) != 6 {
		return "", "", fmt.Errorf("currency pair %q: want six letters like EURUSD", symbol)
	}
	return s[:3], s[3:], nil
}

// gjsonKey escapes the characters gjson treats as path syntax.
func gjsonKey(key string) string {
	return strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`).Replace(key)
}
