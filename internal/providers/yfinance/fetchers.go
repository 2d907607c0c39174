package yfinance

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
	"github.com/seenimoa/finterm/pkg/utils"
)

// --- Historical chart fetcher (equity, crypto, currency) ---

type chartFetcher struct {
	provider.BaseFetcher
	ticker func(string) string
}

func newChartFetcher(model provider.ModelType, desc string, ticker func(string) string) *chartFetcher {
	return &chartFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			model,
			desc,
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamInterval},
			15*time.Minute, 5, time.Second,
		),
		ticker: ticker,
	}
}

func (f *chartFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	yfTicker := f.ticker(symbol)

	start, end, err := utils.DateRange(params[provider.ParamStartDate], params[provider.ParamEndDate], 365*24*time.Hour)
	if err != nil {
		return nil, err
	}

	return f.Cached(ctx, params, func() (any, error) {
		q := url.Values{
			"period1":  {strconv.FormatInt(start.Unix(), 10)},
			"period2":  {strconv.FormatInt(end.Add(24*time.Hour).Unix(), 10)},
			"interval": {yfInterval(params[provider.ParamInterval])},
		}
		var resp chartResponse
		if err := fetchChart(ctx, params, yfTicker, q, &resp); err != nil {
			return nil, err
		}
		return parseCandles(symbol, resp.Chart.Result[0]), nil
	})
}

// --- Quote fetcher ---

type quoteFetcher struct {
	provider.BaseFetcher
}

func newQuoteFetcher() *quoteFetcher {
	return &quoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityQuote,
			"Latest stock quote from Yahoo Finance chart metadata",
			[]string{provider.ParamSymbol},
			nil,
			time.Minute, 5, time.Second,
		),
	}
}

func (f *quoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	yfTicker := equityTicker(params[provider.ParamSymbol])

	return f.Cached(ctx, params, func() (any, error) {
		var resp chartResponse
		q := url.Values{"range": {"1d"}, "interval": {"1d"}}
		if err := fetchChart(ctx, params, yfTicker, q, &resp); err != nil {
			return nil, err
		}

		m := resp.Chart.Result[0].Meta
		prev := m.ChartPreviousClose
		if prev == 0 {
			prev = m.PreviousClose
		}
		quote := models.Quote{
			Symbol:    m.Symbol,
			Name:      coalesce(m.LongName, m.ShortName),
			LastPrice: m.Price,
			High:      m.DayHigh,
			Low:       m.DayLow,
			PrevClose: prev,
			Volume:    m.Volume,
			Currency:  m.Currency,
			Timestamp: utils.FromUnix(m.MarketTime),
		}
		if candles := parseCandles(m.Symbol, resp.Chart.Result[0]); len(candles) > 0 {
			quote.Open = candles[len(candles)-1].Open
		}
		if prev != 0 {
			quote.Change = quote.LastPrice - prev
			quote.ChangePct = quote.Change / prev * 100
		}
		return []models.Quote{quote}, nil
	})
}

// --- Helpers ---

// parseCandles converts YF chart data to OHLCV slices. Bars without a close
// (trading halts, the still-open bar) are skipped.
func parseCandles(symbol string, result chartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := models.OHLCV{
			Symbol:    symbol,
			Timestamp: utils.FromUnix(ts),
			Close:     *q.Close[i],
		}
		c.Open = at(q.Open, i)
		c.High = at(q.High, i)
		c.Low = at(q.Low, i)
		c.Volume = at(q.Volume, i)
		c.AdjClose = at(adjCloses, i)
		candles = append(candles, c)
	}
	return candles
}

func at(xs []*float64, i int) float64 {
	if i < len(xs) && xs[i] != nil {
		return *xs[i]
	}
	return 0
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
