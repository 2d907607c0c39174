package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
	"github.com/seenimoa/finterm/pkg/utils"
)

// ---- Klines ----

type klinesFetcher struct {
	provider.BaseFetcher
}

func newKlinesFetcher() *klinesFetcher {
	return &klinesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoHistorical,
			"Candlesticks from Binance (symbol BTC or BTCUSDT)",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamInterval, provider.ParamLimit},
			5*time.Minute, 10, time.Second,
		),
	}
}

func (f *klinesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := toSymbol(params[provider.ParamSymbol])
	q := url.Values{
		"symbol":   {symbol},
		"interval": {string(models.ParseTimeframe(params[provider.ParamInterval]))},
		"limit":    {strconv.Itoa(utils.ParseInt(params[provider.ParamLimit], 500))},
	}
	if params[provider.ParamStartDate] != "" || params[provider.ParamEndDate] != "" {
		from, to, err := utils.DateRange(params[provider.ParamStartDate], params[provider.ParamEndDate], 365*24*time.Hour)
		if err != nil {
			return nil, err
		}
		q.Set("startTime", strconv.FormatInt(from.UnixMilli(), 10))
		q.Set("endTime", strconv.FormatInt(to.Add(24*time.Hour).UnixMilli()-1, 10))
	}

	return f.Cached(ctx, params, func() (any, error) {
		var rows [][]json.RawMessage
		if err := get(ctx, params, "klines", q, &rows); err != nil {
			return nil, err
		}
		bars := make([]models.OHLCV, 0, len(rows))
		for _, r := range rows {
			bar, err := parseKline(symbol, r)
			if err != nil {
				return nil, err
			}
			bars = append(bars, bar)
		}
		return bars, nil
	})
}

// parseKline reads [openTime, "open", "high", "low", "close", "volume", ...].
func parseKline(symbol string, r []json.RawMessage) (models.OHLCV, error) {
	if len(r) < 6 {
		return models.OHLCV{}, fmt.Errorf("binance kline: %d fields", len(r))
	}
	var openTime int64
	if err := json.Unmarshal(r[0], &openTime); err != nil {
		return models.OHLCV{}, fmt.Errorf("binance kline time: %w", err)
	}
	vals := make([]float64, 5)
	for i := range vals {
		var s string
		if err := json.Unmarshal(r[i+1], &s); err != nil {
			return models.OHLCV{}, fmt.Errorf("binance kline field %d: %w", i+1, err)
		}
		vals[i], _ = strconv.ParseFloat(s, 64)
	}
	return models.OHLCV{
		Symbol:    symbol,
		Timestamp: utils.FromUnix(openTime),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

// ---- 24h ticker ----

type tickerFetcher struct {
	provider.BaseFetcher
}

func newTickerFetcher() *tickerFetcher {
	return &tickerFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoQuote,
			"24h rolling ticker from Binance",
			[]string{provider.ParamSymbol},
			nil,
			15*time.Second, 10, time.Second,
		),
	}
}

type ticker24h struct {
	Symbol             string          `json:"symbol"`
	PriceChange        decimal.Decimal `json:"priceChange"`
	PriceChangePercent decimal.Decimal `json:"priceChangePercent"`
	LastPrice          decimal.Decimal `json:"lastPrice"`
	HighPrice          decimal.Decimal `json:"highPrice"`
	LowPrice           decimal.Decimal `json:"lowPrice"`
	QuoteVolume        decimal.Decimal `json:"quoteVolume"`
	CloseTime          int64           `json:"closeTime"`
}

func (f *tickerFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := toSymbol(params[provider.ParamSymbol])

	return f.Cached(ctx, params, func() (any, error) {
		var t ticker24h
		if err := get(ctx, params, "ticker/24hr", url.Values{"symbol": {symbol}}, &t); err != nil {
			return nil, err
		}
		return []models.CryptoQuote{{
			Symbol:       t.Symbol,
			Price:        t.LastPrice.InexactFloat64(),
			Change24h:    t.PriceChange.InexactFloat64(),
			ChangePct24h: t.PriceChangePercent.InexactFloat64(),
			Volume24h:    t.QuoteVolume.InexactFloat64(),
			High24h:      t.HighPrice.InexactFloat64(),
			Low24h:       t.LowPrice.InexactFloat64(),
			Timestamp:    utils.FromUnix(t.CloseTime),
		}}, nil
	})
}

// ---- Depth ----

type depthFetcher struct {
	provider.BaseFetcher
}

func newDepthFetcher() *depthFetcher {
	return &depthFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoOrderBook,
			"Order book depth from Binance (limit 5..5000, default 20)",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			0, 10, time.Second,
		),
	}
}

type depthResponse struct {
	LastUpdateID int64               `json:"lastUpdateId"`
	Bids         [][]decimal.Decimal `json:"bids"`
	Asks         [][]decimal.Decimal `json:"asks"`
}

func (f *depthFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := toSymbol(params[provider.ParamSymbol])
	limit := utils.ParseInt(params[provider.ParamLimit], 20)

	return f.Cached(ctx, params, func() (any, error) {
		var d depthResponse
		q := url.Values{"symbol": {symbol}, "limit": {strconv.Itoa(limit)}}
		if err := get(ctx, params, "depth", q, &d); err != nil {
			return nil, err
		}
		return &models.OrderBook{
			Symbol:    symbol,
			Bids:      levels("bid", d.Bids),
			Asks:      levels("ask", d.Asks),
			Timestamp: time.Now().UTC(),
		}, nil
	})
}

func levels(side string, rows [][]decimal.Decimal) []models.BookLevel {
	out := make([]models.BookLevel, 0, len(rows))
	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		out = append(out, models.BookLevel{Side: side, Price: r[0], Size: r[1]})
	}
	return out
}
