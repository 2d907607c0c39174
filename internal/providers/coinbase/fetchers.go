package coinbase

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
	"github.com/seenimoa/finterm/pkg/utils"
)

// ---- Candles ----

type candlesFetcher struct {
	provider.BaseFetcher
}

func newCandlesFetcher() *candlesFetcher {
	return &candlesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoHistorical,
			"Product candles from Coinbase Exchange (max 300 per request)",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamInterval},
			5*time.Minute, 10, time.Second,
		),
	}
}

// granularity returns the candle width in seconds. Coinbase accepts only
// 60, 300, 900, 3600, 21600 and 86400; weekly and monthly fall back to daily.
func granularity(interval string) int {
	switch models.ParseTimeframe(interval) {
	case models.Timeframe1Min:
		return 60
	case models.Timeframe5Min:
		return 300
	case models.Timeframe15Min:
		return 900
	case models.Timeframe1Hour:
		return 3600
	default:
		return 86400
	}
}

func (f *candlesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	product := toProduct(params[provider.ParamSymbol])
	gran := granularity(params[provider.ParamInterval])
	q := url.Values{"granularity": {strconv.Itoa(gran)}}
	if params[provider.ParamStartDate] != "" || params[provider.ParamEndDate] != "" {
		from, to, err := utils.DateRange(params[provider.ParamStartDate], params[provider.ParamEndDate], 300*time.Duration(gran)*time.Second)
		if err != nil {
			return nil, err
		}
		q.Set("start", from.Format(time.RFC3339))
		q.Set("end", to.Add(24*time.Hour-time.Second).Format(time.RFC3339))
	}

	return f.Cached(ctx, params, func() (any, error) {
		// [time, low, high, open, close, volume], newest first
		var rows [][]float64
		if err := get(ctx, params, "products/"+product+"/candles", q, &rows); err != nil {
			return nil, err
		}
		bars := make([]models.OHLCV, 0, len(rows))
		for _, r := range rows {
			if len(r) < 6 {
				continue
			}
			bars = append(bars, models.OHLCV{
				Symbol:    product,
				Timestamp: utils.FromUnix(int64(r[0])),
				Low:       r[1],
				High:      r[2],
				Open:      r[3],
				Close:     r[4],
				Volume:    r[5],
			})
		}
		sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
		return bars, nil
	})
}

// ---- Order book ----

type bookFetcher struct {
	provider.BaseFetcher
}

func newBookFetcher() *bookFetcher {
	return &bookFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoOrderBook,
			"Level-2 order book from Coinbase Exchange (top N levels per side)",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			0, 10, time.Second,
		),
	}
}

type bookResponse struct {
	Bids [][]json.RawMessage `json:"bids"`
	Asks [][]json.RawMessage `json:"asks"`
	Time time.Time           `json:"time"`
}

func (f *bookFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	product := toProduct(params[provider.ParamSymbol])
	limit := utils.ParseInt(params[provider.ParamLimit], 20)

	return f.Cached(ctx, params, func() (any, error) {
		var b bookResponse
		if err := get(ctx, params, "products/"+product+"/book", url.Values{"level": {"2"}}, &b); err != nil {
			return nil, err
		}
		ts := b.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		return &models.OrderBook{
			Symbol:    product,
			Bids:      levels("bid", b.Bids, limit),
			Asks:      levels("ask", b.Asks, limit),
			Timestamp: ts.UTC(),
		}, nil
	})
}

// levels reads ["price", "size", num_orders] rows.
func levels(side string, rows [][]json.RawMessage, limit int) []models.BookLevel {
	out := make([]models.BookLevel, 0, min(len(rows), limit))
	for _, r := range rows {
		if len(out) == limit {
			break
		}
		if len(r) < 2 {
			continue
		}
		var price, size decimal.Decimal
		if price.UnmarshalJSON(r[0]) != nil || size.UnmarshalJSON(r[1]) != nil {
			continue
		}
		out = append(out, models.BookLevel{Side: side, Price: price, Size: size})
	}
	return out
}
