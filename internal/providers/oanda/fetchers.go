package oanda

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

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
			provider.ModelCurrencyHistorical,
			"Mid-price candles for an FX instrument from OANDA",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamInterval, provider.ParamLimit},
			5*time.Minute, 20, time.Second,
		),
	}
}

type candlesResponse struct {
	Instrument string `json:"instrument"`
	Candles    []struct {
		Complete bool      `json:"complete"`
		Volume   float64   `json:"volume"`
		Time     time.Time `json:"time"`
		Mid      struct {
			O string `json:"o"`
			H string `json:"h"`
			L string `json:"l"`
			C string `json:"c"`
		} `json:"mid"`
	} `json:"candles"`
}

// granularity converts a terminal interval to OANDA's granularity code.
func granularity(interval string) string {
	switch models.ParseTimeframe(interval) {
	case models.Timeframe1Min:
		return "M1"
	case models.Timeframe5Min:
		return "M5"
	case models.Timeframe15Min:
		return "M15"
	case models.Timeframe1Hour:
		return "H1"
	case models.Timeframe1Week:
		return "W"
	case models.Timeframe1Mon:
		return "M"
	default:
		return "D"
	}
}

func (f *candlesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	instrument, err := toInstrument(params[provider.ParamSymbol])
	if err != nil {
		return nil, err
	}
	q := url.Values{"granularity": {granularity(params[provider.ParamInterval])}, "price": {"M"}}
	if params[provider.ParamStartDate] != "" {
		from, to, err := utils.DateRange(params[provider.ParamStartDate], params[provider.ParamEndDate], 0)
		if err != nil {
			return nil, err
		}
		q.Set("from", from.Format(time.RFC3339))
		q.Set("to", to.Format(time.RFC3339))
	} else {
		q.Set("count", strconv.Itoa(utils.ParseInt(params[provider.ParamLimit], 500)))
	}

	return f.Cached(ctx, params, func() (any, error) {
		var resp candlesResponse
		if err := get(ctx, params, "instruments/"+instrument+"/candles", q, &resp); err != nil {
			return nil, err
		}
		bars := make([]models.OHLCV, 0, len(resp.Candles))
		for _, c := range resp.Candles {
			if !c.Complete {
				continue
			}
			bars = append(bars, models.OHLCV{
				Symbol:    instrument,
				Timestamp: c.Time.UTC(),
				Open:      utils.ParseNumber(c.Mid.O),
				High:      utils.ParseNumber(c.Mid.H),
				Low:       utils.ParseNumber(c.Mid.L),
				Close:     utils.ParseNumber(c.Mid.C),
				Volume:    c.Volume,
			})
		}
		return bars, nil
	})
}

// ---- Pricing ----

type pricingFetcher struct {
	provider.BaseFetcher
}

func newPricingFetcher() *pricingFetcher {
	return &pricingFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCurrencyQuote,
			"Live bid/ask from OANDA (requires account ID)",
			[]string{provider.ParamSymbol},
			nil,
			5*time.Second, 20, time.Second,
		),
	}
}

type pricingResponse struct {
	Prices []struct {
		Instrument string    `json:"instrument"`
		Time       time.Time `json:"time"`
		Bids       []struct {
			Price string `json:"price"`
		} `json:"bids"`
		Asks []struct {
			Price string `json:"price"`
		} `json:"asks"`
	} `json:"prices"`
}

// ErrNoAccount is returned by pricing when no account ID is configured.
var ErrNoAccount = errors.New("oanda: pricing needs an account ID (OANDA_ACCOUNT)")

func (f *pricingFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	account := params[paramAccountID]
	if account == "" {
		return nil, ErrNoAccount
	}
	instrument, err := toInstrument(params[provider.ParamSymbol])
	if err != nil {
		return nil, err
	}

	return f.Cached(ctx, params, func() (any, error) {
		var resp pricingResponse
		path := "accounts/" + url.PathEscape(account) + "/pricing"
		if err := get(ctx, params, path, url.Values{"instruments": {instrument}}, &resp); err != nil {
			return nil, err
		}
		out := make([]models.FXQuote, 0, len(resp.Prices))
		for _, p := range resp.Prices {
			if len(p.Bids) == 0 || len(p.Asks) == 0 {
				continue
			}
			out = append(out, models.NewFXQuote(p.Instrument,
				utils.ParseNumber(p.Bids[0].Price), utils.ParseNumber(p.Asks[0].Price), p.Time.UTC()))
		}
		return out, nil
	})
}
