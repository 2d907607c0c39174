package coinmarketcap

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

type listingsFetcher struct {
	provider.BaseFetcher
}

func newListingsFetcher() *listingsFetcher {
	return &listingsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoListings,
			"Top crypto assets by market cap (sort_by: market_cap, volume_24h, percent_change_24h)",
			nil,
			[]string{provider.ParamLimit, provider.ParamSortBy, provider.ParamCurrency},
			5*time.Minute, 1, 2*time.Second,
		),
	}
}

type cmcListing struct {
	ID                int                 `json:"id"`
	Name              string              `json:"name"`
	Symbol            string              `json:"symbol"`
	Rank              int                 `json:"cmc_rank"`
	CirculatingSupply float64             `json:"circulating_supply"`
	MaxSupply         *float64            `json:"max_supply"`
	LastUpdated       time.Time           `json:"last_updated"`
	Quote             map[string]cmcQuote `json:"quote"`
}

type cmcQuote struct {
	Price            float64 `json:"price"`
	Volume24h        float64 `json:"volume_24h"`
	PercentChange24h float64 `json:"percent_change_24h"`
	PercentChange7d  float64 `json:"percent_change_7d"`
	MarketCap        float64 `json:"market_cap"`
}

var sortFields = map[string]bool{
	"market_cap": true, "volume_24h": true, "percent_change_24h": true,
	"percent_change_7d": true, "price": true, "name": true, "circulating_supply": true,
}

func (f *listingsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	limit := utils.ParseInt(params[provider.ParamLimit], 50)
	convert := strings.ToUpper(params[provider.ParamCurrency])
	if convert == "" {
		convert = "USD"
	}
	sortBy := params[provider.ParamSortBy]
	if sortBy == "" {
		sortBy = "market_cap"
	}
	if !sortFields[sortBy] {
		return nil, fmt.Errorf("coinmarketcap: cannot sort by %q", sortBy)
	}

	return f.Cached(ctx, params, func() (any, error) {
		q := url.Values{
			"start":   {"1"},
			"limit":   {strconv.Itoa(limit)},
			"convert": {convert},
			"sort":    {sortBy},
		}
		var resp cmcEnvelope[[]cmcListing]
		if err := get(ctx, params, "v1/cryptocurrency/listings/latest", q, &resp); err != nil {
			return nil, err
		}

		out := make([]models.CryptoListing, 0, len(resp.Data))
		for _, l := range resp.Data {
			qt := l.Quote[convert]
			row := models.CryptoListing{
				Rank:              l.Rank,
				Symbol:            l.Symbol,
				Name:              l.Name,
				Price:             qt.Price,
				MarketCap:         qt.MarketCap,
				Volume24h:         qt.Volume24h,
				ChangePct24h:      qt.PercentChange24h,
				ChangePct7d:       qt.PercentChange7d,
				CirculatingSupply: l.CirculatingSupply,
				LastUpdated:       l.LastUpdated.UTC(),
			}
			if l.MaxSupply != nil {
				row.MaxSupply = *l.MaxSupply
			}
			out = append(out, row)
		}
		return out, nil
	})
}
