package fred

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

// ---- Series observations ----

type seriesFetcher struct {
	provider.BaseFetcher
}

func newSeriesFetcher() *seriesFetcher {
	return &seriesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEconomicSeries,
			"FRED time series observations by series ID",
			[]string{provider.ParamSymbol}, // series_id passed as symbol
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamLimit},
			10*time.Minute, 2, time.Second,
		),
	}
}

func (f *seriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	seriesID := strings.ToUpper(params[provider.ParamSymbol])

	return f.Cached(ctx, params, func() (any, error) {
		q := url.Values{"series_id": {seriesID}}
		if sd := params[provider.ParamStartDate]; sd != "" {
			q.Set("observation_start", sd)
		}
		if ed := params[provider.ParamEndDate]; ed != "" {
			q.Set("observation_end", ed)
		}
		if lim := params[provider.ParamLimit]; lim != "" {
			// newest N, returned oldest first below
			q.Set("limit", lim)
			q.Set("sort_order", "desc")
		}

		var resp observationList
		if err := getJSON(ctx, params, "series/observations", q, &resp); err != nil {
			return nil, err
		}

		data := make([]models.EconomicObservation, 0, len(resp.Observations))
		for _, o := range resp.Observations {
			if o.Value == "." {
				continue // Skip missing values
			}
			v, err := strconv.ParseFloat(o.Value, 64)
			if err != nil {
				continue
			}
			d, err := utils.ParseDate(o.Date)
			if err != nil {
				continue
			}
			data = append(data, models.EconomicObservation{SeriesID: seriesID, Date: d, Value: v})
		}
		if q.Get("sort_order") == "desc" {
			for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
				data[i], data[j] = data[j], data[i]
			}
		}
		return data, nil
	})
}

// ---- Series search ----

type searchFetcher struct {
	provider.BaseFetcher
}

func newSearchFetcher() *searchFetcher {
	return &searchFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEconomicSearch,
			"Search FRED for economic data series",
			[]string{provider.ParamQuery},
			[]string{provider.ParamLimit},
			10*time.Minute, 2, time.Second,
		),
	}
}

func (f *searchFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Cached(ctx, params, func() (any, error) {
		q := url.Values{
			"search_text": {params[provider.ParamQuery]},
			"limit":       {"25"},
			"order_by":    {"popularity"},
			"sort_order":  {"desc"},
		}
		if lim := params[provider.ParamLimit]; lim != "" {
			q.Set("limit", lim)
		}

		var resp seriesList
		if err := getJSON(ctx, params, "series/search", q, &resp); err != nil {
			return nil, err
		}

		results := make([]models.EconomicSeriesInfo, 0, len(resp.Series))
		for _, s := range resp.Series {
			updated, _ := time.Parse("2006-01-02 15:04:05-07", s.LastUpdated)
			results = append(results, models.EconomicSeriesInfo{
				ID:          s.ID,
				Title:       s.Title,
				Frequency:   s.Frequency,
				Units:       s.Units,
				Adjustment:  s.Adjustment,
				Start:       s.ObservationStart,
				End:         s.ObservationEnd,
				Popularity:  s.Popularity,
				LastUpdated: updated.UTC(),
			})
		}
		return results, nil
	})
}
