package quandl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
	"github.com/seenimoa/finterm/pkg/utils"
)

type datasetFetcher struct {
	provider.BaseFetcher
}

func newDatasetFetcher() *datasetFetcher {
	return &datasetFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelDatasetSeries,
			"Time-series dataset rows (symbol DATABASE/DATASET)",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamLimit},
			30*time.Minute, 5, time.Second,
		),
	}
}

type datasetResponse struct {
	DatasetData struct {
		ColumnNames []string `json:"column_names"`
		Data        [][]any  `json:"data"`
	} `json:"dataset_data"`
}

func (f *datasetFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	code := strings.ToUpper(strings.Trim(params[provider.ParamSymbol], "/"))
	if strings.Count(code, "/") != 1 {
		return nil, fmt.Errorf("quandl: symbol %q: want DATABASE/DATASET", code)
	}

	return f.Cached(ctx, params, func() (any, error) {
		q := url.Values{"order": {"asc"}}
		if sd := params[provider.ParamStartDate]; sd != "" {
			q.Set("start_date", sd)
		}
		if ed := params[provider.ParamEndDate]; ed != "" {
			q.Set("end_date", ed)
		}
		if lim := params[provider.ParamLimit]; lim != "" {
			q.Set("limit", lim)
		}

		var resp datasetResponse
		if err := get(ctx, params, "datasets/"+code+"/data.json", q, &resp); err != nil {
			return nil, err
		}
		return toRows(resp.DatasetData.ColumnNames, resp.DatasetData.Data), nil
	})
}

// toRows turns column-major vendor output into dated rows. The first column
// is the date; non-numeric cells are dropped.
func toRows(columns []string, data [][]any) []models.DatasetRow {
	rows := make([]models.DatasetRow, 0, len(data))
	for _, rec := range data {
		if len(rec) == 0 {
			continue
		}
		ds, _ := rec[0].(string)
		d, err := utils.ParseDate(ds)
		if err != nil {
			continue
		}
		row := models.DatasetRow{Date: d, Values: make(map[string]float64, len(rec)-1)}
		for i := 1; i < len(rec) && i < len(columns); i++ {
			if v, ok := rec[i].(float64); ok {
				row.Values[columns[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}
