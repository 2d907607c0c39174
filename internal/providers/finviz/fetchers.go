package finviz

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
	"github.com/seenimoa/finterm/pkg/utils"
)

// Selectors cover both the current and the legacy page layout.
const (
	ratingsRows = "table.js-table-ratings tr, table.fullview-ratings-outer table tr"
	insiderRows = "table.js-insider-trade-table tr, table.body-table tr"
	newsRows    = "table#news-table tr"
)

func cells(row *goquery.Selection) []string {
	var out []string
	row.Find("td").Each(func(_ int, td *goquery.Selection) {
		out = append(out, strings.Join(strings.Fields(td.Text()), " "))
	})
	return out
}

func limitOf(params provider.QueryParams) int {
	return utils.ParseInt(params[provider.ParamLimit], 0)
}

// ---- Analyst ratings ----

type ratingsFetcher struct {
	provider.BaseFetcher
	pages *pageLoader
}

func newRatingsFetcher(pages *pageLoader) *ratingsFetcher {
	return &ratingsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelAnalystRatings,
			"Analyst upgrades and downgrades from Finviz",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			0, 5, time.Second,
		),
		pages: pages,
	}
}

func (f *ratingsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	doc, err := f.pages.load(ctx, params, symbol)
	if err != nil {
		return nil, err
	}
	return provider.NewResult(parseRatings(doc, symbol, limitOf(params))), nil
}

func parseRatings(doc *goquery.Document, symbol string, limit int) []models.AnalystRating {
	var out []models.AnalystRating
	doc.Find(ratingsRows).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		c := cells(row)
		if len(c) < 5 {
			return true
		}
		d, err := utils.ParseDate(c[0])
		if err != nil {
			return true // header row
		}
		out = append(out, models.AnalystRating{
			Symbol:      symbol,
			Date:        d,
			Action:      c[1],
			Analyst:     c[2],
			Rating:      c[3],
			PriceTarget: c[4],
		})
		return limit <= 0 || len(out) < limit
	})
	return out
}

// ---- Insider trading ----

type insiderFetcher struct {
	provider.BaseFetcher
	pages *pageLoader
}

func newInsiderFetcher(pages *pageLoader) *insiderFetcher {
	return &insiderFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelInsiderTrading,
			"Insider transactions from Finviz",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			0, 5, time.Second,
		),
		pages: pages,
	}
}

func (f *insiderFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	doc, err := f.pages.load(ctx, params, symbol)
	if err != nil {
		return nil, err
	}
	return provider.NewResult(parseInsider(doc, symbol, limitOf(params))), nil
}

// parseInsider reads rows of: insider, relationship, date, transaction,
// cost, shares, value, shares total, SEC form 4.
func parseInsider(doc *goquery.Document, symbol string, limit int) []models.InsiderTrade {
	var out []models.InsiderTrade
	doc.Find(insiderRows).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		c := cells(row)
		if len(c) < 8 {
			return true
		}
		d, err := utils.ParseDate(c[2])
		if err != nil {
			return true
		}
		out = append(out, models.InsiderTrade{
			Symbol:       symbol,
			Insider:      c[0],
			Relationship: c[1],
			Date:         d,
			Transaction:  c[3],
			Cost:         utils.ParseNumber(c[4]),
			Shares:       utils.ParseNumber(c[5]),
			Value:        utils.ParseNumber(c[6]),
			SharesTotal:  utils.ParseNumber(c[7]),
		})
		return limit <= 0 || len(out) < limit
	})
	return out
}

// ---- News ----

type newsFetcher struct {
	provider.BaseFetcher
	pages *pageLoader
}

func newNewsFetcher(pages *pageLoader) *newsFetcher {
	return &newsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanyNews,
			"Headlines from the Finviz quote page",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			0, 5, time.Second,
		),
		pages: pages,
	}
}

func (f *newsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	doc, err := f.pages.load(ctx, params, symbol)
	if err != nil {
		return nil, err
	}
	return provider.NewResult(parseNews(doc, symbol, limitOf(params))), nil
}

// parseNews reads the news table. The first cell is "Jan-02-24 08:00AM" on
// the first headline of a day and only "08:00AM" after that; "Today" stands
// for the current date.
func parseNews(doc *goquery.Document, symbol string, limit int) []models.NewsArticle {
	var (
		out []models.NewsArticle
		day time.Time
	)
	doc.Find(newsRows).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		link := row.Find("a.tab-link-news")
		if link.Length() == 0 {
			link = row.Find("a").First()
		}
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		stamp := strings.Fields(row.Find("td").First().Text())
		clock := ""
		switch len(stamp) {
		case 2:
			if stamp[0] == "Today" {
				day = time.Now().UTC().Truncate(24 * time.Hour)
			} else if d, err := utils.ParseDate(stamp[0]); err == nil {
				day = d
			}
			clock = stamp[1]
		case 1:
			clock = stamp[0]
		}
		published := day
		if t, err := time.Parse("03:04PM", clock); err == nil && !day.IsZero() {
			published = day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
		}

		source := strings.Trim(strings.TrimSpace(row.Find(".news-link-right span").Text()), "()")
		out = append(out, models.NewsArticle{
			Symbol:      symbol,
			Title:       strings.TrimSpace(link.Text()),
			URL:         absolute(href),
			Source:      source,
			PublishedAt: published,
		})
		return limit <= 0 || len(out) < limit
	})
	return out
}

func absolute(href string) string {
	if strings.HasPrefix(href, "/") {
		return baseURL + href
	}
	return href
}
