package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := New()
	if err := p.Init(map[string]string{"api_key": "demo"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	p.SetBaseURL(srv.URL)
	return p
}

func TestProviderRequiresKey(t *testing.T) {
	if err := New().Init(nil); err == nil {
		t.Error("expected error without api_key")
	}
}

func TestDailySeries(t *testing.T) {
	var function, key string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		function = r.URL.Query().Get("function")
		key = r.URL.Query().Get("apikey")
		w.Write([]byte(`{
			"Meta Data": {"2. Symbol": "IBM"},
			"Time Series (Daily)": {
				"2024-01-03": {"1. open": "161.0", "2. high": "161.7", "3. low": "160.0", "4. close": "160.1", "5. volume": "4086133"},
				"2024-01-02": {"1. open": "162.8", "2. high": "163.3", "3. low": "160.6", "4. close": "161.5", "5. volume": "3480139"},
				"2023-12-29": {"1. open": "163.8", "2. high": "164.3", "3. low": "162.9", "4. close": "163.6", "5. volume": "3555103"}
			}}`))
	})

	res, err := p.Fetcher(provider.ModelEquityHistorical).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol:    "ibm",
		provider.ParamStartDate: "2024-01-01",
		provider.ParamEndDate:   "2024-01-31",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if function != "TIME_SERIES_DAILY" || key != "demo" {
		t.Errorf("function=%q apikey=%q", function, key)
	}

	bars := res.Data.([]models.OHLCV)
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars in range, got %d", len(bars))
	}
	if bars[0].Close != 161.5 || bars[1].Close != 160.1 {
		t.Errorf("bars not sorted ascending: %+v", bars)
	}
	if bars[0].Volume != 3480139 || bars[0].Symbol != "IBM" {
		t.Errorf("unexpected bar: %+v", bars[0])
	}
}

func TestSeriesFunction(t *testing.T) {
	fn, key, iv := seriesFunction("5min")
	if fn != "TIME_SERIES_INTRADAY" || key != "Time Series (5min)" || iv != "5min" {
		t.Errorf("intraday mapping: %s %s %s", fn, key, iv)
	}
	if fn, _, _ := seriesFunction("weekly"); fn != "TIME_SERIES_WEEKLY" {
		t.Errorf("weekly mapping: %s", fn)
	}
}

func TestGlobalQuote(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {"01. symbol": "IBM", "02. open": "160.0", "03. high": "162.0", "04. low": "159.5",
			"05. price": "161.2", "06. volume": "3000000", "07. latest trading day": "2024-01-05",
			"08. previous close": "160.0", "09. change": "1.2", "10. change percent": "0.7500%"}}`))
	})

	res, err := p.Fetcher(provider.ModelEquityQuote).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "IBM"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	q := res.Data.([]models.Quote)[0]
	if q.LastPrice != 161.2 || q.ChangePct != 0.75 || q.Timestamp.Day() != 5 {
		t.Errorf("unexpected quote: %+v", q)
	}
}

func TestCurrencyQuote(t *testing.T) {
	var from, to string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		from, to = r.URL.Query().Get("from_currency"), r.URL.Query().Get("to_currency")
		w.Write([]byte(`{"Realtime Currency Exchange Rate": {"1. From_Currency Code": "EUR", "3. To_Currency Code": "USD",
			"5. Exchange Rate": "1.0951", "6. Last Refreshed": "2024-01-05 21:55:01", "8. Bid Price": "1.0950", "9. Ask Price": "1.0952"}}`))
	})

	res, err := p.Fetcher(provider.ModelCurrencyQuote).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "eur/usd"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if from != "EUR" || to != "USD" {
		t.Errorf("pair split wrong: %s %s", from, to)
	}
	q := res.Data.([]models.FXQuote)[0]
	if q.Pair != "EUR_USD" || q.Bid != 1.0950 || q.Ask != 1.0952 {
		t.Errorf("unexpected fx quote: %+v", q)
	}
}

func TestErrorMessages(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`))
	})
	_, err := p.Fetcher(provider.ModelEquityQuote).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "IBM"})
	if !errors.Is(err, ErrThrottled) {
		t.Errorf("expected ErrThrottled, got %v", err)
	}

	p = newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call."}`))
	})
	if _, err := p.Fetcher(provider.ModelEquityQuote).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "IBM"}); err == nil {
		t.Error("expected error message to surface")
	}
}

func TestSplitPair(t *testing.T) {
	if _, _, err := splitPair("EURO"); err == nil {
		t.Error("expected error for malformed pair")
	}
	b, q, err := splitPair("gbp-jpy")
	if err != nil || b != "GBP" || q != "JPY" {
		t.Errorf("splitPair: %s %s %v", b, q, err)
	}
}
