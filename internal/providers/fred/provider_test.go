package fred

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
)

func TestProviderInfo(t *testing.T) {
	p := New()
	info := p.Info()
	if info.Name != "fred" {
		t.Errorf("expected name fred, got %s", info.Name)
	}
	if len(info.Credentials) != 1 || info.Credentials[0].Name != "api_key" {
		t.Fatalf("expected a single api_key credential, got %+v", info.Credentials)
	}
	if !info.Credentials[0].Required {
		t.Error("api_key should be required")
	}
	if len(p.SupportedModels()) != 2 {
		t.Errorf("expected 2 models, got %v", p.SupportedModels())
	}
}

func TestProviderInitMissingKey(t *testing.T) {
	p := New()
	if err := p.Init(map[string]string{}); err == nil {
		t.Error("expected error without api_key")
	}
}

func TestFetcherRequiredParams(t *testing.T) {
	p := New()
	_ = p.Init(map[string]string{"api_key": "test"})

	tests := []struct {
		model    provider.ModelType
		required string
	}{
		{provider.ModelEconomicSearch, provider.ParamQuery},
		{provider.ModelEconomicSeries, provider.ParamSymbol},
	}
	for _, tt := range tests {
		f := p.Fetcher(tt.model)
		if f == nil {
			t.Fatalf("nil fetcher for %s", tt.model)
		}
		if req := f.RequiredParams(); len(req) != 1 || req[0] != tt.required {
			t.Errorf("%s: required params %v", tt.model, req)
		}
	}
}

func TestFredURLBuilder(t *testing.T) {
	u := endpointURL(provider.QueryParams{provider.ParamAPIKey: "testkey"}, "series/observations", url.Values{"series_id": {"GDP"}})
	for _, want := range []string{baseURL + "/series/observations?", "api_key=testkey", "file_type=json", "series_id=GDP"} {
		if !strings.Contains(u, want) {
			t.Errorf("url %q missing %q", u, want)
		}
	}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := New()
	if err := p.Init(map[string]string{"api_key": "k"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	p.SetBaseURL(srv.URL + "/fred")
	return p
}

func TestSeriesWithMockServer(t *testing.T) {
	var gotKey string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fred/series/observations" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotKey = r.URL.Query().Get("api_key")
		json.NewEncoder(w).Encode(map[string]any{
			"observations": []map[string]string{
				{"date": "2024-01-01", "value": "5.33"},
				{"date": "2024-01-02", "value": "5.34"},
				{"date": "2024-01-03", "value": "."},
			},
		})
	})

	res, err := p.Fetcher(provider.ModelEconomicSeries).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "dff"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotKey != "k" {
		t.Errorf("api key not sent, got %q", gotKey)
	}
	obs := res.Data.([]models.EconomicObservation)
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations (missing skipped), got %d", len(obs))
	}
	if obs[0].SeriesID != "DFF" || obs[1].Value != 5.34 {
		t.Errorf("unexpected data: %+v", obs)
	}
}

func TestSeriesLimitReturnsOldestFirst(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sort_order") != "desc" {
			t.Errorf("limit should request newest first")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"observations": []map[string]string{
				{"date": "2024-03-01", "value": "3"},
				{"date": "2024-02-01", "value": "2"},
			},
		})
	})

	res, err := p.Fetcher(provider.ModelEconomicSeries).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "CPIAUCSL",
		provider.ParamLimit:  "2",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	obs := res.Data.([]models.EconomicObservation)
	if obs[0].Value != 2 || obs[1].Value != 3 {
		t.Errorf("expected ascending dates, got %+v", obs)
	}
}

func TestSearchWithMockServer(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search_text") != "unemployment rate" {
			t.Errorf("search_text = %q", r.URL.Query().Get("search_text"))
		}
		w.Write([]byte(`{"count":1,"seriess":[{"id":"UNRATE","title":"Unemployment Rate","frequency":"Monthly","units":"Percent","seasonal_adjustment_short":"SA","observation_start":"1948-01-01","observation_end":"2024-01-01","last_updated":"2024-02-02 07:48:02-06","popularity":95}]}`))
	})

	res, err := p.Fetcher(provider.ModelEconomicSearch).Fetch(context.Background(), provider.QueryParams{provider.ParamQuery: "unemployment rate"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	got := res.Data.([]models.EconomicSeriesInfo)
	if len(got) != 1 || got[0].ID != "UNRATE" || got[0].Popularity != 95 {
		t.Errorf("unexpected search result: %+v", got)
	}
	if got[0].LastUpdated.IsZero() {
		t.Error("last_updated not parsed")
	}
}

func TestSeriesHTTPError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error_message":"Bad Request. The value for variable api_key is not registered."}`, http.StatusBadRequest)
	})

	_, err := p.Fetcher(provider.ModelEconomicSeries).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "GDP"})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("expected HTTP 400 error, got %v", err)
	}
}
