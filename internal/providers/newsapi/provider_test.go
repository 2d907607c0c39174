package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
)

const articlesJSON = `{"status":"ok","totalResults":2,"articles":[
	{"source":{"id":null,"name":"Reuters"},"author":"Jane Roe","title":"Apple beats estimates","description":"Quarterly results","url":"https://example.com/a","publishedAt":"2024-05-02T21:00:00Z"},
	{"source":{"id":null,"name":"[Removed]"},"author":null,"title":"[Removed]","description":"[Removed]","url":"https://removed.com","publishedAt":"1970-01-01T00:00:00Z"}]}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := New()
	if err := p.Init(map[string]string{"api_key": "na-key"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	p.SetBaseURL(srv.URL)
	return p
}

func TestWorldNewsHeadlines(t *testing.T) {
	var path, key, category string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		path, key, category = r.URL.Path, r.Header.Get("X-Api-Key"), r.URL.Query().Get("category")
		w.Write([]byte(articlesJSON))
	})

	res, err := p.Fetcher(provider.ModelWorldNews).Fetch(context.Background(), provider.QueryParams{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if path != "/top-headlines" || key != "na-key" || category != "business" {
		t.Errorf("path=%q key=%q category=%q", path, key, category)
	}
	arts := res.Data.([]models.NewsArticle)
	if len(arts) != 1 {
		t.Fatalf("removed article should be dropped, got %d", len(arts))
	}
	if arts[0].Source != "Reuters" || arts[0].Symbol != "" {
		t.Errorf("unexpected article: %+v", arts[0])
	}
}

func TestWorldNewsQueryUsesEverything(t *testing.T) {
	var path, q string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		path, q = r.URL.Path, r.URL.Query().Get("q")
		w.Write([]byte(articlesJSON))
	})
	if _, err := p.Fetcher(provider.ModelWorldNews).Fetch(context.Background(), provider.QueryParams{provider.ParamQuery: "inflation"}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if path != "/everything" || q != "inflation" {
		t.Errorf("path=%q q=%q", path, q)
	}
}

func TestCompanyNews(t *testing.T) {
	var q, size string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q, size = r.URL.Query().Get("q"), r.URL.Query().Get("pageSize")
		w.Write([]byte(articlesJSON))
	})
	res, err := p.Fetcher(provider.ModelCompanyNews).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "aapl", provider.ParamLimit: "5"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if q != "AAPL" || size != "5" {
		t.Errorf("q=%q pageSize=%q", q, size)
	}
	if arts := res.Data.([]models.NewsArticle); arts[0].Symbol != "AAPL" {
		t.Errorf("symbol not set: %+v", arts[0])
	}
}

func TestErrorStatus(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","code":"rateLimited","message":"too many requests"}`))
	})
	if _, err := p.Fetcher(provider.ModelWorldNews).Fetch(context.Background(), provider.QueryParams{}); err == nil {
		t.Error("expected error status to surface")
	}
}
