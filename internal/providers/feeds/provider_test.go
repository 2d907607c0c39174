package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
)

func rss(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Google News</title>` +
		strings.Join(items, "") + `</channel></rss>`
}

func item(title, link, date string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><pubDate>%s</pubDate><description>&lt;a href="x"&gt;%s&lt;/a&gt;</description></item>`,
		title, link, date, title)
}

func TestWorldNewsMergesQueries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		switch r.URL.Query().Get("q") {
		case "oil":
			fmt.Fprint(w, rss(
				item("Oil jumps - Reuters", "https://n/1", "Mon, 06 May 2024 10:00:00 GMT"),
				item("Shared story - AP", "https://n/shared", "Mon, 06 May 2024 08:00:00 GMT"),
			))
		case "gold":
			fmt.Fprint(w, rss(
				item("Gold slips - Bloomberg", "https://n/2", "Mon, 06 May 2024 12:00:00 GMT"),
				item("Shared story - AP", "https://n/shared", "Mon, 06 May 2024 08:00:00 GMT"),
			))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	p := New("en-GB")
	p.SetBaseURL(srv.URL)

	res, err := p.Fetcher(provider.ModelWorldNews).Fetch(context.Background(),
		provider.QueryParams{provider.ParamQuery: "oil, gold, broken"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	arts := res.Data.([]models.NewsArticle)
	if len(arts) != 3 {
		t.Fatalf("expected 3 deduplicated articles, got %d: %+v", len(arts), arts)
	}
	if arts[0].Title != "Gold slips" || arts[0].Source != "Bloomberg" {
		t.Errorf("newest first with source split, got %+v", arts[0])
	}
	if arts[2].Summary != "Shared story - AP" {
		t.Errorf("summary not cleaned: %q", arts[2].Summary)
	}
}

func TestWorldNewsAllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := New("")
	p.SetBaseURL(srv.URL)
	if _, err := p.Fetcher(provider.ModelWorldNews).Fetch(context.Background(), provider.QueryParams{}); err == nil {
		t.Error("expected error when every feed fails")
	}
}

func TestSearchURL(t *testing.T) {
	u := searchURL(provider.QueryParams{}, "fed rates", "en-GB")
	if !strings.HasPrefix(u, baseURL+"/search?") {
		t.Errorf("url = %s", u)
	}
	for _, want := range []string{"gl=GB", "hl=en-GB", "ceid=GB%3Aen", "q=fed+rates"} {
		if !strings.Contains(u, want) {
			t.Errorf("url %s missing %s", u, want)
		}
	}
	if top := searchURL(provider.QueryParams{}, "", "en-US"); strings.Contains(top, "/search") {
		t.Errorf("top stories url = %s", top)
	}
}
