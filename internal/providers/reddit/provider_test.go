package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/pkg/models"
)

const listingJSON = `{"kind":"Listing","data":{"children":[
	{"kind":"t3","data":{"id":"x0","subreddit":"wallstreetbets","title":"Daily Discussion Thread","author":"AutoModerator","score":50,"num_comments":9000,"upvote_ratio":0.8,"permalink":"/r/wallstreetbets/comments/x0/","created_utc":1700000000.0,"stickied":true}},
	{"kind":"t3","data":{"id":"a1","subreddit":"wallstreetbets","title":"$GME to the moon","author":"u1","score":1200,"num_comments":340,"upvote_ratio":0.91,"link_flair_text":"YOLO","permalink":"/r/wallstreetbets/comments/a1/","created_utc":1700000100.0}},
	{"kind":"t3","data":{"id":"b2","subreddit":"stocks","title":"Thoughts on AAPL earnings?","author":"u2","score":85,"num_comments":40,"upvote_ratio":0.77,"permalink":"/r/stocks/comments/b2/","created_utc":1700000200.0}}]}}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p := New("finterm-test/0.1")
	p.SetBaseURL(srv.URL)
	return p
}

func TestPosts(t *testing.T) {
	var path, ua string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		path, ua = r.URL.Path, r.Header.Get("User-Agent")
		w.Write([]byte(listingJSON))
	})

	res, err := p.Fetcher(provider.ModelSocialPosts).Fetch(context.Background(),
		provider.QueryParams{provider.ParamQuery: "wallstreetbets, r/stocks", provider.ParamSortBy: "new"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if path != "/r/wallstreetbets+stocks/new.json" {
		t.Errorf("path = %s", path)
	}
	if ua != "finterm-test/0.1" {
		t.Errorf("User-Agent = %q", ua)
	}
	posts := res.Data.([]models.SocialPost)
	if len(posts) != 2 {
		t.Fatalf("stickied post should be skipped, got %d", len(posts))
	}
	if posts[0].Flair != "YOLO" || posts[0].URL != "https://www.reddit.com/r/wallstreetbets/comments/a1/" {
		t.Errorf("unexpected post: %+v", posts[0])
	}
}

func TestPostsSymbolFilter(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingJSON))
	})
	res, err := p.Fetcher(provider.ModelSocialPosts).Fetch(context.Background(), provider.QueryParams{provider.ParamSymbol: "gme"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	posts := res.Data.([]models.SocialPost)
	if len(posts) != 1 || posts[0].ID != "a1" {
		t.Errorf("expected only the GME post, got %+v", posts)
	}
}

func TestPostsBadSort(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := p.Fetcher(provider.ModelSocialPosts).Fetch(context.Background(), provider.QueryParams{provider.ParamSortBy: "best"}); err == nil {
		t.Error("expected error for unknown sort")
	}
}

func TestMentions(t *testing.T) {
	if !mentions("Bought more $TSLA today", "TSLA") {
		t.Error("cashtag not matched")
	}
	if mentions("TSLAQ is a thing", "TSLA") {
		t.Error("substring should not match")
	}
}
