package reddit

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

const defaultSubreddits = "wallstreetbets"

var sorts = map[string]bool{"hot": true, "new": true, "top": true, "rising": true}

type postsFetcher struct {
	provider.BaseFetcher
	userAgent string
}

func newPostsFetcher(ua string) *postsFetcher {
	return &postsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelSocialPosts,
			"Subreddit posts (query: comma-separated subreddits; sort_by: hot, new, top, rising; symbol filters titles)",
			nil,
			[]string{provider.ParamQuery, provider.ParamSortBy, provider.ParamSymbol, provider.ParamLimit},
			5*time.Minute, 1, 2*time.Second,
		),
		userAgent: ua,
	}
}

func (f *postsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	subs := subredditPath(params[provider.ParamQuery])
	sortBy := strings.ToLower(params[provider.ParamSortBy])
	if sortBy == "" {
		sortBy = "hot"
	}
	if !sorts[sortBy] {
		return nil, fmt.Errorf("reddit: unknown sort %q", sortBy)
	}
	limit := utils.ParseInt(params[provider.ParamLimit], 25)
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	symbol := strings.ToUpper(params[provider.ParamSymbol])

	return f.Cached(ctx, params, func() (any, error) {
		q := url.Values{"limit": {strconv.Itoa(limit)}}
		if sortBy == "top" {
			q.Set("t", "day")
		}
		var l listing
		if err := get(ctx, params, f.userAgent, "r/"+subs+"/"+sortBy+".json", q, &l); err != nil {
			return nil, err
		}

		out := make([]models.SocialPost, 0, len(l.Data.Children))
		for _, c := range l.Data.Children {
			p := c.Data
			if p.Stickied {
				continue
			}
			if symbol != "" && !mentions(p.Title, symbol) {
				continue
			}
			out = append(out, models.SocialPost{
				ID:          p.ID,
				Community:   p.Subreddit,
				Title:       p.Title,
				Author:      p.Author,
				Score:       p.Score,
				Comments:    p.NumComments,
				UpvoteRatio: p.UpvoteRatio,
				Flair:       p.Flair,
				URL:         baseURL + p.Permalink,
				CreatedAt:   utils.FromUnix(int64(p.CreatedUTC)),
			})
		}
		return out, nil
	})
}

// subredditPath joins "wallstreetbets, stocks" into Reddit's multi form
// "wallstreetbets+stocks".
func subredditPath(q string) string {
	var names []string
	for _, s := range strings.Split(q, ",") {
		s = strings.TrimPrefix(strings.TrimSpace(s), "r/")
		if s != "" {
			names = append(names, s)
		}
	}
	if len(names) == 0 {
		return defaultSubreddits
	}
	return strings.Join(names, "+")
}

// mentions reports whether title names the ticker as a word or cashtag.
func mentions(title, symbol string) bool {
	for _, w := range strings.FieldsFunc(strings.ToUpper(title), func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '$' || r == '.')
	}) {
		if strings.TrimPrefix(w, "$") == symbol {
			return true
		}
	}
	return false
}
