// Package newsapi implements the NewsAPI.org headline search provider.
//
// Docs: https://newsapi.org/docs/endpoints
package newsapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "newsapi"
	baseURL      = "https://newsapi.org/v2"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for NewsAPI.
type Provider struct {
	provider.BaseProvider
}

// New creates a new NewsAPI provider.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"NewsAPI.org - headlines and article search",
			"https://newsapi.org",
			[]provider.ProviderCredential{
				{Name: credAPIKey, Description: "NewsAPI key", Required: true, EnvVar: "NEWSAPI_API_KEY"},
			},
		),
	}
	p.RegisterFetcher(newWorldNewsFetcher())
	p.RegisterFetcher(newCompanyNewsFetcher())
	return p
}

// Ping requests a single business headline.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{
		provider.ParamAPIKey:  p.Credential(credAPIKey),
		provider.ParamBaseURL: p.BaseURL(),
	}
	if _, err := search(ctx, params, "top-headlines", url.Values{"category": {"business"}, "pageSize": {"1"}}); err != nil {
		return fmt.Errorf("newsapi ping: %w", err)
	}
	return nil
}

func search(ctx context.Context, params provider.QueryParams, endpoint string, q url.Values) ([]naArticle, error) {
	u := provider.BaseURL(params, baseURL) + "/" + endpoint + "?" + q.Encode()
	headers := map[string]string{
		"Accept":    "application/json",
		"X-Api-Key": params[provider.ParamAPIKey],
	}
	var resp naResponse
	if err := infra.GetJSON(ctx, u, headers, &resp); err != nil {
		return nil, fmt.Errorf("newsapi %s: %w", endpoint, err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi %s: %s: %s", endpoint, resp.Code, resp.Message)
	}
	return resp.Articles, nil
}
