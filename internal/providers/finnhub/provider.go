// Package finnhub implements the Finnhub provider: quotes, company news and
// Reddit/Twitter social sentiment.
//
// Free keys: https://finnhub.io/register
// Rate limit: 60 requests/minute.
package finnhub

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "finnhub"
	baseURL      = "https://finnhub.io/api/v1"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for Finnhub.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Finnhub provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Finnhub - realtime quotes, company news, social sentiment",
			"https://finnhub.io",
			[]provider.ProviderCredential{
				{Name: credAPIKey, Description: "Finnhub API key", Required: true, EnvVar: "FINNHUB_API_KEY"},
			},
		),
	}

	p.RegisterFetcher(newQuoteFetcher())
	p.RegisterFetcher(newCompanyNewsFetcher())
	p.RegisterFetcher(newSentimentFetcher())

	return p
}

// Ping checks the key with a quote call.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{
		provider.ParamAPIKey:  p.Credential(credAPIKey),
		provider.ParamBaseURL: p.BaseURL(),
	}
	var q fhQuote
	if err := get(ctx, params, "quote", url.Values{"symbol": {"AAPL"}}, &q); err != nil {
		return fmt.Errorf("finnhub ping: %w", err)
	}
	return nil
}

// get calls a Finnhub endpoint; the key travels in the X-Finnhub-Token header.
func get(ctx context.Context, params provider.QueryParams, endpoint string, q url.Values, dest any) error {
	u := provider.BaseURL(params, baseURL) + "/" + endpoint + "?" + q.Encode()
	headers := map[string]string{
		"Accept":          "application/json",
		"X-Finnhub-Token": params[provider.ParamAPIKey],
	}
	if err := infra.GetJSON(ctx, u, headers, dest); err != nil {
		return fmt.Errorf("finnhub %s: %w", endpoint, err)
	}
	return nil
}
