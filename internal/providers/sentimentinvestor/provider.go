// Package sentimentinvestor implements the SentimentInvestor social
// sentiment provider. Requests carry both a token and a key.
package sentimentinvestor

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "sentimentinvestor"
	baseURL      = "https://api.sentimentinvestor.com/v1"
	credAPIKey   = "api_key" // token
	credKey      = "key"

	paramKey = "_" + credKey
)

// Provider implements provider.Provider for SentimentInvestor.
type Provider struct {
	provider.BaseProvider
}

// New creates a new SentimentInvestor provider.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"SentimentInvestor - social media sentiment metrics",
			"https://sentimentinvestor.com",
			[]provider.ProviderCredential{
				{Name: credAPIKey, Description: "SentimentInvestor token", Required: true, EnvVar: "SENTIMENTINVESTOR_TOKEN"},
				{Name: credKey, Description: "SentimentInvestor key", Required: true, EnvVar: "SENTIMENTINVESTOR_KEY"},
			},
		),
	}
	p.RegisterFetcher(newHistoricalFetcher())
	return p
}

// Ping checks that the credentials are accepted for a well-known ticker.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{
		provider.ParamAPIKey:  p.Credential(credAPIKey),
		paramKey:              p.Credential(credKey),
		provider.ParamBaseURL: p.BaseURL(),
	}
	var out siResponse
	if err := get(ctx, params, "supported", url.Values{"symbol": {"AAPL"}}, &out); err != nil {
		return fmt.Errorf("sentimentinvestor ping: %w", err)
	}
	return nil
}

type siResponse struct {
	Success bool             `json:"success"`
	Symbol  string           `json:"symbol"`
	Reason  string           `json:"reason"`
	Results []map[string]any `json:"results"`
}

func get(ctx context.Context, params provider.QueryParams, path string, q url.Values, dest *siResponse) error {
	q.Set("token", params[provider.ParamAPIKey])
	q.Set("key", params[paramKey])
	u := provider.BaseURL(params, baseURL) + "/" + path + "?" + q.Encode()
	if err := infra.GetJSON(ctx, u, map[string]string{"Accept": "application/json"}, dest); err != nil {
		return fmt.Errorf("sentimentinvestor %s: %w", path, err)
	}
	if !dest.Success {
		return fmt.Errorf("sentimentinvestor %s: %s", path, dest.Reason)
	}
	return nil
}
