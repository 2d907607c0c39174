// Package quandl implements the Nasdaq Data Link (formerly Quandl) time-series
// dataset provider. Symbols are "DATABASE/DATASET", e.g. "LBMA/GOLD".
//
// Docs: https://docs.data.nasdaq.com/docs/time-series
package quandl

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "quandl"
	baseURL      = "https://data.nasdaq.com/api/v3"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for Nasdaq Data Link.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Quandl provider.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Nasdaq Data Link (Quandl) - time-series datasets",
			"https://data.nasdaq.com",
			[]provider.ProviderCredential{
				{Name: credAPIKey, Description: "Nasdaq Data Link API key", Required: true, EnvVar: "QUANDL_API_KEY"},
			},
		),
	}
	p.RegisterFetcher(newDatasetFetcher())
	return p
}

// Ping fetches one row of a public dataset.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{
		provider.ParamAPIKey:  p.Credential(credAPIKey),
		provider.ParamBaseURL: p.BaseURL(),
	}
	var out datasetResponse
	if err := get(ctx, params, "datasets/FRED/GDP/data.json", url.Values{"limit": {"1"}}, &out); err != nil {
		return fmt.Errorf("quandl ping: %w", err)
	}
	return nil
}

func get(ctx context.Context, params provider.QueryParams, path string, q url.Values, dest any) error {
	q.Set("api_key", params[provider.ParamAPIKey])
	u := provider.BaseURL(params, baseURL) + "/" + path + "?" + q.Encode()
	if err := infra.GetJSON(ctx, u, map[string]string{"Accept": "application/json"}, dest); err != nil {
		return fmt.Errorf("quandl %s: %w", path, err)
	}
	return nil
}
