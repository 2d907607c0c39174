// Package glassnode implements the Glassnode on-chain metrics provider.
//
// Docs: https://docs.glassnode.com/basic-api/endpoints
package glassnode

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "glassnode"
	baseURL      = "https://api.glassnode.com/v1/metrics"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for Glassnode.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Glassnode provider.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Glassnode - on-chain blockchain metrics",
			"https://glassnode.com",
			[]provider.ProviderCredential{
				{Name: credAPIKey, Description: "Glassnode API key", Required: true, EnvVar: "GLASSNODE_API_KEY"},
			},
		),
	}
	p.RegisterFetcher(newMetricFetcher())
	return p
}

// Ping reads the latest BTC active address count.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{
		provider.ParamAPIKey:  p.Credential(credAPIKey),
		provider.ParamBaseURL: p.BaseURL(),
	}
	var out []gnPoint
	q := url.Values{"a": {"BTC"}, "i": {"24h"}}
	if err := get(ctx, params, "addresses/active_count", q, &out); err != nil {
		return fmt.Errorf("glassnode ping: %w", err)
	}
	return nil
}

type gnPoint struct {
	T int64    `json:"t"`
	V *float64 `json:"v"`
}

func get(ctx context.Context, params provider.QueryParams, path string, q url.Values, dest any) error {
	q.Set("api_key", params[provider.ParamAPIKey])
	u := provider.BaseURL(params, baseURL) + "/" + path + "?" + q.Encode()
	if err := infra.GetJSON(ctx, u, map[string]string{"Accept": "application/json"}, dest); err != nil {
		return fmt.Errorf("glassnode %s: %w", path, err)
	}
	return nil
}
