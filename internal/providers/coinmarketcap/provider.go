// Package coinmarketcap implements the CoinMarketCap provider: the latest
// market-cap ranking of listed crypto assets.
//
// Keys: https://coinmarketcap.com/api/
package coinmarketcap

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "coinmarketcap"
	baseURL      = "https://pro-api.coinmarketcap.com"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for CoinMarketCap.
type Provider struct {
	provider.BaseProvider
}

// New creates a new CoinMarketCap provider.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"CoinMarketCap - crypto listings ranked by market cap",
			"https://coinmarketcap.com",
			[]provider.ProviderCredential{
				{Name: credAPIKey, Description: "CoinMarketCap Pro API key", Required: true, EnvVar: "COINMARKETCAP_API_KEY"},
			},
		),
	}
	p.RegisterFetcher(newListingsFetcher())
	return p
}

// Ping checks the key with /v1/key/info.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{
		provider.ParamAPIKey:  p.Credential(credAPIKey),
		provider.ParamBaseURL: p.BaseURL(),
	}
	var out cmcEnvelope[map[string]any]
	if err := get(ctx, params, "v1/key/info", url.Values{}, &out); err != nil {
		return fmt.Errorf("coinmarketcap ping: %w", err)
	}
	return nil
}

type cmcStatus struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type cmcEnvelope[T any] struct {
	Status cmcStatus `json:"status"`
	Data   T         `json:"data"`
}

func get[T any](ctx context.Context, params provider.QueryParams, path string, q url.Values, dest *cmcEnvelope[T]) error {
	u := provider.BaseURL(params, baseURL) + "/" + path + "?" + q.Encode()
	headers := map[string]string{
		"Accept":            "application/json",
		"X-CMC_PRO_API_KEY": params[provider.ParamAPIKey],
	}
	if err := infra.GetJSON(ctx, u, headers, dest); err != nil {
		return fmt.Errorf("coinmarketcap %s: %w", path, err)
	}
	if dest.Status.ErrorCode != 0 {
		return fmt.Errorf("coinmarketcap %s: %d %s", path, dest.Status.ErrorCode, dest.Status.ErrorMessage)
	}
	return nil
}
