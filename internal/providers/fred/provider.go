// Package fred serves economic time series and series search from the
// St. Louis Fed's FRED API (https://fred.stlouisfed.org/docs/api/fred/).
// A free API key is required; the published quota is 120 requests a minute.
package fred

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "fred"
	baseURL      = "https://api.stlouisfed.org/fred"
	credAPIKey   = "api_key"
)

// Provider is the FRED vendor.
type Provider struct {
	provider.BaseProvider
}

// New returns a FRED provider serving EconomicSeries and EconomicSearch.
func New() *Provider {
	p := &Provider{BaseProvider: provider.NewBaseProvider(
		providerName,
		"Federal Reserve Economic Data: US and international macro series",
		"https://fred.stlouisfed.org",
		[]provider.ProviderCredential{{
			Name:        credAPIKey,
			Description: "FRED API key",
			Required:    true,
			EnvVar:      "FRED_API_KEY",
		}},
	)}
	p.RegisterFetcher(newSeriesFetcher())
	p.RegisterFetcher(newSearchFetcher())
	return p
}

// Ping looks up the GDP series, which always exists.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{
		provider.ParamAPIKey:  p.Credential(credAPIKey),
		provider.ParamBaseURL: p.BaseURL(),
	}
	var resp seriesList
	if err := getJSON(ctx, params, "series", url.Values{"series_id": {"GDP"}}, &resp); err != nil {
		return fmt.Errorf("fred ping: %w", err)
	}
	return nil
}

// endpointURL adds the key and the JSON file type to q.
func endpointURL(params provider.QueryParams, endpoint string, q url.Values) string {
	q.Set("api_key", params[provider.ParamAPIKey])
	q.Set("file_type", "json")
	return provider.BaseURL(params, baseURL) + "/" + endpoint + "?" + q.Encode()
}

func getJSON(ctx context.Context, params provider.QueryParams, endpoint string, q url.Values, dest any) error {
	headers := map[string]string{"Accept": "application/json"}
	if err := infra.GetJSON(ctx, endpointURL(params, endpoint, q), headers, dest); err != nil {
		return fmt.Errorf("fred %s: %w", endpoint, err)
	}
	return nil
}
