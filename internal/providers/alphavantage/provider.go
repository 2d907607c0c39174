// Package alphavantage implements the Alpha Vantage provider.
// Alpha Vantage answers every function on a single /query endpoint with
// numbered, space-containing keys ("1. open"), so responses are read with
// gjson paths rather than decoded into structs.
//
// Free keys: https://www.alphavantage.co/support/#api-key
// Rate limit: 5 requests/minute, 500/day on the free tier.
package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "alphavantage"
	baseURL      = "https://www.alphavantage.co"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for Alpha Vantage.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Alpha Vantage provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Alpha Vantage - equity time series, quotes and FX rates",
			"https://www.alphavantage.co",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Alpha Vantage API key",
					Required:    true,
					EnvVar:      "ALPHAVANTAGE_API_KEY",
				},
			},
		),
	}

	p.RegisterFetcher(newHistoricalFetcher())
	p.RegisterFetcher(newQuoteFetcher())
	p.RegisterFetcher(newFXQuoteFetcher())

	return p
}

// Ping checks the key with a cheap quote call.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{
		provider.ParamAPIKey:  p.Credential(credAPIKey),
		provider.ParamBaseURL: p.BaseURL(),
	}
	if _, err := query(ctx, params, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {"IBM"}}); err != nil {
		return fmt.Errorf("alphavantage ping: %w", err)
	}
	return nil
}

// ErrThrottled is returned when Alpha Vantage answers with its rate-limit note.
var ErrThrottled = errors.New("alphavantage: request limit reached")

// query calls /query and returns the parsed document. Alpha Vantage reports
// errors with HTTP 200 and an "Error Message", "Note" or "Information" key.
func query(ctx context.Context, params provider.QueryParams, q url.Values) (gjson.Result, error) {
	q.Set("apikey", params[provider.ParamAPIKey])
	u := provider.BaseURL(params, baseURL) + "/query?" + q.Encode()

	body, err := infra.GetBytes(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("alphavantage %s: invalid JSON", q.Get("function"))
	}

	doc := gjson.ParseBytes(body)
	if msg := doc.Get("Error Message"); msg.Exists() {
		return gjson.Result{}, fmt.Errorf("alphavantage %s: %s", q.Get("function"), msg.String())
	}
	if doc.Get("Note").Exists() || doc.Get("Information").Exists() {
		return gjson.Result{}, ErrThrottled
	}
	return doc, nil
}
