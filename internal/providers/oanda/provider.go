// Package oanda implements read-only OANDA v20 market data: instrument
// candles and live pricing. Order placement is not exposed.
//
// Docs: https://developer.oanda.com/rest-live-v20/introduction/
package oanda

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName  = "oanda"
	practiceURL   = "https://api-fxpractice.oanda.com/v3"
	liveURL       = "https://api-fxtrade.oanda.com/v3"
	credAPIKey    = "api_key"
	credAccountID = "account_id"

	paramAccountID = "_" + credAccountID
)

// Provider implements provider.Provider for OANDA.
type Provider struct {
	provider.BaseProvider
}

// New creates an OANDA provider for the "practice" or "live" environment.
func New(environment string) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"OANDA v20 - FX candles and live pricing",
			"https://www.oanda.com",
			[]provider.ProviderCredential{
				{Name: credAPIKey, Description: "OANDA personal access token", Required: true, EnvVar: "OANDA_TOKEN"},
				{Name: credAccountID, Description: "OANDA account ID (needed for pricing)", Required: false, EnvVar: "OANDA_ACCOUNT"},
			},
		),
	}
	if environment == "live" {
		p.SetBaseURL(liveURL)
	} else {
		p.SetBaseURL(practiceURL)
	}

	p.RegisterFetcher(newCandlesFetcher())
	p.RegisterFetcher(newPricingFetcher())

	return p
}

// Ping lists the accounts the token can see.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{
		provider.ParamAPIKey:  p.Credential(credAPIKey),
		provider.ParamBaseURL: p.BaseURL(),
	}
	var out map[string]any
	if err := get(ctx, params, "accounts", nil, &out); err != nil {
		return fmt.Errorf("oanda ping: %w", err)
	}
	return nil
}

func get(ctx context.Context, params provider.QueryParams, path string, q url.Values, dest any) error {
	u := provider.BaseURL(params, practiceURL) + "/" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	headers := map[string]string{
		"Accept":                 "application/json",
		"Authorization":          "Bearer " + params[provider.ParamAPIKey],
		"Accept-Datetime-Format": "RFC3339",
	}
	if err := infra.GetJSON(ctx, u, headers, dest); err != nil {
		return fmt.Errorf("oanda %s: %w", path, err)
	}
	return nil
}

// toInstrument maps "EURUSD", "eur/usd" or "EUR-USD" to "EUR_USD".
func toInstrument(s string) (string, error) {
	s = strings.ToUpper(strings.NewReplacer("/", "", "_", "", "-", "").Replace(s))
	if len(s) != 6 {
		return "", fmt.Errorf("oanda: instrument %q: want a pair like EUR_USD", s)
	}
	return s[:3] + "_" + s[3:], nil
}
