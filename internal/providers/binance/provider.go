// Package binance implements the Binance public market-data provider:
// klines, 24h tickers and order-book depth. No API key is needed for
// market data.
//
// Docs: https://binance-docs.github.io/apidocs/spot/en/#market-data-endpoints
package binance

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "binance"
	baseURL      = "https://api.binance.com/api/v3"
)

// Provider implements provider.Provider for Binance.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Binance provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Binance - spot klines, 24h tickers and order books",
			"https://www.binance.com",
			nil,
		),
	}

	p.RegisterFetcher(newKlinesFetcher())
	p.RegisterFetcher(newTickerFetcher())
	p.RegisterFetcher(newDepthFetcher())

	return p
}

// Ping calls /ping.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{provider.ParamBaseURL: p.BaseURL()}
	var out struct{}
	if err := get(ctx, params, "ping", url.Values{}, &out); err != nil {
		return fmt.Errorf("binance ping: %w", err)
	}
	return nil
}

func get(ctx context.Context, params provider.QueryParams, endpoint string, q url.Values, dest any) error {
	u := provider.BaseURL(params, baseURL) + "/" + endpoint
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	if err := infra.GetJSON(ctx, u, map[string]string{"Accept": "application/json"}, dest); err != nil {
		return fmt.Errorf("binance %s: %w", endpoint, err)
	}
	return nil
}

// toSymbol maps "btc", "BTC/USDT" or "btc-usdt" to Binance's "BTCUSDT".
// A bare base asset is quoted in USDT.
func toSymbol(s string) string {
	s = strings.ToUpper(strings.NewReplacer("/", "", "-", "", "_", "").Replace(s))
	for _, quote := range []string{"USDT", "BUSD", "USDC", "BTC", "ETH", "BNB", "EUR", "TRY"} {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s
		}
	}
	return s + "USDT"
}
