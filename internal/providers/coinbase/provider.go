// Package coinbase implements the Coinbase Exchange public market-data
// provider: product candles and level-2 order books.
//
// Docs: https://docs.cloud.coinbase.com/exchange/reference
package coinbase

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "coinbase"
	baseURL      = "https://api.exchange.coinbase.com"
)

// Provider implements provider.Provider for Coinbase Exchange.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Coinbase provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Coinbase Exchange - product candles and order books",
			"https://exchange.coinbase.com",
			nil,
		),
	}

	p.RegisterFetcher(newCandlesFetcher())
	p.RegisterFetcher(newBookFetcher())

	return p
}

// Ping fetches the server time.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{provider.ParamBaseURL: p.BaseURL()}
	var out struct {
		ISO string `json:"iso"`
	}
	if err := get(ctx, params, "time", nil, &out); err != nil {
		return fmt.Errorf("coinbase ping: %w", err)
	}
	return nil
}

func get(ctx context.Context, params provider.QueryParams, path string, q url.Values, dest any) error {
	u := provider.BaseURL(params, baseURL) + "/" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	if err := infra.GetJSON(ctx, u, map[string]string{"Accept": "application/json"}, dest); err != nil {
		return fmt.Errorf("coinbase %s: %w", path, err)
	}
	return nil
}

// toProduct maps "btc", "BTCUSD" or "btc/usd" to Coinbase's "BTC-USD".
func toProduct(s string) string {
	s = strings.ToUpper(strings.NewReplacer("/", "-", "_", "-").Replace(s))
	if strings.Contains(s, "-") {
		return s
	}
	for _, quote := range []string{"USDT", "USDC", "USD", "EUR", "GBP", "BTC", "ETH"} {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s[:len(s)-len(quote)] + "-" + quote
		}
	}
	return s + "-USD"
}
