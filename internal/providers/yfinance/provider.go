// Package yfinance implements the Yahoo Finance data provider.
// It wraps Yahoo Finance's public v8 chart API into the standard
// provider/fetcher framework.
//
// Yahoo Finance is a free, no-API-key provider that covers equities,
// indices, crypto and currencies worldwide.
package yfinance

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/seenimoa/finterm/internal/infra"
	"github.com/seenimoa/finterm/internal/provider"
)

const (
	providerName = "yfinance"
	baseURL      = "https://query1.finance.yahoo.com"
)

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
}

// New creates a new YFinance provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance - free global price history",
			"https://finance.yahoo.com",
			nil, // no credentials required
		),
	}

	p.RegisterFetcher(newChartFetcher(provider.ModelEquityHistorical, "Historical OHLCV price data from Yahoo Finance", equityTicker))
	p.RegisterFetcher(newChartFetcher(provider.ModelCryptoHistorical, "Historical crypto candles from Yahoo Finance (BTC → BTC-USD)", cryptoTicker))
	p.RegisterFetcher(newChartFetcher(provider.ModelCurrencyHistorical, "Historical FX rates from Yahoo Finance (EURUSD → EURUSD=X)", currencyTicker))
	p.RegisterFetcher(newQuoteFetcher())

	return p
}

// Ping checks connectivity to Yahoo Finance.
func (p *Provider) Ping(ctx context.Context) error {
	params := provider.QueryParams{provider.ParamBaseURL: p.BaseURL()}
	var resp chartResponse
	if err := fetchChart(ctx, params, "SPY", url.Values{"range": {"1d"}, "interval": {"1d"}}, &resp); err != nil {
		return fmt.Errorf("yfinance ping: %w", err)
	}
	return nil
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fetchChart calls the v8 chart endpoint and checks the embedded error.
func fetchChart(ctx context.Context, params provider.QueryParams, ticker string, q url.Values, dest *chartResponse) error {
	u := provider.BaseURL(params, baseURL) + "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + q.Encode()
	if err := infra.GetJSON(ctx, u, jsonHeaders(), dest); err != nil {
		return fmt.Errorf("yfinance chart %s: %w", ticker, err)
	}
	if dest.Chart.Error != nil {
		return fmt.Errorf("yfinance chart error: %s", dest.Chart.Error.Description)
	}
	if len(dest.Chart.Result) == 0 {
		return fmt.Errorf("no data for %s", ticker)
	}
	return nil
}

// equityTicker passes the symbol through; Yahoo uses suffixes (".L", ".NS") for
// non-US listings and a caret for indices.
func equityTicker(symbol string) string {
	return strings.ToUpper(symbol)
}

// cryptoTicker maps "BTC" or "btcusd" to Yahoo's "BTC-USD" form.
func cryptoTicker(symbol string) string {
	s := strings.ToUpper(symbol)
	if strings.Contains(s, "-") {
		return s
	}
	for _, quote := range []string{"USDT", "USD", "EUR", "GBP", "BTC"} {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s[:len(s)-len(quote)] + "-" + quote
		}
	}
	return s + "-USD"
}

// currencyTicker maps "EUR/USD", "EUR_USD" or "EURUSD" to "EURUSD=X".
func currencyTicker(symbol string) string {
	s := strings.ToUpper(strings.NewReplacer("/", "", "_", "", "-", "").Replace(symbol))
	if strings.HasSuffix(s, "=X") {
		return s
	}
	return s + "=X"
}

// yfInterval converts terminal intervals to Yahoo's spelling.
func yfInterval(interval string) string {
	switch interval {
	case "", "1d", "daily":
		return "1d"
	case "1w", "1wk", "weekly":
		return "1wk"
	case "1M", "1mo", "monthly":
		return "1mo"
	case "1h", "60m", "hourly":
		return "60m"
	default:
		return interval
	}
}
