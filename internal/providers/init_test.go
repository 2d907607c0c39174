package providers

import (
	"testing"

	"github.com/seenimoa/finterm/internal/config"
	"github.com/seenimoa/finterm/internal/provider"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Providers.RedditUserAgent = "finterm-test"
	cfg.Providers.NewsFeedLanguage = "en-US"
	cfg.Cache.TTLSec = 300
	return cfg
}

func TestRegisterAllToKeyless(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, testConfig(), nil); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	for _, name := range []string{"yfinance", "binance", "coinbase", "finviz", "reddit", "feeds"} {
		if _, err := reg.Get(name); err != nil {
			t.Errorf("%s not registered: %v", name, err)
		}
	}
	for _, name := range []string{"alphavantage", "finnhub", "fred", "oanda", "sentimentinvestor"} {
		if _, err := reg.Get(name); err == nil {
			t.Errorf("%s registered without a key", name)
		}
	}
}

func TestRegisterAllToKeyed(t *testing.T) {
	cfg := testConfig()
	cfg.Providers.AlphaVantageKey = "av"
	cfg.Providers.FinnhubKey = "fh"
	cfg.Providers.CoinMarketCapKey = "cmc"
	cfg.Providers.OandaToken = "oa"
	cfg.Providers.FREDKey = "fred"
	cfg.Providers.QuandlKey = "q"
	cfg.Providers.NewsAPIKey = "na"
	cfg.Providers.SentimentInvestorToken = "si-token" // key missing
	cfg.Providers.GlassnodeKey = "gn"

	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, cfg, nil); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}
	for _, name := range []string{"alphavantage", "finnhub", "coinmarketcap", "oanda", "fred", "quandl", "newsapi", "glassnode"} {
		if _, err := reg.Get(name); err != nil {
			t.Errorf("%s not registered: %v", name, err)
		}
	}
	if _, err := reg.Get("sentimentinvestor"); err == nil {
		t.Error("sentimentinvestor needs both token and key")
	}

	// finnhub still serves SocialSentiment, so every model is covered.
	coverage := reg.ModelCoverage()
	for _, m := range provider.AllModels() {
		if len(coverage[m]) == 0 {
			t.Errorf("no providers for model %s", m)
		}
	}
}

func TestRegisterAllToDisableKeyless(t *testing.T) {
	cfg := testConfig()
	cfg.Providers.DisableKeylessProviders = true
	cfg.Providers.FREDKey = "fred"

	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, cfg, nil); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}
	list := reg.List()
	if len(list) != 1 || list[0].Name != "fred" {
		t.Errorf("expected only fred, got %+v", list)
	}
}

func TestRegisterAllToDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.Providers.AlphaVantageKey = "av"
	cfg.Terminal.Defaults = map[string]string{
		"equityhistorical": "alphavantage",
		"cryptoquote":      "nonexistent",
	}

	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, cfg, nil); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}
	if def, _ := reg.DefaultProvider(provider.ModelEquityHistorical); def != "alphavantage" {
		t.Errorf("EquityHistorical default = %q, want alphavantage", def)
	}
	if def, _ := reg.DefaultProvider(provider.ModelCryptoQuote); def != "binance" {
		t.Errorf("unknown provider should leave default alone, got %q", def)
	}
}

func TestRegisterAllToUnknownModel(t *testing.T) {
	cfg := testConfig()
	cfg.Terminal.Defaults = map[string]string{"balancesheet": "yfinance"}
	if err := RegisterAllTo(provider.NewRegistry(), cfg, nil); err == nil {
		t.Error("expected error for unknown model in defaults")
	}
}

func TestRegisterAllIdempotent(t *testing.T) {
	reg := provider.NewRegistry()
	for i := 0; i < 2; i++ {
		if err := RegisterAllTo(reg, testConfig(), nil); err != nil {
			t.Fatalf("RegisterAllTo #%d: %v", i+1, err)
		}
	}
	count := 0
	for _, info := range reg.List() {
		if info.Name == "yfinance" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 yfinance, got %d", count)
	}
}
