// Package providers constructs the concrete data vendors and registers them
// with a provider registry according to the loaded configuration.
package providers

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/finterm/internal/config"
	"github.com/seenimoa/finterm/internal/provider"
	"github.com/seenimoa/finterm/internal/providers/alphavantage"
	"github.com/seenimoa/finterm/internal/providers/binance"
	"github.com/seenimoa/finterm/internal/providers/coinbase"
	"github.com/seenimoa/finterm/internal/providers/coinmarketcap"
	"github.com/seenimoa/finterm/internal/providers/feeds"
	"github.com/seenimoa/finterm/internal/providers/finnhub"
	"github.com/seenimoa/finterm/internal/providers/finviz"
	"github.com/seenimoa/finterm/internal/providers/fred"
	"github.com/seenimoa/finterm/internal/providers/glassnode"
	"github.com/seenimoa/finterm/internal/providers/newsapi"
	"github.com/seenimoa/finterm/internal/providers/oanda"
	"github.com/seenimoa/finterm/internal/providers/quandl"
	"github.com/seenimoa/finterm/internal/providers/reddit"
	"github.com/seenimoa/finterm/internal/providers/sentimentinvestor"
	"github.com/seenimoa/finterm/internal/providers/yfinance"
)

// cacheCapper is implemented by providers embedding provider.BaseProvider.
type cacheCapper interface {
	CapCacheTTL(time.Duration)
}

type keyedVendor struct {
	creds map[string]string // credential name → configured value
	build func() provider.Provider
}

// RegisterAllTo registers every available vendor with reg. Keyless vendors
// are always registered unless disabled in the config; vendors that need a
// key are registered only when all their required credentials are set.
// Per-model defaults from the terminal config are applied last.
func RegisterAllTo(reg *provider.Registry, cfg *config.Config, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	pc := cfg.Providers

	var keyless []provider.Provider
	if !pc.DisableKeylessProviders {
		keyless = []provider.Provider{
			yfinance.New(),
			binance.New(),
			coinbase.New(),
			finviz.New(),
			reddit.New(pc.RedditUserAgent),
			feeds.New(pc.NewsFeedLanguage),
		}
	}
	for _, p := range keyless {
		if err := register(reg, p, nil, cfg, log); err != nil {
			return err
		}
	}

	keyed := []keyedVendor{
		{map[string]string{"api_key": pc.AlphaVantageKey}, func() provider.Provider { return alphavantage.New() }},
		{map[string]string{"api_key": pc.FinnhubKey}, func() provider.Provider { return finnhub.New() }},
		{map[string]string{"api_key": pc.CoinMarketCapKey}, func() provider.Provider { return coinmarketcap.New() }},
		{map[string]string{"api_key": pc.OandaToken, "account_id": pc.OandaAccount}, func() provider.Provider { return oanda.New(pc.OandaEnvironment) }},
		{map[string]string{"api_key": pc.FREDKey}, func() provider.Provider { return fred.New() }},
		{map[string]string{"api_key": pc.QuandlKey}, func() provider.Provider { return quandl.New() }},
		{map[string]string{"api_key": pc.NewsAPIKey}, func() provider.Provider { return newsapi.New() }},
		{map[string]string{"api_key": pc.SentimentInvestorToken, "key": pc.SentimentInvestorKey}, func() provider.Provider { return sentimentinvestor.New() }},
		{map[string]string{"api_key": pc.GlassnodeKey}, func() provider.Provider { return glassnode.New() }},
	}
	for _, kv := range keyed {
		p := kv.build()
		if missing := missingCredential(p.Info(), kv.creds); missing != "" {
			log.Debug("provider skipped",
				zap.String("provider", p.Info().Name),
				zap.String("missing", missing))
			continue
		}
		if err := register(reg, p, kv.creds, cfg, log); err != nil {
			return err
		}
	}

	return applyDefaults(reg, cfg.Terminal.Defaults, log)
}

func register(reg *provider.Registry, p provider.Provider, creds map[string]string, cfg *config.Config, log *zap.Logger) error {
	if err := p.Init(creds); err != nil {
		return err
	}
	if c, ok := p.(cacheCapper); ok {
		c.CapCacheTTL(time.Duration(cfg.Cache.TTLSec) * time.Second)
	}
	if err := reg.Register(p); err != nil {
		return err
	}
	log.Debug("provider enabled", zap.String("provider", p.Info().Name))
	return nil
}

// missingCredential returns the name of the first required credential with
// no configured value.
func missingCredential(info provider.ProviderInfo, creds map[string]string) string {
	for _, c := range info.Credentials {
		if c.Required && creds[c.Name] == "" {
			return c.Name
		}
	}
	return ""
}

// applyDefaults sets per-model default providers. Model names are matched
// case-insensitively because the config loader lower-cases map keys.
// A default naming a vendor that is not registered is logged and ignored.
func applyDefaults(reg *provider.Registry, defaults map[string]string, log *zap.Logger) error {
	for name, prov := range defaults {
		model, ok := provider.ParseModelType(name)
		if !ok {
			return fmt.Errorf("terminal.defaults: unknown model %q", name)
		}
		if err := reg.SetDefault(model, prov); err != nil {
			log.Warn("default provider not applied",
				zap.String("model", string(model)),
				zap.String("provider", prov),
				zap.Error(err))
		}
	}
	return nil
}
