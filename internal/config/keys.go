package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	EnvVar string       `json:"env_var"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "abc...xyz"
}

type vendorKey struct {
	Name   string
	EnvVar string
	field  func(*ProvidersConfig) *string
}

// vendorKeys lists every secret with the variable the vendor documents for it.
var vendorKeys = []vendorKey{
	{"Alpha Vantage API Key", "ALPHAVANTAGE_API_KEY", func(p *ProvidersConfig) *string { return &p.AlphaVantageKey }},
	{"Finnhub API Key", "FINNHUB_API_KEY", func(p *ProvidersConfig) *string { return &p.FinnhubKey }},
	{"CoinMarketCap API Key", "COINMARKETCAP_API_KEY", func(p *ProvidersConfig) *string { return &p.CoinMarketCapKey }},
	{"OANDA Token", "OANDA_TOKEN", func(p *ProvidersConfig) *string { return &p.OandaToken }},
	{"OANDA Account", "OANDA_ACCOUNT", func(p *ProvidersConfig) *string { return &p.OandaAccount }},
	{"FRED API Key", "FRED_API_KEY", func(p *ProvidersConfig) *string { return &p.FREDKey }},
	{"Quandl API Key", "QUANDL_API_KEY", func(p *ProvidersConfig) *string { return &p.QuandlKey }},
	{"NewsAPI Key", "NEWSAPI_API_KEY", func(p *ProvidersConfig) *string { return &p.NewsAPIKey }},
	{"SentimentInvestor Token", "SENTIMENTINVESTOR_TOKEN", func(p *ProvidersConfig) *string { return &p.SentimentInvestorToken }},
	{"SentimentInvestor Key", "SENTIMENTINVESTOR_KEY", func(p *ProvidersConfig) *string { return &p.SentimentInvestorKey }},
	{"Glassnode API Key", "GLASSNODE_API_KEY", func(p *ProvidersConfig) *string { return &p.GlassnodeKey }},
}

// CheckAPIKeys returns the status of every vendor credential.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	out := make([]KeyStatus, 0, len(vendorKeys))
	for _, vk := range vendorKeys {
		out = append(out, checkKey(vk.Name, *vk.field(&cfg.Providers), vk.EnvVar))
	}
	return out
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:   name,
		EnvVar: envVar,
		IsSet:  value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
