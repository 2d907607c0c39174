// Package config handles configuration loading for finterm.
// It supports YAML config files, a .env file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Terminal  TerminalConfig  `mapstructure:"terminal"  yaml:"terminal"`
	HTTP      HTTPConfig      `mapstructure:"http"      yaml:"http"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ProvidersConfig holds one credential per data vendor. Empty means the
// vendor is not registered, unless it needs no key.
type ProvidersConfig struct {
	AlphaVantageKey         string `mapstructure:"alphavantage_key"          yaml:"alphavantage_key"`
	FinnhubKey              string `mapstructure:"finnhub_key"               yaml:"finnhub_key"`
	CoinMarketCapKey        string `mapstructure:"coinmarketcap_key"         yaml:"coinmarketcap_key"`
	OandaToken              string `mapstructure:"oanda_token"               yaml:"oanda_token"`
	OandaAccount            string `mapstructure:"oanda_account"             yaml:"oanda_account"`
	OandaEnvironment        string `mapstructure:"oanda_environment"         yaml:"oanda_environment" validate:"omitempty,oneof=practice live"`
	FREDKey                 string `mapstructure:"fred_key"                  yaml:"fred_key"`
	QuandlKey               string `mapstructure:"quandl_key"                yaml:"quandl_key"`
	NewsAPIKey              string `mapstructure:"newsapi_key"               yaml:"newsapi_key"`
	SentimentInvestorToken  string `mapstructure:"sentimentinvestor_token"   yaml:"sentimentinvestor_token"`
	SentimentInvestorKey    string `mapstructure:"sentimentinvestor_key"     yaml:"sentimentinvestor_key"`
	GlassnodeKey            string `mapstructure:"glassnode_key"             yaml:"glassnode_key"`
	RedditUserAgent         string `mapstructure:"reddit_user_agent"         yaml:"reddit_user_agent"`
	NewsFeedLanguage        string `mapstructure:"news_feed_language"        yaml:"news_feed_language"`
	DisableKeylessProviders bool   `mapstructure:"disable_keyless_providers" yaml:"disable_keyless_providers"`
}

// TerminalConfig holds interactive session settings.
type TerminalConfig struct {
	HistorySize int               `mapstructure:"history_size" yaml:"history_size" validate:"gte=0"`
	MaxRows     int               `mapstructure:"max_rows"     yaml:"max_rows"     validate:"gt=0"`
	Prompt      string            `mapstructure:"prompt"       yaml:"prompt"`
	Defaults    map[string]string `mapstructure:"defaults"     yaml:"defaults"` // model → provider
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" validate:"gt=0"`
	UserAgent  string `mapstructure:"user_agent"  yaml:"user_agent"`
}

// CacheConfig holds fetcher cache settings.
type CacheConfig struct {
	TTLSec int `mapstructure:"ttl_sec" yaml:"ttl_sec" validate:"gte=0"` // 0 disables caching
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port" validate:"min=1,max=65535"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.finterm/config.yaml (home directory)
//  3. /etc/finterm/config.yaml (system)
//
// A .env file in the working directory or ~/.finterm is loaded first; it
// never replaces variables that are already set.
// Environment variables override config file values.
// Format: FINTERM_<SECTION>_<KEY>, e.g., FINTERM_LOGGING_LEVEL
func Load() (*Config, error) {
	loadDotEnv(".env", filepath.Join(homeDir(), ".finterm", ".env"))

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finterm"))
	v.AddConfigPath("/etc/finterm")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"))

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FINTERM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads each existing file into the process environment.
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("providers.oanda_environment", "practice")
	v.SetDefault("providers.reddit_user_agent", "finterm/1.0")
	v.SetDefault("providers.news_feed_language", "en-US")

	v.SetDefault("terminal.history_size", 500)
	v.SetDefault("terminal.max_rows", 20)
	v.SetDefault("terminal.prompt", "finterm> ")

	v.SetDefault("http.timeout_sec", 30)
	v.SetDefault("http.user_agent", "finterm/1.0")

	v.SetDefault("cache.ttl_sec", 300) // 5 minutes

	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv reads vendor keys from their conventional variable names.
func overrideFromEnv(cfg *Config) {
	for _, vk := range vendorKeys {
		if val := os.Getenv(vk.EnvVar); val != "" {
			*vk.field(&cfg.Providers) = val
		}
	}
}

var validate = validator.New()

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Dump writes the effective configuration as YAML with credentials masked.
func Dump(cfg *Config, w io.Writer) error {
	masked := *cfg
	for _, vk := range vendorKeys {
		if f := vk.field(&masked.Providers); *f != "" {
			*f = maskKey(*f)
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&masked); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
