package provider

import (
	"context"
	"slices"
	"strings"
	"time"
)

// BaseProvider implements Provider for vendors that are a set of
// fetchers plus credentials. Concrete providers embed it, register their
// fetchers in New and usually override Ping.
type BaseProvider struct {
	info        ProviderInfo
	fetchers    map[ModelType]Fetcher
	credentials map[string]string
	baseURL     string
}

// NewBaseProvider describes a vendor with no fetchers yet.
func NewBaseProvider(name, description, website string, creds []ProviderCredential) BaseProvider {
	return BaseProvider{
		info: ProviderInfo{
			Name:        name,
			Description: description,
			Website:     website,
			Credentials: creds,
		},
		fetchers:    make(map[ModelType]Fetcher),
		credentials: make(map[string]string),
	}
}

func (bp *BaseProvider) Info() ProviderInfo { return bp.info }

// Init keeps a copy of credentials after checking the required ones.
func (bp *BaseProvider) Init(credentials map[string]string) error {
	for _, c := range bp.info.Credentials {
		if c.Required && credentials[c.Name] == "" {
			return &ErrInvalidCredentials{
				Provider: bp.info.Name,
				Detail:   "missing required credential: " + c.Name,
			}
		}
	}
	bp.credentials = make(map[string]string, len(credentials))
	for k, v := range credentials {
		bp.credentials[k] = v
	}
	return nil
}

// Fetcher returns the fetcher for model behind a CredentialInjector.
func (bp *BaseProvider) Fetcher(model ModelType) Fetcher {
	f, ok := bp.fetchers[model]
	if !ok {
		return nil
	}
	return &CredentialInjector{inner: f, provider: bp}
}

// SupportedModels returns the registered models in name order.
func (bp *BaseProvider) SupportedModels() []ModelType {
	models := make([]ModelType, 0, len(bp.fetchers))
	for m := range bp.fetchers {
		models = append(models, m)
	}
	slices.Sort(models)
	return models
}

func (bp *BaseProvider) Ping(ctx context.Context) error { return nil }

// RegisterFetcher adds f, replacing any fetcher for the same model.
func (bp *BaseProvider) RegisterFetcher(f Fetcher) {
	bp.fetchers[f.ModelType()] = f
	bp.info.Models = bp.SupportedModels()
}

// CapCacheTTL bounds the cache lifetime of every fetcher.
func (bp *BaseProvider) CapCacheTTL(max time.Duration) {
	for _, f := range bp.fetchers {
		if c, ok := f.(interface{ CapCacheTTL(time.Duration) }); ok {
			c.CapCacheTTL(max)
		}
	}
}

// Credential returns the value given to Init for name.
func (bp *BaseProvider) Credential(name string) string {
	return bp.credentials[name]
}

// SetBaseURL points every fetcher at another host, such as an httptest
// server or a self-hosted mirror.
func (bp *BaseProvider) SetBaseURL(u string) {
	bp.baseURL = strings.TrimRight(u, "/")
}

// BaseURL returns the override, or "" for the vendor's own host.
func (bp *BaseProvider) BaseURL() string {
	return bp.baseURL
}
