// Package provider routes data requests to vendors. A Provider groups the
// Fetchers of one vendor; each Fetcher serves a single standard model, and
// the Registry picks which vendor answers a request.
package provider

import (
	"context"
	"time"
)

// ProviderCredential is one secret a vendor needs, such as an API key.
type ProviderCredential struct {
	Name        string `json:"name"` // "api_key", "token", ...
	Description string `json:"description"`
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"`
}

// ProviderInfo describes a vendor and the models it serves.
type ProviderInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
	Models      []ModelType          `json:"models"`
}

// Provider is a data vendor.
type Provider interface {
	Info() ProviderInfo

	// Init stores the vendor's credentials and fails when a required one
	// is missing.
	Init(credentials map[string]string) error

	// Fetcher returns nil when the vendor does not serve model.
	Fetcher(model ModelType) Fetcher

	SupportedModels() []ModelType

	// Ping checks connectivity and credentials with a cheap request.
	Ping(ctx context.Context) error
}

// QueryParams carries the options of one request. Keys starting with an
// underscore are private: the provider fills them in (credentials, base
// URL) and they never come from the user.
type QueryParams map[string]string

// Common query parameter keys.
const (
	ParamSymbol    = "symbol"
	ParamStartDate = "start_date"
	ParamEndDate   = "end_date"
	ParamInterval  = "interval"
	ParamLimit     = "limit"
	ParamQuery     = "query"
	ParamSortBy    = "sort_by"
	ParamMetric    = "metric"
	ParamCurrency  = "currency"
	ParamProvider  = "provider"

	ParamAPIKey  = "_api_key"
	ParamBaseURL = "_base_url"
)

// FetchResult is the data of one request and where it came from. Data
// is usually a slice of pkg/models structs.
type FetchResult struct {
	Provider  string    `json:"provider"`
	Model     ModelType `json:"model"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
}

// NewResult wraps freshly fetched data.
func NewResult(data any) *FetchResult {
	return &FetchResult{Data: data, FetchedAt: time.Now()}
}

// NewCachedResult wraps data served from a fetcher cache.
func NewCachedResult(data any) *FetchResult {
	r := NewResult(data)
	r.Cached = true
	return r
}

// Fetcher serves one model for one vendor.
type Fetcher interface {
	ModelType() ModelType
	Description() string
	RequiredParams() []string
	OptionalParams() []string

	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}
