package provider

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/finterm/internal/infra"
)

// Defaults for NewBaseFetcher.
const (
	defaultCacheTTL   = 5 * time.Minute
	defaultRateLimit  = 10
	defaultRateWindow = time.Second
)

// BaseFetcher carries a fetcher's metadata plus its response cache and
// rate limiter. Concrete fetchers embed it and implement Fetch, usually
// through Cached.
type BaseFetcher struct {
	model       ModelType
	description string
	required    []string
	optional    []string
	cache       *infra.Cache
	limiter     *infra.RateLimiter
}

// NewBaseFetcher caches for five minutes and allows ten requests a second.
func NewBaseFetcher(model ModelType, desc string, required, optional []string) BaseFetcher {
	return NewBaseFetcherWithOpts(model, desc, required, optional, defaultCacheTTL, defaultRateLimit, defaultRateWindow)
}

// NewBaseFetcherWithOpts sets the cache TTL and allows rateLimit requests
// per rateWindow, matching the vendor's published quota.
func NewBaseFetcherWithOpts(model ModelType, desc string, required, optional []string, cacheTTL time.Duration, rateLimit int, rateWindow time.Duration) BaseFetcher {
	return BaseFetcher{
		model:       model,
		description: desc,
		required:    required,
		optional:    optional,
		cache:       infra.NewCache(cacheTTL),
		limiter:     infra.NewRateLimiter(rateLimit, rateWindow),
	}
}

func (b *BaseFetcher) ModelType() ModelType     { return b.model }
func (b *BaseFetcher) Description() string      { return b.description }
func (b *BaseFetcher) RequiredParams() []string { return b.required }
func (b *BaseFetcher) OptionalParams() []string { return b.optional }

// CapCacheTTL bounds the cache lifetime; 0 turns caching off.
func (b *BaseFetcher) CapCacheTTL(max time.Duration) {
	b.cache.CapTTL(max)
}

// Cached returns the cached data for params, or waits for a rate-limit
// slot, runs load and caches what it returns. Errors are not cached.
func (b *BaseFetcher) Cached(ctx context.Context, params QueryParams, load func() (any, error)) (*FetchResult, error) {
	key := CacheKey(b.model, params)
	if data, ok := b.cache.Get(key); ok {
		return NewCachedResult(data), nil
	}
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	data, err := load()
	if err != nil {
		return nil, err
	}
	b.cache.Set(key, data)
	return NewResult(data), nil
}

// CacheKey identifies a request by model and user params. Private keys
// and the provider selection do not take part.
func CacheKey(model ModelType, params QueryParams) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k != ParamProvider && !strings.HasPrefix(k, "_") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(string(model))
	for _, k := range keys {
		sb.WriteByte(':')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	return sb.String()
}
