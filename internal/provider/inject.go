package provider

import "context"

// CredentialInjector wraps a Fetcher and injects the owning provider's
// credentials and base URL override before delegating. A credential named
// "api_key" arrives as the private param "_api_key".
type CredentialInjector struct {
	inner    Fetcher
	provider *BaseProvider
}

func (w *CredentialInjector) ModelType() ModelType     { return w.inner.ModelType() }
func (w *CredentialInjector) Description() string      { return w.inner.Description() }
func (w *CredentialInjector) RequiredParams() []string { return w.inner.RequiredParams() }
func (w *CredentialInjector) OptionalParams() []string { return w.inner.OptionalParams() }

// Unwrap returns the wrapped fetcher.
func (w *CredentialInjector) Unwrap() Fetcher { return w.inner }

func (w *CredentialInjector) Fetch(ctx context.Context, params QueryParams) (*FetchResult, error) {
	enriched := make(QueryParams, len(params)+len(w.provider.credentials)+1)
	for k, v := range params {
		enriched[k] = v
	}
	for name, val := range w.provider.credentials {
		if val != "" {
			enriched["_"+name] = val
		}
	}
	if u := w.provider.BaseURL(); u != "" {
		enriched[ParamBaseURL] = u
	}
	return w.inner.Fetch(ctx, enriched)
}

// BaseURL returns the injected base URL override or def.
func BaseURL(params QueryParams, def string) string {
	if u := params[ParamBaseURL]; u != "" {
		return u
	}
	return def
}
