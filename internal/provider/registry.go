package provider

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// route lists the providers serving one model. The first registered
// provider becomes the default unless SetDefault says otherwise.
type route struct {
	names []string
	def   string
}

func (rt *route) clone() []string { return slices.Clone(rt.names) }

// Registry routes model requests to vendors. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	routes    map[ModelType]*route
	log       *zap.Logger
}

// NewRegistry creates an empty registry that does not log.
func NewRegistry() *Registry {
	return NewRegistryWithLogger(nil)
}

// NewRegistryWithLogger creates an empty registry that logs fetches and fallbacks.
func NewRegistryWithLogger(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		providers: make(map[string]Provider),
		routes:    make(map[ModelType]*route),
		log:       log.Named("registry"),
	}
}

// Register adds p under its Info().Name. Registering a name again
// replaces the provider and re-indexes its models; its position in
// existing routes is kept.
func (r *Registry) Register(p Provider) error {
	info := p.Info()
	if info.Name == "" {
		return errors.New("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[info.Name]; ok {
		r.dropRoutes(info.Name, p.SupportedModels())
	}
	r.providers[info.Name] = p

	for _, model := range p.SupportedModels() {
		rt := r.routes[model]
		if rt == nil {
			rt = &route{}
			r.routes[model] = rt
		}
		if !slices.Contains(rt.names, info.Name) {
			rt.names = append(rt.names, info.Name)
		}
		if rt.def == "" {
			rt.def = info.Name
		}
	}

	r.log.Debug("provider registered",
		zap.String("provider", info.Name),
		zap.Int("models", len(info.Models)))
	return nil
}

// Unregister removes a provider. Models it was the default for fall to
// the next provider in line.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, name)
	r.dropRoutes(name, nil)
}

// dropRoutes removes name from every route except the models in keep.
// Caller holds the write lock.
func (r *Registry) dropRoutes(name string, keep []ModelType) {
	for model, rt := range r.routes {
		if slices.Contains(keep, model) {
			continue
		}
		rt.names = slices.DeleteFunc(rt.names, func(n string) bool { return n == name })
		switch {
		case len(rt.names) == 0:
			delete(r.routes, model)
		case rt.def == name:
			rt.def = rt.names[0]
		}
	}
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, &ErrProviderNotFound{Name: name}
}

// List returns the info of every provider, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ProvidersFor returns the providers serving model in registration order.
func (r *Registry) ProvidersFor(model ModelType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rt := r.routes[model]; rt != nil {
		return rt.clone()
	}
	return []string{}
}

// DefaultProvider returns the provider used when a request names none.
func (r *Registry) DefaultProvider(model ModelType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rt := r.routes[model]; rt != nil {
		return rt.def, true
	}
	return "", false
}

// SetDefault makes providerName the default for model.
func (r *Registry) SetDefault(model ModelType, providerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[providerName]
	if !ok {
		return &ErrProviderNotFound{Name: providerName}
	}
	rt := r.routes[model]
	if rt == nil || p.Fetcher(model) == nil {
		return &ErrModelNotSupported{Provider: providerName, Model: model}
	}
	rt.def = providerName
	return nil
}

// ModelCoverage maps every served model to its providers.
func (r *Registry) ModelCoverage() map[ModelType][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coverage := make(map[ModelType][]string, len(r.routes))
	for model, rt := range r.routes {
		coverage[model] = rt.clone()
	}
	return coverage
}

// resolve picks the provider for a request: the "provider" param when
// set, otherwise the model's default.
func (r *Registry) resolve(model ModelType, name string) (string, Fetcher, error) {
	r.mu.RLock()
	if name == "" {
		if rt := r.routes[model]; rt != nil {
			name = rt.def
		}
	}
	p, ok := r.providers[name]
	r.mu.RUnlock()

	if name == "" || !ok {
		return name, nil, &ErrProviderNotFound{Name: name}
	}
	f := p.Fetcher(model)
	if f == nil {
		return name, nil, &ErrModelNotSupported{Provider: name, Model: model}
	}
	return name, f, nil
}

// Fetch runs one request against the provider named by params, or the
// model's default. Missing required params are reported before any
// network call.
func (r *Registry) Fetch(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	name, f, err := r.resolve(model, params[ParamProvider])
	if err != nil {
		return nil, err
	}
	if err := ValidateParams(params, f.RequiredParams()); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := f.Fetch(ctx, params)
	if err != nil {
		r.log.Debug("fetch failed",
			zap.String("provider", name),
			zap.String("model", string(model)),
			zap.Error(err))
		return nil, fmt.Errorf("provider %q fetch %s: %w", name, model, err)
	}

	res.Provider = name
	res.Model = model
	if res.FetchedAt.IsZero() {
		res.FetchedAt = time.Now()
	}
	r.log.Debug("fetch ok",
		zap.String("provider", name),
		zap.String("model", string(model)),
		zap.Bool("cached", res.Cached),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

// FetchWithFallback tries the requested (or default) provider, then every
// other provider of the model in order. The returned error joins the
// failure of each provider tried.
func (r *Registry) FetchWithFallback(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	first := params[ParamProvider]
	if first == "" {
		first, _ = r.DefaultProvider(model)
	}
	order := []string{first}
	for _, name := range r.ProvidersFor(model) {
		if name != first {
			order = append(order, name)
		}
	}

	var errs []error
	for i, name := range order {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		attempt := make(QueryParams, len(params)+1)
		for k, v := range params {
			attempt[k] = v
		}
		attempt[ParamProvider] = name

		res, err := r.Fetch(ctx, model, attempt)
		if err == nil {
			return res, nil
		}
		errs = append(errs, err)
		if i+1 < len(order) {
			r.log.Info("falling back to next provider",
				zap.String("model", string(model)),
				zap.String("failed", name),
				zap.String("next", order[i+1]),
				zap.Error(err))
		}
	}
	return nil, fmt.Errorf("all providers failed for model %s: %w", model, errors.Join(errs...))
}
