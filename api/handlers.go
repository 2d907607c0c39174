package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/seenimoa/finterm/internal/econometrics"
	"github.com/seenimoa/finterm/internal/frame"
	"github.com/seenimoa/finterm/internal/provider"
)

const fetchTimeout = 30 * time.Second

// CoverageEntry lists the providers serving one model.
type CoverageEntry struct {
	Model     provider.ModelType `json:"model"`
	Menu      string             `json:"menu"`
	Default   string             `json:"default,omitempty"`
	Providers []string           `json:"providers"`
}

// CreateDatasetRequest is the body for POST /api/v1/datasets.
type CreateDatasetRequest struct {
	Alias  string            `json:"alias"`
	Model  string            `json:"model"`
	Params map[string]string `json:"params"`
}

// DatasetResponse is one dataset with its records.
type DatasetResponse struct {
	econometrics.DatasetInfo
	Records []map[string]any `json:"records"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	providers := 0
	if s.reg != nil {
		providers = len(s.reg.List())
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":    "ok",
			"version":   Version,
			"providers": providers,
			"datasets":  len(s.store.List()),
			"time":      time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if s.reg == nil {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: []provider.ProviderInfo{}})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.reg.List()})
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	entries := make([]CoverageEntry, 0, len(provider.AllModels()))
	var cov map[provider.ModelType][]string
	if s.reg != nil {
		cov = s.reg.ModelCoverage()
	}
	for _, m := range provider.AllModels() {
		e := CoverageEntry{Model: m, Menu: provider.ModelCategory(m), Providers: cov[m]}
		if e.Providers == nil {
			e.Providers = []string{}
		}
		if s.reg != nil {
			e.Default, _ = s.reg.DefaultProvider(m)
		}
		entries = append(entries, e)
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: entries})
}

// queryParams copies the URL query into fetch params. Private keys are
// rejected; "fallback" is a switch for the handler, not a vendor param.
func queryParams(r *http.Request) (provider.QueryParams, bool, error) {
	params := provider.QueryParams{}
	fallback := false
	for k, vals := range r.URL.Query() {
		if len(vals) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(k, "_"):
			return nil, false, fmt.Errorf("parameter %q is reserved", k)
		case k == "fallback":
			fallback, _ = strconv.ParseBool(vals[0])
		default:
			params[k] = vals[0]
		}
	}
	return params, fallback, nil
}

func (s *Server) fetch(ctx context.Context, model provider.ModelType, params provider.QueryParams, fallback bool) (*provider.FetchResult, error) {
	if s.reg == nil {
		return nil, &provider.ErrProviderNotFound{}
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	if fallback {
		return s.reg.FetchWithFallback(ctx, model, params)
	}
	return s.reg.Fetch(ctx, model, params)
}

// fetchStatus maps provider errors to HTTP status codes.
func fetchStatus(err error) int {
	var (
		missing     *provider.ErrMissingParam
		notFound    *provider.ErrProviderNotFound
		unsupported *provider.ErrModelNotSupported
	)
	switch {
	case errors.As(err, &missing):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.As(err, &unsupported):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	model, ok := provider.ParseModelType(chi.URLParam(r, "model"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown model %q", chi.URLParam(r, "model")))
		return
	}
	params, fallback, err := queryParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.fetch(r.Context(), model, params, fallback)
	if err != nil {
		writeError(w, fetchStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: res})
}

// --- Datasets ---

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.store.List()})
}

func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var req CreateDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Alias == "" || req.Model == "" {
		writeError(w, http.StatusBadRequest, "alias and model are required")
		return
	}
	model, ok := provider.ParseModelType(req.Model)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown model %q", req.Model))
		return
	}
	params := provider.QueryParams{}
	for k, v := range req.Params {
		if strings.HasPrefix(k, "_") {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("parameter %q is reserved", k))
			return
		}
		params[k] = v
	}

	res, err := s.fetch(r.Context(), model, params, false)
	if err != nil {
		writeError(w, fetchStatus(err), err.Error())
		return
	}
	df, err := frame.FromResult(res)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if err := s.store.LoadFrame(req.Alias, df, res.Provider+":"+string(model)); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, econometrics.ErrDatasetExists) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	s.log.Info("dataset stored", zap.String("alias", req.Alias), zap.String("provider", res.Provider))

	for _, info := range s.store.List() {
		if info.Alias == req.Alias {
			writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: info})
			return
		}
	}
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")
	df, err := s.store.Get(alias)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}
	records := df.Maps()
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	// JSON has no NaN; missing values go out as null.
	for _, rec := range records {
		for k, v := range rec {
			if f, ok := v.(float64); ok && math.IsNaN(f) {
				rec[k] = nil
			}
		}
	}

	resp := DatasetResponse{Records: records}
	for _, info := range s.store.List() {
		if info.Alias == alias {
			resp.DatasetInfo = info
		}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")
	if err := s.store.Remove(alias); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]string{"removed": alias}})
}
