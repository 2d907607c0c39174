// Configuration endpoints. They are read-only; credentials come from the
// environment and the config file.

package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/seenimoa/finterm/internal/config"
)

// handleGetConfig returns the running configuration as YAML with
// credentials masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusNotFound, "no configuration loaded")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if err := config.Dump(s.cfg, w); err != nil {
		s.log.Warn("config dump failed", zap.Error(err))
	}
}

// handleGetConfigKeys returns the status of every vendor credential.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: []config.KeyStatus{}})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
