package httpserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/polyarb/arb-monitor/internal/scanner"
)

// StatusProvider exposes the scanner's cumulative counters.
type StatusProvider interface {
	Stats() scanner.Stats
}

// StatusHandler serves the scanner status API.
type StatusHandler struct {
	provider StatusProvider
	logger   *zap.Logger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(provider StatusProvider, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		provider: provider,
		logger:   logger,
	}
}

// HandleStatus writes the current scanner stats as JSON.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	stats := h.provider.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(stats)
	if err != nil {
		h.logger.Warn("status-encode-failed", zap.Error(err))
	}
}
