// Package handler contains the HTTP handlers of the read-only status API.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/dexarb/internal/bot"
	"github.com/alanyoungcy/dexarb/internal/domain"
)

// StatsProvider exposes the bot's current condition.
type StatsProvider interface {
	GetStats() bot.Stats
}

// AnalysisProvider exposes the analyzer's derived analytics.
type AnalysisProvider interface {
	GenerateMarketAnalysis() domain.MarketAnalysis
}

// StatusHandler serves bot status and market analysis snapshots.
type StatusHandler struct {
	stats    StatsProvider
	analysis AnalysisProvider
	metrics  *bot.Metrics
	logger   *slog.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(stats StatsProvider, analysis AnalysisProvider, metrics *bot.Metrics, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		stats:    stats,
		analysis: analysis,
		metrics:  metrics,
		logger:   logger.With(slog.String("handler", "status")),
	}
}

// Status returns the scheduler state plus the full metrics snapshot.
// GET /api/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":   h.stats.GetStats(),
		"metrics": h.metrics.Snapshot(),
	})
}

// Analysis returns the analyzer's current market analysis.
// GET /api/analysis
func (h *StatusHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.analysis.GenerateMarketAnalysis())
}
