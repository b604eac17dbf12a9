package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/dexarb/internal/domain"
)

// OpportunityHandler serves persisted opportunity history.
type OpportunityHandler struct {
	store  domain.OpportunityStore
	logger *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(store domain.OpportunityStore, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		store:  store,
		logger: logger.With(slog.String("handler", "opportunities")),
	}
}

// ListRecent returns the most recently detected opportunities.
// GET /api/opportunities?limit=50
func (h *OpportunityHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 500)

	opps, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list recent opportunities",
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}
	if opps == nil {
		opps = []domain.ArbitrageOpportunity{}
	}
	writeJSON(w, http.StatusOK, opps)
}

// Stats returns aggregate statistics over a trailing window of days.
// GET /api/opportunities/stats?days=7
func (h *OpportunityHandler) Stats(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7, 365)

	stats, err := h.store.Stats(r.Context(), days)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "opportunity stats",
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
