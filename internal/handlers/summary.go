package handlers

import (
	"net/http"

	"github.com/NOTSTEVEN4000/banano-api/internal/middleware"
	"github.com/NOTSTEVEN4000/banano-api/internal/service"
	"github.com/gorilla/mux"
)

// SummaryHandler handles daily reporting requests
type SummaryHandler struct {
	summaries *service.SummaryService
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaries *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries}
}

// Daily returns the consolidated day report for one operational date.
func (h *SummaryHandler) Daily(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	summary, err := h.summaries.DailySummary(r.Context(), claims, mux.Vars(r)["fecha"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
