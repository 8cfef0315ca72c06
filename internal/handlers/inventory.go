package handlers

import (
	"net/http"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/middleware"
	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"github.com/NOTSTEVEN4000/banano-api/internal/service"
	"github.com/gorilla/mux"
)

// InventoryHandler handles supply catalog and stock requests
type InventoryHandler struct {
	inventory *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// CreateSupply adds a supply catalog entry.
func (h *InventoryHandler) CreateSupply(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req service.CreateSupplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	supply, err := h.inventory.CreateSupply(r.Context(), claims, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, supply)
}

// GetSupply returns one catalog entry by external id.
func (h *InventoryHandler) GetSupply(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	supply, err := h.inventory.GetSupply(r.Context(), claims, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, supply)
}

// UpdateSupply updates the mutable fields of a catalog entry.
func (h *InventoryHandler) UpdateSupply(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req service.UpdateSupplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	supply, err := h.inventory.UpdateSupply(r.Context(), claims, mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, supply)
}

// ListSupplies lists the catalog, optionally only entries at or below
// the low stock threshold.
func (h *InventoryHandler) ListSupplies(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	lowStockOnly := r.URL.Query().Get("stockBajo") == "true"
	supplies, err := h.inventory.ListSupplies(r.Context(), claims, lowStockOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if supplies == nil {
		supplies = []models.Supply{}
	}
	writeJSON(w, http.StatusOK, supplies)
}

// RegisterEntry stores an entry batch, increasing stock levels.
func (h *InventoryHandler) RegisterEntry(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req service.RegisterEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.inventory.RegisterEntry(r.Context(), claims, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// RegisterAdjustment applies a signed manual stock correction.
func (h *InventoryHandler) RegisterAdjustment(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req service.AdjustmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.inventory.RegisterAdjustment(r.Context(), claims, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Movements lists ledger movements of one supply, newest first.
// Optional desde/hasta query params bound the range (YYYY-MM-DD).
func (h *InventoryHandler) Movements(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	from, ok := parseDateParam(w, r.URL.Query().Get("desde"))
	if !ok {
		return
	}
	to, ok := parseDateParam(w, r.URL.Query().Get("hasta"))
	if !ok {
		return
	}
	if to != nil {
		end := to.Add(24 * time.Hour)
		to = &end
	}

	movements, err := h.inventory.Movements(r.Context(), claims, mux.Vars(r)["id"], from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if movements == nil {
		movements = []models.SupplyMovement{}
	}
	writeJSON(w, http.StatusOK, movements)
}

func parseDateParam(w http.ResponseWriter, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
