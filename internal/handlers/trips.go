package handlers

import (
	"net/http"

	"github.com/NOTSTEVEN4000/banano-api/internal/middleware"
	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"github.com/NOTSTEVEN4000/banano-api/internal/service"
	"github.com/gorilla/mux"
)

// TripHandler handles trip lifecycle requests
type TripHandler struct {
	trips *service.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(trips *service.TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

// Create registers a new trip for the caller's tenant.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req service.CreateTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.trips.Create(r.Context(), claims, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListByDate lists the tenant's trips for one operational date.
func (h *TripHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	date := r.URL.Query().Get("fecha")
	trips, err := h.trips.ListByDate(r.Context(), claims, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if trips == nil {
		trips = []models.Trip{}
	}
	writeJSON(w, http.StatusOK, trips)
}

// Start moves a trip from CREADO to EN_RUTA.
func (h *TripHandler) Start(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	result, err := h.trips.Start(r.Context(), claims, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Cancel voids a trip that has not been delivered.
func (h *TripHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	result, err := h.trips.Cancel(r.Context(), claims, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type deliverRequest struct {
	Observation string `json:"observacion"`
}

// Deliver closes a trip in EN_RUTA, applying the inventory withdrawal
// for supply trips.
func (h *TripHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req deliverRequest
	if r.ContentLength > 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	result, err := h.trips.Deliver(r.Context(), claims, mux.Vars(r)["id"], req.Observation)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AttachSupplyDelivery attaches the delivery record to a supply trip.
func (h *TripHandler) AttachSupplyDelivery(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req service.SupplyDeliveryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.trips.AttachSupplyDelivery(r.Context(), claims, mux.Vars(r)["id"], req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"guardado": true})
}

// GetSupplyDelivery returns the delivery record of a supply trip.
func (h *TripHandler) GetSupplyDelivery(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	record, err := h.trips.GetSupplyDelivery(r.Context(), claims, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// UpdateSupplyDelivery replaces the items of a delivery record.
func (h *TripHandler) UpdateSupplyDelivery(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req service.SupplyDeliveryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := h.trips.UpdateSupplyDelivery(r.Context(), claims, mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// DeleteSupplyDelivery removes the delivery record of a supply trip.
func (h *TripHandler) DeleteSupplyDelivery(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.trips.DeleteSupplyDelivery(r.Context(), claims, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"eliminado": true})
}

// AttachBoxCargo appends a cargo entry to a box trip.
func (h *TripHandler) AttachBoxCargo(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req service.BoxCargoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.trips.AttachBoxCargo(r.Context(), claims, mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// AttachFuelCharge appends a fuel charge to a trip.
func (h *TripHandler) AttachFuelCharge(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req service.FuelChargeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.trips.AttachFuelCharge(r.Context(), claims, mux.Vars(r)["id"], req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"guardado": true})
}

// ListFuelCharges lists the fuel charges of a trip, newest first.
func (h *TripHandler) ListFuelCharges(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	charges, err := h.trips.ListFuelCharges(r.Context(), claims, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if charges == nil {
		charges = []models.FuelCharge{}
	}
	writeJSON(w, http.StatusOK, charges)
}

// ListBoxCargo lists the box cargo entries of a trip.
func (h *TripHandler) ListBoxCargo(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	cargo, err := h.trips.ListBoxCargo(r.Context(), claims, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if cargo == nil {
		cargo = []models.BoxCargo{}
	}
	writeJSON(w, http.StatusOK, cargo)
}
