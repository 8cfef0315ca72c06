package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/db"
	"github.com/NOTSTEVEN4000/banano-api/internal/middleware"
	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// CatalogHandler handles vehicle and farm catalog requests
type CatalogHandler struct {
	vehicles db.VehicleCollection
	farms    db.FarmCollection
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(vehicles db.VehicleCollection, farms db.FarmCollection) *CatalogHandler {
	return &CatalogHandler{vehicles: vehicles, farms: farms}
}

type createVehicleRequest struct {
	Plate  string `json:"placa"`
	Name   string `json:"nombre"`
	BoxCap *int   `json:"capacidadCajas"`
	Kind   string `json:"tipo"`
	Brand  string `json:"marca"`
	Model  string `json:"modelo"`
	Year   int    `json:"anio"`
}

// CreateVehicle registers a vehicle. Plates are normalized to upper
// case and unique per tenant.
func (h *CatalogHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req createVehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	plate := strings.ToUpper(strings.TrimSpace(req.Plate))
	if plate == "" {
		writeError(w, http.StatusBadRequest, "Plate is required")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if existing, err := h.vehicles.FindVehicleByPlate(r.Context(), claims.EmpresaID, plate); err == nil && existing != nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("Vehicle with plate %s already exists", plate))
		return
	}

	now := time.Now()
	vehicle := models.Vehicle{
		EmpresaID:  claims.EmpresaID,
		ExternalID: fmt.Sprintf("veh-%d", now.UnixMilli()),
		Plate:      plate,
		Name:       req.Name,
		BoxCap:     req.BoxCap,
		Kind:       req.Kind,
		Brand:      req.Brand,
		Model:      req.Model,
		Year:       req.Year,
		Status:     "Disponible",
		Active:     true,
		CreatedBy:  claims.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.vehicles.InsertVehicle(r.Context(), vehicle); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			writeError(w, http.StatusConflict, fmt.Sprintf("Vehicle with plate %s already exists", plate))
			return
		}
		logrus.WithError(err).Error("Failed to insert vehicle")
		writeError(w, http.StatusInternalServerError, "Failed to create vehicle")
		return
	}

	writeJSON(w, http.StatusCreated, vehicle)
}

// GetVehicle returns one active vehicle by external id.
func (h *CatalogHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	vehicle, err := h.vehicles.FindVehicleByExternalID(r.Context(), claims.EmpresaID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch vehicle")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// ListVehicles lists the tenant's vehicles. Include inactive ones with
// ?todos=true.
func (h *CatalogHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	activeOnly := r.URL.Query().Get("todos") != "true"
	vehicles, err := h.vehicles.ListVehicles(r.Context(), claims.EmpresaID, activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list vehicles")
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// DeactivateVehicle soft deletes a vehicle, keeping its history.
func (h *CatalogHandler) DeactivateVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	err := h.vehicles.DeactivateVehicle(r.Context(), claims.EmpresaID, mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to deactivate vehicle")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"eliminado": true})
}

type createFarmRequest struct {
	Name     string `json:"nombre"`
	Location string `json:"ubicacion"`
}

// CreateFarm registers a farm destination.
func (h *CatalogHandler) CreateFarm(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req createFarmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	now := time.Now()
	farm := models.Farm{
		EmpresaID:  claims.EmpresaID,
		ExternalID: fmt.Sprintf("hac-%d", now.UnixMilli()),
		Name:       req.Name,
		Location:   req.Location,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.farms.InsertFarm(r.Context(), farm); err != nil {
		logrus.WithError(err).Error("Failed to insert farm")
		writeError(w, http.StatusInternalServerError, "Failed to create farm")
		return
	}

	writeJSON(w, http.StatusCreated, farm)
}

// ListFarms lists the tenant's farms by name.
func (h *CatalogHandler) ListFarms(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	farms, err := h.farms.ListFarms(r.Context(), claims.EmpresaID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list farms")
		return
	}
	if farms == nil {
		farms = []models.Farm{}
	}
	writeJSON(w, http.StatusOK, farms)
}
