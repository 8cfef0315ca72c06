package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/db"
	"github.com/NOTSTEVEN4000/banano-api/internal/events"
	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// TripService owns the trip lifecycle: creation, state transitions and
// the satellite records attached while a trip is under way.
type TripService struct {
	trips      db.TripCollection
	supplyRecs db.SupplyRecordCollection
	fuel       db.FuelChargeCollection
	cargo      db.BoxCargoCollection
	inventory  *InventoryService
	events     events.Publisher
}

// NewTripService creates a trip service with its collaborators.
func NewTripService(
	trips db.TripCollection,
	supplyRecs db.SupplyRecordCollection,
	fuel db.FuelChargeCollection,
	cargo db.BoxCargoCollection,
	inventory *InventoryService,
	publisher events.Publisher,
) *TripService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &TripService{
		trips:      trips,
		supplyRecs: supplyRecs,
		fuel:       fuel,
		cargo:      cargo,
		inventory:  inventory,
		events:     publisher,
	}
}

// CreateTripRequest is the already-validated input for trip creation.
type CreateTripRequest struct {
	Date        string             `json:"fecha"`
	Type        models.TripType    `json:"tipo"`
	VehicleID   string             `json:"vehiculoIdExterno"`
	Destination models.Destination `json:"destino"`
	Notes       string             `json:"notas"`
}

// TripStateResult is the short acknowledgement of a lifecycle change.
type TripStateResult struct {
	ExternalID string           `json:"idExterno"`
	State      models.TripState `json:"estado"`
	Type       models.TripType  `json:"tipo,omitempty"`
	Date       string           `json:"fecha,omitempty"`
	StartedAt  *time.Time       `json:"fechaInicio,omitempty"`
	EndedAt    *time.Time       `json:"fechaFin,omitempty"`
}

// Create registers a trip in CREADO state with a generated external id.
func (s *TripService) Create(ctx context.Context, claims *models.Claims, req CreateTripRequest) (*TripStateResult, error) {
	if req.Date == "" || req.VehicleID == "" {
		return nil, fmt.Errorf("%w: fecha and vehiculoIdExterno are required", ErrInvalidArgument)
	}
	if !models.IsValidTripType(req.Type) {
		return nil, fmt.Errorf("%w: unknown trip type %q", ErrInvalidArgument, req.Type)
	}
	if !models.IsValidDestinationKind(req.Destination.Kind) {
		return nil, fmt.Errorf("%w: unknown destination kind %q", ErrInvalidArgument, req.Destination.Kind)
	}
	if req.Destination.Kind == models.DestinationFarm && req.Destination.FarmID == "" {
		return nil, fmt.Errorf("%w: destino.haciendaIdExterno is required when tipoDestino=HACIENDA", ErrInvalidArgument)
	}
	if req.Destination.Kind == models.DestinationClient && req.Destination.ClientID == "" {
		return nil, fmt.Errorf("%w: destino.clienteIdExterno is required when tipoDestino=CLIENTE", ErrInvalidArgument)
	}

	trip := models.Trip{
		EmpresaID:  claims.EmpresaID,
		ExternalID: fmt.Sprintf("via-%s-%d", req.Date, time.Now().UnixMilli()),
		Date:       req.Date,
		Type:       req.Type,
		State:      models.TripStateCreated,
		VehicleID:  req.VehicleID,
		Destino:    req.Destination,
		Notes:      req.Notes,
		Active:     true,
		CreatedBy:  claims.UserID,
		UpdatedBy:  claims.UserID,
	}

	if err := s.trips.InsertTrip(ctx, trip); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: trip idExterno already exists", ErrConflict)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"empresa": claims.EmpresaID,
		"trip":    trip.ExternalID,
		"tipo":    trip.Type,
	}).Info("Trip created")
	s.publish(&trip)

	return &TripStateResult{
		ExternalID: trip.ExternalID,
		State:      trip.State,
		Type:       trip.Type,
		Date:       trip.Date,
	}, nil
}

// ListByDate lists the active trips of a calendar day.
func (s *TripService) ListByDate(ctx context.Context, claims *models.Claims, date string) ([]models.Trip, error) {
	return s.trips.FindTripsByDate(ctx, claims.EmpresaID, date)
}

// Start moves a trip to EN_RUTA and stamps the start time. Starting a
// trip that is already EN_RUTA is a no-op returning the current state.
func (s *TripService) Start(ctx context.Context, claims *models.Claims, tripID string) (*TripStateResult, error) {
	trip, err := s.findTrip(ctx, claims.EmpresaID, tripID)
	if err != nil {
		return nil, err
	}

	switch trip.State {
	case models.TripStateCancelled:
		return nil, fmt.Errorf("%w: cannot start a cancelled trip", ErrInvalidState)
	case models.TripStateDelivered:
		return nil, fmt.Errorf("%w: trip already delivered", ErrInvalidState)
	case models.TripStateEnRoute:
		// idempotent
		return &TripStateResult{ExternalID: trip.ExternalID, State: trip.State, StartedAt: trip.StartedAt}, nil
	}

	now := time.Now()
	updated, err := s.trips.TransitionTrip(ctx, claims.EmpresaID, tripID,
		[]models.TripState{models.TripStateCreated},
		bson.M{
			"estado":         models.TripStateEnRoute,
			"fechaInicio":    now,
			"actualizadoPor": claims.UserID,
		})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// the read above saw CREADO; someone else transitioned since
			return nil, fmt.Errorf("%w: trip state changed concurrently", ErrConflict)
		}
		return nil, err
	}

	log.WithFields(log.Fields{"empresa": claims.EmpresaID, "trip": tripID}).Info("Trip started")
	s.publish(updated)

	return &TripStateResult{ExternalID: updated.ExternalID, State: updated.State, StartedAt: updated.StartedAt}, nil
}

// Cancel moves a trip to the terminal ANULADO state. Only trips that
// have not been delivered can be cancelled.
func (s *TripService) Cancel(ctx context.Context, claims *models.Claims, tripID string) (*TripStateResult, error) {
	trip, err := s.findTrip(ctx, claims.EmpresaID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.State.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot cancel a trip in state %s", ErrInvalidState, trip.State)
	}

	updated, err := s.trips.TransitionTrip(ctx, claims.EmpresaID, tripID,
		[]models.TripState{models.TripStateCreated, models.TripStateEnRoute},
		bson.M{
			"estado":         models.TripStateCancelled,
			"actualizadoPor": claims.UserID,
		})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: trip state changed concurrently", ErrConflict)
		}
		return nil, err
	}

	log.WithFields(log.Fields{"empresa": claims.EmpresaID, "trip": tripID}).Info("Trip cancelled")
	s.publish(updated)

	return &TripStateResult{ExternalID: updated.ExternalID, State: updated.State}, nil
}

// SupplyDeliveryRequest carries the delivery record of a SUPPLIES trip.
type SupplyDeliveryRequest struct {
	ExternalID string              `json:"idExterno"`
	FarmID     string              `json:"haciendaIdExterno"`
	Items      []models.SupplyItem `json:"items"`
}

// AttachSupplyDelivery attaches the one-per-trip delivery record to a
// SUPPLIES trip that is not yet closed.
func (s *TripService) AttachSupplyDelivery(ctx context.Context, claims *models.Claims, tripID string, req SupplyDeliveryRequest) error {
	trip, err := s.findTrip(ctx, claims.EmpresaID, tripID)
	if err != nil {
		return err
	}
	if trip.Type != models.TripTypeSupplies {
		return fmt.Errorf("%w: trip is not of type INSUMOS", ErrInvalidState)
	}
	if trip.State.IsTerminal() {
		return fmt.Errorf("%w: cannot register supplies on a trip in state %s", ErrInvalidState, trip.State)
	}
	if err := validateSupplyItems(req.Items); err != nil {
		return err
	}

	rec := models.TripSupplyRecord{
		EmpresaID:  claims.EmpresaID,
		ExternalID: req.ExternalID,
		TripID:     tripID,
		FarmID:     req.FarmID,
		Items:      req.Items,
		CreatedBy:  claims.UserID,
		UpdatedBy:  claims.UserID,
	}
	if err := s.supplyRecs.InsertSupplyRecord(ctx, rec); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return fmt.Errorf("%w: trip already has a supply record", ErrConflict)
		}
		return err
	}
	return nil
}

// UpdateSupplyDelivery replaces the item list of an existing record.
func (s *TripService) UpdateSupplyDelivery(ctx context.Context, claims *models.Claims, tripID string, req SupplyDeliveryRequest) (*models.TripSupplyRecord, error) {
	if _, err := s.findTrip(ctx, claims.EmpresaID, tripID); err != nil {
		return nil, err
	}
	if err := validateSupplyItems(req.Items); err != nil {
		return nil, err
	}

	rec, err := s.supplyRecs.ReplaceSupplyRecordItems(ctx, claims.EmpresaID, tripID, req.Items, req.FarmID, claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: trip has no supply record yet", ErrNotFound)
		}
		return nil, err
	}
	return rec, nil
}

// GetSupplyDelivery fetches the delivery record of a trip.
func (s *TripService) GetSupplyDelivery(ctx context.Context, claims *models.Claims, tripID string) (*models.TripSupplyRecord, error) {
	rec, err := s.supplyRecs.FindSupplyRecordByTrip(ctx, claims.EmpresaID, tripID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: trip has no supply record", ErrNotFound)
		}
		return nil, err
	}
	return rec, nil
}

// DeleteSupplyDelivery removes the delivery record of a trip.
func (s *TripService) DeleteSupplyDelivery(ctx context.Context, claims *models.Claims, tripID string) error {
	err := s.supplyRecs.DeleteSupplyRecordByTrip(ctx, claims.EmpresaID, tripID)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: trip has no supply record", ErrNotFound)
	}
	return err
}

// BoxCargoRequest carries one cargo purchase, optionally with a direct sale.
type BoxCargoRequest struct {
	ExternalID   string   `json:"idExterno"`
	SupplierID   string   `json:"proveedorIdExterno"`
	FarmID       string   `json:"haciendaIdExterno"`
	Boxes        int      `json:"cantidadCajas"`
	UnitCostUSD  float64  `json:"costoCompraUnitario"`
	ClientID     string   `json:"clienteIdExterno"`
	UnitPriceUSD *float64 `json:"precioVentaUnitario"`
}

// BoxCargoResult reports the derived totals of a stored cargo entry.
type BoxCargoResult struct {
	PurchaseUSD float64  `json:"totalCompra"`
	SaleUSD     *float64 `json:"totalVenta"`
	MarginUSD   *float64 `json:"utilidadBruta"`
}

// AttachBoxCargo appends a cargo entry to a BOXES trip that is not yet
// closed, computing purchase/sale totals and gross margin.
func (s *TripService) AttachBoxCargo(ctx context.Context, claims *models.Claims, tripID string, req BoxCargoRequest) (*BoxCargoResult, error) {
	trip, err := s.findTrip(ctx, claims.EmpresaID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Type != models.TripTypeBoxes {
		return nil, fmt.Errorf("%w: trip is not of type CAJAS", ErrInvalidState)
	}
	if trip.State.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot add cargo on a trip in state %s", ErrInvalidState, trip.State)
	}
	if req.Boxes < 0 || req.UnitCostUSD < 0 {
		return nil, fmt.Errorf("%w: box count and unit cost must be non-negative", ErrInvalidArgument)
	}
	if req.UnitPriceUSD != nil && *req.UnitPriceUSD < 0 {
		return nil, fmt.Errorf("%w: unit sale price must be non-negative", ErrInvalidArgument)
	}

	cargo := models.BoxCargo{
		EmpresaID:    claims.EmpresaID,
		ExternalID:   req.ExternalID,
		TripID:       tripID,
		SupplierID:   req.SupplierID,
		FarmID:       req.FarmID,
		Boxes:        req.Boxes,
		UnitCostUSD:  req.UnitCostUSD,
		Currency:     "USD",
		ClientID:     req.ClientID,
		UnitPriceUSD: req.UnitPriceUSD,
		CreatedBy:    claims.UserID,
		UpdatedBy:    claims.UserID,
	}
	cargo.ComputeTotals()

	if err := s.cargo.InsertBoxCargo(ctx, cargo); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: cargo idExterno already exists", ErrConflict)
		}
		return nil, err
	}

	return &BoxCargoResult{
		PurchaseUSD: cargo.PurchaseUSD,
		SaleUSD:     cargo.SaleUSD,
		MarginUSD:   cargo.MarginUSD,
	}, nil
}

// FuelChargeRequest carries one fuel purchase.
type FuelChargeRequest struct {
	ExternalID string    `json:"idExterno"`
	At         time.Time `json:"fechaHora"`
	AmountUSD  float64   `json:"montoUSD"`
	Liters     *float64  `json:"litros"`
	Detail     string    `json:"detalle"`
}

// AttachFuelCharge appends a fuel charge to any trip not yet closed.
func (s *TripService) AttachFuelCharge(ctx context.Context, claims *models.Claims, tripID string, req FuelChargeRequest) error {
	trip, err := s.findTrip(ctx, claims.EmpresaID, tripID)
	if err != nil {
		return err
	}
	if trip.State.IsTerminal() {
		return fmt.Errorf("%w: cannot register fuel on a trip in state %s", ErrInvalidState, trip.State)
	}
	if req.AmountUSD < 0 {
		return fmt.Errorf("%w: montoUSD must be non-negative", ErrInvalidArgument)
	}

	charge := models.FuelCharge{
		EmpresaID:  claims.EmpresaID,
		ExternalID: req.ExternalID,
		TripID:     tripID,
		At:         req.At,
		AmountUSD:  req.AmountUSD,
		Liters:     req.Liters,
		Detail:     req.Detail,
		CreatedBy:  claims.UserID,
		UpdatedBy:  claims.UserID,
	}
	if err := s.fuel.InsertFuelCharge(ctx, charge); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return fmt.Errorf("%w: fuel charge idExterno already exists", ErrConflict)
		}
		return err
	}
	return nil
}

// ListFuelCharges lists a trip's fuel charges, newest first.
func (s *TripService) ListFuelCharges(ctx context.Context, claims *models.Claims, tripID string) ([]models.FuelCharge, error) {
	return s.fuel.FindFuelChargesByTrip(ctx, claims.EmpresaID, tripID)
}

// ListBoxCargo lists a trip's box cargo entries.
func (s *TripService) ListBoxCargo(ctx context.Context, claims *models.Claims, tripID string) ([]models.BoxCargo, error) {
	return s.cargo.FindBoxCargoByTrip(ctx, claims.EmpresaID, tripID)
}

// Deliver closes an EN_RUTA trip. SUPPLIES trips need a non-empty
// delivery record, whose items are withdrawn from inventory; BOXES
// trips need at least one cargo entry.
func (s *TripService) Deliver(ctx context.Context, claims *models.Claims, tripID, observation string) (*TripStateResult, error) {
	trip, err := s.findTrip(ctx, claims.EmpresaID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.State != models.TripStateEnRoute {
		return nil, fmt.Errorf("%w: trip must be EN_RUTA to deliver", ErrInvalidState)
	}

	switch trip.Type {
	case models.TripTypeSupplies:
		rec, err := s.supplyRecs.FindSupplyRecordByTrip(ctx, claims.EmpresaID, tripID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("%w: supplies not registered for this trip", ErrInvalidArgument)
			}
			return nil, err
		}
		if len(rec.Items) == 0 {
			return nil, fmt.Errorf("%w: supply item list is empty", ErrInvalidArgument)
		}
		// Zero-quantity lines are valid on the record but carry no stock.
		withdraw := make([]models.SupplyItem, 0, len(rec.Items))
		for _, it := range rec.Items {
			if it.Quantity > 0 {
				withdraw = append(withdraw, it)
			}
		}
		if len(withdraw) > 0 {
			if err := s.inventory.RegisterTripWithdrawal(ctx, claims, tripID, withdraw); err != nil {
				return nil, err
			}
		}
	case models.TripTypeBoxes:
		count, err := s.cargo.CountBoxCargoByTrip(ctx, claims.EmpresaID, tripID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: no box cargo registered for this trip", ErrInvalidArgument)
		}
	}

	now := time.Now()
	set := bson.M{
		"estado":         models.TripStateDelivered,
		"fechaFin":       now,
		"actualizadoPor": claims.UserID,
	}
	if observation != "" {
		set["notas"] = strings.TrimSpace(trip.Notes + "\n[ENTREGA] " + observation)
	}

	updated, err := s.trips.TransitionTrip(ctx, claims.EmpresaID, tripID,
		[]models.TripState{models.TripStateEnRoute}, set)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: trip state changed concurrently", ErrConflict)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"empresa": claims.EmpresaID,
		"trip":    tripID,
		"tipo":    trip.Type,
	}).Info("Trip delivered")
	s.publish(updated)

	return &TripStateResult{ExternalID: updated.ExternalID, State: updated.State, EndedAt: updated.EndedAt}, nil
}

func (s *TripService) findTrip(ctx context.Context, empresaID, tripID string) (*models.Trip, error) {
	trip, err := s.trips.FindTripByExternalID(ctx, empresaID, tripID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: trip %s", ErrNotFound, tripID)
		}
		return nil, err
	}
	return trip, nil
}

func (s *TripService) publish(trip *models.Trip) {
	s.events.PublishTripEvent(events.TripEvent{
		EmpresaID:  trip.EmpresaID,
		ExternalID: trip.ExternalID,
		Type:       string(trip.Type),
		State:      string(trip.State),
		Date:       trip.Date,
		At:         time.Now(),
	})
}

func validateSupplyItems(items []models.SupplyItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: items must not be empty", ErrInvalidArgument)
	}
	for _, it := range items {
		if !models.IsValidSupplyType(it.Supply) {
			return fmt.Errorf("%w: unknown supply type %q", ErrInvalidArgument, it.Supply)
		}
		if it.Quantity < 0 {
			return fmt.Errorf("%w: item quantity must be non-negative", ErrInvalidArgument)
		}
	}
	return nil
}
