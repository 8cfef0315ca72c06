package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/db"
	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// InventoryService maintains the supply catalog and its append-only
// movement ledger (kardex).
type InventoryService struct {
	supplies  db.SupplyCollection
	movements db.MovementCollection
}

// NewInventoryService creates an inventory service.
func NewInventoryService(supplies db.SupplyCollection, movements db.MovementCollection) *InventoryService {
	return &InventoryService{supplies: supplies, movements: movements}
}

// CreateSupplyRequest is the input for a new catalog entry.
type CreateSupplyRequest struct {
	Type        models.SupplyType `json:"tipo"`
	Description string            `json:"descripcion"`
	Unit        string            `json:"unidad"`
	InitStock   int               `json:"stockInicial"`
	AvgCostUSD  float64           `json:"costoPromedioUSD"`
}

// CreateSupply adds a catalog entry. Each tenant has at most one entry
// per supply type.
func (s *InventoryService) CreateSupply(ctx context.Context, claims *models.Claims, req CreateSupplyRequest) (*models.Supply, error) {
	if !models.IsValidSupplyType(req.Type) {
		return nil, fmt.Errorf("%w: unknown supply type %q", ErrInvalidArgument, req.Type)
	}
	if req.InitStock < 0 {
		return nil, fmt.Errorf("%w: initial stock must be non-negative", ErrInvalidArgument)
	}

	unit := req.Unit
	if unit == "" {
		unit = "unidad"
	}
	supply := models.Supply{
		EmpresaID:   claims.EmpresaID,
		ExternalID:  fmt.Sprintf("INS-%s-%s", req.Type, strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))),
		Type:        req.Type,
		Description: req.Description,
		Unit:        unit,
		Stock:       req.InitStock,
		AvgCostUSD:  req.AvgCostUSD,
		CreatedBy:   claims.UserID,
		UpdatedBy:   claims.UserID,
	}
	if err := s.supplies.InsertSupply(ctx, supply); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: supply type %s already exists", ErrConflict, req.Type)
		}
		return nil, err
	}
	return &supply, nil
}

// GetSupply fetches a catalog entry by external id.
func (s *InventoryService) GetSupply(ctx context.Context, claims *models.Claims, externalID string) (*models.Supply, error) {
	supply, err := s.supplies.FindSupplyByExternalID(ctx, claims.EmpresaID, externalID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: supply %s", ErrNotFound, externalID)
		}
		return nil, err
	}
	return supply, nil
}

// UpdateSupplyRequest carries the mutable catalog fields.
type UpdateSupplyRequest struct {
	Description *string `json:"descripcion"`
	Unit        *string `json:"unidad"`
}

// UpdateSupply updates description/unit of a catalog entry.
func (s *InventoryService) UpdateSupply(ctx context.Context, claims *models.Claims, externalID string, req UpdateSupplyRequest) (*models.Supply, error) {
	set := bson.M{"actualizadoPor": claims.UserID}
	if req.Description != nil {
		set["descripcion"] = *req.Description
	}
	if req.Unit != nil {
		set["unidad"] = *req.Unit
	}

	supply, err := s.supplies.UpdateSupplyFields(ctx, claims.EmpresaID, externalID, set)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: supply %s", ErrNotFound, externalID)
		}
		return nil, err
	}
	return supply, nil
}

// ListSupplies lists catalog entries ascending by stock level,
// optionally restricted to entries under the low-stock threshold.
func (s *InventoryService) ListSupplies(ctx context.Context, claims *models.Claims, lowStockOnly bool) ([]models.Supply, error) {
	return s.supplies.ListSupplies(ctx, claims.EmpresaID, lowStockOnly)
}

// EntryItem is one line of an inventory entry batch.
type EntryItem struct {
	Type        models.SupplyType `json:"tipo"`
	Quantity    int               `json:"cantidad"`
	UnitCostUSD *float64          `json:"costoUnitarioUSD"`
}

// RegisterEntryRequest is an entry batch, e.g. a weekly purchase.
type RegisterEntryRequest struct {
	ExternalID string      `json:"idExterno"`
	Items      []EntryItem `json:"items"`
}

// RegisterEntryResult summarizes a stored entry batch.
type RegisterEntryResult struct {
	Saved        bool    `json:"guardado"`
	ExternalID   string  `json:"idExterno"`
	TotalItems   int     `json:"totalItems"`
	TotalCostUSD float64 `json:"totalCostoEstimado"`
}

// RegisterEntry increases stock for each item and recomputes the
// weighted-average cost when a unit cost is supplied. Every item is
// validated against the catalog before any write, so a bad line aborts
// the whole batch.
func (s *InventoryService) RegisterEntry(ctx context.Context, claims *models.Claims, req RegisterEntryRequest) (*RegisterEntryResult, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items must not be empty", ErrInvalidArgument)
	}

	updates := make([]db.StockEntryUpdate, 0, len(req.Items))
	movements := make([]models.SupplyMovement, 0, len(req.Items))
	var totalCost float64

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for %s", ErrInvalidArgument, item.Type)
		}
		supply, err := s.supplies.FindSupplyByType(ctx, claims.EmpresaID, item.Type)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("%w: supply %s is not in the catalog", ErrNotFound, item.Type)
			}
			return nil, err
		}

		newStock := supply.Stock + item.Quantity
		update := db.StockEntryUpdate{
			SupplyID:  supply.ID,
			NewStock:  newStock,
			UpdatedBy: claims.UserID,
		}

		unitCost := supply.AvgCostUSD
		if item.UnitCostUSD != nil {
			unitCost = *item.UnitCostUSD
			newAvg := (float64(supply.Stock)*supply.AvgCostUSD + float64(item.Quantity)**item.UnitCostUSD) / float64(newStock)
			update.NewAvgCost = &newAvg
		}
		lineTotal := unitCost * float64(item.Quantity)
		totalCost += lineTotal

		updates = append(updates, update)
		rounded := models.Round2(lineTotal)
		movements = append(movements, models.SupplyMovement{
			EmpresaID:   claims.EmpresaID,
			ExternalID:  "MOV-ENT-" + strconv.FormatInt(time.Now().UnixNano(), 36),
			Kind:        models.MovementEntry,
			Supply:      item.Type,
			Quantity:    item.Quantity,
			UnitCostUSD: item.UnitCostUSD,
			TotalUSD:    &rounded,
			ReferenceID: req.ExternalID,
			CreatedBy:   claims.UserID,
		})
	}

	if err := s.supplies.BulkApplyEntries(ctx, updates); err != nil {
		return nil, err
	}
	if err := s.movements.InsertMovements(ctx, movements); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"empresa": claims.EmpresaID,
		"entrada": req.ExternalID,
		"items":   len(req.Items),
	}).Info("Inventory entry registered")

	return &RegisterEntryResult{
		Saved:        true,
		ExternalID:   req.ExternalID,
		TotalItems:   len(req.Items),
		TotalCostUSD: models.Round2(totalCost),
	}, nil
}

// AdjustmentRequest is a signed manual stock correction.
type AdjustmentRequest struct {
	Type   models.SupplyType `json:"tipo"`
	Delta  int               `json:"diferencia"`
	Reason string            `json:"motivo"`
}

// AdjustmentResult reports the stock level after an adjustment.
type AdjustmentResult struct {
	Type     models.SupplyType `json:"tipo"`
	Delta    int               `json:"diferencia"`
	NewStock int               `json:"nuevoStock"`
	Reason   string            `json:"motivo"`
}

// RegisterAdjustment applies a signed delta. A delta that would leave
// the stock negative is rejected and leaves the level unchanged.
func (s *InventoryService) RegisterAdjustment(ctx context.Context, claims *models.Claims, req AdjustmentRequest) (*AdjustmentResult, error) {
	supply, err := s.supplies.FindSupplyByType(ctx, claims.EmpresaID, req.Type)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: supply %s", ErrNotFound, req.Type)
		}
		return nil, err
	}
	if supply.Stock+req.Delta < 0 {
		return nil, fmt.Errorf("%w: adjustment would leave negative stock", ErrInvalidArgument)
	}

	updated, err := s.supplies.AdjustStock(ctx, claims.EmpresaID, req.Type, req.Delta, claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// stock moved under us and the guard in the filter refused
			return nil, fmt.Errorf("%w: stock changed concurrently", ErrConflict)
		}
		return nil, err
	}

	qty := req.Delta
	if qty < 0 {
		qty = -qty
	}
	movement := models.SupplyMovement{
		EmpresaID:   claims.EmpresaID,
		ExternalID:  "MOV-AJ-" + strconv.FormatInt(time.Now().UnixNano(), 36),
		Kind:        models.MovementAdjustment,
		Supply:      req.Type,
		Quantity:    qty,
		Delta:       req.Delta,
		Reason:      req.Reason,
		ReferenceID: req.Reason,
		CreatedBy:   claims.UserID,
	}
	if err := s.movements.InsertMovements(ctx, []models.SupplyMovement{movement}); err != nil {
		return nil, err
	}

	return &AdjustmentResult{
		Type:     req.Type,
		Delta:    req.Delta,
		NewStock: updated.Stock,
		Reason:   req.Reason,
	}, nil
}

// RegisterTripWithdrawal decrements stock for every delivery item of a
// trip. All items are checked against current stock before any write;
// the decrements themselves are guarded, so stock never goes negative
// even when a concurrent withdrawal races past the pre-check.
func (s *InventoryService) RegisterTripWithdrawal(ctx context.Context, claims *models.Claims, tripID string, items []models.SupplyItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: items must not be empty", ErrInvalidArgument)
	}

	withdrawals := make([]db.StockWithdrawal, 0, len(items))
	movements := make([]models.SupplyMovement, 0, len(items))

	for _, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive for %s", ErrInvalidArgument, item.Supply)
		}
		supply, err := s.supplies.FindSupplyByType(ctx, claims.EmpresaID, item.Supply)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("%w: insufficient stock of %s, available: 0", ErrInvalidArgument, item.Supply)
			}
			return err
		}
		if supply.Stock < item.Quantity {
			return fmt.Errorf("%w: insufficient stock of %s, available: %d", ErrInvalidArgument, item.Supply, supply.Stock)
		}

		withdrawals = append(withdrawals, db.StockWithdrawal{
			SupplyID:  supply.ID,
			Quantity:  item.Quantity,
			UpdatedBy: claims.UserID,
		})
		movements = append(movements, models.SupplyMovement{
			EmpresaID:   claims.EmpresaID,
			ExternalID:  "MOV-SALVIAJE-" + strconv.FormatInt(time.Now().UnixNano(), 36),
			Kind:        models.MovementTripWithdrawal,
			Supply:      item.Supply,
			Quantity:    item.Quantity,
			ReferenceID: tripID,
			CreatedBy:   claims.UserID,
		})
	}

	matched, err := s.supplies.BulkWithdraw(ctx, withdrawals)
	if err != nil {
		return err
	}
	if matched < int64(len(withdrawals)) {
		return fmt.Errorf("%w: stock changed concurrently during withdrawal", ErrConflict)
	}
	if err := s.movements.InsertMovements(ctx, movements); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"empresa": claims.EmpresaID,
		"trip":    tripID,
		"items":   len(items),
	}).Info("Trip withdrawal registered")
	return nil
}

// Movements lists the kardex of a supply (looked up by external id),
// newest first, optionally bounded by a date range.
func (s *InventoryService) Movements(ctx context.Context, claims *models.Claims, supplyExternalID string, from, to *time.Time) ([]models.SupplyMovement, error) {
	supply, err := s.supplies.FindSupplyByExternalID(ctx, claims.EmpresaID, supplyExternalID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: supply %s", ErrNotFound, supplyExternalID)
		}
		return nil, err
	}
	return s.movements.FindMovements(ctx, claims.EmpresaID, supply.Type, from, to)
}
