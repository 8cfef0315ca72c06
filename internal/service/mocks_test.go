package service

import (
	"context"
	"sync"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/db"
	"github.com/NOTSTEVEN4000/banano-api/internal/events"
	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

// MockTripCollection is a mock implementation of db.TripCollection
type MockTripCollection struct {
	mock.Mock
}

func (m *MockTripCollection) InsertTrip(ctx context.Context, trip models.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockTripCollection) FindTripByExternalID(ctx context.Context, empresaID, externalID string) (*models.Trip, error) {
	args := m.Called(ctx, empresaID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trip), args.Error(1)
}

func (m *MockTripCollection) FindTripsByDate(ctx context.Context, empresaID, date string) ([]models.Trip, error) {
	args := m.Called(ctx, empresaID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Trip), args.Error(1)
}

func (m *MockTripCollection) TransitionTrip(ctx context.Context, empresaID, externalID string, fromStates []models.TripState, set bson.M) (*models.Trip, error) {
	args := m.Called(ctx, empresaID, externalID, fromStates, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trip), args.Error(1)
}

func (m *MockTripCollection) AggregateDailySummary(ctx context.Context, empresaID, date string) ([]db.DailyTripRow, error) {
	args := m.Called(ctx, empresaID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db.DailyTripRow), args.Error(1)
}

// MockSupplyRecordCollection is a mock implementation of db.SupplyRecordCollection
type MockSupplyRecordCollection struct {
	mock.Mock
}

func (m *MockSupplyRecordCollection) InsertSupplyRecord(ctx context.Context, rec models.TripSupplyRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockSupplyRecordCollection) FindSupplyRecordByTrip(ctx context.Context, empresaID, tripID string) (*models.TripSupplyRecord, error) {
	args := m.Called(ctx, empresaID, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TripSupplyRecord), args.Error(1)
}

func (m *MockSupplyRecordCollection) ReplaceSupplyRecordItems(ctx context.Context, empresaID, tripID string, items []models.SupplyItem, farmID, updatedBy string) (*models.TripSupplyRecord, error) {
	args := m.Called(ctx, empresaID, tripID, items, farmID, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TripSupplyRecord), args.Error(1)
}

func (m *MockSupplyRecordCollection) DeleteSupplyRecordByTrip(ctx context.Context, empresaID, tripID string) error {
	args := m.Called(ctx, empresaID, tripID)
	return args.Error(0)
}

// MockFuelChargeCollection is a mock implementation of db.FuelChargeCollection
type MockFuelChargeCollection struct {
	mock.Mock
}

func (m *MockFuelChargeCollection) InsertFuelCharge(ctx context.Context, charge models.FuelCharge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockFuelChargeCollection) FindFuelChargesByTrip(ctx context.Context, empresaID, tripID string) ([]models.FuelCharge, error) {
	args := m.Called(ctx, empresaID, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FuelCharge), args.Error(1)
}

// MockBoxCargoCollection is a mock implementation of db.BoxCargoCollection
type MockBoxCargoCollection struct {
	mock.Mock
}

func (m *MockBoxCargoCollection) InsertBoxCargo(ctx context.Context, cargo models.BoxCargo) error {
	args := m.Called(ctx, cargo)
	return args.Error(0)
}

func (m *MockBoxCargoCollection) CountBoxCargoByTrip(ctx context.Context, empresaID, tripID string) (int64, error) {
	args := m.Called(ctx, empresaID, tripID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBoxCargoCollection) FindBoxCargoByTrip(ctx context.Context, empresaID, tripID string) ([]models.BoxCargo, error) {
	args := m.Called(ctx, empresaID, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BoxCargo), args.Error(1)
}

// MockSupplyCollection is a mock implementation of db.SupplyCollection
type MockSupplyCollection struct {
	mock.Mock
}

func (m *MockSupplyCollection) InsertSupply(ctx context.Context, supply models.Supply) error {
	args := m.Called(ctx, supply)
	return args.Error(0)
}

func (m *MockSupplyCollection) FindSupplyByType(ctx context.Context, empresaID string, supplyType models.SupplyType) (*models.Supply, error) {
	args := m.Called(ctx, empresaID, supplyType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supply), args.Error(1)
}

func (m *MockSupplyCollection) FindSupplyByExternalID(ctx context.Context, empresaID, externalID string) (*models.Supply, error) {
	args := m.Called(ctx, empresaID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supply), args.Error(1)
}

func (m *MockSupplyCollection) UpdateSupplyFields(ctx context.Context, empresaID, externalID string, set bson.M) (*models.Supply, error) {
	args := m.Called(ctx, empresaID, externalID, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supply), args.Error(1)
}

func (m *MockSupplyCollection) ListSupplies(ctx context.Context, empresaID string, lowStockOnly bool) ([]models.Supply, error) {
	args := m.Called(ctx, empresaID, lowStockOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Supply), args.Error(1)
}

func (m *MockSupplyCollection) BulkApplyEntries(ctx context.Context, updates []db.StockEntryUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockSupplyCollection) BulkWithdraw(ctx context.Context, withdrawals []db.StockWithdrawal) (int64, error) {
	args := m.Called(ctx, withdrawals)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplyCollection) AdjustStock(ctx context.Context, empresaID string, supplyType models.SupplyType, delta int, updatedBy string) (*models.Supply, error) {
	args := m.Called(ctx, empresaID, supplyType, delta, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supply), args.Error(1)
}

// MockMovementCollection is a mock implementation of db.MovementCollection
type MockMovementCollection struct {
	mock.Mock
}

func (m *MockMovementCollection) InsertMovements(ctx context.Context, movements []models.SupplyMovement) error {
	args := m.Called(ctx, movements)
	return args.Error(0)
}

func (m *MockMovementCollection) FindMovements(ctx context.Context, empresaID string, supplyType models.SupplyType, from, to *time.Time) ([]models.SupplyMovement, error) {
	args := m.Called(ctx, empresaID, supplyType, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SupplyMovement), args.Error(1)
}

// capturePublisher records every trip event for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.TripEvent
}

func (p *capturePublisher) PublishTripEvent(evt events.TripEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *capturePublisher) Events() []events.TripEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.TripEvent, len(p.events))
	copy(out, p.events)
	return out
}
