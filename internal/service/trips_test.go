package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/db"
	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type tripFixture struct {
	service    *TripService
	trips      *MockTripCollection
	supplyRecs *MockSupplyRecordCollection
	fuel       *MockFuelChargeCollection
	cargo      *MockBoxCargoCollection
	supplies   *MockSupplyCollection
	movements  *MockMovementCollection
	publisher  *capturePublisher
}

func newTripFixture() *tripFixture {
	f := &tripFixture{
		trips:      new(MockTripCollection),
		supplyRecs: new(MockSupplyRecordCollection),
		fuel:       new(MockFuelChargeCollection),
		cargo:      new(MockBoxCargoCollection),
		supplies:   new(MockSupplyCollection),
		movements:  new(MockMovementCollection),
		publisher:  &capturePublisher{},
	}
	inventory := NewInventoryService(f.supplies, f.movements)
	f.service = NewTripService(f.trips, f.supplyRecs, f.fuel, f.cargo, inventory, f.publisher)
	return f
}

func testClaims() *models.Claims {
	return &models.Claims{
		UserID:    "user-1",
		Username:  "operador1",
		Role:      models.RoleOperator,
		EmpresaID: "emp-42",
	}
}

func TestTripService_Create(t *testing.T) {
	f := newTripFixture()
	claims := testClaims()

	f.trips.On("InsertTrip", mock.Anything, mock.MatchedBy(func(trip models.Trip) bool {
		return trip.EmpresaID == "emp-42" &&
			trip.State == models.TripStateCreated &&
			trip.Active &&
			strings.HasPrefix(trip.ExternalID, "via-2026-08-31-")
	})).Return(nil)

	result, err := f.service.Create(context.Background(), claims, CreateTripRequest{
		Date:        "2026-08-31",
		Type:        models.TripTypeSupplies,
		VehicleID:   "veh-1",
		Destination: models.Destination{Kind: models.DestinationFarm, FarmID: "hac-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, models.TripStateCreated, result.State)
	assert.True(t, strings.HasPrefix(result.ExternalID, "via-2026-08-31-"))

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "emp-42", events[0].EmpresaID)
	assert.Equal(t, "CREADO", events[0].State)
	f.trips.AssertExpectations(t)
}

func TestTripService_Create_Validation(t *testing.T) {
	f := newTripFixture()
	claims := testClaims()
	ctx := context.Background()

	_, err := f.service.Create(ctx, claims, CreateTripRequest{
		Type:        models.TripTypeSupplies,
		VehicleID:   "veh-1",
		Destination: models.Destination{Kind: models.DestinationWarehouse},
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.service.Create(ctx, claims, CreateTripRequest{
		Date:        "2026-08-31",
		Type:        "TURISMO",
		VehicleID:   "veh-1",
		Destination: models.Destination{Kind: models.DestinationWarehouse},
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// farm destination needs a farm id
	_, err = f.service.Create(ctx, claims, CreateTripRequest{
		Date:        "2026-08-31",
		Type:        models.TripTypeSupplies,
		VehicleID:   "veh-1",
		Destination: models.Destination{Kind: models.DestinationFarm},
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	f.trips.AssertNotCalled(t, "InsertTrip", mock.Anything, mock.Anything)
}

func TestTripService_Create_DuplicateID(t *testing.T) {
	f := newTripFixture()
	f.trips.On("InsertTrip", mock.Anything, mock.Anything).Return(db.ErrDuplicateKey)

	_, err := f.service.Create(context.Background(), testClaims(), CreateTripRequest{
		Date:        "2026-08-31",
		Type:        models.TripTypeBoxes,
		VehicleID:   "veh-1",
		Destination: models.Destination{Kind: models.DestinationWarehouse},
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTripService_Start(t *testing.T) {
	f := newTripFixture()
	claims := testClaims()
	now := time.Now()

	created := &models.Trip{
		EmpresaID:  "emp-42",
		ExternalID: "via-2026-08-31-1",
		State:      models.TripStateCreated,
		Type:       models.TripTypeSupplies,
	}
	started := &models.Trip{
		EmpresaID:  "emp-42",
		ExternalID: "via-2026-08-31-1",
		State:      models.TripStateEnRoute,
		StartedAt:  &now,
	}

	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-2026-08-31-1").Return(created, nil)
	f.trips.On("TransitionTrip", mock.Anything, "emp-42", "via-2026-08-31-1",
		[]models.TripState{models.TripStateCreated}, mock.Anything).Return(started, nil)

	result, err := f.service.Start(context.Background(), claims, "via-2026-08-31-1")
	require.NoError(t, err)
	assert.Equal(t, models.TripStateEnRoute, result.State)
	require.NotNil(t, result.StartedAt)
	f.trips.AssertExpectations(t)
}

func TestTripService_Start_Idempotent(t *testing.T) {
	f := newTripFixture()
	startedAt := time.Now().Add(-time.Hour)

	trip := &models.Trip{
		EmpresaID:  "emp-42",
		ExternalID: "via-1",
		State:      models.TripStateEnRoute,
		StartedAt:  &startedAt,
	}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)

	result, err := f.service.Start(context.Background(), testClaims(), "via-1")
	require.NoError(t, err)
	assert.Equal(t, models.TripStateEnRoute, result.State)
	assert.Equal(t, &startedAt, result.StartedAt)

	// no write: the original start time must survive a second call
	f.trips.AssertNotCalled(t, "TransitionTrip", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTripService_Start_TerminalStates(t *testing.T) {
	for _, state := range []models.TripState{models.TripStateDelivered, models.TripStateCancelled} {
		f := newTripFixture()
		trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", State: state}
		f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)

		_, err := f.service.Start(context.Background(), testClaims(), "via-1")
		assert.ErrorIs(t, err, ErrInvalidState, "state %s", state)
	}
}

func TestTripService_Start_ConcurrentTransition(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", State: models.TripStateCreated}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.trips.On("TransitionTrip", mock.Anything, "emp-42", "via-1", mock.Anything, mock.Anything).
		Return(nil, db.ErrNotFound)

	_, err := f.service.Start(context.Background(), testClaims(), "via-1")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTripService_Cancel(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", State: models.TripStateEnRoute}
	cancelled := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", State: models.TripStateCancelled}

	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.trips.On("TransitionTrip", mock.Anything, "emp-42", "via-1",
		[]models.TripState{models.TripStateCreated, models.TripStateEnRoute}, mock.Anything).
		Return(cancelled, nil)

	result, err := f.service.Cancel(context.Background(), testClaims(), "via-1")
	require.NoError(t, err)
	assert.Equal(t, models.TripStateCancelled, result.State)
}

func TestTripService_Cancel_AlreadyDelivered(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", State: models.TripStateDelivered}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)

	_, err := f.service.Cancel(context.Background(), testClaims(), "via-1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTripService_AttachSupplyDelivery(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{
		EmpresaID:  "emp-42",
		ExternalID: "via-1",
		Type:       models.TripTypeSupplies,
		State:      models.TripStateCreated,
	}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.supplyRecs.On("InsertSupplyRecord", mock.Anything, mock.MatchedBy(func(rec models.TripSupplyRecord) bool {
		return rec.TripID == "via-1" && len(rec.Items) == 2
	})).Return(nil)

	err := f.service.AttachSupplyDelivery(context.Background(), testClaims(), "via-1", SupplyDeliveryRequest{
		FarmID: "hac-1",
		Items: []models.SupplyItem{
			{Supply: models.SupplyCarton, Quantity: 200},
			{Supply: models.SupplyFunda, Quantity: 400},
		},
	})
	require.NoError(t, err)
	f.supplyRecs.AssertExpectations(t)
}

func TestTripService_AttachSupplyDelivery_Rejections(t *testing.T) {
	f := newTripFixture()
	ctx := context.Background()
	claims := testClaims()

	boxTrip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-box", Type: models.TripTypeBoxes, State: models.TripStateCreated}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-box").Return(boxTrip, nil)

	err := f.service.AttachSupplyDelivery(ctx, claims, "via-box", SupplyDeliveryRequest{
		Items: []models.SupplyItem{{Supply: models.SupplyCarton, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	supplyTrip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-ins", Type: models.TripTypeSupplies, State: models.TripStateCreated}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-ins").Return(supplyTrip, nil)

	err = f.service.AttachSupplyDelivery(ctx, claims, "via-ins", SupplyDeliveryRequest{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = f.service.AttachSupplyDelivery(ctx, claims, "via-ins", SupplyDeliveryRequest{
		Items: []models.SupplyItem{{Supply: "MADERA", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTripService_AttachSupplyDelivery_SecondRecord(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeSupplies, State: models.TripStateEnRoute}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.supplyRecs.On("InsertSupplyRecord", mock.Anything, mock.Anything).Return(db.ErrDuplicateKey)

	err := f.service.AttachSupplyDelivery(context.Background(), testClaims(), "via-1", SupplyDeliveryRequest{
		Items: []models.SupplyItem{{Supply: models.SupplyCarton, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTripService_AttachBoxCargo_Totals(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeBoxes, State: models.TripStateEnRoute}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.cargo.On("InsertBoxCargo", mock.Anything, mock.Anything).Return(nil)

	price := 2.00
	result, err := f.service.AttachBoxCargo(context.Background(), testClaims(), "via-1", BoxCargoRequest{
		FarmID:       "hac-1",
		Boxes:        100,
		UnitCostUSD:  1.50,
		UnitPriceUSD: &price,
	})

	require.NoError(t, err)
	assert.Equal(t, 150.00, result.PurchaseUSD)
	require.NotNil(t, result.SaleUSD)
	assert.Equal(t, 200.00, *result.SaleUSD)
	require.NotNil(t, result.MarginUSD)
	assert.Equal(t, 50.00, *result.MarginUSD)
}

func TestTripService_AttachBoxCargo_PurchaseOnly(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeBoxes, State: models.TripStateCreated}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.cargo.On("InsertBoxCargo", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.AttachBoxCargo(context.Background(), testClaims(), "via-1", BoxCargoRequest{
		Boxes:       250,
		UnitCostUSD: 1.37,
	})

	require.NoError(t, err)
	assert.Equal(t, 342.50, result.PurchaseUSD)
	assert.Nil(t, result.SaleUSD)
	assert.Nil(t, result.MarginUSD)
}

func TestTripService_AttachBoxCargo_WrongTripType(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeSupplies, State: models.TripStateCreated}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)

	_, err := f.service.AttachBoxCargo(context.Background(), testClaims(), "via-1", BoxCargoRequest{Boxes: 1})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTripService_AttachFuelCharge_TerminalTrip(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeBoxes, State: models.TripStateDelivered}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)

	err := f.service.AttachFuelCharge(context.Background(), testClaims(), "via-1", FuelChargeRequest{AmountUSD: 20})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTripService_Deliver_SupplyTrip(t *testing.T) {
	f := newTripFixture()
	claims := testClaims()
	now := time.Now()

	trip := &models.Trip{
		EmpresaID:  "emp-42",
		ExternalID: "via-1",
		Type:       models.TripTypeSupplies,
		State:      models.TripStateEnRoute,
		Notes:      "Entrega semanal",
	}
	delivered := &models.Trip{
		EmpresaID:  "emp-42",
		ExternalID: "via-1",
		Type:       models.TripTypeSupplies,
		State:      models.TripStateDelivered,
		EndedAt:    &now,
	}
	record := &models.TripSupplyRecord{
		TripID: "via-1",
		Items:  []models.SupplyItem{{Supply: models.SupplyCarton, Quantity: 200}},
	}
	stock := &models.Supply{EmpresaID: "emp-42", Type: models.SupplyCarton, Stock: 500}

	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.supplyRecs.On("FindSupplyRecordByTrip", mock.Anything, "emp-42", "via-1").Return(record, nil)
	f.supplies.On("FindSupplyByType", mock.Anything, "emp-42", models.SupplyCarton).Return(stock, nil)
	f.supplies.On("BulkWithdraw", mock.Anything, mock.Anything).Return(int64(1), nil)
	f.movements.On("InsertMovements", mock.Anything, mock.MatchedBy(func(movs []models.SupplyMovement) bool {
		return len(movs) == 1 &&
			movs[0].Kind == models.MovementTripWithdrawal &&
			movs[0].ReferenceID == "via-1"
	})).Return(nil)
	f.trips.On("TransitionTrip", mock.Anything, "emp-42", "via-1",
		[]models.TripState{models.TripStateEnRoute},
		mock.MatchedBy(func(set bson.M) bool {
			notes, ok := set["notas"].(string)
			return ok && strings.Contains(notes, "[ENTREGA] Recibido conforme")
		})).Return(delivered, nil)

	result, err := f.service.Deliver(context.Background(), claims, "via-1", "Recibido conforme")
	require.NoError(t, err)
	assert.Equal(t, models.TripStateDelivered, result.State)
	require.NotNil(t, result.EndedAt)
	f.supplies.AssertExpectations(t)
	f.movements.AssertExpectations(t)
}

func TestTripService_Deliver_SupplyTrip_ZeroQuantityLines(t *testing.T) {
	f := newTripFixture()
	now := time.Now()

	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeSupplies, State: models.TripStateEnRoute}
	delivered := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeSupplies, State: models.TripStateDelivered, EndedAt: &now}
	record := &models.TripSupplyRecord{
		TripID: "via-1",
		Items: []models.SupplyItem{
			{Supply: models.SupplyCarton, Quantity: 200},
			{Supply: models.SupplyFunda, Quantity: 0},
		},
	}
	stock := &models.Supply{EmpresaID: "emp-42", Type: models.SupplyCarton, Stock: 500}

	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.supplyRecs.On("FindSupplyRecordByTrip", mock.Anything, "emp-42", "via-1").Return(record, nil)
	f.supplies.On("FindSupplyByType", mock.Anything, "emp-42", models.SupplyCarton).Return(stock, nil)
	f.supplies.On("BulkWithdraw", mock.Anything, mock.MatchedBy(func(ws []db.StockWithdrawal) bool {
		return len(ws) == 1 && ws[0].Quantity == 200
	})).Return(int64(1), nil)
	f.movements.On("InsertMovements", mock.Anything, mock.MatchedBy(func(movs []models.SupplyMovement) bool {
		return len(movs) == 1 && movs[0].Supply == models.SupplyCarton
	})).Return(nil)
	f.trips.On("TransitionTrip", mock.Anything, "emp-42", "via-1",
		[]models.TripState{models.TripStateEnRoute}, mock.Anything).Return(delivered, nil)

	result, err := f.service.Deliver(context.Background(), testClaims(), "via-1", "")
	require.NoError(t, err)
	assert.Equal(t, models.TripStateDelivered, result.State)

	// the zero-quantity FUNDA line never reaches the inventory ledger
	f.supplies.AssertNotCalled(t, "FindSupplyByType", mock.Anything, "emp-42", models.SupplyFunda)
	f.supplies.AssertExpectations(t)
	f.movements.AssertExpectations(t)
}

func TestTripService_Deliver_SupplyTrip_AllZeroQuantities(t *testing.T) {
	f := newTripFixture()
	now := time.Now()

	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeSupplies, State: models.TripStateEnRoute}
	delivered := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeSupplies, State: models.TripStateDelivered, EndedAt: &now}
	record := &models.TripSupplyRecord{
		TripID: "via-1",
		Items:  []models.SupplyItem{{Supply: models.SupplyCarton, Quantity: 0}},
	}

	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.supplyRecs.On("FindSupplyRecordByTrip", mock.Anything, "emp-42", "via-1").Return(record, nil)
	f.trips.On("TransitionTrip", mock.Anything, "emp-42", "via-1",
		[]models.TripState{models.TripStateEnRoute}, mock.Anything).Return(delivered, nil)

	result, err := f.service.Deliver(context.Background(), testClaims(), "via-1", "")
	require.NoError(t, err)
	assert.Equal(t, models.TripStateDelivered, result.State)
	f.supplies.AssertNotCalled(t, "BulkWithdraw", mock.Anything, mock.Anything)
	f.movements.AssertNotCalled(t, "InsertMovements", mock.Anything, mock.Anything)
}

func TestTripService_Deliver_SupplyTrip_MissingRecord(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeSupplies, State: models.TripStateEnRoute}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.supplyRecs.On("FindSupplyRecordByTrip", mock.Anything, "emp-42", "via-1").Return(nil, db.ErrNotFound)

	_, err := f.service.Deliver(context.Background(), testClaims(), "via-1", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTripService_Deliver_SupplyTrip_InsufficientStock(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeSupplies, State: models.TripStateEnRoute}
	record := &models.TripSupplyRecord{
		TripID: "via-1",
		Items:  []models.SupplyItem{{Supply: models.SupplyCarton, Quantity: 1000}},
	}
	stock := &models.Supply{EmpresaID: "emp-42", Type: models.SupplyCarton, Stock: 120}

	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.supplyRecs.On("FindSupplyRecordByTrip", mock.Anything, "emp-42", "via-1").Return(record, nil)
	f.supplies.On("FindSupplyByType", mock.Anything, "emp-42", models.SupplyCarton).Return(stock, nil)

	_, err := f.service.Deliver(context.Background(), testClaims(), "via-1", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "available: 120")

	// nothing was withdrawn and the trip stays EN_RUTA
	f.supplies.AssertNotCalled(t, "BulkWithdraw", mock.Anything, mock.Anything)
	f.trips.AssertNotCalled(t, "TransitionTrip", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTripService_ListBoxCargo(t *testing.T) {
	f := newTripFixture()
	rows := []models.BoxCargo{
		{TripID: "via-1", FarmID: "hac-1", Boxes: 100},
		{TripID: "via-1", FarmID: "hac-2", Boxes: 80},
	}
	f.cargo.On("FindBoxCargoByTrip", mock.Anything, "emp-42", "via-1").Return(rows, nil)

	got, err := f.service.ListBoxCargo(context.Background(), testClaims(), "via-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hac-1", got[0].FarmID)
	assert.Equal(t, 80, got[1].Boxes)
}

func TestTripService_Deliver_BoxTrip_NoCargo(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeBoxes, State: models.TripStateEnRoute}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)
	f.cargo.On("CountBoxCargoByTrip", mock.Anything, "emp-42", "via-1").Return(int64(0), nil)

	_, err := f.service.Deliver(context.Background(), testClaims(), "via-1", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTripService_Deliver_NotEnRoute(t *testing.T) {
	f := newTripFixture()
	trip := &models.Trip{EmpresaID: "emp-42", ExternalID: "via-1", Type: models.TripTypeBoxes, State: models.TripStateCreated}
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-1").Return(trip, nil)

	_, err := f.service.Deliver(context.Background(), testClaims(), "via-1", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTripService_Deliver_TripNotFound(t *testing.T) {
	f := newTripFixture()
	f.trips.On("FindTripByExternalID", mock.Anything, "emp-42", "via-x").Return(nil, db.ErrNotFound)

	_, err := f.service.Deliver(context.Background(), testClaims(), "via-x", "")
	assert.ErrorIs(t, err, ErrNotFound)
}
