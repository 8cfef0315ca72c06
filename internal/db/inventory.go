package db

import (
	"context"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StockEntryUpdate carries the precomputed result of one entry line:
// the new stock level and, when a unit cost was supplied, the new
// weighted-average cost.
type StockEntryUpdate struct {
	SupplyID   primitive.ObjectID
	NewStock   int
	NewAvgCost *float64
	UpdatedBy  string
}

// StockWithdrawal decrements stock for one supply. The quantity is
// re-checked in the update filter so the decrement never goes negative.
type StockWithdrawal struct {
	SupplyID  primitive.ObjectID
	Quantity  int
	UpdatedBy string
}

// SupplyCollection defines the interface for the supply catalog.
type SupplyCollection interface {
	InsertSupply(ctx context.Context, supply models.Supply) error
	FindSupplyByType(ctx context.Context, empresaID string, supplyType models.SupplyType) (*models.Supply, error)
	FindSupplyByExternalID(ctx context.Context, empresaID, externalID string) (*models.Supply, error)
	UpdateSupplyFields(ctx context.Context, empresaID, externalID string, set bson.M) (*models.Supply, error)
	ListSupplies(ctx context.Context, empresaID string, lowStockOnly bool) ([]models.Supply, error)
	BulkApplyEntries(ctx context.Context, updates []StockEntryUpdate) error
	BulkWithdraw(ctx context.Context, withdrawals []StockWithdrawal) (int64, error)
	AdjustStock(ctx context.Context, empresaID string, supplyType models.SupplyType, delta int, updatedBy string) (*models.Supply, error)
}

// MongoSupplyCollection implements SupplyCollection for MongoDB.
type MongoSupplyCollection struct {
	Collection *mongo.Collection
}

// InsertSupply inserts a catalog entry.
func (c *MongoSupplyCollection) InsertSupply(ctx context.Context, supply models.Supply) error {
	supply.CreatedAt = time.Now()
	supply.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, supply)
	return wrapWriteError(err)
}

// FindSupplyByType finds the tenant's catalog entry for a supply type.
func (c *MongoSupplyCollection) FindSupplyByType(ctx context.Context, empresaID string, supplyType models.SupplyType) (*models.Supply, error) {
	var supply models.Supply
	err := c.Collection.FindOne(ctx, bson.M{"empresaId": empresaID, "tipo": supplyType}).Decode(&supply)
	if err != nil {
		return nil, wrapFindError(err)
	}
	return &supply, nil
}

// FindSupplyByExternalID finds a catalog entry by external id.
func (c *MongoSupplyCollection) FindSupplyByExternalID(ctx context.Context, empresaID, externalID string) (*models.Supply, error) {
	var supply models.Supply
	err := c.Collection.FindOne(ctx, bson.M{"empresaId": empresaID, "idExterno": externalID}).Decode(&supply)
	if err != nil {
		return nil, wrapFindError(err)
	}
	return &supply, nil
}

// UpdateSupplyFields applies a partial update and returns the new document.
func (c *MongoSupplyCollection) UpdateSupplyFields(ctx context.Context, empresaID, externalID string, set bson.M) (*models.Supply, error) {
	set["fechaActualizacion"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var supply models.Supply
	err := c.Collection.FindOneAndUpdate(ctx,
		bson.M{"empresaId": empresaID, "idExterno": externalID},
		bson.M{"$set": set}, opts).Decode(&supply)
	if err != nil {
		return nil, wrapFindError(err)
	}
	return &supply, nil
}

// ListSupplies lists catalog entries ascending by stock, so the lowest
// levels come first. With lowStockOnly only entries under the threshold
// are returned.
func (c *MongoSupplyCollection) ListSupplies(ctx context.Context, empresaID string, lowStockOnly bool) ([]models.Supply, error) {
	filter := bson.M{"empresaId": empresaID}
	if lowStockOnly {
		filter["stockActual"] = bson.M{"$lt": models.LowStockThreshold}
	}
	opts := options.Find().SetSort(bson.D{{Key: "stockActual", Value: 1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var supplies []models.Supply
	if err := cursor.All(ctx, &supplies); err != nil {
		return nil, err
	}
	return supplies, nil
}

// BulkApplyEntries sets the new stock and average cost of each entry
// line in a single bulk operation.
func (c *MongoSupplyCollection) BulkApplyEntries(ctx context.Context, updates []StockEntryUpdate) error {
	ops := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		set := bson.M{
			"stockActual":        u.NewStock,
			"actualizadoPor":     u.UpdatedBy,
			"fechaActualizacion": time.Now(),
		}
		if u.NewAvgCost != nil {
			set["costoPromedioUSD"] = *u.NewAvgCost
		}
		ops = append(ops, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.SupplyID}).
			SetUpdate(bson.M{"$set": set}))
	}
	_, err := c.Collection.BulkWrite(ctx, ops)
	return wrapWriteError(err)
}

// BulkWithdraw decrements stock for each withdrawal. Every update's
// filter requires stockActual >= quantity; the returned count is how
// many documents passed that guard and were modified.
func (c *MongoSupplyCollection) BulkWithdraw(ctx context.Context, withdrawals []StockWithdrawal) (int64, error) {
	ops := make([]mongo.WriteModel, 0, len(withdrawals))
	for _, w := range withdrawals {
		ops = append(ops, mongo.NewUpdateOneModel().
			SetFilter(bson.M{
				"_id":         w.SupplyID,
				"stockActual": bson.M{"$gte": w.Quantity},
			}).
			SetUpdate(bson.M{
				"$inc": bson.M{"stockActual": -w.Quantity},
				"$set": bson.M{"actualizadoPor": w.UpdatedBy, "fechaActualizacion": time.Now()},
			}))
	}
	res, err := c.Collection.BulkWrite(ctx, ops)
	if err != nil {
		return 0, wrapWriteError(err)
	}
	return res.MatchedCount, nil
}

// AdjustStock applies a signed delta atomically. For negative deltas
// the filter requires enough stock, so the level cannot go below zero
// even under concurrent adjustments. ErrNotFound means the guard (or
// the supply) did not match.
func (c *MongoSupplyCollection) AdjustStock(ctx context.Context, empresaID string, supplyType models.SupplyType, delta int, updatedBy string) (*models.Supply, error) {
	filter := bson.M{"empresaId": empresaID, "tipo": supplyType}
	if delta < 0 {
		filter["stockActual"] = bson.M{"$gte": -delta}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var supply models.Supply
	err := c.Collection.FindOneAndUpdate(ctx, filter, bson.M{
		"$inc": bson.M{"stockActual": delta},
		"$set": bson.M{"actualizadoPor": updatedBy, "fechaActualizacion": time.Now()},
	}, opts).Decode(&supply)
	if err != nil {
		return nil, wrapFindError(err)
	}
	return &supply, nil
}

// MovementCollection defines the interface for the append-only kardex.
type MovementCollection interface {
	InsertMovements(ctx context.Context, movements []models.SupplyMovement) error
	FindMovements(ctx context.Context, empresaID string, supplyType models.SupplyType, from, to *time.Time) ([]models.SupplyMovement, error)
}

// MongoMovementCollection implements MovementCollection for MongoDB.
type MongoMovementCollection struct {
	Collection *mongo.Collection
}

// InsertMovements appends ledger entries in one bulk insert.
func (c *MongoMovementCollection) InsertMovements(ctx context.Context, movements []models.SupplyMovement) error {
	docs := make([]interface{}, 0, len(movements))
	now := time.Now()
	for _, m := range movements {
		m.CreatedAt = now
		docs = append(docs, m)
	}
	_, err := c.Collection.InsertMany(ctx, docs)
	return wrapWriteError(err)
}

// FindMovements lists the kardex of a supply type, newest first,
// optionally bounded by a date range.
func (c *MongoMovementCollection) FindMovements(ctx context.Context, empresaID string, supplyType models.SupplyType, from, to *time.Time) ([]models.SupplyMovement, error) {
	filter := bson.M{"empresaId": empresaID, "insumoTipo": supplyType}
	if from != nil || to != nil {
		rangeFilter := bson.M{}
		if from != nil {
			rangeFilter["$gte"] = *from
		}
		if to != nil {
			rangeFilter["$lte"] = *to
		}
		filter["fechaCreacion"] = rangeFilter
	}
	opts := options.Find().SetSort(bson.D{{Key: "fechaCreacion", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var movements []models.SupplyMovement
	if err := cursor.All(ctx, &movements); err != nil {
		return nil, err
	}
	return movements, nil
}
