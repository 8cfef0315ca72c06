package db

import (
	"context"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SupplyRecordCollection defines the interface for the one-per-trip
// supply-delivery documents.
type SupplyRecordCollection interface {
	InsertSupplyRecord(ctx context.Context, rec models.TripSupplyRecord) error
	FindSupplyRecordByTrip(ctx context.Context, empresaID, tripID string) (*models.TripSupplyRecord, error)
	ReplaceSupplyRecordItems(ctx context.Context, empresaID, tripID string, items []models.SupplyItem, farmID, updatedBy string) (*models.TripSupplyRecord, error)
	DeleteSupplyRecordByTrip(ctx context.Context, empresaID, tripID string) error
}

// MongoSupplyRecordCollection implements SupplyRecordCollection for MongoDB.
type MongoSupplyRecordCollection struct {
	Collection *mongo.Collection
}

// InsertSupplyRecord inserts a delivery record. The unique index on
// (empresaId, viajeIdExterno) rejects a second record for the trip.
func (c *MongoSupplyRecordCollection) InsertSupplyRecord(ctx context.Context, rec models.TripSupplyRecord) error {
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, rec)
	return wrapWriteError(err)
}

// FindSupplyRecordByTrip finds the delivery record of a trip.
func (c *MongoSupplyRecordCollection) FindSupplyRecordByTrip(ctx context.Context, empresaID, tripID string) (*models.TripSupplyRecord, error) {
	var rec models.TripSupplyRecord
	err := c.Collection.FindOne(ctx, bson.M{"empresaId": empresaID, "viajeIdExterno": tripID}).Decode(&rec)
	if err != nil {
		return nil, wrapFindError(err)
	}
	return &rec, nil
}

// ReplaceSupplyRecordItems swaps the item list wholesale. Farm id is
// kept when the caller passes an empty one.
func (c *MongoSupplyRecordCollection) ReplaceSupplyRecordItems(ctx context.Context, empresaID, tripID string, items []models.SupplyItem, farmID, updatedBy string) (*models.TripSupplyRecord, error) {
	set := bson.M{
		"items":              items,
		"actualizadoPor":     updatedBy,
		"fechaActualizacion": time.Now(),
	}
	if farmID != "" {
		set["haciendaIdExterno"] = farmID
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rec models.TripSupplyRecord
	err := c.Collection.FindOneAndUpdate(ctx,
		bson.M{"empresaId": empresaID, "viajeIdExterno": tripID},
		bson.M{"$set": set}, opts).Decode(&rec)
	if err != nil {
		return nil, wrapFindError(err)
	}
	return &rec, nil
}

// DeleteSupplyRecordByTrip physically removes the delivery record.
func (c *MongoSupplyRecordCollection) DeleteSupplyRecordByTrip(ctx context.Context, empresaID, tripID string) error {
	res, err := c.Collection.DeleteOne(ctx, bson.M{"empresaId": empresaID, "viajeIdExterno": tripID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FuelChargeCollection defines the interface for fuel charge documents.
type FuelChargeCollection interface {
	InsertFuelCharge(ctx context.Context, charge models.FuelCharge) error
	FindFuelChargesByTrip(ctx context.Context, empresaID, tripID string) ([]models.FuelCharge, error)
}

// MongoFuelChargeCollection implements FuelChargeCollection for MongoDB.
type MongoFuelChargeCollection struct {
	Collection *mongo.Collection
}

// InsertFuelCharge appends one fuel charge.
func (c *MongoFuelChargeCollection) InsertFuelCharge(ctx context.Context, charge models.FuelCharge) error {
	charge.CreatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, charge)
	return wrapWriteError(err)
}

// FindFuelChargesByTrip lists a trip's fuel charges, newest first.
func (c *MongoFuelChargeCollection) FindFuelChargesByTrip(ctx context.Context, empresaID, tripID string) ([]models.FuelCharge, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fechaHora", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"empresaId": empresaID, "viajeIdExterno": tripID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var charges []models.FuelCharge
	if err := cursor.All(ctx, &charges); err != nil {
		return nil, err
	}
	return charges, nil
}

// BoxCargoCollection defines the interface for box-cargo documents.
type BoxCargoCollection interface {
	InsertBoxCargo(ctx context.Context, cargo models.BoxCargo) error
	CountBoxCargoByTrip(ctx context.Context, empresaID, tripID string) (int64, error)
	FindBoxCargoByTrip(ctx context.Context, empresaID, tripID string) ([]models.BoxCargo, error)
}

// MongoBoxCargoCollection implements BoxCargoCollection for MongoDB.
type MongoBoxCargoCollection struct {
	Collection *mongo.Collection
}

// InsertBoxCargo appends one cargo entry.
func (c *MongoBoxCargoCollection) InsertBoxCargo(ctx context.Context, cargo models.BoxCargo) error {
	cargo.CreatedAt = time.Now()
	cargo.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, cargo)
	return wrapWriteError(err)
}

// CountBoxCargoByTrip counts the cargo entries of a trip.
func (c *MongoBoxCargoCollection) CountBoxCargoByTrip(ctx context.Context, empresaID, tripID string) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{"empresaId": empresaID, "viajeIdExterno": tripID})
}

// FindBoxCargoByTrip lists the cargo entries of a trip.
func (c *MongoBoxCargoCollection) FindBoxCargoByTrip(ctx context.Context, empresaID, tripID string) ([]models.BoxCargo, error) {
	cursor, err := c.Collection.Find(ctx, bson.M{"empresaId": empresaID, "viajeIdExterno": tripID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var cargo []models.BoxCargo
	if err := cursor.All(ctx, &cargo); err != nil {
		return nil, err
	}
	return cargo, nil
}
