package db

import (
	"context"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TripCollection defines the interface for trip document operations.
type TripCollection interface {
	InsertTrip(ctx context.Context, trip models.Trip) error
	FindTripByExternalID(ctx context.Context, empresaID, externalID string) (*models.Trip, error)
	FindTripsByDate(ctx context.Context, empresaID, date string) ([]models.Trip, error)
	TransitionTrip(ctx context.Context, empresaID, externalID string, fromStates []models.TripState, set bson.M) (*models.Trip, error)
	AggregateDailySummary(ctx context.Context, empresaID, date string) ([]DailyTripRow, error)
}

// MongoTripCollection implements TripCollection for MongoDB.
type MongoTripCollection struct {
	Collection *mongo.Collection
}

// InsertTrip inserts a trip document.
func (c *MongoTripCollection) InsertTrip(ctx context.Context, trip models.Trip) error {
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, trip)
	return wrapWriteError(err)
}

// FindTripByExternalID finds an active trip by tenant and external id.
func (c *MongoTripCollection) FindTripByExternalID(ctx context.Context, empresaID, externalID string) (*models.Trip, error) {
	var trip models.Trip
	err := c.Collection.FindOne(ctx, bson.M{
		"empresaId": empresaID,
		"idExterno": externalID,
		"activo":    true,
	}).Decode(&trip)
	if err != nil {
		return nil, wrapFindError(err)
	}
	return &trip, nil
}

// FindTripsByDate lists the active trips of a calendar day, newest first.
func (c *MongoTripCollection) FindTripsByDate(ctx context.Context, empresaID, date string) ([]models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fechaCreacion", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{
		"empresaId": empresaID,
		"fecha":     date,
		"activo":    true,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// TransitionTrip applies a state change with the allowed source states
// embedded in the filter, so a concurrent transition cannot slip
// through between a read and a write. Returns the updated trip, or
// ErrNotFound when no document matched the precondition.
func (c *MongoTripCollection) TransitionTrip(ctx context.Context, empresaID, externalID string, fromStates []models.TripState, set bson.M) (*models.Trip, error) {
	set["fechaActualizacion"] = time.Now()

	filter := bson.M{
		"empresaId": empresaID,
		"idExterno": externalID,
		"activo":    true,
		"estado":    bson.M{"$in": fromStates},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var trip models.Trip
	err := c.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&trip)
	if err != nil {
		return nil, wrapFindError(err)
	}
	return &trip, nil
}
