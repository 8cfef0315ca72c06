package db

import (
	"context"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VehicleCollection defines the interface for the vehicle catalog.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicleByExternalID(ctx context.Context, empresaID, externalID string) (*models.Vehicle, error)
	FindVehicleByPlate(ctx context.Context, empresaID, plate string) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, empresaID string, activeOnly bool) ([]models.Vehicle, error)
	DeactivateVehicle(ctx context.Context, empresaID, externalID, updatedBy string) error
}

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// InsertVehicle inserts a vehicle record.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return wrapWriteError(err)
}

// FindVehicleByExternalID finds an active vehicle by external id.
func (c *MongoVehicleCollection) FindVehicleByExternalID(ctx context.Context, empresaID, externalID string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := c.Collection.FindOne(ctx, bson.M{
		"empresaId": empresaID,
		"idExterno": externalID,
		"activo":    true,
	}).Decode(&vehicle)
	if err != nil {
		return nil, wrapFindError(err)
	}
	return &vehicle, nil
}

// FindVehicleByPlate looks a plate up regardless of active flag, so a
// deactivated vehicle still blocks plate reuse.
func (c *MongoVehicleCollection) FindVehicleByPlate(ctx context.Context, empresaID, plate string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := c.Collection.FindOne(ctx, bson.M{"empresaId": empresaID, "placa": plate}).Decode(&vehicle)
	if err != nil {
		return nil, wrapFindError(err)
	}
	return &vehicle, nil
}

// ListVehicles lists vehicles, most recently updated first.
func (c *MongoVehicleCollection) ListVehicles(ctx context.Context, empresaID string, activeOnly bool) ([]models.Vehicle, error) {
	filter := bson.M{"empresaId": empresaID}
	sort := bson.D{{Key: "fechaActualizacion", Value: -1}}
	if activeOnly {
		filter["activo"] = true
	} else {
		sort = bson.D{{Key: "activo", Value: -1}, {Key: "fechaActualizacion", Value: -1}}
	}
	cursor, err := c.Collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// DeactivateVehicle soft-deletes a vehicle.
func (c *MongoVehicleCollection) DeactivateVehicle(ctx context.Context, empresaID, externalID, updatedBy string) error {
	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"empresaId": empresaID, "idExterno": externalID, "activo": true},
		bson.M{"$set": bson.M{
			"activo":             false,
			"estado":             "Fuera de servicio",
			"actualizadoPor":     updatedBy,
			"fechaActualizacion": time.Now(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FarmCollection defines the interface for the farm catalog.
type FarmCollection interface {
	InsertFarm(ctx context.Context, farm models.Farm) error
	ListFarms(ctx context.Context, empresaID string) ([]models.Farm, error)
}

// MongoFarmCollection implements FarmCollection for MongoDB.
type MongoFarmCollection struct {
	Collection *mongo.Collection
}

// InsertFarm inserts a farm record.
func (c *MongoFarmCollection) InsertFarm(ctx context.Context, farm models.Farm) error {
	farm.CreatedAt = time.Now()
	farm.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, farm)
	return wrapWriteError(err)
}

// ListFarms lists the active farms of a tenant, by name.
func (c *MongoFarmCollection) ListFarms(ctx context.Context, empresaID string) ([]models.Farm, error) {
	opts := options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"empresaId": empresaID, "activo": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var farms []models.Farm
	if err := cursor.All(ctx, &farms); err != nil {
		return nil, err
	}
	return farms, nil
}
