package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB and verifies the connection.
func ConnectMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Collections bundles the typed collection wrappers the services are
// wired with at startup.
type Collections struct {
	Trips         *MongoTripCollection
	SupplyRecords *MongoSupplyRecordCollection
	FuelCharges   *MongoFuelChargeCollection
	BoxCargo      *MongoBoxCargoCollection
	Supplies      *MongoSupplyCollection
	Movements     *MongoMovementCollection
	Vehicles      *MongoVehicleCollection
	Farms         *MongoFarmCollection
	Users         *MongoUserCollection

	db *mongo.Database
}

// NewCollections builds the collection wrappers for a database.
func NewCollections(client *mongo.Client, dbName string) *Collections {
	d := client.Database(dbName)
	return &Collections{
		Trips:         &MongoTripCollection{Collection: d.Collection("viajes")},
		SupplyRecords: &MongoSupplyRecordCollection{Collection: d.Collection("viaje_insumos")},
		FuelCharges:   &MongoFuelChargeCollection{Collection: d.Collection("viaje_combustible")},
		BoxCargo:      &MongoBoxCargoCollection{Collection: d.Collection("viaje_cargas_cajas")},
		Supplies:      &MongoSupplyCollection{Collection: d.Collection("insumos")},
		Movements:     &MongoMovementCollection{Collection: d.Collection("movimientos_insumos")},
		Vehicles:      &MongoVehicleCollection{Collection: d.Collection("vehiculos")},
		Farms:         &MongoFarmCollection{Collection: d.Collection("haciendas")},
		Users:         &MongoUserCollection{Collection: d.Collection("usuarios")},
		db:            d,
	}
}

// EnsureIndexes creates the unique and query indexes the operations
// depend on. Idempotent; called at startup.
func (c *Collections) EnsureIndexes(ctx context.Context) error {
	uniqueTenantExternal := mongo.IndexModel{
		Keys:    bson.D{{Key: "empresaId", Value: 1}, {Key: "idExterno", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	type spec struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}
	specs := []spec{
		{c.Trips.Collection, []mongo.IndexModel{
			uniqueTenantExternal,
			{Keys: bson.D{{Key: "empresaId", Value: 1}, {Key: "fecha", Value: 1}}},
			{Keys: bson.D{{Key: "empresaId", Value: 1}, {Key: "estado", Value: 1}}},
		}},
		{c.SupplyRecords.Collection, []mongo.IndexModel{
			uniqueTenantExternal,
			// one delivery record per trip
			{
				Keys:    bson.D{{Key: "empresaId", Value: 1}, {Key: "viajeIdExterno", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		}},
		{c.FuelCharges.Collection, []mongo.IndexModel{
			uniqueTenantExternal,
			{Keys: bson.D{{Key: "empresaId", Value: 1}, {Key: "viajeIdExterno", Value: 1}}},
		}},
		{c.BoxCargo.Collection, []mongo.IndexModel{
			uniqueTenantExternal,
			{Keys: bson.D{{Key: "empresaId", Value: 1}, {Key: "viajeIdExterno", Value: 1}}},
			{Keys: bson.D{{Key: "empresaId", Value: 1}, {Key: "haciendaIdExterno", Value: 1}}},
		}},
		{c.Supplies.Collection, []mongo.IndexModel{
			uniqueTenantExternal,
			{
				Keys:    bson.D{{Key: "empresaId", Value: 1}, {Key: "tipo", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		}},
		{c.Movements.Collection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "empresaId", Value: 1}, {Key: "insumoTipo", Value: 1}, {Key: "fechaCreacion", Value: -1}}},
		}},
		{c.Vehicles.Collection, []mongo.IndexModel{
			uniqueTenantExternal,
			{
				Keys:    bson.D{{Key: "empresaId", Value: 1}, {Key: "placa", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		}},
		{c.Farms.Collection, []mongo.IndexModel{uniqueTenantExternal}},
		{c.Users.Collection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "usuario", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "correo", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
	}

	for _, s := range specs {
		if _, err := s.coll.Indexes().CreateMany(ctx, s.models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", s.coll.Name(), err)
		}
	}
	return nil
}
