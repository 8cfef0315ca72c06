package db

import (
	"context"

	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// DailyTripRow is one trip of the day joined with its vehicle, delivery
// record, fuel charges, box cargo, and the tenant's farm catalog.
// Monetary fields are carried raw; rounding happens in the service.
type DailyTripRow struct {
	ExternalID string              `bson:"idExterno"`
	Date       string              `bson:"fecha"`
	Type       models.TripType     `bson:"tipo"`
	State      models.TripState    `bson:"estado"`
	Vehicle    *models.VehicleRef  `bson:"vehiculo"`
	Supplies   *DailySupplyDoc     `bson:"insumosDoc"`
	Fuel       []DailyFuelRow      `bson:"comb"`
	Cargo      []DailyCargoRow     `bson:"cargas"`
	Farms      []models.FarmRef    `bson:"haciendasCatalogo"`
}

type DailySupplyDoc struct {
	Items []models.SupplyItem `bson:"items"`
}

type DailyFuelRow struct {
	AmountUSD float64 `bson:"montoUSD"`
}

type DailyCargoRow struct {
	FarmID      string   `bson:"haciendaIdExterno"`
	Boxes       int      `bson:"cantidadCajas"`
	PurchaseUSD float64  `bson:"totalCompra"`
	SaleUSD     *float64 `bson:"totalVenta"`
	MarginUSD   *float64 `bson:"utilidadBruta"`
}

// tenantJoin builds a $lookup joining a satellite collection on tenant
// plus an external-id field.
func tenantJoin(from, localField, foreignField string, projection bson.M) bson.M {
	return bson.M{"$lookup": bson.M{
		"from": from,
		"let":  bson.M{"vid": "$" + localField, "emp": "$empresaId"},
		"pipeline": bson.A{
			bson.M{"$match": bson.M{"$expr": bson.M{"$and": bson.A{
				bson.M{"$eq": bson.A{"$empresaId", "$$emp"}},
				bson.M{"$eq": bson.A{"$" + foreignField, "$$vid"}},
			}}}},
			bson.M{"$project": projection},
		},
		"as": from,
	}}
}

// AggregateDailySummary joins every active trip of a date with its
// satellite collections and the farm catalog. Read-only.
func (c *MongoTripCollection) AggregateDailySummary(ctx context.Context, empresaID, date string) ([]DailyTripRow, error) {
	pipeline := bson.A{
		bson.M{"$match": bson.M{"empresaId": empresaID, "fecha": date, "activo": true}},

		// vehicle descriptor
		tenantJoin("vehiculos", "vehiculoIdExterno", "idExterno",
			bson.M{"_id": 0, "idExterno": 1, "nombre": 1, "placa": 1}),
		bson.M{"$addFields": bson.M{
			"vehiculo": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$vehiculos", 0}}, nil}},
		}},

		// delivery record (at most one per trip)
		tenantJoin("viaje_insumos", "idExterno", "viajeIdExterno",
			bson.M{"_id": 0, "items": 1}),
		bson.M{"$addFields": bson.M{
			"insumosDoc": bson.M{"$arrayElemAt": bson.A{"$viaje_insumos", 0}},
		}},

		// fuel charges
		tenantJoin("viaje_combustible", "idExterno", "viajeIdExterno",
			bson.M{"_id": 0, "montoUSD": 1}),
		bson.M{"$addFields": bson.M{"comb": "$viaje_combustible"}},

		// box cargo
		tenantJoin("viaje_cargas_cajas", "idExterno", "viajeIdExterno",
			bson.M{"_id": 0, "haciendaIdExterno": 1, "cantidadCajas": 1, "totalCompra": 1, "totalVenta": 1, "utilidadBruta": 1}),
		bson.M{"$addFields": bson.M{"cargas": "$viaje_cargas_cajas"}},

		// whole farm catalog of the tenant, for name resolution
		bson.M{"$lookup": bson.M{
			"from": "haciendas",
			"let":  bson.M{"emp": "$empresaId"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$empresaId", "$$emp"}}}},
				bson.M{"$project": bson.M{"_id": 0, "idExterno": 1, "nombre": 1}},
			},
			"as": "haciendasCatalogo",
		}},

		bson.M{"$project": bson.M{
			"_id": 0, "idExterno": 1, "fecha": 1, "tipo": 1, "estado": 1,
			"vehiculo": 1, "insumosDoc": 1, "comb": 1, "cargas": 1, "haciendasCatalogo": 1,
		}},
	}

	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []DailyTripRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
