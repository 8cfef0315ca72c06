package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SupplyType is a consumable inventory category.
type SupplyType string

const (
	SupplyCarton    SupplyType = "CARTON"
	SupplyFunda     SupplyType = "FUNDA"
	SupplyCartulina SupplyType = "CARTULINA"
)

// IsValidSupplyType checks if a supply type is one of the known values.
func IsValidSupplyType(t SupplyType) bool {
	switch t {
	case SupplyCarton, SupplyFunda, SupplyCartulina:
		return true
	default:
		return false
	}
}

// LowStockThreshold is the stock level under which a supply shows up in
// the low-stock summary.
const LowStockThreshold = 50

// Supply is a tenant-scoped catalog entry with current stock and a
// weighted-average unit cost. Stock never goes negative.
type Supply struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EmpresaID   string             `bson:"empresaId" json:"empresaId"`
	ExternalID  string             `bson:"idExterno" json:"idExterno"`
	Type        SupplyType         `bson:"tipo" json:"tipo"`
	Description string             `bson:"descripcion,omitempty" json:"descripcion,omitempty"`
	Unit        string             `bson:"unidad" json:"unidad"`
	Stock       int                `bson:"stockActual" json:"stockActual"`
	AvgCostUSD  float64            `bson:"costoPromedioUSD" json:"costoPromedioUSD"`
	CreatedBy   string             `bson:"creadoPor,omitempty" json:"creadoPor,omitempty"`
	UpdatedBy   string             `bson:"actualizadoPor,omitempty" json:"actualizadoPor,omitempty"`
	CreatedAt   time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
	UpdatedAt   time.Time          `bson:"fechaActualizacion" json:"fechaActualizacion"`
}

// MovementKind classifies a ledger movement. Quantity is always stored
// positive; the kind implies the direction.
type MovementKind string

const (
	MovementEntry          MovementKind = "ENTRADA"
	MovementTripWithdrawal MovementKind = "SALIDA_VIAJE"
	MovementAdjustment     MovementKind = "AJUSTE"
	MovementReturn         MovementKind = "DEVOLUCION"
)

// SupplyMovement is one append-only entry of the kardex.
type SupplyMovement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EmpresaID   string             `bson:"empresaId" json:"empresaId"`
	ExternalID  string             `bson:"idExterno" json:"idExterno"`
	Kind        MovementKind       `bson:"tipo" json:"tipo"`
	Supply      SupplyType         `bson:"insumoTipo" json:"insumoTipo"`
	Quantity    int                `bson:"cantidad" json:"cantidad"`
	UnitCostUSD *float64           `bson:"costoUnitarioUSD,omitempty" json:"costoUnitarioUSD,omitempty"`
	TotalUSD    *float64           `bson:"totalUSD,omitempty" json:"totalUSD,omitempty"`
	ReferenceID string             `bson:"referenciaIdExterno,omitempty" json:"referenciaIdExterno,omitempty"`
	Reason      string             `bson:"motivo,omitempty" json:"motivo,omitempty"`
	Delta       int                `bson:"diferencia,omitempty" json:"diferencia,omitempty"` // signed, adjustments only
	CreatedBy   string             `bson:"creadoPor,omitempty" json:"creadoPor,omitempty"`
	CreatedAt   time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
}
