package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripType classifies what a trip carries.
type TripType string

const (
	TripTypeSupplies TripType = "INSUMOS"
	TripTypeBoxes    TripType = "CAJAS"
)

// TripState is the lifecycle state of a trip.
type TripState string

const (
	TripStateCreated   TripState = "CREADO"
	TripStateEnRoute   TripState = "EN_RUTA"
	TripStateDelivered TripState = "ENTREGADO"
	TripStateCancelled TripState = "ANULADO"
)

// DestinationKind says what kind of place a trip is headed to.
type DestinationKind string

const (
	DestinationFarm      DestinationKind = "HACIENDA"
	DestinationWarehouse DestinationKind = "BODEGA"
	DestinationClient    DestinationKind = "CLIENTE"
)

// IsValidTripType checks if a trip type is one of the known values.
func IsValidTripType(t TripType) bool {
	return t == TripTypeSupplies || t == TripTypeBoxes
}

// IsValidDestinationKind checks if a destination kind is one of the known values.
func IsValidDestinationKind(k DestinationKind) bool {
	switch k {
	case DestinationFarm, DestinationWarehouse, DestinationClient:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed from the state.
func (s TripState) IsTerminal() bool {
	return s == TripStateDelivered || s == TripStateCancelled
}

// Destination describes where a trip is going. FarmID is required for
// HACIENDA destinations and ClientID for CLIENTE destinations.
type Destination struct {
	Kind        DestinationKind `bson:"tipoDestino" json:"tipoDestino"`
	FarmID      string          `bson:"haciendaIdExterno,omitempty" json:"haciendaIdExterno,omitempty"`
	ClientID    string          `bson:"clienteIdExterno,omitempty" json:"clienteIdExterno,omitempty"`
	Description string          `bson:"descripcion,omitempty" json:"descripcion,omitempty"`
}

// Trip represents a single vehicle dispatch. Scoped by tenant; idExterno
// is unique within the tenant.
type Trip struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EmpresaID  string             `bson:"empresaId" json:"empresaId"`
	ExternalID string             `bson:"idExterno" json:"idExterno"`
	Date       string             `bson:"fecha" json:"fecha"` // YYYY-MM-DD
	Type       TripType           `bson:"tipo" json:"tipo"`
	State      TripState          `bson:"estado" json:"estado"`
	VehicleID  string             `bson:"vehiculoIdExterno" json:"vehiculoIdExterno"`
	Destino    Destination        `bson:"destino" json:"destino"`
	StartedAt  *time.Time         `bson:"fechaInicio,omitempty" json:"fechaInicio,omitempty"`
	EndedAt    *time.Time         `bson:"fechaFin,omitempty" json:"fechaFin,omitempty"`
	Notes      string             `bson:"notas,omitempty" json:"notas,omitempty"`
	Active     bool               `bson:"activo" json:"activo"`
	CreatedBy  string             `bson:"creadoPor,omitempty" json:"creadoPor,omitempty"`
	UpdatedBy  string             `bson:"actualizadoPor,omitempty" json:"actualizadoPor,omitempty"`
	CreatedAt  time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
	UpdatedAt  time.Time          `bson:"fechaActualizacion" json:"fechaActualizacion"`
}

// SupplyItem is one (supply type, quantity) line in a delivery record.
type SupplyItem struct {
	Supply   SupplyType `bson:"insumo" json:"insumo"`
	Quantity int        `bson:"cantidad" json:"cantidad"`
}

// TripSupplyRecord is the single supply-delivery document of a SUPPLIES
// trip. At most one per (tenant, trip).
type TripSupplyRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EmpresaID  string             `bson:"empresaId" json:"empresaId"`
	ExternalID string             `bson:"idExterno" json:"idExterno"`
	TripID     string             `bson:"viajeIdExterno" json:"viajeIdExterno"`
	FarmID     string             `bson:"haciendaIdExterno" json:"haciendaIdExterno"`
	Items      []SupplyItem       `bson:"items" json:"items"`
	CreatedBy  string             `bson:"creadoPor,omitempty" json:"creadoPor,omitempty"`
	UpdatedBy  string             `bson:"actualizadoPor,omitempty" json:"actualizadoPor,omitempty"`
	CreatedAt  time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
	UpdatedAt  time.Time          `bson:"fechaActualizacion" json:"fechaActualizacion"`
}

// FuelCharge is one fuel purchase during a trip. Append-only.
type FuelCharge struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EmpresaID  string             `bson:"empresaId" json:"empresaId"`
	ExternalID string             `bson:"idExterno" json:"idExterno"`
	TripID     string             `bson:"viajeIdExterno" json:"viajeIdExterno"`
	At         time.Time          `bson:"fechaHora" json:"fechaHora"`
	AmountUSD  float64            `bson:"montoUSD" json:"montoUSD"`
	Liters     *float64           `bson:"litros,omitempty" json:"litros,omitempty"`
	Detail     string             `bson:"detalle,omitempty" json:"detalle,omitempty"`
	CreatedBy  string             `bson:"creadoPor,omitempty" json:"creadoPor,omitempty"`
	UpdatedBy  string             `bson:"actualizadoPor,omitempty" json:"actualizadoPor,omitempty"`
	CreatedAt  time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
}

// BoxCargo is a purchase (and optional direct sale) of produce boxes on
// a BOXES trip. Totals are derived; see ComputeTotals.
type BoxCargo struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EmpresaID    string             `bson:"empresaId" json:"empresaId"`
	ExternalID   string             `bson:"idExterno" json:"idExterno"`
	TripID       string             `bson:"viajeIdExterno" json:"viajeIdExterno"`
	SupplierID   string             `bson:"proveedorIdExterno" json:"proveedorIdExterno"`
	FarmID       string             `bson:"haciendaIdExterno" json:"haciendaIdExterno"`
	Boxes        int                `bson:"cantidadCajas" json:"cantidadCajas"`
	UnitCostUSD  float64            `bson:"costoCompraUnitario" json:"costoCompraUnitario"`
	Currency     string             `bson:"moneda" json:"moneda"`
	PurchaseUSD  float64            `bson:"totalCompra" json:"totalCompra"`
	ClientID     string             `bson:"clienteIdExterno,omitempty" json:"clienteIdExterno,omitempty"`
	UnitPriceUSD *float64           `bson:"precioVentaUnitario,omitempty" json:"precioVentaUnitario,omitempty"`
	SaleUSD      *float64           `bson:"totalVenta,omitempty" json:"totalVenta,omitempty"`
	MarginUSD    *float64           `bson:"utilidadBruta,omitempty" json:"utilidadBruta,omitempty"`
	CreatedBy    string             `bson:"creadoPor,omitempty" json:"creadoPor,omitempty"`
	UpdatedBy    string             `bson:"actualizadoPor,omitempty" json:"actualizadoPor,omitempty"`
	CreatedAt    time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
	UpdatedAt    time.Time          `bson:"fechaActualizacion" json:"fechaActualizacion"`
}

// ComputeTotals fills PurchaseUSD and, when a unit sale price is set,
// SaleUSD and MarginUSD. Each total is rounded to cents.
func (c *BoxCargo) ComputeTotals() {
	c.PurchaseUSD = Round2(float64(c.Boxes) * c.UnitCostUSD)
	if c.UnitPriceUSD != nil {
		sale := Round2(float64(c.Boxes) * *c.UnitPriceUSD)
		margin := Round2(sale - c.PurchaseUSD)
		c.SaleUSD = &sale
		c.MarginUSD = &margin
	}
}
