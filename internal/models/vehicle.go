package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle is a tenant-scoped fleet vehicle. Plate is stored uppercase
// and unique per tenant.
type Vehicle struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EmpresaID  string             `bson:"empresaId" json:"empresaId"`
	ExternalID string             `bson:"idExterno" json:"idExterno"`
	Plate      string             `bson:"placa" json:"placa"`
	Name       string             `bson:"nombre" json:"nombre"`
	BoxCap     *int               `bson:"capacidadCajas,omitempty" json:"capacidadCajas,omitempty"`
	Kind       string             `bson:"tipo,omitempty" json:"tipo,omitempty"`
	Brand      string             `bson:"marca,omitempty" json:"marca,omitempty"`
	Model      string             `bson:"modelo,omitempty" json:"modelo,omitempty"`
	Year       int                `bson:"anio,omitempty" json:"anio,omitempty"`
	Status     string             `bson:"estado" json:"estado"`
	Active     bool               `bson:"activo" json:"activo"`
	CreatedBy  string             `bson:"creadoPor,omitempty" json:"creadoPor,omitempty"`
	UpdatedBy  string             `bson:"actualizadoPor,omitempty" json:"actualizadoPor,omitempty"`
	CreatedAt  time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
	UpdatedAt  time.Time          `bson:"fechaActualizacion" json:"fechaActualizacion"`
}

// Farm is a produce farm (hacienda) trips deliver to and buy from.
type Farm struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EmpresaID  string             `bson:"empresaId" json:"empresaId"`
	ExternalID string             `bson:"idExterno" json:"idExterno"`
	Name       string             `bson:"nombre" json:"nombre"`
	Location   string             `bson:"ubicacion,omitempty" json:"ubicacion,omitempty"`
	Active     bool               `bson:"activo" json:"activo"`
	CreatedAt  time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
	UpdatedAt  time.Time          `bson:"fechaActualizacion" json:"fechaActualizacion"`
}
