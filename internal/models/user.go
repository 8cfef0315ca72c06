package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERADOR"
	RoleViewer   Role = "LECTOR"
)

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	default:
		return false
	}
}

// User represents an operator account, scoped to a tenant.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"usuario" json:"usuario"`
	Email        string             `bson:"correo" json:"correo"`
	FullName     string             `bson:"nombreCompleto" json:"nombreCompleto"`
	PasswordHash string             `bson:"claveHash" json:"-"`
	Role         Role               `bson:"rol" json:"rol"`
	EmpresaID    string             `bson:"empresaId" json:"empresaId"`
	IsActive     bool               `bson:"activo" json:"activo"`
	FailedLogins int                `bson:"intentosFallidos" json:"-"`
	LockedUntil  *time.Time         `bson:"bloqueadoHasta,omitempty" json:"-"`
	LastLogin    *time.Time         `bson:"ultimoAcceso,omitempty" json:"ultimoAcceso,omitempty"`
	CreatedAt    time.Time          `bson:"fechaCreacion" json:"fechaCreacion"`
	UpdatedAt    time.Time          `bson:"fechaActualizacion" json:"fechaActualizacion"`
}

// LoginRequest represents a login request; Login takes a username or email.
type LoginRequest struct {
	Login    string `json:"usuario"`
	Password string `json:"clave"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username  string `json:"usuario"`
	Email     string `json:"correo"`
	FullName  string `json:"nombreCompleto"`
	Password  string `json:"clave"`
	Role      Role   `json:"rol"`
	EmpresaID string `json:"empresaId"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"usuario"`
}

// Claims represents JWT claims. EmpresaID is mandatory: there is no
// fallback tenant.
type Claims struct {
	UserID    string `json:"sub"`
	Username  string `json:"usuario"`
	Email     string `json:"correo"`
	Role      Role   `json:"rol"`
	EmpresaID string `json:"empresa_id"`
	Exp       int64  `json:"exp"`
}

// CanWrite reports whether the role may mutate operational data.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleOperator
}
