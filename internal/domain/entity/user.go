package entity

import "time"

// Roles válidos para operadores.
const (
	RoleAdmin = "admin"
	RoleRH    = "rh"
)

// User representa un operador del sistema (pertenece a una empresa) que emite enlaces
// de registro y administra perfiles biométricos.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, rh
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
