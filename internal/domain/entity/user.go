package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cajero"
)

// User usuario del tenant. WarehouseID es la bodega asignada por defecto.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	WarehouseID  *string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
