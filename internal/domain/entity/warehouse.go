package entity

import "time"

// Warehouse almacén o barra desde donde sale la mercadería.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
