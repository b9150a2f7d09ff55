package entity

import "time"

// Deposit representa un depósito o sucursal donde se almacena inventario.
type Deposit struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
