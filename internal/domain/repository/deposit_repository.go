package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// DepositRepository define el puerto de lectura de depósitos.
type DepositRepository interface {
	// GetByID devuelve nil, nil si el depósito no existe.
	GetByID(ctx context.Context, id string) (*entity.Deposit, error)
}
