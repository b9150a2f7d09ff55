package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrDepositNotFound   = errors.New("depósito no encontrado")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Configuración fraccionada.
	ErrFractionSelfLink     = errors.New("un producto no puede fraccionarse a partir de sí mismo")
	ErrFractionConflict     = errors.New("el producto ya está vinculado a otro fraccionamiento")
	ErrFractionChildMissing = errors.New("algunos productos fraccionados no fueron encontrados")
	ErrFractionCycle        = errors.New("el fraccionamiento cerraría un ciclo entre productos")
)

// InsufficientStockError detalla una salida que dejaría el depósito en negativo.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientStockError struct {
	ProductID string
	DepositID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: producto %s en depósito %s (disponible %s, solicitado %s)",
		e.ProductID, e.DepositID, e.Available.String(), e.Requested.String())
}

// Is permite comparar contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// FractionConflictError indica qué hijo ya pertenece a otro padre.
type FractionConflictError struct {
	ChildID         string
	CurrentParentID string
}

func (e *FractionConflictError) Error() string {
	return fmt.Sprintf("el producto %s ya está vinculado al fraccionamiento de %s", e.ChildID, e.CurrentParentID)
}

func (e *FractionConflictError) Is(target error) bool {
	return target == ErrFractionConflict
}
