package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	domaininv "github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// Ledger mantiene la cantidad con signo por (producto, depósito).
// Cada mutación recalcula y persiste el agregado Stock del producto junto con las entradas.
type Ledger struct {
	products repository.ProductRepository
	now      func() time.Time
}

// NewLedger construye el ledger sobre un repositorio (normalmente atado a una tx).
func NewLedger(products repository.ProductRepository) *Ledger {
	return &Ledger{products: products, now: time.Now}
}

// GetQuantity devuelve la cantidad del depósito; 0 si no hay entrada.
func (l *Ledger) GetQuantity(ctx context.Context, productID, depositID string) (decimal.Decimal, error) {
	product, err := l.load(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return product.Quantity(depositID), nil
}

// SetQuantity fija la cantidad absoluta. No escribe si el valor nuevo está dentro de la tolerancia.
func (l *Ledger) SetQuantity(ctx context.Context, productID, depositID string, value decimal.Decimal) (bool, error) {
	if depositID == "" {
		return false, domain.ErrDepositNotFound
	}
	product, err := l.load(ctx, productID)
	if err != nil {
		return false, err
	}
	target := domaininv.RoundQuantity(value)
	if domaininv.IsNegligible(target.Sub(product.Quantity(depositID))) {
		return false, nil
	}
	if err := l.write(ctx, product, depositID, target); err != nil {
		return false, err
	}
	return true, nil
}

// AdjustQuantity aplica un delta relativo y devuelve la cantidad resultante.
// Falla con InsufficientStockError si el resultado queda por debajo de -Tolerance y allowNegative es false.
func (l *Ledger) AdjustQuantity(ctx context.Context, productID, depositID string, delta decimal.Decimal, allowNegative bool) (decimal.Decimal, error) {
	if depositID == "" {
		return decimal.Zero, domain.ErrDepositNotFound
	}
	product, err := l.load(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	current := product.Quantity(depositID)
	if domaininv.IsNegligible(delta) {
		return current, nil
	}
	next := domaininv.RoundQuantity(current.Add(delta))
	if domaininv.BelowTolerance(next) && !allowNegative {
		return current, &domain.InsufficientStockError{
			ProductID: product.ID,
			DepositID: depositID,
			Available: current,
			Requested: delta.Neg(),
		}
	}
	if !allowNegative && next.IsNegative() {
		next = decimal.Zero
	}
	if err := l.write(ctx, product, depositID, next); err != nil {
		return current, err
	}
	return next, nil
}

func (l *Ledger) load(ctx context.Context, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.ErrProductNotFound
	}
	product, err := l.products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return product, nil
}

// write asigna la cantidad (creando la entrada si falta), recalcula el agregado y persiste.
func (l *Ledger) write(ctx context.Context, product *entity.Product, depositID string, quantity decimal.Decimal) error {
	now := l.now()
	entry := product.EnsureEntry(depositID)
	entry.Quantity = domaininv.RoundQuantity(quantity)
	entry.UpdatedAt = now

	total := domaininv.RoundQuantity(product.TotalStock())
	if total.IsNegative() {
		total = decimal.Zero
	}
	product.Stock = total
	product.UpdatedAt = now
	return l.products.SaveStocks(ctx, product)
}
