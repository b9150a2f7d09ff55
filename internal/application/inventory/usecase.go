package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// StockUseCase expone el motor de stock fuera de un movimiento auditado: ajuste puntual,
// fijación absoluta (conteo) y resincronización de productos fraccionados (mantenimiento).
// Cada llamada abre su propia transacción y relee el estado confirmado.
type StockUseCase struct {
	txRunner    TxRunner
	depositRepo repository.DepositRepository
	log         zerolog.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, depositRepo repository.DepositRepository, log zerolog.Logger) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, depositRepo: depositRepo, log: log}
}

// AdjustStock aplica delta a (productID, depositID) con cascada opcional.
func (uc *StockUseCase) AdjustStock(ctx context.Context, productID, depositID string, delta decimal.Decimal, cascade bool) (AdjustResult, error) {
	if err := ensureDeposits(ctx, uc.depositRepo, depositID); err != nil {
		return AdjustResult{}, err
	}
	var out AdjustResult
	err := uc.txRunner.Run(ctx, func(_ repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		res, err := NewCascadingAdjuster(productRepo, uc.log).AdjustStock(ctx, productID, depositID, delta, cascade)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// SetDepositQuantity fija la cantidad absoluta (sin cascada a hijos) y refresca los padres vinculados.
func (uc *StockUseCase) SetDepositQuantity(ctx context.Context, productID, depositID string, value decimal.Decimal) (bool, error) {
	if value.IsNegative() {
		return false, domain.ErrInvalidInput
	}
	if err := ensureDeposits(ctx, uc.depositRepo, depositID); err != nil {
		return false, err
	}
	var changed bool
	err := uc.txRunner.Run(ctx, func(_ repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		ok, err := NewLedger(productRepo).SetQuantity(ctx, productID, depositID, value)
		if err != nil {
			return err
		}
		changed = ok
		if ok {
			NewFractionalResolver(productRepo, uc.log).RefreshParents(ctx, productID, nil)
		}
		return nil
	})
	return changed, err
}

// GetQuantity cantidad registrada del producto en el depósito (0 si no hay entrada).
func (uc *StockUseCase) GetQuantity(ctx context.Context, productID, depositID string) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := uc.txRunner.Run(ctx, func(_ repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		q, err := NewLedger(productRepo).GetQuantity(ctx, productID, depositID)
		qty = q
		return err
	})
	return qty, err
}

// ListMovements historial de movimientos que tocan el producto, más recientes primero.
func (uc *StockUseCase) ListMovements(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var list []*entity.StockMovement
	err := uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, _ repository.ProductRepository) error {
		l, err := movRepo.ListByProduct(ctx, productID, from, to, limit, offset)
		list = l
		return err
	})
	return list, err
}

// RecomputeFractionalProduct fuerza el recálculo de los campos derivados de un producto.
func (uc *StockUseCase) RecomputeFractionalProduct(ctx context.Context, productID string) (RecomputeResult, error) {
	var out RecomputeResult
	err := uc.txRunner.Run(ctx, func(_ repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		res, err := NewFractionalResolver(productRepo, uc.log).Recompute(ctx, productID)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// RecomputeAll recalcula cada producto fraccionado activo en su propia transacción.
// Un fallo en un producto no detiene el resto; se devuelve el primero al final.
func (uc *StockUseCase) RecomputeAll(ctx context.Context) ([]RecomputeResult, error) {
	var ids []string
	err := uc.txRunner.Run(ctx, func(_ repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		list, err := productRepo.ListFractionalProducts(ctx)
		ids = list
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listar productos fraccionados: %w", err)
	}

	results := make([]RecomputeResult, 0, len(ids))
	var firstErr error
	for _, id := range ids {
		res, err := uc.RecomputeFractionalProduct(ctx, id)
		if err != nil {
			uc.log.Error().Err(err).Str("product_id", id).Msg("resincronización fallida")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, res)
	}
	return results, firstErr
}

// ensureDeposits valida que cada depósito exista.
func ensureDeposits(ctx context.Context, depositRepo repository.DepositRepository, ids ...string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return domain.ErrDepositNotFound
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		dep, err := depositRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if dep == nil {
			return fmt.Errorf("%w: %s", domain.ErrDepositNotFound, id)
		}
	}
	return nil
}
