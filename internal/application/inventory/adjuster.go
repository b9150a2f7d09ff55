package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	domaininv "github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// AdjustResult resultado de un ajuste en cascada.
// Adjusted son los productos mutados por el ledger, en orden de visita.
// Warnings viene del camino consultivo (recálculo de padres) y nunca aborta la operación.
type AdjustResult struct {
	Updated  bool
	Adjusted []string
	Warnings []string
}

// VisitSet productos ya tocados dentro de una operación lógica.
type VisitSet map[string]struct{}

func (v VisitSet) visit(id string) bool {
	if _, ok := v[id]; ok {
		return false
	}
	v[id] = struct{}{}
	return true
}

// CascadingAdjuster aplica un delta al ledger y propaga deltas proporcionales a los hijos fraccionados,
// recalculando luego el propio producto y los padres que lo declaran como hijo.
type CascadingAdjuster struct {
	products repository.ProductRepository
	ledger   *Ledger
	resolver *FractionalResolver
	log      zerolog.Logger
}

// NewCascadingAdjuster construye el ajustador sobre un repositorio atado a la transacción del caller.
func NewCascadingAdjuster(products repository.ProductRepository, log zerolog.Logger) *CascadingAdjuster {
	return &CascadingAdjuster{
		products: products,
		ledger:   NewLedger(products),
		resolver: NewFractionalResolver(products, log),
		log:      log,
	}
}

// AdjustStock cambia la cantidad de productID en depositID por delta, con un VisitSet nuevo.
func (a *CascadingAdjuster) AdjustStock(ctx context.Context, productID, depositID string, delta decimal.Decimal, cascade bool) (AdjustResult, error) {
	return a.AdjustStockVisited(ctx, productID, depositID, delta, cascade, VisitSet{})
}

// AdjustStockVisited igual que AdjustStock pero compartiendo el VisitSet del caller.
// Un producto ya presente en visited no se vuelve a mutar.
func (a *CascadingAdjuster) AdjustStockVisited(ctx context.Context, productID, depositID string, delta decimal.Decimal, cascade bool, visited VisitSet) (AdjustResult, error) {
	var res AdjustResult
	if visited == nil {
		visited = VisitSet{}
	}
	if _, err := a.adjust(ctx, productID, depositID, delta, cascade, visited, &res); err != nil {
		return AdjustResult{}, err
	}
	res.Updated = len(res.Adjusted) > 0
	return res, nil
}

// adjust devuelve applied=false cuando el producto ya estaba en visited o el delta es despreciable.
func (a *CascadingAdjuster) adjust(ctx context.Context, productID, depositID string, delta decimal.Decimal, cascade bool, visited VisitSet, res *AdjustResult) (bool, error) {
	if domaininv.IsNegligible(delta) {
		return false, nil
	}
	if productID == "" {
		return false, domain.ErrProductNotFound
	}
	if depositID == "" {
		return false, domain.ErrDepositNotFound
	}
	if !visited.visit(productID) {
		a.log.Debug().Str("product_id", productID).Msg("producto ya visitado en la operación, se omite")
		return false, nil
	}

	product, err := a.load(ctx, productID)
	if err != nil {
		return false, err
	}

	// Un padre cuyo stock sólo existe virtualmente en los hijos puede no tener entrada materializada.
	if product.Entry(depositID) == nil && delta.IsNegative() {
		product, err = a.refreshSnapshot(ctx, product, depositID, "missing_entry")
		if err != nil {
			return false, err
		}
	}
	next := domaininv.RoundQuantity(product.Quantity(depositID).Add(delta))
	if delta.IsNegative() && domaininv.BelowTolerance(next) {
		product, err = a.refreshSnapshot(ctx, product, depositID, "insufficient_stock")
		if err != nil {
			return false, err
		}
	}
	if _, err := a.ledger.AdjustQuantity(ctx, product.ID, depositID, delta, false); err != nil {
		return false, err
	}
	res.Adjusted = append(res.Adjusted, product.ID)

	if cascade && product.IsFractionalParent() {
		skipped := false
		for _, edge := range product.Fractional.Items {
			if edge.ChildProductID == "" || edge.ChildProductID == product.ID {
				continue
			}
			childDelta := domaininv.ChildDelta(delta, edge.OriginQuantity, edge.FractionQuantity)
			if domaininv.IsNegligible(childDelta) {
				continue
			}
			applied, err := a.adjust(ctx, edge.ChildProductID, depositID, childDelta, true, visited, res)
			if err != nil {
				a.log.Error().Err(err).
					Str("parent_id", product.ID).
					Str("child_id", edge.ChildProductID).
					Str("deposit_id", depositID).
					Msg("error al ajustar el stock del producto fraccionado vinculado")
				return false, err
			}
			if !applied {
				skipped = true
			}
		}

		// Con un hijo omitido el stock de los hijos no refleja el delta; recalcular destruiría cantidad.
		if skipped {
			a.log.Warn().Str("product_id", product.ID).Str("deposit_id", depositID).
				Msg("hijo fraccionado ya visitado, no se recalcula el producto")
		} else {
			recomputed, err := a.resolver.Recompute(ctx, product.ID)
			if err != nil {
				a.log.Error().Err(err).Str("product_id", product.ID).
					Msg("error al recalcular el stock fraccionado del producto")
			} else {
				res.Warnings = append(res.Warnings, recomputed.Warnings...)
			}
		}
	}

	for _, parent := range a.resolver.RefreshParents(ctx, product.ID, visited) {
		res.Warnings = append(res.Warnings, parent.Warnings...)
	}
	return true, nil
}

// refreshSnapshot recalcula el producto fraccionado y lo vuelve a leer. Si falla, se registra y se
// continúa con la versión ya cargada: la falta de stock se decide después.
func (a *CascadingAdjuster) refreshSnapshot(ctx context.Context, product *entity.Product, depositID, reason string) (*entity.Product, error) {
	if !product.IsFractionalParent() {
		return product, nil
	}
	if _, err := a.resolver.Recompute(ctx, product.ID); err != nil {
		a.log.Error().Err(err).
			Str("product_id", product.ID).
			Str("deposit_id", depositID).
			Str("context", reason).
			Msg("error al sincronizar el stock fraccionado antes del movimiento")
		return product, nil
	}
	return a.load(ctx, product.ID)
}

func (a *CascadingAdjuster) load(ctx context.Context, productID string) (*entity.Product, error) {
	product, err := a.products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return product, nil
}
