package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	domaininv "github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// RecomputeResult resultado de recalcular un producto fraccionado.
// Warnings lista los hijos que no se pudieron resolver (no es un error).
type RecomputeResult struct {
	ProductID       string
	Resolved        bool
	Warnings        []string
	EquivalentStock *int64
	CostPerFraction *decimal.Decimal
}

// FractionalResolver recalcula los campos derivados de un padre fraccionado a partir del stock actual
// de sus hijos y sobrescribe sus entradas de stock con el reparto entero por depósito.
// No guarda estado entre llamadas: cada recálculo lee de nuevo los hijos.
type FractionalResolver struct {
	products repository.ProductRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewFractionalResolver construye el resolver sobre un repositorio (normalmente atado a una tx).
func NewFractionalResolver(products repository.ProductRepository, log zerolog.Logger) *FractionalResolver {
	return &FractionalResolver{products: products, log: log, now: time.Now}
}

// Recompute recalcula el producto. Sólo es fatal que el propio producto no exista o un error del store;
// hijos faltantes se devuelven en Warnings.
func (r *FractionalResolver) Recompute(ctx context.Context, productID string) (RecomputeResult, error) {
	result := RecomputeResult{ProductID: productID}
	if productID == "" {
		return result, domain.ErrProductNotFound
	}
	product, err := r.products.GetForUpdate(ctx, productID)
	if err != nil {
		return result, err
	}
	if product == nil {
		return result, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}

	now := r.now()
	if !product.IsFractionalParent() {
		return result, r.clear(ctx, product, now)
	}

	children, err := r.loadChildren(ctx, product)
	if err != nil {
		return result, err
	}

	res := domaininv.ResolveFractional(product, children)
	result.Warnings = res.Unresolved
	if len(res.Unresolved) > 0 {
		r.log.Warn().
			Str("product_id", product.ID).
			Strs("unresolved_children", res.Unresolved).
			Msg("algunos productos hijos no se resolvieron al recalcular el stock fraccionado")
	}
	if !res.Usable || !res.Resolved {
		return result, r.clear(ctx, product, now)
	}

	equivalent := res.EquivalentStock
	raw := res.RawStock
	product.Fractional.CostPerFraction = res.CostPerFraction
	product.Fractional.EquivalentStock = &equivalent
	product.Fractional.RawStock = &raw
	product.Fractional.UpdatedAt = &now

	stocks := make([]entity.StockEntry, 0, len(res.Allocations))
	for _, a := range res.Allocations {
		if a.Allocated <= 0 {
			continue
		}
		stocks = append(stocks, entity.StockEntry{
			DepositID: a.DepositID,
			Quantity:  decimal.NewFromInt(a.Allocated),
			Unit:      a.Unit,
			UpdatedAt: now,
		})
	}
	product.Stocks = stocks
	product.Stock = decimal.NewFromInt(equivalent)
	product.UpdatedAt = now

	if err := r.products.SaveStocks(ctx, product); err != nil {
		return result, err
	}
	if err := r.products.SaveFractionalSnapshot(ctx, product); err != nil {
		return result, err
	}

	result.Resolved = true
	result.EquivalentStock = product.Fractional.EquivalentStock
	result.CostPerFraction = product.Fractional.CostPerFraction
	return result, nil
}

// RefreshParents recalcula todos los padres activos que declaran a childID como fracción,
// salvo los presentes en skip (ya tocados por la operación en curso).
// Es un camino consultivo: los errores se registran y nunca se propagan.
func (r *FractionalResolver) RefreshParents(ctx context.Context, childID string, skip VisitSet) []RecomputeResult {
	parents, err := r.products.ListFractionalParents(ctx, childID)
	if err != nil {
		r.log.Error().Err(err).Str("child_id", childID).
			Msg("no se pudieron localizar los padres fraccionados")
		return nil
	}
	results := make([]RecomputeResult, 0, len(parents))
	for _, parentID := range parents {
		if parentID == "" || parentID == childID {
			continue
		}
		if _, ok := skip[parentID]; ok {
			continue
		}
		res, err := r.Recompute(ctx, parentID)
		if err != nil {
			r.log.Error().Err(err).Str("parent_id", parentID).Str("child_id", childID).
				Msg("error al actualizar el stock fraccionado del padre vinculado")
			continue
		}
		results = append(results, res)
	}
	return results
}

func (r *FractionalResolver) loadChildren(ctx context.Context, product *entity.Product) (map[string]*entity.Product, error) {
	seen := make(map[string]struct{}, len(product.Fractional.Items))
	ids := make([]string, 0, len(product.Fractional.Items))
	for _, edge := range product.Fractional.Items {
		if edge.ChildProductID == "" || edge.ChildProductID == product.ID {
			continue
		}
		if _, ok := seen[edge.ChildProductID]; ok {
			continue
		}
		seen[edge.ChildProductID] = struct{}{}
		ids = append(ids, edge.ChildProductID)
	}
	children := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return children, nil
	}
	list, err := r.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		if c != nil {
			children[c.ID] = c
		}
	}
	return children, nil
}

func (r *FractionalResolver) clear(ctx context.Context, product *entity.Product, now time.Time) error {
	product.ClearFractionalSnapshot(now)
	return r.products.SaveFractionalSnapshot(ctx, product)
}
