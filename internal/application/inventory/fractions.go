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

// FractionEdgeInput arista declarada por el catálogo.
type FractionEdgeInput struct {
	ChildProductID   string
	OriginQuantity   decimal.Decimal
	FractionQuantity decimal.Decimal
}

// ConfigureFractionsUseCase reemplaza la configuración fraccionada de un producto manteniendo
// la exclusividad del vínculo hijo -> padre.
type ConfigureFractionsUseCase struct {
	txRunner TxRunner
	log      zerolog.Logger
}

// NewConfigureFractionsUseCase construye el caso de uso.
func NewConfigureFractionsUseCase(txRunner TxRunner, log zerolog.Logger) *ConfigureFractionsUseCase {
	return &ConfigureFractionsUseCase{txRunner: txRunner, log: log}
}

// Configure valida y persiste las aristas, vincula/desvincula hijos y recalcula el padre.
func (uc *ConfigureFractionsUseCase) Configure(ctx context.Context, parentID string, active bool, edges []FractionEdgeInput) (RecomputeResult, error) {
	if parentID == "" {
		return RecomputeResult{}, domain.ErrProductNotFound
	}
	childIDs := make([]string, 0, len(edges))
	seen := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		if e.ChildProductID == "" {
			return RecomputeResult{}, domain.ErrInvalidInput
		}
		if e.ChildProductID == parentID {
			return RecomputeResult{}, domain.ErrFractionSelfLink
		}
		if !domaininv.ValidEdgeQuantities(e.OriginQuantity, e.FractionQuantity) {
			return RecomputeResult{}, domain.ErrInvalidInput
		}
		if _, dup := seen[e.ChildProductID]; dup {
			return RecomputeResult{}, domain.ErrInvalidInput
		}
		seen[e.ChildProductID] = struct{}{}
		childIDs = append(childIDs, e.ChildProductID)
	}

	var out RecomputeResult
	err := uc.txRunner.Run(ctx, func(_ repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		parent, err := productRepo.GetForUpdate(ctx, parentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, parentID)
		}

		if len(childIDs) > 0 {
			children, err := productRepo.GetByIDs(ctx, childIDs)
			if err != nil {
				return err
			}
			if len(children) != len(childIDs) {
				return domain.ErrFractionChildMissing
			}
			for _, c := range children {
				if c.ParentID != "" && c.ParentID != parentID {
					return &domain.FractionConflictError{ChildID: c.ID, CurrentParentID: c.ParentID}
				}
			}
			if err := rejectCycle(ctx, productRepo, parent, seen); err != nil {
				return err
			}
		}

		parent.Fractional.Active = active
		parent.Fractional.Items = make([]entity.FractionEdge, 0, len(edges))
		for _, e := range edges {
			parent.Fractional.Items = append(parent.Fractional.Items, entity.FractionEdge{
				ChildProductID:   e.ChildProductID,
				OriginQuantity:   e.OriginQuantity,
				FractionQuantity: e.FractionQuantity,
			})
		}
		if err := productRepo.SaveFractionalConfig(ctx, parent); err != nil {
			return err
		}
		if len(childIDs) > 0 {
			if err := productRepo.SetParentLink(ctx, childIDs, parentID); err != nil {
				return err
			}
		}
		if err := productRepo.ClearParentLinks(ctx, parentID, childIDs); err != nil {
			return err
		}

		res, err := NewFractionalResolver(productRepo, uc.log).Recompute(ctx, parentID)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// rejectCycle recorre la cadena ParentID desde el padre; si algún ancestro es uno de los hijos
// nuevos, la arista cerraría un ciclo.
func rejectCycle(ctx context.Context, products repository.ProductRepository, parent *entity.Product, children map[string]struct{}) error {
	walked := map[string]struct{}{parent.ID: {}}
	for cur := parent.ParentID; cur != ""; {
		if _, ok := children[cur]; ok {
			return fmt.Errorf("%w: %s es ancestro de %s", domain.ErrFractionCycle, cur, parent.ID)
		}
		if _, ok := walked[cur]; ok {
			return nil
		}
		walked[cur] = struct{}{}
		ancestor, err := products.GetByID(ctx, cur)
		if err != nil {
			return err
		}
		if ancestor == nil {
			return nil
		}
		cur = ancestor.ParentID
	}
	return nil
}
