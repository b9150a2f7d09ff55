package inventory

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store en memoria con semántica transaccional (snapshot al iniciar, restore en rollback)
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	deposits  map[string]*entity.Deposit
	movements []*entity.StockMovement
}

func newMemStore(depositIDs ...string) *memStore {
	s := &memStore{
		products: make(map[string]*entity.Product),
		deposits: make(map[string]*entity.Deposit),
	}
	for _, id := range depositIDs {
		s.deposits[id] = &entity.Deposit{ID: id, Name: id, Active: true}
	}
	return s
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	c.Stocks = append([]entity.StockEntry(nil), p.Stocks...)
	c.Fractional.Items = append([]entity.FractionEdge(nil), p.Fractional.Items...)
	if p.Fractional.CostPerFraction != nil {
		v := *p.Fractional.CostPerFraction
		c.Fractional.CostPerFraction = &v
	}
	if p.Fractional.EquivalentStock != nil {
		v := *p.Fractional.EquivalentStock
		c.Fractional.EquivalentStock = &v
	}
	if p.Fractional.RawStock != nil {
		v := *p.Fractional.RawStock
		c.Fractional.RawStock = &v
	}
	if p.Fractional.UpdatedAt != nil {
		v := *p.Fractional.UpdatedAt
		c.Fractional.UpdatedAt = &v
	}
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	c.Items = append([]entity.StockMovementItem(nil), m.Items...)
	return &c
}

// addProduct registra un producto con stock por depósito ("d1": "48").
func (s *memStore) addProduct(id, unit, cost string, stocks map[string]string) *entity.Product {
	p := &entity.Product{ID: id, Name: id, Unit: unit, Cost: decimal.RequireFromString(cost)}
	deps := make([]string, 0, len(stocks))
	for dep := range stocks {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	for _, dep := range deps {
		q := decimal.RequireFromString(stocks[dep])
		p.Stocks = append(p.Stocks, entity.StockEntry{DepositID: dep, Quantity: q, Unit: p.BaseUnit()})
		p.Stock = p.Stock.Add(q)
	}
	s.products[id] = p
	return p
}

// link declara la arista parent -> child y marca al hijo.
func (s *memStore) link(parentID, childID, origin, fraction string) {
	parent := s.products[parentID]
	parent.Fractional.Active = true
	parent.Fractional.Items = append(parent.Fractional.Items, entity.FractionEdge{
		ChildProductID:   childID,
		OriginQuantity:   decimal.RequireFromString(origin),
		FractionQuantity: decimal.RequireFromString(fraction),
	})
	if child := s.products[childID]; child != nil {
		child.ParentID = parentID
	}
}

func (s *memStore) qty(productID, depositID string) decimal.Decimal {
	return s.products[productID].Quantity(depositID)
}

func (s *memStore) sortedIDs() []string {
	ids := make([]string, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ─── TxRunner ───

type memTxRunner struct {
	s *memStore
}

var _ TxRunner = (*memTxRunner)(nil)

func (r *memTxRunner) Run(ctx context.Context, fn func(repository.StockMovementRepository, repository.ProductRepository) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := make(map[string]*entity.Product, len(r.s.products))
	for id, p := range r.s.products {
		snapshot[id] = cloneProduct(p)
	}
	movements := append([]*entity.StockMovement(nil), r.s.movements...)

	if err := fn(&memMovementRepo{s: r.s}, &memProductRepo{s: r.s}); err != nil {
		r.s.products = snapshot
		r.s.movements = movements
		return err
	}
	return nil
}

// ─── ProductRepository ───

type memProductRepo struct {
	s *memStore
}

var _ repository.ProductRepository = (*memProductRepo)(nil)

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *memProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memProductRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r *memProductRepo) ListFractionalParents(_ context.Context, childID string) ([]string, error) {
	var out []string
	for _, id := range r.s.sortedIDs() {
		p := r.s.products[id]
		if !p.Fractional.Active {
			continue
		}
		for _, e := range p.Fractional.Items {
			if e.ChildProductID == childID {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}

func (r *memProductRepo) ListFractionalProducts(_ context.Context) ([]string, error) {
	var out []string
	for _, id := range r.s.sortedIDs() {
		if r.s.products[id].IsFractionalParent() {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *memProductRepo) SaveStocks(_ context.Context, product *entity.Product) error {
	stored, ok := r.s.products[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	stored.Stocks = append([]entity.StockEntry(nil), product.Stocks...)
	stored.Stock = product.Stock
	stored.UpdatedAt = product.UpdatedAt
	return nil
}

func (r *memProductRepo) SaveFractionalSnapshot(_ context.Context, product *entity.Product) error {
	stored, ok := r.s.products[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	c := cloneProduct(product)
	stored.Fractional.CostPerFraction = c.Fractional.CostPerFraction
	stored.Fractional.EquivalentStock = c.Fractional.EquivalentStock
	stored.Fractional.RawStock = c.Fractional.RawStock
	stored.Fractional.UpdatedAt = c.Fractional.UpdatedAt
	return nil
}

func (r *memProductRepo) SaveFractionalConfig(_ context.Context, product *entity.Product) error {
	stored, ok := r.s.products[product.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	for _, e := range product.Fractional.Items {
		for id, other := range r.s.products {
			if id == product.ID {
				continue
			}
			for _, oe := range other.Fractional.Items {
				if oe.ChildProductID == e.ChildProductID {
					return domain.ErrFractionConflict
				}
			}
		}
	}
	stored.Fractional.Active = product.Fractional.Active
	stored.Fractional.Items = append([]entity.FractionEdge(nil), product.Fractional.Items...)
	return nil
}

func (r *memProductRepo) SetParentLink(_ context.Context, childIDs []string, parentID string) error {
	for _, id := range childIDs {
		if p, ok := r.s.products[id]; ok {
			p.ParentID = parentID
		}
	}
	return nil
}

func (r *memProductRepo) ClearParentLinks(_ context.Context, parentID string, keep []string) error {
	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}
	for id, p := range r.s.products {
		if _, ok := kept[id]; ok {
			continue
		}
		if p.ParentID == parentID {
			p.ParentID = ""
		}
	}
	return nil
}

// ─── StockMovementRepository ───

type memMovementRepo struct {
	s *memStore
}

var _ repository.StockMovementRepository = (*memMovementRepo)(nil)

func (r *memMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	r.s.movements = append(r.s.movements, cloneMovement(movement))
	return nil
}

func (r *memMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			return cloneMovement(m), nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) FindByReference(_ context.Context, kind, reference string) (*entity.StockMovement, error) {
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if m.Kind == kind && m.ReferenceDocument == reference {
			return cloneMovement(m), nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if from != nil && m.MovementDate.Before(*from) {
			continue
		}
		if to != nil && m.MovementDate.After(*to) {
			continue
		}
		for _, it := range m.Items {
			if it.ProductID == productID {
				out = append(out, cloneMovement(m))
				break
			}
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ─── DepositRepository ───

type memDepositRepo struct {
	s *memStore
}

var _ repository.DepositRepository = (*memDepositRepo)(nil)

func (r *memDepositRepo) GetByID(_ context.Context, id string) (*entity.Deposit, error) {
	d, ok := r.s.deposits[id]
	if !ok {
		return nil, nil
	}
	c := *d
	return &c, nil
}

// ─── Helpers ───

func requireQty(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "esperado %s, obtenido %s", want, got.String())
}
