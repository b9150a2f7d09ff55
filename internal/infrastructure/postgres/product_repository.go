package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `
	id, company_id, sku, name, unit, cost, stock,
	fractional_active, fraction_cost_per_unit, fraction_equivalent_stock, fraction_raw_stock, fraction_updated_at,
	fractioned_from, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto con stock por depósito y aristas fraccionadas.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// GetByIDs obtiene varios productos; los inexistentes se omiten.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list products by id: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListFractionalParents IDs de padres activos con una arista hacia childID.
func (r *ProductRepo) ListFractionalParents(ctx context.Context, childID string) ([]string, error) {
	return r.listIDs(ctx, `
		SELECT DISTINCT p.id
		FROM products p
		JOIN product_fraction_items i ON i.parent_id = p.id
		WHERE p.fractional_active AND i.child_id = $1
		ORDER BY p.id`, childID)
}

// ListFractionalProducts IDs de productos con fraccionamiento activo y al menos una arista.
func (r *ProductRepo) ListFractionalProducts(ctx context.Context) ([]string, error) {
	return r.listIDs(ctx, `
		SELECT p.id
		FROM products p
		WHERE p.fractional_active
		  AND EXISTS (SELECT 1 FROM product_fraction_items i WHERE i.parent_id = p.id)
		ORDER BY p.id`)
}

// SaveStocks reemplaza las entradas de stock del producto y actualiza el agregado.
func (r *ProductRepo) SaveStocks(ctx context.Context, product *entity.Product) error {
	depositIDs := make([]string, 0, len(product.Stocks))
	for _, s := range product.Stocks {
		depositIDs = append(depositIDs, s.DepositID)
	}
	if _, err := r.q.Exec(ctx,
		`DELETE FROM product_stocks WHERE product_id = $1 AND NOT (deposit_id = ANY($2))`,
		product.ID, depositIDs,
	); err != nil {
		return fmt.Errorf("delete product stocks: %w", err)
	}
	for _, s := range product.Stocks {
		updatedAt := s.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		if _, err := r.q.Exec(ctx, `
			INSERT INTO product_stocks (product_id, deposit_id, quantity, unit, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (product_id, deposit_id)
			DO UPDATE SET quantity = EXCLUDED.quantity, unit = EXCLUDED.unit, updated_at = EXCLUDED.updated_at`,
			product.ID, s.DepositID, s.Quantity, s.Unit, updatedAt,
		); err != nil {
			return fmt.Errorf("upsert product stock: %w", err)
		}
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`,
		product.ID, product.Stock,
	)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, product.ID)
	}
	return nil
}

// SaveFractionalSnapshot persiste los campos derivados del fraccionamiento.
func (r *ProductRepo) SaveFractionalSnapshot(ctx context.Context, product *entity.Product) error {
	f := product.Fractional
	_, err := r.q.Exec(ctx, `
		UPDATE products SET
			fraction_cost_per_unit = $2,
			fraction_equivalent_stock = $3,
			fraction_raw_stock = $4,
			fraction_updated_at = $5
		WHERE id = $1`,
		product.ID, f.CostPerFraction, f.EquivalentStock, f.RawStock, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update fractional snapshot: %w", err)
	}
	return nil
}

// SaveFractionalConfig reemplaza las aristas y el flag activo. Un hijo ya usado por otro padre
// viola product_fraction_items_child_uniq y se traduce a ErrFractionConflict.
func (r *ProductRepo) SaveFractionalConfig(ctx context.Context, product *entity.Product) error {
	if _, err := r.q.Exec(ctx,
		`UPDATE products SET fractional_active = $2, updated_at = now() WHERE id = $1`,
		product.ID, product.Fractional.Active,
	); err != nil {
		return fmt.Errorf("update fractional flag: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM product_fraction_items WHERE parent_id = $1`, product.ID); err != nil {
		return fmt.Errorf("delete fraction items: %w", err)
	}
	for i, edge := range product.Fractional.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO product_fraction_items (parent_id, position, child_id, origin_quantity, fraction_quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			product.ID, i, edge.ChildProductID, edge.OriginQuantity, edge.FractionQuantity,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrFractionConflict
			}
			return fmt.Errorf("insert fraction item: %w", err)
		}
	}
	return nil
}

// SetParentLink marca parentID como padre de los hijos indicados.
func (r *ProductRepo) SetParentLink(ctx context.Context, childIDs []string, parentID string) error {
	if len(childIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx,
		`UPDATE products SET fractioned_from = $2, updated_at = now() WHERE id = ANY($1)`,
		childIDs, parentID,
	)
	if err != nil {
		return fmt.Errorf("link fraction children: %w", err)
	}
	return nil
}

// ClearParentLinks desvincula los hijos de parentID que no estén en keep.
func (r *ProductRepo) ClearParentLinks(ctx context.Context, parentID string, keep []string) error {
	if keep == nil {
		keep = []string{}
	}
	_, err := r.q.Exec(ctx,
		`UPDATE products SET fractioned_from = NULL, updated_at = now()
		 WHERE fractioned_from = $1 AND NOT (id = ANY($2))`,
		parentID, keep,
	)
	if err != nil {
		return fmt.Errorf("unlink fraction children: %w", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, query, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := r.loadDetails(ctx, []*entity.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepo) listIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// loadDetails completa Stocks y Fractional.Items de cada producto con dos consultas.
func (r *ProductRepo) loadDetails(ctx context.Context, products []*entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Product, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := r.q.Query(ctx, `
		SELECT product_id, deposit_id, quantity, unit, updated_at
		FROM product_stocks WHERE product_id = ANY($1)
		ORDER BY product_id, deposit_id`, ids)
	if err != nil {
		return fmt.Errorf("list product stocks: %w", err)
	}
	for rows.Next() {
		var productID string
		var s entity.StockEntry
		if err := rows.Scan(&productID, &s.DepositID, &s.Quantity, &s.Unit, &s.UpdatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan product stock: %w", err)
		}
		if p := byID[productID]; p != nil {
			p.Stocks = append(p.Stocks, s)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.q.Query(ctx, `
		SELECT parent_id, child_id, origin_quantity, fraction_quantity
		FROM product_fraction_items WHERE parent_id = ANY($1)
		ORDER BY parent_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list fraction items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var parentID string
		var e entity.FractionEdge
		if err := rows.Scan(&parentID, &e.ChildProductID, &e.OriginQuantity, &e.FractionQuantity); err != nil {
			return fmt.Errorf("scan fraction item: %w", err)
		}
		if p := byID[parentID]; p != nil {
			p.Fractional.Items = append(p.Fractional.Items, e)
		}
	}
	return rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var companyID, parentID *string
	var costPerFraction, rawStock *decimal.Decimal
	var equivalent *int64
	var fractionUpdatedAt *time.Time
	err := row.Scan(
		&p.ID, &companyID, &p.SKU, &p.Name, &p.Unit, &p.Cost, &p.Stock,
		&p.Fractional.Active, &costPerFraction, &equivalent, &rawStock, &fractionUpdatedAt,
		&parentID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if companyID != nil {
		p.CompanyID = *companyID
	}
	if parentID != nil {
		p.ParentID = *parentID
	}
	p.Fractional.CostPerFraction = costPerFraction
	p.Fractional.EquivalentStock = equivalent
	p.Fractional.RawStock = rawStock
	p.Fractional.UpdatedAt = fractionUpdatedAt
	return &p, nil
}
