package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `
	id, transaction_id, kind, operation, reason, deposit_id, destination_deposit_id,
	reference_document, notes, total_quantity, total_value, movement_date, created_at, created_by`

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste el movimiento y sus líneas.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.TransactionID == "" {
		movement.TransactionID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		movement.ID, movement.TransactionID, movement.Kind, movement.Operation, movement.Reason,
		nullString(movement.DepositID), nullString(movement.DestinationDepositID),
		movement.ReferenceDocument, movement.Notes, movement.TotalQuantity, movement.TotalValue,
		movement.MovementDate, movement.CreatedAt, nullString(movement.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	for i, item := range movement.Items {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO stock_movement_items (movement_id, line, product_id, deposit_id, quantity, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			movement.ID, i, item.ProductID, item.DepositID, item.Quantity, item.UnitCost,
		); err != nil {
			return fmt.Errorf("create stock movement item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un movimiento con sus líneas.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.StockMovement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// FindByReference último movimiento de ese tipo para el documento.
func (r *StockMovementRepo) FindByReference(ctx context.Context, kind, reference string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE kind = $1 AND reference_document = $2
		ORDER BY created_at DESC LIMIT 1`, kind, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find movement by reference: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.StockMovement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// ListByProduct lista movimientos que tocan un producto en un rango de fechas.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements m
		WHERE EXISTS (SELECT 1 FROM stock_movement_items i WHERE i.movement_id = m.id AND i.product_id = $1)`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND movement_date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND movement_date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY movement_date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *StockMovementRepo) loadItems(ctx context.Context, movements []*entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	byID := make(map[string]*entity.StockMovement, len(movements))
	ids := make([]string, 0, len(movements))
	for _, m := range movements {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT movement_id, product_id, deposit_id, quantity, unit_cost
		FROM stock_movement_items WHERE movement_id = ANY($1)
		ORDER BY movement_id, line`, ids)
	if err != nil {
		return fmt.Errorf("list movement items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var movementID string
		var it entity.StockMovementItem
		if err := rows.Scan(&movementID, &it.ProductID, &it.DepositID, &it.Quantity, &it.UnitCost); err != nil {
			return fmt.Errorf("scan movement item: %w", err)
		}
		if m := byID[movementID]; m != nil {
			m.Items = append(m.Items, it)
		}
	}
	return rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var depositID, destinationID, createdBy *string
	err := row.Scan(
		&m.ID, &m.TransactionID, &m.Kind, &m.Operation, &m.Reason, &depositID, &destinationID,
		&m.ReferenceDocument, &m.Notes, &m.TotalQuantity, &m.TotalValue, &m.MovementDate, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	m.DepositID = derefString(depositID)
	m.DestinationDepositID = derefString(destinationID)
	m.CreatedBy = derefString(createdBy)
	return &m, nil
}
