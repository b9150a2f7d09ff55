package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.DepositRepository = (*DepositRepo)(nil)

// DepositRepo implementación del puerto DepositRepository sobre PostgreSQL.
type DepositRepo struct {
	q Querier
}

// NewDepositRepository construye el adaptador de persistencia para depósitos.
func NewDepositRepository(q Querier) *DepositRepo {
	return &DepositRepo{q: q}
}

// GetByID obtiene un depósito por ID.
func (r *DepositRepo) GetByID(ctx context.Context, id string) (*entity.Deposit, error) {
	var d entity.Deposit
	var companyID *string
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, code, name, active, created_at, updated_at
		FROM deposits WHERE id = $1`, id,
	).Scan(&d.ID, &companyID, &d.Code, &d.Name, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get deposit: %w", err)
	}
	d.CompanyID = derefString(companyID)
	return &d, nil
}
