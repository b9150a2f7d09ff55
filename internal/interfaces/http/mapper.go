package http

import (
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

func toMovementLines(in []dto.MovementLineRequest) []inventory.MovementLine {
	out := make([]inventory.MovementLine, 0, len(in))
	for _, l := range in {
		out = append(out, inventory.MovementLine{
			ProductID: l.ProductID,
			DepositID: l.DepositID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
		})
	}
	return out
}

func toMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	items := make([]dto.MovementItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, dto.MovementItemResponse{
			ProductID: it.ProductID,
			DepositID: it.DepositID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
		})
	}
	return &dto.MovementResponse{
		ID:                   m.ID,
		TransactionID:        m.TransactionID,
		Kind:                 m.Kind,
		Operation:            m.Operation,
		Reason:               m.Reason,
		DepositID:            m.DepositID,
		DestinationDepositID: m.DestinationDepositID,
		ReferenceDocument:    m.ReferenceDocument,
		Notes:                m.Notes,
		Items:                items,
		TotalQuantity:        m.TotalQuantity,
		TotalValue:           m.TotalValue,
		MovementDate:         m.MovementDate,
		CreatedBy:            m.CreatedBy,
	}
}

func toMovementResult(r *inventory.MovementResult) dto.MovementResultResponse {
	return dto.MovementResultResponse{
		Movement:       toMovementResponse(r.Movement),
		Warnings:       r.Warnings,
		AlreadyApplied: r.AlreadyApplied,
		Skipped:        r.Skipped,
	}
}

func toRecomputeResponse(r inventory.RecomputeResult) dto.RecomputeResponse {
	return dto.RecomputeResponse{
		ProductID:       r.ProductID,
		Resolved:        r.Resolved,
		EquivalentStock: r.EquivalentStock,
		CostPerFraction: r.CostPerFraction,
		Warnings:        r.Warnings,
	}
}
