package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newMovementUseCase(s *memStore) *RegisterMovementUseCase {
	uc := NewRegisterMovementUseCase(&memTxRunner{s: s}, &memDepositRepo{s: s}, zerolog.Nop())
	uc.now = func() time.Time { return fixedNow }
	n := 0
	uc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return uc
}

func line(productID, qty string) MovementLine {
	return MovementLine{ProductID: productID, Quantity: dec(qty)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterAdjustment_InRecordsMovement(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("food", "kg", "2.5", map[string]string{"d1": "5"})
	uc := newMovementUseCase(s)

	res, err := uc.RegisterAdjustment(context.Background(), AdjustmentInput{
		Operation: entity.OperationIN,
		Reason:    "conteo",
		DepositID: "d1",
		Items:     []MovementLine{line("food", "10")},
	})
	require.NoError(t, err)
	requireQty(t, "15", s.qty("food", "d1"))

	require.Len(t, s.movements, 1)
	m := res.Movement
	assert.Equal(t, entity.MovementKindAdjustment, m.Kind)
	assert.Equal(t, fixedNow, m.MovementDate)
	requireQty(t, "10", m.TotalQuantity)
	requireQty(t, "25", m.TotalValue)
	require.Len(t, m.Items, 1)
	requireQty(t, "2.5", *m.Items[0].UnitCost)
}

func TestRegisterAdjustment_FailureRollsBackEveryLine(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("x", "un", "1", map[string]string{"d1": "5"})
	s.addProduct("y", "un", "1", map[string]string{"d1": "2"})
	uc := newMovementUseCase(s)

	_, err := uc.RegisterAdjustment(context.Background(), AdjustmentInput{
		Operation: entity.OperationOUT,
		DepositID: "d1",
		Items:     []MovementLine{line("x", "1"), line("y", "10")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	requireQty(t, "5", s.qty("x", "d1"))
	requireQty(t, "2", s.qty("y", "d1"))
	assert.Empty(t, s.movements)
}

func TestRegisterAdjustment_Validation(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("x", "un", "1", map[string]string{"d1": "5"})
	uc := newMovementUseCase(s)
	ctx := context.Background()

	_, err := uc.RegisterAdjustment(ctx, AdjustmentInput{Operation: "SIDEWAYS", DepositID: "d1", Items: []MovementLine{line("x", "1")}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.RegisterAdjustment(ctx, AdjustmentInput{Operation: entity.OperationIN, DepositID: "d1"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.RegisterAdjustment(ctx, AdjustmentInput{Operation: entity.OperationIN, DepositID: "d1", Items: []MovementLine{line("x", "0")}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.RegisterAdjustment(ctx, AdjustmentInput{Operation: entity.OperationIN, DepositID: "d9", Items: []MovementLine{line("x", "1")}})
	assert.True(t, errors.Is(err, domain.ErrDepositNotFound))

	_, err = uc.RegisterAdjustment(ctx, AdjustmentInput{Operation: entity.OperationIN, Items: []MovementLine{line("x", "1")}})
	assert.True(t, errors.Is(err, domain.ErrDepositNotFound))
}

func TestRegisterAdjustment_OutOfParentCascades(t *testing.T) {
	s := caseAndCans()
	uc := newMovementUseCase(s)

	res, err := uc.RegisterAdjustment(context.Background(), AdjustmentInput{
		Operation: entity.OperationOUT,
		DepositID: "d1",
		Items:     []MovementLine{line("case", "1")},
	})
	require.NoError(t, err)
	requireQty(t, "24", s.qty("can", "d1"))
	requireQty(t, "1", s.qty("case", "d1"))
	requireQty(t, "-1", res.Movement.TotalQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados y cambios
// ──────────────────────────────────────────────────────────────────────────────

func TestApproveTransfer_ConservesFractionalTotals(t *testing.T) {
	s := newMemStore("d1", "d2")
	s.addProduct("case", "cx", "60", nil)
	s.addProduct("can", "un", "2.5", map[string]string{"d1": "48"})
	s.link("case", "can", "1", "24")
	uc := newMovementUseCase(s)

	res, err := uc.ApproveTransfer(context.Background(), TransferInput{
		OriginDepositID:      "d1",
		DestinationDepositID: "d2",
		Items:                []MovementLine{line("case", "1")},
	})
	require.NoError(t, err)

	requireQty(t, "24", s.qty("can", "d1"))
	requireQty(t, "24", s.qty("can", "d2"))
	requireQty(t, "1", s.qty("case", "d1"))
	requireQty(t, "1", s.qty("case", "d2"))
	requireQty(t, "48", s.products["can"].Stock)
	requireQty(t, "0", res.Movement.TotalQuantity)
	require.Len(t, res.Movement.Items, 2)
	assert.Equal(t, "d1", res.Movement.Items[0].DepositID)
	assert.Equal(t, "d2", res.Movement.Items[1].DepositID)
}

func TestApproveTransfer_SameDepositIsInvalid(t *testing.T) {
	uc := newMovementUseCase(caseAndCans())
	_, err := uc.ApproveTransfer(context.Background(), TransferInput{
		OriginDepositID: "d1", DestinationDepositID: "d1", Items: []MovementLine{line("can", "1")},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestFinalizeExchange_ReturnedItemsFirst(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("toy", "un", "4", nil)
	uc := newMovementUseCase(s)

	res, err := uc.FinalizeExchange(context.Background(), ExchangeInput{
		ExchangeID:    "ex-1",
		DepositID:     "d1",
		ReturnedItems: []MovementLine{line("toy", "1")},
		TakenItems:    []MovementLine{line("toy", "1")},
	})
	require.NoError(t, err)
	requireQty(t, "0", s.qty("toy", "d1"))
	assert.Equal(t, "ex-1", res.Movement.ReferenceDocument)
	assert.Equal(t, entity.MovementKindExchange, res.Movement.Kind)
}

// ──────────────────────────────────────────────────────────────────────────────
// Notas de compra
// ──────────────────────────────────────────────────────────────────────────────

func TestApprovePurchaseInvoice_IsIdempotent(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("food", "kg", "3", map[string]string{"d1": "1"})
	uc := newMovementUseCase(s)
	ctx := context.Background()
	in := PurchaseInvoiceInput{InvoiceID: "nf-1", DepositID: "d1", Items: []MovementLine{line("food", "10")}}

	first, err := uc.ApprovePurchaseInvoice(ctx, in)
	require.NoError(t, err)
	assert.False(t, first.AlreadyApplied)
	assert.Equal(t, entity.OperationIN, first.Movement.Operation)

	second, err := uc.ApprovePurchaseInvoice(ctx, in)
	require.NoError(t, err)
	assert.True(t, second.AlreadyApplied)
	assert.Equal(t, first.Movement.ID, second.Movement.ID)

	requireQty(t, "11", s.qty("food", "d1"))
	assert.Len(t, s.movements, 1)
}

func TestRevertPurchaseInvoice(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("food", "kg", "3", map[string]string{"d1": "1"})
	uc := newMovementUseCase(s)
	ctx := context.Background()

	_, err := uc.ApprovePurchaseInvoice(ctx, PurchaseInvoiceInput{InvoiceID: "nf-1", DepositID: "d1", Items: []MovementLine{line("food", "10")}})
	require.NoError(t, err)

	res, err := uc.RevertPurchaseInvoice(ctx, "nf-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementKindPurchaseReversal, res.Movement.Kind)
	assert.Equal(t, entity.OperationOUT, res.Movement.Operation)
	assert.Equal(t, "user-1", res.Movement.CreatedBy)
	requireQty(t, "1", s.qty("food", "d1"))

	again, err := uc.RevertPurchaseInvoice(ctx, "nf-1", "user-1")
	require.NoError(t, err)
	assert.True(t, again.AlreadyApplied)
	requireQty(t, "1", s.qty("food", "d1"))

	skipped, err := uc.RevertPurchaseInvoice(ctx, "nf-unknown", "")
	require.NoError(t, err)
	assert.True(t, skipped.Skipped)
}

func TestRevertPurchaseInvoice_InsufficientStockRollsBack(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("food", "kg", "3", nil)
	uc := newMovementUseCase(s)
	ctx := context.Background()

	_, err := uc.ApprovePurchaseInvoice(ctx, PurchaseInvoiceInput{InvoiceID: "nf-2", DepositID: "d1", Items: []MovementLine{line("food", "10")}})
	require.NoError(t, err)
	_, err = uc.RegisterAdjustment(ctx, AdjustmentInput{Operation: entity.OperationOUT, DepositID: "d1", Items: []MovementLine{line("food", "8")}})
	require.NoError(t, err)

	_, err = uc.RevertPurchaseInvoice(ctx, "nf-2", "")
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	requireQty(t, "2", s.qty("food", "d1"))
	assert.Len(t, s.movements, 2)
}

func TestStockUseCase_ListMovements(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("food", "kg", "3", nil)
	s.addProduct("toy", "un", "1", nil)
	mv := newMovementUseCase(s)
	ctx := context.Background()

	_, err := mv.RegisterAdjustment(ctx, AdjustmentInput{Operation: entity.OperationIN, DepositID: "d1", Items: []MovementLine{line("food", "1")}})
	require.NoError(t, err)
	_, err = mv.RegisterAdjustment(ctx, AdjustmentInput{Operation: entity.OperationIN, DepositID: "d1", Items: []MovementLine{line("toy", "1")}})
	require.NoError(t, err)

	list, err := newStockUseCase(s).ListMovements(ctx, "food", nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "food", list[0].Items[0].ProductID)
}
