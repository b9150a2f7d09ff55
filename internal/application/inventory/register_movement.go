package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	domaininv "github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// RegisterMovementUseCase compone ajustes en cascada dentro de una única transacción y
// registra el movimiento de auditoría sólo si todos los ajustes tuvieron éxito.
type RegisterMovementUseCase struct {
	txRunner    TxRunner
	depositRepo repository.DepositRepository
	log         zerolog.Logger
	now         func() time.Time
	newID       func() string
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner, depositRepo repository.DepositRepository, log zerolog.Logger) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		depositRepo: depositRepo,
		log:         log,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

// MovementLine línea de entrada. DepositID opcional: si está vacío se usa el depósito del movimiento.
type MovementLine struct {
	ProductID string
	DepositID string
	Quantity  decimal.Decimal // siempre positiva; el signo lo define la operación
	UnitCost  *decimal.Decimal
}

// AdjustmentInput ajuste manual de inventario (entrada o salida) en un depósito.
type AdjustmentInput struct {
	Operation         string // entity.OperationIN | entity.OperationOUT
	Reason            string
	DepositID         string
	Items             []MovementLine
	ResponsibleID     string
	MovementDate      time.Time
	ReferenceDocument string
	Notes             string
}

// TransferInput traslado aprobado entre dos depósitos.
type TransferInput struct {
	OriginDepositID      string
	DestinationDepositID string
	Items                []MovementLine
	ResponsibleID        string
	ReferenceDocument    string
	Notes                string
}

// ExchangeInput finalización de un cambio: lo devuelto entra, lo llevado sale.
type ExchangeInput struct {
	ExchangeID    string
	DepositID     string
	ReturnedItems []MovementLine
	TakenItems    []MovementLine
	ResponsibleID string
}

// PurchaseInvoiceInput aprobación de una nota fiscal de compra.
type PurchaseInvoiceInput struct {
	InvoiceID     string
	DepositID     string
	Operation     string // por defecto entity.OperationIN
	Items         []MovementLine
	ResponsibleID string
}

// MovementResult resultado de una operación transaccional.
type MovementResult struct {
	Movement       *entity.StockMovement
	Warnings       []string
	AlreadyApplied bool
	Skipped        bool
}

type plannedDelta struct {
	productID string
	depositID string
	delta     decimal.Decimal
	unitCost  *decimal.Decimal
}

// RegisterAdjustment ajuste manual: IN suma, OUT resta, una línea a la vez en el orden recibido.
func (uc *RegisterMovementUseCase) RegisterAdjustment(ctx context.Context, in AdjustmentInput) (*MovementResult, error) {
	factor, err := operationFactor(in.Operation)
	if err != nil {
		return nil, err
	}
	if err := validateItems(in.Items, in.DepositID != ""); err != nil {
		return nil, err
	}
	deltas := make([]plannedDelta, 0, len(in.Items))
	for _, line := range in.Items {
		deltas = append(deltas, plannedDelta{
			productID: line.ProductID,
			depositID: firstNonEmpty(line.DepositID, in.DepositID),
			delta:     line.Quantity.Mul(factor),
			unitCost:  line.UnitCost,
		})
	}
	if err := ensureDeposits(ctx, uc.depositRepo, depositsOf(deltas)...); err != nil {
		return nil, err
	}
	date := in.MovementDate
	if date.IsZero() {
		date = uc.now()
	}
	mov := &entity.StockMovement{
		Kind:              entity.MovementKindAdjustment,
		Operation:         in.Operation,
		Reason:            in.Reason,
		DepositID:         in.DepositID,
		ReferenceDocument: in.ReferenceDocument,
		Notes:             in.Notes,
		MovementDate:      date,
		CreatedBy:         in.ResponsibleID,
	}
	return uc.execute(ctx, func(repository.StockMovementRepository) (*entity.StockMovement, []plannedDelta, *MovementResult, error) {
		return mov, deltas, nil, nil
	})
}

// ApproveTransfer resta en el origen y suma en el destino, línea por línea.
func (uc *RegisterMovementUseCase) ApproveTransfer(ctx context.Context, in TransferInput) (*MovementResult, error) {
	if in.OriginDepositID == "" || in.DestinationDepositID == "" || in.OriginDepositID == in.DestinationDepositID {
		return nil, domain.ErrInvalidInput
	}
	if err := validateItems(in.Items, true); err != nil {
		return nil, err
	}
	if err := ensureDeposits(ctx, uc.depositRepo, in.OriginDepositID, in.DestinationDepositID); err != nil {
		return nil, err
	}
	deltas := make([]plannedDelta, 0, 2*len(in.Items))
	for _, line := range in.Items {
		deltas = append(deltas,
			plannedDelta{productID: line.ProductID, depositID: in.OriginDepositID, delta: line.Quantity.Neg(), unitCost: line.UnitCost},
			plannedDelta{productID: line.ProductID, depositID: in.DestinationDepositID, delta: line.Quantity, unitCost: line.UnitCost},
		)
	}
	mov := &entity.StockMovement{
		Kind:                 entity.MovementKindTransfer,
		DepositID:            in.OriginDepositID,
		DestinationDepositID: in.DestinationDepositID,
		ReferenceDocument:    in.ReferenceDocument,
		Notes:                in.Notes,
		MovementDate:         uc.now(),
		CreatedBy:            in.ResponsibleID,
	}
	return uc.execute(ctx, func(repository.StockMovementRepository) (*entity.StockMovement, []plannedDelta, *MovementResult, error) {
		return mov, deltas, nil, nil
	})
}

// FinalizeExchange aplica primero los ítems devueltos (+) y luego los llevados (-).
func (uc *RegisterMovementUseCase) FinalizeExchange(ctx context.Context, in ExchangeInput) (*MovementResult, error) {
	if len(in.ReturnedItems) == 0 && len(in.TakenItems) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := validateLines(in.ReturnedItems, in.DepositID != ""); err != nil {
		return nil, err
	}
	if err := validateLines(in.TakenItems, in.DepositID != ""); err != nil {
		return nil, err
	}
	deltas := make([]plannedDelta, 0, len(in.ReturnedItems)+len(in.TakenItems))
	for _, line := range in.ReturnedItems {
		deltas = append(deltas, plannedDelta{productID: line.ProductID, depositID: firstNonEmpty(line.DepositID, in.DepositID), delta: line.Quantity, unitCost: line.UnitCost})
	}
	for _, line := range in.TakenItems {
		deltas = append(deltas, plannedDelta{productID: line.ProductID, depositID: firstNonEmpty(line.DepositID, in.DepositID), delta: line.Quantity.Neg(), unitCost: line.UnitCost})
	}
	if err := ensureDeposits(ctx, uc.depositRepo, depositsOf(deltas)...); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		Kind:              entity.MovementKindExchange,
		DepositID:         in.DepositID,
		ReferenceDocument: in.ExchangeID,
		MovementDate:      uc.now(),
		CreatedBy:         in.ResponsibleID,
	}
	return uc.execute(ctx, func(repository.StockMovementRepository) (*entity.StockMovement, []plannedDelta, *MovementResult, error) {
		return mov, deltas, nil, nil
	})
}

// ApprovePurchaseInvoice mueve el stock de una nota de compra autorizada una sola vez:
// si ya existe el movimiento para la nota devuelve AlreadyApplied sin tocar el ledger.
func (uc *RegisterMovementUseCase) ApprovePurchaseInvoice(ctx context.Context, in PurchaseInvoiceInput) (*MovementResult, error) {
	if in.InvoiceID == "" {
		return nil, domain.ErrInvalidInput
	}
	operation := in.Operation
	if operation == "" {
		operation = entity.OperationIN
	}
	factor, err := operationFactor(operation)
	if err != nil {
		return nil, err
	}
	if err := validateItems(in.Items, in.DepositID != ""); err != nil {
		return nil, err
	}
	deltas := make([]plannedDelta, 0, len(in.Items))
	for _, line := range in.Items {
		deltas = append(deltas, plannedDelta{
			productID: line.ProductID,
			depositID: firstNonEmpty(line.DepositID, in.DepositID),
			delta:     line.Quantity.Mul(factor),
			unitCost:  line.UnitCost,
		})
	}
	if err := ensureDeposits(ctx, uc.depositRepo, depositsOf(deltas)...); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		Kind:              entity.MovementKindPurchaseInvoice,
		Operation:         operation,
		DepositID:         in.DepositID,
		ReferenceDocument: in.InvoiceID,
		MovementDate:      uc.now(),
		CreatedBy:         in.ResponsibleID,
	}
	return uc.execute(ctx, func(movRepo repository.StockMovementRepository) (*entity.StockMovement, []plannedDelta, *MovementResult, error) {
		applied, err := movRepo.FindByReference(ctx, entity.MovementKindPurchaseInvoice, in.InvoiceID)
		if err != nil {
			return nil, nil, nil, err
		}
		if applied != nil {
			return nil, nil, &MovementResult{Movement: applied, AlreadyApplied: true}, nil
		}
		return mov, deltas, nil, nil
	})
}

// RevertPurchaseInvoice devuelve el stock de una nota cancelada aplicando los deltas inversos
// del movimiento original. Skipped si la nota nunca movió stock; AlreadyApplied si ya se revirtió.
func (uc *RegisterMovementUseCase) RevertPurchaseInvoice(ctx context.Context, invoiceID, responsibleID string) (*MovementResult, error) {
	if invoiceID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.execute(ctx, func(movRepo repository.StockMovementRepository) (*entity.StockMovement, []plannedDelta, *MovementResult, error) {
		reverted, err := movRepo.FindByReference(ctx, entity.MovementKindPurchaseReversal, invoiceID)
		if err != nil {
			return nil, nil, nil, err
		}
		if reverted != nil {
			return nil, nil, &MovementResult{Movement: reverted, AlreadyApplied: true}, nil
		}
		applied, err := movRepo.FindByReference(ctx, entity.MovementKindPurchaseInvoice, invoiceID)
		if err != nil {
			return nil, nil, nil, err
		}
		if applied == nil {
			return nil, nil, &MovementResult{Skipped: true}, nil
		}
		operation := entity.OperationOUT
		if applied.Operation == entity.OperationOUT {
			operation = entity.OperationIN
		}
		deltas := make([]plannedDelta, 0, len(applied.Items))
		for _, item := range applied.Items {
			deltas = append(deltas, plannedDelta{
				productID: item.ProductID,
				depositID: firstNonEmpty(item.DepositID, applied.DepositID),
				delta:     item.Quantity.Neg(),
				unitCost:  item.UnitCost,
			})
		}
		mov := &entity.StockMovement{
			Kind:              entity.MovementKindPurchaseReversal,
			Operation:         operation,
			DepositID:         applied.DepositID,
			ReferenceDocument: invoiceID,
			MovementDate:      uc.now(),
			CreatedBy:         responsibleID,
		}
		return mov, deltas, nil, nil
	})
}

type planFunc func(movRepo repository.StockMovementRepository) (*entity.StockMovement, []plannedDelta, *MovementResult, error)

// execute abre la transacción, aplica cada delta con cascada y un VisitSet propio por línea,
// y crea el registro de auditoría. Cualquier error hace Rollback de todo.
func (uc *RegisterMovementUseCase) execute(ctx context.Context, plan planFunc) (*MovementResult, error) {
	var result *MovementResult
	err := uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		mov, deltas, early, err := plan(movRepo)
		if err != nil {
			return err
		}
		if early != nil {
			result = early
			return nil
		}

		adjuster := NewCascadingAdjuster(productRepo, uc.log)
		var warnings []string
		totalQty := decimal.Zero
		totalValue := decimal.Zero
		items := make([]entity.StockMovementItem, 0, len(deltas))
		for _, d := range deltas {
			res, err := adjuster.AdjustStock(ctx, d.productID, d.depositID, d.delta, true)
			if err != nil {
				return err
			}
			warnings = append(warnings, res.Warnings...)

			unitCost := d.unitCost
			if unitCost == nil {
				product, err := productRepo.GetByID(ctx, d.productID)
				if err != nil {
					return err
				}
				if product != nil {
					c := product.Cost.Round(2)
					unitCost = &c
				}
			}
			items = append(items, entity.StockMovementItem{
				ProductID: d.productID,
				DepositID: d.depositID,
				Quantity:  d.delta,
				UnitCost:  unitCost,
			})
			totalQty = totalQty.Add(d.delta)
			if unitCost != nil {
				totalValue = totalValue.Add(unitCost.Mul(d.delta))
			}
		}

		now := uc.now()
		mov.ID = uc.newID()
		mov.TransactionID = uc.newID()
		mov.Items = items
		mov.TotalQuantity = domaininv.RoundQuantity(totalQty)
		mov.TotalValue = totalValue.Round(2)
		mov.CreatedAt = now
		if mov.MovementDate.IsZero() {
			mov.MovementDate = now
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		result = &MovementResult{Movement: mov, Warnings: warnings}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Msg("movimiento de stock revertido")
		return nil, err
	}
	return result, nil
}

func operationFactor(operation string) (decimal.Decimal, error) {
	switch operation {
	case entity.OperationIN:
		return decimal.NewFromInt(1), nil
	case entity.OperationOUT:
		return decimal.NewFromInt(-1), nil
	}
	return decimal.Zero, domain.ErrInvalidInput
}

func validateItems(lines []MovementLine, hasDefaultDeposit bool) error {
	if len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	return validateLines(lines, hasDefaultDeposit)
}

// validateLines exige producto y cantidad > 0 en cada línea, y un depósito resoluble.
func validateLines(lines []MovementLine, hasDefaultDeposit bool) error {
	for _, line := range lines {
		if line.ProductID == "" || !line.Quantity.IsPositive() {
			return domain.ErrInvalidInput
		}
		if line.UnitCost != nil && line.UnitCost.IsNegative() {
			return domain.ErrInvalidInput
		}
		if line.DepositID == "" && !hasDefaultDeposit {
			return domain.ErrDepositNotFound
		}
	}
	return nil
}

func depositsOf(deltas []plannedDelta) []string {
	ids := make([]string, 0, len(deltas))
	for _, d := range deltas {
		ids = append(ids, d.depositID)
	}
	return ids
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
