package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento registrados por las operaciones transaccionales.
const (
	MovementKindAdjustment       = "ADJUSTMENT"        // ajuste manual de inventario
	MovementKindTransfer         = "TRANSFER"          // traslado entre depósitos
	MovementKindExchange         = "EXCHANGE"          // cambio de mercadería
	MovementKindPurchaseInvoice  = "PURCHASE_INVOICE"  // aprobación de nota fiscal de compra
	MovementKindPurchaseReversal = "PURCHASE_REVERSAL" // retorno por cancelación de la nota
)

// Dirección de un ajuste.
const (
	OperationIN  = "IN"
	OperationOUT = "OUT"
)

// StockMovement registro inmutable de un cambio de cantidades aprobado (auditoría).
type StockMovement struct {
	ID                   string
	TransactionID        string
	Kind                 string
	Operation            string
	Reason               string
	DepositID            string
	DestinationDepositID string
	ReferenceDocument    string
	Notes                string
	Items                []StockMovementItem
	TotalQuantity        decimal.Decimal // suma con signo de los deltas
	TotalValue           decimal.Decimal
	MovementDate         time.Time
	CreatedAt            time.Time
	CreatedBy            string
}

// StockMovementItem línea del movimiento. Quantity es el delta con signo aplicado al depósito.
type StockMovementItem struct {
	ProductID string
	DepositID string
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
}
