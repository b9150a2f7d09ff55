package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementLineRequest línea de un movimiento. DepositID opcional (usa el del movimiento).
type MovementLineRequest struct {
	ProductID string           `json:"product_id"`
	DepositID string           `json:"deposit_id,omitempty"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// AdjustmentRequest body para POST /api/inventory/adjustments.
type AdjustmentRequest struct {
	Operation         string                `json:"operation"` // IN | OUT
	Reason            string                `json:"reason"`
	DepositID         string                `json:"deposit_id"`
	Items             []MovementLineRequest `json:"items"`
	ResponsibleID     string                `json:"responsible_id,omitempty"`
	MovementDate      *time.Time            `json:"movement_date,omitempty"`
	ReferenceDocument string                `json:"reference_document,omitempty"`
	Notes             string                `json:"notes,omitempty"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	OriginDepositID      string                `json:"origin_deposit_id"`
	DestinationDepositID string                `json:"destination_deposit_id"`
	Items                []MovementLineRequest `json:"items"`
	ResponsibleID        string                `json:"responsible_id,omitempty"`
	ReferenceDocument    string                `json:"reference_document,omitempty"`
	Notes                string                `json:"notes,omitempty"`
}

// ExchangeRequest body para POST /api/inventory/exchanges/:id/finalize.
type ExchangeRequest struct {
	DepositID     string                `json:"deposit_id"`
	ReturnedItems []MovementLineRequest `json:"returned_items"`
	TakenItems    []MovementLineRequest `json:"taken_items"`
	ResponsibleID string                `json:"responsible_id,omitempty"`
}

// PurchaseInvoiceRequest body para POST /api/inventory/purchase-invoices/:id/approve.
type PurchaseInvoiceRequest struct {
	DepositID     string                `json:"deposit_id"`
	Operation     string                `json:"operation,omitempty"`
	Items         []MovementLineRequest `json:"items"`
	ResponsibleID string                `json:"responsible_id,omitempty"`
}

// RevertPurchaseInvoiceRequest body opcional para POST /api/inventory/purchase-invoices/:id/revert.
type RevertPurchaseInvoiceRequest struct {
	ResponsibleID string `json:"responsible_id,omitempty"`
}

// StockAdjustRequest body para POST /api/products/:id/stock/adjust.
type StockAdjustRequest struct {
	DepositID string          `json:"deposit_id"`
	Delta     decimal.Decimal `json:"delta"`
	Cascade   *bool           `json:"cascade,omitempty"` // por defecto true
}

// SetQuantityRequest body para PUT /api/products/:id/deposits/:deposit_id/quantity.
type SetQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// FractionEdgeRequest arista padre → hijo.
type FractionEdgeRequest struct {
	ChildProductID   string          `json:"child_product_id"`
	OriginQuantity   decimal.Decimal `json:"origin_quantity"`
	FractionQuantity decimal.Decimal `json:"fraction_quantity"`
}

// ConfigureFractionsRequest body para PUT /api/products/:id/fractions.
type ConfigureFractionsRequest struct {
	Active bool                  `json:"active"`
	Items  []FractionEdgeRequest `json:"items"`
}

// MovementItemResponse línea registrada (cantidad con signo).
type MovementItemResponse struct {
	ProductID string           `json:"product_id"`
	DepositID string           `json:"deposit_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// MovementResponse registro de auditoría devuelto por las operaciones.
type MovementResponse struct {
	ID                   string                 `json:"id"`
	TransactionID        string                 `json:"transaction_id"`
	Kind                 string                 `json:"kind"`
	Operation            string                 `json:"operation,omitempty"`
	Reason               string                 `json:"reason,omitempty"`
	DepositID            string                 `json:"deposit_id,omitempty"`
	DestinationDepositID string                 `json:"destination_deposit_id,omitempty"`
	ReferenceDocument    string                 `json:"reference_document,omitempty"`
	Notes                string                 `json:"notes,omitempty"`
	Items                []MovementItemResponse `json:"items"`
	TotalQuantity        decimal.Decimal        `json:"total_quantity"`
	TotalValue           decimal.Decimal        `json:"total_value"`
	MovementDate         time.Time              `json:"movement_date"`
	CreatedBy            string                 `json:"created_by,omitempty"`
}

// MovementResultResponse respuesta de las operaciones transaccionales.
type MovementResultResponse struct {
	Movement       *MovementResponse `json:"movement,omitempty"`
	Warnings       []string          `json:"warnings,omitempty"`
	AlreadyApplied bool              `json:"already_applied,omitempty"`
	Skipped        bool              `json:"skipped,omitempty"`
}

// AdjustStockResponse resultado de un ajuste puntual.
type AdjustStockResponse struct {
	Updated  bool     `json:"updated"`
	Adjusted []string `json:"adjusted"`
	Warnings []string `json:"warnings,omitempty"`
}

// RecomputeResponse campos derivados tras recalcular un producto fraccionado.
type RecomputeResponse struct {
	ProductID       string           `json:"product_id"`
	Resolved        bool             `json:"resolved"`
	EquivalentStock *int64           `json:"equivalent_stock"`
	CostPerFraction *decimal.Decimal `json:"cost_per_fraction"`
	Warnings        []string         `json:"warnings,omitempty"`
}

// QuantityResponse cantidad de un producto en un depósito.
type QuantityResponse struct {
	ProductID string          `json:"product_id"`
	DepositID string          `json:"deposit_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Changed   *bool           `json:"changed,omitempty"`
}

// InsufficientStockResponse detalle del 409 por stock insuficiente.
type InsufficientStockResponse struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	ProductID string          `json:"product_id"`
	DepositID string          `json:"deposit_id"`
	Available decimal.Decimal `json:"available"`
	Requested decimal.Decimal `json:"requested"`
}
