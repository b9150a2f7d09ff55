package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEntry representa la cantidad de un producto en un depósito. Única por (producto, depósito).
type StockEntry struct {
	DepositID string
	Quantity  decimal.Decimal
	Unit      string
	UpdatedAt time.Time
}
