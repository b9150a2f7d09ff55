package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultUnit se usa cuando el producto no declara unidad base.
const DefaultUnit = "UN"

// Product representa un producto del catálogo con su stock por depósito.
// Stock es el agregado de Stocks (optimización de lectura, no fuente de verdad).
type Product struct {
	ID        string
	CompanyID string
	SKU       string
	Name      string
	Unit      string          // unidad base: "CX", "UN", ...
	Cost      decimal.Decimal // costo del producto (base para costo por fracción)
	Stock     decimal.Decimal
	Stocks    []StockEntry
	// Fractional configuración de fraccionamiento (aristas hacia productos hijos).
	Fractional FractionalConfig
	// ParentID referencia inversa: padre que declara este producto como fracción ("" si ninguno).
	ParentID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FractionalConfig describe cómo un producto se descompone en productos hijos.
// CostPerFraction, EquivalentStock y RawStock son derivados; se recalculan desde el stock de los hijos.
type FractionalConfig struct {
	Active          bool
	Items           []FractionEdge
	CostPerFraction *decimal.Decimal
	EquivalentStock *int64
	RawStock        *decimal.Decimal
	UpdatedAt       *time.Time
}

// FractionEdge: OriginQuantity unidades del padre rinden FractionQuantity unidades del hijo.
type FractionEdge struct {
	ChildProductID   string
	OriginQuantity   decimal.Decimal
	FractionQuantity decimal.Decimal
}

// IsFractionalParent indica si la configuración está activa y tiene aristas.
func (p *Product) IsFractionalParent() bool {
	return p.Fractional.Active && len(p.Fractional.Items) > 0
}

// Entry devuelve la entrada de stock del depósito o nil si no existe.
func (p *Product) Entry(depositID string) *StockEntry {
	for i := range p.Stocks {
		if p.Stocks[i].DepositID == depositID {
			return &p.Stocks[i]
		}
	}
	return nil
}

// EnsureEntry devuelve la entrada del depósito, creándola en cero si no existe.
func (p *Product) EnsureEntry(depositID string) *StockEntry {
	if e := p.Entry(depositID); e != nil {
		if e.Unit == "" {
			e.Unit = p.BaseUnit()
		}
		return e
	}
	p.Stocks = append(p.Stocks, StockEntry{DepositID: depositID, Quantity: decimal.Zero, Unit: p.BaseUnit()})
	return &p.Stocks[len(p.Stocks)-1]
}

// Quantity devuelve la cantidad del depósito (0 si no hay entrada).
func (p *Product) Quantity(depositID string) decimal.Decimal {
	if e := p.Entry(depositID); e != nil {
		return e.Quantity
	}
	return decimal.Zero
}

// TotalStock suma las cantidades de todos los depósitos.
func (p *Product) TotalStock() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.Stocks {
		total = total.Add(e.Quantity)
	}
	return total
}

// BaseUnit devuelve la unidad normalizada del producto.
func (p *Product) BaseUnit() string {
	if u := NormalizeUnit(p.Unit); u != "" {
		return u
	}
	return DefaultUnit
}

// ClearFractionalSnapshot limpia los campos derivados.
func (p *Product) ClearFractionalSnapshot(now time.Time) {
	p.Fractional.CostPerFraction = nil
	p.Fractional.EquivalentStock = nil
	p.Fractional.RawStock = nil
	p.Fractional.UpdatedAt = &now
}

// NormalizeUnit recorta y pasa a mayúsculas la etiqueta de unidad ("cx " -> "CX").
func NormalizeUnit(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return ""
	}
	return cases.Upper(language.Und).String(unit)
}
