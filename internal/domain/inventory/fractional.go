package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// FractionalResolution resultado puro de resolver el stock equivalente de un padre fraccionado.
type FractionalResolution struct {
	// Usable hay al menos una arista con hijo y cantidades válidas.
	Usable bool
	// Resolved al menos una arista usable encontró su producto hijo.
	Resolved bool
	// Unresolved hijos no encontrados o aristas inválidas (advertencias, no errores).
	Unresolved []string
	// RawStock suma de los equivalentes fraccionarios por depósito.
	RawStock decimal.Decimal
	// EquivalentStock floor del mínimo entre los totales por arista.
	EquivalentStock int64
	CostPerFraction *decimal.Decimal
	Allocations     []DepositAllocation
}

// ResolveFractional calcula, sólo a partir del stock actual de los hijos, el stock equivalente del
// padre, su reparto entero por depósito y el costo por fracción. children se indexa por ID.
func ResolveFractional(parent *entity.Product, children map[string]*entity.Product) FractionalResolution {
	var res FractionalResolution

	totalFraction := decimal.Zero
	var edgeTotals []decimal.Decimal
	depositIndex := make(map[string]int)
	var deposits []DepositAllocation

	for _, edge := range parent.Fractional.Items {
		selfLoop := edge.ChildProductID == parent.ID
		if edge.ChildProductID == "" || selfLoop || !ValidEdgeQuantities(edge.OriginQuantity, edge.FractionQuantity) {
			if edge.ChildProductID != "" {
				res.Unresolved = append(res.Unresolved, edge.ChildProductID)
			}
			continue
		}
		res.Usable = true
		totalFraction = totalFraction.Add(edge.FractionQuantity)

		child, ok := children[edge.ChildProductID]
		if !ok || child == nil {
			res.Unresolved = append(res.Unresolved, edge.ChildProductID)
			continue
		}
		res.Resolved = true

		edgeTotal := decimal.Zero
		for _, entry := range child.Stocks {
			if entry.DepositID == "" || !entry.Quantity.IsPositive() {
				continue
			}
			eq := ParentEquivalent(entry.Quantity, edge.OriginQuantity, edge.FractionQuantity)
			if !eq.IsPositive() {
				continue
			}
			edgeTotal = edgeTotal.Add(eq)
			idx, seen := depositIndex[entry.DepositID]
			if !seen {
				idx = len(deposits)
				depositIndex[entry.DepositID] = idx
				deposits = append(deposits, DepositAllocation{DepositID: entry.DepositID, Raw: decimal.Zero, Unit: parent.BaseUnit()})
			}
			deposits[idx].Raw = RoundQuantity(deposits[idx].Raw.Add(eq))
		}
		edgeTotals = append(edgeTotals, RoundQuantity(edgeTotal))
	}

	if parent.Cost.IsPositive() && totalFraction.IsPositive() {
		c := parent.Cost.Div(totalFraction)
		res.CostPerFraction = &c
	}

	if len(edgeTotals) > 0 {
		minTotal := edgeTotals[0]
		for _, t := range edgeTotals[1:] {
			if t.LessThan(minTotal) {
				minTotal = t
			}
		}
		res.EquivalentStock = minTotal.Floor().IntPart()
	}

	raw := decimal.Zero
	for _, d := range deposits {
		raw = raw.Add(d.Raw)
	}
	res.RawStock = RoundQuantity(raw)
	res.Allocations = Reconcile(deposits, res.EquivalentStock)
	return res
}
