package inventory

import "github.com/shopspring/decimal"

// Precision dígitos fraccionarios con que se persisten las cantidades.
const Precision int32 = 6

// Tolerance diferencia por debajo de la cual dos cantidades se consideran iguales.
var Tolerance = decimal.New(1, -Precision)

// RoundQuantity redondea a Precision dígitos para no acumular ruido entre cascadas.
func RoundQuantity(q decimal.Decimal) decimal.Decimal {
	return q.Round(Precision)
}

// IsNegligible indica si |q| <= Tolerance.
func IsNegligible(q decimal.Decimal) bool {
	return q.Abs().LessThanOrEqual(Tolerance)
}

// BelowTolerance indica si q < -Tolerance (stock negativo real, no ruido).
func BelowTolerance(q decimal.Decimal) bool {
	return q.LessThan(Tolerance.Neg())
}

// ValidEdgeQuantities: ambas cantidades de la arista deben ser > 0.
func ValidEdgeQuantities(origin, fraction decimal.Decimal) bool {
	return origin.IsPositive() && fraction.IsPositive()
}

// ChildDelta convierte un delta del padre a unidades del hijo: delta * fraction / origin.
// Es la inversa exacta de ParentEquivalent; la arista nunca se invierte aunque fraction < origin.
func ChildDelta(delta, origin, fraction decimal.Decimal) decimal.Decimal {
	if !ValidEdgeQuantities(origin, fraction) {
		return decimal.Zero
	}
	return RoundQuantity(delta.Mul(fraction).Div(origin))
}

// ParentEquivalent convierte una cantidad del hijo a unidades del padre: qty * origin / fraction.
// Multiplica antes de dividir para que 3 * 1/3 dé exactamente 1.
func ParentEquivalent(childQty, origin, fraction decimal.Decimal) decimal.Decimal {
	if !ValidEdgeQuantities(origin, fraction) {
		return decimal.Zero
	}
	return RoundQuantity(childQty.Mul(origin).Div(fraction))
}
