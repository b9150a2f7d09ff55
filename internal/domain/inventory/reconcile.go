package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DepositAllocation equivalente de un depósito: Raw fraccionario y Allocated entero asignado.
type DepositAllocation struct {
	DepositID string
	Raw       decimal.Decimal
	Allocated int64
	Unit      string
}

func (a DepositAllocation) remainder() decimal.Decimal {
	return a.Raw.Sub(a.Raw.Floor())
}

// Reconcile asigna a cada depósito floor(Raw) y reparte la diferencia contra target de a una unidad:
// si falta, primero a los mayores restos fraccionarios (empate: mayor Raw);
// si sobra, se quita primero de los menores restos. Garantiza sum(Allocated) == target
// siempre que target <= suma de las asignaciones posibles.
func Reconcile(allocs []DepositAllocation, target int64) []DepositAllocation {
	out := make([]DepositAllocation, len(allocs))
	var sum int64
	for i, a := range allocs {
		a.Allocated = 0
		if a.Raw.IsPositive() {
			a.Allocated = a.Raw.Floor().IntPart()
		}
		sum += a.Allocated
		out[i] = a
	}
	if target < 0 {
		target = 0
	}
	diff := target - sum
	if diff == 0 || len(out) == 0 {
		return out
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}

	if diff > 0 {
		sort.SliceStable(order, func(i, j int) bool {
			a, b := out[order[i]], out[order[j]]
			if c := a.remainder().Cmp(b.remainder()); c != 0 {
				return c > 0
			}
			if c := a.Raw.Cmp(b.Raw); c != 0 {
				return c > 0
			}
			return a.DepositID < b.DepositID
		})
		for diff > 0 {
			for _, idx := range order {
				if diff == 0 {
					break
				}
				out[idx].Allocated++
				diff--
			}
		}
		return out
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := out[order[i]], out[order[j]]
		if c := a.remainder().Cmp(b.remainder()); c != 0 {
			return c < 0
		}
		if c := a.Raw.Cmp(b.Raw); c != 0 {
			return c < 0
		}
		return a.DepositID < b.DepositID
	})
	for diff < 0 {
		removed := false
		for _, idx := range order {
			if diff == 0 {
				break
			}
			if out[idx].Allocated > 0 {
				out[idx].Allocated--
				diff++
				removed = true
			}
		}
		if !removed {
			break
		}
	}
	return out
}

// SumAllocated suma las asignaciones enteras.
func SumAllocated(allocs []DepositAllocation) int64 {
	var total int64
	for _, a := range allocs {
		total += a.Allocated
	}
	return total
}
