package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain/inventory"
)

func allocs(pairs ...string) []inventory.DepositAllocation {
	out := make([]inventory.DepositAllocation, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, inventory.DepositAllocation{DepositID: pairs[i], Raw: d(pairs[i+1])})
	}
	return out
}

func allocated(list []inventory.DepositAllocation) map[string]int64 {
	m := make(map[string]int64, len(list))
	for _, a := range list {
		m[a.DepositID] = a.Allocated
	}
	return m
}

func TestReconcile_FloorsMatchTarget(t *testing.T) {
	out := inventory.Reconcile(allocs("d1", "2", "d2", "1.25"), 3)
	assert.Equal(t, map[string]int64{"d1": 2, "d2": 1}, allocated(out))
}

func TestReconcile_AddsToLargestRemainder(t *testing.T) {
	out := inventory.Reconcile(allocs("d1", "1.2", "d2", "1.7", "d3", "0.6"), 4)
	assert.Equal(t, map[string]int64{"d1": 1, "d2": 2, "d3": 1}, allocated(out))
	assert.Equal(t, int64(4), inventory.SumAllocated(out))
}

func TestReconcile_TieBreaksByRawThenDeposit(t *testing.T) {
	out := inventory.Reconcile(allocs("b", "1.5", "a", "1.5"), 3)
	assert.Equal(t, map[string]int64{"a": 2, "b": 1}, allocated(out))

	out = inventory.Reconcile(allocs("a", "0.5", "b", "2.5"), 3)
	assert.Equal(t, map[string]int64{"a": 0, "b": 3}, allocated(out))
}

func TestReconcile_RemovesFromSmallestWhenOver(t *testing.T) {
	out := inventory.Reconcile(allocs("d1", "3", "d2", "1"), 1)
	assert.Equal(t, map[string]int64{"d1": 1, "d2": 0}, allocated(out))
	assert.Equal(t, int64(1), inventory.SumAllocated(out))
}

func TestReconcile_EdgeCases(t *testing.T) {
	assert.Empty(t, inventory.Reconcile(nil, 5))

	out := inventory.Reconcile(allocs("d1", "2"), -1)
	require.Len(t, out, 1)
	assert.Equal(t, int64(0), out[0].Allocated)

	in := allocs("d1", "1.5")
	_ = inventory.Reconcile(in, 2)
	assert.Equal(t, int64(0), in[0].Allocated, "la entrada no se modifica")
}
