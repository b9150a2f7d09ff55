package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain"
)

func TestLedger_GetQuantity_MissingEntryIsZero(t *testing.T) {
	s := newMemStore("d1", "d2")
	s.addProduct("p", "un", "1", map[string]string{"d1": "5"})
	l := NewLedger(&memProductRepo{s: s})

	q, err := l.GetQuantity(context.Background(), "p", "d2")
	require.NoError(t, err)
	assert.True(t, q.IsZero())
}

func TestLedger_SetQuantity(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("p", "un", "1", map[string]string{"d1": "5"})
	l := NewLedger(&memProductRepo{s: s})
	ctx := context.Background()

	changed, err := l.SetQuantity(ctx, "p", "d1", decimal.RequireFromString("5.0000001"))
	require.NoError(t, err)
	assert.False(t, changed, "dentro de la tolerancia no se escribe")

	changed, err = l.SetQuantity(ctx, "p", "d1", decimal.NewFromInt(7))
	require.NoError(t, err)
	assert.True(t, changed)
	requireQty(t, "7", s.qty("p", "d1"))
	requireQty(t, "7", s.products["p"].Stock)
}

func TestLedger_SetQuantity_UnknownProduct(t *testing.T) {
	l := NewLedger(&memProductRepo{s: newMemStore("d1")})
	_, err := l.SetQuantity(context.Background(), "nope", "d1", decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}

func TestLedger_AdjustQuantity_Insufficient(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("p", "un", "1", map[string]string{"d1": "5"})
	l := NewLedger(&memProductRepo{s: s})

	_, err := l.AdjustQuantity(context.Background(), "p", "d1", decimal.NewFromInt(-6), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	requireQty(t, "5", ise.Available)
	requireQty(t, "6", ise.Requested)
	requireQty(t, "5", s.qty("p", "d1"))
}

func TestLedger_AdjustQuantity_AllowNegative(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("p", "un", "1", map[string]string{"d1": "5"})
	l := NewLedger(&memProductRepo{s: s})

	next, err := l.AdjustQuantity(context.Background(), "p", "d1", decimal.NewFromInt(-6), true)
	require.NoError(t, err)
	requireQty(t, "-1", next)
	requireQty(t, "-1", s.qty("p", "d1"))
	requireQty(t, "0", s.products["p"].Stock)
}

func TestLedger_AdjustQuantity_NoiseClampsToZero(t *testing.T) {
	s := newMemStore("d1")
	s.addProduct("p", "un", "1", map[string]string{"d1": "5"})
	l := NewLedger(&memProductRepo{s: s})

	next, err := l.AdjustQuantity(context.Background(), "p", "d1", decimal.RequireFromString("-5.0000004"), false)
	require.NoError(t, err)
	assert.True(t, next.IsZero())
	assert.True(t, s.qty("p", "d1").IsZero())
}

func TestLedger_AdjustQuantity_CreatesEntryWithBaseUnit(t *testing.T) {
	s := newMemStore("d1", "d2")
	s.addProduct("p", " cx", "1", map[string]string{"d1": "5"})
	l := NewLedger(&memProductRepo{s: s})

	_, err := l.AdjustQuantity(context.Background(), "p", "d2", decimal.RequireFromString("1.25"), false)
	require.NoError(t, err)
	entry := s.products["p"].Entry("d2")
	require.NotNil(t, entry)
	assert.Equal(t, "CX", entry.Unit)
	requireQty(t, "6.25", s.products["p"].Stock)
}
