package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

func TestNormalizeUnit(t *testing.T) {
	assert.Equal(t, "CX", entity.NormalizeUnit(" cx "))
	assert.Equal(t, "KG", entity.NormalizeUnit("Kg"))
	assert.Equal(t, "", entity.NormalizeUnit("   "))
}

func TestProduct_EnsureEntryAndTotals(t *testing.T) {
	p := &entity.Product{ID: "p", Unit: "lt"}
	assert.True(t, p.Quantity("d1").IsZero())
	assert.Nil(t, p.Entry("d1"))

	e := p.EnsureEntry("d1")
	require.NotNil(t, e)
	assert.Equal(t, "LT", e.Unit)
	e.Quantity = decimal.NewFromInt(3)
	p.EnsureEntry("d2").Quantity = decimal.RequireFromString("1.5")

	assert.True(t, p.Quantity("d1").Equal(decimal.NewFromInt(3)))
	assert.True(t, p.TotalStock().Equal(decimal.RequireFromString("4.5")))
	assert.Same(t, p.Entry("d1"), p.EnsureEntry("d1"))
}

func TestProduct_BaseUnitDefault(t *testing.T) {
	assert.Equal(t, entity.DefaultUnit, (&entity.Product{}).BaseUnit())
}

func TestProduct_IsFractionalParent(t *testing.T) {
	p := &entity.Product{}
	assert.False(t, p.IsFractionalParent())
	p.Fractional.Items = []entity.FractionEdge{{ChildProductID: "c"}}
	assert.False(t, p.IsFractionalParent())
	p.Fractional.Active = true
	assert.True(t, p.IsFractionalParent())
}
