package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/billar-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	// 10 u a 2.00 + 10 u a 4.00 -> 3.00
	got := inventory.CostCalculator(d("10"), d("2"), d("10"), d("4"))
	assert.True(t, got.Equal(d("3")), got.String())

	// 0 u + 5 u a 1.50 -> 1.50
	got = inventory.CostCalculator(decimal.Zero, d("9"), d("5"), d("1.5"))
	assert.True(t, got.Equal(d("1.5")), got.String())
}

func TestCostCalculator_SaldoNoPositivoDevuelveCero(t *testing.T) {
	assert.True(t, inventory.CostCalculator(d("-5"), d("2"), d("5"), d("3")).IsZero())
	assert.True(t, inventory.CostCalculator(d("-8"), d("2"), d("5"), d("3")).IsZero())
}

func TestCostCalculator_NuncaNegativo(t *testing.T) {
	// -4 u a 10.00 + 5 u a 1.00 -> (-40 + 5) / 1 < 0
	assert.True(t, inventory.CostCalculator(d("-4"), d("10"), d("5"), d("1")).IsZero())
}

func TestApplyOutbound_NoCambiaPromedio(t *testing.T) {
	b := inventory.ApplyOutbound(d("10"), d("2.5"), d("4"))
	assert.True(t, b.Quantity.Equal(d("6")))
	assert.True(t, b.AvgUnitCost.Equal(d("2.5")))
	assert.True(t, b.TotalCost.Equal(d("15")))
}

func TestApplyInbound(t *testing.T) {
	b := inventory.ApplyInbound(d("2"), d("1"), d("2"), d("3"))
	assert.True(t, b.Quantity.Equal(d("4")))
	assert.True(t, b.AvgUnitCost.Equal(d("2")))
	assert.True(t, b.TotalCost.Equal(d("8")))
}
