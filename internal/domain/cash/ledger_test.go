package cash_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/billar-api/internal/domain/cash"
	"github.com/jhoicas/billar-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNormalizeAmount(t *testing.T) {
	assert.Equal(t, "-20", cash.NormalizeAmount(entity.CashExpense, d("20"), nil).String())
	assert.Equal(t, "-20", cash.NormalizeAmount(entity.CashWithdrawal, d("-20"), nil).String())
	assert.Equal(t, "-5.5", cash.NormalizeAmount(entity.CashRefund, d("5.5"), nil).String())
	assert.Equal(t, "30", cash.NormalizeAmount(entity.CashIncome, d("-30"), nil).String())
	assert.Equal(t, "12", cash.NormalizeAmount(entity.CashSale, d("12"), nil).String())

	signed := d("-7")
	assert.Equal(t, "-7", cash.NormalizeAmount(entity.CashAdjust, d("7"), &signed).String())
	assert.Equal(t, "7", cash.NormalizeAmount(entity.CashAdjust, d("7"), nil).String())
}

func movements(amounts ...string) []*entity.CashMovement {
	out := make([]*entity.CashMovement, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, &entity.CashMovement{Amount: d(a)})
	}
	return out
}

func TestReconcile_EjemploArqueo(t *testing.T) {
	// apertura 100, +50 en movimientos, contado 140
	movs := movements("100", "70", "-20")
	r := cash.Reconcile(movs, d("140"), true)

	assert.True(t, r.Expected.Equal(d("150")))
	assert.True(t, r.Difference.Equal(d("-10")))
	assert.True(t, r.NeedsAdjust())
	assert.True(t, r.Adjust.Equal(d("10")))

	// el ajuste compensa exactamente la diferencia registrada
	assert.True(t, r.Difference.Add(r.Adjust).IsZero())
}

func TestReconcile_SinDiferencia(t *testing.T) {
	r := cash.Reconcile(movements("100", "50"), d("150"), true)
	assert.True(t, r.Difference.IsZero())
	assert.False(t, r.NeedsAdjust())
}

func TestReconcile_SinAjusteBajoUmbral(t *testing.T) {
	r := cash.Reconcile(movements("100"), d("100.004"), true)
	assert.False(t, r.NeedsAdjust())

	r = cash.Reconcile(movements("100"), d("90"), false)
	assert.True(t, r.Difference.Equal(d("-10")))
	assert.False(t, r.NeedsAdjust())
}
