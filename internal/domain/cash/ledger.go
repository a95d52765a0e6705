// Package cash reglas del arqueo de caja.
package cash

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// AdjustThreshold diferencia mínima que genera un ajuste automático al cerrar.
var AdjustThreshold = decimal.RequireFromString("0.009")

// NormalizeAmount aplica el signo según el tipo de movimiento.
// expense, withdrawal y refund siempre negativos; income, sale y open positivos.
// adjust usa signed si viene, si no el monto tal cual.
func NormalizeAmount(t entity.CashMovementType, amount decimal.Decimal, signed *decimal.Decimal) decimal.Decimal {
	switch t {
	case entity.CashExpense, entity.CashWithdrawal, entity.CashRefund:
		return amount.Abs().Neg().Round(2)
	case entity.CashAdjust:
		if signed != nil {
			return signed.Round(2)
		}
		return amount.Round(2)
	default:
		return amount.Abs().Round(2)
	}
}

// Expected suma de todos los movimientos de la sesión (incluye el de apertura).
func Expected(movements []*entity.CashMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.Amount)
	}
	return total.Round(2)
}

// Reconciliation resultado del arqueo.
type Reconciliation struct {
	Expected   decimal.Decimal
	Counted    decimal.Decimal
	Difference decimal.Decimal
	// Adjust monto del ajuste a registrar (-Difference); cero si no corresponde.
	Adjust decimal.Decimal
}

// NeedsAdjust indica si hay que registrar el movimiento de ajuste.
func (r Reconciliation) NeedsAdjust() bool { return !r.Adjust.IsZero() }

// Reconcile compara lo contado contra lo esperado.
func Reconcile(movements []*entity.CashMovement, counted decimal.Decimal, createAdjust bool) Reconciliation {
	expected := Expected(movements)
	diff := counted.Sub(expected).Round(2)
	r := Reconciliation{Expected: expected, Counted: counted.Round(2), Difference: diff, Adjust: decimal.Zero}
	if createAdjust && diff.Abs().GreaterThan(AdjustThreshold) {
		r.Adjust = diff.Neg()
	}
	return r
}
