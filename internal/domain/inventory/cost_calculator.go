// Package inventory contiene los servicios de dominio del kardex (costo promedio ponderado).
package inventory

import "github.com/shopspring/decimal"

// CostPrecision decimales con los que se guarda el costo promedio.
const CostPrecision = 6

// CostCalculator costo promedio ponderado tras una entrada.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si el saldo resultante es <= 0 o el promedio sale negativo, devuelve cero.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	avg := num.DivRound(sum, CostPrecision)
	if avg.IsNegative() {
		return decimal.Zero
	}
	return avg
}

// Balance saldo de una fila de stock tras aplicar un movimiento.
type Balance struct {
	Quantity    decimal.Decimal
	AvgUnitCost decimal.Decimal
	TotalCost   decimal.Decimal
}

// ApplyInbound suma qty al saldo y recalcula el promedio. unitCost es el costo de la entrada.
func ApplyInbound(qty, avg, qtyIn, unitCost decimal.Decimal) Balance {
	newQty := qty.Add(qtyIn)
	newAvg := CostCalculator(qty, avg, qtyIn, unitCost)
	return Balance{Quantity: newQty, AvgUnitCost: newAvg, TotalCost: newQty.Mul(newAvg).Round(2)}
}

// ApplyOutbound resta qtyOut; el promedio no cambia.
func ApplyOutbound(qty, avg, qtyOut decimal.Decimal) Balance {
	newQty := qty.Sub(qtyOut)
	return Balance{Quantity: newQty, AvgUnitCost: avg, TotalCost: newQty.Mul(avg).Round(2)}
}
