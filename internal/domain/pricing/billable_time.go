// Package pricing calcula el cobro por tiempo de una mesa.
//
// El tiempo transcurrido se redondea hacia arriba al minuto y luego a tramos:
// hasta 15, 30 o 60 minutos se cobra el tramo completo; sobre la hora se suman
// bloques de BlockMinutes.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BlockMinutes tamaño del bloque que se cobra después de la primera hora.
const BlockMinutes = 15

var sixty = decimal.NewFromInt(60)

// BillableMinutes minutos a cobrar para elapsedSeconds transcurridos. Negativos cuentan como cero.
func BillableMinutes(elapsedSeconds int64) int64 {
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	minutes := (elapsedSeconds + 59) / 60
	switch {
	case minutes <= 15:
		return 15
	case minutes <= 30:
		return 30
	case minutes <= 60:
		return 60
	}
	extra := minutes - 60
	blocks := (extra + BlockMinutes - 1) / BlockMinutes
	return 60 + blocks*BlockMinutes
}

// TimeAmount importe = minutos/60 * tarifa, redondeado a 2 decimales.
func TimeAmount(billableMinutes int64, ratePerHour decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(billableMinutes).Div(sixty).Mul(ratePerHour).Round(2)
}

// BillableHours minutos expresados en horas con 3 decimales (cantidad de la línea de tiempo).
func BillableHours(billableMinutes int64) decimal.Decimal {
	return decimal.NewFromInt(billableMinutes).DivRound(sixty, 3)
}

// Quote resultado del cálculo de tiempo entre dos instantes.
type Quote struct {
	ElapsedSeconds  int64
	BillableMinutes int64
	RatePerHour     decimal.Decimal
	Amount          decimal.Decimal
}

// QuoteBetween cotiza el tiempo entre start y end a la tarifa dada.
func QuoteBetween(start, end time.Time, ratePerHour decimal.Decimal) Quote {
	elapsed := ElapsedSeconds(start, end)
	minutes := BillableMinutes(elapsed)
	return Quote{
		ElapsedSeconds:  elapsed,
		BillableMinutes: minutes,
		RatePerHour:     ratePerHour,
		Amount:          TimeAmount(minutes, ratePerHour),
	}
}

// ElapsedSeconds segundos enteros entre start y end, nunca negativos.
func ElapsedSeconds(start, end time.Time) int64 {
	secs := int64(end.Sub(start) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// FormatDuration HH:MM:SS para descripciones de documento.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
