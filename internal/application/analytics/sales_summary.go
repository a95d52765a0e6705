// Package analytics contiene los reportes de ventas sobre documentos emitidos.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

const (
	dateLayout      = "2006-01-02"
	defaultTopItems = 10
)

// SalesSummaryUseCase resumen de ventas por rango de fechas.
//
// Fuente de datos: AnalyticsRepository (consultas read-only). Los días se
// interpretan en la zona horaria del local.
type SalesSummaryUseCase struct {
	tx       ports.TxRunner
	clock    ports.Clock
	loc      *time.Location
	currency string
}

// NewSalesSummaryUseCase construye el caso de uso. loc nil usa UTC.
func NewSalesSummaryUseCase(tx ports.TxRunner, clock ports.Clock, loc *time.Location, currency string) *SalesSummaryUseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SalesSummaryUseCase{tx: tx, clock: clock, loc: loc, currency: currency}
}

// GetSummary totales, ventas por medio de pago y líneas más vendidas.
//
// Tres consultas en paralelo:
//  1. SalesTotals          → total y cantidad de documentos
//  2. SalesByPaymentMethod → desglose por medio de pago
//  3. TopItems             → líneas más vendidas por descripción
func (uc *SalesSummaryUseCase) GetSummary(ctx context.Context, in dto.SalesSummaryRequest) (*dto.SalesSummaryResponse, error) {
	fromDay, toDay, err := uc.resolveRange(in.From, in.To)
	if err != nil {
		return nil, err
	}
	limit := in.TopLimit
	if limit <= 0 {
		limit = defaultTopItems
	}
	filter := repository.SalesFilter{
		From:          fromDay,
		To:            toDay.AddDate(0, 0, 1).Add(-time.Nanosecond),
		CashSessionID: in.CashSessionID,
		Currency:      uc.currency,
	}

	type totalsResult struct {
		totals repository.SalesTotals
		err    error
	}
	type methodsResult struct {
		rows []repository.PaymentMethodTotal
		err  error
	}
	type itemsResult struct {
		rows []repository.TopItem
		err  error
	}

	totalsCh := make(chan totalsResult, 1)
	methodsCh := make(chan methodsResult, 1)
	itemsCh := make(chan itemsResult, 1)

	go func() {
		var res totalsResult
		res.err = uc.tx.Read(ctx, func(r repository.Repos) error {
			var err error
			res.totals, err = r.Analytics.SalesTotals(ctx, filter)
			return err
		})
		totalsCh <- res
	}()
	go func() {
		var res methodsResult
		res.err = uc.tx.Read(ctx, func(r repository.Repos) error {
			var err error
			res.rows, err = r.Analytics.SalesByPaymentMethod(ctx, filter)
			return err
		})
		methodsCh <- res
	}()
	go func() {
		var res itemsResult
		res.err = uc.tx.Read(ctx, func(r repository.Repos) error {
			var err error
			res.rows, err = r.Analytics.TopItems(ctx, filter, limit)
			return err
		})
		itemsCh <- res
	}()

	totals := <-totalsCh
	methods := <-methodsCh
	items := <-itemsCh

	if totals.err != nil {
		return nil, fmt.Errorf("resumen de ventas: totales: %w", totals.err)
	}
	if methods.err != nil {
		return nil, fmt.Errorf("resumen de ventas: medios de pago: %w", methods.err)
	}
	if items.err != nil {
		return nil, fmt.Errorf("resumen de ventas: top ítems: %w", items.err)
	}

	avg := decimal.Zero
	if totals.totals.DocumentsCount > 0 {
		avg = totals.totals.TotalSales.Div(decimal.NewFromInt(int64(totals.totals.DocumentsCount))).Round(2)
	}
	out := &dto.SalesSummaryResponse{
		From:            fromDay.Format(dateLayout),
		To:              toDay.Format(dateLayout),
		Currency:        uc.currency,
		TotalSales:      totals.totals.TotalSales.Round(2),
		DocumentsCount:  totals.totals.DocumentsCount,
		AverageTicket:   avg,
		ByPaymentMethod: make([]dto.PaymentMethodSales, 0, len(methods.rows)),
		TopItems:        make([]dto.TopItemSales, 0, len(items.rows)),
	}
	for _, m := range methods.rows {
		out.ByPaymentMethod = append(out.ByPaymentMethod, dto.PaymentMethodSales{
			PaymentMethod: m.PaymentMethod,
			Total:         m.Total.Round(2),
			Count:         m.Count,
		})
	}
	for _, it := range items.rows {
		out.TopItems = append(out.TopItems, dto.TopItemSales{
			Description: it.Description,
			Quantity:    it.TotalQty,
			Amount:      it.TotalAmount.Round(2),
		})
	}
	return out, nil
}

// resolveRange por defecto el día de hoy; faltando un extremo se usa el otro.
func (uc *SalesSummaryUseCase) resolveRange(from, to string) (time.Time, time.Time, error) {
	now := uc.clock.Now().In(uc.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.loc)
	fromDay, toDay := today, today
	var err error
	if from != "" {
		if fromDay, err = time.ParseInLocation(dateLayout, from, uc.loc); err != nil {
			return time.Time{}, time.Time{}, domain.NewValidation("from", "fecha inválida, use YYYY-MM-DD")
		}
		if to == "" {
			toDay = fromDay
		}
	}
	if to != "" {
		if toDay, err = time.ParseInLocation(dateLayout, to, uc.loc); err != nil {
			return time.Time{}, time.Time{}, domain.NewValidation("to", "fecha inválida, use YYYY-MM-DD")
		}
		if from == "" {
			fromDay = toDay
		}
	}
	if toDay.Before(fromDay) {
		return time.Time{}, time.Time{}, domain.NewValidation("to", "debe ser posterior a from")
	}
	return fromDay, toDay, nil
}
