// Package billing liquidación de mesas: cierra el alquiler, emite la nota de venta,
// registra el cobro en caja y descarga el inventario en una sola transacción.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/application/inventory"
	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/pricing"
	"github.com/jhoicas/billar-api/internal/domain/repository"
	"github.com/jhoicas/billar-api/pkg/logger"
)

// Config series y moneda por defecto de las notas de venta.
type Config struct {
	Series   string
	Currency string
}

// SettleTableUseCase liquida una mesa en curso.
type SettleTableUseCase struct {
	tx      ports.TxRunner
	clock   ports.Clock
	stock   StockRecorder
	cash    CashRecorder
	emitter DocumentEmitter
	cfg     Config
	log     *logger.Logger
}

// NewSettleTableUseCase construye el caso de uso.
func NewSettleTableUseCase(
	tx ports.TxRunner,
	clock ports.Clock,
	stock StockRecorder,
	cash CashRecorder,
	emitter DocumentEmitter,
	cfg Config,
	log *logger.Logger,
) *SettleTableUseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Series == "" {
		cfg.Series = "NV01"
	}
	if cfg.Currency == "" {
		cfg.Currency = "PEN"
	}
	return &SettleTableUseCase{
		tx:      tx,
		clock:   clock,
		stock:   stock,
		cash:    cash,
		emitter: emitter,
		cfg:     cfg,
		log:     log.Component("billing.settle"),
	}
}

// FinishItem consumo explícito a facturar. UnitPrice vacío usa el precio de venta del producto.
type FinishItem struct {
	ProductID   string
	Qty         decimal.Decimal
	UnitPrice   *decimal.Decimal
	WarehouseID string
}

// FinishRequest datos del cierre. RentalID es obligatorio.
type FinishRequest struct {
	RentalID           string
	PaymentMethod      entity.PaymentMethod
	Items              []FinishItem
	Consumption        *decimal.Decimal // consumo plano cuando no hay líneas
	WarehouseID        string
	Discount           *decimal.Decimal
	Surcharge          *decimal.Decimal
	RatePerHour        *decimal.Decimal // solo afecta a este alquiler
	AllowNegativeStock bool
	Series             string
	Notes              string
}

// FinishResult estado final de mesa, alquiler y documento.
type FinishResult struct {
	Table    *entity.Table
	Rental   *entity.Rental
	Document *entity.Document
}

type consumedLine struct {
	productID   *string
	name        string
	unit        string
	qty         decimal.Decimal
	unitPrice   decimal.Decimal
	warehouseID string
}

func (l consumedLine) total() decimal.Decimal { return l.qty.Mul(l.unitPrice).Round(2) }

// Finish cierra el alquiler abierto de la mesa.
// Orden de bloqueo: mesa, alquiler y filas de stock por (producto, bodega).
func (uc *SettleTableUseCase) Finish(ctx context.Context, p ports.Principal, tableID string, req FinishRequest) (*FinishResult, error) {
	if err := validateFinish(req); err != nil {
		return nil, err
	}
	series := req.Series
	if series == "" {
		series = uc.cfg.Series
	}

	var out *FinishResult
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		table, err := r.Tables.GetForUpdate(ctx, tableID)
		if err != nil {
			return err
		}
		if table == nil {
			return domain.NewNotFound("mesa", tableID)
		}
		rt, err := r.Rentals.GetForUpdate(ctx, req.RentalID)
		if err != nil {
			return err
		}
		if rt == nil {
			return domain.NewNotFound("alquiler", req.RentalID)
		}
		if rt.TableID != table.ID {
			return domain.NewValidation("rental_id", "el alquiler no pertenece a la mesa")
		}
		if !rt.IsOpen() {
			return domain.NewConflict("el alquiler %s no está abierto (%s)", rt.ID, rt.Status)
		}

		now := uc.clock.Now()
		rate := rt.RatePerHour
		if req.RatePerHour != nil {
			rate = *req.RatePerHour
		}
		quote := pricing.QuoteBetween(rt.StartedAt, now, rate)

		lines, err := uc.consumedLines(ctx, r, p, rt, req)
		if err != nil {
			return err
		}
		// suma de las líneas ya redondeadas, igual que el detalle del documento
		consumption := decimal.Zero
		for _, l := range lines {
			consumption = consumption.Add(l.total())
		}
		flat := len(lines) == 0 && req.Consumption != nil
		if flat {
			consumption = req.Consumption.Round(2)
		}

		discount := rt.Discount
		if req.Discount != nil {
			discount = req.Discount.Round(2)
		}
		surcharge := rt.Surcharge
		if req.Surcharge != nil {
			surcharge = req.Surcharge.Round(2)
		}

		rt.RatePerHour = rate
		rt.AmountTime = quote.Amount
		rt.Consumption = consumption
		rt.Discount = discount
		rt.Surcharge = surcharge
		rt.RecalcTotal()
		if rt.Total.IsNegative() {
			return domain.NewValidation("discount", "el descuento supera el total")
		}
		rt.Status = entity.RentalClosed
		rt.EndedAt = &now
		rt.ElapsedSeconds = quote.ElapsedSeconds
		rt.ClosedBy = p.UserID
		if req.Notes != "" {
			rt.Notes = req.Notes
		}
		rt.UpdatedAt = now

		table.ResetSnapshot()
		table.Status = entity.TableAvailable
		table.UpdatedAt = now
		if err := r.Tables.Update(ctx, table); err != nil {
			return err
		}

		session, err := uc.cash.OpenSessionInTx(ctx, r, p)
		if err != nil {
			return err
		}
		if session == nil && req.PaymentMethod == entity.PaymentCash {
			return domain.NewValidation("", "no hay caja abierta")
		}

		number, err := uc.emitter.AllocateInTx(ctx, r, entity.DocumentTypeSaleNote, series)
		if err != nil {
			return err
		}
		doc := &entity.Document{
			ID:            uuid.New().String(),
			Type:          entity.DocumentTypeSaleNote,
			Series:        series,
			Number:        number,
			IssueDate:     now,
			Currency:      uc.cfg.Currency,
			Subtotal:      rt.Total,
			Tax:           decimal.Zero,
			Total:         rt.Total,
			PaymentMethod: req.PaymentMethod,
			Status:        entity.DocumentIssued,
			UserID:        p.UserID,
			CreatedAt:     now,
		}
		if session != nil {
			sid := session.ID
			doc.CashSessionID = &sid
		}
		doc.Meta, err = json.Marshal(map[string]any{
			"table_id":         table.ID,
			"table_number":     table.Number,
			"rental_id":        rt.ID,
			"duration":         pricing.FormatDuration(quote.ElapsedSeconds),
			"billable_minutes": quote.BillableMinutes,
			"discount":         discount.StringFixed(2),
			"surcharge":        surcharge.StringFixed(2),
		})
		if err != nil {
			return fmt.Errorf("meta documento: %w", err)
		}
		doc.Details = buildDetails(table, quote, lines, flat, consumption)
		if err := uc.emitter.CreateWithDetailsInTx(ctx, r, doc); err != nil {
			return err
		}

		rt.DocumentID = &doc.ID
		if err := r.Rentals.Update(ctx, rt); err != nil {
			return err
		}

		if req.PaymentMethod == entity.PaymentCash {
			desc := fmt.Sprintf("NV %s Mesa #%d", doc.FullNumber(), table.Number)
			if _, err := uc.cash.RecordSaleInTx(ctx, r, p, doc, desc); err != nil {
				return err
			}
		}

		outbound := stockLines(lines)
		sort.SliceStable(outbound, func(i, j int) bool {
			if *outbound[i].productID != *outbound[j].productID {
				return *outbound[i].productID < *outbound[j].productID
			}
			return outbound[i].warehouseID < outbound[j].warehouseID
		})
		ref := &entity.DocumentRef{Kind: entity.DocumentKindSaleNote, ID: doc.ID}
		for _, l := range outbound {
			if _, err := uc.stock.RecordInTx(ctx, r, inventory.Movement{
				ProductID:     *l.productID,
				WarehouseID:   l.warehouseID,
				Kind:          entity.MovementOut,
				Quantity:      l.qty,
				AllowNegative: req.AllowNegativeStock,
				Reference:     "NV " + doc.FullNumber(),
				Description:   fmt.Sprintf("Venta mesa #%d", table.Number),
				Document:      ref,
				UserID:        p.UserID,
				At:            now,
			}); err != nil {
				return err
			}
		}

		out = &FinishResult{Table: table, Rental: rt, Document: doc}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("table_id", tableID).
		Str("rental_id", out.Rental.ID).
		Str("document", out.Document.FullNumber()).
		Str("total", out.Document.Total.StringFixed(2)).
		Str("payment_method", string(out.Document.PaymentMethod)).
		Msg("mesa liquidada")
	return out, nil
}

func validateFinish(req FinishRequest) error {
	if req.RentalID == "" {
		return domain.NewValidation("rental_id", "requerido")
	}
	if !req.PaymentMethod.Valid() {
		return domain.NewValidation("payment_method", "medio de pago inválido")
	}
	for _, d := range []struct {
		field string
		v     *decimal.Decimal
	}{
		{"consumption", req.Consumption},
		{"discount", req.Discount},
		{"surcharge", req.Surcharge},
		{"rate_per_hour", req.RatePerHour},
	} {
		if d.v != nil && d.v.IsNegative() {
			return domain.NewValidation(d.field, "no puede ser negativo")
		}
	}
	for _, it := range req.Items {
		if it.ProductID == "" {
			return domain.NewValidation("items.product_id", "requerido")
		}
		if !it.Qty.IsPositive() {
			return domain.NewValidation("items.qty", "debe ser mayor a cero")
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return domain.NewValidation("items.unit_price", "no puede ser negativo")
		}
	}
	return nil
}

// consumedLines líneas explícitas del request o, si no vienen, las líneas ok del alquiler.
// Las líneas con producto resuelven bodega: línea, request, principal.
func (uc *SettleTableUseCase) consumedLines(ctx context.Context, r repository.Repos, p ports.Principal, rt *entity.Rental, req FinishRequest) ([]consumedLine, error) {
	var lines []consumedLine
	if len(req.Items) > 0 {
		for _, it := range req.Items {
			product, err := r.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, domain.NewNotFound("producto", it.ProductID)
			}
			price := product.SalePrice
			if it.UnitPrice != nil {
				price = *it.UnitPrice
			}
			pid := product.ID
			lines = append(lines, consumedLine{
				productID: &pid, name: product.Name, unit: product.UnitName,
				qty: it.Qty, unitPrice: price, warehouseID: it.WarehouseID,
			})
		}
	} else {
		items, err := r.RentalItems.ListByRental(ctx, rt.ID, false)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if it.Status != entity.ItemOK {
				continue
			}
			l := consumedLine{productID: it.ProductID, name: it.ProductName, unit: it.UnitName, qty: it.Qty, unitPrice: it.UnitPrice}
			if it.WarehouseID != nil {
				l.warehouseID = *it.WarehouseID
			}
			lines = append(lines, l)
		}
	}

	for i := range lines {
		if lines[i].productID == nil {
			continue
		}
		wh := firstNonEmpty(lines[i].warehouseID, req.WarehouseID, p.WarehouseID)
		if wh == "" {
			return nil, domain.NewValidation("warehouse_id", fmt.Sprintf("sin bodega para %s", lines[i].name))
		}
		found, err := r.Warehouses.GetByID(ctx, wh)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, domain.NewNotFound("bodega", wh)
		}
		lines[i].warehouseID = wh
	}
	return lines, nil
}

// stockLines solo las líneas que descargan inventario.
func stockLines(lines []consumedLine) []consumedLine {
	out := make([]consumedLine, 0, len(lines))
	for _, l := range lines {
		if l.productID != nil {
			out = append(out, l)
		}
	}
	return out
}

func buildDetails(table *entity.Table, quote pricing.Quote, lines []consumedLine, flat bool, consumption decimal.Decimal) []entity.DocumentDetail {
	details := []entity.DocumentDetail{{
		Description: fmt.Sprintf("Alquiler mesa #%d (%s)", table.Number, pricing.FormatDuration(quote.ElapsedSeconds)),
		Quantity:    pricing.BillableHours(quote.BillableMinutes),
		Unit:        "hour",
		UnitPrice:   quote.RatePerHour,
		LineTotal:   quote.Amount,
	}}
	for _, l := range lines {
		details = append(details, entity.DocumentDetail{
			ProductID:   l.productID,
			Description: l.name,
			Quantity:    l.qty,
			Unit:        l.unit,
			UnitPrice:   l.unitPrice,
			LineTotal:   l.total(),
		})
	}
	if flat && consumption.IsPositive() {
		details = append(details, entity.DocumentDetail{
			Description: "Consumo",
			Quantity:    decimal.NewFromInt(1),
			Unit:        "unidad",
			UnitPrice:   consumption,
			LineTotal:   consumption,
		})
	}
	return details
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
