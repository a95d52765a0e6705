package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billar-api/internal/application/billing"
	"github.com/jhoicas/billar-api/internal/application/cash"
	"github.com/jhoicas/billar-api/internal/application/document"
	"github.com/jhoicas/billar-api/internal/application/inventory"
	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/application/rental"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/infrastructure/memory"
)

var cajero = ports.Principal{UserID: "u-caja", WarehouseID: "w-barra", Role: entity.RoleCashier}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fixture struct {
	store  *memory.Store
	clock  *testClock
	occ    *rental.OccupancyUseCase
	items  *rental.ItemsUseCase
	cash   *cash.UseCase
	settle *billing.SettleTableUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &testClock{now: time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)}

	store.PutTable(entity.Table{ID: "t1", Number: 1, Status: entity.TableAvailable, RatePerHour: dec("20")})
	store.PutTable(entity.Table{ID: "t2", Number: 2, Status: entity.TableAvailable, RatePerHour: dec("20")})
	store.PutProduct(entity.Product{ID: "p-cola", SKU: "COLA", Name: "Gaseosa", UnitName: "botella", SalePrice: dec("5"), DefaultCost: dec("1"), Active: true})
	store.PutWarehouse(entity.Warehouse{ID: "w-barra", Name: "Barra", IsDefault: true})
	store.PutStock(entity.Stock{ProductID: "p-cola", WarehouseID: "w-barra", Quantity: dec("10"), AvgUnitCost: dec("2")})

	cashUC := cash.NewUseCase(store, clock)
	kardex := inventory.NewKardexUseCase(store, clock)
	emitter := document.NewEmitter(store, nil, "Billar")
	return &fixture{
		store:  store,
		clock:  clock,
		occ:    rental.NewOccupancyUseCase(store, clock),
		items:  rental.NewItemsUseCase(store, clock),
		cash:   cashUC,
		settle: billing.NewSettleTableUseCase(store, clock, kardex, cashUC, emitter, billing.Config{Series: "NV01", Currency: "PEN"}, nil),
	}
}

func (f *fixture) openCash(t *testing.T) *entity.CashSession {
	t.Helper()
	s, err := f.cash.Open(context.Background(), cajero, dec("100"), "")
	require.NoError(t, err)
	return s
}

func (f *fixture) start(t *testing.T, tableID string) *entity.Rental {
	t.Helper()
	res, err := f.occ.Start(context.Background(), cajero, tableID)
	require.NoError(t, err)
	return res.Rental
}

// ─── Escenario base ──────────────────────────────────────────────────────────

func TestFinish_TiempoMasConsumo(t *testing.T) {
	f := newFixture(t)
	session := f.openCash(t)
	rt := f.start(t, "t1")
	f.clock.Advance(50 * time.Minute)

	res, err := f.settle.Finish(context.Background(), cajero, "t1", billing.FinishRequest{
		RentalID:      rt.ID,
		PaymentMethod: entity.PaymentCash,
		Items:         []billing.FinishItem{{ProductID: "p-cola", Qty: dec("2"), UnitPrice: decPtr("5.00")}},
	})
	require.NoError(t, err)

	assert.True(t, res.Rental.AmountTime.Equal(dec("20")))
	assert.True(t, res.Rental.Consumption.Equal(dec("10")))
	assert.True(t, res.Rental.Total.Equal(dec("30")))
	assert.Equal(t, entity.RentalClosed, res.Rental.Status)
	assert.Equal(t, int64(3000), res.Rental.ElapsedSeconds)
	require.NotNil(t, res.Rental.DocumentID)
	assert.Equal(t, res.Document.ID, *res.Rental.DocumentID)

	assert.Equal(t, entity.TableAvailable, res.Table.Status)
	assert.Nil(t, res.Table.StartTime)

	doc := res.Document
	assert.Equal(t, "NV01-00000001", doc.FullNumber())
	assert.True(t, doc.Total.Equal(dec("30")))
	assert.True(t, doc.Subtotal.Equal(dec("30")))
	assert.True(t, doc.Tax.IsZero())
	require.NotNil(t, doc.CashSessionID)
	assert.Equal(t, session.ID, *doc.CashSessionID)
	require.Len(t, doc.Details, 2)
	assert.Equal(t, "Alquiler mesa #1 (00:50:00)", doc.Details[0].Description)
	assert.True(t, doc.Details[0].Quantity.Equal(dec("1")))
	assert.Equal(t, "hour", doc.Details[0].Unit)
	assert.True(t, doc.Details[0].LineTotal.Equal(dec("20")))
	assert.Equal(t, "Gaseosa", doc.Details[1].Description)
	assert.True(t, doc.Details[1].LineTotal.Equal(dec("10")))

	movs := f.store.CashMovements()
	require.Len(t, movs, 2)
	sale := movs[1]
	assert.Equal(t, entity.CashSale, sale.Type)
	assert.True(t, sale.Amount.Equal(dec("30")))
	assert.Equal(t, "NV NV01-00000001 Mesa #1", sale.Description)
	require.NotNil(t, sale.DocumentID)
	assert.Equal(t, doc.ID, *sale.DocumentID)

	entries := f.store.KardexEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MovementOut, entries[0].Movement)
	assert.True(t, entries[0].QuantityOut.Equal(dec("2")))
	assert.True(t, entries[0].UnitCost.Equal(dec("2")), "sale al promedio previo")
	assert.True(t, entries[0].BalanceQty.Equal(dec("8")))
	require.NotNil(t, entries[0].Document)
	assert.Equal(t, entity.DocumentKindSaleNote, entries[0].Document.Kind)
	assert.Equal(t, doc.ID, entries[0].Document.ID)
	assert.True(t, f.store.Stock("p-cola", "w-barra").Quantity.Equal(dec("8")))
}

func TestFinish_UsaLineasDelAlquiler(t *testing.T) {
	f := newFixture(t)
	f.openCash(t)
	rt := f.start(t, "t1")
	_, err := f.items.AddItem(context.Background(), cajero, rt.ID, rental.ItemRequest{ProductID: "p-cola", Qty: dec("3")})
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	res, err := f.settle.Finish(context.Background(), cajero, "t1", billing.FinishRequest{
		RentalID: rt.ID, PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)
	// 15 minutos a 20/h = 5.00
	assert.True(t, res.Rental.AmountTime.Equal(dec("5")))
	assert.True(t, res.Rental.Consumption.Equal(dec("15")))
	assert.True(t, res.Document.Total.Equal(dec("20")))
	assert.True(t, f.store.Stock("p-cola", "w-barra").Quantity.Equal(dec("7")))
}

func TestFinish_ConsumoPlanoYTarifaPropia(t *testing.T) {
	f := newFixture(t)
	f.openCash(t)
	rt := f.start(t, "t1")
	f.clock.Advance(61 * time.Minute)

	res, err := f.settle.Finish(context.Background(), cajero, "t1", billing.FinishRequest{
		RentalID:      rt.ID,
		PaymentMethod: entity.PaymentCash,
		Consumption:   decPtr("7.50"),
		RatePerHour:   decPtr("30"),
		Discount:      decPtr("1"),
		Surcharge:     decPtr("0.5"),
	})
	require.NoError(t, err)
	// 75 minutos a 30/h = 37.50
	assert.True(t, res.Rental.AmountTime.Equal(dec("37.5")))
	assert.True(t, res.Rental.Total.Equal(dec("44.5")), res.Rental.Total.String())
	require.Len(t, res.Document.Details, 2)
	assert.Equal(t, "Consumo", res.Document.Details[1].Description)
	assert.True(t, res.Document.Details[0].Quantity.Equal(dec("1.25")))
	assert.Empty(t, f.store.KardexEntries())
	assert.True(t, f.store.Table("t1").RatePerHour.Equal(dec("20")), "la tarifa de la mesa no cambia")
}

func sumLines(doc *entity.Document) decimal.Decimal {
	sum := decimal.Zero
	for _, d := range doc.Details {
		sum = sum.Add(d.LineTotal)
	}
	return sum
}

func TestFinish_DetalleCuadraConSubtotal(t *testing.T) {
	f := newFixture(t)
	rt := f.start(t, "t1")
	f.clock.Advance(50 * time.Minute)

	// 0.333 x 5.00 = 1.665 por línea; tres líneas redondeadas suman 5.01
	third := billing.FinishItem{ProductID: "p-cola", Qty: dec("0.333"), UnitPrice: decPtr("5.00")}
	res, err := f.settle.Finish(context.Background(), cajero, "t1", billing.FinishRequest{
		RentalID:      rt.ID,
		PaymentMethod: entity.PaymentCard,
		Items:         []billing.FinishItem{third, third, third},
	})
	require.NoError(t, err)
	require.Len(t, res.Document.Details, 4)
	for _, d := range res.Document.Details[1:] {
		assert.True(t, d.LineTotal.Equal(dec("1.67")), d.LineTotal.String())
	}
	assert.True(t, res.Rental.Consumption.Equal(dec("5.01")), res.Rental.Consumption.String())
	assert.True(t, sumLines(res.Document).Equal(res.Document.Subtotal), "%s != %s", sumLines(res.Document), res.Document.Subtotal)
	assert.True(t, res.Document.Subtotal.Equal(dec("25.01")))

	flatRt := f.start(t, "t2")
	f.clock.Advance(30 * time.Minute)
	flat, err := f.settle.Finish(context.Background(), cajero, "t2", billing.FinishRequest{
		RentalID:      flatRt.ID,
		PaymentMethod: entity.PaymentCard,
		Consumption:   decPtr("3.335"),
	})
	require.NoError(t, err)
	assert.True(t, sumLines(flat.Document).Equal(flat.Document.Subtotal), "%s != %s", sumLines(flat.Document), flat.Document.Subtotal)
}

// ─── Errores y atomicidad ────────────────────────────────────────────────────

func TestFinish_AlquilerCerradoConflicto(t *testing.T) {
	f := newFixture(t)
	f.openCash(t)
	rt := f.start(t, "t1")
	req := billing.FinishRequest{RentalID: rt.ID, PaymentMethod: entity.PaymentCash}
	_, err := f.settle.Finish(context.Background(), cajero, "t1", req)
	require.NoError(t, err)

	_, err = f.settle.Finish(context.Background(), cajero, "t1", req)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, f.store.Documents(), 1)
	assert.Len(t, f.store.CashMovements(), 2)
}

func TestFinish_StockInsuficienteRevierteTodo(t *testing.T) {
	f := newFixture(t)
	f.openCash(t)
	rt := f.start(t, "t1")
	f.clock.Advance(20 * time.Minute)

	_, err := f.settle.Finish(context.Background(), cajero, "t1", billing.FinishRequest{
		RentalID: rt.ID, PaymentMethod: entity.PaymentCash,
		Items: []billing.FinishItem{{ProductID: "p-cola", Qty: dec("50")}},
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p-cola", stockErr.ProductID)

	assert.Equal(t, entity.TableInProgress, f.store.Table("t1").Status)
	assert.Equal(t, entity.RentalOpen, f.store.Rentals("t1")[0].Status)
	assert.Empty(t, f.store.Documents())
	assert.Empty(t, f.store.KardexEntries())
	assert.Len(t, f.store.CashMovements(), 1)
	assert.True(t, f.store.Stock("p-cola", "w-barra").Quantity.Equal(dec("10")))

	res, err := f.settle.Finish(context.Background(), cajero, "t1", billing.FinishRequest{
		RentalID: rt.ID, PaymentMethod: entity.PaymentCash,
		Items:              []billing.FinishItem{{ProductID: "p-cola", Qty: dec("50")}},
		AllowNegativeStock: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Document.Number, "el intento fallido no consumió número")
	assert.True(t, f.store.Stock("p-cola", "w-barra").Quantity.Equal(dec("-40")))
}

func TestFinish_SinCajaAbierta(t *testing.T) {
	f := newFixture(t)
	rt := f.start(t, "t1")

	_, err := f.settle.Finish(context.Background(), cajero, "t1", billing.FinishRequest{RentalID: rt.ID, PaymentMethod: entity.PaymentCash})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.store.Documents())
	assert.Equal(t, entity.TableInProgress, f.store.Table("t1").Status)

	res, err := f.settle.Finish(context.Background(), cajero, "t1", billing.FinishRequest{RentalID: rt.ID, PaymentMethod: entity.PaymentCard})
	require.NoError(t, err)
	assert.Nil(t, res.Document.CashSessionID)
	assert.Empty(t, f.store.CashMovements())
}

func TestFinish_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.openCash(t)
	rt := f.start(t, "t1")
	f.start(t, "t2")

	_, err := f.settle.Finish(context.Background(), cajero, "t1", billing.FinishRequest{PaymentMethod: entity.PaymentCash})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.settle.Finish(context.Background(), cajero, "t1", billing.FinishRequest{RentalID: rt.ID, PaymentMethod: "cheque"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.settle.Finish(context.Background(), cajero, "t2", billing.FinishRequest{RentalID: rt.ID, PaymentMethod: entity.PaymentCash})
	assert.ErrorIs(t, err, domain.ErrValidation)

	sinBodega := ports.Principal{UserID: cajero.UserID, Role: entity.RoleCashier}
	_, err = f.settle.Finish(context.Background(), sinBodega, "t1", billing.FinishRequest{
		RentalID: rt.ID, PaymentMethod: entity.PaymentCash,
		Items: []billing.FinishItem{{ProductID: "p-cola", Qty: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.store.Documents())
}

// ─── Concurrencia ────────────────────────────────────────────────────────────

func TestFinish_ConcurrenteEncadenaKardexYNumeracion(t *testing.T) {
	f := newFixture(t)
	f.openCash(t)
	r1 := f.start(t, "t1")
	r2 := f.start(t, "t2")
	f.clock.Advance(30 * time.Minute)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, pair := range [][2]string{{"t1", r1.ID}, {"t2", r2.ID}} {
		wg.Add(1)
		go func(i int, tableID, rentalID string) {
			defer wg.Done()
			_, errs[i] = f.settle.Finish(context.Background(), cajero, tableID, billing.FinishRequest{
				RentalID: rentalID, PaymentMethod: entity.PaymentCash,
				Items: []billing.FinishItem{{ProductID: "p-cola", Qty: dec("3")}},
			})
		}(i, pair[0], pair[1])
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	entries := f.store.KardexEntries()
	require.Len(t, entries, 2)
	assert.True(t, entries[0].BalanceQty.Equal(dec("7")))
	assert.True(t, entries[1].BalanceQty.Equal(dec("4")))
	assert.True(t, f.store.Stock("p-cola", "w-barra").Quantity.Equal(dec("4")))

	nums := map[int64]bool{}
	for _, d := range f.store.Documents() {
		nums[d.Number] = true
	}
	assert.Equal(t, map[int64]bool{1: true, 2: true}, nums)
}
