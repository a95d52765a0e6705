package rental_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/application/rental"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
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
	store *memory.Store
	clock *testClock
	occ   *rental.OccupancyUseCase
	items *rental.ItemsUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &testClock{now: time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)}
	store.PutTable(entity.Table{ID: "t1", Number: 1, Name: "Mesa 1", Status: entity.TableAvailable, RatePerHour: dec("20")})
	store.PutProduct(entity.Product{ID: "p-cola", SKU: "COLA", Name: "Gaseosa", UnitName: "botella", SalePrice: dec("5"), Active: true})
	return &fixture{
		store: store,
		clock: clock,
		occ:   rental.NewOccupancyUseCase(store, clock),
		items: rental.NewItemsUseCase(store, clock),
	}
}

// ─── Start ───────────────────────────────────────────────────────────────────

func TestStart_AbreAlquilerYEsIdempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, entity.TableInProgress, first.Table.Status)
	assert.Equal(t, entity.RentalOpen, first.Rental.Status)
	assert.True(t, first.Rental.RatePerHour.Equal(dec("20")))

	again, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, first.Rental.ID, again.Rental.ID)
	assert.Len(t, f.store.Rentals("t1"), 1)
}

func TestStart_ConcurrenteUnSoloAlquiler(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.occ.Start(context.Background(), cajero, "t1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, f.store.Rentals("t1"), 1)
}

func TestStart_ReparaMesaLibreConAlquilerAbierto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)

	stale := *f.store.Table("t1")
	stale.Status = entity.TableAvailable
	stale.ResetSnapshot()
	f.store.PutTable(stale)

	res, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, first.Rental.ID, res.Rental.ID)
	assert.Equal(t, entity.TableInProgress, f.store.Table("t1").Status)
}

func TestStart_MesaPausadaOCanceladaConflicto(t *testing.T) {
	f := newFixture(t)
	for _, st := range []entity.TableStatus{entity.TablePaused, entity.TableCancelled} {
		f.store.PutTable(entity.Table{ID: "t2", Number: 2, Status: st, RatePerHour: dec("10")})
		_, err := f.occ.Start(context.Background(), cajero, "t2")
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	_, err := f.occ.Start(context.Background(), cajero, "t-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPauseResume_Deshabilitados(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.occ.Pause(context.Background(), cajero, "t1"), domain.ErrFeatureDisabled)
	assert.ErrorIs(t, f.occ.Resume(context.Background(), cajero, "t1"), domain.ErrFeatureDisabled)
}

// ─── Cancel ──────────────────────────────────────────────────────────────────

func TestCancel_AnulaAlquilerYLiberaMesa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)
	_, err = f.items.AddItem(ctx, cajero, started.Rental.ID, rental.ItemRequest{ProductID: "p-cola", Qty: dec("2")})
	require.NoError(t, err)
	f.clock.Advance(25 * time.Minute)

	table, err := f.occ.Cancel(ctx, cajero, "t1")
	require.NoError(t, err)
	assert.Equal(t, entity.TableAvailable, table.Status)
	assert.Nil(t, table.StartTime)
	assert.True(t, table.Consumption.IsZero())

	rentals := f.store.Rentals("t1")
	require.Len(t, rentals, 1)
	rt := rentals[0]
	assert.Equal(t, entity.RentalCancelled, rt.Status)
	assert.Equal(t, int64(25*60), rt.ElapsedSeconds)
	assert.True(t, rt.Total.IsZero())
	assert.True(t, rt.Consumption.IsZero())
	require.NotNil(t, rt.EndedAt)
}

func TestCancel_MesaCanceladaNoEscribe(t *testing.T) {
	f := newFixture(t)
	stamp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.store.PutTable(entity.Table{ID: "t3", Number: 3, Status: entity.TableCancelled, UpdatedAt: stamp})

	table, err := f.occ.Cancel(context.Background(), cajero, "t3")
	require.NoError(t, err)
	assert.Equal(t, entity.TableCancelled, table.Status)
	assert.Equal(t, stamp, f.store.Table("t3").UpdatedAt)
	assert.Empty(t, f.store.Rentals("t3"))
}

func TestCancel_MesaLibreSinAlquiler(t *testing.T) {
	f := newFixture(t)
	before := f.store.Table("t1").UpdatedAt
	_, err := f.occ.Cancel(context.Background(), cajero, "t1")
	require.NoError(t, err)
	assert.Equal(t, before, f.store.Table("t1").UpdatedAt)
}

// ─── Items ───────────────────────────────────────────────────────────────────

func TestAddItem_TomaDatosDelProductoYRecalcula(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)

	res, err := f.items.AddItem(ctx, cajero, started.Rental.ID, rental.ItemRequest{
		ProductID: "p-cola", Qty: dec("3"), Discount: dec("1"),
	})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "Gaseosa", res.Item.ProductName)
	assert.Equal(t, "botella", res.Item.UnitName)
	assert.True(t, res.Item.UnitPrice.Equal(dec("5")))
	assert.True(t, res.Item.Total.Equal(dec("14")))
	assert.True(t, res.Rental.Consumption.Equal(dec("14")))
	assert.True(t, res.Rental.Total.Equal(dec("14")))
	assert.True(t, f.store.Table("t1").Consumption.Equal(dec("14")))

	free, err := f.items.AddItem(ctx, cajero, started.Rental.ID, rental.ItemRequest{
		ProductName: "Tiza", Qty: dec("1"), UnitPrice: decPtr("0.50"),
	})
	require.NoError(t, err)
	assert.Nil(t, free.Item.ProductID)
	assert.True(t, free.Rental.Consumption.Equal(dec("14.5")))
}

func TestAddItemsBulk_ClientOpIdempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)

	reqs := []rental.ItemRequest{
		{ProductID: "p-cola", Qty: dec("1"), ClientOpID: "op-1"},
		{ProductID: "p-cola", Qty: dec("2"), ClientOpID: "op-2"},
		{ProductID: "p-cola", Qty: dec("2"), ClientOpID: "op-2"},
	}
	res, err := f.items.AddItemsBulk(ctx, cajero, started.Rental.ID, reqs)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.True(t, res.Rental.Consumption.Equal(dec("15")))

	again, err := f.items.AddItemsBulk(ctx, cajero, started.Rental.ID, reqs[:2])
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 2, again.Skipped)

	single, err := f.items.AddItem(ctx, cajero, started.Rental.ID, reqs[0])
	require.NoError(t, err)
	assert.False(t, single.Created)
	require.NotNil(t, single.Item)
	assert.Equal(t, "op-1", *single.Item.ClientOpID)
}

func TestUpdateYVoidItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)
	added, err := f.items.AddItem(ctx, cajero, started.Rental.ID, rental.ItemRequest{ProductID: "p-cola", Qty: dec("2")})
	require.NoError(t, err)

	upd, err := f.items.UpdateItem(ctx, cajero, added.Item.ID, rental.ItemUpdate{Qty: decPtr("4")})
	require.NoError(t, err)
	assert.True(t, upd.Total.Equal(dec("20")))

	voided, err := f.items.VoidItem(ctx, cajero, added.Item.ID, "error de carga")
	require.NoError(t, err)
	assert.Equal(t, entity.ItemVoided, voided.Status)
	require.NotNil(t, voided.VoidedAt)

	again, err := f.items.VoidItem(ctx, cajero, added.Item.ID, "otra vez")
	require.NoError(t, err)
	assert.Equal(t, "error de carga", again.VoidReason)

	_, err = f.items.UpdateItem(ctx, cajero, added.Item.ID, rental.ItemUpdate{Qty: decPtr("1")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	view, err := f.occ.Get(ctx, started.Rental.ID)
	require.NoError(t, err)
	assert.True(t, view.Rental.Consumption.IsZero())
	assert.Len(t, view.Items, 1)

	live, err := f.items.ListItems(ctx, started.Rental.ID, false)
	require.NoError(t, err)
	assert.Empty(t, live)
}

func TestItems_AlquilerCerradoConflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)
	_, err = f.occ.Cancel(ctx, cajero, "t1")
	require.NoError(t, err)

	_, err = f.items.AddItem(ctx, cajero, started.Rental.ID, rental.ItemRequest{ProductID: "p-cola", Qty: dec("1")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAddItem_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)

	bad := []rental.ItemRequest{
		{ProductID: "p-cola", Qty: decimal.Zero},
		{ProductName: "Libre", Qty: dec("1")},
		{Qty: dec("1"), UnitPrice: decPtr("1")},
		{ProductID: "p-cola", Qty: dec("1"), Discount: dec("9")},
	}
	for _, req := range bad {
		_, err := f.items.AddItem(ctx, cajero, started.Rental.ID, req)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	_, err = f.items.AddItem(ctx, cajero, started.Rental.ID, rental.ItemRequest{ProductID: "p-x", Qty: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── Update y consultas ──────────────────────────────────────────────────────

func TestUpdateRental_DescuentoRecargo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)
	_, err = f.items.AddItem(ctx, cajero, started.Rental.ID, rental.ItemRequest{ProductID: "p-cola", Qty: dec("2")})
	require.NoError(t, err)

	notes := "cliente frecuente"
	rt, err := f.occ.Update(ctx, cajero, started.Rental.ID, rental.UpdateRequest{
		Discount: decPtr("2"), Surcharge: decPtr("1"), Notes: &notes,
	})
	require.NoError(t, err)
	assert.True(t, rt.Total.Equal(dec("9")), rt.Total.String())
	assert.Equal(t, notes, rt.Notes)

	_, err = f.occ.Update(ctx, cajero, started.Rental.ID, rental.UpdateRequest{Discount: decPtr("-1")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetYList_CotizacionEnVivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)
	f.clock.Advance(50 * time.Minute)

	view, err := f.occ.Get(ctx, started.Rental.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), view.Quote.BillableMinutes)
	assert.True(t, view.Quote.Amount.Equal(dec("20")))

	status := entity.RentalOpen
	list, total, err := f.occ.List(ctx, repository.RentalQuery{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, started.Rental.ID, list[0].ID)
}

// stalePeekTx entrega en la primera lectura de una línea la versión previa a su anulación,
// como la vería una transacción que leyó antes de que otra anulara la línea.
type stalePeekTx struct {
	store *memory.Store
	reads int
}

func (tx *stalePeekTx) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	return tx.store.Run(ctx, func(r repository.Repos) error {
		r.RentalItems = &stalePeekItems{RentalItemRepository: r.RentalItems, tx: tx}
		return fn(r)
	})
}

func (tx *stalePeekTx) Read(ctx context.Context, fn func(r repository.Repos) error) error {
	return tx.store.Read(ctx, fn)
}

type stalePeekItems struct {
	repository.RentalItemRepository
	tx *stalePeekTx
}

func (s *stalePeekItems) GetByID(ctx context.Context, id string) (*entity.RentalItem, error) {
	item, err := s.RentalItemRepository.GetByID(ctx, id)
	s.tx.reads++
	if err != nil || item == nil || s.tx.reads > 1 {
		return item, err
	}
	stale := *item
	stale.Status = entity.ItemOK
	stale.VoidedAt = nil
	stale.VoidReason = ""
	return &stale, nil
}

func TestVoidItem_AnuladaMientrasEsperabaElBloqueo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	started, err := f.occ.Start(ctx, cajero, "t1")
	require.NoError(t, err)
	added, err := f.items.AddItem(ctx, cajero, started.Rental.ID, rental.ItemRequest{ProductID: "p-cola", Qty: dec("1")})
	require.NoError(t, err)
	first, err := f.items.VoidItem(ctx, cajero, added.Item.ID, "error de carga")
	require.NoError(t, err)
	require.NotNil(t, first.VoidedAt)

	f.clock.Advance(5 * time.Minute)
	racing := rental.NewItemsUseCase(&stalePeekTx{store: f.store}, f.clock)
	again, err := racing.VoidItem(ctx, cajero, added.Item.ID, "segunda anulación")
	require.NoError(t, err)
	assert.Equal(t, "error de carga", again.VoidReason)
	require.NotNil(t, again.VoidedAt)
	assert.True(t, again.VoidedAt.Equal(*first.VoidedAt))

	items, err := f.items.ListItems(ctx, started.Rental.ID, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "error de carga", items[0].VoidReason)
	assert.True(t, items[0].VoidedAt.Equal(*first.VoidedAt))
}
