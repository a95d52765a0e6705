package cash_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billar-api/internal/application/cash"
	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
	"github.com/jhoicas/billar-api/internal/infrastructure/memory"
)

var (
	cajero = ports.Principal{UserID: "u-caja", Role: entity.RoleCashier}
	otro   = ports.Principal{UserID: "u-otro", Role: entity.RoleCashier}
	admin  = ports.Principal{UserID: "u-admin", Role: entity.RoleAdmin}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newUseCase() (*memory.Store, *cash.UseCase) {
	store := memory.NewStore()
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	return store, cash.NewUseCase(store, ports.ClockFunc(func() time.Time { return now }))
}

// ─── Apertura ────────────────────────────────────────────────────────────────

func TestOpen_CreaMovimientoDeApertura(t *testing.T) {
	store, uc := newUseCase()

	s, err := uc.Open(context.Background(), cajero, dec("100"), "turno noche")
	require.NoError(t, err)
	assert.Equal(t, entity.CashSessionOpen, s.Status)
	assert.True(t, s.ExpectedCash.Equal(dec("100")))

	movs := store.CashMovements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.CashOpen, movs[0].Type)
	assert.True(t, movs[0].Amount.Equal(dec("100")))
}

func TestOpen_SegundaAperturaFalla(t *testing.T) {
	store, uc := newUseCase()
	_, err := uc.Open(context.Background(), cajero, dec("100"), "")
	require.NoError(t, err)

	_, err = uc.Open(context.Background(), cajero, dec("50"), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, store.CashMovements(), 1)

	_, err = uc.Open(context.Background(), otro, dec("50"), "")
	assert.NoError(t, err)
}

func TestOpen_ConcurrenteSoloUnaGana(t *testing.T) {
	_, uc := newUseCase()
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Open(context.Background(), cajero, dec("10"), "")
		}(i)
	}
	wg.Wait()
	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)
}

// ─── Movimientos ─────────────────────────────────────────────────────────────

func TestAddMovement_SignosPorTipo(t *testing.T) {
	_, uc := newUseCase()
	ctx := context.Background()
	s, err := uc.Open(ctx, cajero, dec("100"), "")
	require.NoError(t, err)

	cases := []struct {
		req  cash.MovementRequest
		want string
	}{
		{cash.MovementRequest{Type: entity.CashIncome, Amount: dec("20")}, "20"},
		{cash.MovementRequest{Type: entity.CashExpense, Amount: dec("5")}, "-5"},
		{cash.MovementRequest{Type: entity.CashWithdrawal, Amount: dec("30")}, "-30"},
		{cash.MovementRequest{Type: entity.CashRefund, Amount: dec("2.5")}, "-2.5"},
		{cash.MovementRequest{Type: entity.CashAdjust, Amount: dec("1"), SignedAmount: decPtr("-1.25")}, "-1.25"},
	}
	for _, tc := range cases {
		m, err := uc.AddMovement(ctx, cajero, s.ID, tc.req)
		require.NoError(t, err)
		assert.True(t, m.Amount.Equal(dec(tc.want)), "%s: %s", tc.req.Type, m.Amount)
	}

	cur, err := uc.Current(ctx, cajero)
	require.NoError(t, err)
	assert.True(t, cur.Session.ExpectedCash.Equal(dec("81.25")), cur.Session.ExpectedCash.String())
	assert.Len(t, cur.Movements, 6)
}

func TestAddMovement_Rechazos(t *testing.T) {
	_, uc := newUseCase()
	ctx := context.Background()
	s, err := uc.Open(ctx, cajero, dec("10"), "")
	require.NoError(t, err)

	_, err = uc.AddMovement(ctx, cajero, s.ID, cash.MovementRequest{Type: entity.CashOpen, Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.AddMovement(ctx, cajero, s.ID, cash.MovementRequest{Type: "propina", Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.AddMovement(ctx, otro, s.ID, cash.MovementRequest{Type: entity.CashIncome, Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.AddMovement(ctx, cajero, "no-existe", cash.MovementRequest{Type: entity.CashIncome, Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// ─── Cierre ──────────────────────────────────────────────────────────────────

func TestClose_ArqueoConAjuste(t *testing.T) {
	store, uc := newUseCase()
	ctx := context.Background()
	s, err := uc.Open(ctx, cajero, dec("100"), "")
	require.NoError(t, err)
	_, err = uc.AddMovement(ctx, cajero, s.ID, cash.MovementRequest{Type: entity.CashIncome, Amount: dec("50")})
	require.NoError(t, err)

	res, err := uc.Close(ctx, cajero, s.ID, cash.CloseRequest{CountedCash: dec("140"), CreateAdjust: true})
	require.NoError(t, err)

	assert.True(t, res.Reconciliation.Expected.Equal(dec("150")))
	assert.True(t, res.Reconciliation.Difference.Equal(dec("-10")))
	assert.True(t, res.Reconciliation.Adjust.Equal(dec("10")))
	assert.True(t, res.Reconciliation.Difference.Add(res.Reconciliation.Adjust).IsZero())
	assert.Equal(t, entity.CashSessionClosed, res.Session.Status)
	require.NotNil(t, res.Session.ClosedAt)
	require.NotNil(t, res.Session.Difference)
	assert.True(t, res.Session.Difference.Equal(dec("-10")))

	require.Len(t, res.Movements, 3)
	last := res.Movements[2]
	assert.Equal(t, entity.CashAdjust, last.Type)
	assert.True(t, last.Amount.Equal(dec("10")))
	assert.Len(t, store.CashMovements(), 3)
}

func TestClose_SinAjusteYaCerrada(t *testing.T) {
	store, uc := newUseCase()
	ctx := context.Background()
	s, err := uc.Open(ctx, cajero, dec("100"), "")
	require.NoError(t, err)

	res, err := uc.Close(ctx, cajero, s.ID, cash.CloseRequest{CountedCash: dec("90")})
	require.NoError(t, err)
	assert.False(t, res.Reconciliation.NeedsAdjust())
	assert.Len(t, store.CashMovements(), 1)

	_, err = uc.Close(ctx, cajero, s.ID, cash.CloseRequest{CountedCash: dec("90")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.AddMovement(ctx, cajero, s.ID, cash.MovementRequest{Type: entity.CashIncome, Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Current(ctx, cajero)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─── Lecturas ────────────────────────────────────────────────────────────────

func TestList_CajeroSoloVeLasSuyas(t *testing.T) {
	_, uc := newUseCase()
	ctx := context.Background()
	_, err := uc.Open(ctx, cajero, dec("10"), "")
	require.NoError(t, err)
	_, err = uc.Open(ctx, otro, dec("10"), "")
	require.NoError(t, err)

	mine, total, err := uc.List(ctx, cajero, repository.CashSessionQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, cajero.UserID, mine[0].UserID)

	_, total, err = uc.List(ctx, admin, repository.CashSessionQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	movs, err := uc.Movements(ctx, admin, mine[0].ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1)

	_, err = uc.Get(ctx, otro, mine[0].ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
