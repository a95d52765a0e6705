package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billar-api/internal/application/analytics"
	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/infrastructure/memory"
)

func seedDoc(s *memory.Store, id string, at time.Time, pm entity.PaymentMethod, total string, session *string, lines ...entity.DocumentDetail) {
	s.PutDocument(entity.Document{
		ID:            id,
		Type:          entity.DocumentTypeSaleNote,
		Series:        "NV01",
		Number:        int64(len(s.Documents()) + 1),
		IssueDate:     at,
		Currency:      "PEN",
		Total:         decimal.RequireFromString(total),
		PaymentMethod: pm,
		Status:        entity.DocumentIssued,
		CashSessionID: session,
		Details:       lines,
	})
}

func line(desc, qty, total string) entity.DocumentDetail {
	return entity.DocumentDetail{Description: desc, Quantity: decimal.RequireFromString(qty), LineTotal: decimal.RequireFromString(total)}
}

func TestGetSummary_HoyPorDefecto(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)
	now := time.Date(2026, 3, 10, 22, 0, 0, 0, lima)
	s := memory.NewStore()
	session := "sess-1"

	seedDoc(s, "d1", now.Add(-2*time.Hour), entity.PaymentCash, "30.00", &session,
		line("Alquiler mesa #1", "1", "20.00"), line("Cerveza", "2", "10.00"))
	seedDoc(s, "d2", now.Add(-time.Hour), entity.PaymentCard, "15.00", nil,
		line("Cerveza", "3", "15.00"))
	seedDoc(s, "d3", now.AddDate(0, 0, -1), entity.PaymentCash, "99.00", &session, line("Ayer", "1", "99.00"))

	uc := analytics.NewSalesSummaryUseCase(s, ports.ClockFunc(func() time.Time { return now }), lima, "PEN")
	out, err := uc.GetSummary(context.Background(), dto.SalesSummaryRequest{})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-10", out.From)
	assert.Equal(t, "2026-03-10", out.To)
	assert.Equal(t, 2, out.DocumentsCount)
	assert.True(t, out.TotalSales.Equal(decimal.RequireFromString("45.00")))
	assert.True(t, out.AverageTicket.Equal(decimal.RequireFromString("22.50")))
	require.Len(t, out.ByPaymentMethod, 2)
	assert.Equal(t, "cash", out.ByPaymentMethod[0].PaymentMethod)
	require.Len(t, out.TopItems, 2)
	assert.Equal(t, "Cerveza", out.TopItems[0].Description)
	assert.True(t, out.TopItems[0].Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, out.TopItems[0].Amount.Equal(decimal.NewFromInt(25)))
}

func TestGetSummary_RangoYSesion(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := memory.NewStore()
	session := "sess-1"
	seedDoc(s, "d1", now, entity.PaymentCash, "30.00", &session, line("Cerveza", "1", "30.00"))
	seedDoc(s, "d2", now.AddDate(0, 0, -1), entity.PaymentCash, "10.00", &session, line("Cerveza", "1", "10.00"))
	seedDoc(s, "d3", now.AddDate(0, 0, -1), entity.PaymentTransfer, "7.00", nil, line("Papas", "1", "7.00"))

	uc := analytics.NewSalesSummaryUseCase(s, ports.ClockFunc(func() time.Time { return now }), nil, "PEN")

	out, err := uc.GetSummary(context.Background(), dto.SalesSummaryRequest{From: "2026-03-09", To: "2026-03-10", CashSessionID: session})
	require.NoError(t, err)
	assert.Equal(t, 2, out.DocumentsCount)
	assert.True(t, out.TotalSales.Equal(decimal.NewFromInt(40)))

	out, err = uc.GetSummary(context.Background(), dto.SalesSummaryRequest{From: "2026-03-09", TopLimit: 1})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", out.To)
	assert.Equal(t, 2, out.DocumentsCount)
	assert.Len(t, out.TopItems, 1)

	empty, err := uc.GetSummary(context.Background(), dto.SalesSummaryRequest{From: "2026-01-01"})
	require.NoError(t, err)
	assert.Zero(t, empty.DocumentsCount)
	assert.True(t, empty.AverageTicket.IsZero())
	assert.NotNil(t, empty.ByPaymentMethod)

	_, err = uc.GetSummary(context.Background(), dto.SalesSummaryRequest{From: "2026-03-10", To: "2026-03-01"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = uc.GetSummary(context.Background(), dto.SalesSummaryRequest{From: "10/03/2026"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
