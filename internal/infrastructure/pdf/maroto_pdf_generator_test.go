package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

func sampleDocument(t *testing.T) *entity.Document {
	meta, err := json.Marshal(map[string]any{"table_number": 4, "duration": "01:05:00", "discount": "2.00", "surcharge": "0.00"})
	require.NoError(t, err)
	return &entity.Document{
		ID:            "d1",
		Type:          entity.DocumentTypeSaleNote,
		Series:        "NV01",
		Number:        12,
		IssueDate:     time.Date(2026, 3, 1, 21, 30, 0, 0, time.UTC),
		Currency:      "PEN",
		Subtotal:      decimal.RequireFromString("1250.50"),
		Total:         decimal.RequireFromString("1248.50"),
		PaymentMethod: entity.PaymentCash,
		Status:        entity.DocumentIssued,
		Meta:          meta,
		Details: []entity.DocumentDetail{
			{LineNo: 1, Description: "Alquiler mesa 4 (01:05:00)", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("1238.50"), LineTotal: decimal.RequireFromString("1238.50")},
			{LineNo: 2, Description: "Cerveza", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("6.00"), LineTotal: decimal.RequireFromString("12.00")},
		},
	}
}

func TestGenerateSaleNotePDF_DevuelvePDF(t *testing.T) {
	g := NewMarotoPDFGenerator("es-PE")
	out, err := g.GenerateSaleNotePDF(context.Background(), sampleDocument(t), "Billar El Taco")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateSaleNotePDF_Errores(t *testing.T) {
	g := NewMarotoPDFGenerator("no-es-un-tag-valido-xx")
	_, err := g.GenerateSaleNotePDF(context.Background(), nil, "x")
	assert.Error(t, err)

	doc := sampleDocument(t)
	doc.Meta = json.RawMessage(`{`)
	_, err = g.GenerateSaleNotePDF(context.Background(), doc, "x")
	assert.Error(t, err)
}

func TestMoney_DosDecimales(t *testing.T) {
	g := NewMarotoPDFGenerator("en")
	assert.Equal(t, "1,250.50", g.money(decimal.RequireFromString("1250.5")))
	assert.Equal(t, "0.00", g.money(decimal.Zero))
}
