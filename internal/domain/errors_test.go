package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/billar-api/internal/domain"
)

func TestTypedErrors_UnwrapToSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{domain.NewValidation("payment_method", "valor inválido"), domain.ErrValidation},
		{domain.NewConflict("mesa %d no disponible", 3), domain.ErrConflict},
		{domain.NewNotFound("mesa", "abc"), domain.ErrNotFound},
		{&domain.InsufficientStockError{ProductID: "p1"}, domain.ErrInsufficientStock},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("capa superior: %w", tc.err)
		assert.True(t, errors.Is(wrapped, tc.sentinel), tc.err.Error())
	}
}

func TestInsufficientStockError_NombraProducto(t *testing.T) {
	err := &domain.InsufficientStockError{
		ProductID:   "p1",
		ProductName: "Cerveza",
		Requested:   decimal.NewFromInt(5),
		Available:   decimal.NewFromInt(2),
	}
	assert.Equal(t, "stock insuficiente para Cerveza: solicitado 5, disponible 2", err.Error())

	var target *domain.InsufficientStockError
	assert.True(t, errors.As(fmt.Errorf("x: %w", err), &target))
	assert.Equal(t, "p1", target.ProductID)
}

func TestValidationError_SinCampo(t *testing.T) {
	assert.Equal(t, "sin caja abierta", domain.NewValidation("", "sin caja abierta").Error())
	assert.Equal(t, "qty: debe ser mayor a cero", domain.NewValidation("qty", "debe ser mayor a cero").Error())
}
