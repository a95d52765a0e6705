package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/domain/cash"
	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// OpenCashRequest apertura de caja.
type OpenCashRequest struct {
	OpeningCash decimal.Decimal `json:"opening_cash" validate:"min=0"`
	Notes       string          `json:"notes" validate:"omitempty,max=500"`
}

// CashMovementRequest movimiento manual. Amount es magnitud; SignedAmount solo para adjust.
type CashMovementRequest struct {
	Type         string           `json:"type" validate:"required,oneof=income expense withdrawal refund adjust"`
	Amount       decimal.Decimal  `json:"amount" validate:"min=0"`
	SignedAmount *decimal.Decimal `json:"signed_amount"`
	Description  string           `json:"description" validate:"omitempty,max=300"`
}

// CloseCashRequest cierre con arqueo.
type CloseCashRequest struct {
	CountedCash  decimal.Decimal `json:"counted_cash" validate:"min=0"`
	CreateAdjust bool            `json:"create_adjust"`
	Notes        string          `json:"notes" validate:"omitempty,max=500"`
}

// CashSessionQueryRequest filtros de GET /cash-sessions.
type CashSessionQueryRequest struct {
	PageRequest
	UserID string `query:"user_id" validate:"omitempty,uuid"`
	Status string `query:"status" validate:"omitempty,oneof=open closed"`
	From   string `query:"from"`
	To     string `query:"to"`
}

// CashSessionResponse salida de una sesión.
type CashSessionResponse struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	OpenedAt     time.Time        `json:"opened_at"`
	ClosedAt     *time.Time       `json:"closed_at,omitempty"`
	OpeningCash  decimal.Decimal  `json:"opening_cash"`
	ExpectedCash decimal.Decimal  `json:"expected_cash"`
	CountedCash  *decimal.Decimal `json:"counted_cash,omitempty"`
	Difference   *decimal.Decimal `json:"difference,omitempty"`
	Status       string           `json:"status"`
	Notes        string           `json:"notes,omitempty"`
}

// CashMovementResponse salida de un movimiento.
type CashMovementResponse struct {
	ID            string          `json:"id"`
	CashSessionID string          `json:"cash_session_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	DocumentID    *string         `json:"document_id,omitempty"`
	UserID        string          `json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CashSessionDetailResponse sesión con sus movimientos.
type CashSessionDetailResponse struct {
	Session   CashSessionResponse    `json:"session"`
	Movements []CashMovementResponse `json:"movements"`
}

// ReconciliationResponse resultado del arqueo.
type ReconciliationResponse struct {
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	CountedCash  decimal.Decimal `json:"counted_cash"`
	Difference   decimal.Decimal `json:"difference"`
	Adjust       decimal.Decimal `json:"adjust"`
}

// CloseCashResponse salida de POST /cash-sessions/:id/close.
type CloseCashResponse struct {
	CashSessionDetailResponse
	Reconciliation ReconciliationResponse `json:"reconciliation"`
}

// CashSessionListResponse lista paginada.
type CashSessionListResponse struct {
	Items []CashSessionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// NewCashSessionResponse mapea la entidad.
func NewCashSessionResponse(s *entity.CashSession) CashSessionResponse {
	return CashSessionResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		OpenedAt:     s.OpenedAt,
		ClosedAt:     s.ClosedAt,
		OpeningCash:  s.OpeningCash,
		ExpectedCash: s.ExpectedCash,
		CountedCash:  s.CountedCash,
		Difference:   s.Difference,
		Status:       string(s.Status),
		Notes:        s.Notes,
	}
}

// NewCashMovementResponse mapea la entidad.
func NewCashMovementResponse(m *entity.CashMovement) CashMovementResponse {
	return CashMovementResponse{
		ID:            m.ID,
		CashSessionID: m.CashSessionID,
		Type:          string(m.Type),
		Amount:        m.Amount,
		Description:   m.Description,
		DocumentID:    m.DocumentID,
		UserID:        m.UserID,
		CreatedAt:     m.CreatedAt,
	}
}

// NewCashSessionDetailResponse sesión más movimientos.
func NewCashSessionDetailResponse(s *entity.CashSession, movements []*entity.CashMovement) CashSessionDetailResponse {
	out := CashSessionDetailResponse{
		Session:   NewCashSessionResponse(s),
		Movements: make([]CashMovementResponse, 0, len(movements)),
	}
	for _, m := range movements {
		out.Movements = append(out.Movements, NewCashMovementResponse(m))
	}
	return out
}

// NewReconciliationResponse mapea el arqueo.
func NewReconciliationResponse(r cash.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		ExpectedCash: r.Expected,
		CountedCash:  r.Counted,
		Difference:   r.Difference,
		Adjust:       r.Adjust,
	}
}
