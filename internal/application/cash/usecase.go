// Package cash casos de uso del turno de caja: apertura, movimientos y arqueo.
package cash

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/cash"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// UseCase ledger de caja por usuario.
type UseCase struct {
	tx    ports.TxRunner
	clock ports.Clock
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx ports.TxRunner, clock ports.Clock) *UseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &UseCase{tx: tx, clock: clock}
}

// MovementRequest movimiento manual. SignedAmount solo aplica a adjust.
type MovementRequest struct {
	Type         entity.CashMovementType
	Amount       decimal.Decimal
	SignedAmount *decimal.Decimal
	Description  string
}

// CloseRequest arqueo de cierre.
type CloseRequest struct {
	CountedCash  decimal.Decimal
	CreateAdjust bool
	Notes        string
}

// SessionView sesión con sus movimientos.
type SessionView struct {
	Session   *entity.CashSession
	Movements []*entity.CashMovement
}

// CloseResult sesión cerrada más el detalle del arqueo.
type CloseResult struct {
	SessionView
	Reconciliation cash.Reconciliation
}

var errAlreadyOpen = domain.NewValidation("", "el usuario ya tiene una caja abierta")

// Open abre una sesión con su movimiento de apertura.
func (uc *UseCase) Open(ctx context.Context, p ports.Principal, openingCash decimal.Decimal, notes string) (*entity.CashSession, error) {
	if openingCash.IsNegative() {
		return nil, domain.NewValidation("opening_cash", "no puede ser negativo")
	}
	now := uc.clock.Now()
	opening := openingCash.Round(2)
	session := &entity.CashSession{
		ID:           uuid.New().String(),
		UserID:       p.UserID,
		OpenedAt:     now,
		OpeningCash:  opening,
		ExpectedCash: opening,
		Status:       entity.CashSessionOpen,
		Notes:        notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		existing, err := r.CashSessions.FindOpenByUser(ctx, p.UserID, true)
		if err != nil {
			return err
		}
		if existing != nil {
			return errAlreadyOpen
		}
		if err := r.CashSessions.Create(ctx, session); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return errAlreadyOpen
			}
			return err
		}
		return r.CashMovements.Create(ctx, &entity.CashMovement{
			ID:            uuid.New().String(),
			CashSessionID: session.ID,
			Type:          entity.CashOpen,
			Amount:        opening,
			Description:   "Apertura de caja",
			UserID:        p.UserID,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// AddMovement agrega un movimiento manual a una sesión abierta.
func (uc *UseCase) AddMovement(ctx context.Context, p ports.Principal, sessionID string, req MovementRequest) (*entity.CashMovement, error) {
	if !req.Type.Valid() {
		return nil, domain.NewValidation("type", "tipo de movimiento inválido")
	}
	if req.Type == entity.CashOpen {
		return nil, domain.NewValidation("type", "la apertura no se registra manualmente")
	}
	if req.Type != entity.CashAdjust && req.Amount.IsNegative() {
		return nil, domain.NewValidation("amount", "no puede ser negativo")
	}
	amount := cash.NormalizeAmount(req.Type, req.Amount, req.SignedAmount)
	if amount.IsZero() {
		return nil, domain.NewValidation("amount", "debe ser distinto de cero")
	}

	var mov *entity.CashMovement
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		session, err := lockOpenSession(ctx, r, p, sessionID)
		if err != nil {
			return err
		}
		mov = &entity.CashMovement{
			ID:            uuid.New().String(),
			CashSessionID: session.ID,
			Type:          req.Type,
			Amount:        amount,
			Description:   req.Description,
			UserID:        p.UserID,
			CreatedAt:     uc.clock.Now(),
		}
		return appendMovement(ctx, r, session, mov)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// RecordSaleInTx registra el cobro de un documento en la sesión abierta del principal,
// dentro de la transacción del caller. Sin sesión abierta falla con ValidationError.
func (uc *UseCase) RecordSaleInTx(ctx context.Context, r repository.Repos, p ports.Principal, doc *entity.Document, description string) (*entity.CashMovement, error) {
	session, err := r.CashSessions.FindOpenByUser(ctx, p.UserID, true)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.NewValidation("", "no hay caja abierta")
	}
	docID := doc.ID
	mov := &entity.CashMovement{
		ID:            uuid.New().String(),
		CashSessionID: session.ID,
		Type:          entity.CashSale,
		Amount:        doc.Total.Round(2),
		Description:   description,
		DocumentID:    &docID,
		UserID:        p.UserID,
		CreatedAt:     uc.clock.Now(),
	}
	if err := appendMovement(ctx, r, session, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// OpenSessionInTx sesión abierta del principal bloqueada; nil si no hay.
func (uc *UseCase) OpenSessionInTx(ctx context.Context, r repository.Repos, p ports.Principal) (*entity.CashSession, error) {
	return r.CashSessions.FindOpenByUser(ctx, p.UserID, true)
}

// Close arquea y cierra la sesión. Con createAdjust y diferencia > 0.009 agrega un adjust de -diferencia.
func (uc *UseCase) Close(ctx context.Context, p ports.Principal, sessionID string, req CloseRequest) (*CloseResult, error) {
	if req.CountedCash.IsNegative() {
		return nil, domain.NewValidation("counted_cash", "no puede ser negativo")
	}
	var out *CloseResult
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		session, err := lockOpenSession(ctx, r, p, sessionID)
		if err != nil {
			return err
		}
		movs, err := r.CashMovements.ListBySession(ctx, session.ID)
		if err != nil {
			return err
		}
		rec := cash.Reconcile(movs, req.CountedCash, req.CreateAdjust)
		now := uc.clock.Now()
		if rec.NeedsAdjust() {
			adj := &entity.CashMovement{
				ID:            uuid.New().String(),
				CashSessionID: session.ID,
				Type:          entity.CashAdjust,
				Amount:        rec.Adjust,
				Description:   "Ajuste de arqueo",
				UserID:        p.UserID,
				CreatedAt:     now,
			}
			if err := r.CashMovements.Create(ctx, adj); err != nil {
				return err
			}
			movs = append(movs, adj)
		}
		counted := rec.Counted
		diff := rec.Difference
		session.ExpectedCash = rec.Expected
		session.CountedCash = &counted
		session.Difference = &diff
		session.Status = entity.CashSessionClosed
		session.ClosedAt = &now
		session.UpdatedAt = now
		if req.Notes != "" {
			session.Notes = req.Notes
		}
		if err := r.CashSessions.Update(ctx, session); err != nil {
			return err
		}
		out = &CloseResult{SessionView: SessionView{Session: session, Movements: movs}, Reconciliation: rec}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Current sesión abierta del principal con el esperado acumulado.
func (uc *UseCase) Current(ctx context.Context, p ports.Principal) (*SessionView, error) {
	var out *SessionView
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		session, err := r.CashSessions.FindOpenByUser(ctx, p.UserID, false)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.NewNotFound("caja abierta del usuario", p.UserID)
		}
		out, err = view(ctx, r, session)
		return err
	})
	return out, err
}

// Get sesión por id con sus movimientos.
func (uc *UseCase) Get(ctx context.Context, p ports.Principal, id string) (*SessionView, error) {
	var out *SessionView
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		session, err := r.CashSessions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.NewNotFound("sesión de caja", id)
		}
		if err := checkOwner(p, session); err != nil {
			return err
		}
		out, err = view(ctx, r, session)
		return err
	})
	return out, err
}

// List sesiones filtradas. Un cajero solo ve las suyas.
func (uc *UseCase) List(ctx context.Context, p ports.Principal, q repository.CashSessionQuery) ([]*entity.CashSession, int, error) {
	if p.Role != entity.RoleAdmin {
		q.UserID = p.UserID
	}
	var (
		list  []*entity.CashSession
		total int
	)
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		list, total, err = r.CashSessions.List(ctx, q)
		return err
	})
	return list, total, err
}

// Movements movimientos de una sesión en orden de registro.
func (uc *UseCase) Movements(ctx context.Context, p ports.Principal, sessionID string) ([]*entity.CashMovement, error) {
	v, err := uc.Get(ctx, p, sessionID)
	if err != nil {
		return nil, err
	}
	return v.Movements, nil
}

func lockOpenSession(ctx context.Context, r repository.Repos, p ports.Principal, id string) (*entity.CashSession, error) {
	session, err := r.CashSessions.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.NewNotFound("sesión de caja", id)
	}
	if err := checkOwner(p, session); err != nil {
		return nil, err
	}
	if session.Status != entity.CashSessionOpen {
		return nil, domain.NewConflict("la sesión de caja %s ya está cerrada", id)
	}
	return session, nil
}

func checkOwner(p ports.Principal, session *entity.CashSession) error {
	if p.Role != entity.RoleAdmin && session.UserID != p.UserID {
		return domain.ErrForbidden
	}
	return nil
}

func appendMovement(ctx context.Context, r repository.Repos, session *entity.CashSession, mov *entity.CashMovement) error {
	if err := r.CashMovements.Create(ctx, mov); err != nil {
		return err
	}
	session.ExpectedCash = session.ExpectedCash.Add(mov.Amount).Round(2)
	session.UpdatedAt = mov.CreatedAt
	return r.CashSessions.Update(ctx, session)
}

func view(ctx context.Context, r repository.Repos, session *entity.CashSession) (*SessionView, error) {
	movs, err := r.CashMovements.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	session.ExpectedCash = cash.Expected(movs)
	return &SessionView{Session: session, Movements: movs}, nil
}
