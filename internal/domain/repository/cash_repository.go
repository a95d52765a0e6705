package repository

import (
	"context"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// CashSessionRepository puerto de persistencia para sesiones de caja.
type CashSessionRepository interface {
	Create(ctx context.Context, session *entity.CashSession) error
	GetByID(ctx context.Context, id string) (*entity.CashSession, error)
	GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error)
	// FindOpenByUser devuelve la sesión abierta del usuario; forUpdate bloquea la fila.
	FindOpenByUser(ctx context.Context, userID string, forUpdate bool) (*entity.CashSession, error)
	Update(ctx context.Context, session *entity.CashSession) error
	List(ctx context.Context, q CashSessionQuery) ([]*entity.CashSession, int, error)
}

// CashMovementRepository movimientos append-only.
type CashMovementRepository interface {
	Create(ctx context.Context, movement *entity.CashMovement) error
	ListBySession(ctx context.Context, sessionID string) ([]*entity.CashMovement, error)
}
