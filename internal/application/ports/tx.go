package ports

import (
	"context"

	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// TxRunner da acceso a los repositorios del tenant del contexto.
// Run ejecuta fn en una transacción: Commit si fn devuelve nil, Rollback en otro caso.
// Read ejecuta fn sin transacción (lecturas).
type TxRunner interface {
	Run(ctx context.Context, fn func(r repository.Repos) error) error
	Read(ctx context.Context, fn func(r repository.Repos) error) error
}
