package repository

import (
	"context"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// KardexRepository ledger append-only: no hay Update ni Delete.
type KardexRepository interface {
	Create(ctx context.Context, entry *entity.KardexEntry) error
	List(ctx context.Context, q KardexQuery) ([]*entity.KardexEntry, int, error)
}
