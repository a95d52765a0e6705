package memory

import (
	"time"

	"github.com/jhoicas/billar-api/internal/domain/repository"
)

func paginate[T any](all []T, p repository.Page) ([]T, int) {
	p = p.Normalize()
	total := len(all)
	if p.Offset >= total {
		return []T{}, total
	}
	end := p.Offset + p.Limit
	if end > total {
		end = total
	}
	return all[p.Offset:end], total
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
