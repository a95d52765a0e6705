package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
	"github.com/jhoicas/billar-api/internal/infrastructure/memory"
)

func TestDocumentList_MismoInstanteOrdenaPorNumero(t *testing.T) {
	store := memory.NewStore()
	at := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	// insertados fuera de orden para que el orden de inserción no decida
	for _, n := range []int64{2, 4, 1, 3} {
		store.PutDocument(entity.Document{
			ID: fmt.Sprintf("d%d", n), Type: entity.DocumentTypeSaleNote, Series: "NV01", Number: n, IssueDate: at,
		})
	}
	store.PutDocument(entity.Document{ID: "d9", Type: entity.DocumentTypeSaleNote, Series: "NV01", Number: 9, IssueDate: at.Add(-time.Hour)})

	var numbers []int64
	err := store.Read(context.Background(), func(r repository.Repos) error {
		list, total, err := r.Documents.List(context.Background(), repository.DocumentQuery{Page: repository.Page{Limit: 3}})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		for _, d := range list {
			numbers = append(numbers, d.Number)
		}
		list, _, err = r.Documents.List(context.Background(), repository.DocumentQuery{Page: repository.Page{Limit: 3, Offset: 3}})
		require.NoError(t, err)
		for _, d := range list {
			numbers = append(numbers, d.Number)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2, 1, 9}, numbers)
}
