package document_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billar-api/internal/application/document"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
	"github.com/jhoicas/billar-api/internal/infrastructure/memory"
)

type fakePDF struct{ calls int }

func (f *fakePDF) GenerateSaleNotePDF(_ context.Context, doc *entity.Document, name string) ([]byte, error) {
	f.calls++
	return []byte("%PDF " + name + " " + doc.FullNumber()), nil
}

func emit(t *testing.T, store *memory.Store, em *document.Emitter, fail bool) (*entity.Document, error) {
	t.Helper()
	var doc *entity.Document
	err := store.Run(context.Background(), func(r repository.Repos) error {
		n, err := em.AllocateInTx(context.Background(), r, entity.DocumentTypeSaleNote, "NV01")
		if err != nil {
			return err
		}
		doc = &entity.Document{
			Type: entity.DocumentTypeSaleNote, Series: "NV01", Number: n,
			IssueDate: time.Now(), Currency: "PEN", Total: decimal.NewFromInt(10),
			PaymentMethod: entity.PaymentCash, Status: entity.DocumentIssued,
			Details: []entity.DocumentDetail{{Description: "Consumo", Quantity: decimal.NewFromInt(1)}},
		}
		if err := em.CreateWithDetailsInTx(context.Background(), r, doc); err != nil {
			return err
		}
		if fail {
			return errors.New("falla posterior")
		}
		return nil
	})
	return doc, err
}

func TestEmitter_NumeracionContiguaSinHuecos(t *testing.T) {
	store := memory.NewStore()
	em := document.NewEmitter(store, nil, "Billar")

	d1, err := emit(t, store, em, false)
	require.NoError(t, err)
	_, err = emit(t, store, em, true)
	require.Error(t, err)
	d2, err := emit(t, store, em, false)
	require.NoError(t, err)

	assert.Equal(t, int64(1), d1.Number)
	assert.Equal(t, int64(2), d2.Number, "el rollback no consume número")
	assert.Equal(t, "NV01-00000002", d2.FullNumber())
	assert.Len(t, store.Documents(), 2)
	assert.Equal(t, 1, d2.Details[0].LineNo)
	assert.Equal(t, d2.ID, d2.Details[0].DocumentID)
}

func TestEmitter_ConcurrenciaNumerosDistintos(t *testing.T) {
	store := memory.NewStore()
	em := document.NewEmitter(store, nil, "Billar")

	const n = 20
	var wg sync.WaitGroup
	nums := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := emit(t, store, em, false)
			if err == nil {
				nums <- d.Number
			}
		}()
	}
	wg.Wait()
	close(nums)

	seen := map[int64]bool{}
	for num := range nums {
		assert.False(t, seen[num], "número repetido %d", num)
		seen[num] = true
	}
	require.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "falta el número %d", i)
	}
}

func TestEmitter_GetListYPDF(t *testing.T) {
	store := memory.NewStore()
	gen := &fakePDF{}
	em := document.NewEmitter(store, gen, "Billar Centro")
	d, err := emit(t, store, em, false)
	require.NoError(t, err)

	got, err := em.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Number, got.Number)

	_, err = em.Get(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, total, err := em.List(context.Background(), repository.DocumentQuery{Series: "NV01"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	pdf, _, err := em.RenderPDF(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Contains(t, string(pdf), "NV01-00000001")
	assert.Equal(t, 1, gen.calls)
}
