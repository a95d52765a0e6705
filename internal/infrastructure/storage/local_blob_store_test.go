package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billar-api/internal/domain"
)

func TestLocalBlobStore_PutYDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalBlobStore(root, "/public/", func(context.Context) string { return "club-sol" })
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "tables/t1/cover-a.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/public/club-sol/tables/t1/cover-a.png", url)

	data, err := os.ReadFile(filepath.Join(root, "club-sol", "tables", "t1", "cover-a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, s.Delete(context.Background(), "tables/t1/cover-a.png"))
	_, err = os.Stat(filepath.Join(root, "club-sol", "tables", "t1", "cover-a.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(context.Background(), "tables/t1/cover-a.png"))
}

func TestLocalBlobStore_RechazaRutasFueraDeRaiz(t *testing.T) {
	s, err := NewLocalBlobStore(t.TempDir(), "/public", nil)
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../fuera.txt", []byte("x"), "text/plain")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = s.Put(context.Background(), "", []byte("x"), "text/plain")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLocalBlobStore_ContextoCancelado(t *testing.T) {
	s, err := NewLocalBlobStore(t.TempDir(), "/public", nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Put(ctx, "a.png", []byte("x"), "image/png")
	assert.ErrorIs(t, err, context.Canceled)
}
