// Package storage guarda archivos públicos (portadas de mesa) en disco local.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
)

var _ ports.BlobStore = (*LocalBlobStore)(nil)

// LocalBlobStore escribe bajo root/<tenant>/ y publica bajo baseURL.
type LocalBlobStore struct {
	root    string
	baseURL string
	prefix  func(ctx context.Context) string
}

// NewLocalBlobStore crea el directorio raíz. prefix devuelve el subdirectorio del tenant (puede ser nil).
func NewLocalBlobStore(root, baseURL string, prefix func(ctx context.Context) string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", root, err)
	}
	return &LocalBlobStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/"), prefix: prefix}, nil
}

// resolve ruta relativa limpia (con el prefijo del tenant) o error si escapa de root.
func (s *LocalBlobStore) resolve(ctx context.Context, p string) (string, error) {
	rel := path.Clean("/" + p)[1:]
	if rel == "" || rel == "." {
		return "", domain.NewValidation("path", "ruta vacía")
	}
	if strings.Contains(p, "..") {
		return "", domain.NewValidation("path", "ruta inválida")
	}
	if s.prefix != nil {
		if pre := s.prefix(ctx); pre != "" {
			rel = pre + "/" + rel
		}
	}
	return rel, nil
}

// Put escribe de forma atómica (archivo temporal + rename) y devuelve la URL pública.
func (s *LocalBlobStore) Put(ctx context.Context, p string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel, err := s.resolve(ctx, p)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: escribir: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: %w", err)
	}
	return s.baseURL + "/" + rel, nil
}

// Delete borra el archivo; inexistente no es error.
func (s *LocalBlobStore) Delete(ctx context.Context, p string) error {
	rel, err := s.resolve(ctx, p)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: borrar: %w", err)
	}
	return nil
}
