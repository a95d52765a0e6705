package ports

import "context"

// BlobStore almacenamiento de archivos públicos (portadas de mesa).
type BlobStore interface {
	// Put guarda data en path y devuelve la URL pública.
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}
