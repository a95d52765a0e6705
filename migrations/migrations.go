// Package migrations contiene el esquema SQL del catálogo de tenants y de cada base de tenant.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed catalog/*.sql tenant/*.sql
var files embed.FS

// Set conjunto de migraciones aplicables a un tipo de base.
type Set string

const (
	Catalog Set = "catalog"
	Tenant  Set = "tenant"
)

// Migration archivo SQL identificado por su nombre (orden lexicográfico).
type Migration struct {
	Version string
	SQL     string
}

// Load devuelve las migraciones del conjunto en orden.
func Load(set Set) ([]Migration, error) {
	names, err := fs.Glob(files, string(set)+"/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]Migration, 0, len(names))
	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: name, SQL: string(body)})
	}
	return out, nil
}
