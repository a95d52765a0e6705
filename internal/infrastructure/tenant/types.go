// Package tenant administra el catálogo de locales y un pool PostgreSQL por cada base de tenant.
package tenant

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Status ciclo de vida del tenant en el catálogo.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)

var (
	ErrTenantNotFound    = errors.New("tenant no encontrado")
	ErrTenantNotActive   = errors.New("tenant inactivo")
	ErrMaxPoolLimit      = errors.New("límite de pools alcanzado")
	ErrInvalidSlug       = errors.New("slug de tenant inválido")
	ErrNoTenantInContext = errors.New("tenant no presente en el contexto")
	ErrNoPoolInContext   = errors.New("pool no presente en el contexto")
)

// Tenant fila del catálogo.
type Tenant struct {
	ID          string    `db:"id"`
	Slug        string    `db:"slug"`
	DisplayName string    `db:"display_name"`
	DBName      string    `db:"db_name"`
	DBHost      string    `db:"db_host"`
	DBPort      int       `db:"db_port"`
	Status      Status    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// IsActive el tenant acepta peticiones.
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// NormalizeSlug pasa a minúsculas y valida el formato.
func NormalizeSlug(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if !slugPattern.MatchString(s) {
		return "", ErrInvalidSlug
	}
	return s, nil
}

// SlugFromHost subdominio más a la izquierda de host cuando pertenece a baseDomain.
// "club-sol.billar.app:8080" con baseDomain "billar.app" devuelve "club-sol".
func SlugFromHost(host, baseDomain string) string {
	if baseDomain == "" {
		return ""
	}
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	host = strings.ToLower(host)
	suffix := "." + strings.ToLower(strings.TrimPrefix(baseDomain, "."))
	if !strings.HasSuffix(host, suffix) {
		return ""
	}
	sub := strings.TrimSuffix(host, suffix)
	if sub == "" || strings.Contains(sub, ".") {
		return ""
	}
	return sub
}
