package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/billar-api/internal/domain"
)

// Códigos SQLSTATE que se tratan como contención reintentable.
const (
	codeUniqueViolation      = "23505"
	codeLockNotAvailable     = "55P03"
	codeDeadlockDetected     = "40P01"
	codeSerializationFailure = "40001"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isNoRows indica fila inexistente.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// mapError traduce timeout de lock, deadlock y fallas de serialización a domain.ErrBusy.
// Los errores de dominio pasan sin cambios.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeDeadlockDetected, codeSerializationFailure:
			return fmt.Errorf("%w (%s): %s", domain.ErrBusy, pgErr.Code, pgErr.Message)
		}
	}
	return err
}

// nullIfEmpty NULL para strings vacíos (columnas uuid opcionales).
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// deref string vacío si p es nil.
func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
