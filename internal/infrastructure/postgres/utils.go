package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isUniqueViolationOn verifica si un error es una violación 23505 del
// constraint o índice único indicado.
func isUniqueViolationOn(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}

// isLockTimeout verifica si un error corresponde a lock_timeout (55P03).
// El asignador lo traduce a contención retryable para el caller.
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "55P03" // lock_not_available
	}
	return false
}

// nullIfEmpty devuelve nil para strings vacíos (columnas NULLeables).
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// pgxScanner abstrae pgx.Row y pgx.Rows para reutilizar las funciones de scan.
type pgxScanner interface {
	Scan(dest ...any) error
}
