package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Movimientos-api/internal/domain"
)

const (
	codeUniqueViolation  = "23505"
	codeLockNotAvailable = "55P03"
	codeDeadlockDetected = "40P01"
	codeCheckViolation   = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isLockTimeout cubre lock_timeout agotado y deadlock: en ambos casos la tx se aborta
// sin efectos y puede repetirse completa.
func isLockTimeout(err error) bool {
	switch pgCode(err) {
	case codeLockNotAvailable, codeDeadlockDetected:
		return true
	}
	return false
}

// translateError convierte códigos de Postgres en errores de dominio; op da contexto al resto.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case isLockTimeout(err):
		return fmt.Errorf("%s: %w", op, domain.ErrLockTimeout)
	case pgCode(err) == codeCheckViolation:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrInvalidInput, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
