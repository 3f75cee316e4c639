package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Querier operaciones comunes a *pgxpool.Pool y pgx.Tx; los repositorios aceptan cualquiera.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Códigos SQLSTATE que el libro trata de forma especial.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// mapError traduce errores del driver a errores de dominio. Los bloqueos que vencen,
// los interbloqueos y la cancelación del contexto se informan como conflicto reintentable.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.Conflict(fmt.Errorf("%s: %w", op, err))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
			return domain.Conflict(fmt.Errorf("%s: %w", op, err))
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrDuplicate, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return domain.InvalidArgument("referencia inexistente (%s)", pgErr.ConstraintName)
		case codeCheckViolation:
			return domain.InvalidState("restricción %s violada", pgErr.ConstraintName)
		case codeNumericOutOfRange:
			return domain.InvalidArgument("%s: valor fuera de rango", op)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// whereBuilder arma cláusulas WHERE con parámetros posicionales. Cada "?" de una
// condición se reemplaza por el mismo $n.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) raw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page agrega LIMIT/OFFSET al final de los argumentos.
func (w *whereBuilder) page(limit, offset int) string {
	w.args = append(w.args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

// errNoRows se usa cuando un UPDATE no encontró la fila.
var errNoRows = pgx.ErrNoRows
