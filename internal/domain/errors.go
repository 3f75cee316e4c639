package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidArgument   = errors.New("argumento inválido")
	ErrInvalidState      = errors.New("estado inválido")
	ErrCyclicReference   = errors.New("referencia cíclica")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto de concurrencia, reintente")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrUsernameTaken     = errors.New("el usuario ya está registrado")
)

// InsufficientStockError lleva el saldo actual y la cantidad solicitada para que el
// llamador pueda mostrarlos. errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	Current   int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: actual %d, solicitado %d", e.Current, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidArgument envuelve ErrInvalidArgument con un detalle.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// InvalidState envuelve ErrInvalidState con un detalle.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// Conflict envuelve ErrConflict conservando la causa de almacenamiento.
func Conflict(cause error) error {
	return fmt.Errorf("%w: %w", ErrConflict, cause)
}
