package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrOwnership           = errors.New("el recurso pertenece a otro comercio")
	ErrInvalidState        = errors.New("transición de estado inválida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrEmptyCart           = errors.New("el carrito está vacío")
	ErrAllocationExhausted = errors.New("no fue posible generar un link único")
	ErrLockTimeout         = errors.New("tiempo de espera de bloqueo agotado")
)

// InsufficientStockError identifica el producto que no alcanza para una salida.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ProductID int64
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %d: disponible %d, solicitado %d (faltan %d)",
		e.ProductID, e.Available, e.Requested, e.Deficit())
}

// Deficit cantidad faltante para cubrir la salida.
func (e *InsufficientStockError) Deficit() int64 {
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsRetryable indica si el llamador puede repetir la operación completa sin cambiar la entrada.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout) || errors.Is(err, ErrAllocationExhausted)
}
