package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimentação (enumeración cerrada).
const (
	MovementTypeEntrada = "entrada" // aumenta stock
	MovementTypeSaida   = "saida"   // disminuye stock
)

// Estados de una movimentação.
const (
	MovementStateAberta    = "aberta"
	MovementStateFechada   = "fechada"
	MovementStateCancelada = "cancelada"
)

// IsValidMovementType indica si t es uno de los dos tipos permitidos.
func IsValidMovementType(t string) bool {
	return t == MovementTypeEntrada || t == MovementTypeSaida
}

// Movement transacción de stock (entrada o salida) ligada a un carrito.
// TotalValue y TotalItems se mantienen incrementalmente al agregar/quitar ítems
// y se recalculan de forma autoritativa al cerrar.
type Movement struct {
	ID         int64
	TenantID   int64
	Type       string
	Code       int64 // consecutivo por (comercio, tipo)
	Link       string
	State      string
	CartID     int64 // 0 cuando el carrito fue descartado (cancelada)
	TotalValue decimal.Decimal
	TotalItems int64
	OpenedAt   time.Time
	ClosedAt   *time.Time
}

// IsOpen indica si la movimentação aún admite cambios.
func (m *Movement) IsOpen() bool {
	return m.State == MovementStateAberta
}
