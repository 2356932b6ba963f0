package ledger

import (
	"fmt"

	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
)

// CanTransition reporta si la movimentação puede pasar de from a to.
// Solo aberta admite salida; fechada y cancelada son terminales.
func CanTransition(from, to string) bool {
	if from != entity.MovementStateAberta {
		return false
	}
	return to == entity.MovementStateFechada || to == entity.MovementStateCancelada
}

// EnsureTransition devuelve domain.ErrInvalidState si la transición no está permitida.
func EnsureTransition(m *entity.Movement, to string) error {
	if !CanTransition(m.State, to) {
		return fmt.Errorf("%w: movimentação %d está %s, no puede pasar a %s", domain.ErrInvalidState, m.ID, m.State, to)
	}
	return nil
}

// EnsureOpen devuelve domain.ErrInvalidState si la movimentação ya no admite cambios en el carrito.
func EnsureOpen(m *entity.Movement) error {
	if !m.IsOpen() {
		return fmt.Errorf("%w: movimentação %d está %s", domain.ErrInvalidState, m.ID, m.State)
	}
	return nil
}
