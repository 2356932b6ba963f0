package ledger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/ledger"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, ledger.CanTransition(entity.MovementStateAberta, entity.MovementStateFechada))
	assert.True(t, ledger.CanTransition(entity.MovementStateAberta, entity.MovementStateCancelada))
	assert.False(t, ledger.CanTransition(entity.MovementStateAberta, entity.MovementStateAberta))

	for _, terminal := range []string{entity.MovementStateFechada, entity.MovementStateCancelada} {
		for _, to := range []string{entity.MovementStateAberta, entity.MovementStateFechada, entity.MovementStateCancelada} {
			assert.False(t, ledger.CanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
}

func TestEnsureTransition_DesdeTerminal(t *testing.T) {
	m := &entity.Movement{ID: 9, State: entity.MovementStateFechada}
	err := ledger.EnsureTransition(m, entity.MovementStateCancelada)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	assert.ErrorIs(t, ledger.EnsureOpen(m), domain.ErrInvalidState)
}
