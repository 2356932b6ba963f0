package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/repository"
)

// SequenceAllocator emite consecutivos por (comercio, scope) sin huecos ni repetidos.
type SequenceAllocator struct {
	txRunner TxRunner
}

// NewSequenceAllocator construye el asignador.
func NewSequenceAllocator(txRunner TxRunner) *SequenceAllocator {
	return &SequenceAllocator{txRunner: txRunner}
}

// Allocate devuelve el valor anterior + step (o step si el scope nunca se usó).
func (a *SequenceAllocator) Allocate(ctx context.Context, tenantID int64, scope string, step int64) (int64, error) {
	var value int64
	err := a.txRunner.Run(ctx, func(r Repos) error {
		var err error
		value, err = nextCode(ctx, r.Sequences, tenantID, scope, step)
		return err
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

func nextCode(ctx context.Context, seq repository.SequenceRepository, tenantID int64, scope string, step int64) (int64, error) {
	if step <= 0 {
		return 0, fmt.Errorf("%w: step debe ser positivo", domain.ErrInvalidInput)
	}
	if !entity.IsValidScope(scope) {
		return 0, fmt.Errorf("%w: scope %q", domain.ErrInvalidInput, scope)
	}
	v, err := seq.Next(ctx, tenantID, scope, step)
	if err != nil {
		return 0, fmt.Errorf("asignar consecutivo %s: %w", scope, err)
	}
	return v, nil
}
