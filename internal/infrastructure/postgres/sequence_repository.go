package postgres

import (
	"context"

	"github.com/jhoicas/Movimientos-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores por (comercio, scope) sobre sequence_counters.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next inserta o incrementa en una sola sentencia: el UPDATE del ON CONFLICT toma el bloqueo
// de la fila, así que dos llamadas concurrentes nunca leen el mismo last_value.
func (r *SequenceRepo) Next(ctx context.Context, tenantID int64, scope string, step int64) (int64, error) {
	query := `
		INSERT INTO sequence_counters (tenant_id, scope, last_value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (tenant_id, scope)
		DO UPDATE SET last_value = sequence_counters.last_value + EXCLUDED.last_value, updated_at = now()
		RETURNING last_value`
	var v int64
	if err := r.q.QueryRow(ctx, query, tenantID, scope, step).Scan(&v); err != nil {
		return 0, translateError("next sequence", err)
	}
	return v, nil
}
