package repository

import "context"

// SequenceRepository contadores locales por (comercio, scope).
type SequenceRepository interface {
	// Next incrementa el contador en step de forma indivisible y devuelve el nuevo valor.
	// Crea la fila con 0 si aún no existe.
	Next(ctx context.Context, tenantID int64, scope string, step int64) (int64, error)
}
