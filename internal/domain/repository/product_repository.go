package repository

import (
	"context"

	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
)

// ProductRepository puerto de lectura/escritura de stock de productos que requiere el libro.
type ProductRepository interface {
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// LockForUpdate bloquea las filas (SELECT FOR UPDATE) en orden ascendente de ID
	// y las devuelve en ese mismo orden. IDs inexistentes simplemente no aparecen.
	LockForUpdate(ctx context.Context, ids []int64) ([]*entity.Product, error)
	// SetStock escribe la cantidad final; solo se invoca con la fila bloqueada.
	SetStock(ctx context.Context, id int64, quantity int64) error
}
