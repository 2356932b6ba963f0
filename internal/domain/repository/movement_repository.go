package repository

import (
	"context"

	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
)

// MovementFilter filtros de listado.
type MovementFilter struct {
	TenantID int64
	State    string // vacío = todos
	Limit    int
	Offset   int
}

// MovementRepository persistencia de movimentações.
type MovementRepository interface {
	// Create devuelve domain.ErrDuplicate si el link (o el código) ya existe.
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error)
	GetByLink(ctx context.Context, link string) (*entity.Movement, error)
	// Update escribe estado, carrito, totales y fecha de cierre.
	Update(ctx context.Context, movement *entity.Movement) error
	// List ordena por ID ascendente.
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
}
