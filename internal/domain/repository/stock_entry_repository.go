package repository

import (
	"context"

	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
)

// StockEntryRepository historial de cambios de stock aplicados al cerrar movimentações.
type StockEntryRepository interface {
	Create(ctx context.Context, entry *entity.StockEntry) error
	ListByMovement(ctx context.Context, movementID int64) ([]*entity.StockEntry, error)
}
