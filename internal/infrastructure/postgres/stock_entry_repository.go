package postgres

import (
	"context"

	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/repository"
)

var _ repository.StockEntryRepository = (*StockEntryRepo)(nil)

// StockEntryRepo historial de cambios de stock (stock_entries).
type StockEntryRepo struct {
	q Querier
}

// NewStockEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockEntryRepository(q Querier) *StockEntryRepo {
	return &StockEntryRepo{q: q}
}

// Create persiste un cambio de stock y completa su ID.
func (r *StockEntryRepo) Create(ctx context.Context, e *entity.StockEntry) error {
	query := `
		INSERT INTO stock_entries (transaction_id, tenant_id, movement_id, product_id, delta, stock_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		e.TransactionID, e.TenantID, e.MovementID, e.ProductID, e.Delta, e.StockAfter, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return translateError("create stock entry", err)
	}
	return nil
}

// ListByMovement lista los cambios de una movimentação por ID ascendente.
func (r *StockEntryRepo) ListByMovement(ctx context.Context, movementID int64) ([]*entity.StockEntry, error) {
	query := `
		SELECT id, transaction_id, tenant_id, movement_id, product_id, delta, stock_after, created_at
		FROM stock_entries WHERE movement_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, movementID)
	if err != nil {
		return nil, translateError("list stock entries", err)
	}
	defer rows.Close()

	list := make([]*entity.StockEntry, 0)
	for rows.Next() {
		var e entity.StockEntry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.TenantID, &e.MovementID, &e.ProductID,
			&e.Delta, &e.StockAfter, &e.CreatedAt); err != nil {
			return nil, translateError("scan stock entry", err)
		}
		list = append(list, &e)
	}
	return list, translateError("list stock entries", rows.Err())
}
