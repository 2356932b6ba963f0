package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, tenant_id, name, price, stock_quantity, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError("get product", err)
	}
	return p, nil
}

// LockForUpdate bloquea las filas en orden ascendente de ID (ORDER BY + FOR UPDATE).
func (r *ProductRepo) LockForUpdate(ctx context.Context, ids []int64) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return []*entity.Product{}, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, translateError("lock products", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, translateError("scan product", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("lock products", err)
	}
	return list, nil
}

// SetStock escribe la cantidad final del producto.
func (r *ProductRepo) SetStock(ctx context.Context, id int64, quantity int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET stock_quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		return translateError("set stock", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
	}
	return nil
}
