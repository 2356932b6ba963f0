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

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo carritos y sus ítems (carts, cart_items).
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

const cartItemColumns = `id, cart_id, tenant_id, product_id, quantity, unit_price, discount_percent, subtotal, created_at, updated_at`

func scanCartItem(row pgx.Row) (*entity.CartItem, error) {
	var it entity.CartItem
	err := row.Scan(&it.ID, &it.CartID, &it.TenantID, &it.ProductID, &it.Quantity,
		&it.UnitPrice, &it.DiscountPercent, &it.Subtotal, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserta un carrito vacío.
func (r *CartRepo) Create(ctx context.Context, c *entity.Cart) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO carts (tenant_id, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`,
		c.TenantID, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return translateError("create cart", err)
	}
	return nil
}

// Delete elimina el carrito; cart_items cae por ON DELETE CASCADE.
func (r *CartRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id); err != nil {
		return translateError("delete cart", err)
	}
	return nil
}

func (r *CartRepo) getItem(ctx context.Context, op, where string, args ...any) (*entity.CartItem, error) {
	it, err := scanCartItem(r.q.QueryRow(ctx, `SELECT `+cartItemColumns+` FROM cart_items WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError(op, err)
	}
	return it, nil
}

// GetItem obtiene un ítem por ID.
func (r *CartRepo) GetItem(ctx context.Context, itemID int64) (*entity.CartItem, error) {
	return r.getItem(ctx, "get cart item", "id = $1", itemID)
}

// GetItemByProduct obtiene el ítem de un producto dentro del carrito.
func (r *CartRepo) GetItemByProduct(ctx context.Context, cartID, productID int64) (*entity.CartItem, error) {
	return r.getItem(ctx, "get cart item by product", "cart_id = $1 AND product_id = $2", cartID, productID)
}

// CreateItem inserta un ítem; (cart_id, product_id) repetido devuelve domain.ErrDuplicate.
func (r *CartRepo) CreateItem(ctx context.Context, it *entity.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, tenant_id, product_id, quantity, unit_price, discount_percent, subtotal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		it.CartID, it.TenantID, it.ProductID, it.Quantity, it.UnitPrice, it.DiscountPercent,
		it.Subtotal, it.CreatedAt, it.UpdatedAt,
	).Scan(&it.ID)
	if err != nil {
		return translateError("create cart item", err)
	}
	return nil
}

// UpdateItem reescribe cantidad, precio, descuento y subtotal.
func (r *CartRepo) UpdateItem(ctx context.Context, it *entity.CartItem) error {
	query := `
		UPDATE cart_items
		SET quantity = $2, unit_price = $3, discount_percent = $4, subtotal = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, it.ID, it.Quantity, it.UnitPrice, it.DiscountPercent, it.Subtotal, it.UpdatedAt)
	if err != nil {
		return translateError("update cart item", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ítem %d", domain.ErrNotFound, it.ID)
	}
	return nil
}

// DeleteItem elimina un ítem.
func (r *CartRepo) DeleteItem(ctx context.Context, itemID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID); err != nil {
		return translateError("delete cart item", err)
	}
	return nil
}

// DeleteItems vacía el carrito.
func (r *CartRepo) DeleteItems(ctx context.Context, cartID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return translateError("delete cart items", err)
	}
	return nil
}

// ListItems lista los ítems por ID ascendente.
func (r *CartRepo) ListItems(ctx context.Context, cartID int64) ([]*entity.CartItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+cartItemColumns+` FROM cart_items WHERE cart_id = $1 ORDER BY id`, cartID)
	if err != nil {
		return nil, translateError("list cart items", err)
	}
	defer rows.Close()

	list := make([]*entity.CartItem, 0)
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, translateError("scan cart item", err)
		}
		list = append(list, it)
	}
	return list, translateError("list cart items", rows.Err())
}
