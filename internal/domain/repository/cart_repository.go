package repository

import (
	"context"

	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
)

// CartRepository persistencia de carritos y sus ítems.
type CartRepository interface {
	Create(ctx context.Context, cart *entity.Cart) error
	Delete(ctx context.Context, id int64) error

	GetItem(ctx context.Context, itemID int64) (*entity.CartItem, error)
	GetItemByProduct(ctx context.Context, cartID, productID int64) (*entity.CartItem, error)
	CreateItem(ctx context.Context, item *entity.CartItem) error
	UpdateItem(ctx context.Context, item *entity.CartItem) error
	DeleteItem(ctx context.Context, itemID int64) error
	DeleteItems(ctx context.Context, cartID int64) error
	// ListItems ordena por ID ascendente.
	ListItems(ctx context.Context, cartID int64) ([]*entity.CartItem, error)
}
