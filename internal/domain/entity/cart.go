package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart área de preparación de una movimentación aún no cerrada.
type Cart struct {
	ID        int64
	TenantID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem línea del carrito; (CartID, ProductID) es único.
// UnitPrice es una foto del precio del producto al momento de agregar/fusionar.
type CartItem struct {
	ID              int64
	CartID          int64
	TenantID        int64
	ProductID       int64
	Quantity        int64
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal // [0, 100)
	Subtotal        decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
