package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenMovementRequest body para POST /api/movements.
type OpenMovementRequest struct {
	Type string `json:"type"` // entrada | saida
}

// AddItemRequest body para POST /api/movements/:id/items.
// DiscountPercent nil conserva el descuento previo al fusionar.
type AddItemRequest struct {
	ProductID       int64            `json:"product_id"`
	Quantity        int64            `json:"quantity"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}

// FinalizeRequest body para POST /api/movements/:id/finalize.
type FinalizeRequest struct {
	Type string `json:"type"`
}

// MovementView representación de una movimentação para la capa externa.
type MovementView struct {
	ID         int64      `json:"id"`
	Type       string     `json:"type"`
	Code       int64      `json:"code"`
	Link       string     `json:"link"`
	State      string     `json:"state"`
	TotalValue Money      `json:"total_value"`
	TotalItems int64      `json:"total_items"`
	OpenedAt   time.Time  `json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

// CartItemView línea del carrito.
type CartItemView struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"product_id"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       Money           `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Subtotal        Money           `json:"subtotal"`
}

// CartView carrito con sus agregados corridos.
type CartView struct {
	MovementID int64          `json:"movement_id"`
	CartID     int64          `json:"cart_id,omitempty"`
	Items      []CartItemView `json:"items"`
	TotalValue Money          `json:"total_value"`
	TotalItems int64          `json:"total_items"`
}

// StockEntryView cambio de stock aplicado por una movimentação cerrada.
type StockEntryView struct {
	ProductID     int64     `json:"product_id"`
	TransactionID string    `json:"transaction_id"`
	Delta         int64     `json:"delta"`
	StockAfter    int64     `json:"stock_after"`
	CreatedAt     time.Time `json:"created_at"`
}
