package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo de un comercio. El libro de movimientos solo lee Price
// (para la foto del carrito) y modifica StockQuantity al cerrar una movimentación.
type Product struct {
	ID            int64
	TenantID      int64
	Name          string
	Price         decimal.Decimal // precio de venta vigente
	StockQuantity int64           // nunca negativo
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
