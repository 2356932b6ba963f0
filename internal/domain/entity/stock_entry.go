package entity

import "time"

// StockEntry registro de un cambio de stock aplicado al cerrar una movimentação.
// Delta positivo en entradas, negativo en salidas.
type StockEntry struct {
	ID            int64
	TransactionID string
	TenantID      int64
	MovementID    int64
	ProductID     int64
	Delta         int64
	StockAfter    int64
	CreatedAt     time.Time
}
