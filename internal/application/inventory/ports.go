package inventory

import (
	"context"

	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Movements    repository.MovementRepository
	Carts        repository.CartRepository
	Products     repository.ProductRepository
	Sequences    repository.SequenceRepository
	StockEntries repository.StockEntryRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback; si no, Commit. Un bloqueo que no se obtiene dentro del
// tiempo configurado retorna domain.ErrLockTimeout sin aplicar cambios.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}

// LinkGenerator produce el token público de una movimentação.
type LinkGenerator interface {
	Generate() (string, error)
}

// ReceiptLine línea del comprobante de una movimentação cerrada.
type ReceiptLine struct {
	ProductID       int64
	ProductName     string
	Quantity        int64
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	Subtotal        decimal.Decimal
}

// ReceiptGenerator genera la representación PDF de una movimentação cerrada.
type ReceiptGenerator interface {
	GenerateMovementReceipt(ctx context.Context, movement *entity.Movement, lines []ReceiptLine) ([]byte, error)
}
