package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
)

// ReceiptUseCase genera el comprobante PDF de una movimentação.
// Solo se permite para movimentações fechada: antes del cierre el carrito aún puede cambiar.
type ReceiptUseCase struct {
	txRunner  TxRunner
	generator ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(txRunner TxRunner, generator ReceiptGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{txRunner: txRunner, generator: generator}
}

// Download retorna los bytes del PDF y el nombre de archivo sugerido.
//
// Retorna:
//   - domain.ErrNotFound      si la movimentação no existe.
//   - domain.ErrOwnership     si pertenece a otro comercio.
//   - domain.ErrInvalidState  si la movimentação no está fechada.
func (uc *ReceiptUseCase) Download(ctx context.Context, tenantID, movementID int64) (pdfBytes []byte, filename string, err error) {
	var (
		mov   *entity.Movement
		lines []ReceiptLine
	)
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		mov, err = ownedMovement(ctx, r.Movements, tenantID, movementID)
		if err != nil {
			return err
		}
		if mov.State != entity.MovementStateFechada {
			return fmt.Errorf("%w: la movimentação %d está %s, el comprobante requiere fechada",
				domain.ErrInvalidState, mov.ID, mov.State)
		}
		items, err := r.Carts.ListItems(ctx, mov.CartID)
		if err != nil {
			return err
		}
		lines = make([]ReceiptLine, 0, len(items))
		for _, it := range items {
			p, err := r.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			name := fmt.Sprintf("Producto %d", it.ProductID)
			if p != nil {
				name = p.Name
			}
			lines = append(lines, ReceiptLine{
				ProductID:       it.ProductID,
				ProductName:     name,
				Quantity:        it.Quantity,
				UnitPrice:       it.UnitPrice,
				DiscountPercent: it.DiscountPercent,
				Subtotal:        it.Subtotal,
			})
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	pdfBytes, err = uc.generator.GenerateMovementReceipt(ctx, mov, lines)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("movimentacao_%s_%d.pdf", mov.Type, mov.Code)
	return pdfBytes, filename, nil
}
