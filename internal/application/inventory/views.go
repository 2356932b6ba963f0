package inventory

import (
	"github.com/jhoicas/Movimientos-api/internal/application/dto"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
)

func toMovementView(m *entity.Movement) *dto.MovementView {
	return &dto.MovementView{
		ID:         m.ID,
		Type:       m.Type,
		Code:       m.Code,
		Link:       m.Link,
		State:      m.State,
		TotalValue: dto.NewMoney(m.TotalValue),
		TotalItems: m.TotalItems,
		OpenedAt:   m.OpenedAt,
		ClosedAt:   m.ClosedAt,
	}
}

func toCartItemView(it *entity.CartItem) dto.CartItemView {
	return dto.CartItemView{
		ID:              it.ID,
		ProductID:       it.ProductID,
		Quantity:        it.Quantity,
		UnitPrice:       dto.NewMoney(it.UnitPrice),
		DiscountPercent: it.DiscountPercent,
		Subtotal:        dto.NewMoney(it.Subtotal),
	}
}
