package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Movimientos-api/internal/application/dto"
	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// AddItem agrega un producto al carrito de la movimentação. Si el producto ya está en el carrito
// se suma la cantidad, se refresca el precio y el descuento (si viene) reemplaza al anterior.
// La fila de la movimentação queda bloqueada durante la escritura del ítem y de los agregados.
func (uc *MovementUseCase) AddItem(ctx context.Context, tenantID, movementID int64, in dto.AddItemRequest) (out *dto.CartView, err error) {
	ctx, span := startSpan(ctx, uc.tracer, "ledger.AddItem",
		attribute.Int64("tenant.id", tenantID),
		attribute.Int64("movement.id", movementID),
		attribute.Int64("product.id", in.ProductID))
	defer func() { endSpan(span, err) }()

	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity debe ser mayor a 0", domain.ErrInvalidInput)
	}
	if in.DiscountPercent != nil && !ledger.ValidDiscount(*in.DiscountPercent) {
		return nil, fmt.Errorf("%w: discount_percent debe estar en [0, 100) con hasta %d decimales", domain.ErrInvalidInput, ledger.DiscountPlaces)
	}

	err = uc.txRunner.Run(ctx, func(r Repos) error {
		mov, err := lockOwnedMovement(ctx, r.Movements, tenantID, movementID)
		if err != nil {
			return err
		}
		if err := ledger.EnsureOpen(mov); err != nil {
			return err
		}
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, in.ProductID)
		}
		if product.TenantID != tenantID {
			return fmt.Errorf("%w: producto %d", domain.ErrOwnership, in.ProductID)
		}

		now := uc.now()
		oldSubtotal := decimal.Zero
		item, err := r.Carts.GetItemByProduct(ctx, mov.CartID, product.ID)
		if err != nil {
			return err
		}
		if item != nil {
			oldSubtotal = item.Subtotal
			item.Quantity += in.Quantity
			item.UnitPrice = product.Price
			if in.DiscountPercent != nil {
				item.DiscountPercent = *in.DiscountPercent
			}
			item.Subtotal = ledger.SubtotalCalculator(item.UnitPrice, item.Quantity, item.DiscountPercent)
			item.UpdatedAt = now
			if err := r.Carts.UpdateItem(ctx, item); err != nil {
				return err
			}
		} else {
			discount := decimal.Zero
			if in.DiscountPercent != nil {
				discount = *in.DiscountPercent
			}
			item = &entity.CartItem{
				CartID:          mov.CartID,
				TenantID:        tenantID,
				ProductID:       product.ID,
				Quantity:        in.Quantity,
				UnitPrice:       product.Price,
				DiscountPercent: discount,
				Subtotal:        ledger.SubtotalCalculator(product.Price, in.Quantity, discount),
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := r.Carts.CreateItem(ctx, item); err != nil {
				return err
			}
		}

		mov.TotalValue = ledger.ClampZero(mov.TotalValue.Sub(oldSubtotal).Add(item.Subtotal))
		mov.TotalItems += in.Quantity
		if err := r.Movements.Update(ctx, mov); err != nil {
			return err
		}
		out, err = buildCartView(ctx, r, mov)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveItem elimina una línea del carrito y descuenta su subtotal y cantidad de los agregados,
// sin dejarlos negativos.
func (uc *MovementUseCase) RemoveItem(ctx context.Context, tenantID, movementID, itemID int64) (out *dto.CartView, err error) {
	ctx, span := startSpan(ctx, uc.tracer, "ledger.RemoveItem",
		attribute.Int64("tenant.id", tenantID),
		attribute.Int64("movement.id", movementID),
		attribute.Int64("item.id", itemID))
	defer func() { endSpan(span, err) }()

	err = uc.txRunner.Run(ctx, func(r Repos) error {
		mov, err := lockOwnedMovement(ctx, r.Movements, tenantID, movementID)
		if err != nil {
			return err
		}
		if err := ledger.EnsureOpen(mov); err != nil {
			return err
		}
		item, err := r.Carts.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil || item.CartID != mov.CartID {
			return fmt.Errorf("%w: ítem %d", domain.ErrNotFound, itemID)
		}
		if err := r.Carts.DeleteItem(ctx, item.ID); err != nil {
			return err
		}

		mov.TotalValue = ledger.ClampZero(mov.TotalValue.Sub(item.Subtotal))
		mov.TotalItems -= item.Quantity
		if mov.TotalItems < 0 {
			mov.TotalItems = 0
		}
		if err := r.Movements.Update(ctx, mov); err != nil {
			return err
		}
		out, err = buildCartView(ctx, r, mov)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetCart lectura del carrito con sus agregados corridos.
func (uc *MovementUseCase) GetCart(ctx context.Context, tenantID, movementID int64) (*dto.CartView, error) {
	var out *dto.CartView
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		mov, err := ownedMovement(ctx, r.Movements, tenantID, movementID)
		if err != nil {
			return err
		}
		out, err = buildCartView(ctx, r, mov)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func buildCartView(ctx context.Context, r Repos, mov *entity.Movement) (*dto.CartView, error) {
	view := &dto.CartView{
		MovementID: mov.ID,
		CartID:     mov.CartID,
		Items:      []dto.CartItemView{},
		TotalValue: dto.NewMoney(mov.TotalValue),
		TotalItems: mov.TotalItems,
	}
	if mov.CartID == 0 {
		return view, nil
	}
	items, err := r.Carts.ListItems(ctx, mov.CartID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		view.Items = append(view.Items, toCartItemView(it))
	}
	return view, nil
}
