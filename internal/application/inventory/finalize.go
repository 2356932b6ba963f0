package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jhoicas/Movimientos-api/internal/application/dto"
	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// Finalize cierra la movimentação aplicando su efecto en stock, todo en una transacción:
//  1. bloquea la movimentação;
//  2. carga los ítems del carrito (vacío => ErrEmptyCart);
//  3. bloquea los productos en orden ascendente de ID;
//  4. en saida verifica stock suficiente para cada producto;
//  5. aplica los deltas y registra un StockEntry por producto;
//  6. recalcula total y cantidad desde los ítems;
//  7. pasa a fechada con fecha de cierre.
//
// Cualquier error revierte la transacción completa.
func (uc *MovementUseCase) Finalize(ctx context.Context, tenantID, movementID int64, movementType string) (out *dto.MovementView, err error) {
	txID := uuid.NewString()
	ctx, span := startSpan(ctx, uc.tracer, "ledger.Finalize",
		attribute.Int64("tenant.id", tenantID),
		attribute.Int64("movement.id", movementID),
		attribute.String("movement.type", movementType),
		attribute.String("ledger.transaction_id", txID))
	defer func() { endSpan(span, err) }()

	if !entity.IsValidMovementType(movementType) {
		return nil, fmt.Errorf("%w: tipo %q (use entrada o saida)", domain.ErrInvalidInput, movementType)
	}

	var mov *entity.Movement
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		var txErr error
		mov, txErr = uc.finalizeInTx(ctx, r, tenantID, movementID, movementType, txID)
		return txErr
	})
	if err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			uc.metrics.stockRejected.Add(ctx, 1, typeAttr(movementType))
			uc.log.ForTenant(tenantID).Warn().
				Int64("movement_id", movementID).
				Int64("product_id", stockErr.ProductID).
				Int64("available", stockErr.Available).
				Int64("requested", stockErr.Requested).
				Msg("cierre rechazado por stock insuficiente")
		}
		return nil, err
	}

	uc.metrics.finalized.Add(ctx, 1, typeAttr(movementType))
	uc.log.ForTenant(tenantID).Info().
		Int64("movement_id", mov.ID).
		Str("type", mov.Type).
		Str("transaction_id", txID).
		Str("total_value", mov.TotalValue.StringFixed(ledger.CurrencyPlaces)).
		Int64("total_items", mov.TotalItems).
		Msg("movimentação cerrada")
	return toMovementView(mov), nil
}

func (uc *MovementUseCase) finalizeInTx(ctx context.Context, r Repos, tenantID, movementID int64, movementType, txID string) (*entity.Movement, error) {
	mov, err := lockOwnedMovement(ctx, r.Movements, tenantID, movementID)
	if err != nil {
		return nil, err
	}
	if err := ledger.EnsureTransition(mov, entity.MovementStateFechada); err != nil {
		return nil, err
	}
	if mov.Type != movementType {
		return nil, fmt.Errorf("%w: la movimentação %d es de tipo %s, no %s", domain.ErrInvalidInput, mov.ID, mov.Type, movementType)
	}

	items, err := r.Carts.ListItems(ctx, mov.CartID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: movimentação %d", domain.ErrEmptyCart, mov.ID)
	}

	requested := make(map[int64]int64, len(items))
	totalValue := decimal.Zero
	var totalItems int64
	for _, it := range items {
		requested[it.ProductID] += it.Quantity
		totalValue = totalValue.Add(it.Subtotal)
		totalItems += it.Quantity
	}
	ids := make([]int64, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products, err := r.Products.LockForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	locked := make(map[int64]*entity.Product, len(products))
	for _, p := range products {
		locked[p.ID] = p
	}
	for _, id := range ids {
		p, ok := locked[id]
		if !ok {
			return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
		}
		if p.TenantID != tenantID {
			return nil, fmt.Errorf("%w: producto %d", domain.ErrOwnership, id)
		}
		if movementType == entity.MovementTypeSaida && p.StockQuantity < requested[id] {
			return nil, &domain.InsufficientStockError{
				ProductID: id,
				Available: p.StockQuantity,
				Requested: requested[id],
			}
		}
	}

	now := uc.now()
	for _, id := range ids {
		p := locked[id]
		delta := requested[id]
		if movementType == entity.MovementTypeSaida {
			delta = -delta
		}
		stockAfter := p.StockQuantity + delta
		if err := r.Products.SetStock(ctx, id, stockAfter); err != nil {
			return nil, err
		}
		entry := &entity.StockEntry{
			TransactionID: txID,
			TenantID:      tenantID,
			MovementID:    mov.ID,
			ProductID:     id,
			Delta:         delta,
			StockAfter:    stockAfter,
			CreatedAt:     now,
		}
		if err := r.StockEntries.Create(ctx, entry); err != nil {
			return nil, err
		}
	}

	mov.TotalValue = totalValue.Round(ledger.CurrencyPlaces)
	mov.TotalItems = totalItems
	mov.State = entity.MovementStateFechada
	mov.ClosedAt = &now
	if err := r.Movements.Update(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}
