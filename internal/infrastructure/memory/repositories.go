package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/ledger"
	"github.com/jhoicas/Movimientos-api/internal/domain/repository"
)

var (
	_ repository.MovementRepository   = (*movementRepo)(nil)
	_ repository.CartRepository       = (*cartRepo)(nil)
	_ repository.ProductRepository    = (*productRepo)(nil)
	_ repository.SequenceRepository   = (*sequenceRepo)(nil)
	_ repository.StockEntryRepository = (*stockEntryRepo)(nil)
)

// ── Movements ────────────────────────────────────────────────────────────────

type movementRepo struct{ st *state }

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	for _, other := range r.st.movements {
		if other.Link == m.Link {
			return fmt.Errorf("%w: link", domain.ErrDuplicate)
		}
		if other.TenantID == m.TenantID && other.Type == m.Type && other.Code == m.Code {
			return fmt.Errorf("%w: código %d", domain.ErrDuplicate, m.Code)
		}
	}
	if !entity.IsValidMovementType(m.Type) {
		return fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, m.Type)
	}
	r.st.lastMovementID++
	m.ID = r.st.lastMovementID
	r.st.movements[m.ID] = copyMovement(m)
	return nil
}

func (r *movementRepo) GetByID(_ context.Context, id int64) (*entity.Movement, error) {
	m, ok := r.st.movements[id]
	if !ok {
		return nil, nil
	}
	return copyMovement(m), nil
}

// GetForUpdate no necesita bloqueo propio: la transacción ya es exclusiva.
func (r *movementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *movementRepo) GetByLink(_ context.Context, link string) (*entity.Movement, error) {
	for _, m := range r.st.movements {
		if m.Link == link {
			return copyMovement(m), nil
		}
	}
	return nil, nil
}

func (r *movementRepo) Update(_ context.Context, m *entity.Movement) error {
	if _, ok := r.st.movements[m.ID]; !ok {
		return fmt.Errorf("%w: movimentação %d", domain.ErrNotFound, m.ID)
	}
	r.st.movements[m.ID] = copyMovement(m)
	return nil
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	out := make([]*entity.Movement, 0)
	for _, m := range r.st.movements {
		if m.TenantID != f.TenantID {
			continue
		}
		if f.State != "" && m.State != f.State {
			continue
		}
		out = append(out, copyMovement(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f.Limit, f.Offset), nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return list[:0]
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── Carts ────────────────────────────────────────────────────────────────────

type cartRepo struct{ st *state }

func (r *cartRepo) Create(_ context.Context, c *entity.Cart) error {
	r.st.lastCartID++
	c.ID = r.st.lastCartID
	cp := *c
	r.st.carts[c.ID] = &cp
	return nil
}

// Delete elimina el carrito y, en cascada, sus ítems.
func (r *cartRepo) Delete(ctx context.Context, id int64) error {
	if err := r.DeleteItems(ctx, id); err != nil {
		return err
	}
	delete(r.st.carts, id)
	return nil
}

func (r *cartRepo) GetItem(_ context.Context, itemID int64) (*entity.CartItem, error) {
	it, ok := r.st.items[itemID]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *cartRepo) GetItemByProduct(_ context.Context, cartID, productID int64) (*entity.CartItem, error) {
	for _, it := range r.st.items {
		if it.CartID == cartID && it.ProductID == productID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *cartRepo) CreateItem(_ context.Context, item *entity.CartItem) error {
	if err := checkItem(item); err != nil {
		return err
	}
	if _, ok := r.st.carts[item.CartID]; !ok {
		return fmt.Errorf("%w: carrito %d", domain.ErrNotFound, item.CartID)
	}
	for _, it := range r.st.items {
		if it.CartID == item.CartID && it.ProductID == item.ProductID {
			return fmt.Errorf("%w: producto %d ya está en el carrito", domain.ErrDuplicate, item.ProductID)
		}
	}
	r.st.lastItemID++
	item.ID = r.st.lastItemID
	cp := *item
	r.st.items[item.ID] = &cp
	return nil
}

func (r *cartRepo) UpdateItem(_ context.Context, item *entity.CartItem) error {
	if err := checkItem(item); err != nil {
		return err
	}
	if _, ok := r.st.items[item.ID]; !ok {
		return fmt.Errorf("%w: ítem %d", domain.ErrNotFound, item.ID)
	}
	cp := *item
	r.st.items[item.ID] = &cp
	return nil
}

// checkItem replica los CHECK de cart_items.
func checkItem(item *entity.CartItem) error {
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", domain.ErrInvalidInput, item.Quantity)
	}
	if !ledger.ValidDiscount(item.DiscountPercent) {
		return fmt.Errorf("%w: discount_percent %s", domain.ErrInvalidInput, item.DiscountPercent)
	}
	return nil
}

func (r *cartRepo) DeleteItem(_ context.Context, itemID int64) error {
	delete(r.st.items, itemID)
	return nil
}

func (r *cartRepo) DeleteItems(_ context.Context, cartID int64) error {
	for id, it := range r.st.items {
		if it.CartID == cartID {
			delete(r.st.items, id)
		}
	}
	return nil
}

func (r *cartRepo) ListItems(_ context.Context, cartID int64) ([]*entity.CartItem, error) {
	out := make([]*entity.CartItem, 0)
	for _, it := range r.st.items {
		if it.CartID == cartID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

type productRepo struct{ st *state }

func (r *productRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) LockForUpdate(_ context.Context, ids []int64) ([]*entity.Product, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := make([]*entity.Product, 0, len(sorted))
	for _, id := range sorted {
		if p, ok := r.st.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *productRepo) SetStock(_ context.Context, id int64, quantity int64) error {
	p, ok := r.st.products[id]
	if !ok {
		return fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: stock negativo para producto %d", domain.ErrInvalidInput, id)
	}
	p.StockQuantity = quantity
	p.UpdatedAt = time.Now()
	return nil
}

// ── Sequences ────────────────────────────────────────────────────────────────

type sequenceRepo struct{ st *state }

func (r *sequenceRepo) Next(_ context.Context, tenantID int64, scope string, step int64) (int64, error) {
	k := seqKey{tenantID: tenantID, scope: scope}
	r.st.sequences[k] += step
	return r.st.sequences[k], nil
}

// ── Stock entries ────────────────────────────────────────────────────────────

type stockEntryRepo struct{ st *state }

func (r *stockEntryRepo) Create(_ context.Context, e *entity.StockEntry) error {
	r.st.lastEntryID++
	e.ID = r.st.lastEntryID
	cp := *e
	r.st.entries = append(r.st.entries, &cp)
	return nil
}

func (r *stockEntryRepo) ListByMovement(_ context.Context, movementID int64) ([]*entity.StockEntry, error) {
	out := make([]*entity.StockEntry, 0)
	for _, e := range r.st.entries {
		if e.MovementID == movementID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
