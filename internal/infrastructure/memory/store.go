// Package memory implementa los puertos del libro de movimentações en memoria, con transacciones
// serializadas y rollback real: cada Run trabaja sobre una copia del estado que solo se publica
// si la función termina sin error.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Movimientos-api/internal/application/inventory"
	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type seqKey struct {
	tenantID int64
	scope    string
}

type state struct {
	products  map[int64]*entity.Product
	carts     map[int64]*entity.Cart
	items     map[int64]*entity.CartItem
	movements map[int64]*entity.Movement
	sequences map[seqKey]int64
	entries   []*entity.StockEntry

	lastProductID  int64
	lastCartID     int64
	lastItemID     int64
	lastMovementID int64
	lastEntryID    int64
}

func newState() *state {
	return &state{
		products:  make(map[int64]*entity.Product),
		carts:     make(map[int64]*entity.Cart),
		items:     make(map[int64]*entity.CartItem),
		movements: make(map[int64]*entity.Movement),
		sequences: make(map[seqKey]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, p := range s.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, cart := range s.carts {
		cp := *cart
		c.carts[id] = &cp
	}
	for id, it := range s.items {
		cp := *it
		c.items[id] = &cp
	}
	for id, m := range s.movements {
		c.movements[id] = copyMovement(m)
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	c.entries = make([]*entity.StockEntry, 0, len(s.entries))
	for _, e := range s.entries {
		cp := *e
		c.entries = append(c.entries, &cp)
	}
	c.lastProductID = s.lastProductID
	c.lastCartID = s.lastCartID
	c.lastItemID = s.lastItemID
	c.lastMovementID = s.lastMovementID
	c.lastEntryID = s.lastEntryID
	return c
}

func copyMovement(m *entity.Movement) *entity.Movement {
	cp := *m
	if m.ClosedAt != nil {
		t := *m.ClosedAt
		cp.ClosedAt = &t
	}
	return &cp
}

// Store estado compartido. Una transacción a la vez: el semáforo hace el papel del bloqueo de fila.
type Store struct {
	sem         chan struct{}
	lockTimeout time.Duration
	st          *state
}

// New construye un store vacío. lockTimeout <= 0 espera hasta que el contexto se cancele.
func New(lockTimeout time.Duration) *Store {
	return &Store{
		sem:         make(chan struct{}, 1),
		lockTimeout: lockTimeout,
		st:          newState(),
	}
}

func (s *Store) acquire(ctx context.Context) error {
	if s.lockTimeout <= 0 {
		select {
		case s.sem <- struct{}{}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: %s", domain.ErrLockTimeout, s.lockTimeout)
	}
}

func (s *Store) release() { <-s.sem }

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	work := s.st.clone()
	if err := fn(reposFor(work)); err != nil {
		return err
	}
	s.st = work
	return nil
}

func reposFor(st *state) inventory.Repos {
	return inventory.Repos{
		Movements:    &movementRepo{st: st},
		Carts:        &cartRepo{st: st},
		Products:     &productRepo{st: st},
		Sequences:    &sequenceRepo{st: st},
		StockEntries: &stockEntryRepo{st: st},
	}
}

// PutProduct crea o reemplaza un producto del catálogo; asigna ID si viene en 0.
// El catálogo no es parte del libro, esto alimenta el store en arranque y tests.
func (s *Store) PutProduct(ctx context.Context, p *entity.Product) error {
	if p.StockQuantity < 0 {
		return fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
	}
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if p.ID == 0 {
		s.st.lastProductID++
		p.ID = s.st.lastProductID
	} else if p.ID > s.st.lastProductID {
		s.st.lastProductID = p.ID
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	cp := *p
	s.st.products[p.ID] = &cp
	return nil
}

// Product lectura directa del catálogo (nil si no existe).
func (s *Store) Product(ctx context.Context, id int64) (*entity.Product, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	p, ok := s.st.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
