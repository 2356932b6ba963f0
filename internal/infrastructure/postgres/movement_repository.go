package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo movimentações sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, tenant_id, type, code, link, state, cart_id, total_value, total_items, opened_at, closed_at`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m      entity.Movement
		cartID *int64
	)
	err := row.Scan(&m.ID, &m.TenantID, &m.Type, &m.Code, &m.Link, &m.State, &cartID,
		&m.TotalValue, &m.TotalItems, &m.OpenedAt, &m.ClosedAt)
	if err != nil {
		return nil, err
	}
	if cartID != nil {
		m.CartID = *cartID
	}
	return &m, nil
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// Create inserta la movimentação; un link o código repetido devuelve domain.ErrDuplicate.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (tenant_id, type, code, link, state, cart_id, total_value, total_items, opened_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.TenantID, m.Type, m.Code, m.Link, m.State, nullableID(m.CartID),
		m.TotalValue, m.TotalItems, m.OpenedAt, m.ClosedAt,
	).Scan(&m.ID)
	if err != nil {
		return translateError("create movement", err)
	}
	return nil
}

func (r *MovementRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movements WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError(op, err)
	}
	return m, nil
}

// GetByID obtiene una movimentação por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.getOne(ctx, "get movement", "id = $1", id)
}

// GetForUpdate igual que GetByID tomando el bloqueo de la fila hasta el fin de la tx.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.getOne(ctx, "lock movement", "id = $1 FOR UPDATE", id)
}

// GetByLink busca sin filtrar por comercio; el llamador decide la visibilidad.
func (r *MovementRepo) GetByLink(ctx context.Context, link string) (*entity.Movement, error) {
	return r.getOne(ctx, "get movement by link", "link = $1", link)
}

// Update escribe estado, carrito, totales y fecha de cierre.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	query := `
		UPDATE movements
		SET state = $2, cart_id = $3, total_value = $4, total_items = $5, closed_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, m.ID, m.State, nullableID(m.CartID), m.TotalValue, m.TotalItems, m.ClosedAt)
	if err != nil {
		return translateError("update movement", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: movimentação %d", domain.ErrNotFound, m.ID)
	}
	return nil
}

// List lista movimentações del comercio, opcionalmente por estado, por ID ascendente.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + movementColumns + ` FROM movements WHERE tenant_id = $1`)
	args := []any{f.TenantID}
	pos := 2
	if f.State != "" {
		sb.WriteString(fmt.Sprintf(" AND state = $%d", pos))
		args = append(args, f.State)
		pos++
	}
	sb.WriteString(" ORDER BY id")
	if f.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", pos))
		args = append(args, f.Limit)
		pos++
	}
	if f.Offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", pos))
		args = append(args, f.Offset)
	}

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, translateError("list movements", err)
	}
	defer rows.Close()

	list := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, translateError("scan movement", err)
		}
		list = append(list, m)
	}
	return list, translateError("list movements", rows.Err())
}
