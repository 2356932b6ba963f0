package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Movimientos-api/internal/application/dto"
	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/ledger"
	"github.com/jhoicas/Movimientos-api/internal/domain/repository"
	"github.com/jhoicas/Movimientos-api/pkg/logger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultOpenMaxAttempts intentos de creación ante colisión de link.
const DefaultOpenMaxAttempts = 6

// MovementUseCase libro de movimentações: abre, arma el carrito, cierra (aplicando stock)
// y cancela. Cada operación corre completa dentro de una transacción del TxRunner.
type MovementUseCase struct {
	txRunner    TxRunner
	links       LinkGenerator
	log         *logger.Logger
	tracer      trace.Tracer
	metrics     *ledgerMetrics
	maxAttempts int
	now         func() time.Time
}

// NewMovementUseCase construye el caso de uso. maxAttempts <= 0 usa DefaultOpenMaxAttempts.
func NewMovementUseCase(
	txRunner TxRunner,
	links LinkGenerator,
	maxAttempts int,
	log *logger.Logger,
	tracer trace.Tracer,
	meter metric.Meter,
) *MovementUseCase {
	if maxAttempts <= 0 {
		maxAttempts = DefaultOpenMaxAttempts
	}
	return &MovementUseCase{
		txRunner:    txRunner,
		links:       links,
		log:         log,
		tracer:      tracer,
		metrics:     newLedgerMetrics(meter),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Open crea una movimentação vacía (estado aberta) con su carrito, código consecutivo y link.
// Si el link choca con uno existente se repite toda la creación; al agotar los intentos
// retorna domain.ErrAllocationExhausted.
func (uc *MovementUseCase) Open(ctx context.Context, tenantID int64, movementType string) (out *dto.MovementView, err error) {
	ctx, span := startSpan(ctx, uc.tracer, "ledger.Open",
		attribute.Int64("tenant.id", tenantID), attribute.String("movement.type", movementType))
	defer func() { endSpan(span, err) }()

	if tenantID <= 0 {
		return nil, fmt.Errorf("%w: tenant_id requerido", domain.ErrInvalidInput)
	}
	if !entity.IsValidMovementType(movementType) {
		return nil, fmt.Errorf("%w: tipo %q (use entrada o saida)", domain.ErrInvalidInput, movementType)
	}

	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		var mov *entity.Movement
		err = uc.txRunner.Run(ctx, func(r Repos) error {
			var txErr error
			mov, txErr = uc.openInTx(ctx, r, tenantID, movementType)
			return txErr
		})
		if err == nil {
			uc.metrics.opened.Add(ctx, 1, typeAttr(movementType))
			uc.log.ForTenant(tenantID).Info().
				Int64("movement_id", mov.ID).
				Str("type", mov.Type).
				Int64("code", mov.Code).
				Str("link", mov.Link).
				Msg("movimentação abierta")
			return toMovementView(mov), nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		uc.metrics.linkCollisions.Add(ctx, 1, typeAttr(movementType))
		uc.log.ForTenant(tenantID).Warn().
			Int("attempt", attempt).
			Msg("colisión de link al abrir movimentação, reintentando")
	}
	return nil, fmt.Errorf("%w: %d intentos", domain.ErrAllocationExhausted, uc.maxAttempts)
}

func (uc *MovementUseCase) openInTx(ctx context.Context, r Repos, tenantID int64, movementType string) (*entity.Movement, error) {
	now := uc.now()
	cart := &entity.Cart{TenantID: tenantID, CreatedAt: now, UpdatedAt: now}
	if err := r.Carts.Create(ctx, cart); err != nil {
		return nil, err
	}
	code, err := nextCode(ctx, r.Sequences, tenantID, entity.MovementScope(movementType), 1)
	if err != nil {
		return nil, err
	}
	link, err := uc.links.Generate()
	if err != nil {
		return nil, err
	}
	mov := &entity.Movement{
		TenantID:   tenantID,
		Type:       movementType,
		Code:       code,
		Link:       link,
		State:      entity.MovementStateAberta,
		CartID:     cart.ID,
		TotalValue: decimal.Zero,
		TotalItems: 0,
		OpenedAt:   now,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// Cancel descarta el carrito y pasa la movimentação a cancelada. Nunca toca stock.
func (uc *MovementUseCase) Cancel(ctx context.Context, tenantID, movementID int64) (err error) {
	ctx, span := startSpan(ctx, uc.tracer, "ledger.Cancel",
		attribute.Int64("tenant.id", tenantID), attribute.Int64("movement.id", movementID))
	defer func() { endSpan(span, err) }()

	var movementType string
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		mov, err := lockOwnedMovement(ctx, r.Movements, tenantID, movementID)
		if err != nil {
			return err
		}
		if err := ledger.EnsureTransition(mov, entity.MovementStateCancelada); err != nil {
			return err
		}
		movementType = mov.Type
		cartID := mov.CartID
		mov.State = entity.MovementStateCancelada
		mov.CartID = 0
		mov.TotalValue = decimal.Zero
		mov.TotalItems = 0
		if err := r.Movements.Update(ctx, mov); err != nil {
			return err
		}
		if cartID == 0 {
			return nil
		}
		if err := r.Carts.DeleteItems(ctx, cartID); err != nil {
			return err
		}
		return r.Carts.Delete(ctx, cartID)
	})
	if err != nil {
		return err
	}
	uc.metrics.cancelled.Add(ctx, 1, typeAttr(movementType))
	uc.log.ForTenant(tenantID).Info().Int64("movement_id", movementID).Msg("movimentação cancelada")
	return nil
}

// List lista las movimentações del comercio por ID ascendente; state vacío = todas.
func (uc *MovementUseCase) List(ctx context.Context, tenantID int64, state string, page dto.PageRequest) ([]dto.MovementView, error) {
	switch state {
	case "", entity.MovementStateAberta, entity.MovementStateFechada, entity.MovementStateCancelada:
	default:
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, state)
	}
	page.DefaultPage()

	var list []*entity.Movement
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		list, err = r.Movements.List(ctx, repository.MovementFilter{
			TenantID: tenantID,
			State:    state,
			Limit:    page.Limit,
			Offset:   page.Offset,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementView, 0, len(list))
	for _, m := range list {
		out = append(out, *toMovementView(m))
	}
	return out, nil
}

// GetByLink busca una movimentação por su link público. Un link de otro comercio es NotFound.
func (uc *MovementUseCase) GetByLink(ctx context.Context, tenantID int64, link string) (*dto.MovementView, error) {
	if link == "" {
		return nil, fmt.Errorf("%w: link requerido", domain.ErrInvalidInput)
	}
	var mov *entity.Movement
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		mov, err = r.Movements.GetByLink(ctx, link)
		return err
	})
	if err != nil {
		return nil, err
	}
	if mov == nil || mov.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return toMovementView(mov), nil
}

// Get devuelve una movimentação del comercio.
func (uc *MovementUseCase) Get(ctx context.Context, tenantID, movementID int64) (*dto.MovementView, error) {
	var mov *entity.Movement
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		mov, err = ownedMovement(ctx, r.Movements, tenantID, movementID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toMovementView(mov), nil
}

// StockEntries cambios de stock aplicados por una movimentação (vacío si no está cerrada).
func (uc *MovementUseCase) StockEntries(ctx context.Context, tenantID, movementID int64) ([]dto.StockEntryView, error) {
	var entries []*entity.StockEntry
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		if _, err := ownedMovement(ctx, r.Movements, tenantID, movementID); err != nil {
			return err
		}
		var err error
		entries, err = r.StockEntries.ListByMovement(ctx, movementID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.StockEntryView{
			ProductID:     e.ProductID,
			TransactionID: e.TransactionID,
			Delta:         e.Delta,
			StockAfter:    e.StockAfter,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out, nil
}

// ownedMovement carga la movimentação y verifica que pertenezca al comercio.
func ownedMovement(ctx context.Context, repo repository.MovementRepository, tenantID, movementID int64) (*entity.Movement, error) {
	mov, err := repo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	return checkOwner(mov, tenantID, movementID)
}

// lockOwnedMovement igual que ownedMovement pero bloqueando la fila (SELECT FOR UPDATE).
func lockOwnedMovement(ctx context.Context, repo repository.MovementRepository, tenantID, movementID int64) (*entity.Movement, error) {
	mov, err := repo.GetForUpdate(ctx, movementID)
	if err != nil {
		return nil, err
	}
	return checkOwner(mov, tenantID, movementID)
}

func checkOwner(mov *entity.Movement, tenantID, movementID int64) (*entity.Movement, error) {
	if mov == nil {
		return nil, fmt.Errorf("%w: movimentação %d", domain.ErrNotFound, movementID)
	}
	if mov.TenantID != tenantID {
		return nil, fmt.Errorf("%w: movimentação %d", domain.ErrOwnership, movementID)
	}
	return mov, nil
}
