package postgres

import (
	"context"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jhoicas/Movimientos-api/internal/application/dto"
	"github.com/jhoicas/Movimientos-api/internal/application/inventory"
	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/domain/ledger"
	"github.com/jhoicas/Movimientos-api/pkg/config"
	"github.com/jhoicas/Movimientos-api/pkg/logger"
)

// Estas pruebas corren contra un PostgreSQL real (DATABASE_URL). Cada una usa un comercio
// nuevo, así que pueden repetirse sobre la misma base sin limpiar tablas.

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var lastTenant = time.Now().UnixMicro()

func newTenant() int64 {
	return atomic.AddInt64(&lastTenant, 1)
}

func testPool(t *testing.T, lockTimeout time.Duration) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL no definido: se omiten pruebas contra PostgreSQL")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 16, LockTimeout: lockTimeout})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func insertProduct(t *testing.T, pool *pgxpool.Pool, tenantID int64, price string, stock int64) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO products (tenant_id, name, price, stock_quantity) VALUES ($1, $2, $3, $4) RETURNING id`,
		tenantID, "Tornillo", decimal.RequireFromString(price), stock,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func stockOf(t *testing.T, pool *pgxpool.Pool, productID int64) int64 {
	t.Helper()
	var qty int64
	err := pool.QueryRow(context.Background(),
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&qty)
	require.NoError(t, err)
	return qty
}

func countEntries(t *testing.T, pool *pgxpool.Pool, movementID int64) int {
	t.Helper()
	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM stock_entries WHERE movement_id = $1`, movementID).Scan(&n)
	require.NoError(t, err)
	return n
}

func newLedger(pool *pgxpool.Pool) *inventory.MovementUseCase {
	return inventory.NewMovementUseCase(
		NewTxRunner(pool),
		ledger.NewRandomLinkGenerator(ledger.DefaultLinkLength),
		inventory.DefaultOpenMaxAttempts,
		logger.Nop(),
		tracenoop.NewTracerProvider().Tracer("test"),
		metricnoop.NewMeterProvider().Meter("test"),
	)
}

func openWithItems(t *testing.T, uc *inventory.MovementUseCase, tenantID int64, movementType string, items ...[2]int64) *dto.MovementView {
	t.Helper()
	ctx := context.Background()
	mov, err := uc.Open(ctx, tenantID, movementType)
	require.NoError(t, err)
	for _, it := range items {
		_, err := uc.AddItem(ctx, tenantID, mov.ID, dto.AddItemRequest{ProductID: it[0], Quantity: it[1]})
		require.NoError(t, err)
	}
	return mov
}

// ──────────────────────────────────────────────────────────────────────────────
// Consecutivos
// ──────────────────────────────────────────────────────────────────────────────

func TestSequenceNext_ConcurrenteSinHuecosNiRepetidos(t *testing.T) {
	pool := testPool(t, 5*time.Second)
	runner := NewTxRunner(pool)
	ctx := context.Background()
	tenant := newTenant()

	const n = 40
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		got   = make([]int64, 0, n)
		start = make(chan struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			var v int64
			err := runner.Run(ctx, func(r inventory.Repos) error {
				var err error
				v, err = r.Sequences.Next(ctx, tenant, entity.ScopeProdutos, 1)
				return err
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			got = append(got, v)
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, got, n)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, v := range got {
		assert.Equal(t, int64(i+1), v)
	}
}

func TestSequenceNext_RollbackNoConsumeValor(t *testing.T) {
	pool := testPool(t, 5*time.Second)
	runner := NewTxRunner(pool)
	ctx := context.Background()
	tenant := newTenant()

	err := runner.Run(ctx, func(r inventory.Repos) error {
		if _, err := r.Sequences.Next(ctx, tenant, entity.ScopeCategorias, 1); err != nil {
			return err
		}
		return domain.ErrInvalidInput
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	var v int64
	require.NoError(t, runner.Run(ctx, func(r inventory.Repos) error {
		var err error
		v, err = r.Sequences.Next(ctx, tenant, entity.ScopeCategorias, 1)
		return err
	}))
	assert.Equal(t, int64(1), v)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre de movimentações
// ──────────────────────────────────────────────────────────────────────────────

// Dos cierres que tocan los mismos productos, con ítems cargados en orden inverso,
// terminan ambos sin deadlock y el stock refleja los dos.
func TestFinalize_ConcurrenteOrdenInversoSinDeadlock(t *testing.T) {
	pool := testPool(t, 5*time.Second)
	uc := newLedger(pool)
	ctx := context.Background()
	tenant := newTenant()
	a := insertProduct(t, pool, tenant, "1.00", 100)
	b := insertProduct(t, pool, tenant, "1.00", 100)

	const rounds = 5
	for round := 0; round < rounds; round++ {
		in := openWithItems(t, uc, tenant, entity.MovementTypeEntrada, [2]int64{a, 2}, [2]int64{b, 2})
		out := openWithItems(t, uc, tenant, entity.MovementTypeSaida, [2]int64{b, 1}, [2]int64{a, 1})

		var (
			wg    sync.WaitGroup
			errs  [2]error
			start = make(chan struct{})
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, errs[0] = uc.Finalize(ctx, tenant, in.ID, entity.MovementTypeEntrada)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, errs[1] = uc.Finalize(ctx, tenant, out.ID, entity.MovementTypeSaida)
		}()
		close(start)
		wg.Wait()

		require.NoError(t, errs[0], "ronda %d entrada", round)
		require.NoError(t, errs[1], "ronda %d saida", round)
	}

	assert.Equal(t, int64(100+rounds), stockOf(t, pool, a))
	assert.Equal(t, int64(100+rounds), stockOf(t, pool, b))
}

func TestFinalize_SaidaSinStockNoModificaNada(t *testing.T) {
	pool := testPool(t, 5*time.Second)
	uc := newLedger(pool)
	ctx := context.Background()
	tenant := newTenant()
	enough := insertProduct(t, pool, tenant, "1.00", 10)
	short := insertProduct(t, pool, tenant, "1.00", 3)

	mov := openWithItems(t, uc, tenant, entity.MovementTypeSaida, [2]int64{enough, 4}, [2]int64{short, 5})

	_, err := uc.Finalize(ctx, tenant, mov.ID, entity.MovementTypeSaida)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, short, stockErr.ProductID)
	assert.Equal(t, int64(2), stockErr.Deficit())

	assert.Equal(t, int64(10), stockOf(t, pool, enough))
	assert.Equal(t, int64(3), stockOf(t, pool, short))
	assert.Zero(t, countEntries(t, pool, mov.ID))

	got, err := uc.Get(ctx, tenant, mov.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStateAberta, got.State)
}

func TestFinalize_SegundoCierreNoReaplicaStock(t *testing.T) {
	pool := testPool(t, 5*time.Second)
	uc := newLedger(pool)
	ctx := context.Background()
	tenant := newTenant()
	p := insertProduct(t, pool, tenant, "2.00", 10)

	mov := openWithItems(t, uc, tenant, entity.MovementTypeEntrada, [2]int64{p, 5})
	closed, err := uc.Finalize(ctx, tenant, mov.ID, entity.MovementTypeEntrada)
	require.NoError(t, err)
	assert.Equal(t, "10.00", closed.TotalValue.StringFixed(2))
	assert.Equal(t, int64(15), stockOf(t, pool, p))

	_, err = uc.Finalize(ctx, tenant, mov.ID, entity.MovementTypeEntrada)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, int64(15), stockOf(t, pool, p))
	assert.Equal(t, 1, countEntries(t, pool, mov.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Traducción de errores de PostgreSQL
// ──────────────────────────────────────────────────────────────────────────────

func TestLockTimeout_ProductoBloqueado(t *testing.T) {
	pool := testPool(t, 150*time.Millisecond)
	ctx := context.Background()
	tenant := newTenant()
	p := insertProduct(t, pool, tenant, "1.00", 5)

	holder, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = holder.Rollback(ctx) }()
	locked, err := NewProductRepository(holder).LockForUpdate(ctx, []int64{p})
	require.NoError(t, err)
	require.Len(t, locked, 1)

	err = NewTxRunner(pool).Run(ctx, func(r inventory.Repos) error {
		_, err := r.Products.LockForUpdate(ctx, []int64{p})
		return err
	})
	require.ErrorIs(t, err, domain.ErrLockTimeout)
	assert.True(t, domain.IsRetryable(err))
}

func TestLockTimeout_MovimentacaoBloqueada(t *testing.T) {
	pool := testPool(t, 150*time.Millisecond)
	uc := newLedger(pool)
	ctx := context.Background()
	tenant := newTenant()
	p := insertProduct(t, pool, tenant, "1.00", 5)
	mov := openWithItems(t, uc, tenant, entity.MovementTypeEntrada)

	holder, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = holder.Rollback(ctx) }()
	_, err = NewMovementRepository(holder).GetForUpdate(ctx, mov.ID)
	require.NoError(t, err)

	_, err = uc.AddItem(ctx, tenant, mov.ID, dto.AddItemRequest{ProductID: p, Quantity: 1})
	require.ErrorIs(t, err, domain.ErrLockTimeout)

	require.NoError(t, holder.Rollback(ctx))
	cart, err := uc.AddItem(ctx, tenant, mov.ID, dto.AddItemRequest{ProductID: p, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestConstraints_SeTraducenADominio(t *testing.T) {
	pool := testPool(t, 5*time.Second)
	runner := NewTxRunner(pool)
	ctx := context.Background()
	tenant := newTenant()
	p := insertProduct(t, pool, tenant, "1.00", 5)

	err := runner.Run(ctx, func(r inventory.Repos) error {
		return r.Products.SetStock(ctx, p, -1)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(5), stockOf(t, pool, p))

	link := "dup-" + strconv.FormatInt(tenant, 10)
	err = runner.Run(ctx, func(r inventory.Repos) error {
		first := &entity.Movement{TenantID: tenant, Type: entity.MovementTypeEntrada, Code: 1, Link: link,
			State: entity.MovementStateAberta, OpenedAt: time.Now()}
		if err := r.Movements.Create(ctx, first); err != nil {
			return err
		}
		second := &entity.Movement{TenantID: tenant, Type: entity.MovementTypeSaida, Code: 1, Link: link,
			State: entity.MovementStateAberta, OpenedAt: time.Now()}
		return r.Movements.Create(ctx, second)
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
