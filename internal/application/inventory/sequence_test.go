package inventory_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Movimientos-api/internal/application/inventory"
	"github.com/jhoicas/Movimientos-api/internal/domain"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
	"github.com/jhoicas/Movimientos-api/internal/infrastructure/memory"
)

func TestAllocate_ConcurrenteSinHuecosNiRepetidos(t *testing.T) {
	alloc := inventory.NewSequenceAllocator(memory.New(10 * time.Second))
	ctx := context.Background()

	const n = 64
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got = make([]int64, 0, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := alloc.Allocate(ctx, tenantA, entity.ScopeProdutos, 1)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			got = append(got, v)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, got, n)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, v := range got {
		assert.Equal(t, int64(i+1), v)
	}
}

func TestAllocate_StepYScopeIndependiente(t *testing.T) {
	alloc := inventory.NewSequenceAllocator(memory.New(time.Second))
	ctx := context.Background()

	v, err := alloc.Allocate(ctx, tenantA, entity.ScopeCategorias, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)

	v, err = alloc.Allocate(ctx, tenantA, entity.ScopeCategorias, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(20), v)

	v, err = alloc.Allocate(ctx, tenantA, entity.ScopeFornecedores, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = alloc.Allocate(ctx, tenantB, entity.ScopeCategorias, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestAllocate_EntradaInvalida(t *testing.T) {
	alloc := inventory.NewSequenceAllocator(memory.New(time.Second))
	ctx := context.Background()

	_, err := alloc.Allocate(ctx, tenantA, entity.ScopeProdutos, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = alloc.Allocate(ctx, tenantA, entity.ScopeProdutos, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = alloc.Allocate(ctx, tenantA, "clientes", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
