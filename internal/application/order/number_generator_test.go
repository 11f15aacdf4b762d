package order_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-orders/internal/application/order"
	"github.com/jhoicas/warehouse-orders/internal/domain"
)

type fixedSequence struct {
	max   int
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fixedSequence) MaxSequence(_ context.Context, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.max, f.err
}

func TestNext_FormatoYContinuaDesdePersistido(t *testing.T) {
	store := &fixedSequence{max: 41}
	gen := order.NewNumberGenerator(store, time.UTC)

	n1, err := gen.Next(context.Background(), "20240101")
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240101-000042", n1)

	n2, err := gen.Next(context.Background(), "20240101")
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240101-000043", n2)
	assert.Equal(t, 1, store.calls, "el store se consulta solo la primera vez por fecha")
}

func TestNext_MilConcurrentesUnicosYCrecientes(t *testing.T) {
	gen := order.NewNumberGenerator(&fixedSequence{}, time.UTC)

	const n = 1000
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			num, err := gen.Next(context.Background(), "20240101")
			assert.NoError(t, err)
			results[i] = num
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, r := range results {
		seen[r] = struct{}{}
	}
	assert.Len(t, seen, n, "todos los números deben ser distintos")

	sort.Strings(results)
	assert.Equal(t, "ORD-20240101-000001", results[0])
	assert.Equal(t, "ORD-20240101-001000", results[n-1])
	for i := 1; i < n; i++ {
		assert.Less(t, results[i-1], results[i])
	}
}

func TestNext_AgotaLaFechaSinPerderOrden(t *testing.T) {
	store := &fixedSequence{max: order.MaxDailySequence - 1}
	gen := order.NewNumberGenerator(store, time.UTC)
	ctx := context.Background()

	last, err := gen.Next(ctx, "20240101")
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240101-999999", last)

	for i := 0; i < 2; i++ {
		_, err = gen.Next(ctx, "20240101")
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	}

	other, err := gen.Next(ctx, "20240102")
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240102-999999", other, "cada fecha tiene su propio tope")
}

func TestNext_FechasIndependientes(t *testing.T) {
	gen := order.NewNumberGenerator(&fixedSequence{}, time.UTC)
	a, _ := gen.Next(context.Background(), "20240101")
	b, _ := gen.Next(context.Background(), "20240102")
	assert.Equal(t, "ORD-20240101-000001", a)
	assert.Equal(t, "ORD-20240102-000001", b)
}

func TestNext_ClaveInvalida(t *testing.T) {
	gen := order.NewNumberGenerator(&fixedSequence{}, time.UTC)
	for _, key := range []string{"", "2024-01-01", "20241301", "abc"} {
		_, err := gen.Next(context.Background(), key)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, key)
	}
}

func TestNext_ErrorDelStoreNoConsumeNumero(t *testing.T) {
	store := &fixedSequence{err: errors.New("db caída")}
	gen := order.NewNumberGenerator(store, time.UTC)

	_, err := gen.Next(context.Background(), "20240101")
	require.Error(t, err)

	store.mu.Lock()
	store.err, store.max = nil, 7
	store.mu.Unlock()

	n, err := gen.Next(context.Background(), "20240101")
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240101-000008", n)
}

func TestDateKey_UsaZonaConfigurada(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	gen := order.NewNumberGenerator(&fixedSequence{}, bogota)
	// 02:00 UTC del 2 de enero todavía es 1 de enero en UTC-5.
	assert.Equal(t, "20240101", gen.DateKey(time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC)))
}
