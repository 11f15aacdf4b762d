package keylock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-orders/pkg/keylock"
)

func TestLock_ExclusionPorClave(t *testing.T) {
	l := keylock.New()
	unlock, err := l.Lock(context.Background(), "p1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "p1")
	assert.ErrorIs(t, err, context.DeadlineExceeded, "la misma clave debe esperar hasta el timeout")

	// Otra clave no se bloquea.
	unlock2, err := l.Lock(context.Background(), "p2")
	require.NoError(t, err)
	unlock2()

	unlock()
	unlock() // idempotente
	assert.Equal(t, 0, l.Len(), "las entradas sin uso deben eliminarse")
}

func TestLockAll_LiberaSiFalla(t *testing.T) {
	l := keylock.New()
	held, err := l.Lock(context.Background(), "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.LockAll(ctx, []string{"c", "a", "b"})
	require.Error(t, err)

	// "a" fue tomada antes que "b" y debe haberse liberado.
	unlockA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	unlockA()
	held()
	assert.Equal(t, 0, l.Len())
}

func TestLockAll_OrdenDeterministaSinDeadlock(t *testing.T) {
	l := keylock.New()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 200; i++ {
		keys := []string{"x", "y", "z"}
		if i%2 == 0 {
			keys = []string{"z", "y", "x", "x"}
		}
		wg.Add(1)
		go func(keys []string) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			unlock, err := l.LockAll(ctx, keys)
			if !assert.NoError(t, err) {
				return
			}
			counter++
			unlock()
		}(keys)
	}
	wg.Wait()
	assert.Equal(t, 200, counter)
	assert.Equal(t, 0, l.Len())
}

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, keylock.SortedUnique([]string{"c", "a", "b", "a"}))
	assert.Empty(t, keylock.SortedUnique(nil))
}
