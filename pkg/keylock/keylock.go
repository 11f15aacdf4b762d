// Package keylock entrega exclusión mutua por clave con espera acotada por context.
// Cada clave usa un semáforo de peso 1; las entradas se eliminan cuando nadie las usa.
package keylock

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Locker mapa de locks por clave.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	sem  *semaphore.Weighted
	refs int // holders + waiters
}

// New construye un Locker vacío.
func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

// Lock bloquea key hasta obtenerla o hasta que ctx termine (devuelve ctx.Err()).
// La función devuelta libera el lock; llamarla más de una vez no tiene efecto.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		l.drop(key, e)
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			l.drop(key, e)
		})
	}, nil
}

// LockAll toma todas las claves (sin duplicados) en orden ascendente.
// Si alguna no se obtiene, libera las ya tomadas y devuelve el error.
func (l *Locker) LockAll(ctx context.Context, keys []string) (func(), error) {
	ordered := SortedUnique(keys)
	unlocks := make([]func(), 0, len(ordered))
	releaseAll := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, k := range ordered {
		unlock, err := l.Lock(ctx, k)
		if err != nil {
			releaseAll()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return releaseAll, nil
}

// Len número de claves con holders o waiters activos.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *Locker) drop(key string, e *entry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// SortedUnique copia keys sin duplicados y en orden ascendente.
func SortedUnique(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
