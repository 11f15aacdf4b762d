package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/warehouse-orders/internal/domain"
)

const (
	numberPrefix  = "ORD-"
	dateKeyLayout = "20060102"
	// MaxDailySequence último consecutivo que cabe en seis dígitos.
	MaxDailySequence = 999999
)

// NumberGenerator asigna números de pedido ORD-<yyyyMMdd>-<consecutivo de 6 dígitos>.
// Hay un contador por fecha; la asignación está serializada por contador y el primer uso
// de una fecha lo inicializa desde el mayor consecutivo persistido. Pasado MaxDailySequence
// la fecha se agota, así el número sigue ordenando como texto.
type NumberGenerator struct {
	store    SequenceStore
	loc      *time.Location
	mu       sync.Mutex
	counters map[string]*dayCounter
}

type dayCounter struct {
	mu     sync.Mutex
	seeded bool
	last   int
}

// NewNumberGenerator construye el generador. loc nil usa UTC.
func NewNumberGenerator(store SequenceStore, loc *time.Location) *NumberGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &NumberGenerator{store: store, loc: loc, counters: make(map[string]*dayCounter)}
}

// DateKey fecha yyyyMMdd de t en la zona horaria configurada.
func (g *NumberGenerator) DateKey(t time.Time) string {
	return t.In(g.loc).Format(dateKeyLayout)
}

// Next devuelve el siguiente número para dateKey, único y estrictamente creciente.
func (g *NumberGenerator) Next(ctx context.Context, dateKey string) (string, error) {
	if _, err := time.Parse(dateKeyLayout, dateKey); err != nil || len(dateKey) != len(dateKeyLayout) {
		return "", domain.Invalid("clave de fecha %q: se espera yyyyMMdd", dateKey)
	}

	g.mu.Lock()
	c, ok := g.counters[dateKey]
	if !ok {
		c = &dayCounter{}
		g.counters[dateKey] = c
	}
	g.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := numberPrefix + dateKey + "-"
	if !c.seeded {
		last, err := g.store.MaxSequence(ctx, prefix)
		if err != nil {
			return "", fmt.Errorf("consecutivo inicial de %s: %w", dateKey, err)
		}
		c.last = last
		c.seeded = true
	}
	if c.last >= MaxDailySequence {
		return "", fmt.Errorf("%w: consecutivos agotados para %s", domain.ErrInvalidOperation, dateKey)
	}
	c.last++
	return fmt.Sprintf("%s%06d", prefix, c.last), nil
}
