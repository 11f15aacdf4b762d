package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos en memoria indexados por ID y número.
type OrderRepo struct {
	mu       sync.RWMutex
	byID     map[string]*entity.Order
	byNumber map[string]string
}

// NewOrderRepository construye el repositorio vacío.
func NewOrderRepository() *OrderRepo {
	return &OrderRepo{byID: make(map[string]*entity.Order), byNumber: make(map[string]string)}
}

func (r *OrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[order.ID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.byNumber[order.OrderNumber]; ok {
		return domain.ErrDuplicate
	}
	r.byID[order.ID] = order.Clone()
	r.byNumber[order.OrderNumber] = order.ID
	return nil
}

// Update reemplaza el pedido completo; número y líneas no cambian después de crear.
func (r *OrderRepo) Update(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[order.ID]; !ok {
		return domain.NotFound("pedido", order.ID)
	}
	r.byID[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id].Clone(), nil
}

func (r *OrderRepo) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	r.mu.RLock()
	id, ok := r.byNumber[number]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// List ordena por fecha de creación descendente, como el adaptador PostgreSQL.
func (r *OrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Order, 0)
	for _, o := range r.byID {
		if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].OrderNumber > out[j].OrderNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *OrderRepo) MaxSequence(_ context.Context, prefix string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	highest := 0
	for number := range r.byNumber {
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest, nil
}
