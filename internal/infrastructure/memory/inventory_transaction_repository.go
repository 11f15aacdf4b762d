package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
)

var _ repository.InventoryTransactionRepository = (*InventoryTransactionRepo)(nil)

// InventoryTransactionRepo bitácora en memoria; conserva el orden de inserción.
type InventoryTransactionRepo struct {
	mu  sync.RWMutex
	log []entity.InventoryTransaction
}

// NewInventoryTransactionRepository construye la bitácora vacía.
func NewInventoryTransactionRepository() *InventoryTransactionRepo {
	return &InventoryTransactionRepo{}
}

func (r *InventoryTransactionRepo) Create(_ context.Context, tx *entity.InventoryTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, *tx)
	return nil
}

func (r *InventoryTransactionRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.InventoryTransaction, error) {
	return r.filter(func(t *entity.InventoryTransaction) bool { return t.OrderID == orderID }), nil
}

func (r *InventoryTransactionRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.InventoryTransaction, error) {
	return page(r.filter(func(t *entity.InventoryTransaction) bool { return t.ProductID == productID }), limit, offset), nil
}

func (r *InventoryTransactionRepo) filter(keep func(*entity.InventoryTransaction) bool) []*entity.InventoryTransaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.InventoryTransaction, 0)
	for i := range r.log {
		if keep(&r.log[i]) {
			c := r.log[i]
			out = append(out, &c)
		}
	}
	return out
}
