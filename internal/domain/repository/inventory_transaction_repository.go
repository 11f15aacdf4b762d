package repository

import (
	"context"

	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
)

// InventoryTransactionRepository bitácora de movimientos del ledger (solo inserción).
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *entity.InventoryTransaction) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.InventoryTransaction, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryTransaction, error)
}
