package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
)

var _ repository.InventoryTransactionRepository = (*InventoryTransactionRepo)(nil)

// InventoryTransactionRepo bitácora append-only de movimientos del ledger.
type InventoryTransactionRepo struct {
	q Querier
}

// NewInventoryTransactionRepository construye el adaptador.
func NewInventoryTransactionRepository(q Querier) *InventoryTransactionRepo {
	return &InventoryTransactionRepo{q: q}
}

// Create inserta un movimiento. order_id y performed_by vacíos se guardan como NULL.
func (r *InventoryTransactionRepo) Create(ctx context.Context, tx *entity.InventoryTransaction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_transactions (id, type, product_id, quantity, order_id, performed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)`,
		tx.ID, tx.Type, tx.ProductID, tx.Quantity, tx.OrderID, tx.PerformedBy, tx.Notes, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory transaction: %w", err)
	}
	return nil
}

// ListByOrder movimientos de un pedido en orden cronológico.
func (r *InventoryTransactionRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.InventoryTransaction, error) {
	return r.list(ctx, `
		SELECT id, type, product_id, quantity, COALESCE(order_id, ''), COALESCE(performed_by, ''), notes, created_at
		FROM inventory_transactions WHERE order_id = $1 ORDER BY created_at, id`, orderID)
}

// ListByProduct movimientos de un producto, más recientes primero.
func (r *InventoryTransactionRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryTransaction, error) {
	return r.list(ctx, `
		SELECT id, type, product_id, quantity, COALESCE(order_id, ''), COALESCE(performed_by, ''), notes, created_at
		FROM inventory_transactions WHERE product_id = $1 ORDER BY created_at DESC LIMIT NULLIF($2, 0) OFFSET $3`,
		productID, limit, offset)
}

func (r *InventoryTransactionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryTransaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory transactions: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.InventoryTransaction, 0)
	for rows.Next() {
		var t entity.InventoryTransaction
		if err := rows.Scan(&t.ID, &t.Type, &t.ProductID, &t.Quantity, &t.OrderID, &t.PerformedBy, &t.Notes, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory transaction: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
