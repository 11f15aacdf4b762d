package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, customer_id, status, total_amount,
	shipping_address, shipping_city, shipping_postal_code, shipping_country, shipping_phone,
	notes, processed_by, stock_restored, created_at, updated_at, shipped_at, delivered_at`

// OrderRepo pedidos y líneas sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta cabecera y líneas en una transacción.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	return runInTx(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			o.ID, o.OrderNumber, o.CustomerID, string(o.Status), o.TotalAmount,
			o.Shipping.Address, o.Shipping.City, o.Shipping.PostalCode, o.Shipping.Country, o.Shipping.Phone,
			o.Notes, o.ProcessedBy, o.StockRestored, o.CreatedAt, o.UpdatedAt, o.ShippedAt, o.DeliveredAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert order: %w", err)
		}
		batch := &pgx.Batch{}
		for _, it := range o.Items {
			batch.Queue(`
				INSERT INTO order_items (id, order_id, line_number, product_id, product_sku, product_name, quantity, unit_price, line_total)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				it.ID, o.ID, it.LineNumber, it.ProductID, it.ProductSKU, it.ProductName, it.Quantity, it.UnitPrice, it.LineTotal,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
}

// Update persiste los campos mutables del ciclo de vida. Las líneas no cambian.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET status = $2, notes = $3, processed_by = $4, stock_restored = $5,
			updated_at = $6, shipped_at = $7, delivered_at = $8
		WHERE id = $1`,
		o.ID, string(o.Status), o.Notes, o.ProcessedBy, o.StockRestored, o.UpdatedAt, o.ShippedAt, o.DeliveredAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("pedido", o.ID)
	}
	return nil
}

// GetByID obtiene un pedido con sus líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByNumber obtiene un pedido por su número.
func (r *OrderRepo) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number)
}

func (r *OrderRepo) getOne(ctx context.Context, query, arg string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.attachItems(ctx, []*entity.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// List filtra por cliente y estado; más recientes primero.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	var (
		where []string
		args  []any
	)
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, order_number DESC LIMIT NULLIF($%d, 0) OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// MaxSequence mayor sufijo numérico entre los números que empiezan con prefix.
func (r *OrderRepo) MaxSequence(ctx context.Context, prefix string) (int, error) {
	var seq int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM LENGTH($1) + 1) AS INTEGER)), 0)
		FROM orders WHERE LEFT(order_number, LENGTH($1)) = $1`, prefix).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max order sequence: %w", err)
	}
	return seq, nil
}

func (r *OrderRepo) attachItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*entity.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
		o.Items = make([]entity.OrderItem, 0)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, line_number, product_id, product_sku, product_name, quantity, unit_price, line_total
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, line_number`, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.LineNumber, &it.ProductID, &it.ProductSKU,
			&it.ProductName, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o := byID[it.OrderID]
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o      entity.Order
		status string
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &status, &o.TotalAmount,
		&o.Shipping.Address, &o.Shipping.City, &o.Shipping.PostalCode, &o.Shipping.Country, &o.Shipping.Phone,
		&o.Notes, &o.ProcessedBy, &o.StockRestored, &o.CreatedAt, &o.UpdatedAt, &o.ShippedAt, &o.DeliveredAt)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	return &o, nil
}
