package repository

import (
	"context"

	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
)

// OrderFilter criterios de listado de pedidos. Campos vacíos no filtran.
type OrderFilter struct {
	CustomerID string
	Status     entity.OrderStatus
	Limit      int
	Offset     int
}

// OrderRepository define el puerto de persistencia para pedidos y sus líneas.
// GetByID y GetByNumber devuelven (nil, nil) si no existe.
type OrderRepository interface {
	// Create persiste cabecera y líneas en una sola operación atómica.
	Create(ctx context.Context, order *entity.Order) error
	// Update persiste estado, notas, operador, timestamps y la marca de stock restaurado.
	Update(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByNumber(ctx context.Context, number string) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	// MaxSequence devuelve el mayor consecutivo usado con el prefijo dado (0 si ninguno).
	MaxSequence(ctx context.Context, prefix string) (int, error)
}
