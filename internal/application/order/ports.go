package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-orders/internal/application/inventory"
)

// StockReserver operaciones del ledger que usa el servicio. *inventory.Ledger la satisface.
type StockReserver interface {
	ReserveAll(ctx context.Context, ref inventory.Reference, lines []inventory.Line) error
	ReleaseAll(ctx context.Context, ref inventory.Reference, lines []inventory.Line) error
}

// SequenceStore consulta el mayor consecutivo ya persistido para un prefijo de número.
// repository.OrderRepository la satisface.
type SequenceStore interface {
	MaxSequence(ctx context.Context, prefix string) (int, error)
}

// Quote precio vigente y datos descriptivos de un producto al momento de crear el pedido.
type Quote struct {
	SKU       string
	Name      string
	UnitPrice decimal.Decimal
}

// PriceCatalog entrega el precio unitario actual. Devuelve domain.ErrNotFound si el producto no existe.
type PriceCatalog interface {
	Quote(ctx context.Context, productID string) (Quote, error)
}

// Tipos de evento publicados al broker (también son la routing key en RabbitMQ).
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status"
)

// OrderEvent notificación de creación o cambio de estado de un pedido.
type OrderEvent struct {
	Type           string          `json:"type"`
	OrderID        string          `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	CustomerID     string          `json:"customer_id"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ActorID        string          `json:"actor_id,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// EventPublisher publica eventos de pedidos. Es best-effort: un error se registra y no revierte el pedido.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, evt OrderEvent) error
}

// NoopPublisher descarta los eventos (EVENTS_DRIVER=none).
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }
