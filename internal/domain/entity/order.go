package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del ciclo de vida de un pedido.
type OrderStatus string

// Estados del pedido. PENDING es el inicial; CANCELLED y RETURNED son terminales.
const (
	OrderStatusPending          OrderStatus = "PENDING"
	OrderStatusConfirmed        OrderStatus = "CONFIRMED"
	OrderStatusProcessing       OrderStatus = "PROCESSING"
	OrderStatusReadyForShipment OrderStatus = "READY_FOR_SHIPMENT"
	OrderStatusShipped          OrderStatus = "SHIPPED"
	OrderStatusDelivered        OrderStatus = "DELIVERED"
	OrderStatusCancelled        OrderStatus = "CANCELLED"
	OrderStatusReturned         OrderStatus = "RETURNED"
)

// OrderStatuses lista todos los estados en el orden del flujo.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusReadyForShipment,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// ShippingInfo datos de despacho del pedido.
type ShippingInfo struct {
	Address    string
	City       string
	PostalCode string
	Country    string
	Phone      string
}

// OrderItem línea de un pedido. UnitPrice es una foto del precio al momento de crear el pedido.
type OrderItem struct {
	ID          string
	OrderID     string
	LineNumber  int
	ProductID   string
	ProductSKU  string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal // Quantity * UnitPrice
}

// Order cabecera del pedido con sus líneas en orden de inserción.
type Order struct {
	ID          string
	OrderNumber string // ORD-yyyyMMdd-000001
	CustomerID  string
	Status      OrderStatus
	Items       []OrderItem
	TotalAmount decimal.Decimal
	Shipping    ShippingInfo
	Notes       string
	ProcessedBy string // operador que pasó el pedido a PROCESSING
	// StockRestored marca que la cancelación ya devolvió el stock; evita el doble crédito.
	StockRestored bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ShippedAt     *time.Time
	DeliveredAt   *time.Time
}

// Clone devuelve una copia profunda (líneas y timestamps opcionales incluidos).
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	if o.ShippedAt != nil {
		t := *o.ShippedAt
		c.ShippedAt = &t
	}
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		c.DeliveredAt = &t
	}
	return &c
}
