package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de un pedido nuevo.
type OrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ShippingRequest datos de despacho; los campos vacíos se toman del cliente.
type ShippingRequest struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// CreateOrderRequest entrada de POST /api/orders. CustomerID vacío usa el usuario del token.
type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Items      []OrderItemRequest `json:"items"`
	Shipping   *ShippingRequest   `json:"shipping,omitempty"`
	Notes      string             `json:"notes"`
}

// UpdateOrderStatusRequest entrada de PUT /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// CancelOrderRequest cuerpo opcional de DELETE /api/orders/:id.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// OrderItemResponse línea de pedido.
type OrderItemResponse struct {
	LineNumber  int             `json:"line_number"`
	ProductID   string          `json:"product_id"`
	ProductSKU  string          `json:"product_sku"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// ShippingResponse datos de despacho.
type ShippingResponse struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID             string              `json:"id"`
	OrderNumber    string              `json:"order_number"`
	CustomerID     string              `json:"customer_id"`
	Status         string              `json:"status"`
	AllowedTargets []string            `json:"allowed_status_changes"`
	Items          []OrderItemResponse `json:"items"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	Shipping       ShippingResponse    `json:"shipping"`
	Notes          string              `json:"notes,omitempty"`
	ProcessedBy    string              `json:"processed_by,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	ShippedAt      *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// InventoryTransactionResponse movimiento de inventario asociado a un pedido.
type InventoryTransactionResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	PerformedBy string    `json:"performed_by,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
