package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto con su stock inicial.
type CreateProductRequest struct {
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	InitialQuantity int             `json:"initial_quantity"`
	MinimumLevel    int             `json:"minimum_level"`
}

// UpdateProductRequest datos de catálogo modificables. El stock cambia vía pedidos o UpdateStockRequest.
type UpdateProductRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	MinimumLevel *int             `json:"minimum_level"`
	Active       *bool            `json:"active"`
}

// UpdateStockRequest movimiento manual de stock.
// Type: PURCHASE (ingreso), ADJUSTMENT (ajuste al alza) o DAMAGED (baja). Quantity siempre positiva.
type UpdateStockRequest struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
	MinimumLevel      int             `json:"minimum_level"`
	LowStock          bool            `json:"low_stock"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
