package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del almacén con su stock disponible.
// AvailableQuantity solo lo modifica el ledger de inventario (reservas y liberaciones).
type Product struct {
	ID                string
	SKU               string // único
	Name              string
	Description       string
	Price             decimal.Decimal // precio de venta vigente
	AvailableQuantity int             // nunca negativo
	MinimumLevel      int             // umbral de alerta, no bloquea movimientos
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock indica si el disponible quedó en o por debajo del nivel mínimo.
func (p *Product) IsLowStock() bool {
	return p.AvailableQuantity <= p.MinimumLevel
}
