package repository

import (
	"context"

	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
)

// StockChange nuevo disponible de un producto. Expected es el valor leído bajo el lock del ledger;
// el adaptador rechaza el cambio si el valor almacenado ya no coincide.
type StockChange struct {
	ProductID string
	Expected  int
	Quantity  int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetBySKU devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// Update modifica datos de catálogo; nunca toca AvailableQuantity.
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	ListLowStock(ctx context.Context) ([]*entity.Product, error)
	// SetQuantities aplica todos los cambios o ninguno (domain.ErrConflict si algún Expected no coincide).
	SetQuantities(ctx context.Context, changes []StockChange) error
}
