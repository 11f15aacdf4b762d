package order

import (
	"context"
	"fmt"

	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
)

// ProductPriceCatalog toma el precio vigente directamente del catálogo de productos.
type ProductPriceCatalog struct {
	products repository.ProductRepository
}

// NewProductPriceCatalog construye el adaptador.
func NewProductPriceCatalog(products repository.ProductRepository) *ProductPriceCatalog {
	return &ProductPriceCatalog{products: products}
}

func (c *ProductPriceCatalog) Quote(ctx context.Context, productID string) (Quote, error) {
	p, err := c.products.GetByID(ctx, productID)
	if err != nil {
		return Quote{}, fmt.Errorf("leer producto: %w", err)
	}
	if p == nil {
		return Quote{}, domain.NotFound("producto", productID)
	}
	return Quote{SKU: p.SKU, Name: p.Name, UnitPrice: p.Price}, nil
}
