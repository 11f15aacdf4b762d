// Package memory implementa los puertos de persistencia en memoria del proceso.
// Lo usan las pruebas y el modo STORAGE_DRIVER=memory; los datos se pierden al reiniciar.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo almacén de productos protegido por un RWMutex. Devuelve siempre copias.
type ProductRepo struct {
	mu    sync.RWMutex
	byID  map[string]*entity.Product
	bySKU map[string]string
}

// NewProductRepository construye el repositorio vacío.
func NewProductRepository() *ProductRepo {
	return &ProductRepo{byID: make(map[string]*entity.Product), bySKU: make(map[string]string)}
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[product.ID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.bySKU[product.SKU]; ok {
		return domain.ErrDuplicate
	}
	p := *product
	r.byID[p.ID] = &p
	r.bySKU[p.SKU] = p.ID
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	r.mu.RLock()
	id, ok := r.bySKU[sku]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// Update conserva el AvailableQuantity almacenado.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[product.ID]
	if !ok {
		return domain.NotFound("producto", product.ID)
	}
	if owner, taken := r.bySKU[product.SKU]; taken && owner != product.ID {
		return domain.ErrDuplicate
	}
	delete(r.bySKU, cur.SKU)
	p := *product
	p.AvailableQuantity = cur.AvailableQuantity
	r.byID[p.ID] = &p
	r.bySKU[p.SKU] = p.ID
	return nil
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return page(r.sortedLocked(func(*entity.Product) bool { return true }), limit, offset), nil
}

func (r *ProductRepo) ListLowStock(_ context.Context) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(func(p *entity.Product) bool { return p.Active && p.IsLowStock() }), nil
}

// SetQuantities verifica todos los Expected antes de escribir cualquiera.
func (r *ProductRepo) SetQuantities(_ context.Context, changes []repository.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range changes {
		p, ok := r.byID[c.ProductID]
		if !ok {
			return domain.NotFound("producto", c.ProductID)
		}
		if p.AvailableQuantity != c.Expected {
			return fmt.Errorf("%w: producto %s tiene %d, se esperaba %d",
				domain.ErrConflict, c.ProductID, p.AvailableQuantity, c.Expected)
		}
		if c.Quantity < 0 {
			return domain.Invalid("producto %s: cantidad negativa", c.ProductID)
		}
	}
	for _, c := range changes {
		r.byID[c.ProductID].AvailableQuantity = c.Quantity
	}
	return nil
}

func (r *ProductRepo) sortedLocked(keep func(*entity.Product) bool) []*entity.Product {
	out := make([]*entity.Product, 0, len(r.byID))
	for _, p := range r.byID {
		if keep(p) {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

// page aplica limit/offset sobre un slice ya ordenado. limit <= 0 devuelve todo desde offset.
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
