package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-orders/internal/application/dto"
	"github.com/jhoicas/warehouse-orders/internal/application/inventory"
	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
)

// StockAdjuster movimientos manuales de stock. Lo implementa inventory.Ledger.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, ref inventory.Reference, txType, productID string, quantity int) (*entity.Product, error)
}

// ProductUseCase catálogo de productos. El stock inicial se fija al crear; después solo lo cambia el ledger.
type ProductUseCase struct {
	repo  repository.ProductRepository
	stock StockAdjuster
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, stock StockAdjuster) *ProductUseCase {
	return &ProductUseCase{repo: repo, stock: stock}
}

// Create crea un nuevo producto activo.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.SKU == "":
		return nil, domain.Invalid("sku es obligatorio")
	case in.Name == "":
		return nil, domain.Invalid("name es obligatorio")
	case in.Price.LessThan(decimal.Zero):
		return nil, domain.Invalid("price no puede ser negativo")
	case in.InitialQuantity < 0:
		return nil, domain.Invalid("initial_quantity no puede ser negativo")
	case in.InitialQuantity > inventory.MaxQuantity:
		return nil, domain.Invalid("initial_quantity no puede superar %d", inventory.MaxQuantity)
	case in.MinimumLevel < 0:
		return nil, domain.Invalid("minimum_level no puede ser negativo")
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:                uuid.New().String(),
		SKU:               in.SKU,
		Name:              in.Name,
		Description:       in.Description,
		Price:             in.Price,
		AvailableQuantity: in.InitialQuantity,
		MinimumLevel:      in.MinimumLevel,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", id)
	}
	return toProductResponse(product), nil
}

// GetBySKU obtiene un producto por SKU.
func (uc *ProductUseCase) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", sku)
	}
	return toProductResponse(product), nil
}

// Update actualiza datos de catálogo. El precio nuevo solo afecta pedidos futuros.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", id)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.Invalid("name no puede quedar vacío")
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.LessThan(decimal.Zero) {
			return nil, domain.Invalid("price no puede ser negativo")
		}
		product.Price = *in.Price
	}
	if in.MinimumLevel != nil {
		if *in.MinimumLevel < 0 {
			return nil, domain.Invalid("minimum_level no puede ser negativo")
		}
		product.MinimumLevel = *in.MinimumLevel
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// UpdateStock registra un ingreso, ajuste o baja sobre el disponible de un producto.
// Pasa por el ledger: queda auditado y una baja nunca deja el stock negativo.
func (uc *ProductUseCase) UpdateStock(ctx context.Context, id, actorID string, in dto.UpdateStockRequest) (*dto.ProductResponse, error) {
	txType := strings.ToUpper(strings.TrimSpace(in.Type))
	if !entity.IsManualTransactionType(txType) {
		return nil, domain.Invalid("type debe ser PURCHASE, ADJUSTMENT o DAMAGED")
	}
	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantity debe ser mayor a cero")
	}
	ref := inventory.Reference{ActorID: actorID, Notes: strings.TrimSpace(in.Notes)}
	product, err := uc.stock.AdjustStock(ctx, ref, txType, id, in.Quantity)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.Normalize()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Items: toProductResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListLowStock productos activos con disponible en o por debajo de su nivel mínimo.
func (uc *ProductUseCase) ListLowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return toProductResponses(list), nil
}

func toProductResponses(list []*entity.Product) []dto.ProductResponse {
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		AvailableQuantity: p.AvailableQuantity,
		MinimumLevel:      p.MinimumLevel,
		LowStock:          p.IsLowStock(),
		Active:            p.Active,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
