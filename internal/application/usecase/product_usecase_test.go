package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-orders/internal/application/dto"
	"github.com/jhoicas/warehouse-orders/internal/application/inventory"
	"github.com/jhoicas/warehouse-orders/internal/application/usecase"
	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/infrastructure/memory"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

// historySink escribe la auditoría del ledger de forma síncrona.
type historySink struct{ repo *memory.InventoryTransactionRepo }

func (s historySink) Record(ctx context.Context, tx *entity.InventoryTransaction) { _ = s.repo.Create(ctx, tx) }

func newProductUseCase(t *testing.T) (*usecase.ProductUseCase, *memory.InventoryTransactionRepo) {
	t.Helper()
	products := memory.NewProductRepository()
	history := memory.NewInventoryTransactionRepository()
	ledger := inventory.NewLedger(products, historySink{repo: history}, time.Second, logger.Nop())
	return usecase.NewProductUseCase(products, ledger), history
}

func TestProductUseCase_CrearYConsultar(t *testing.T) {
	ctx := context.Background()
	uc, _ := newProductUseCase(t)

	p, err := uc.Create(ctx, dto.CreateProductRequest{
		SKU: " SKU-A ", Name: "Producto A", Price: decimal.NewFromInt(10), InitialQuantity: 3, MinimumLevel: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "SKU-A", p.SKU)
	assert.Equal(t, 3, p.AvailableQuantity)
	assert.True(t, p.LowStock)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "SKU-A", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	bySKU, err := uc.GetBySKU(ctx, "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySKU.ID)

	low, err := uc.ListLowStock(ctx)
	require.NoError(t, err)
	assert.Len(t, low, 1)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_Validaciones(t *testing.T) {
	uc, _ := newProductUseCase(t)
	cases := []dto.CreateProductRequest{
		{Name: "sin sku"},
		{SKU: "X"},
		{SKU: "X", Name: "n", Price: decimal.NewFromInt(-1)},
		{SKU: "X", Name: "n", InitialQuantity: -1},
		{SKU: "X", Name: "n", InitialQuantity: inventory.MaxQuantity + 1},
		{SKU: "X", Name: "n", MinimumLevel: -1},
	}
	for _, in := range cases {
		_, err := uc.Create(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestProductUseCase_UpdateNoCambiaStock(t *testing.T) {
	ctx := context.Background()
	uc, _ := newProductUseCase(t)
	p, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A", InitialQuantity: 7})
	require.NoError(t, err)

	price := decimal.NewFromInt(99)
	updated, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, 7, updated.AvailableQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateStock
// ──────────────────────────────────────────────────────────────────────────────

func TestProductUseCase_UpdateStockIngresoYBaja(t *testing.T) {
	ctx := context.Background()
	uc, history := newProductUseCase(t)
	p, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A", InitialQuantity: 2, MinimumLevel: 5})
	require.NoError(t, err)

	in, err := uc.UpdateStock(ctx, p.ID, "op-1", dto.UpdateStockRequest{Type: " purchase ", Quantity: 20, Notes: "factura 881"})
	require.NoError(t, err)
	assert.Equal(t, 22, in.AvailableQuantity)
	assert.False(t, in.LowStock)

	out, err := uc.UpdateStock(ctx, p.ID, "op-1", dto.UpdateStockRequest{Type: "DAMAGED", Quantity: 18})
	require.NoError(t, err)
	assert.Equal(t, 4, out.AvailableQuantity)
	assert.True(t, out.LowStock)

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.AvailableQuantity)

	txs, err := history.ListByProduct(ctx, p.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	types := []string{txs[0].Type, txs[1].Type}
	assert.ElementsMatch(t, []string{entity.TransactionTypePurchase, entity.TransactionTypeDamaged}, types)
	for _, tx := range txs {
		assert.Equal(t, "op-1", tx.PerformedBy)
		assert.Empty(t, tx.OrderID)
	}
}

func TestProductUseCase_UpdateStockRechazos(t *testing.T) {
	ctx := context.Background()
	uc, history := newProductUseCase(t)
	p, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A", InitialQuantity: 5})
	require.NoError(t, err)

	tests := []struct {
		name string
		id   string
		in   dto.UpdateStockRequest
		want error
	}{
		{"tipo vacío", p.ID, dto.UpdateStockRequest{Quantity: 1}, domain.ErrInvalidInput},
		{"tipo de pedido", p.ID, dto.UpdateStockRequest{Type: "RESERVED", Quantity: 1}, domain.ErrInvalidInput},
		{"cantidad cero", p.ID, dto.UpdateStockRequest{Type: "PURCHASE"}, domain.ErrInvalidInput},
		{"cantidad negativa", p.ID, dto.UpdateStockRequest{Type: "ADJUSTMENT", Quantity: -2}, domain.ErrInvalidInput},
		{"baja sobre el disponible", p.ID, dto.UpdateStockRequest{Type: "DAMAGED", Quantity: 6}, domain.ErrInsufficientStock},
		{"producto inexistente", "nope", dto.UpdateStockRequest{Type: "PURCHASE", Quantity: 1}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.UpdateStock(ctx, tt.id, "op-1", tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AvailableQuantity)
	txs, err := history.ListByProduct(ctx, p.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
