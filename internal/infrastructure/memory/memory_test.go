package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
	"github.com/jhoicas/warehouse-orders/internal/infrastructure/memory"
)

func seedProduct(t *testing.T, r *memory.ProductRepo, id, sku string, qty int) {
	t.Helper()
	require.NoError(t, r.Create(context.Background(), &entity.Product{ID: id, SKU: sku, Name: sku, AvailableQuantity: qty, Active: true}))
}

func TestProductRepo_SetQuantitiesTodoONada(t *testing.T) {
	ctx := context.Background()
	r := memory.NewProductRepository()
	seedProduct(t, r, "p1", "A", 10)
	seedProduct(t, r, "p2", "B", 5)

	err := r.SetQuantities(ctx, []repository.StockChange{
		{ProductID: "p1", Expected: 10, Quantity: 7},
		{ProductID: "p2", Expected: 4, Quantity: 2}, // valor esperado desactualizado
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	p1, _ := r.GetByID(ctx, "p1")
	assert.Equal(t, 10, p1.AvailableQuantity, "ningún cambio debe aplicarse si uno falla")

	require.NoError(t, r.SetQuantities(ctx, []repository.StockChange{
		{ProductID: "p1", Expected: 10, Quantity: 7},
		{ProductID: "p2", Expected: 5, Quantity: 2},
	}))
	p2, _ := r.GetByID(ctx, "p2")
	assert.Equal(t, 2, p2.AvailableQuantity)
}

func TestProductRepo_UpdateNoTocaStock(t *testing.T) {
	ctx := context.Background()
	r := memory.NewProductRepository()
	seedProduct(t, r, "p1", "A", 10)

	require.NoError(t, r.Update(ctx, &entity.Product{ID: "p1", SKU: "A2", Name: "Nuevo", AvailableQuantity: 999}))
	p, _ := r.GetBySKU(ctx, "A2")
	require.NotNil(t, p)
	assert.Equal(t, 10, p.AvailableQuantity)

	old, _ := r.GetBySKU(ctx, "A")
	assert.Nil(t, old)
}

func TestProductRepo_ListLowStock(t *testing.T) {
	ctx := context.Background()
	r := memory.NewProductRepository()
	require.NoError(t, r.Create(ctx, &entity.Product{ID: "p1", SKU: "A", AvailableQuantity: 2, MinimumLevel: 5, Active: true}))
	require.NoError(t, r.Create(ctx, &entity.Product{ID: "p2", SKU: "B", AvailableQuantity: 9, MinimumLevel: 5, Active: true}))

	low, err := r.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "p1", low[0].ID)
}

func TestOrderRepo_MaxSequenceYListado(t *testing.T) {
	ctx := context.Background()
	r := memory.NewOrderRepository()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, n := range []string{"ORD-20240101-000003", "ORD-20240101-000011", "ORD-20240102-000050"} {
		require.NoError(t, r.Create(ctx, &entity.Order{
			ID: n, OrderNumber: n, CustomerID: "c1", Status: entity.OrderStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	seq, err := r.MaxSequence(ctx, "ORD-20240101-")
	require.NoError(t, err)
	assert.Equal(t, 11, seq)

	seq, err = r.MaxSequence(ctx, "ORD-20991231-")
	require.NoError(t, err)
	assert.Equal(t, 0, seq)

	list, err := r.List(ctx, repository.OrderFilter{CustomerID: "c1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ORD-20240102-000050", list[0].OrderNumber, "más reciente primero")

	got, err := r.GetByNumber(ctx, "ORD-20240101-000011")
	require.NoError(t, err)
	got.Status = entity.OrderStatusCancelled
	again, _ := r.GetByNumber(ctx, "ORD-20240101-000011")
	assert.Equal(t, entity.OrderStatusPending, again.Status, "el repositorio entrega copias")
}
