package order_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-orders/internal/application/order"
	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/infrastructure/memory"
)

type stubRenderer struct {
	gotCustomer *entity.User
}

func (s *stubRenderer) RenderPackingSlip(_ context.Context, _ *entity.Order, customer *entity.User) ([]byte, error) {
	s.gotCustomer = customer
	return []byte("%PDF-stub"), nil
}

func TestPackingSlip_Download(t *testing.T) {
	ctx := context.Background()
	orders := memory.NewOrderRepository()
	users := memory.NewUserRepository(&entity.User{ID: "c1", Name: "Ana"})
	require.NoError(t, orders.Create(ctx, &entity.Order{ID: "o1", OrderNumber: "ORD-20240101-000001", CustomerID: "c1", Status: entity.OrderStatusConfirmed}))
	require.NoError(t, orders.Create(ctx, &entity.Order{ID: "o2", OrderNumber: "ORD-20240101-000002", CustomerID: "c1", Status: entity.OrderStatusCancelled}))

	renderer := &stubRenderer{}
	uc := order.NewPackingSlipUseCase(orders, users, renderer)

	doc, name, err := uc.Download(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "guia-ORD-20240101-000001.pdf", name)
	assert.Equal(t, []byte("%PDF-stub"), doc)
	require.NotNil(t, renderer.gotCustomer)
	assert.Equal(t, "Ana", renderer.gotCustomer.Name)

	_, _, err = uc.Download(ctx, "o2")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	_, _, err = uc.Download(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
