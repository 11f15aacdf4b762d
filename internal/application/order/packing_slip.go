package order

import (
	"context"
	"fmt"

	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
)

// PackingSlipRenderer produce el documento de despacho de un pedido.
type PackingSlipRenderer interface {
	RenderPackingSlip(ctx context.Context, o *entity.Order, customer *entity.User) ([]byte, error)
}

// PackingSlipUseCase genera la guía de despacho. No aplica a pedidos cancelados o devueltos.
type PackingSlipUseCase struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	renderer PackingSlipRenderer
}

// NewPackingSlipUseCase construye el caso de uso.
func NewPackingSlipUseCase(orders repository.OrderRepository, users repository.UserRepository, renderer PackingSlipRenderer) *PackingSlipUseCase {
	return &PackingSlipUseCase{orders: orders, users: users, renderer: renderer}
}

// Download devuelve el PDF y el nombre de archivo sugerido.
func (uc *PackingSlipUseCase) Download(ctx context.Context, orderID string) ([]byte, string, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", fmt.Errorf("guía: obtener pedido: %w", err)
	}
	if o == nil {
		return nil, "", domain.NotFound("pedido", orderID)
	}
	if o.Status == entity.OrderStatusCancelled || o.Status == entity.OrderStatusReturned {
		return nil, "", fmt.Errorf("%w: el pedido %s está %s", domain.ErrInvalidOperation, o.OrderNumber, o.Status)
	}
	customer, err := uc.users.GetByID(ctx, o.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("guía: obtener cliente: %w", err)
	}
	doc, err := uc.renderer.RenderPackingSlip(ctx, o, customer)
	if err != nil {
		return nil, "", err
	}
	return doc, "guia-" + o.OrderNumber + ".pdf", nil
}
