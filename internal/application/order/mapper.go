package order

import (
	"github.com/jhoicas/warehouse-orders/internal/application/dto"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	domainorder "github.com/jhoicas/warehouse-orders/internal/domain/order"
)

// ToResponse convierte el pedido al DTO público. StockRestored es interno y no se expone.
func ToResponse(o *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = dto.OrderItemResponse{
			LineNumber:  it.LineNumber,
			ProductID:   it.ProductID,
			ProductSKU:  it.ProductSKU,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		}
	}
	targets := domainorder.AllowedTargets(o.Status)
	allowed := make([]string, len(targets))
	for i, t := range targets {
		allowed[i] = string(t)
	}
	return dto.OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerID:     o.CustomerID,
		Status:         string(o.Status),
		AllowedTargets: allowed,
		Items:          items,
		TotalAmount:    o.TotalAmount,
		Shipping: dto.ShippingResponse{
			Address:    o.Shipping.Address,
			City:       o.Shipping.City,
			PostalCode: o.Shipping.PostalCode,
			Country:    o.Shipping.Country,
			Phone:      o.Shipping.Phone,
		},
		Notes:       o.Notes,
		ProcessedBy: o.ProcessedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		ShippedAt:   o.ShippedAt,
		DeliveredAt: o.DeliveredAt,
	}
}

// ToTransactionResponses convierte los movimientos de inventario al DTO.
func ToTransactionResponses(txs []*entity.InventoryTransaction) []dto.InventoryTransactionResponse {
	out := make([]dto.InventoryTransactionResponse, len(txs))
	for i, t := range txs {
		out[i] = dto.InventoryTransactionResponse{
			ID:          t.ID,
			Type:        t.Type,
			ProductID:   t.ProductID,
			Quantity:    t.Quantity,
			PerformedBy: t.PerformedBy,
			Notes:       t.Notes,
			CreatedAt:   t.CreatedAt,
		}
	}
	return out
}
