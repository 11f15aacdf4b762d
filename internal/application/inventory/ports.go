package inventory

import (
	"context"

	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
)

// StockStore lectura y escritura atómica de cantidades disponibles.
// repository.ProductRepository la satisface.
type StockStore interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	SetQuantities(ctx context.Context, changes []repository.StockChange) error
}

// AuditSink recibe un registro por producto tras cada reserva o liberación exitosa.
// Es best-effort: el ledger no espera ni inspecciona el resultado.
type AuditSink interface {
	Record(ctx context.Context, tx *entity.InventoryTransaction)
}

// Line cantidad solicitada de un producto.
type Line struct {
	ProductID string
	Quantity  int
}

// Reference identifica quién y para qué pedido se mueve el stock (se copia a la auditoría).
type Reference struct {
	OrderID string
	ActorID string
	Notes   string
}
