package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
	"github.com/jhoicas/warehouse-orders/pkg/keylock"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

// DefaultLockWait espera máxima por el lock de un producto cuando no se configura otra.
const DefaultLockWait = 2 * time.Second

// MaxQuantity tope de una cantidad acumulada y del disponible de un producto.
// Coincide con las columnas INTEGER de Postgres.
const MaxQuantity = math.MaxInt32

// Ledger mantiene el disponible de cada producto. Las reservas de varios productos
// son todo-o-nada: los locks se toman en orden ascendente de ID, se verifica todo y
// se escribe en una sola llamada al store.
type Ledger struct {
	store    StockStore
	audit    AuditSink
	locks    *keylock.Locker
	lockWait time.Duration
	log      *logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewLedger construye el ledger. lockWait <= 0 usa DefaultLockWait.
func NewLedger(store StockStore, audit AuditSink, lockWait time.Duration, log *logger.Logger) *Ledger {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Ledger{
		store:    store,
		audit:    audit,
		locks:    keylock.New(),
		lockWait: lockWait,
		log:      log,
		tracer:   otel.Tracer("warehouse-orders/inventory"),
		now:      time.Now,
	}
}

// ReserveAll descuenta todas las líneas o ninguna.
// Errores: domain.ErrInvalidInput, domain.ErrNotFound, *domain.InsufficientStockError, domain.ErrBusy.
func (l *Ledger) ReserveAll(ctx context.Context, ref Reference, lines []Line) error {
	_, err := l.apply(ctx, "inventory.ReserveAll", entity.TransactionTypeReserved, ref, lines)
	return err
}

// ReleaseAll devuelve al disponible las cantidades indicadas. Solo el tope de MaxQuantity aplica.
func (l *Ledger) ReleaseAll(ctx context.Context, ref Reference, lines []Line) error {
	_, err := l.apply(ctx, "inventory.ReleaseAll", entity.TransactionTypeReleased, ref, lines)
	return err
}

// AdjustStock registra un movimiento manual sobre un producto: ingreso de proveedor
// (PURCHASE), ajuste al alza (ADJUSTMENT) o baja por daño o pérdida (DAMAGED).
// quantity es siempre positiva; el sentido lo da txType. Una baja nunca deja el
// disponible negativo: devuelve *domain.InsufficientStockError.
func (l *Ledger) AdjustStock(ctx context.Context, ref Reference, txType, productID string, quantity int) (*entity.Product, error) {
	if !entity.IsManualTransactionType(txType) {
		return nil, domain.Invalid("tipo de movimiento %q no admitido", txType)
	}
	products, err := l.apply(ctx, "inventory.AdjustStock", txType, ref,
		[]Line{{ProductID: productID, Quantity: quantity}})
	if err != nil {
		return nil, err
	}
	return products[productID], nil
}

func (l *Ledger) apply(ctx context.Context, spanName, txType string, ref Reference, lines []Line) (_ map[string]*entity.Product, err error) {
	ctx, span := l.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("order.id", ref.OrderID),
		attribute.Int("lines", len(lines)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	merged, requested, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}
	outbound := entity.IsOutbound(txType)
	ordered := keylock.SortedUnique(requested)

	unlock, err := l.lockProducts(ctx, ordered)
	if err != nil {
		return nil, err
	}
	defer unlock()

	products := make(map[string]*entity.Product, len(ordered))
	for _, id := range ordered {
		p, err := l.store.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("leer stock de %s: %w", id, err)
		}
		if p == nil {
			return nil, domain.NotFound("producto", id)
		}
		products[id] = p
	}
	// El faltante reportado es el primero según el orden del pedido.
	for _, id := range requested {
		p := products[id]
		if outbound && p.AvailableQuantity < merged[id] {
			return nil, &domain.InsufficientStockError{ProductID: id, Requested: merged[id], Available: p.AvailableQuantity}
		}
		if !outbound && merged[id] > MaxQuantity-p.AvailableQuantity {
			return nil, domain.Invalid("el disponible de %s excedería el máximo de %d", id, MaxQuantity)
		}
	}

	changes := make([]repository.StockChange, 0, len(ordered))
	for _, id := range ordered {
		current := products[id].AvailableQuantity
		next := current + merged[id]
		if outbound {
			next = current - merged[id]
		}
		changes = append(changes, repository.StockChange{ProductID: id, Expected: current, Quantity: next})
	}

	if err := l.store.SetQuantities(ctx, changes); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Otro proceso escribió sin pasar por este ledger.
			return nil, fmt.Errorf("%w: %v", domain.ErrBusy, err)
		}
		return nil, fmt.Errorf("escribir stock: %w", err)
	}

	for _, c := range changes {
		l.record(ctx, txType, ref, c.ProductID, merged[c.ProductID])
		p := products[c.ProductID]
		p.AvailableQuantity = c.Quantity
		if outbound && p.IsLowStock() {
			l.log.Warn().
				Str("product_id", p.ID).
				Str("sku", p.SKU).
				Int("available", p.AvailableQuantity).
				Int("minimum", p.MinimumLevel).
				Msg("stock bajo el nivel mínimo")
		}
	}
	return products, nil
}

// lockProducts toma los locks en orden; si vence la espera devuelve ErrBusy sin retener ninguno.
func (l *Ledger) lockProducts(ctx context.Context, ids []string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.lockWait)
	defer cancel()
	unlock, err := l.locks.LockAll(waitCtx, ids)
	if err == nil {
		return unlock, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("%w: lock de inventario no disponible tras %s", domain.ErrBusy, l.lockWait)
}

func (l *Ledger) record(ctx context.Context, txType string, ref Reference, productID string, qty int) {
	if l.audit == nil {
		return
	}
	l.audit.Record(ctx, &entity.InventoryTransaction{
		ID:          uuid.New().String(),
		Type:        txType,
		ProductID:   productID,
		Quantity:    qty,
		OrderID:     ref.OrderID,
		PerformedBy: ref.ActorID,
		Notes:       ref.Notes,
		CreatedAt:   l.now(),
	})
}

// mergeLines suma las líneas repetidas; requested conserva el orden de primera aparición.
// La suma por producto no puede pasar de MaxQuantity.
func mergeLines(lines []Line) (merged map[string]int, requested []string, err error) {
	if len(lines) == 0 {
		return nil, nil, domain.Invalid("la reserva no tiene líneas")
	}
	merged = make(map[string]int, len(lines))
	for i, ln := range lines {
		if ln.ProductID == "" {
			return nil, nil, domain.Invalid("línea %d sin producto", i+1)
		}
		if ln.Quantity <= 0 {
			return nil, nil, domain.Invalid("línea %d: la cantidad debe ser mayor a cero", i+1)
		}
		if ln.Quantity > MaxQuantity-merged[ln.ProductID] {
			return nil, nil, domain.Invalid("línea %d: la cantidad acumulada de %s excede el máximo de %d", i+1, ln.ProductID, MaxQuantity)
		}
		if _, seen := merged[ln.ProductID]; !seen {
			requested = append(requested, ln.ProductID)
		}
		merged[ln.ProductID] += ln.Quantity
	}
	return merged, requested, nil
}
