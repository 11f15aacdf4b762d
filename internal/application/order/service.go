// Package order orquesta el ciclo de vida del pedido: creación con reserva de stock,
// cambios de estado según la máquina de estados y cancelación con devolución de stock.
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/warehouse-orders/internal/application/inventory"
	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	domainorder "github.com/jhoicas/warehouse-orders/internal/domain/order"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
	"github.com/jhoicas/warehouse-orders/pkg/keylock"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ItemInput línea solicitada.
type ItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput datos para crear un pedido. Shipping nil toma la dirección del cliente.
type CreateOrderInput struct {
	CustomerID string
	Items      []ItemInput
	Shipping   *entity.ShippingInfo
	Notes      string
	ActorID    string // vacío: el propio cliente
}

// ListFilter criterios de listado (cliente, estado, paginación).
type ListFilter = repository.OrderFilter

// Service caso de uso principal de pedidos.
type Service struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	history  repository.InventoryTransactionRepository
	stock    StockReserver
	numbers  *NumberGenerator
	prices   PriceCatalog
	events   EventPublisher
	locks    *keylock.Locker
	lockWait time.Duration
	log      *logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewService construye el servicio. events nil equivale a NoopPublisher; lockWait <= 0 usa inventory.DefaultLockWait.
func NewService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	history repository.InventoryTransactionRepository,
	stock StockReserver,
	numbers *NumberGenerator,
	prices PriceCatalog,
	events EventPublisher,
	lockWait time.Duration,
	log *logger.Logger,
) *Service {
	if events == nil {
		events = NoopPublisher{}
	}
	if lockWait <= 0 {
		lockWait = inventory.DefaultLockWait
	}
	return &Service{
		orders:   orders,
		users:    users,
		history:  history,
		stock:    stock,
		numbers:  numbers,
		prices:   prices,
		events:   events,
		locks:    keylock.New(),
		lockWait: lockWait,
		log:      log,
		tracer:   otel.Tracer("warehouse-orders/order"),
		now:      time.Now,
	}
}

// CreateOrder reserva todo el stock, valoriza, numera y persiste el pedido en PENDING.
// Si algo falla después de reservar, la reserva se libera antes de devolver el error.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (_ *entity.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "order.CreateOrder", trace.WithAttributes(
		attribute.String("customer.id", in.CustomerID),
		attribute.Int("items", len(in.Items)),
	))
	defer endSpan(span, &err)

	if err := validateCreate(in); err != nil {
		return nil, err
	}
	customer, err := s.users.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("buscar cliente: %w", err)
	}
	if customer == nil {
		return nil, domain.NotFound("cliente", in.CustomerID)
	}
	actorID := in.ActorID
	if actorID == "" {
		actorID = customer.ID
	}

	orderID := uuid.New().String()
	lines := make([]inventory.Line, len(in.Items))
	for i, it := range in.Items {
		lines[i] = inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	ref := inventory.Reference{OrderID: orderID, ActorID: actorID, Notes: "reserva de pedido"}
	if err := s.stock.ReserveAll(ctx, ref, lines); err != nil {
		return nil, err
	}

	order, err := s.buildOrder(ctx, orderID, customer, in)
	if err == nil {
		err = s.orders.Create(ctx, order)
	}
	if err != nil {
		s.undoReservation(ctx, ref, lines, err)
		return nil, err
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("customer_id", order.CustomerID).
		Str("total", order.TotalAmount.String()).
		Msg("pedido creado")
	s.publish(ctx, order, EventOrderPlaced, "", actorID)
	return order, nil
}

func (s *Service) buildOrder(ctx context.Context, orderID string, customer *entity.User, in CreateOrderInput) (*entity.Order, error) {
	now := s.now()
	items := make([]entity.OrderItem, len(in.Items))
	total := decimal.Zero
	for i, it := range in.Items {
		q, err := s.prices.Quote(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("precio de %s: %w", it.ProductID, err)
		}
		lineTotal := q.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		items[i] = entity.OrderItem{
			ID:          uuid.New().String(),
			OrderID:     orderID,
			LineNumber:  i + 1,
			ProductID:   it.ProductID,
			ProductSKU:  q.SKU,
			ProductName: q.Name,
			Quantity:    it.Quantity,
			UnitPrice:   q.UnitPrice,
			LineTotal:   lineTotal,
		}
		total = total.Add(lineTotal)
	}

	number, err := s.numbers.Next(ctx, s.numbers.DateKey(now))
	if err != nil {
		return nil, err
	}

	shipping := customer.DefaultShipping()
	if in.Shipping != nil {
		shipping = mergeShipping(*in.Shipping, shipping)
	}
	return &entity.Order{
		ID:          orderID,
		OrderNumber: number,
		CustomerID:  customer.ID,
		Status:      entity.OrderStatusPending,
		Items:       items,
		TotalAmount: total,
		Shipping:    shipping,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// undoReservation libera la reserva aunque el context del llamador ya esté cancelado.
func (s *Service) undoReservation(ctx context.Context, ref inventory.Reference, lines []inventory.Line, cause error) {
	ref.Notes = "reversión de reserva"
	if err := s.stock.ReleaseAll(context.WithoutCancel(ctx), ref, lines); err != nil {
		s.log.Error().Err(err).
			Str("order_id", ref.OrderID).
			AnErr("cause", cause).
			Msg("no se pudo revertir la reserva; stock retenido sin pedido")
	}
}

// UpdateStatus valida la transición contra la tabla, aplica sus efectos y persiste.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, target entity.OrderStatus, actorID, notes string) (*entity.Order, error) {
	return s.transition(ctx, "order.UpdateStatus", orderID, target, actorID, notes, nil)
}

// CancelOrder cancela el pedido y devuelve el stock una sola vez.
// Después del despacho (SHIPPED, DELIVERED) o si ya está cancelado responde domain.ErrInvalidOperation.
func (s *Service) CancelOrder(ctx context.Context, orderID, reason, actorID string) (*entity.Order, error) {
	return s.transition(ctx, "order.CancelOrder", orderID, entity.OrderStatusCancelled, actorID, reason, cancellable)
}

func cancellable(o *entity.Order) error {
	switch o.Status {
	case entity.OrderStatusShipped, entity.OrderStatusDelivered:
		return fmt.Errorf("%w: el pedido %s ya fue despachado (%s)", domain.ErrInvalidOperation, o.OrderNumber, o.Status)
	case entity.OrderStatusCancelled:
		return fmt.Errorf("%w: el pedido %s ya está cancelado", domain.ErrInvalidOperation, o.OrderNumber)
	}
	return nil
}

func (s *Service) transition(
	ctx context.Context,
	spanName, orderID string,
	target entity.OrderStatus,
	actorID, notes string,
	guard func(*entity.Order) error,
) (_ *entity.Order, err error) {
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.target_status", string(target)),
	))
	defer endSpan(span, &err)

	unlock, err := s.lockOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("buscar pedido: %w", err)
	}
	if current == nil {
		return nil, domain.NotFound("pedido", orderID)
	}
	if guard != nil {
		if err := guard(current); err != nil {
			return nil, err
		}
	}
	if err := domainorder.Validate(current.Status, target); err != nil {
		return nil, err
	}

	now := s.now()
	updated := current.Clone()
	released := false
	for _, effect := range domainorder.SideEffectsFor(target) {
		switch effect {
		case domainorder.RecordOperator:
			if err := s.requireUser(ctx, actorID); err != nil {
				return nil, err
			}
			updated.ProcessedBy = actorID
		case domainorder.StampShipped:
			updated.ShippedAt = &now
		case domainorder.StampDelivered:
			updated.DeliveredAt = &now
		case domainorder.RestoreStock:
			if updated.StockRestored {
				continue
			}
			if err := s.stock.ReleaseAll(ctx, s.stockRef(updated, actorID, "cancelación de pedido"), itemLines(updated)); err != nil {
				return nil, fmt.Errorf("devolver stock: %w", err)
			}
			updated.StockRestored = true
			released = true
		}
	}
	updated.Status = target
	if n := strings.TrimSpace(notes); n != "" {
		updated.Notes = n
	}
	updated.UpdatedAt = now

	if err := s.orders.Update(ctx, updated); err != nil {
		if released {
			s.redoReservation(ctx, updated, actorID, err)
		}
		return nil, fmt.Errorf("guardar pedido: %w", err)
	}

	s.log.Info().
		Str("order_id", updated.ID).
		Str("from", string(current.Status)).
		Str("to", string(target)).
		Str("actor_id", actorID).
		Msg("estado de pedido actualizado")
	s.publish(ctx, updated, EventOrderStatusChanged, current.Status, actorID)
	return updated, nil
}

// redoReservation vuelve a descontar el stock devuelto cuando el pedido no pudo guardarse como cancelado.
func (s *Service) redoReservation(ctx context.Context, o *entity.Order, actorID string, cause error) {
	ref := s.stockRef(o, actorID, "reversión de cancelación")
	if err := s.stock.ReserveAll(context.WithoutCancel(ctx), ref, itemLines(o)); err != nil {
		s.log.Error().Err(err).
			Str("order_id", o.ID).
			AnErr("cause", cause).
			Msg("no se pudo revertir la devolución de stock de un pedido no cancelado")
	}
}

func (s *Service) requireUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.Invalid("se requiere el operador que procesa el pedido")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("buscar operador: %w", err)
	}
	if u == nil {
		return domain.NotFound("usuario", userID)
	}
	return nil
}

func (s *Service) lockOrder(ctx context.Context, orderID string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	unlock, err := s.locks.Lock(waitCtx, orderID)
	if err == nil {
		return unlock, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("%w: pedido %s en uso", domain.ErrBusy, orderID)
}

func (s *Service) stockRef(o *entity.Order, actorID, notes string) inventory.Reference {
	return inventory.Reference{OrderID: o.ID, ActorID: actorID, Notes: notes}
}

// GetByID devuelve domain.ErrNotFound si el pedido no existe.
func (s *Service) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("pedido", id)
	}
	return o, nil
}

// GetByNumber busca por número ORD-yyyyMMdd-NNNNNN.
func (s *Service) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	o, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("pedido", number)
	}
	return o, nil
}

// List aplica la paginación por defecto (20, máximo 100).
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*entity.Order, error) {
	if filter.Status != "" && !domainorder.IsKnown(filter.Status) {
		return nil, domain.Invalid("estado desconocido %q", filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.orders.List(ctx, filter)
}

// ListTransactions movimientos de inventario registrados para el pedido.
func (s *Service) ListTransactions(ctx context.Context, orderID string) ([]*entity.InventoryTransaction, error) {
	if _, err := s.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.history.ListByOrder(ctx, orderID)
}

func (s *Service) publish(ctx context.Context, o *entity.Order, eventType string, previous entity.OrderStatus, actorID string) {
	evt := OrderEvent{
		Type:           eventType,
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerID:     o.CustomerID,
		Status:         string(o.Status),
		PreviousStatus: string(previous),
		TotalAmount:    o.TotalAmount,
		ActorID:        actorID,
		OccurredAt:     o.UpdatedAt,
	}
	if err := s.events.PublishOrderEvent(ctx, evt); err != nil {
		s.log.Warn().Err(err).
			Str("order_id", o.ID).
			Str("event", eventType).
			Msg("no se pudo publicar el evento de pedido")
	}
}

func validateCreate(in CreateOrderInput) error {
	if strings.TrimSpace(in.CustomerID) == "" {
		return domain.Invalid("el cliente es obligatorio")
	}
	if len(in.Items) == 0 {
		return domain.Invalid("el pedido debe tener al menos una línea")
	}
	totals := make(map[string]int, len(in.Items))
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.Invalid("línea %d: el producto es obligatorio", i+1)
		}
		if it.Quantity <= 0 {
			return domain.Invalid("línea %d: la cantidad debe ser mayor a cero", i+1)
		}
		if it.Quantity > inventory.MaxQuantity-totals[it.ProductID] {
			return domain.Invalid("línea %d: la cantidad de %s excede el máximo de %d", i+1, it.ProductID, inventory.MaxQuantity)
		}
		totals[it.ProductID] += it.Quantity
	}
	return nil
}

// mergeShipping completa los campos vacíos con los del cliente.
func mergeShipping(in, fallback entity.ShippingInfo) entity.ShippingInfo {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return entity.ShippingInfo{
		Address:    pick(in.Address, fallback.Address),
		City:       pick(in.City, fallback.City),
		PostalCode: pick(in.PostalCode, fallback.PostalCode),
		Country:    pick(in.Country, fallback.Country),
		Phone:      pick(in.Phone, fallback.Phone),
	}
}

func itemLines(o *entity.Order) []inventory.Line {
	lines := make([]inventory.Line, len(o.Items))
	for i, it := range o.Items {
		lines[i] = inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return lines
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
