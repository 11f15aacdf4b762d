// Package order contiene la máquina de estados del pedido como funciones puras:
// qué transiciones son legales y qué efectos colaterales dispara cada estado destino.
// Aplicar los efectos (timestamps, liberar stock) es responsabilidad del servicio de pedidos.
package order

import (
	"strings"

	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
)

// transitions tabla origen → destinos permitidos.
var transitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderStatusPending:          {entity.OrderStatusConfirmed, entity.OrderStatusCancelled},
	entity.OrderStatusConfirmed:        {entity.OrderStatusProcessing, entity.OrderStatusCancelled},
	entity.OrderStatusProcessing:       {entity.OrderStatusReadyForShipment, entity.OrderStatusCancelled},
	entity.OrderStatusReadyForShipment: {entity.OrderStatusShipped, entity.OrderStatusCancelled},
	entity.OrderStatusShipped:          {entity.OrderStatusDelivered, entity.OrderStatusReturned},
	entity.OrderStatusDelivered:        {entity.OrderStatusReturned},
	entity.OrderStatusCancelled:        nil,
	entity.OrderStatusReturned:         nil,
}

// SideEffect efecto asociado a entrar en un estado.
type SideEffect int

const (
	RecordOperator SideEffect = iota + 1 // PROCESSING: guardar el operador que actúa
	StampShipped                         // SHIPPED: fecha de despacho
	StampDelivered                       // DELIVERED: fecha de entrega
	RestoreStock                         // CANCELLED: devolver stock una sola vez
)

func (e SideEffect) String() string {
	switch e {
	case RecordOperator:
		return "RECORD_OPERATOR"
	case StampShipped:
		return "STAMP_SHIPPED"
	case StampDelivered:
		return "STAMP_DELIVERED"
	case RestoreStock:
		return "RESTORE_STOCK"
	}
	return "UNKNOWN"
}

// Validate devuelve *domain.InvalidTransitionError si from → to no está en la tabla.
func Validate(from, to entity.OrderStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return &domain.InvalidTransitionError{From: string(from), To: string(to)}
}

// CanTransition indica si la transición es legal.
func CanTransition(from, to entity.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTargets devuelve una copia de los destinos permitidos desde from.
func AllowedTargets(from entity.OrderStatus) []entity.OrderStatus {
	targets := transitions[from]
	out := make([]entity.OrderStatus, len(targets))
	copy(out, targets)
	return out
}

// IsTerminal indica si desde el estado no sale ninguna transición.
func IsTerminal(s entity.OrderStatus) bool {
	targets, known := transitions[s]
	return known && len(targets) == 0
}

// IsKnown indica si el estado pertenece al catálogo.
func IsKnown(s entity.OrderStatus) bool {
	_, ok := transitions[s]
	return ok
}

// ParseStatus normaliza (mayúsculas, sin espacios) y valida un estado recibido como texto.
func ParseStatus(raw string) (entity.OrderStatus, error) {
	s := entity.OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !IsKnown(s) {
		return "", domain.Invalid("estado desconocido %q", raw)
	}
	return s, nil
}

// SideEffectsFor devuelve los efectos que el servicio debe aplicar al entrar en to.
func SideEffectsFor(to entity.OrderStatus) []SideEffect {
	switch to {
	case entity.OrderStatusProcessing:
		return []SideEffect{RecordOperator}
	case entity.OrderStatusShipped:
		return []SideEffect{StampShipped}
	case entity.OrderStatusDelivered:
		return []SideEffect{StampDelivered}
	case entity.OrderStatusCancelled:
		return []SideEffect{RestoreStock}
	}
	return nil
}
