package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrInvalidOperation  = errors.New("operación no permitida en el estado actual")
	ErrBusy              = errors.New("recurso ocupado, reintente más tarde")
)

// InsufficientStockError detalla el primer producto que no alcanzó a cubrir la reserva.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidTransitionError indica un cambio de estado que no está en la tabla de transiciones.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición de estado inválida de %s a %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// Invalid envuelve ErrInvalidInput con el detalle del campo rechazado.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound envuelve ErrNotFound indicando el tipo de recurso y su identificador.
func NotFound(resource, id string) error {
	return fmt.Errorf("%s %s: %w", resource, id, ErrNotFound)
}
