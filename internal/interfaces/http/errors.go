package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-orders/internal/application/dto"
	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

// writeError traduce los errores de dominio a la respuesta HTTP. Lo no tipificado es 500.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var stock *domain.InsufficientStockError
	if errors.As(err, &stock) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: err.Error(),
			Details: map[string]any{
				"product_id": stock.ProductID,
				"requested":  stock.Requested,
				"available":  stock.Available,
			},
		})
	}
	var transition *domain.InvalidTransitionError
	if errors.As(err, &transition) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INVALID_TRANSITION",
			Message: err.Error(),
			Details: map[string]any{"from": transition.From, "to": transition.To},
		})
	}

	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrInvalidOperation):
		status, code = fiber.StatusConflict, "INVALID_OPERATION"
	case errors.Is(err, domain.ErrBusy):
		c.Set(fiber.HeaderRetryAfter, "1")
		status, code = fiber.StatusServiceUnavailable, "BUSY"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error no controlado")
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: "error interno"})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
