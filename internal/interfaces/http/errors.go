package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Movimientos-api/internal/application/dto"
	"github.com/jhoicas/Movimientos-api/internal/domain"
)

// retryAfterSeconds sugerido al cliente ante contención.
const retryAfterSeconds = 1

// writeError traduce errores de dominio a estado HTTP y cuerpo ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(dto.InsufficientStockResponse{
			Code:      "INSUFFICIENT_STOCK",
			Message:   stockErr.Error(),
			ProductID: stockErr.ProductID,
			Available: stockErr.Available,
			Requested: stockErr.Requested,
			Deficit:   stockErr.Deficit(),
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "EMPTY_CART", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrOwnership):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrAllocationExhausted):
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "ALLOCATION_EXHAUSTED", Message: err.Error()})
	case errors.Is(err, domain.ErrLockTimeout):
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "LOCK_TIMEOUT", Message: "recurso ocupado, reintente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

// paramID lee un parámetro de ruta entero positivo.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
