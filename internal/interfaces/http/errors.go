package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusConflict).JSON(dto.InsufficientStockResponse{
			Code:      "INSUFFICIENT_STOCK",
			Message:   "stock insuficiente",
			ProductID: insufficient.ProductID,
			DepositID: insufficient.DepositID,
			Available: insufficient.Available,
			Requested: insufficient.Requested,
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrFractionSelfLink):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDepositNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "DEPOSIT_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrFractionChildMissing):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "FRACTION_CHILD_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrFractionCycle):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "FRACTION_CYCLE", Message: err.Error()})
	case errors.Is(err, domain.ErrFractionConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "FRACTION_CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
