package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"carproban-backend/internal/apperr"
)

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error and is not leaked to the caller.
func writeError(c *fiber.Ctx, err error) error {
	var (
		validationErr *apperr.ValidationError
		stockErr      *apperr.InsufficientStockError
		authErr       *apperr.AuthorizationError
		notFoundErr   *apperr.NotFoundError
		stateErr      *apperr.StateTransitionError
		conflictErr   *apperr.ConflictError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &stockErr), errors.As(err, &stateErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &authErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

// parseUUID parses a path parameter.
func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
