package handler

import (
	"github.com/gofiber/fiber/v2"

	"carproban-backend/internal/middleware"
	"carproban-backend/internal/service"
)

type ReceivableHandler struct {
	service service.ReceivableService
}

func NewReceivableHandler(s service.ReceivableService) *ReceivableHandler {
	return &ReceivableHandler{service: s}
}

func (h *ReceivableHandler) List(c *fiber.Ctx) error {
	receivables, err := h.service.ListOpen(middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(receivables)
}

// Settle handles PATCH /receivables/:id — full settlement only.
func (h *ReceivableHandler) Settle(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid receivable ID"})
	}

	receivable, err := h.service.Settle(id, middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Receivable settled", "data": receivable})
}
