package handler

import (
	"github.com/gofiber/fiber/v2"

	"carproban-backend/internal/middleware"
	"carproban-backend/internal/service"
)

type TransactionHandler struct {
	service service.TransactionService
}

func NewTransactionHandler(s service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var req service.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	trx, err := h.service.Create(&req, middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transaction recorded", "data": trx, "invoice": trx.Invoice})
}

// Cancel voids a sale and restores its stock; the row stays for audit.
func (h *TransactionHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	trx, err := h.service.Cancel(id, middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction cancelled", "data": trx})
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	trx, err := h.service.GetByID(id, middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(trx)
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	transactions, err := h.service.List(middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(transactions)
}
