package handler

import (
	"github.com/gofiber/fiber/v2"

	"carproban-backend/internal/middleware"
	"carproban-backend/internal/model"
	"carproban-backend/internal/service"
)

type TransferHandler struct {
	service service.TransferService
}

func NewTransferHandler(s service.TransferService) *TransferHandler {
	return &TransferHandler{service: s}
}

func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var req service.CreateTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	transfer, err := h.service.Create(&req, middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transfer created", "data": transfer})
}

// Transition handles PATCH /transfers/:id with a target status in the body.
func (h *TransferHandler) Transition(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}

	var req struct {
		Status model.TransferStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	transfer, err := h.service.Transition(id, req.Status, middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer updated", "data": transfer})
}

func (h *TransferHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}

	transfer, err := h.service.GetByID(id, middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(transfer)
}

func (h *TransferHandler) List(c *fiber.Ctx) error {
	transfers, err := h.service.List(middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(transfers)
}
