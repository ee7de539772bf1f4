package handler

import (
	"github.com/gofiber/fiber/v2"

	"carproban-backend/internal/middleware"
	"carproban-backend/internal/service"
)

type SnapshotHandler struct {
	service service.SnapshotService
}

func NewSnapshotHandler(s service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{service: s}
}

// InitialData serves the bulk hydration payload the client loads once; later
// changes arrive over the websocket instead of wholesale re-pulls.
func (h *SnapshotHandler) InitialData(c *fiber.Ctx) error {
	data, err := h.service.InitialData(c.Context(), middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(data)
}
