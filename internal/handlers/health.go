package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"deckflow/internal/store"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	store store.DeckStore
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(deckStore store.DeckStore) *HealthHandler {
	return &HealthHandler{store: deckStore}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	status := "healthy"
	storeStatus := "up"
	code := fiber.StatusOK
	if err := h.store.Ping(c.Context()); err != nil {
		status = "degraded"
		storeStatus = "down"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"store":     storeStatus,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
