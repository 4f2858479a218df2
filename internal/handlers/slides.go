package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"deckflow/internal/generation"
	"deckflow/internal/models"
	"deckflow/internal/services"
	"deckflow/internal/store"
)

// SlideHandler handles per-slide operations on completed decks
type SlideHandler struct {
	slides       *generation.SlideService
	summaryCache *services.SummaryCacheService
}

// NewSlideHandler creates a new slide handler
func NewSlideHandler(slides *generation.SlideService, summaryCache *services.SummaryCacheService) *SlideHandler {
	return &SlideHandler{slides: slides, summaryCache: summaryCache}
}

// ModifySlide regenerates one slide through the content model. The rewrite
// runs in the background; progress shows up through the deck status.
// POST /api/decks/:deckID/slides/:order/modify
func (h *SlideHandler) ModifySlide(c *fiber.Ctx) error {
	deckID := c.Params("deckID")
	order, ok := parseSlideOrder(c)
	if !ok {
		return nil
	}

	var req models.ModifySlideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.slides.StartModify(c.Context(), deckID, order, req.ModificationPrompt); err != nil {
		return h.slideError(c, deckID, order, "modify", err)
	}
	h.summaryCache.Invalidate()

	log.Printf("🔄 [SLIDES] Modifying slide %d of deck %s", order, deckID)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"deck_id":     deckID,
		"slide_order": order,
		"status":      string(models.DeckStatusModifying),
	})
}

// GetSlideVersions returns the version history of a slide
// GET /api/decks/:deckID/slides/:order/versions
func (h *SlideHandler) GetSlideVersions(c *fiber.Ctx) error {
	deckID := c.Params("deckID")
	order, ok := parseSlideOrder(c)
	if !ok {
		return nil
	}

	versions, err := h.slides.Versions(c.Context(), deckID, order)
	if err != nil {
		return h.slideError(c, deckID, order, "load versions for", err)
	}
	return c.JSON(versions)
}

// RevertSlide restores a prior slide version
// POST /api/decks/:deckID/slides/:order/revert
func (h *SlideHandler) RevertSlide(c *fiber.Ctx) error {
	deckID := c.Params("deckID")
	order, ok := parseSlideOrder(c)
	if !ok {
		return nil
	}

	var req models.RevertSlideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	deck, err := h.slides.Revert(c.Context(), deckID, order, req.VersionID)
	if err != nil {
		return h.slideError(c, deckID, order, "revert", err)
	}
	h.summaryCache.Invalidate()

	log.Printf("🔄 [SLIDES] Reverted slide %d of deck %s to version %s", order, deckID, req.VersionID)
	slide := deck.SlideByOrder(order)
	return c.JSON(fiber.Map{
		"deck_id":     deck.ID,
		"slide_order": order,
		"slide":       slide,
	})
}

// SaveSlide persists manually edited slide HTML as a new user version
// POST /api/decks/:deckID/slides/:order/save
func (h *SlideHandler) SaveSlide(c *fiber.Ctx) error {
	deckID := c.Params("deckID")
	order, ok := parseSlideOrder(c)
	if !ok {
		return nil
	}

	var req models.SaveSlideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	deck, err := h.slides.SaveEdited(c.Context(), deckID, order, req.HTMLContent)
	if err != nil {
		return h.slideError(c, deckID, order, "save", err)
	}
	h.summaryCache.Invalidate()

	slide := deck.SlideByOrder(order)
	return c.JSON(fiber.Map{
		"deck_id":            deck.ID,
		"slide_order":        order,
		"current_version_id": slide.Content.CurrentVersionID,
	})
}

// slideError maps slide service errors onto HTTP responses
func (h *SlideHandler) slideError(c *fiber.Ctx, deckID string, order int, action string, err error) error {
	switch {
	case errors.Is(err, store.ErrDeckNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Deck not found",
		})
	case errors.Is(err, generation.ErrSlideNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Slide not found",
		})
	case errors.Is(err, generation.ErrVersionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Version not found",
		})
	case errors.Is(err, generation.ErrDeckNotModifiable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	log.Printf("❌ [SLIDES] Failed to %s slide %d of deck %s: %v", action, order, deckID, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Slide operation failed",
	})
}
