package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"deckflow/internal/generation"
	"deckflow/internal/models"
	"deckflow/internal/services"
	"deckflow/internal/store"
)

// DeckHandler handles deck lifecycle endpoints
type DeckHandler struct {
	store        store.DeckStore
	orchestrator *generation.Orchestrator
	summaryCache *services.SummaryCacheService
}

// NewDeckHandler creates a new deck handler
func NewDeckHandler(deckStore store.DeckStore, orchestrator *generation.Orchestrator, summaryCache *services.SummaryCacheService) *DeckHandler {
	return &DeckHandler{
		store:        deckStore,
		orchestrator: orchestrator,
		summaryCache: summaryCache,
	}
}

// CreateDeck starts an async deck generation
// POST /api/decks
func (h *DeckHandler) CreateDeck(c *fiber.Ctx) error {
	var req models.CreateDeckRequest
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

	deck, err := h.orchestrator.CreateDeck(c.Context(), req)
	if err != nil {
		log.Printf("❌ [DECKS] Failed to create deck: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create deck",
		})
	}
	h.summaryCache.Invalidate()

	log.Printf("🎯 [DECKS] Started generation for deck %s", deck.ID)
	return c.Status(fiber.StatusAccepted).JSON(models.CreateDeckResponse{
		DeckID:  deck.ID,
		Status:  string(deck.Status),
		Message: "Deck generation started",
	})
}

// GetDeck returns deck status and metadata
// GET /api/decks/:deckID
func (h *DeckHandler) GetDeck(c *fiber.Ctx) error {
	deck, ok := loadDeck(c, h.store)
	if !ok {
		return nil
	}
	return c.JSON(deck.Summary())
}

// GetDeckData returns the full deck document including slides and versions
// GET /api/decks/:deckID/data
func (h *DeckHandler) GetDeckData(c *fiber.Ctx) error {
	deck, ok := loadDeck(c, h.store)
	if !ok {
		return nil
	}
	return c.JSON(deck)
}

// ListDecks returns recent decks
// GET /api/decks?limit=10
func (h *DeckHandler) ListDecks(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	if cached, ok := h.summaryCache.GetList(limit); ok {
		return c.JSON(fiber.Map{"decks": cached, "count": len(cached)})
	}

	decks, err := h.store.ListRecent(c.Context(), limit)
	if err != nil {
		log.Printf("❌ [DECKS] Failed to list decks: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list decks",
		})
	}

	summaries := make([]models.DeckSummary, 0, len(decks))
	for _, deck := range decks {
		summaries = append(summaries, deck.Summary())
	}
	h.summaryCache.StoreList(limit, summaries)

	return c.JSON(fiber.Map{"decks": summaries, "count": len(summaries)})
}

// CancelDeck requests cancellation of a running generation
// POST /api/decks/:deckID/cancel
func (h *DeckHandler) CancelDeck(c *fiber.Ctx) error {
	deckID := c.Params("deckID")
	deck, err := h.orchestrator.Cancel(c.Context(), deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Deck not found",
			})
		}
		log.Printf("❌ [DECKS] Failed to cancel deck %s: %v", deckID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to cancel deck",
		})
	}
	h.summaryCache.Invalidate()

	return c.JSON(fiber.Map{
		"deck_id": deck.ID,
		"status":  deck.Status,
	})
}

// DeleteDeck removes a deck
// DELETE /api/decks/:deckID
func (h *DeckHandler) DeleteDeck(c *fiber.Ctx) error {
	deckID := c.Params("deckID")
	if err := h.store.Delete(c.Context(), deckID); err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Deck not found",
			})
		}
		log.Printf("❌ [DECKS] Failed to delete deck %s: %v", deckID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete deck",
		})
	}
	h.summaryCache.Invalidate()

	log.Printf("🗑️ [DECKS] Deleted deck %s", deckID)
	return c.JSON(fiber.Map{"deleted": true})
}

// loadDeck resolves the :deckID param. On failure the error response is
// already written and ok is false.
func loadDeck(c *fiber.Ctx, deckStore store.DeckStore) (*models.Deck, bool) {
	deckID := c.Params("deckID")
	deck, err := deckStore.Get(c.Context(), deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Deck not found",
			})
			return nil, false
		}
		log.Printf("❌ [DECKS] Failed to load deck %s: %v", deckID, err)
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load deck",
		})
		return nil, false
	}
	return deck, true
}

// parseSlideOrder parses the :order param. On failure the error response is
// already written and ok is false.
func parseSlideOrder(c *fiber.Ctx) (int, bool) {
	order, err := strconv.Atoi(c.Params("order"))
	if err != nil || order < 1 {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid slide order",
		})
		return 0, false
	}
	return order, true
}
