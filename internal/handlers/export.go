package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"deckflow/internal/export"
	"deckflow/internal/models"
	"deckflow/internal/store"
)

// ExportHandler renders decks to standalone HTML or PDF
type ExportHandler struct {
	store    store.DeckStore
	exporter *export.Exporter
}

// NewExportHandler creates a new export handler
func NewExportHandler(deckStore store.DeckStore, exporter *export.Exporter) *ExportHandler {
	return &ExportHandler{store: deckStore, exporter: exporter}
}

// ExportDeck renders a completed deck
// GET /api/decks/:deckID/export?format=html&layout=widescreen&embed=inline&agenda=false
func (h *ExportHandler) ExportDeck(c *fiber.Ctx) error {
	deck, ok := loadDeck(c, h.store)
	if !ok {
		return nil
	}
	if deck.Status != models.DeckStatusCompleted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("Deck is %s, only completed decks can be exported", deck.Status),
		})
	}

	opts, err := parseExportOptions(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	format := c.Query("format", "html")
	switch format {
	case "html":
		htmlContent, err := h.exporter.BuildHTML(deck, opts)
		if err != nil {
			log.Printf("❌ [EXPORT] Failed to build HTML for deck %s: %v", deck.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Export failed",
			})
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(htmlContent)

	case "pdf":
		pdf, filename, err := h.exporter.ExportPDF(c.Context(), deck, opts)
		if err != nil {
			log.Printf("❌ [EXPORT] Failed to render PDF for deck %s: %v", deck.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "PDF export failed",
			})
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
		return c.Send(pdf)

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Unknown format %q, expected html or pdf", format),
		})
	}
}

func parseExportOptions(c *fiber.Ctx) (export.Options, error) {
	opts := export.Options{
		Layout:     c.Query("layout", export.LayoutWidescreen),
		Embed:      c.Query("embed", export.EmbedInline),
		WithAgenda: c.QueryBool("agenda", false),
	}
	if opts.Layout != export.LayoutWidescreen && opts.Layout != export.LayoutA4Landscape {
		return opts, fmt.Errorf("unknown layout %q, expected %s or %s", opts.Layout, export.LayoutWidescreen, export.LayoutA4Landscape)
	}
	if opts.Embed != export.EmbedInline && opts.Embed != export.EmbedIframe {
		return opts, fmt.Errorf("unknown embed mode %q, expected %s or %s", opts.Embed, export.EmbedInline, export.EmbedIframe)
	}
	return opts, nil
}
