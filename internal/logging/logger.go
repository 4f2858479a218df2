package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithDeck returns a logger with deck generation context fields attached.
// Use this for all logging within a generation run.
func WithDeck(deckID string) *slog.Logger {
	return slog.With("deck_id", deckID)
}

// WithSlide returns a logger scoped to a specific slide within a run.
func WithSlide(logger *slog.Logger, order int, layout string) *slog.Logger {
	return logger.With(
		"slide_order", order,
		"layout_type", layout,
	)
}
