package store

import (
	"context"
	"errors"

	"deckflow/internal/models"
)

// ErrDeckNotFound is returned when a deck ID does not exist in the store.
var ErrDeckNotFound = errors.New("deck not found")

// DeckStore persists whole deck documents. Generation pipelines use a
// read-modify-write pattern on top of Get/Save, so implementations must
// return a fresh copy from Get rather than a shared pointer.
type DeckStore interface {
	// Save upserts the full deck document keyed by deck ID.
	Save(ctx context.Context, deck *models.Deck) error

	// Get returns the deck or ErrDeckNotFound.
	Get(ctx context.Context, deckID string) (*models.Deck, error)

	// UpdateStatus sets status, step and updated_at without touching slides.
	UpdateStatus(ctx context.Context, deckID string, status models.DeckStatus, step string) error

	// ListRecent returns up to limit decks ordered by created_at descending.
	ListRecent(ctx context.Context, limit int) ([]*models.Deck, error)

	// Delete removes the deck. Deleting a missing deck returns ErrDeckNotFound.
	Delete(ctx context.Context, deckID string) error

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
