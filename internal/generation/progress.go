package generation

import (
	"context"
	"fmt"
	"log"
	"time"

	"deckflow/internal/models"
	"deckflow/internal/store"
)

// ProgressReporter pushes generation progress milestones to observers.
// Implementations must be safe for concurrent use by slide workers.
type ProgressReporter interface {
	// Report records a progress percentage and human-readable step.
	Report(ctx context.Context, deckID string, progress int, step string) error
}

// StoreReporter persists progress onto the deck document. It re-reads the
// deck before every write so a cancellation that landed in the meantime is
// never overwritten back to "generating".
type StoreReporter struct {
	store store.DeckStore
}

// NewStoreReporter creates a reporter backed by the deck store
func NewStoreReporter(deckStore store.DeckStore) *StoreReporter {
	return &StoreReporter{store: deckStore}
}

// Report writes progress, step and updated_at onto the deck. Writes against
// a cancelled deck are silently dropped.
func (r *StoreReporter) Report(ctx context.Context, deckID string, progress int, step string) error {
	deck, err := r.store.Get(ctx, deckID)
	if err != nil {
		return fmt.Errorf("failed to load deck for progress update: %w", err)
	}

	if ShouldAbort(deck) {
		log.Printf("⚠️ [PROGRESS] Deck %s cancelled, dropping progress update (%d%% %q)", deckID, progress, step)
		return nil
	}

	deck.Status = models.DeckStatusGenerating
	deck.Progress = &progress
	deck.Step = &step
	deck.UpdatedAt = time.Now().UTC()

	if err := r.store.Save(ctx, deck); err != nil {
		return fmt.Errorf("failed to save progress update: %w", err)
	}
	return nil
}

// ShouldAbort is the cancellation checkpoint predicate: true when the deck's
// persisted status says forward progress must stop.
func ShouldAbort(deck *models.Deck) bool {
	return deck.Status == models.DeckStatusCancelled
}

// IsCancelled re-reads the deck and applies ShouldAbort. A missing deck
// counts as cancelled so orphaned runs stop.
func IsCancelled(ctx context.Context, deckStore store.DeckStore, deckID string) bool {
	deck, err := deckStore.Get(ctx, deckID)
	if err != nil {
		log.Printf("⚠️ [PROGRESS] Failed to re-read deck %s for cancellation check: %v", deckID, err)
		return true
	}
	return ShouldAbort(deck)
}
