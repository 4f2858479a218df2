package jobs

import (
	"context"
	"log"
	"time"

	"deckflow/internal/models"
	"deckflow/internal/store"
)

// staleDeckScanLimit bounds one cleanup pass. Decks beyond it are picked up
// on the next run.
const staleDeckScanLimit = 500

// StaleDeckCleanupJob fails decks stuck in a non-terminal state. A crashed
// generation leaves its deck "generating" forever; this job is the backstop.
type StaleDeckCleanupJob struct {
	store  store.DeckStore
	maxAge time.Duration
}

// NewStaleDeckCleanupJob creates the cleanup job
func NewStaleDeckCleanupJob(deckStore store.DeckStore, maxAge time.Duration) *StaleDeckCleanupJob {
	return &StaleDeckCleanupJob{store: deckStore, maxAge: maxAge}
}

// Name implements Job
func (j *StaleDeckCleanupJob) Name() string {
	return "stale_deck_cleanup"
}

// Run marks non-terminal decks older than maxAge as failed
func (j *StaleDeckCleanupJob) Run(ctx context.Context) error {
	decks, err := j.store.ListRecent(ctx, staleDeckScanLimit)
	if err != nil {
		return err
	}

	cutoff := time.Now().UTC().Add(-j.maxAge)
	cleaned := 0
	for _, deck := range decks {
		if deck.Status.IsTerminal() {
			continue
		}
		if deck.UpdatedAt.After(cutoff) {
			continue
		}

		log.Printf("🗑️ [RETENTION] Deck %s stuck in %s since %s, marking failed",
			deck.ID, deck.Status, deck.UpdatedAt.Format(time.RFC3339))
		if err := j.store.UpdateStatus(ctx, deck.ID, models.DeckStatusFailed, "Generation timed out"); err != nil {
			log.Printf("⚠️ [RETENTION] Failed to mark deck %s: %v", deck.ID, err)
			continue
		}
		cleaned++
	}

	if cleaned > 0 {
		log.Printf("✅ [RETENTION] Marked %d stale decks as failed", cleaned)
	}
	return nil
}
