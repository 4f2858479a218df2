package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"deckflow/internal/models"
	"deckflow/internal/store"
)

// ErrSlideNotFound is returned when a slide order does not exist in the deck.
var ErrSlideNotFound = errors.New("slide not found")

// ErrDeckNotModifiable is returned when a modification is requested on a deck
// that is not in the completed or modifying state.
var ErrDeckNotModifiable = errors.New("deck not ready for modification")

// SlideService handles post-generation slide operations: LLM-driven
// modification, manual edits, version history and reverts.
type SlideService struct {
	store  store.DeckStore
	writer *Writer

	mu    sync.Mutex
	tasks map[string]*taskHandle
	wg    sync.WaitGroup
}

// NewSlideService creates a slide service
func NewSlideService(deckStore store.DeckStore, writer *Writer) *SlideService {
	return &SlideService{
		store:  deckStore,
		writer: writer,
		tasks:  make(map[string]*taskHandle),
	}
}

// StartModify validates the request and kicks off the modification in the
// background. The deck must exist, be in the completed or modifying state,
// and contain the requested slide; validation failures surface here, while
// errors from the run itself only show up through the deck status.
func (s *SlideService) StartModify(ctx context.Context, deckID string, slideOrder int, modificationPrompt string) error {
	deck, err := s.store.Get(ctx, deckID)
	if err != nil {
		return err
	}
	if deck.Status != models.DeckStatusCompleted && deck.Status != models.DeckStatusModifying {
		return fmt.Errorf("%w: deck is %s", ErrDeckNotModifiable, deck.Status)
	}
	if deck.SlideByOrder(slideOrder) == nil {
		return fmt.Errorf("%w: order %d, deck has %d slides", ErrSlideNotFound, slideOrder, len(deck.Slides))
	}

	// Detached from the request context: the rewrite outlives the HTTP
	// request that started it.
	runCtx, cancel := context.WithCancel(context.Background())
	handle := &taskHandle{done: make(chan struct{}), cancel: cancel}
	s.mu.Lock()
	s.tasks[deckID] = handle
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			if s.tasks[deckID] == handle {
				delete(s.tasks, deckID)
			}
			s.mu.Unlock()
			close(handle.done)
			cancel()
		}()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("❌ [SLIDES] Panic modifying slide %d of deck %s: %v", slideOrder, deckID, r)
				_ = s.store.UpdateStatus(context.Background(), deckID, models.DeckStatusCompleted, "")
			}
		}()
		if _, err := s.Modify(runCtx, deckID, slideOrder, modificationPrompt); err != nil {
			log.Printf("❌ [SLIDES] Modification of slide %d in deck %s failed: %v", slideOrder, deckID, err)
		}
	}()

	return nil
}

// Wait blocks until the deck's background modification finishes. Returns
// immediately when none is in flight.
func (s *SlideService) Wait(ctx context.Context, deckID string) error {
	s.mu.Lock()
	handle, ok := s.tasks[deckID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-handle.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown waits for in-flight modifications to finish or the context to
// expire.
func (s *SlideService) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Modify regenerates one slide through the content model, applying the
// user's modification request on top of the slide's plan. On failure the
// deck status is restored so the deck never sticks in "modifying".
func (s *SlideService) Modify(ctx context.Context, deckID string, slideOrder int, modificationPrompt string) (deck *models.Deck, err error) {
	if err := s.progress(ctx, deckID, 10, "Loading deck data..."); err != nil {
		return nil, err
	}

	defer func() {
		if err == nil {
			return
		}
		if current, getErr := s.store.Get(context.Background(), deckID); getErr == nil && ShouldAbort(current) {
			return
		}
		// Best effort: a failed restore must not mask the original error.
		if restoreErr := s.store.UpdateStatus(context.Background(), deckID, models.DeckStatusCompleted, ""); restoreErr != nil {
			log.Printf("⚠️ [SLIDES] Failed to restore deck %s status after modify error: %v", deckID, restoreErr)
		}
	}()

	deck, err = s.store.Get(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if slideOrder < 1 || slideOrder > len(deck.Slides) {
		return nil, fmt.Errorf("%w: order %d, deck has %d slides", ErrSlideNotFound, slideOrder, len(deck.Slides))
	}
	slide := deck.SlideByOrder(slideOrder)
	if slide == nil {
		return nil, fmt.Errorf("%w: order %d", ErrSlideNotFound, slideOrder)
	}

	if err = s.progress(ctx, deckID, 30, "Analyzing slide content..."); err != nil {
		return nil, err
	}

	deckCtx := DeckContext{
		DeckTitle:   deck.DeckTitle,
		Goal:        deck.Goal,
		Audience:    deck.Audience,
		CoreMessage: deck.CoreMessage,
		ColorTheme:  deck.ColorTheme,
		SlideCount:  len(deck.Slides),
	}

	if err = s.progress(ctx, deckID, 60, "Generating modified slide content..."); err != nil {
		return nil, err
	}

	var html string
	html, err = s.writer.RewriteSlide(ctx, deckCtx, slide.Plan, slideOrder, modificationPrompt)
	if err != nil {
		return nil, fmt.Errorf("slide modification failed: %w", err)
	}

	if err = s.progress(ctx, deckID, 90, "Updating slide in deck..."); err != nil {
		return nil, err
	}

	// Re-read before writing so concurrent edits to other slides survive.
	deck, err = s.store.Get(ctx, deckID)
	if err != nil {
		return nil, err
	}
	slide = deck.SlideByOrder(slideOrder)
	if slide == nil {
		return nil, fmt.Errorf("%w: order %d", ErrSlideNotFound, slideOrder)
	}

	now := time.Now().UTC()
	appendVersion(slide, html, models.VersionCreatedByUser, now)
	deck.UpdatedAt = now
	if err = s.store.Save(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to save modified slide: %w", err)
	}

	if err = s.progress(ctx, deckID, 100, "Slide modification completed"); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, deckID)
}

// progress writes modification checkpoints. Below 100 the deck shows as
// modifying with progress and step; at 100 it returns to completed with
// progress and step cleared. Writes against a cancelled deck are dropped:
// a cancel landing mid-modification must stick.
func (s *SlideService) progress(ctx context.Context, deckID string, progress int, step string) error {
	deck, err := s.store.Get(ctx, deckID)
	if err != nil {
		return err
	}
	if ShouldAbort(deck) {
		return nil
	}

	now := time.Now().UTC()
	if progress >= 100 {
		deck.Status = models.DeckStatusCompleted
		deck.Progress = nil
		deck.Step = nil
	} else {
		deck.Status = models.DeckStatusModifying
		deck.Progress = &progress
		deck.Step = &step
	}
	deck.UpdatedAt = now
	return s.store.Save(ctx, deck)
}

// SaveEdited persists manually edited slide HTML as a new user version.
// Saving unchanged content is a no-op and creates no version.
func (s *SlideService) SaveEdited(ctx context.Context, deckID string, slideOrder int, html string) (*models.Deck, error) {
	deck, err := s.store.Get(ctx, deckID)
	if err != nil {
		return nil, err
	}
	slide := deck.SlideByOrder(slideOrder)
	if slide == nil {
		return nil, fmt.Errorf("%w: order %d", ErrSlideNotFound, slideOrder)
	}

	if slide.Content.HTMLContent == html {
		return deck, nil
	}

	now := time.Now().UTC()
	appendVersion(slide, html, models.VersionCreatedByUser, now)
	deck.UpdatedAt = now
	if err := s.store.Save(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to save edited slide: %w", err)
	}
	return deck, nil
}

// Revert restores a prior version of a slide.
func (s *SlideService) Revert(ctx context.Context, deckID string, slideOrder int, versionID string) (*models.Deck, error) {
	deck, err := s.store.Get(ctx, deckID)
	if err != nil {
		return nil, err
	}
	slide := deck.SlideByOrder(slideOrder)
	if slide == nil {
		return nil, fmt.Errorf("%w: order %d", ErrSlideNotFound, slideOrder)
	}

	now := time.Now().UTC()
	if err := revertToVersion(slide, versionID, now); err != nil {
		return nil, err
	}
	deck.UpdatedAt = now
	if err := s.store.Save(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to save reverted slide: %w", err)
	}
	return deck, nil
}

// Versions returns the version history of a slide.
func (s *SlideService) Versions(ctx context.Context, deckID string, slideOrder int) (*models.SlideVersionsResponse, error) {
	deck, err := s.store.Get(ctx, deckID)
	if err != nil {
		return nil, err
	}
	slide := deck.SlideByOrder(slideOrder)
	if slide == nil {
		return nil, fmt.Errorf("%w: order %d", ErrSlideNotFound, slideOrder)
	}

	return &models.SlideVersionsResponse{
		DeckID:           deckID,
		SlideOrder:       slideOrder,
		CurrentVersionID: slide.Content.CurrentVersionID,
		Versions:         slide.Versions,
	}, nil
}
