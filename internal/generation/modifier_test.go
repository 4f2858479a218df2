package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"deckflow/internal/llm"
	"deckflow/internal/models"
	"deckflow/internal/store"
)

func completedDeck(t *testing.T, deckStore store.DeckStore, id string, slides int) *models.Deck {
	t.Helper()
	now := time.Now().UTC()
	deck := &models.Deck{
		ID:          id,
		DeckTitle:   "Roadmap",
		Status:      models.DeckStatusCompleted,
		Goal:        models.GoalInform,
		Audience:    "engineers",
		CoreMessage: "plan the quarter",
		ColorTheme:  models.ThemeModernTeal,
		CreatedAt:   now,
		UpdatedAt:   now,
		CompletedAt: &now,
	}
	for i := 1; i <= slides; i++ {
		slide := models.Slide{
			Order: i,
			Plan: models.SlidePlan{
				SlideTitle: "Original",
				KeyPoints:  []string{"a", "b"},
				LayoutType: models.LayoutContentSlide,
			},
		}
		appendVersion(&slide, slideHTML("original"), models.VersionCreatedBySystem, now)
		deck.Slides = append(deck.Slides, slide)
	}
	if err := deckStore.Save(context.Background(), deck); err != nil {
		t.Fatalf("failed to seed deck: %v", err)
	}
	return deck
}

func TestModifySlide(t *testing.T) {
	deckStore := store.NewMemoryDeckStore()
	completedDeck(t, deckStore, "deck-1", 3)

	var gotPrompt string
	provider := &fakeProvider{
		generateFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			gotPrompt = req.UserPrompt
			return &llm.Response{Content: slideHTML("modified")}, nil
		},
	}

	svc := NewSlideService(deckStore, NewWriter(provider, "writer-model"))
	deck, err := svc.Modify(context.Background(), "deck-1", 2, "make it punchier")
	if err != nil {
		t.Fatalf("Modify failed: %v", err)
	}

	if !strings.Contains(gotPrompt, "make it punchier") {
		t.Error("modification request not passed to writer")
	}
	if strings.Contains(gotPrompt, "original") {
		t.Error("rewrite prompt should build from the plan, not current HTML")
	}

	slide := deck.SlideByOrder(2)
	if slide == nil {
		t.Fatal("slide 2 missing")
	}
	if !strings.Contains(slide.Content.HTMLContent, "modified") {
		t.Error("slide content not updated")
	}
	if len(slide.Versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(slide.Versions))
	}
	latest := slide.Versions[1]
	if !strings.HasPrefix(latest.VersionID, "v2_") {
		t.Errorf("expected v2 version id, got %s", latest.VersionID)
	}
	if latest.CreatedBy != models.VersionCreatedByUser {
		t.Errorf("expected user author, got %s", latest.CreatedBy)
	}
	if !latest.IsCurrent || slide.Versions[0].IsCurrent {
		t.Error("version currency flags wrong after modify")
	}

	// Other slides untouched
	if other := deck.SlideByOrder(1); len(other.Versions) != 1 {
		t.Errorf("slide 1 gained versions: %d", len(other.Versions))
	}

	if deck.Status != models.DeckStatusCompleted {
		t.Errorf("expected completed after modify, got %s", deck.Status)
	}
	if deck.Progress != nil || deck.Step != nil {
		t.Errorf("progress/step not cleared: %v %v", deck.Progress, deck.Step)
	}
}

func TestModifySlideOutOfRange(t *testing.T) {
	deckStore := store.NewMemoryDeckStore()
	completedDeck(t, deckStore, "deck-1", 2)

	svc := NewSlideService(deckStore, NewWriter(&fakeProvider{}, "m"))

	for _, order := range []int{0, 3, -1} {
		if _, err := svc.Modify(context.Background(), "deck-1", order, "change it"); err == nil {
			t.Errorf("expected error for slide order %d", order)
		}
	}

	// Status restored after validation failure
	deck, err := deckStore.Get(context.Background(), "deck-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if deck.Status != models.DeckStatusCompleted {
		t.Errorf("status not restored after failed modify, got %s", deck.Status)
	}
}

func TestStartModifyRunsInBackground(t *testing.T) {
	deckStore := store.NewMemoryDeckStore()
	completedDeck(t, deckStore, "deck-1", 2)

	provider := &fakeProvider{
		generateFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return &llm.Response{Content: slideHTML("rewritten")}, nil
		},
	}
	svc := NewSlideService(deckStore, NewWriter(provider, "writer-model"))

	if err := svc.StartModify(context.Background(), "deck-1", 1, "tighten the copy"); err != nil {
		t.Fatalf("StartModify failed: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Wait(waitCtx, "deck-1"); err != nil {
		t.Fatalf("modification did not finish: %v", err)
	}
	// Finished runs are forgotten; a second wait returns immediately.
	if err := svc.Wait(context.Background(), "deck-1"); err != nil {
		t.Fatalf("Wait on idle deck failed: %v", err)
	}

	deck, err := deckStore.Get(context.Background(), "deck-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	slide := deck.SlideByOrder(1)
	if !strings.Contains(slide.Content.HTMLContent, "rewritten") {
		t.Error("slide content not updated by background run")
	}
	if deck.Status != models.DeckStatusCompleted {
		t.Errorf("expected completed after background modify, got %s", deck.Status)
	}
}

func TestStartModifyRejectsBusyDeck(t *testing.T) {
	deckStore := store.NewMemoryDeckStore()
	deck := completedDeck(t, deckStore, "deck-1", 2)
	deck.Status = models.DeckStatusGenerating
	if err := deckStore.Save(context.Background(), deck); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	svc := NewSlideService(deckStore, NewWriter(&fakeProvider{}, "m"))
	err := svc.StartModify(context.Background(), "deck-1", 1, "change it")
	if !errors.Is(err, ErrDeckNotModifiable) {
		t.Fatalf("expected ErrDeckNotModifiable, got %v", err)
	}

	deck.Status = models.DeckStatusCompleted
	if err := deckStore.Save(context.Background(), deck); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := svc.StartModify(context.Background(), "deck-1", 5, "change it"); !errors.Is(err, ErrSlideNotFound) {
		t.Fatalf("expected ErrSlideNotFound, got %v", err)
	}
}

func TestModifySlideRestoresStatusOnWriterFailure(t *testing.T) {
	deckStore := store.NewMemoryDeckStore()
	completedDeck(t, deckStore, "deck-1", 1)

	provider := &fakeProvider{
		generateFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return nil, errors.New("model unavailable")
		},
	}
	svc := NewSlideService(deckStore, NewWriter(provider, "m"))

	if _, err := svc.Modify(context.Background(), "deck-1", 1, "change it"); err == nil {
		t.Fatal("expected writer error")
	}

	deck, err := deckStore.Get(context.Background(), "deck-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if deck.Status != models.DeckStatusCompleted {
		t.Errorf("deck stuck in %s after failed modify", deck.Status)
	}

	slide := deck.SlideByOrder(1)
	if len(slide.Versions) != 1 {
		t.Errorf("failed modify created a version: %d", len(slide.Versions))
	}
}

func TestModifyDropsWritesAfterCancel(t *testing.T) {
	deckStore := store.NewMemoryDeckStore()
	completedDeck(t, deckStore, "deck-1", 1)

	// Cancel lands while the rewrite is in flight.
	provider := &fakeProvider{
		generateFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			if err := deckStore.UpdateStatus(ctx, "deck-1", models.DeckStatusCancelled, "Cancelled by user"); err != nil {
				return nil, err
			}
			return &llm.Response{Content: slideHTML("rewritten")}, nil
		},
	}
	svc := NewSlideService(deckStore, NewWriter(provider, "writer-model"))

	if _, err := svc.Modify(context.Background(), "deck-1", 1, "change it"); err != nil {
		t.Fatalf("Modify failed: %v", err)
	}

	deck, err := deckStore.Get(context.Background(), "deck-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if deck.Status != models.DeckStatusCancelled {
		t.Fatalf("checkpoint write revived cancelled deck to %s", deck.Status)
	}
}

func TestModifyRestoreSkippedAfterCancel(t *testing.T) {
	deckStore := store.NewMemoryDeckStore()
	completedDeck(t, deckStore, "deck-1", 1)

	provider := &fakeProvider{
		generateFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			if err := deckStore.UpdateStatus(ctx, "deck-1", models.DeckStatusCancelled, "Cancelled by user"); err != nil {
				return nil, err
			}
			return nil, errors.New("model unavailable")
		},
	}
	svc := NewSlideService(deckStore, NewWriter(provider, "m"))

	if _, err := svc.Modify(context.Background(), "deck-1", 1, "change it"); err == nil {
		t.Fatal("expected writer error")
	}

	deck, err := deckStore.Get(context.Background(), "deck-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if deck.Status != models.DeckStatusCancelled {
		t.Fatalf("error restore revived cancelled deck to %s", deck.Status)
	}
}

func TestModifySlideMissingDeck(t *testing.T) {
	deckStore := store.NewMemoryDeckStore()
	svc := NewSlideService(deckStore, NewWriter(&fakeProvider{}, "m"))

	if _, err := svc.Modify(context.Background(), "missing", 1, "change it"); !errors.Is(err, store.ErrDeckNotFound) {
		t.Errorf("expected ErrDeckNotFound, got %v", err)
	}
}

func TestSaveEditedCreatesVersionOnlyOnChange(t *testing.T) {
	deckStore := store.NewMemoryDeckStore()
	seeded := completedDeck(t, deckStore, "deck-1", 1)
	unchanged := seeded.Slides[0].Content.HTMLContent

	svc := NewSlideService(deckStore, NewWriter(&fakeProvider{}, "m"))
	ctx := context.Background()

	// Unchanged content is a no-op
	deck, err := svc.SaveEdited(ctx, "deck-1", 1, unchanged)
	if err != nil {
		t.Fatalf("SaveEdited failed: %v", err)
	}
	if len(deck.SlideByOrder(1).Versions) != 1 {
		t.Errorf("unchanged save created a version")
	}

	// Changed content creates a user version
	deck, err = svc.SaveEdited(ctx, "deck-1", 1, slideHTML("hand edited"))
	if err != nil {
		t.Fatalf("SaveEdited failed: %v", err)
	}
	slide := deck.SlideByOrder(1)
	if len(slide.Versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(slide.Versions))
	}
	if slide.Versions[1].CreatedBy != models.VersionCreatedByUser {
		t.Errorf("expected user author, got %s", slide.Versions[1].CreatedBy)
	}
	if !strings.Contains(slide.Content.HTMLContent, "hand edited") {
		t.Error("live content not updated")
	}
}

func TestRevertSlide(t *testing.T) {
	deckStore := store.NewMemoryDeckStore()
	seeded := completedDeck(t, deckStore, "deck-1", 1)
	firstVersion := seeded.Slides[0].Versions[0].VersionID

	svc := NewSlideService(deckStore, NewWriter(&fakeProvider{}, "m"))
	ctx := context.Background()

	if _, err := svc.SaveEdited(ctx, "deck-1", 1, slideHTML("edited")); err != nil {
		t.Fatalf("SaveEdited failed: %v", err)
	}

	deck, err := svc.Revert(ctx, "deck-1", 1, firstVersion)
	if err != nil {
		t.Fatalf("Revert failed: %v", err)
	}
	slide := deck.SlideByOrder(1)
	if !strings.Contains(slide.Content.HTMLContent, "original") {
		t.Error("content not restored by revert")
	}
	if slide.Content.CurrentVersionID != firstVersion {
		t.Errorf("current_version_id not restored: %s", slide.Content.CurrentVersionID)
	}
	if len(slide.Versions) != 2 {
		t.Errorf("revert changed version count: %d", len(slide.Versions))
	}

	if _, err := svc.Revert(ctx, "deck-1", 1, "v99_0"); err == nil {
		t.Error("expected error for unknown version")
	}
}

func TestVersionsEndpointData(t *testing.T) {
	deckStore := store.NewMemoryDeckStore()
	completedDeck(t, deckStore, "deck-1", 2)

	svc := NewSlideService(deckStore, NewWriter(&fakeProvider{}, "m"))

	resp, err := svc.Versions(context.Background(), "deck-1", 2)
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}
	if resp.DeckID != "deck-1" || resp.SlideOrder != 2 {
		t.Errorf("wrong identifiers: %+v", resp)
	}
	if len(resp.Versions) != 1 {
		t.Errorf("expected 1 version, got %d", len(resp.Versions))
	}
	if resp.CurrentVersionID == "" {
		t.Error("current_version_id missing")
	}

	if _, err := svc.Versions(context.Background(), "deck-1", 9); err == nil {
		t.Error("expected error for missing slide")
	}
}
