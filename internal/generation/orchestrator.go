package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"deckflow/internal/logging"
	"deckflow/internal/models"
	"deckflow/internal/store"
)

// errCancelled signals that a run stopped because the deck was cancelled.
// It is not a failure: the deck keeps its cancelled status.
var errCancelled = errors.New("generation cancelled")

// Metrics receives generation observations. Implemented by the metrics
// service; a nil Metrics disables recording.
type Metrics interface {
	DeckGenerationStarted()
	DeckGenerationFinished(status string, duration time.Duration)
	SlideGenerated(status string)
}

// Orchestrator runs the full deck generation pipeline: plan, fan out slide
// writes under bounded concurrency, assemble, finalize. Concurrency is
// bounded at two levels: concurrent deck runs across the process and
// concurrent slide writes within one run.
type Orchestrator struct {
	store    store.DeckStore
	planner  *Planner
	writer   *Writer
	reporter ProgressReporter
	metrics  Metrics

	deckSem          chan struct{}
	slideConcurrency int

	mu    sync.Mutex
	tasks map[string]*taskHandle
	wg    sync.WaitGroup
}

// taskHandle tracks one background generation. Cancellation stays cooperative
// through the persisted status; the handle exists so callers can join a run
// deterministically instead of polling.
type taskHandle struct {
	done   chan struct{}
	cancel context.CancelFunc
}

// NewOrchestrator creates the generation orchestrator
func NewOrchestrator(deckStore store.DeckStore, planner *Planner, writer *Writer, reporter ProgressReporter, maxDecks, maxSlideConcurrency int) *Orchestrator {
	if maxDecks < 1 {
		maxDecks = 1
	}
	if maxSlideConcurrency < 1 {
		maxSlideConcurrency = 1
	}
	return &Orchestrator{
		store:            deckStore,
		planner:          planner,
		writer:           writer,
		reporter:         reporter,
		deckSem:          make(chan struct{}, maxDecks),
		slideConcurrency: maxSlideConcurrency,
		tasks:            make(map[string]*taskHandle),
	}
}

// SetMetrics attaches the metrics recorder
func (o *Orchestrator) SetMetrics(m Metrics) {
	o.metrics = m
}

// seedTitle derives the placeholder deck title from the prompt. Planning
// replaces it once the real title is known.
func seedTitle(prompt string) string {
	const max = 60
	if len(prompt) > max {
		return prompt[:max] + "..."
	}
	return prompt
}

// CreateDeck persists the initial deck record and starts generation in the
// background. It returns as soon as the record exists.
func (o *Orchestrator) CreateDeck(ctx context.Context, req models.CreateDeckRequest) (*models.Deck, error) {
	now := time.Now().UTC()
	progress := 1
	step := "Queued"
	deck := &models.Deck{
		ID:        uuid.New().String(),
		DeckTitle: seedTitle(req.Prompt),
		Status:    models.DeckStatusGenerating,
		Slides:    []models.Slide{},
		Progress:  &progress,
		Step:      &step,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := o.store.Save(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to create deck record: %w", err)
	}

	cfg := models.GenerationConfigFromStyle(req.Style)

	// Detached from the request context: generation outlives the HTTP
	// request that started it.
	runCtx, cancel := context.WithCancel(context.Background())
	handle := &taskHandle{done: make(chan struct{}), cancel: cancel}
	o.mu.Lock()
	o.tasks[deck.ID] = handle
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() {
			o.mu.Lock()
			delete(o.tasks, deck.ID)
			o.mu.Unlock()
			close(handle.done)
			cancel()
		}()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("❌ [ORCHESTRATOR] Panic in generation for deck %s: %v", deck.ID, r)
				_ = o.store.UpdateStatus(context.Background(), deck.ID, models.DeckStatusFailed, "Generation failed")
			}
		}()
		if err := o.Generate(runCtx, deck.ID, req.Prompt, cfg, req.Files); err != nil {
			logging.WithDeck(deck.ID).Error("deck generation failed", "error", err)
		}
	}()

	return deck, nil
}

// Wait blocks until the deck's background generation finishes. Returns
// immediately when no run is in flight for the deck.
func (o *Orchestrator) Wait(ctx context.Context, deckID string) error {
	o.mu.Lock()
	handle, ok := o.tasks[deckID]
	o.mu.Unlock()
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

// Generate runs the pipeline synchronously for one deck. Exposed for tests;
// production callers go through CreateDeck.
func (o *Orchestrator) Generate(ctx context.Context, deckID, prompt string, cfg models.GenerationConfig, files []models.ExtractedFile) error {
	logger := logging.WithDeck(deckID)
	start := time.Now()

	if o.metrics != nil {
		o.metrics.DeckGenerationStarted()
	}
	status := "success"
	defer func() {
		if o.metrics != nil {
			o.metrics.DeckGenerationFinished(status, time.Since(start))
		}
	}()

	// Deck-level admission: block until a generation slot frees up.
	select {
	case o.deckSem <- struct{}{}:
	case <-ctx.Done():
		status = "error"
		return ctx.Err()
	}
	defer func() { <-o.deckSem }()

	err := o.run(ctx, logger, deckID, prompt, cfg, files)
	switch {
	case errors.Is(err, errCancelled):
		status = "cancelled"
		logger.Info("deck generation cancelled")
		return nil
	case err != nil:
		status = "error"
		if updateErr := o.store.UpdateStatus(ctx, deckID, models.DeckStatusFailed, "Generation failed"); updateErr != nil {
			logger.Error("failed to mark deck failed", "error", updateErr)
		}
		return err
	}
	logger.Info("deck generation completed", "duration", time.Since(start))
	return nil
}

func (o *Orchestrator) run(ctx context.Context, logger *slog.Logger, deckID, prompt string, cfg models.GenerationConfig, files []models.ExtractedFile) error {
	if IsCancelled(ctx, o.store, deckID) {
		return errCancelled
	}

	o.report(ctx, deckID, 30, "Planning presentation structure...")
	plan, err := o.planner.Plan(ctx, prompt, cfg, files)
	if err != nil {
		return fmt.Errorf("planning stage failed: %w", err)
	}
	logger.Info("plan ready", "slides", len(plan.Slides), "theme", plan.ColorTheme)

	o.report(ctx, deckID, 40, "Initializing deck data...")
	if err := o.applyPlan(ctx, deckID, plan); err != nil {
		return err
	}

	o.report(ctx, deckID, 50, "Starting slide generation...")
	contents, err := o.generateSlides(ctx, deckID, plan)
	if err != nil {
		return err
	}

	o.report(ctx, deckID, 95, "Finalizing presentation...")
	return o.finalize(ctx, deckID, plan, contents)
}

// applyPlan copies the plan's deck-level fields onto the stored record.
func (o *Orchestrator) applyPlan(ctx context.Context, deckID string, plan *models.DeckPlan) error {
	deck, err := o.store.Get(ctx, deckID)
	if err != nil {
		return fmt.Errorf("failed to load deck: %w", err)
	}
	if ShouldAbort(deck) {
		return errCancelled
	}

	deck.DeckTitle = plan.DeckTitle
	deck.Goal = plan.Goal
	deck.Audience = plan.Audience
	deck.CoreMessage = plan.CoreMessage
	deck.ColorTheme = plan.ColorTheme
	deck.UpdatedAt = time.Now().UTC()

	if err := o.store.Save(ctx, deck); err != nil {
		return fmt.Errorf("failed to save planned deck: %w", err)
	}
	return nil
}

// generateSlides fans slide writes out to workers bounded by the per-run
// slide semaphore. Results come back ordered by plan position regardless of
// completion order.
func (o *Orchestrator) generateSlides(ctx context.Context, deckID string, plan *models.DeckPlan) ([]string, error) {
	total := len(plan.Slides)
	contents := make([]string, total)
	errs := make([]error, total)

	deckCtx := DeckContext{
		DeckTitle:   plan.DeckTitle,
		Goal:        plan.Goal,
		Audience:    plan.Audience,
		CoreMessage: plan.CoreMessage,
		ColorTheme:  plan.ColorTheme,
		SlideCount:  total,
	}

	slideSem := make(chan struct{}, o.slideConcurrency)
	var mu sync.Mutex
	completed := 0

	var wg sync.WaitGroup
	for i, spec := range plan.Slides {
		wg.Add(1)
		go func(i int, spec models.SlidePlanSpec) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("slide %d panicked: %v", i+1, r)
				}
			}()

			slideSem <- struct{}{}
			defer func() { <-slideSem }()

			if IsCancelled(ctx, o.store, deckID) {
				errs[i] = errCancelled
				return
			}

			order := i + 1
			html, err := o.writer.WriteSlide(ctx, deckCtx, spec.ToSlidePlan(), order)
			if err != nil {
				errs[i] = fmt.Errorf("slide %d failed: %w", order, err)
				if o.metrics != nil {
					o.metrics.SlideGenerated("error")
				}
				return
			}
			contents[i] = html
			if o.metrics != nil {
				o.metrics.SlideGenerated("success")
			}

			// Report under the lock so persisted progress never goes
			// backwards when writes race.
			mu.Lock()
			completed++
			progress := 60 + completed*25/total
			o.report(ctx, deckID, progress, fmt.Sprintf("Generated slide %d of %d", completed, total))
			mu.Unlock()
		}(i, spec)
	}
	wg.Wait()

	for _, err := range errs {
		if errors.Is(err, errCancelled) {
			return nil, errCancelled
		}
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return contents, nil
}

// finalize assembles the completed deck: slides in plan order, each seeded
// with a v1 system version, status completed.
func (o *Orchestrator) finalize(ctx context.Context, deckID string, plan *models.DeckPlan, contents []string) error {
	deck, err := o.store.Get(ctx, deckID)
	if err != nil {
		return fmt.Errorf("failed to load deck for finalization: %w", err)
	}
	if ShouldAbort(deck) {
		return errCancelled
	}

	now := time.Now().UTC()
	slides := make([]models.Slide, len(plan.Slides))
	for i, spec := range plan.Slides {
		slide := models.Slide{
			Order: i + 1,
			Plan:  spec.ToSlidePlan(),
		}
		appendVersion(&slide, contents[i], models.VersionCreatedBySystem, now)
		slides[i] = slide
	}

	deck.Slides = slides
	deck.Status = models.DeckStatusCompleted
	deck.CompletedAt = &now
	deck.UpdatedAt = now
	deck.Progress = nil
	deck.Step = nil

	if err := o.store.Save(ctx, deck); err != nil {
		return fmt.Errorf("failed to save completed deck: %w", err)
	}
	return nil
}

// Cancel requests cooperative cancellation of a running generation. Decks in
// a terminal state are left untouched.
func (o *Orchestrator) Cancel(ctx context.Context, deckID string) (*models.Deck, error) {
	deck, err := o.store.Get(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.Status.IsTerminal() {
		return deck, nil
	}

	if err := o.store.UpdateStatus(ctx, deckID, models.DeckStatusCancelled, "Cancelled by user"); err != nil {
		return nil, err
	}
	return o.store.Get(ctx, deckID)
}

// report logs and swallows progress errors: a failed progress write must not
// abort generation.
func (o *Orchestrator) report(ctx context.Context, deckID string, progress int, step string) {
	if err := o.reporter.Report(ctx, deckID, progress, step); err != nil {
		log.Printf("⚠️ [ORCHESTRATOR] Progress update failed for deck %s: %v", deckID, err)
	}
}

// Shutdown waits for in-flight generations to finish or the context to
// expire.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
