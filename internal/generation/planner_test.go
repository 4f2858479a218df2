package generation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"deckflow/internal/llm"
	"deckflow/internal/models"
)

func TestPlanRejectsBlankPrompt(t *testing.T) {
	p := NewPlanner(&fakeProvider{}, "m")
	for _, prompt := range []string{"", "   ", "\n\t"} {
		if _, err := p.Plan(context.Background(), prompt, models.DefaultGenerationConfig(), nil); err == nil {
			t.Errorf("expected error for blank prompt %q", prompt)
		}
	}
}

func TestPlanRejectsEmptyPlan(t *testing.T) {
	provider := &fakeProvider{
		structuredFn: func(ctx context.Context, req llm.Request) (interface{}, error) {
			return &models.DeckPlan{DeckTitle: "Empty"}, nil
		},
	}
	p := NewPlanner(provider, "m")
	if _, err := p.Plan(context.Background(), "a topic", models.DefaultGenerationConfig(), nil); err == nil {
		t.Error("expected error for plan with no slides")
	}
}

func TestPlanPromptCarriesConfigAndFiles(t *testing.T) {
	var gotReq llm.Request
	provider := &fakeProvider{
		structuredFn: func(ctx context.Context, req llm.Request) (interface{}, error) {
			gotReq = req
			return planOf(5), nil
		},
	}
	p := NewPlanner(provider, "planner-model")

	cfg := models.GenerationConfigFromStyle(map[string]interface{}{
		"persona":         "STORYTELLER",
		"max_slides":      float64(7),
		"generation_mode": "detailed",
		"tone":            "playful",
	})
	files := []models.ExtractedFile{{Filename: "notes.txt", Content: "Q3 revenue grew 40%"}}

	plan, err := p.Plan(context.Background(), "pitch the product", cfg, files)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(plan.Slides) != 5 {
		t.Errorf("expected 5 slides, got %d", len(plan.Slides))
	}

	if gotReq.Schema == nil || gotReq.SchemaName != "deck_plan" {
		t.Error("structured schema not requested")
	}
	if !strings.Contains(gotReq.SystemPrompt, "storyteller") {
		t.Errorf("persona not applied: %q", gotReq.SystemPrompt)
	}
	if !strings.Contains(gotReq.SystemPrompt, "Between 3 and 7 slides") {
		t.Errorf("slide bounds missing from system prompt: %q", gotReq.SystemPrompt)
	}
	for _, want := range []string{"pitch the product", "detailed", "tone: playful", "notes.txt", "Q3 revenue grew 40%"} {
		if !strings.Contains(gotReq.UserPrompt, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestScorePlan(t *testing.T) {
	// Well-formed plan in the sweet spot scores full marks
	plan := planOf(6)
	for i := range plan.Slides {
		plan.Slides[i].DataPoints = []string{"42%"}
	}
	score, warnings := scorePlan(plan)
	if score != 100 {
		t.Errorf("expected 100, got %d (warnings %v)", score, warnings)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	// Thin plan warns but still scores
	thin := planOf(2)
	score, warnings = scorePlan(thin)
	if score <= 0 {
		t.Errorf("thin plan should still score, got %d", score)
	}
	if !containsWarning(warnings, "thin") {
		t.Errorf("expected thin deck warning, got %v", warnings)
	}

	// Oversized plan warns
	big := planOf(14)
	_, warnings = scorePlan(big)
	if !containsWarning(warnings, "run long") {
		t.Errorf("expected long deck warning, got %v", warnings)
	}

	// Duplicate slide IDs are flagged
	dup := planOf(5)
	dup.Slides[3].SlideID = dup.Slides[1].SlideID
	_, warnings = scorePlan(dup)
	if !containsWarning(warnings, "duplicate slide_id") {
		t.Errorf("expected duplicate warning, got %v", warnings)
	}

	// Unknown layout costs clarity
	bad := planOf(5)
	bad.Slides[0].LayoutType = "hero_banner"
	score, warnings = scorePlan(bad)
	if !containsWarning(warnings, "unknown layout") {
		t.Errorf("expected layout warning, got %v", warnings)
	}
	if score >= 100 {
		t.Errorf("unknown layout should cost points, got %d", score)
	}
}

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestGenerationConfigFromStyle(t *testing.T) {
	cfg := models.GenerationConfigFromStyle(nil)
	if cfg.Persona != models.DefaultPersona || cfg.MaxSlides != models.DefaultMaxSlides {
		t.Errorf("defaults wrong: %+v", cfg)
	}

	cfg = models.GenerationConfigFromStyle(map[string]interface{}{
		"persona":    "EXECUTIVE_BRIEFER",
		"max_slides": float64(50),
		"color":      "warm_corporate",
	})
	if cfg.Persona != "EXECUTIVE_BRIEFER" {
		t.Errorf("persona not extracted: %s", cfg.Persona)
	}
	if cfg.MaxSlides != 15 {
		t.Errorf("max_slides not clamped to ceiling, got %d", cfg.MaxSlides)
	}
	if cfg.StylePreferences["color"] != "warm_corporate" {
		t.Errorf("leftover keys not kept as style preferences: %+v", cfg.StylePreferences)
	}
	if _, ok := cfg.StylePreferences["persona"]; ok {
		t.Error("extracted keys should not appear in style preferences")
	}

	cfg = models.GenerationConfigFromStyle(map[string]interface{}{"max_slides": float64(1)})
	if cfg.MaxSlides != models.DefaultMinSlides {
		t.Errorf("max_slides not clamped to floor, got %d", cfg.MaxSlides)
	}
}

func TestPlanWrapsProviderError(t *testing.T) {
	provider := &fakeProvider{
		structuredFn: func(ctx context.Context, req llm.Request) (interface{}, error) {
			return nil, fmt.Errorf("upstream timeout")
		},
	}
	p := NewPlanner(provider, "m")
	_, err := p.Plan(context.Background(), "topic", models.DefaultGenerationConfig(), nil)
	if err == nil || !strings.Contains(err.Error(), "deck planning failed") {
		t.Errorf("expected wrapped planning error, got %v", err)
	}
}
