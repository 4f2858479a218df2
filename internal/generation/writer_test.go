package generation

import (
	"context"
	"strings"
	"testing"

	"deckflow/internal/llm"
	"deckflow/internal/models"
)

func TestSanitizeSlideHTMLExtractsBody(t *testing.T) {
	doc := `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Slide</title></head>
<body><div class="container"><h1>Hello</h1></div></body>
</html>`

	got := SanitizeSlideHTML(doc)
	if got != `<div class="container"><h1>Hello</h1></div>` {
		t.Errorf("body not extracted cleanly: %q", got)
	}
}

func TestSanitizeSlideHTMLStripsForbiddenElements(t *testing.T) {
	fragment := `<!doctype html><meta charset="utf-8"><script src="https://cdn.tailwindcss.com"></script><div class="row">content</div>`

	got := SanitizeSlideHTML(fragment)
	for _, forbidden := range []string{"<!doctype", "<meta", "tailwind"} {
		if strings.Contains(strings.ToLower(got), forbidden) {
			t.Errorf("forbidden element %q survived: %q", forbidden, got)
		}
	}
	if !strings.Contains(got, `<div class="row">content</div>`) {
		t.Errorf("content lost during sanitization: %q", got)
	}
}

func TestSanitizeSlideHTMLStripsCodeFences(t *testing.T) {
	got := SanitizeSlideHTML("```html\n<div class=\"x\">hi</div>\n```")
	if got != `<div class="x">hi</div>` {
		t.Errorf("code fence not stripped: %q", got)
	}
}

func TestValidateSlideHTMLOverflowHeuristics(t *testing.T) {
	tall := `<div class="container">` + strings.Repeat("<li>item</li>", 8) + `</div>`
	warnings := ValidateSlideHTML(tall)
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "list items") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected list overflow warning, got %v", warnings)
	}

	wordy := `<div class="container"><p>` + strings.Repeat("words and more words ", 50) + `</p></div>`
	warnings = ValidateSlideHTML(wordy)
	found = false
	for _, w := range warnings {
		if strings.Contains(w, "characters of text") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected text overflow warning, got %v", warnings)
	}

	unstyled := `<div>` + strings.Repeat("plain text ", 30) + `</div>`
	warnings = ValidateSlideHTML(unstyled)
	found = false
	for _, w := range warnings {
		if strings.Contains(w, "unstyled") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unstyled warning, got %v", warnings)
	}
}

func TestWriteSlideRejectsEmptyOutput(t *testing.T) {
	provider := &fakeProvider{
		generateFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return &llm.Response{Content: "```html\n\n```"}, nil
		},
	}
	w := NewWriter(provider, "m")

	_, err := w.WriteSlide(context.Background(), DeckContext{SlideCount: 1}, models.SlidePlan{
		SlideTitle: "T",
		LayoutType: models.LayoutContentSlide,
	}, 1)
	if err == nil {
		t.Fatal("expected error for empty HTML")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty HTML error, got %v", err)
	}
}

func TestWriteSlidePromptCarriesPlan(t *testing.T) {
	var gotSystem, gotUser string
	provider := &fakeProvider{
		generateFn: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			gotSystem = req.SystemPrompt
			gotUser = req.UserPrompt
			return &llm.Response{Content: slideHTML("ok")}, nil
		},
	}
	w := NewWriter(provider, "m")

	deckCtx := DeckContext{
		DeckTitle:   "Growth Review",
		Goal:        models.GoalPersuade,
		Audience:    "board",
		CoreMessage: "double down",
		SlideCount:  6,
	}
	plan := models.SlidePlan{
		SlideTitle:     "Revenue",
		KeyPoints:      []string{"ARR up 40%"},
		DataPoints:     []string{"$12M ARR"},
		ExpertInsights: []string{"expansion drives most growth"},
		LayoutType:     models.LayoutDataVisual,
	}

	if _, err := w.WriteSlide(context.Background(), deckCtx, plan, 3); err != nil {
		t.Fatalf("WriteSlide failed: %v", err)
	}

	for _, want := range []string{"Growth Review", "board", "double down", "slide 3 of 6", "ARR up 40%", "$12M ARR", "expansion drives", "data_visual"} {
		if !strings.Contains(gotUser, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(gotSystem, "Bootstrap") {
		t.Error("system prompt missing styling instructions")
	}
}
