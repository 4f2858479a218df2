package export

import (
	"strings"
	"testing"
	"time"

	"deckflow/internal/assets"
	"deckflow/internal/models"
)

func exportDeck() *models.Deck {
	now := time.Now().UTC()
	return &models.Deck{
		ID:         "deck-1",
		DeckTitle:  "Q3 Review: Growth & Risks",
		Status:     models.DeckStatusCompleted,
		ColorTheme: models.ThemeModernTeal,
		Slides: []models.Slide{
			{
				Order:   1,
				Content: models.SlideContent{HTMLContent: `<h1 class="display-1">Opening</h1>`, UpdatedAt: now},
				Plan:    models.SlidePlan{SlideTitle: "Opening", LayoutType: models.LayoutTitleSlide},
			},
			{
				Order:   2,
				Content: models.SlideContent{HTMLContent: `<div class="row">Numbers</div>`, UpdatedAt: now},
				Plan:    models.SlidePlan{SlideTitle: "The Numbers", LayoutType: models.LayoutDataVisual},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestBuildHTMLInline(t *testing.T) {
	e := NewExporter(assets.NewManager(t.TempDir()), "")

	doc, err := e.BuildHTML(exportDeck(), Options{Layout: LayoutWidescreen})
	if err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}

	for _, want := range []string{
		"<h1 class=\"display-1\">Opening</h1>",
		"<div class=\"row\">Numbers</div>",
		"slide-page",
		"page-break-after",
		"--deck-primary",
		"Q3 Review: Growth &amp; Risks",
		"10.67in 6.00in",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("exported HTML missing %q", want)
		}
	}
	if strings.Count(doc, "slide-page") < 2 {
		t.Error("expected one page per slide")
	}
}

func TestBuildHTMLA4Layout(t *testing.T) {
	e := NewExporter(assets.NewManager(t.TempDir()), "")

	doc, err := e.BuildHTML(exportDeck(), Options{Layout: LayoutA4Landscape})
	if err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}
	if !strings.Contains(doc, "11.69in 8.27in") {
		t.Error("A4 landscape page size not applied")
	}
}

func TestBuildHTMLIframeEmbed(t *testing.T) {
	e := NewExporter(assets.NewManager(t.TempDir()), "")

	doc, err := e.BuildHTML(exportDeck(), Options{Embed: EmbedIframe})
	if err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}
	if !strings.Contains(doc, "srcdoc=") {
		t.Error("iframe embed not applied")
	}
	if !strings.Contains(doc, "&lt;h1") {
		t.Error("iframe srcdoc content not escaped")
	}
}

func TestBuildHTMLAgenda(t *testing.T) {
	e := NewExporter(assets.NewManager(t.TempDir()), "")

	doc, err := e.BuildHTML(exportDeck(), Options{WithAgenda: true})
	if err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}
	if !strings.Contains(doc, "Agenda") {
		t.Error("agenda page missing")
	}
	if !strings.Contains(doc, "The Numbers") {
		t.Error("agenda missing slide titles")
	}
}

func TestBuildHTMLEmptyDeck(t *testing.T) {
	e := NewExporter(assets.NewManager(t.TempDir()), "")

	empty := exportDeck()
	empty.Slides = nil
	if _, err := e.BuildHTML(empty, Options{}); err == nil {
		t.Error("expected error for deck with no slides")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Q3 Review: Growth & Risks": "Q3 Review_ Growth & Risks",
		"a/b\\c*d?e":                "a_b_c_d_e",
		"":                          "presentation",
		"   ":                       "presentation",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}

	long := strings.Repeat("x", 80)
	if got := sanitizeFilename(long); len(got) != 50 {
		t.Errorf("long filename not truncated: %d chars", len(got))
	}
}
