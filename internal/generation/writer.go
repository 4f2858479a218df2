package generation

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"deckflow/internal/llm"
	"deckflow/internal/models"
)

// Writer turns a slide plan into self-contained HTML via the content model.
type Writer struct {
	provider llm.Provider
	model    string
}

// NewWriter creates a slide content writer
func NewWriter(provider llm.Provider, model string) *Writer {
	return &Writer{provider: provider, model: model}
}

// DeckContext carries the deck-level framing every slide prompt needs.
type DeckContext struct {
	DeckTitle   string
	Goal        models.PresentationGoal
	Audience    string
	CoreMessage string
	ColorTheme  models.ColorTheme
	SlideCount  int
}

// WriteSlide generates the HTML content for one planned slide.
func (w *Writer) WriteSlide(ctx context.Context, deckCtx DeckContext, plan models.SlidePlan, order int) (string, error) {
	userPrompt := w.slidePrompt(deckCtx, plan, order, "")
	return w.generate(ctx, deckCtx, plan, userPrompt)
}

// RewriteSlide regenerates a slide's HTML from its plan with a modification
// request layered on. The current content is not sent back to the model.
func (w *Writer) RewriteSlide(ctx context.Context, deckCtx DeckContext, plan models.SlidePlan, order int, modification string) (string, error) {
	return w.generate(ctx, deckCtx, plan, w.slidePrompt(deckCtx, plan, order, modification))
}

func (w *Writer) generate(ctx context.Context, deckCtx DeckContext, plan models.SlidePlan, userPrompt string) (string, error) {
	resp, err := w.provider.Generate(ctx, llm.Request{
		Model:        w.model,
		SystemPrompt: writerSystemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.8,
	})
	if err != nil {
		return "", fmt.Errorf("slide content generation failed: %w", err)
	}

	html := SanitizeSlideHTML(resp.Content)
	if strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("slide content generation returned empty HTML")
	}

	for _, warning := range ValidateSlideHTML(html) {
		log.Printf("⚠️ [WRITER] Slide %q: %s", plan.SlideTitle, warning)
	}
	return html, nil
}

const writerSystemPrompt = "You are a presentation slide author. You produce one slide at a time as an HTML fragment " +
	"styled with Bootstrap 5 utility classes. Output HTML only, no markdown, no explanations. " +
	"The fragment must fit a single 16:9 slide without scrolling: keep text short and scannable. " +
	"Never include <!doctype>, <html>, <head>, <meta>, <title> or external script tags."

func (w *Writer) slidePrompt(deckCtx DeckContext, plan models.SlidePlan, order int, modification string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deck: %q (%s for %s). Core message: %s.\n",
		deckCtx.DeckTitle, deckCtx.Goal, deckCtx.Audience, deckCtx.CoreMessage)
	fmt.Fprintf(&b, "This is slide %d of %d. Layout: %s. Title: %q.\n",
		order, deckCtx.SlideCount, plan.LayoutType, plan.SlideTitle)

	if len(plan.KeyPoints) > 0 {
		b.WriteString("Key points:\n")
		for _, p := range plan.KeyPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	if len(plan.DataPoints) > 0 {
		b.WriteString("Data points to feature:\n")
		for _, p := range plan.DataPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	if len(plan.ExpertInsights) > 0 {
		b.WriteString("Expert insights to weave in:\n")
		for _, p := range plan.ExpertInsights {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	b.WriteString(layoutGuidance(plan.LayoutType))

	if modification != "" {
		fmt.Fprintf(&b, "\nApply this modification to the slide: %s\n", modification)
	}
	return b.String()
}

func layoutGuidance(layout models.LayoutType) string {
	switch layout {
	case models.LayoutTitleSlide:
		return "Layout guidance: large centered title, one-line subtitle, no bullet lists.\n"
	case models.LayoutComparison:
		return "Layout guidance: two side-by-side columns contrasting the options.\n"
	case models.LayoutDataVisual:
		return "Layout guidance: lead with the numbers, large stat callouts, minimal prose.\n"
	case models.LayoutProcessFlow:
		return "Layout guidance: horizontal sequence of numbered steps.\n"
	case models.LayoutFeatureShowcase:
		return "Layout guidance: grid of feature cards, one short line each.\n"
	case models.LayoutTestimonial:
		return "Layout guidance: one large quote with attribution, nothing else.\n"
	case models.LayoutCallToAction:
		return "Layout guidance: single bold ask with a clear next step.\n"
	default:
		return "Layout guidance: standard content slide, headline plus supporting points.\n"
	}
}

var (
	bodyRe      = regexp.MustCompile(`(?is)<body[^>]*>(.*)</body>`)
	forbiddenRe = regexp.MustCompile(`(?is)<!doctype[^>]*>|</?html[^>]*>|<head[^>]*>.*?</head>|<meta[^>]*>|<title[^>]*>.*?</title>|<script[^>]*src=[^>]*tailwind[^>]*>\s*</script>`)
	tagRe       = regexp.MustCompile(`(?s)<[^>]*>`)
)

// SanitizeSlideHTML normalizes model output into a clean fragment. Complete
// HTML documents are reduced to their body; document-level elements the
// renderer supplies itself are stripped.
func SanitizeSlideHTML(html string) string {
	html = stripCodeFencesHTML(html)
	if m := bodyRe.FindStringSubmatch(html); m != nil {
		html = m[1]
	}
	html = forbiddenRe.ReplaceAllString(html, "")
	return strings.TrimSpace(html)
}

func stripCodeFencesHTML(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```html")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// ValidateSlideHTML checks a fragment against overflow and styling
// heuristics. Findings are advisory warnings.
func ValidateSlideHTML(html string) []string {
	var warnings []string

	if !strings.Contains(html, "class=") {
		warnings = append(warnings, "no CSS classes found, slide may render unstyled")
	}
	if len(html) < 200 {
		warnings = append(warnings, "content under 200 characters, slide may look empty")
	}

	listItems := strings.Count(strings.ToLower(html), "<li")
	if listItems > 6 {
		warnings = append(warnings, fmt.Sprintf("%d list items, slide may overflow", listItems))
	}
	paragraphs := strings.Count(strings.ToLower(html), "<p")
	if paragraphs > 4 {
		warnings = append(warnings, fmt.Sprintf("%d paragraphs, slide may overflow", paragraphs))
	}

	text := strings.TrimSpace(tagRe.ReplaceAllString(html, " "))
	if len(text) > 800 {
		warnings = append(warnings, fmt.Sprintf("%d characters of text, slide may overflow", len(text)))
	}
	return warnings
}
