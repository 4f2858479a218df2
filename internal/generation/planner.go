package generation

import (
	"context"
	"fmt"
	"log"
	"strings"

	"deckflow/internal/llm"
	"deckflow/internal/models"
)

// Built-in planning personas. The assets package can override these from
// personas.yaml via SetPersonas.
var defaultPersonas = map[string]string{
	"EXPERT_DATA_STRATEGIST": "You are an expert data strategist who builds evidence-driven presentations. " +
		"Every slide you plan leads with a concrete claim backed by data points and expert insight. " +
		"You favor clear narrative arcs: situation, complication, resolution.",
	"STORYTELLER": "You are a master storyteller who turns dry material into a compelling narrative. " +
		"You plan decks around a protagonist, a tension, and a payoff, keeping each slide focused on one beat of the story.",
	"EXECUTIVE_BRIEFER": "You are a seasoned executive communicator. You plan terse, top-down decks: " +
		"answer first, supporting evidence second, minimal slides, no filler.",
}

// Planner turns a user prompt into a structured deck plan via the planning
// model.
type Planner struct {
	provider llm.Provider
	model    string
	personas map[string]string
}

// NewPlanner creates a planner using the given provider and model
func NewPlanner(provider llm.Provider, model string) *Planner {
	return &Planner{
		provider: provider,
		model:    model,
		personas: defaultPersonas,
	}
}

// SetPersonas replaces the persona prompt table
func (p *Planner) SetPersonas(personas map[string]string) {
	if len(personas) > 0 {
		p.personas = personas
	}
}

// Plan asks the planning model for a complete deck blueprint. Validation
// problems in the returned plan are logged as warnings, not errors, so a
// slightly off-spec plan still produces a deck.
func (p *Planner) Plan(ctx context.Context, prompt string, cfg models.GenerationConfig, files []models.ExtractedFile) (*models.DeckPlan, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("planning prompt must not be empty")
	}

	systemPrompt := p.systemPrompt(cfg)
	userPrompt := p.userPrompt(prompt, cfg, files)

	var plan models.DeckPlan
	resp, err := p.provider.GenerateStructured(ctx, llm.Request{
		Model:        p.model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.7,
		Schema:       models.DeckPlanJSONSchema(),
		SchemaName:   "deck_plan",
	}, &plan)
	if err != nil {
		return nil, fmt.Errorf("deck planning failed: %w", err)
	}

	if len(plan.Slides) == 0 {
		return nil, fmt.Errorf("deck planning produced no slides")
	}

	score, warnings := scorePlan(&plan)
	for _, w := range warnings {
		log.Printf("⚠️ [PLANNER] Plan quality warning: %s", w)
	}
	log.Printf("🎯 [PLANNER] Planned %d slides, quality score %d/100, tokens=%d/%d",
		len(plan.Slides), score, resp.InputTokens, resp.OutputTokens)

	return &plan, nil
}

func (p *Planner) systemPrompt(cfg models.GenerationConfig) string {
	persona, ok := p.personas[cfg.Persona]
	if !ok {
		persona = p.personas[models.DefaultPersona]
	}

	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nPlan a slide deck as structured JSON. Rules:\n")
	fmt.Fprintf(&b, "- Between %d and %d slides.\n", cfg.MinSlides, cfg.MaxSlides)
	b.WriteString("- Give every slide a unique slide_id and a layout_type from the allowed set.\n")
	b.WriteString("- The first slide should be a title_slide and the last a call_to_action where it fits the goal.\n")
	b.WriteString("- key_points carry the substance: 2 to 4 short, concrete statements per slide.\n")
	if cfg.IncludeDataPoints {
		b.WriteString("- Include specific data_points (numbers, percentages, benchmarks) wherever the topic allows.\n")
	}
	if cfg.IncludeExpertInsights {
		b.WriteString("- Include expert_insights: non-obvious observations a practitioner would add.\n")
	}
	b.WriteString("- Pick one color_theme for the whole deck that matches the subject and audience.")
	return b.String()
}

func (p *Planner) userPrompt(prompt string, cfg models.GenerationConfig, files []models.ExtractedFile) string {
	var b strings.Builder
	b.WriteString("Create a presentation plan for:\n\n")
	b.WriteString(prompt)

	if cfg.GenerationMode != "" {
		fmt.Fprintf(&b, "\n\nGeneration mode: %s", cfg.GenerationMode)
	}
	if len(cfg.StylePreferences) > 0 {
		b.WriteString("\n\nStyle preferences:")
		for key, value := range cfg.StylePreferences {
			fmt.Fprintf(&b, "\n- %s: %v", key, value)
		}
	}

	for _, f := range files {
		content := f.Content
		// Keep attached material within a sane prompt budget per file.
		if len(content) > 8000 {
			content = content[:8000] + "\n[truncated]"
		}
		fmt.Fprintf(&b, "\n\nReference material from %s:\n%s", f.Filename, content)
	}
	return b.String()
}

// scorePlan rates a plan out of 100 and collects warnings. Scoring is
// advisory only.
func scorePlan(plan *models.DeckPlan) (int, []string) {
	var warnings []string

	// Structure: 25 points, 5-8 slides is the sweet spot
	structure := 25
	n := len(plan.Slides)
	switch {
	case n >= 5 && n <= 8:
	case n >= 3 && n <= 12:
		structure = 15
	default:
		structure = 5
	}
	if n < 3 {
		warnings = append(warnings, fmt.Sprintf("only %d slides planned, deck may feel thin", n))
	}
	if n > 12 {
		warnings = append(warnings, fmt.Sprintf("%d slides planned, deck may run long", n))
	}

	seen := make(map[string]bool)
	for _, s := range plan.Slides {
		if seen[s.SlideID] {
			warnings = append(warnings, fmt.Sprintf("duplicate slide_id %q in plan", s.SlideID))
		}
		seen[s.SlideID] = true
	}

	// Content: 35 points for key point coverage
	withPoints := 0
	for _, s := range plan.Slides {
		if len(s.KeyPoints) >= 2 {
			withPoints++
		}
	}
	content := 0
	if n > 0 {
		content = 35 * withPoints / n
	}

	// Data richness: 25 points for data point coverage
	withData := 0
	for _, s := range plan.Slides {
		if len(s.DataPoints) > 0 {
			withData++
		}
	}
	dataRichness := 0
	if n > 0 {
		dataRichness = 25 * withData / n
	}

	// Clarity: 15 points, deducting for missing titles or unknown layouts
	clarity := 15
	for _, s := range plan.Slides {
		if strings.TrimSpace(s.SlideTitle) == "" {
			clarity -= 5
			warnings = append(warnings, fmt.Sprintf("slide %q has no title", s.SlideID))
		}
		if !s.LayoutType.Valid() {
			clarity -= 5
			warnings = append(warnings, fmt.Sprintf("slide %q has unknown layout %q", s.SlideID, s.LayoutType))
		}
	}
	if clarity < 0 {
		clarity = 0
	}

	return structure + content + dataRichness + clarity, warnings
}
