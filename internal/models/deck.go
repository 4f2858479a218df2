package models

import "time"

// Deck is the persisted deck record. Field names are stable because the
// stored document doubles as the API payload for GET /decks/{id}/data.
type Deck struct {
	ID          string           `bson:"_id" json:"id"`
	DeckTitle   string           `bson:"deck_title" json:"deck_title"`
	Status      DeckStatus       `bson:"status" json:"status"`
	Slides      []Slide          `bson:"slides" json:"slides"`
	Progress    *int             `bson:"progress,omitempty" json:"progress,omitempty"`
	Step        *string          `bson:"step,omitempty" json:"step,omitempty"`
	Goal        PresentationGoal `bson:"goal,omitempty" json:"goal,omitempty"`
	Audience    string           `bson:"audience,omitempty" json:"audience,omitempty"`
	CoreMessage string           `bson:"core_message,omitempty" json:"core_message,omitempty"`
	ColorTheme  ColorTheme       `bson:"color_theme,omitempty" json:"color_theme,omitempty"`
	CreatedAt   time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at" json:"updated_at"`
	CompletedAt *time.Time       `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// SlideByOrder returns the slide with the given 1-based order, or nil.
func (d *Deck) SlideByOrder(order int) *Slide {
	for i := range d.Slides {
		if d.Slides[i].Order == order {
			return &d.Slides[i]
		}
	}
	return nil
}

// Slide is one slide within a deck. Order is 1-based and unique per deck.
type Slide struct {
	Order    int            `bson:"order" json:"order"`
	Content  SlideContent   `bson:"content" json:"content"`
	Plan     SlidePlan      `bson:"plan" json:"plan"`
	Versions []SlideVersion `bson:"versions" json:"versions"`
}

// SlideContent holds the live rendered content of a slide.
type SlideContent struct {
	HTMLContent      string    `bson:"html_content" json:"html_content"`
	CurrentVersionID string    `bson:"current_version_id,omitempty" json:"current_version_id,omitempty"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

// SlidePlan is the planner's blueprint for one slide.
type SlidePlan struct {
	SlideTitle     string     `bson:"slide_title" json:"slide_title"`
	KeyPoints      []string   `bson:"key_points" json:"key_points"`
	DataPoints     []string   `bson:"data_points,omitempty" json:"data_points,omitempty"`
	ExpertInsights []string   `bson:"expert_insights,omitempty" json:"expert_insights,omitempty"`
	LayoutType     LayoutType `bson:"layout_type" json:"layout_type"`
}

// SlideVersion is a snapshot in a slide's history. Exactly one version per
// slide has IsCurrent set.
type SlideVersion struct {
	VersionID string    `bson:"version_id" json:"version_id"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	IsCurrent bool      `bson:"is_current" json:"is_current"`
	CreatedBy string    `bson:"created_by" json:"created_by"`
}

// DeckPlan is the structured output of the planning model for a whole deck.
type DeckPlan struct {
	DeckTitle   string           `json:"deck_title"`
	Goal        PresentationGoal `json:"goal"`
	Audience    string           `json:"audience"`
	CoreMessage string           `json:"core_message"`
	ColorTheme  ColorTheme       `json:"color_theme"`
	Slides      []SlidePlanSpec  `json:"slides"`
}

// SlidePlanSpec is one slide entry inside a DeckPlan. SlideID is a planner
// bookkeeping field used for duplicate detection, not persisted on the deck.
type SlidePlanSpec struct {
	SlideID        string     `json:"slide_id"`
	SlideTitle     string     `json:"slide_title"`
	KeyPoints      []string   `json:"key_points"`
	DataPoints     []string   `json:"data_points,omitempty"`
	ExpertInsights []string   `json:"expert_insights,omitempty"`
	LayoutType     LayoutType `json:"layout_type"`
}

// ToSlidePlan converts the planner spec into the persisted slide plan.
func (s SlidePlanSpec) ToSlidePlan() SlidePlan {
	return SlidePlan{
		SlideTitle:     s.SlideTitle,
		KeyPoints:      s.KeyPoints,
		DataPoints:     s.DataPoints,
		ExpertInsights: s.ExpertInsights,
		LayoutType:     s.LayoutType,
	}
}

// DeckPlanJSONSchema returns the JSON schema used for structured planner
// output. Kept in sync with DeckPlan by hand.
func DeckPlanJSONSchema() map[string]interface{} {
	layoutValues := make([]string, len(AllLayoutTypes))
	for i, t := range AllLayoutTypes {
		layoutValues[i] = string(t)
	}
	goalValues := make([]string, len(AllPresentationGoals))
	for i, g := range AllPresentationGoals {
		goalValues[i] = string(g)
	}
	themeValues := make([]string, len(AllColorThemes))
	for i, t := range AllColorThemes {
		themeValues[i] = string(t)
	}

	slideSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"slide_id":    map[string]interface{}{"type": "string"},
			"slide_title": map[string]interface{}{"type": "string"},
			"key_points": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"data_points": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"expert_insights": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"layout_type": map[string]interface{}{
				"type": "string",
				"enum": layoutValues,
			},
		},
		"required":             []string{"slide_id", "slide_title", "key_points", "layout_type"},
		"additionalProperties": false,
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"deck_title": map[string]interface{}{"type": "string"},
			"goal": map[string]interface{}{
				"type": "string",
				"enum": goalValues,
			},
			"audience":     map[string]interface{}{"type": "string"},
			"core_message": map[string]interface{}{"type": "string"},
			"color_theme": map[string]interface{}{
				"type": "string",
				"enum": themeValues,
			},
			"slides": map[string]interface{}{
				"type":  "array",
				"items": slideSchema,
			},
		},
		"required":             []string{"deck_title", "goal", "audience", "core_message", "color_theme", "slides"},
		"additionalProperties": false,
	}
}
