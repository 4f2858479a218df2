package models

// GenerationConfig controls planner behavior for a single deck run. It is
// derived from the free-form style map on the create request.
type GenerationConfig struct {
	Persona               string                 `json:"persona"`
	StylePreferences      map[string]interface{} `json:"style_preferences,omitempty"`
	MaxSlides             int                    `json:"max_slides"`
	MinSlides             int                    `json:"min_slides"`
	IncludeDataPoints     bool                   `json:"include_data_points"`
	IncludeExpertInsights bool                   `json:"include_expert_insights"`
	GenerationMode        string                 `json:"generation_mode,omitempty"`
}

const (
	DefaultPersona   = "EXPERT_DATA_STRATEGIST"
	DefaultMaxSlides = 10
	DefaultMinSlides = 3
	maxSlidesCeiling = 15
)

// DefaultGenerationConfig returns the config used when no style is supplied.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Persona:               DefaultPersona,
		MaxSlides:             DefaultMaxSlides,
		MinSlides:             DefaultMinSlides,
		IncludeDataPoints:     true,
		IncludeExpertInsights: true,
	}
}

// GenerationConfigFromStyle extracts the recognized keys from a request style
// map. Unrecognized keys are carried through as style preferences so the CSS
// builder can see them.
func GenerationConfigFromStyle(style map[string]interface{}) GenerationConfig {
	cfg := DefaultGenerationConfig()
	if len(style) == 0 {
		return cfg
	}

	prefs := make(map[string]interface{})
	for key, value := range style {
		switch key {
		case "persona":
			if s, ok := value.(string); ok && s != "" {
				cfg.Persona = s
			}
		case "max_slides":
			if n, ok := asInt(value); ok {
				cfg.MaxSlides = clampSlides(n)
			}
		case "generation_mode":
			if s, ok := value.(string); ok && s != "" {
				cfg.GenerationMode = s
			}
		default:
			prefs[key] = value
		}
	}
	if len(prefs) > 0 {
		cfg.StylePreferences = prefs
	}
	return cfg
}

func clampSlides(n int) int {
	if n < DefaultMinSlides {
		return DefaultMinSlides
	}
	if n > maxSlidesCeiling {
		return maxSlidesCeiling
	}
	return n
}

// asInt handles the float64 that encoding/json produces for numbers.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
