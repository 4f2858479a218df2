package models

// DeckStatus represents the lifecycle state of a deck
type DeckStatus string

const (
	DeckStatusGenerating DeckStatus = "generating"
	DeckStatusCompleted  DeckStatus = "completed"
	DeckStatusFailed     DeckStatus = "failed"
	DeckStatusCancelled  DeckStatus = "cancelled"
	DeckStatusModifying  DeckStatus = "modifying"
)

// IsTerminal reports whether the status is a resting state that background
// pipelines must not overwrite (completed/failed/cancelled).
func (s DeckStatus) IsTerminal() bool {
	return s == DeckStatusCompleted || s == DeckStatusFailed || s == DeckStatusCancelled
}

// LayoutType is the slide layout chosen by the planning model.
// Downstream rendering keys off these exact values, so the set is fixed.
type LayoutType string

const (
	LayoutTitleSlide      LayoutType = "title_slide"
	LayoutContentSlide    LayoutType = "content_slide"
	LayoutComparison      LayoutType = "comparison"
	LayoutDataVisual      LayoutType = "data_visual"
	LayoutProcessFlow     LayoutType = "process_flow"
	LayoutFeatureShowcase LayoutType = "feature_showcase"
	LayoutTestimonial     LayoutType = "testimonial"
	LayoutCallToAction    LayoutType = "call_to_action"
)

// AllLayoutTypes lists every layout the planner may assign, in the order they
// are presented to the LLM.
var AllLayoutTypes = []LayoutType{
	LayoutTitleSlide,
	LayoutContentSlide,
	LayoutComparison,
	LayoutDataVisual,
	LayoutProcessFlow,
	LayoutFeatureShowcase,
	LayoutTestimonial,
	LayoutCallToAction,
}

// Valid reports whether t is one of the known layout types.
func (t LayoutType) Valid() bool {
	for _, known := range AllLayoutTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PresentationGoal is the overall objective of a deck
type PresentationGoal string

const (
	GoalPersuade PresentationGoal = "persuade"
	GoalInform   PresentationGoal = "inform"
	GoalInspire  PresentationGoal = "inspire"
	GoalEducate  PresentationGoal = "educate"
)

// AllPresentationGoals lists the goals offered to the planning model.
var AllPresentationGoals = []PresentationGoal{GoalPersuade, GoalInform, GoalInspire, GoalEducate}

// ColorTheme is the visual theme the planner picks for the whole deck
type ColorTheme string

const (
	ThemeProfessionalBlue  ColorTheme = "professional_blue"
	ThemeCorporateGray     ColorTheme = "corporate_gray"
	ThemeVibrantPurple     ColorTheme = "vibrant_purple"
	ThemeModernTeal        ColorTheme = "modern_teal"
	ThemeEnergeticOrange   ColorTheme = "energetic_orange"
	ThemeNatureGreen       ColorTheme = "nature_green"
	ThemeElegantBurgundy   ColorTheme = "elegant_burgundy"
	ThemeTechDark          ColorTheme = "tech_dark"
	ThemeWarmSunset        ColorTheme = "warm_sunset"
	ThemeMinimalMonochrome ColorTheme = "minimal_monochrome"
)

// AllColorThemes lists the themes offered to the planning model.
var AllColorThemes = []ColorTheme{
	ThemeProfessionalBlue,
	ThemeCorporateGray,
	ThemeVibrantPurple,
	ThemeModernTeal,
	ThemeEnergeticOrange,
	ThemeNatureGreen,
	ThemeElegantBurgundy,
	ThemeTechDark,
	ThemeWarmSunset,
	ThemeMinimalMonochrome,
}

// User style preferences. These come from the create request and influence CSS
// assembly, not planning.
const (
	LayoutPreferenceProfessional = "professional"
	LayoutPreferenceCreative     = "creative"
	LayoutPreferenceMinimal      = "minimal"

	ColorPreferenceProfessionalBlue = "professional_blue"
	ColorPreferenceWarmCorporate    = "warm_corporate"
	ColorPreferenceModernGreen      = "modern_green"

	PersonaPreferenceCompact  = "compact"
	PersonaPreferenceBalanced = "balanced"
	PersonaPreferenceSpacious = "spacious"
)

// VersionCreatedBy values for slide versions
const (
	VersionCreatedBySystem = "system"
	VersionCreatedByUser   = "user"
)
