package models

// ThemePalette holds the concrete colors behind a ColorTheme.
type ThemePalette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
}

// ColorThemePalettes maps every ColorTheme to its palette. The CSS builder
// injects these as custom properties, so each theme must define all six slots.
var ColorThemePalettes = map[ColorTheme]ThemePalette{
	ThemeProfessionalBlue: {
		Primary:    "#1e3a5f",
		Secondary:  "#2d5a8e",
		Accent:     "#4a90d9",
		Background: "#f5f8fc",
		Surface:    "#ffffff",
		Text:       "#1a2332",
	},
	ThemeCorporateGray: {
		Primary:    "#37474f",
		Secondary:  "#546e7a",
		Accent:     "#78909c",
		Background: "#f6f7f8",
		Surface:    "#ffffff",
		Text:       "#263238",
	},
	ThemeVibrantPurple: {
		Primary:    "#4a148c",
		Secondary:  "#6a1b9a",
		Accent:     "#9c27b0",
		Background: "#f8f5fb",
		Surface:    "#ffffff",
		Text:       "#2a1438",
	},
	ThemeModernTeal: {
		Primary:    "#00695c",
		Secondary:  "#00897b",
		Accent:     "#26a69a",
		Background: "#f4f9f8",
		Surface:    "#ffffff",
		Text:       "#10302b",
	},
	ThemeEnergeticOrange: {
		Primary:    "#bf360c",
		Secondary:  "#e64a19",
		Accent:     "#ff7043",
		Background: "#fdf6f3",
		Surface:    "#ffffff",
		Text:       "#3e1a0e",
	},
	ThemeNatureGreen: {
		Primary:    "#1b5e20",
		Secondary:  "#2e7d32",
		Accent:     "#66bb6a",
		Background: "#f4f9f4",
		Surface:    "#ffffff",
		Text:       "#14301a",
	},
	ThemeElegantBurgundy: {
		Primary:    "#6d1b2d",
		Secondary:  "#8e2a42",
		Accent:     "#c2566e",
		Background: "#fbf5f6",
		Surface:    "#ffffff",
		Text:       "#33121a",
	},
	ThemeTechDark: {
		Primary:    "#0d1b2a",
		Secondary:  "#1b263b",
		Accent:     "#00b4d8",
		Background: "#0a1120",
		Surface:    "#14213a",
		Text:       "#e0e6ef",
	},
	ThemeWarmSunset: {
		Primary:    "#8d3b1f",
		Secondary:  "#c05c2e",
		Accent:     "#f4a261",
		Background: "#fdf7f1",
		Surface:    "#ffffff",
		Text:       "#3a2012",
	},
	ThemeMinimalMonochrome: {
		Primary:    "#111111",
		Secondary:  "#444444",
		Accent:     "#888888",
		Background: "#fafafa",
		Surface:    "#ffffff",
		Text:       "#111111",
	},
}

// PaletteFor resolves a theme to its palette, falling back to professional
// blue for unknown themes so a bad LLM value never breaks rendering.
func PaletteFor(theme ColorTheme) ThemePalette {
	if p, ok := ColorThemePalettes[theme]; ok {
		return p
	}
	return ColorThemePalettes[ThemeProfessionalBlue]
}
