package models

import (
	"fmt"
	"strings"
	"time"
)

// CreateDeckRequest starts an async deck generation.
type CreateDeckRequest struct {
	Prompt string                 `json:"prompt"`
	Style  map[string]interface{} `json:"style,omitempty"`
	Files  []ExtractedFile        `json:"files,omitempty"`
}

// Validate trims the prompt and enforces length bounds.
func (r *CreateDeckRequest) Validate() error {
	r.Prompt = strings.TrimSpace(r.Prompt)
	if len(r.Prompt) < 5 {
		return fmt.Errorf("prompt must be at least 5 characters")
	}
	if len(r.Prompt) > 5000 {
		return fmt.Errorf("prompt must be at most 5000 characters")
	}
	return nil
}

// ExtractedFile is user-supplied reference material attached to a prompt.
type ExtractedFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ModifySlideRequest asks for an LLM rewrite of one slide.
type ModifySlideRequest struct {
	ModificationPrompt string `json:"modification_prompt"`
}

func (r *ModifySlideRequest) Validate() error {
	r.ModificationPrompt = strings.TrimSpace(r.ModificationPrompt)
	if len(r.ModificationPrompt) < 5 {
		return fmt.Errorf("modification_prompt must be at least 5 characters")
	}
	if len(r.ModificationPrompt) > 2000 {
		return fmt.Errorf("modification_prompt must be at most 2000 characters")
	}
	return nil
}

// RevertSlideRequest restores a prior slide version.
type RevertSlideRequest struct {
	VersionID string `json:"version_id"`
}

func (r *RevertSlideRequest) Validate() error {
	r.VersionID = strings.TrimSpace(r.VersionID)
	if r.VersionID == "" {
		return fmt.Errorf("version_id is required")
	}
	return nil
}

// SaveSlideRequest persists manually edited slide HTML.
type SaveSlideRequest struct {
	HTMLContent string `json:"html_content"`
}

func (r *SaveSlideRequest) Validate() error {
	if strings.TrimSpace(r.HTMLContent) == "" {
		return fmt.Errorf("html_content is required")
	}
	return nil
}

// CreateDeckResponse acknowledges an accepted generation request.
type CreateDeckResponse struct {
	DeckID  string `json:"deck_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DeckSummary is the list-view projection of a deck.
type DeckSummary struct {
	ID         string     `json:"id"`
	DeckTitle  string     `json:"deck_title"`
	Status     DeckStatus `json:"status"`
	SlideCount int        `json:"slide_count"`
	Progress   *int       `json:"progress,omitempty"`
	Step       *string    `json:"step,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Summary converts a full deck into its list projection.
func (d *Deck) Summary() DeckSummary {
	return DeckSummary{
		ID:         d.ID,
		DeckTitle:  d.DeckTitle,
		Status:     d.Status,
		SlideCount: len(d.Slides),
		Progress:   d.Progress,
		Step:       d.Step,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// SlideVersionsResponse is the payload of the version history endpoint.
type SlideVersionsResponse struct {
	DeckID           string         `json:"deck_id"`
	SlideOrder       int            `json:"slide_order"`
	CurrentVersionID string         `json:"current_version_id,omitempty"`
	Versions         []SlideVersion `json:"versions"`
}
