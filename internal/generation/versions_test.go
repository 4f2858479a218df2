package generation

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"deckflow/internal/models"
)

func TestAppendVersionSeedsV1(t *testing.T) {
	slide := &models.Slide{Order: 1}
	now := time.Unix(1700000000, 0).UTC()

	v := appendVersion(slide, "<div>first</div>", models.VersionCreatedBySystem, now)

	if v.VersionID != "v1_1700000000" {
		t.Errorf("expected v1_1700000000, got %s", v.VersionID)
	}
	if !v.IsCurrent {
		t.Error("seed version should be current")
	}
	if v.CreatedBy != models.VersionCreatedBySystem {
		t.Errorf("expected system author, got %s", v.CreatedBy)
	}
	if slide.Content.HTMLContent != "<div>first</div>" {
		t.Errorf("live content not updated: %q", slide.Content.HTMLContent)
	}
	if slide.Content.CurrentVersionID != v.VersionID {
		t.Errorf("current_version_id not set: %q", slide.Content.CurrentVersionID)
	}
}

func TestAppendVersionDemotesPrevious(t *testing.T) {
	slide := &models.Slide{Order: 1}
	now := time.Now().UTC()

	appendVersion(slide, "one", models.VersionCreatedBySystem, now)
	appendVersion(slide, "two", models.VersionCreatedByUser, now.Add(time.Second))

	current := 0
	for _, v := range slide.Versions {
		if v.IsCurrent {
			current++
		}
	}
	if current != 1 {
		t.Errorf("expected exactly one current version, got %d", current)
	}
	if !slide.Versions[len(slide.Versions)-1].IsCurrent {
		t.Error("latest version should be current")
	}
	if slide.Content.HTMLContent != "two" {
		t.Errorf("live content should follow latest version, got %q", slide.Content.HTMLContent)
	}
}

func TestAppendVersionCapsHistory(t *testing.T) {
	slide := &models.Slide{Order: 1}
	base := time.Now().UTC()

	for i := 0; i < 14; i++ {
		appendVersion(slide, fmt.Sprintf("content-%d", i), models.VersionCreatedByUser, base.Add(time.Duration(i)*time.Second))
	}

	if len(slide.Versions) != maxVersionsPerSlide {
		t.Fatalf("expected history capped at %d, got %d", maxVersionsPerSlide, len(slide.Versions))
	}
	// Oldest entries drop first
	if slide.Versions[0].Content != "content-4" {
		t.Errorf("expected oldest surviving version content-4, got %s", slide.Versions[0].Content)
	}
	if slide.Versions[len(slide.Versions)-1].Content != "content-13" {
		t.Errorf("expected newest version content-13, got %s", slide.Versions[len(slide.Versions)-1].Content)
	}
	if !slide.Versions[len(slide.Versions)-1].IsCurrent {
		t.Error("newest version should be current after eviction")
	}
}

func TestRevertToVersion(t *testing.T) {
	slide := &models.Slide{Order: 1}
	base := time.Unix(1700000000, 0).UTC()

	first := appendVersion(slide, "original", models.VersionCreatedBySystem, base)
	appendVersion(slide, "edited", models.VersionCreatedByUser, base.Add(time.Minute))

	before := len(slide.Versions)
	if err := revertToVersion(slide, first.VersionID, base.Add(2*time.Minute)); err != nil {
		t.Fatalf("revert failed: %v", err)
	}

	if len(slide.Versions) != before {
		t.Errorf("revert must not create versions, had %d now %d", before, len(slide.Versions))
	}
	if slide.Content.HTMLContent != "original" {
		t.Errorf("live content not restored, got %q", slide.Content.HTMLContent)
	}
	if slide.Content.CurrentVersionID != first.VersionID {
		t.Errorf("current_version_id not restored, got %q", slide.Content.CurrentVersionID)
	}
	for _, v := range slide.Versions {
		if v.VersionID == first.VersionID && !v.IsCurrent {
			t.Error("target version should be current")
		}
		if v.VersionID != first.VersionID && v.IsCurrent {
			t.Errorf("version %s should not be current", v.VersionID)
		}
	}
}

func TestRevertToCurrentVersionIsIdempotent(t *testing.T) {
	slide := &models.Slide{Order: 1}
	base := time.Unix(1700000000, 0).UTC()

	appendVersion(slide, "original", models.VersionCreatedBySystem, base)
	latest := appendVersion(slide, "edited", models.VersionCreatedByUser, base.Add(time.Minute))

	if err := revertToVersion(slide, latest.VersionID, base.Add(2*time.Minute)); err != nil {
		t.Fatalf("revert failed: %v", err)
	}

	if slide.Content.CurrentVersionID != latest.VersionID {
		t.Errorf("current_version_id changed, got %q", slide.Content.CurrentVersionID)
	}
	if slide.Content.HTMLContent != "edited" {
		t.Errorf("live content changed, got %q", slide.Content.HTMLContent)
	}
	current := 0
	for _, v := range slide.Versions {
		if v.IsCurrent {
			current++
		}
	}
	if current != 1 {
		t.Errorf("expected exactly one current version, got %d", current)
	}
}

func TestRevertToUnknownVersion(t *testing.T) {
	slide := &models.Slide{Order: 1}
	appendVersion(slide, "original", models.VersionCreatedBySystem, time.Now().UTC())

	err := revertToVersion(slide, "v99_0", time.Now().UTC())
	if err == nil {
		t.Fatal("expected error for unknown version")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}
