package generation

import (
	"errors"
	"fmt"
	"time"

	"deckflow/internal/models"
)

// ErrVersionNotFound is returned when a slide has no version with the
// requested identifier.
var ErrVersionNotFound = errors.New("version not found")

// maxVersionsPerSlide caps the history kept per slide. Oldest entries are
// dropped first.
const maxVersionsPerSlide = 10

// newVersionID builds the next version identifier for a slide. The sequence
// number is one past the current history length, so the seed version of a
// fresh slide is always v1.
func newVersionID(slide *models.Slide, now time.Time) string {
	return fmt.Sprintf("v%d_%d", len(slide.Versions)+1, now.Unix())
}

// appendVersion records content as a new current version on the slide,
// demoting any previous current version and enforcing the history cap.
func appendVersion(slide *models.Slide, content, createdBy string, now time.Time) models.SlideVersion {
	versionID := newVersionID(slide, now)

	for i := range slide.Versions {
		slide.Versions[i].IsCurrent = false
	}

	version := models.SlideVersion{
		VersionID: versionID,
		Content:   content,
		Timestamp: now,
		IsCurrent: true,
		CreatedBy: createdBy,
	}
	slide.Versions = append(slide.Versions, version)
	if len(slide.Versions) > maxVersionsPerSlide {
		slide.Versions = slide.Versions[len(slide.Versions)-maxVersionsPerSlide:]
	}

	slide.Content.HTMLContent = content
	slide.Content.CurrentVersionID = versionID
	slide.Content.UpdatedAt = now

	return version
}

// revertToVersion makes the named historical version current again, copying
// its content into the slide's live content. No new version is created.
func revertToVersion(slide *models.Slide, versionID string, now time.Time) error {
	var target *models.SlideVersion
	for i := range slide.Versions {
		if slide.Versions[i].VersionID == versionID {
			target = &slide.Versions[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %s", ErrVersionNotFound, versionID)
	}

	for i := range slide.Versions {
		slide.Versions[i].IsCurrent = slide.Versions[i].VersionID == versionID
	}

	slide.Content.HTMLContent = target.Content
	slide.Content.CurrentVersionID = versionID
	slide.Content.UpdatedAt = now
	return nil
}
