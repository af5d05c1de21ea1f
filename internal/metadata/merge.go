package metadata

import (
	"fmt"
	"strings"

	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/shared"
)

// Merge combines primary (Spotify) and secondary (Last.fm) metadata with a
// free-text fallback into one canonical record. Field precedence is fixed:
// identity fields take primary, then secondary, then the parsed fallback.
// Tags and artwork come from the secondary source only. The result's Source
// records which input supplied the title.
//
// Merge is pure: the same inputs always produce the same output, and the
// inputs are never mutated.
func Merge(primary, secondary *models.TrackMetadata, fallback string) (models.TrackMetadata, error) {
	fallbackArtist, fallbackTitle := SplitQuery(fallback)

	var merged models.TrackMetadata

	switch {
	case primary != nil && primary.Title != "":
		merged.Title = primary.Title
		merged.Source = primary.Source
	case secondary != nil && secondary.Title != "":
		merged.Title = secondary.Title
		merged.Source = secondary.Source
	case fallbackTitle != "":
		merged.Title = fallbackTitle
		merged.Source = models.SourceFreeText
	default:
		return models.TrackMetadata{}, fmt.Errorf("%w: no title in any source for %q", shared.ErrMergeSkip, strings.TrimSpace(fallback))
	}

	switch {
	case primary != nil && len(primary.Artists) > 0:
		merged.Artists = append([]string(nil), primary.Artists...)
	case secondary != nil && len(secondary.Artists) > 0:
		merged.Artists = append([]string(nil), secondary.Artists...)
	case fallbackArtist != "":
		merged.Artists = []string{fallbackArtist}
	}

	switch {
	case primary != nil && primary.Album != "":
		merged.Album = primary.Album
	case secondary != nil && secondary.Album != "":
		merged.Album = secondary.Album
	}

	switch {
	case primary != nil && primary.DurationSeconds > 0:
		merged.DurationSeconds = primary.DurationSeconds
	case secondary != nil && secondary.DurationSeconds > 0:
		merged.DurationSeconds = secondary.DurationSeconds
	}

	switch {
	case primary != nil && primary.ReleaseYear > 0:
		merged.ReleaseYear = primary.ReleaseYear
	case secondary != nil && secondary.ReleaseYear > 0:
		merged.ReleaseYear = secondary.ReleaseYear
	}

	if secondary != nil {
		merged.Tags = append([]string(nil), secondary.Tags...)
		merged.ArtworkURL = secondary.ArtworkURL
	}

	return merged, nil
}
