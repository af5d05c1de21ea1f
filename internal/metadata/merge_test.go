package metadata

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/shared"
)

func TestMerge(t *testing.T) {
	primary := &models.TrackMetadata{
		Title:           "One More Time",
		Artists:         []string{"Daft Punk"},
		Album:           "Discovery",
		DurationSeconds: 320,
		ReleaseYear:     2001,
		Source:          models.SourceSpotify,
	}
	secondary := &models.TrackMetadata{
		Title:           "One More Time",
		Artists:         []string{"Daft Punk"},
		Album:           "Discovery (Deluxe)",
		DurationSeconds: 321,
		ReleaseYear:     2000,
		Tags:            []string{"house", "electronic"},
		ArtworkURL:      "https://img.example/discovery.jpg",
		Source:          models.SourceLastFM,
	}

	t.Run("primary wins identity fields", func(t *testing.T) {
		merged, err := Merge(primary, secondary, "daft punk one more time")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if merged.Album != "Discovery" {
			t.Errorf("expected primary album, got %q", merged.Album)
		}
		if merged.DurationSeconds != 320 {
			t.Errorf("expected primary duration, got %d", merged.DurationSeconds)
		}
		if merged.ReleaseYear != 2001 {
			t.Errorf("expected primary year, got %d", merged.ReleaseYear)
		}
		if merged.Source != models.SourceSpotify {
			t.Errorf("expected spotify source, got %v", merged.Source)
		}
	})

	t.Run("tags and artwork come from secondary only", func(t *testing.T) {
		merged, err := Merge(primary, secondary, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(merged.Tags, []string{"house", "electronic"}) {
			t.Errorf("expected secondary tags, got %v", merged.Tags)
		}
		if merged.ArtworkURL != "https://img.example/discovery.jpg" {
			t.Errorf("expected secondary artwork, got %q", merged.ArtworkURL)
		}

		noSecondary, err := Merge(primary, nil, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(noSecondary.Tags) != 0 || noSecondary.ArtworkURL != "" {
			t.Error("expected no tags or artwork without a secondary source")
		}
	})

	t.Run("secondary fills gaps in primary", func(t *testing.T) {
		sparse := &models.TrackMetadata{Title: "One More Time", Source: models.SourceSpotify}
		merged, err := Merge(sparse, secondary, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(merged.Artists, []string{"Daft Punk"}) {
			t.Errorf("expected secondary artists, got %v", merged.Artists)
		}
		if merged.Album != "Discovery (Deluxe)" {
			t.Errorf("expected secondary album, got %q", merged.Album)
		}
		if merged.ReleaseYear != 2000 {
			t.Errorf("expected secondary year, got %d", merged.ReleaseYear)
		}
	})

	t.Run("fallback alone produces a usable record", func(t *testing.T) {
		merged, err := Merge(nil, nil, "Daft Punk - Harder Better Faster Stronger")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if merged.Title != "Harder Better Faster Stronger" {
			t.Errorf("unexpected title %q", merged.Title)
		}
		if !reflect.DeepEqual(merged.Artists, []string{"Daft Punk"}) {
			t.Errorf("unexpected artists %v", merged.Artists)
		}
		if merged.Source != models.SourceFreeText {
			t.Errorf("expected free-text source, got %v", merged.Source)
		}
	})

	t.Run("fallback without separator still yields a title", func(t *testing.T) {
		merged, err := Merge(nil, nil, "Daft Punk One More Time")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if merged.Title == "" {
			t.Error("expected non-empty title")
		}
	})

	t.Run("nothing to merge is skipped", func(t *testing.T) {
		_, err := Merge(nil, nil, "")
		if !errors.Is(err, shared.ErrMergeSkip) {
			t.Errorf("expected ErrMergeSkip, got %v", err)
		}

		_, err = Merge(&models.TrackMetadata{}, &models.TrackMetadata{}, "   ")
		if !errors.Is(err, shared.ErrMergeSkip) {
			t.Errorf("expected ErrMergeSkip, got %v", err)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		first, err := Merge(primary, secondary, "fallback text")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := Merge(primary, secondary, "fallback text")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Error("expected identical results for identical inputs")
		}
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		before := *primary
		beforeArtists := append([]string(nil), primary.Artists...)
		if _, err := Merge(primary, secondary, ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if primary.Title != before.Title || !reflect.DeepEqual(primary.Artists, beforeArtists) {
			t.Error("expected primary input to be unchanged")
		}
	})
}
