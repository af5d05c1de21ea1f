package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sogik/TuneHarvester/internal/models"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "One More Time", "One More Time"},
		{"reserved characters", `AC/DC: Back <in> Black?*`, "ACDC Back in Black"},
		{"trailing dots and spaces", "What... ", "What"},
		{"control characters", "Bad\x00Name\x1f", "BadName"},
		{"backslash and pipe", `a\b|c`, "abc"},
		{"quotes", `"Heroes"`, "Heroes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOrganizer(t *testing.T) {
	meta := models.TrackMetadata{Title: "One More Time", Artists: []string{"Daft Punk"}}

	t.Run("playlist folder layout", func(t *testing.T) {
		organizer := NewOrganizer("/music")
		pctx := models.PlaylistContext{Name: "Summer Mix"}

		path := organizer.TrackPath(pctx, meta)
		want := filepath.Join("/music", "Summer Mix", "Daft Punk - One More Time.m4a")
		if path != want {
			t.Errorf("got %q, want %q", path, want)
		}
	})

	t.Run("empty playlist name writes into root", func(t *testing.T) {
		organizer := NewOrganizer("/music")
		path := organizer.TrackPath(models.PlaylistContext{}, meta)
		want := filepath.Join("/music", "Daft Punk - One More Time.m4a")
		if path != want {
			t.Errorf("got %q, want %q", path, want)
		}
	})

	t.Run("destination root override", func(t *testing.T) {
		organizer := NewOrganizer("/music")
		pctx := models.PlaylistContext{Name: "Mix", DestinationRoot: "/elsewhere"}
		path := organizer.TrackPath(pctx, meta)
		if filepath.Dir(path) != filepath.Join("/elsewhere", "Mix") {
			t.Errorf("unexpected dir %q", filepath.Dir(path))
		}
	})

	t.Run("titleless artist omitted", func(t *testing.T) {
		organizer := NewOrganizer("/music")
		path := organizer.TrackPath(models.PlaylistContext{}, models.TrackMetadata{Title: "Mystery Song"})
		if filepath.Base(path) != "Mystery Song.m4a" {
			t.Errorf("unexpected name %q", filepath.Base(path))
		}
	})

	t.Run("collision suffixes", func(t *testing.T) {
		organizer := NewOrganizer("/music")
		pctx := models.PlaylistContext{Name: "Mix"}

		first := organizer.TrackPath(pctx, meta)
		second := organizer.TrackPath(pctx, meta)
		third := organizer.TrackPath(pctx, meta)

		if filepath.Base(first) != "Daft Punk - One More Time.m4a" {
			t.Errorf("unexpected first %q", first)
		}
		if filepath.Base(second) != "Daft Punk - One More Time (2).m4a" {
			t.Errorf("unexpected second %q", second)
		}
		if filepath.Base(third) != "Daft Punk - One More Time (3).m4a" {
			t.Errorf("unexpected third %q", third)
		}
	})

	t.Run("collision with file on disk", func(t *testing.T) {
		root := t.TempDir()
		existing := filepath.Join(root, "Daft Punk - One More Time.m4a")
		if err := os.WriteFile(existing, []byte("audio"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		organizer := NewOrganizer(root)
		path := organizer.TrackPath(models.PlaylistContext{}, meta)
		if filepath.Base(path) != "Daft Punk - One More Time (2).m4a" {
			t.Errorf("expected suffix for on-disk collision, got %q", path)
		}
	})

	t.Run("concurrent allocation stays unique", func(t *testing.T) {
		organizer := NewOrganizer("/music")
		pctx := models.PlaylistContext{Name: "Mix"}

		const workers = 16
		paths := make([]string, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				paths[i] = organizer.TrackPath(pctx, meta)
			}(i)
		}
		wg.Wait()

		seen := make(map[string]bool)
		for _, p := range paths {
			if seen[p] {
				t.Fatalf("duplicate path handed out: %q", p)
			}
			seen[p] = true
		}
	})

	t.Run("unknown track fallback", func(t *testing.T) {
		organizer := NewOrganizer("/music")
		path := organizer.TrackPath(models.PlaylistContext{}, models.TrackMetadata{Title: "???"})
		if filepath.Base(path) != fmt.Sprintf("Unknown Track%s", trackExtension) {
			t.Errorf("unexpected name %q", filepath.Base(path))
		}
	})
}
