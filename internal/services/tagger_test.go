package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/shared"
)

// scriptRunner is a fakeRunner that snapshots the script file it is handed,
// since Tag removes the file afterwards.
type scriptRunner struct {
	fakeRunner
	script    string
	sawScript bool
}

func capturedScript(t *testing.T, runner *scriptRunner) string {
	t.Helper()
	call := lastCall(t, &runner.fakeRunner)
	if len(call) != 2 {
		t.Fatalf("expected interpreter plus script path, got %v", call)
	}
	if !runner.sawScript {
		t.Fatal("expected the script to exist while running")
	}
	return runner.script
}

func (f *scriptRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if len(args) == 1 {
		if data, err := os.ReadFile(args[0]); err == nil {
			f.script = string(data)
			f.sawScript = true
		}
	}
	return f.fakeRunner.Run(ctx, name, args...)
}

func TestTaggerService(t *testing.T) {
	ctx := context.Background()

	newTrack := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "Daft Punk - One More Time.m4a")
		if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("defaults interpreter name", func(t *testing.T) {
		if service := NewTaggerService(""); service.python != "python3" {
			t.Errorf("unexpected interpreter %q", service.python)
		}
		if service := NewTaggerService("/usr/bin/python3.12"); service.python != "/usr/bin/python3.12" {
			t.Errorf("unexpected interpreter %q", service.python)
		}
	})

	t.Run("Tag", func(t *testing.T) {
		t.Run("writes the metadata atoms", func(t *testing.T) {
			runner := &scriptRunner{}
			service := NewTaggerService("")
			service.SetRunner(runner)

			path := newTrack(t)
			meta := models.TrackMetadata{
				Title:       "One More Time",
				Artists:     []string{"Daft Punk"},
				Album:       "Discovery",
				ReleaseYear: 2001,
				Tags:        []string{"house", "electronic"},
			}

			if err := service.Tag(ctx, path, meta); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			call := lastCall(t, &runner.fakeRunner)
			if call[0] != "python3" {
				t.Errorf("expected python3 invocation, got %v", call)
			}

			script := runner.script
			if !runner.sawScript {
				t.Fatal("expected the script to exist while running")
			}
			for _, want := range []string{
				`audio['\xa9nam'] = ["One More Time"]`,
				`audio['\xa9ART'] = ["Daft Punk"]`,
				`audio['\xa9alb'] = ["Discovery"]`,
				`audio['\xa9day'] = ["2001"]`,
				`audio['\xa9gen'] = ["house"]`,
				"audio.save()",
			} {
				if !strings.Contains(script, want) {
					t.Errorf("expected script to contain %q:\n%s", want, script)
				}
			}
			if strings.Contains(script, "aART") {
				t.Error("single artist should not set the album-artist atom")
			}
			if strings.Contains(script, "covr") {
				t.Error("no artwork URL should mean no cover block")
			}
		})

		t.Run("joins multiple artists into the album-artist atom", func(t *testing.T) {
			runner := &scriptRunner{}
			service := NewTaggerService("")
			service.SetRunner(runner)

			meta := models.TrackMetadata{
				Title:   "Ride It",
				Artists: []string{"Regard", "Jay Sean"},
			}

			if err := service.Tag(ctx, newTrack(t), meta); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			script := capturedScript(t, runner)
			if !strings.Contains(script, `audio['\xa9ART'] = ["Regard"]`) {
				t.Errorf("expected lead artist atom:\n%s", script)
			}
			if !strings.Contains(script, `audio['aART'] = ["Regard, Jay Sean"]`) {
				t.Errorf("expected joined album-artist atom:\n%s", script)
			}
		})

		t.Run("fills album and genre defaults", func(t *testing.T) {
			runner := &scriptRunner{}
			service := NewTaggerService("")
			service.SetRunner(runner)

			meta := models.TrackMetadata{Title: "Untitled", Artists: []string{"Someone"}}

			if err := service.Tag(ctx, newTrack(t), meta); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			script := capturedScript(t, runner)
			if !strings.Contains(script, `audio['\xa9alb'] = ["Single"]`) {
				t.Errorf("expected album default:\n%s", script)
			}
			if !strings.Contains(script, `audio['\xa9gen'] = ["Music"]`) {
				t.Errorf("expected genre default:\n%s", script)
			}
			if strings.Contains(script, `\xa9day`) {
				t.Error("zero release year should not set the date atom")
			}
		})

		t.Run("embeds fetched artwork", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpeg-bytes"))
			}))
			defer server.Close()

			path := newTrack(t)
			coverPath := strings.TrimSuffix(path, ".m4a") + "_cover.jpg"

			runner := &scriptRunner{}
			runner.fakeRunner.onRun = func(args []string) {
				if _, err := os.Stat(coverPath); err != nil {
					t.Errorf("expected cover file to exist while tagging: %v", err)
				}
			}
			service := NewTaggerService("")
			service.SetRunner(runner)

			meta := models.TrackMetadata{
				Title:      "One More Time",
				Artists:    []string{"Daft Punk"},
				ArtworkURL: server.URL + "/cover.jpg",
			}

			if err := service.Tag(ctx, path, meta); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			script := capturedScript(t, runner)
			if !strings.Contains(script, "MP4Cover(f.read(), MP4Cover.FORMAT_JPEG)") {
				t.Errorf("expected cover block in script:\n%s", script)
			}
			if _, err := os.Stat(coverPath); !os.IsNotExist(err) {
				t.Error("expected cover file to be removed after tagging")
			}
		})

		t.Run("artwork failure still tags the rest", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			runner := &scriptRunner{}
			service := NewTaggerService("")
			service.SetRunner(runner)

			meta := models.TrackMetadata{
				Title:      "One More Time",
				Artists:    []string{"Daft Punk"},
				ArtworkURL: server.URL + "/cover.jpg",
			}

			if err := service.Tag(ctx, newTrack(t), meta); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			script := capturedScript(t, runner)
			if strings.Contains(script, "covr") {
				t.Errorf("expected no cover block after failed fetch:\n%s", script)
			}
		})

		t.Run("interpreter failure wraps the tagging sentinel", func(t *testing.T) {
			runner := &fakeRunner{err: errors.New("mutagen not installed")}
			service := NewTaggerService("")
			service.SetRunner(runner)

			meta := models.TrackMetadata{Title: "One More Time", Artists: []string{"Daft Punk"}}

			err := service.Tag(ctx, newTrack(t), meta)
			if !errors.Is(err, shared.ErrTagging) {
				t.Errorf("expected ErrTagging, got %v", err)
			}
		})

		t.Run("removes the script afterwards", func(t *testing.T) {
			runner := &scriptRunner{}
			service := NewTaggerService("")
			service.SetRunner(runner)

			path := newTrack(t)
			if err := service.Tag(ctx, path, models.TrackMetadata{Title: "X"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			entries, err := os.ReadDir(filepath.Dir(path))
			if err != nil {
				t.Fatal(err)
			}
			for _, entry := range entries {
				if strings.HasPrefix(entry.Name(), ".tag_") {
					t.Errorf("expected script %s to be removed", entry.Name())
				}
			}
		})
	})
}
