package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/shared"
)

const defaultPython = "python3"

// TaggerService writes merged metadata into downloaded M4A files. The files
// carry MP4 atoms, not ID3 frames, so tagging goes through a generated
// mutagen script run by the Python interpreter.
type TaggerService struct {
	python     string
	runner     CommandRunner
	httpClient *http.Client
}

// NewTaggerService creates a tagger. An empty interpreter name defaults to
// "python3" resolved from PATH.
func NewTaggerService(python string) *TaggerService {
	if python == "" {
		python = defaultPython
	}
	return &TaggerService{
		python:     python,
		runner:     execRunner{},
		httpClient: http.DefaultClient,
	}
}

// SetRunner replaces the command runner. Tests inject a fake here.
func (s *TaggerService) SetRunner(runner CommandRunner) {
	s.runner = runner
}

func (s *TaggerService) Name() string {
	return "mutagen"
}

// Available reports whether the Python interpreter can be found on PATH.
func (s *TaggerService) Available() bool {
	_, err := exec.LookPath(s.python)
	return err == nil
}

// Tag writes meta into the M4A file at path. Cover art is fetched from
// meta.ArtworkURL when present; a failed fetch drops the cover but still
// tags the rest.
func (s *TaggerService) Tag(ctx context.Context, path string, meta models.TrackMetadata) error {
	coverPath := ""
	if meta.ArtworkURL != "" {
		if fetched, err := s.fetchArtwork(ctx, meta.ArtworkURL, path); err == nil {
			coverPath = fetched
			defer os.Remove(coverPath)
		}
	}

	script := buildTagScript(path, meta, coverPath)

	scriptPath := filepath.Join(filepath.Dir(path), fmt.Sprintf(".tag_%d.py", time.Now().UnixNano()))
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTagging, err)
	}
	defer os.Remove(scriptPath)

	if _, err := s.runner.Run(ctx, s.python, scriptPath); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTagging, err)
	}

	return nil
}

// fetchArtwork downloads the album art next to the track file as
// "{stem}_cover.jpg". The caller removes it after tagging.
func (s *TaggerService) fetchArtwork(ctx context.Context, artworkURL, trackPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artworkURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: artwork status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	coverPath := strings.TrimSuffix(trackPath, filepath.Ext(trackPath)) + "_cover.jpg"
	if err := os.WriteFile(coverPath, data, 0644); err != nil {
		return "", err
	}

	return coverPath, nil
}

// buildTagScript renders the mutagen script that sets the MP4 atoms:
// title, artist (aART carries the full list), album, year, genre, cover.
// Go %q escaping is valid inside Python string literals.
func buildTagScript(path string, meta models.TrackMetadata, coverPath string) string {
	var b strings.Builder

	b.WriteString("import sys\n")
	b.WriteString("from mutagen.mp4 import MP4, MP4Cover\n\n")
	b.WriteString("try:\n")
	fmt.Fprintf(&b, "    audio = MP4(%q)\n", path)
	fmt.Fprintf(&b, "    audio['\\xa9nam'] = [%q]\n", meta.Title)

	if len(meta.Artists) > 0 {
		fmt.Fprintf(&b, "    audio['\\xa9ART'] = [%q]\n", meta.Artists[0])
	}
	if len(meta.Artists) > 1 {
		fmt.Fprintf(&b, "    audio['aART'] = [%q]\n", strings.Join(meta.Artists, ", "))
	}

	album := meta.Album
	if album == "" {
		album = "Single"
	}
	fmt.Fprintf(&b, "    audio['\\xa9alb'] = [%q]\n", album)

	if meta.ReleaseYear > 0 {
		fmt.Fprintf(&b, "    audio['\\xa9day'] = [%q]\n", strconv.Itoa(meta.ReleaseYear))
	}

	genre := "Music"
	if len(meta.Tags) > 0 {
		genre = meta.Tags[0]
	}
	fmt.Fprintf(&b, "    audio['\\xa9gen'] = [%q]\n", genre)

	if coverPath != "" {
		fmt.Fprintf(&b, "    with open(%q, 'rb') as f:\n", coverPath)
		b.WriteString("        audio['covr'] = [MP4Cover(f.read(), MP4Cover.FORMAT_JPEG)]\n")
	}

	b.WriteString("    audio.save()\n")
	b.WriteString("except Exception as e:\n")
	b.WriteString("    print(e, file=sys.stderr)\n")
	b.WriteString("    sys.exit(1)\n")

	return b.String()
}
