// yt-dlp subprocess wrapper for stream search, playlist listing, and
// audio downloads.
package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sogik/TuneHarvester/internal/shared"
)

// Format chain preferring AAC streams: itag 140 (m4a 128k), then any m4a,
// then any AAC stream, then whatever yt-dlp considers best.
const audioFormat = "140/bestaudio[ext=m4a]/bestaudio[acodec*=aac]/bestaudio"

// Extensions to probe when locating a finished download. yt-dlp picks the
// container, so the file on disk may not match the requested format.
var downloadExtensions = []string{".m4a", ".aac", ".mp4", ".webm", ".opus", ".mp3"}

// CommandRunner executes an external command and returns its stdout.
// Tests substitute a fake; production code uses [execRunner].
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %s: %w", name, detail, err)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", name, err)
	}

	return stdout.Bytes(), nil
}

// YTDLPService shells out to the yt-dlp binary to search for streams,
// flatten playlists, and download audio.
type YTDLPService struct {
	binary string
	runner CommandRunner
}

// NewYTDLPService creates a yt-dlp service. An empty binary name defaults
// to "yt-dlp" resolved from PATH.
func NewYTDLPService(binary string) *YTDLPService {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YTDLPService{binary: binary, runner: execRunner{}}
}

// SetRunner swaps the command runner. Used by tests.
func (s *YTDLPService) SetRunner(runner CommandRunner) {
	s.runner = runner
}

func (s *YTDLPService) Name() string {
	return "yt-dlp"
}

// Available reports whether the configured binary can be resolved.
func (s *YTDLPService) Available() bool {
	_, err := exec.LookPath(s.binary)
	return err == nil
}

// FindStream searches YouTube for the query and returns the top hit.
func (s *YTDLPService) FindStream(ctx context.Context, query string) (*Video, error) {
	args := []string{
		"--quiet",
		"--no-warnings",
		"--no-playlist",
		"--skip-download",
		"--dump-json",
		"ytsearch1:" + query,
	}

	output, err := s.runner.Run(ctx, s.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("stream search failed: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, fmt.Errorf("%w: no results for %q", shared.ErrStreamNotFound, query)
	}

	var video Video
	if err := json.Unmarshal([]byte(lines[0]), &video); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}
	if video.ID == "" {
		return nil, fmt.Errorf("%w: no results for %q", shared.ErrStreamNotFound, query)
	}

	return &video, nil
}

// PlaylistEntries flattens a YouTube playlist into its title and the videos
// it contains, without resolving individual stream formats.
func (s *YTDLPService) PlaylistEntries(ctx context.Context, playlistURL string) (string, []Video, error) {
	args := []string{
		"--quiet",
		"--no-warnings",
		"--flat-playlist",
		"--dump-json",
		playlistURL,
	}

	output, err := s.runner.Run(ctx, s.binary, args...)
	if err != nil {
		return "", nil, fmt.Errorf("playlist listing failed: %w", err)
	}

	var title string
	var videos []Video

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry struct {
			Video
			PlaylistTitle string `json:"playlist_title"`
			PlaylistID    string `json:"playlist_id"`
			URL           string `json:"url"`
		}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.ID == "" {
			continue
		}

		if title == "" && entry.PlaylistTitle != "" {
			title = entry.PlaylistTitle
		}

		video := entry.Video
		if video.URL == "" {
			video.URL = entry.URL
		}
		videos = append(videos, video)
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("failed to read yt-dlp output: %w", err)
	}

	if len(videos) == 0 {
		return "", nil, fmt.Errorf("%w: empty playlist at %s", shared.ErrStreamNotFound, playlistURL)
	}

	return title, videos, nil
}

// Download fetches the audio stream for the video URL into destDir using
// baseName (without extension) and returns the path of the file on disk.
func (s *YTDLPService) Download(ctx context.Context, videoURL, destDir, baseName string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	template := filepath.Join(destDir, baseName+".%(ext)s")
	args := []string{
		"--quiet",
		"--no-warnings",
		"--no-playlist",
		"--format", audioFormat,
		"--output", template,
		videoURL,
	}

	if _, err := s.runner.Run(ctx, s.binary, args...); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrDownload, err)
	}

	path := s.findDownloadedFile(destDir, baseName)
	if path == "" {
		return "", fmt.Errorf("%w: no file produced for %s", shared.ErrDownload, baseName)
	}

	return path, nil
}

// findDownloadedFile locates the file yt-dlp wrote, trying known audio
// extensions first and falling back to a prefix scan of the directory.
func (s *YTDLPService) findDownloadedFile(destDir, baseName string) string {
	for _, ext := range downloadExtensions {
		candidate := filepath.Join(destDir, baseName+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), baseName+".") {
			return filepath.Join(destDir, entry.Name())
		}
	}

	return ""
}
