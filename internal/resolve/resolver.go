// Package resolve turns the harvest argument, a URL, a file path, or a
// free-text query, into an ordered list of track descriptors plus the
// playlist context the downloads land in.
package resolve

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/services"
	"github.com/sogik/TuneHarvester/internal/shared"
)

var (
	spotifyPlaylistPattern = regexp.MustCompile(`(?:open\.spotify\.com/(?:intl-[a-z-]+/)?playlist/|spotify:playlist:)([A-Za-z0-9]+)`)
	spotifyTrackPattern    = regexp.MustCompile(`(?:open\.spotify\.com/(?:intl-[a-z-]+/)?track/|spotify:track:)([A-Za-z0-9]+)`)
	youtubePlaylistPattern = regexp.MustCompile(`(?:youtube\.com|youtu\.be|music\.youtube\.com)/\S*[?&]list=[A-Za-z0-9_-]+`)
)

// SpotifyLister resolves Spotify IDs into track descriptors.
// *services.SpotifyService satisfies it; a nil lister means Spotify
// credentials are absent and Spotify URLs are rejected.
type SpotifyLister interface {
	TrackDescriptor(ctx context.Context, trackID string) (models.QueryDescriptor, error)
	PlaylistDescriptors(ctx context.Context, playlistID string) (string, []models.QueryDescriptor, error)
}

// PlaylistFlattener lists the videos of a YouTube playlist without
// resolving stream formats. *services.YTDLPService satisfies it.
type PlaylistFlattener interface {
	PlaylistEntries(ctx context.Context, playlistURL string) (string, []services.Video, error)
}

// Options carry the CLI overrides that shape the playlist context.
type Options struct {
	PlaylistName    string
	DestinationRoot string
}

// Resolver classifies a harvest source and expands it into descriptors.
type Resolver struct {
	spotify SpotifyLister
	youtube PlaylistFlattener
	logger  *log.Logger
}

func NewResolver(spotify SpotifyLister, youtube PlaylistFlattener, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{spotify: spotify, youtube: youtube, logger: logger}
}

// Resolve expands input into track descriptors and the playlist context.
// The only fatal outcome is shared.ErrInvalidSource: an empty input, a
// recognized URL that yields nothing, or a listing call that fails.
func (r *Resolver) Resolve(ctx context.Context, input string, opts Options) ([]models.QueryDescriptor, models.PlaylistContext, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, models.PlaylistContext{}, fmt.Errorf("%w: empty source", shared.ErrInvalidSource)
	}

	var (
		name        string
		descriptors []models.QueryDescriptor
		err         error
	)

	switch {
	case spotifyPlaylistPattern.MatchString(input):
		id := spotifyPlaylistPattern.FindStringSubmatch(input)[1]
		name, descriptors, err = r.resolveSpotifyPlaylist(ctx, id)

	case spotifyTrackPattern.MatchString(input):
		id := spotifyTrackPattern.FindStringSubmatch(input)[1]
		descriptors, err = r.resolveSpotifyTrack(ctx, id)

	case youtubePlaylistPattern.MatchString(input):
		name, descriptors, err = r.resolveYouTubePlaylist(ctx, input)

	case isReadableFile(input):
		name, descriptors, err = r.resolveFile(input)

	default:
		descriptors = []models.QueryDescriptor{{Source: models.SourceFreeText, Query: input, Position: 1}}
	}

	if err != nil {
		return nil, models.PlaylistContext{}, err
	}
	if len(descriptors) == 0 {
		return nil, models.PlaylistContext{}, fmt.Errorf("%w: no tracks found in %q", shared.ErrInvalidSource, input)
	}

	if opts.PlaylistName != "" {
		name = opts.PlaylistName
	}

	pctx := models.PlaylistContext{
		Name:            name,
		DestinationRoot: opts.DestinationRoot,
		TrackCount:      len(descriptors),
	}

	r.logger.Info("resolved source", "tracks", len(descriptors), "playlist", name)
	return descriptors, pctx, nil
}

func (r *Resolver) resolveSpotifyPlaylist(ctx context.Context, playlistID string) (string, []models.QueryDescriptor, error) {
	if r.spotify == nil {
		return "", nil, fmt.Errorf("%w: spotify credentials required for spotify URLs", shared.ErrInvalidSource)
	}

	name, descriptors, err := r.spotify.PlaylistDescriptors(ctx, playlistID)
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to list spotify playlist %s: %v", shared.ErrInvalidSource, playlistID, err)
	}
	return name, descriptors, nil
}

func (r *Resolver) resolveSpotifyTrack(ctx context.Context, trackID string) ([]models.QueryDescriptor, error) {
	if r.spotify == nil {
		return nil, fmt.Errorf("%w: spotify credentials required for spotify URLs", shared.ErrInvalidSource)
	}

	descriptor, err := r.spotify.TrackDescriptor(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch spotify track %s: %v", shared.ErrInvalidSource, trackID, err)
	}
	descriptor.Position = 1
	return []models.QueryDescriptor{descriptor}, nil
}

func (r *Resolver) resolveYouTubePlaylist(ctx context.Context, playlistURL string) (string, []models.QueryDescriptor, error) {
	title, videos, err := r.youtube.PlaylistEntries(ctx, playlistURL)
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to list youtube playlist: %v", shared.ErrInvalidSource, err)
	}

	descriptors := make([]models.QueryDescriptor, 0, len(videos))
	for i, video := range videos {
		descriptors = append(descriptors, models.QueryDescriptor{
			Source:   models.SourceYouTube,
			ID:       video.ID,
			Query:    video.Title,
			Position: i + 1,
		})
	}

	return title, descriptors, nil
}

// resolveFile reads one query per line, skipping blanks and `#` comments.
func (r *Resolver) resolveFile(path string) (string, []models.QueryDescriptor, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to open %s: %v", shared.ErrInvalidSource, path, err)
	}
	defer file.Close()

	var descriptors []models.QueryDescriptor
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		descriptors = append(descriptors, models.QueryDescriptor{
			Source:   models.SourceFreeText,
			Query:    line,
			Position: len(descriptors) + 1,
		})
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("%w: failed to read %s: %v", shared.ErrInvalidSource, path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return stem, descriptors, nil
}

func isReadableFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
