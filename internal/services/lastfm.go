// Last.fm API client used for secondary metadata enrichment.
//
// Response shapes based on https://www.last.fm/api/show/track.getInfo
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/sogik/TuneHarvester/internal/metadata"
	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/shared"
)

const (
	lastfmBaseURL = "https://ws.audioscrobbler.com/2.0/"

	// Last.fm error code for "track not found".
	lastfmNotFound = 6

	lastfmMaxTags = 5
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

type lastfmImage struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

type lastfmTrack struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Duration string `json:"duration"` // milliseconds, as a string
	Artist   struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		Title  string        `json:"title"`
		Artist string        `json:"artist"`
		Image  []lastfmImage `json:"image"`
	} `json:"album"`
	TopTags struct {
		Tag []struct {
			Name string `json:"name"`
		} `json:"tag"`
	} `json:"toptags"`
	Wiki struct {
		Published string `json:"published"`
	} `json:"wiki"`
}

type lastfmTrackInfoResponse struct {
	Track   *lastfmTrack `json:"track"`
	Error   int          `json:"error"`
	Message string       `json:"message"`
}

type lastfmSearchResponse struct {
	Results struct {
		TrackMatches struct {
			Track []struct {
				Name   string `json:"name"`
				Artist string `json:"artist"`
			} `json:"track"`
		} `json:"trackmatches"`
	} `json:"results"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// LastFMService enriches track metadata from the Last.fm catalog. A service
// constructed without an API key is disabled and enriches nothing.
type LastFMService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewLastFMService creates a Last.fm service. An empty API key is allowed
// and yields a disabled service.
func NewLastFMService(apiKey string) *LastFMService {
	return &LastFMService{
		apiKey:     apiKey,
		baseURL:    lastfmBaseURL,
		httpClient: http.DefaultClient,
	}
}

// Enabled reports whether the service holds an API key.
func (s *LastFMService) Enabled() bool {
	return s.apiKey != ""
}

func (s *LastFMService) Name() string {
	return "Last.fm"
}

func (s *LastFMService) doRequest(ctx context.Context, params url.Values, result interface{}) error {
	params.Set("api_key", s.apiKey)
	params.Set("format", "json")
	params.Set("autocorrect", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: last.fm status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (s *LastFMService) trackInfo(ctx context.Context, artist, title string) (*lastfmTrack, error) {
	params := url.Values{}
	params.Set("method", "track.getInfo")
	params.Set("artist", artist)
	params.Set("track", title)

	var response lastfmTrackInfoResponse
	if err := s.doRequest(ctx, params, &response); err != nil {
		return nil, err
	}

	if response.Error == lastfmNotFound || response.Track == nil {
		return nil, fmt.Errorf("%w: %s - %s", shared.ErrTrackNotFound, artist, title)
	}
	if response.Error != 0 {
		return nil, fmt.Errorf("%w: last.fm error %d: %s", shared.ErrAPIRequest, response.Error, response.Message)
	}

	return response.Track, nil
}

func (s *LastFMService) searchTrack(ctx context.Context, query string) (artist, title string, err error) {
	params := url.Values{}
	params.Set("method", "track.search")
	params.Set("track", query)
	params.Set("limit", "1")

	var response lastfmSearchResponse
	if err := s.doRequest(ctx, params, &response); err != nil {
		return "", "", err
	}

	matches := response.Results.TrackMatches.Track
	if len(matches) == 0 {
		return "", "", fmt.Errorf("%w: no results for %q", shared.ErrTrackNotFound, query)
	}

	return matches[0].Artist, matches[0].Name, nil
}

// Enrich looks the track up on Last.fm and returns secondary metadata.
// A disabled service, or a track Last.fm does not know, yields (nil, nil)
// so the caller can proceed with primary metadata alone.
func (s *LastFMService) Enrich(ctx context.Context, primary *models.TrackMetadata, descriptor models.QueryDescriptor) (*models.TrackMetadata, error) {
	if !s.Enabled() {
		return nil, nil
	}

	var artist, title string
	switch {
	case primary != nil && primary.Title != "":
		artist, title = primary.Artist(), primary.Title
	case descriptor.Source == models.SourceYouTube:
		artists, parsed := metadata.ParseVideoTitle(descriptor.Query)
		if len(artists) > 0 {
			artist = artists[0]
		}
		title = parsed
	default:
		artist, title = metadata.SplitQuery(descriptor.Query)
	}
	if title == "" {
		return nil, nil
	}

	track, err := s.trackInfo(ctx, artist, title)
	if errors.Is(err, shared.ErrTrackNotFound) && descriptor.Query != "" {
		// Exact lookup missed; fall back to a fuzzy catalog search.
		foundArtist, foundTitle, searchErr := s.searchTrack(ctx, descriptor.Query)
		if searchErr != nil {
			return nil, nil
		}
		track, err = s.trackInfo(ctx, foundArtist, foundTitle)
	}
	if errors.Is(err, shared.ErrTrackNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	m := trackToMetadata(track)
	if m.ReleaseYear == 0 && m.Album != "" && len(m.Artists) > 0 {
		m.ReleaseYear = s.albumYear(ctx, m.Artists[0], m.Album)
	}

	return m, nil
}

// albumYear recovers a release year from album.getInfo when the track info
// carried none. Failures are swallowed; the year is best-effort.
func (s *LastFMService) albumYear(ctx context.Context, artist, album string) int {
	params := url.Values{}
	params.Set("method", "album.getInfo")
	params.Set("artist", artist)
	params.Set("album", album)

	var response struct {
		Album struct {
			Wiki struct {
				Published string `json:"published"`
			} `json:"wiki"`
		} `json:"album"`
	}
	if err := s.doRequest(ctx, params, &response); err != nil {
		return 0
	}

	if match := yearPattern.FindString(response.Album.Wiki.Published); match != "" {
		if year, err := strconv.Atoi(match); err == nil {
			return year
		}
	}
	return 0
}

func trackToMetadata(track *lastfmTrack) *models.TrackMetadata {
	m := &models.TrackMetadata{
		Title:  track.Name,
		Album:  track.Album.Title,
		Source: models.SourceLastFM,
	}

	if track.Artist.Name != "" {
		m.Artists = []string{track.Artist.Name}
	}

	if ms, err := strconv.Atoi(track.Duration); err == nil && ms > 0 {
		m.DurationSeconds = ms / 1000
	}

	for _, tag := range track.TopTags.Tag {
		if len(m.Tags) == lastfmMaxTags {
			break
		}
		m.Tags = append(m.Tags, tag.Name)
	}

	// The image list runs small to large; take the largest usable one.
	for i := len(track.Album.Image) - 1; i >= 0; i-- {
		if track.Album.Image[i].URL != "" {
			m.ArtworkURL = track.Album.Image[i].URL
			break
		}
	}

	if match := yearPattern.FindString(track.Wiki.Published); match != "" {
		if year, err := strconv.Atoi(match); err == nil {
			m.ReleaseYear = year
		}
	}

	return m
}
