// Spotify Web API client using the client credentials grant.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/sogik/TuneHarvester/internal/metadata"
	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Search hits scoring below this against the query are discarded.
	spotifyMatchThreshold = 0.5
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	TotalTracks int            `json:"total_tracks"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// Metadata converts the Spotify track into the common track representation.
func (t *SpotifyTrack) Metadata() models.TrackMetadata {
	m := models.TrackMetadata{
		Title:           t.Name,
		Album:           t.Album.Name,
		DurationSeconds: t.DurationMS / 1000,
		Source:          models.SourceSpotify,
	}

	for _, artist := range t.Artists {
		m.Artists = append(m.Artists, artist.Name)
	}

	if len(t.Album.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(t.Album.ReleaseDate[:4]); err == nil {
			m.ReleaseYear = year
		}
	}

	if len(t.Album.Images) > 0 {
		m.ArtworkURL = t.Album.Images[0].URL
	}

	return m
}

// searchQuery renders the track as "artist1 artist2 … title" for use as a
// descriptor query and search input.
func (t *SpotifyTrack) searchQuery() string {
	parts := make([]string, 0, len(t.Artists)+1)
	for _, artist := range t.Artists {
		parts = append(parts, artist.Name)
	}
	return strings.TrimSpace(strings.Join(append(parts, t.Name), " "))
}

type spotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTrackPage struct {
	Items []struct {
		Track SpotifyTrack `json:"track"`
	} `json:"items"`
	Total int     `json:"total"`
	Next  *string `json:"next"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Owner       spotifyOwner      `json:"owner"`
	Public      bool              `json:"public"`
	Tracks      playlistTrackPage `json:"tracks"`
	Images      []SpotifyImage    `json:"images"`
	URI         string            `json:"uri"`
}

// SpotifyService fetches primary track metadata from the Spotify Web API.
// Authentication uses the client credentials grant via [clientcredentials],
// so no user interaction or browser flow is required.
type SpotifyService struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client

	mu    sync.Mutex
	known map[string]*SpotifyTrack
}

// NewSpotifyService creates a Spotify service with the given application
// credentials. Call Authenticate before any other method.
func NewSpotifyService(clientID, clientSecret string) (*SpotifyService, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client id and secret", shared.ErrMissingCredentials)
	}

	return &SpotifyService{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      spotifyBaseURL,
		known:        make(map[string]*SpotifyTrack),
	}, nil
}

// Authenticate obtains an application token via the client credentials grant
// and installs a self-refreshing HTTP client.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	config := &clientcredentials.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	if _, err := config.Token(ctx); err != nil {
		return fmt.Errorf("failed to obtain spotify token: %w", err)
	}

	s.httpClient = config.Client(ctx)
	return nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated GET request against the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrMissingCredentials)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	var track SpotifyTrack
	if err := s.doRequest(ctx, fmt.Sprintf("/tracks/%s", trackID), &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// Playlist retrieves a playlist by ID, including its first page of tracks.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, fmt.Sprintf("/playlists/%s", playlistID), &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// PlaylistTracks retrieves every track in a playlist, following pagination.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]SpotifyTrack, error) {
	var tracks []SpotifyTrack
	limit, offset := 100, 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, limit, offset)

		var page playlistTrackPage
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track.ID == "" {
				continue // local files and removed tracks have no ID
			}
			tracks = append(tracks, item.Track)
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// Search runs a track search and returns the raw hits.
func (s *SpotifyService) Search(ctx context.Context, query string, limit int) ([]SpotifyTrack, error) {
	if limit <= 0 {
		limit = 5
	}

	endpoint := fmt.Sprintf("/search?type=track&limit=%d&q=%s", limit, url.QueryEscape(query))

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return response.Tracks.Items, nil
}

// TrackDescriptor builds a query descriptor for a single Spotify track,
// priming the lookup cache so FetchPrimary does not refetch it.
func (s *SpotifyService) TrackDescriptor(ctx context.Context, trackID string) (models.QueryDescriptor, error) {
	track, err := s.Track(ctx, trackID)
	if err != nil {
		return models.QueryDescriptor{}, err
	}

	s.remember(track)
	return models.QueryDescriptor{
		Source: models.SourceSpotify,
		ID:     track.ID,
		Query:  track.searchQuery(),
	}, nil
}

// PlaylistDescriptors resolves a Spotify playlist into its name and one
// descriptor per track, priming the lookup cache along the way.
func (s *SpotifyService) PlaylistDescriptors(ctx context.Context, playlistID string) (string, []models.QueryDescriptor, error) {
	playlist, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return "", nil, err
	}

	tracks, err := s.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return "", nil, err
	}

	descriptors := make([]models.QueryDescriptor, 0, len(tracks))
	for i := range tracks {
		track := &tracks[i]
		s.remember(track)
		descriptors = append(descriptors, models.QueryDescriptor{
			Source:   models.SourceSpotify,
			ID:       track.ID,
			Query:    track.searchQuery(),
			Position: i + 1,
		})
	}

	return playlist.Name, descriptors, nil
}

// FetchPrimary resolves a descriptor into primary track metadata.
// Descriptors carrying a Spotify ID are fetched directly; everything else
// goes through search, keeping only hits that score above the match
// threshold. No acceptable hit yields (nil, nil) so the caller can fall
// back to other sources.
func (s *SpotifyService) FetchPrimary(ctx context.Context, descriptor models.QueryDescriptor) (*models.TrackMetadata, error) {
	if descriptor.Source == models.SourceSpotify && descriptor.ID != "" {
		track := s.recall(descriptor.ID)
		if track == nil {
			fetched, err := s.Track(ctx, descriptor.ID)
			if err != nil {
				return nil, err
			}
			track = fetched
		}
		m := track.Metadata()
		return &m, nil
	}

	if descriptor.Query == "" {
		return nil, fmt.Errorf("%w: empty query", shared.ErrInvalidInput)
	}

	var wantArtist, wantTitle string
	if descriptor.Source == models.SourceYouTube {
		artists, title := metadata.ParseVideoTitle(descriptor.Query)
		if len(artists) > 0 {
			wantArtist = artists[0]
		}
		wantTitle = title
	} else {
		wantArtist, wantTitle = metadata.SplitQuery(descriptor.Query)
	}

	hits, err := s.Search(ctx, descriptor.Query, 5)
	if err != nil {
		return nil, err
	}

	var best *SpotifyTrack
	bestScore := 0.0
	for i := range hits {
		hit := hits[i].Metadata()
		score := metadata.MatchScore(wantArtist, wantTitle, hit.Artists, hits[i].Name)
		if score > bestScore {
			best, bestScore = &hits[i], score
		}
	}

	if best == nil || bestScore < spotifyMatchThreshold {
		return nil, nil
	}

	m := best.Metadata()
	return &m, nil
}

func (s *SpotifyService) remember(track *SpotifyTrack) {
	s.mu.Lock()
	s.known[track.ID] = track
	s.mu.Unlock()
}

func (s *SpotifyService) recall(trackID string) *SpotifyTrack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.known[trackID]
}
