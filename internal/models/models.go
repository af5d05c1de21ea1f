// package models defines the data model for track resolution and download
package models

// Source identifies where a descriptor or a metadata field came from.
type Source int

const (
	SourceFreeText Source = iota
	SourceSpotify
	SourceYouTube
	SourceLastFM
)

func (s Source) String() string {
	switch s {
	case SourceSpotify:
		return "spotify"
	case SourceYouTube:
		return "youtube"
	case SourceLastFM:
		return "lastfm"
	case SourceFreeText:
		return "freetext"
	default:
		return ""
	}
}

// QueryDescriptor is one unresolved unit of work: a single track to be
// found and downloaded. Produced by the resolver, consumed by the fetchers.
//
// ID holds a Spotify track ID or YouTube video ID when the source provides
// one. Query is the fallback text ("Artist Title", a video title, or a raw
// file line) used as a last-resort source of title and artist.
type QueryDescriptor struct {
	Source   Source
	ID       string
	Query    string
	Position int // 1-based position within the source playlist
}

// TrackMetadata describes a single track. Zero values mean "absent".
//
// Two partial instances exist per track during resolution (one from each
// fetcher); they are merged into one canonical instance that flows
// unchanged to the downloader.
type TrackMetadata struct {
	Title           string   `json:"title"`
	Artists         []string `json:"artists"`
	Album           string   `json:"album,omitempty"`
	DurationSeconds int      `json:"duration_seconds,omitempty"`
	ReleaseYear     int      `json:"release_year,omitempty"`
	Source          Source   `json:"-"`
	Tags            []string `json:"tags,omitempty"`
	ArtworkURL      string   `json:"artwork_url,omitempty"`
}

// Artist returns the lead artist, or an empty string when none is known.
func (t TrackMetadata) Artist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Display renders the track as "Artist - Title" for logs and summaries.
func (t TrackMetadata) Display() string {
	if t.Artist() == "" {
		return t.Title
	}
	return t.Artist() + " - " + t.Title
}

// PlaylistContext carries the per-invocation output settings. Created once
// by the resolver and never mutated afterwards.
//
// An empty Name means "single track": files are written directly into
// DestinationRoot without a playlist subdirectory.
type PlaylistContext struct {
	Name            string `json:"name,omitempty"`
	DestinationRoot string `json:"destination_root"`
	TrackCount      int    `json:"track_count"`
}
