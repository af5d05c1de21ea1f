package services

import "fmt"

// Video describes a single audio stream located on YouTube, either by a
// search against yt-dlp or by flattening a playlist.
type Video struct {
	ID       string  `json:"id"`
	URL      string  `json:"webpage_url"`
	Title    string  `json:"title"`
	Uploader string  `json:"uploader"`
	Duration float64 `json:"duration"`
}

// DurationSeconds returns the stream duration rounded down to whole seconds.
func (v Video) DurationSeconds() int {
	return int(v.Duration)
}

// WatchURL returns the canonical watch URL for the video, falling back to
// the ID when yt-dlp omitted webpage_url (flat playlist listings do this).
func (v Video) WatchURL() string {
	if v.URL != "" {
		return v.URL
	}
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", v.ID)
}
