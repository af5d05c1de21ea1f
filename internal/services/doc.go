// Package services wraps the external systems TuneHarvester talks to:
// the Spotify Web API, the Last.fm API, and the yt-dlp binary.
package services
