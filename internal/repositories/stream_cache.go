// Package repositories provides the persistence layer over SQLite.
//
// The stream cache memoizes yt-dlp search results per normalized
// (artist, title) key so repeated harvests skip the search round trip.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sogik/TuneHarvester/internal/services"
)

// StreamCacheRepository reads and writes the stream_cache table.
type StreamCacheRepository struct {
	db *sql.DB
}

func NewStreamCacheRepository(db *sql.DB) *StreamCacheRepository {
	return &StreamCacheRepository{db: db}
}

// Get returns the cached stream for the key, or (nil, nil) on a miss.
func (r *StreamCacheRepository) Get(key string) (*services.Video, error) {
	row := r.db.QueryRow(
		"SELECT video_id, video_url, video_title, duration_seconds FROM stream_cache WHERE query_key = ?",
		key,
	)

	var video services.Video
	var duration int
	err := row.Scan(&video.ID, &video.URL, &video.Title, &duration)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stream cache: %w", err)
	}

	video.Duration = float64(duration)
	return &video, nil
}

// Put stores or replaces the cached stream for the key.
func (r *StreamCacheRepository) Put(key string, video *services.Video) error {
	_, err := r.db.Exec(
		`INSERT INTO stream_cache (query_key, video_id, video_url, video_title, duration_seconds)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(query_key) DO UPDATE SET
		   video_id = excluded.video_id,
		   video_url = excluded.video_url,
		   video_title = excluded.video_title,
		   duration_seconds = excluded.duration_seconds,
		   created_at = CURRENT_TIMESTAMP`,
		key, video.ID, video.WatchURL(), video.Title, video.DurationSeconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to write stream cache: %w", err)
	}
	return nil
}

// Count returns the number of cached entries and the timestamp of the
// oldest one. An empty cache reports a zero time.
func (r *StreamCacheRepository) Count() (int, time.Time, error) {
	var count int
	var oldest sql.NullString

	err := r.db.QueryRow("SELECT COUNT(*), MIN(created_at) FROM stream_cache").Scan(&count, &oldest)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to count stream cache: %w", err)
	}

	var ts time.Time
	if oldest.Valid {
		for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
			if parsed, err := time.Parse(layout, oldest.String); err == nil {
				ts = parsed
				break
			}
		}
	}

	return count, ts, nil
}

// Purge deletes every cached entry and returns how many were removed.
func (r *StreamCacheRepository) Purge() (int, error) {
	result, err := r.db.Exec("DELETE FROM stream_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to purge stream cache: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged rows: %w", err)
	}
	return int(removed), nil
}
