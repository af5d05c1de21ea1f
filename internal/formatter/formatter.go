// package formatter renders extracted track metadata to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/shared"
)

// Format identifies an export format by its CLI name.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatText     Format = "txt"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a CLI format argument. An empty value defaults to JSON.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(value) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "txt", "text":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (json, csv, txt, markdown)", shared.ErrInvalidInput, value)
	}
}

// Export represents an extract-only run: the playlist context plus the
// canonical records the pipeline produced.
type Export struct {
	Playlist models.PlaylistContext `json:"playlist"`
	Tracks   []models.TrackMetadata `json:"tracks"`
}

// Write renders the export in the given format.
func Write(w io.Writer, export Export, format Format) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatJSON:
		data, err = ExportToJSON(export)
	case FormatCSV:
		data, err = ExportToCSV(export)
	case FormatText:
		data, err = ExportToText(export)
	case FormatMarkdown:
		data, err = ExportToMarkdown(export)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, format)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ExportToJSON renders the export as indented JSON.
func ExportToJSON(export Export) ([]byte, error) {
	data, err := shared.MarshalJSON(export, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV renders one row per track with columns: Title, Artists,
// Album, Duration, Year, Tags, Artwork.
func ExportToCSV(export Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Artists", "Album", "Duration", "Year", "Tags", "Artwork"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		year := ""
		if track.ReleaseYear > 0 {
			year = strconv.Itoa(track.ReleaseYear)
		}
		record := []string{
			track.Title,
			strings.Join(track.Artists, "; "),
			track.Album,
			strconv.Itoa(track.DurationSeconds),
			year,
			strings.Join(track.Tags, "; "),
			track.ArtworkURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText renders a plain listing, one track per line.
func ExportToText(export Export) ([]byte, error) {
	var buf bytes.Buffer

	if export.Playlist.Name != "" {
		buf.WriteString(fmt.Sprintf("Playlist: %s\n", export.Playlist.Name))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(export.Tracks)))

	for i, track := range export.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, track.Display()))
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a Markdown document with a track table.
func ExportToMarkdown(export Export) ([]byte, error) {
	var buf bytes.Buffer

	title := export.Playlist.Name
	if title == "" {
		title = "Tracks"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(export.Tracks)))

	buf.WriteString("| # | Artist | Title | Album | Duration | Year |\n")
	buf.WriteString("|---|--------|-------|-------|----------|------|\n")
	for i, track := range export.Tracks {
		year := ""
		if track.ReleaseYear > 0 {
			year = strconv.Itoa(track.ReleaseYear)
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			i+1,
			strings.Join(track.Artists, ", "),
			track.Title,
			track.Album,
			shared.FormatDuration(track.DurationSeconds),
			year,
		))
	}

	return buf.Bytes(), nil
}
