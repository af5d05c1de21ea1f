package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sogik/TuneHarvester/internal/models"
	th "github.com/sogik/TuneHarvester/internal/testing"
)

func testExport() Export {
	return Export{
		Playlist: models.PlaylistContext{Name: "Summer Mix", TrackCount: 2},
		Tracks: []models.TrackMetadata{
			{
				Title:           "One More Time",
				Artists:         []string{"Daft Punk"},
				Album:           "Discovery",
				DurationSeconds: 320,
				ReleaseYear:     2001,
				Tags:            []string{"house", "electronic"},
			},
			{
				Title:   "Bzrp Music Sessions, Vol. 52",
				Artists: []string{"Quevedo", "Bizarrap"},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"txt", FormatText, false},
		{"text", FormatText, false},
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportToJSON(t *testing.T) {
	data, err := ExportToJSON(testExport())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var decoded Export
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("expected valid JSON, got %v", err)
	}
	if decoded.Playlist.Name != "Summer Mix" {
		t.Errorf("unexpected playlist %+v", decoded.Playlist)
	}
	if len(decoded.Tracks) != 2 || decoded.Tracks[0].Title != "One More Time" {
		t.Errorf("unexpected tracks %+v", decoded.Tracks)
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(testExport())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Title,Artists,Album") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "house; electronic") {
		t.Errorf("expected joined tags, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "Quevedo; Bizarrap") {
		t.Errorf("expected joined artists, got %q", lines[2])
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(testExport())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	text := string(data)
	if !strings.Contains(text, "Playlist: Summer Mix") {
		t.Errorf("expected playlist header, got %q", text)
	}
	if !strings.Contains(text, "1. Daft Punk - One More Time") {
		t.Errorf("expected numbered track line, got %q", text)
	}

	t.Run("omits empty playlist name", func(t *testing.T) {
		export := testExport()
		export.Playlist.Name = ""
		data, err := ExportToText(export)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(string(data), "Playlist:") {
			t.Error("expected no playlist header")
		}
	})
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(testExport())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	md := string(data)
	if !strings.HasPrefix(md, "# Summer Mix") {
		t.Errorf("unexpected heading in %q", md)
	}
	if !strings.Contains(md, "| 1 | Daft Punk | One More Time | Discovery | 5:20 | 2001 |") {
		t.Errorf("expected table row, got %q", md)
	}
}

func TestWrite(t *testing.T) {
	t.Run("renders each format", func(t *testing.T) {
		for _, format := range []Format{FormatJSON, FormatCSV, FormatText, FormatMarkdown} {
			var buf bytes.Buffer
			if err := Write(&buf, testExport(), format); err != nil {
				t.Errorf("Write(%q) failed: %v", format, err)
			}
			if buf.Len() == 0 {
				t.Errorf("Write(%q) produced no output", format)
			}
		}
	})

	t.Run("propagates writer failure", func(t *testing.T) {
		if err := Write(&th.FWriter{}, testExport(), FormatJSON); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, testExport(), Format("yaml")); err == nil {
			t.Error("expected error")
		}
	})
}
