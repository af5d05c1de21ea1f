package metadata

import (
	"reflect"
	"testing"
)

func TestSplitQuery(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantArtist string
		wantTitle  string
	}{
		{"hyphen separator", "Daft Punk - One More Time", "Daft Punk", "One More Time"},
		{"first token heuristic", "Quevedo Bzrp", "Quevedo", "Bzrp"},
		{"multi word remainder", "Rosalia Saoko remix", "Rosalia", "Saoko remix"},
		{"single token", "Bohemian", "", "Bohemian"},
		{"empty", "", "", ""},
		{"whitespace only", "   ", "", ""},
		{"hyphen wins over token split", "The Weeknd - Blinding Lights", "The Weeknd", "Blinding Lights"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artist, title := SplitQuery(tt.query)
			if artist != tt.wantArtist || title != tt.wantTitle {
				t.Errorf("SplitQuery(%q) = (%q, %q), want (%q, %q)",
					tt.query, artist, title, tt.wantArtist, tt.wantTitle)
			}
		})
	}
}

func TestParseVideoTitle(t *testing.T) {
	tests := []struct {
		name        string
		videoTitle  string
		wantArtists []string
		wantTitle   string
	}{
		{
			"hyphen separator",
			"Rick Astley - Never Gonna Give You Up (Official Music Video)",
			[]string{"Rick Astley"},
			"Never Gonna Give You Up",
		},
		{
			"bullet separator",
			"Bad Bunny • Titi Me Pregunto",
			[]string{"Bad Bunny"},
			"Titi Me Pregunto",
		},
		{
			"colon separator",
			"Queen: Bohemian Rhapsody",
			[]string{"Queen"},
			"Bohemian Rhapsody",
		},
		{
			"feature credit",
			"Calvin Harris feat. Rihanna - This Is What You Came For [Official Audio]",
			[]string{"Calvin Harris", "Rihanna"},
			"This Is What You Came For",
		},
		{
			"multiple separators in credit",
			"Quevedo, Bizarrap & Duki - Cayo La Noche",
			[]string{"Quevedo", "Bizarrap", "Duki"},
			"Cayo La Noche",
		},
		{
			"stacked brackets",
			"Artist - Song (Lyric Video) [HD]",
			[]string{"Artist"},
			"Song",
		},
		{
			"no separator",
			"lofi hip hop radio",
			nil,
			"lofi hip hop radio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artists, title := ParseVideoTitle(tt.videoTitle)
			if !reflect.DeepEqual(artists, tt.wantArtists) {
				t.Errorf("artists = %v, want %v", artists, tt.wantArtists)
			}
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
		})
	}
}

func TestSplitArtists(t *testing.T) {
	artists := SplitArtists("Eladio Carrion ft. Bad Bunny x Myke Towers")
	want := []string{"Eladio Carrion", "Bad Bunny", "Myke Towers"}
	if !reflect.DeepEqual(artists, want) {
		t.Errorf("got %v, want %v", artists, want)
	}

	t.Run("x inside a name is kept", func(t *testing.T) {
		got := SplitArtists("Xzibit")
		if !reflect.DeepEqual(got, []string{"Xzibit"}) {
			t.Errorf("got %v, want [Xzibit]", got)
		}
	})
}

func TestMatchScore(t *testing.T) {
	t.Run("exact match scores 1", func(t *testing.T) {
		score := MatchScore("Daft Punk", "One More Time", []string{"Daft Punk"}, "One More Time")
		if score != 1.0 {
			t.Errorf("expected 1.0, got %f", score)
		}
	})

	t.Run("unrelated tracks score low", func(t *testing.T) {
		score := MatchScore("Daft Punk", "One More Time", []string{"Metallica"}, "Enter Sandman")
		if score >= 0.5 {
			t.Errorf("expected score below 0.5, got %f", score)
		}
	})

	t.Run("case and punctuation ignored", func(t *testing.T) {
		score := MatchScore("AC/DC", "T.N.T.", []string{"ac dc"}, "tnt")
		if score != 1.0 {
			t.Errorf("expected 1.0, got %f", score)
		}
	})

	t.Run("partial overlap", func(t *testing.T) {
		score := MatchScore("Daft Punk", "One More Time", []string{"Daft Punk"}, "Around the World")
		if score <= 0 || score >= 1 {
			t.Errorf("expected partial score, got %f", score)
		}
	})

	t.Run("empty want scores 0", func(t *testing.T) {
		if score := MatchScore("", "", []string{"Anyone"}, "Anything"); score != 0 {
			t.Errorf("expected 0, got %f", score)
		}
	})
}
