package metadata

import (
	"regexp"
	"strings"
)

// Bracketed suffixes carrying no track information: "(Official Video)",
// "[HD]", "(Lyric Video)" and the like.
var bracketPattern = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]\s*$`)

// Title separators tried in order. The spaced hyphen goes first so titles
// containing colons ("Bohemian Rhapsody: Live") survive the later patterns.
var titleSeparators = []string{" - ", " – ", " — ", " • ", ": "}

// Artist list separators, matched case-insensitively on word boundaries.
var artistSeparator = regexp.MustCompile(`(?i)\s*(?:,|;|\bfeaturing\b|\bfeat\.|\bfeat\b|\bft\.|\bft\b|&|\bx\b|\bcon\b|\bvs\.|\bvs\b)\s*`)

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]+`)

// SplitQuery extracts an artist and title from a free-text query. A query
// containing " - " splits there; otherwise the first token is taken as the
// artist and the remainder as the title. A single token is a title with no
// artist.
func SplitQuery(text string) (artist, title string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	if before, after, found := strings.Cut(text, " - "); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}

	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", text
	}

	return fields[0], strings.Join(fields[1:], " ")
}

// ParseVideoTitle extracts artists and a track title from a YouTube video
// title. Trailing bracketed groups are stripped, then the common
// "Artist - Title" shapes are tried. A title with no recognizable
// separator comes back whole, with no artists.
func ParseVideoTitle(videoTitle string) (artists []string, title string) {
	cleaned := strings.TrimSpace(videoTitle)
	for {
		stripped := bracketPattern.ReplaceAllString(cleaned, "")
		if stripped == cleaned {
			break
		}
		cleaned = strings.TrimSpace(stripped)
	}

	for _, sep := range titleSeparators {
		before, after, found := strings.Cut(cleaned, sep)
		if !found {
			continue
		}
		before, after = strings.TrimSpace(before), strings.TrimSpace(after)
		if before == "" || after == "" {
			continue
		}
		return SplitArtists(before), after
	}

	return nil, cleaned
}

// SplitArtists breaks an artist credit string into individual names,
// honoring the usual feature separators.
func SplitArtists(credit string) []string {
	var artists []string
	for _, part := range artistSeparator.Split(credit, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			artists = append(artists, part)
		}
	}
	return artists
}

// MatchScore scores a candidate track against the wanted artist and title.
// The score is the fraction of wanted tokens present in the candidate,
// in [0, 1]. Comparison is case-insensitive and ignores punctuation.
func MatchScore(wantArtist, wantTitle string, gotArtists []string, gotTitle string) float64 {
	want := tokenSet(wantArtist + " " + wantTitle)
	if len(want) == 0 {
		return 0
	}

	got := tokenSet(strings.Join(gotArtists, " ") + " " + gotTitle)

	matched := 0
	for token := range want {
		if got[token] {
			matched++
		}
	}

	return float64(matched) / float64(len(want))
}

func tokenSet(text string) map[string]bool {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(text), " ")
	set := make(map[string]bool)
	for _, token := range strings.Fields(cleaned) {
		set[token] = true
	}
	return set
}
