// Package organize allocates destination paths for downloaded tracks:
// {root}/{playlist}/{artist} - {title}.m4a with filesystem-safe names and
// deterministic collision suffixes.
package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sogik/TuneHarvester/internal/models"
)

const trackExtension = ".m4a"

var unsafeChars = strings.NewReplacer(
	"<", "", ">", "", ":", "", `"`, "", "/", "",
	`\`, "", "|", "", "?", "", "*", "",
)

// Sanitize strips the characters Windows and POSIX filesystems reject,
// drops control characters, and trims trailing dots and spaces.
func Sanitize(name string) string {
	cleaned := unsafeChars.Replace(name)

	var b strings.Builder
	for _, r := range cleaned {
		if r >= 0x20 && r != 0x7f {
			b.WriteRune(r)
		}
	}

	return strings.TrimRight(strings.TrimSpace(b.String()), ". ")
}

// Organizer hands out unique destination paths. Allocation is mutex-guarded
// so concurrent workers cannot race the collision counter; paths already on
// disk and paths handed out earlier in the run both count as taken.
type Organizer struct {
	root string

	mu    sync.Mutex
	taken map[string]bool
}

func NewOrganizer(root string) *Organizer {
	return &Organizer{root: root, taken: make(map[string]bool)}
}

// Dir returns the directory downloads for the playlist land in. An empty
// playlist name means the destination root itself.
func (o *Organizer) Dir(pctx models.PlaylistContext) string {
	root := pctx.DestinationRoot
	if root == "" {
		root = o.root
	}

	if pctx.Name == "" {
		return root
	}

	folder := Sanitize(pctx.Name)
	if folder == "" {
		return root
	}
	return filepath.Join(root, folder)
}

// TrackPath allocates a unique destination for the track. The first
// duplicate of "x.m4a" becomes "x (2).m4a", the next "x (3).m4a", and so on.
func (o *Organizer) TrackPath(pctx models.PlaylistContext, meta models.TrackMetadata) string {
	base := Sanitize(fmt.Sprintf("%s - %s", meta.Artist(), meta.Title))
	if meta.Artist() == "" {
		base = Sanitize(meta.Title)
	}
	if base == "" {
		base = "Unknown Track"
	}

	dir := o.Dir(pctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	candidate := filepath.Join(dir, base+trackExtension)
	for n := 2; o.isTaken(candidate); n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, trackExtension))
	}

	o.taken[candidate] = true
	return candidate
}

func (o *Organizer) isTaken(path string) bool {
	if o.taken[path] {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}
