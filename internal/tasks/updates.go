package tasks

import (
	"fmt"

	"github.com/sogik/TuneHarvester/internal/models"
)

// ProgressUpdate represents a progress event during a harvest.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Track   int    // 1-based track number
	Total   int    // Total tracks in this run
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Pipeline phase enumeration
type Phase int

const (
	FetchPrimary Phase = iota
	FetchSecondary
	MergeMetadata
	SearchStream
	DownloadTrack
	OrganizeTrack
	TagTrack
	TrackDone
)

func (p Phase) String() string {
	switch p {
	case FetchPrimary:
		return "fetch_primary"
	case FetchSecondary:
		return "fetch_secondary"
	case MergeMetadata:
		return "merge"
	case SearchStream:
		return "search_stream"
	case DownloadTrack:
		return "download"
	case OrganizeTrack:
		return "organize"
	case TagTrack:
		return "tag"
	case TrackDone:
		return "done"
	default:
		return ""
	}
}

func phaseUpdate(phase Phase, track, total int, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Track:   track,
		Total:   total,
		Message: message,
	}
}

func trackStartUpdate(track, total int, d models.QueryDescriptor) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPrimary,
		Track:   track,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving: %s", track, total, d.Query),
	}
}

func trackDoneUpdate(track, total int, result TrackResult) ProgressUpdate {
	update := ProgressUpdate{
		Phase: TrackDone,
		Track: track,
		Total: total,
		Data:  result,
	}

	switch {
	case result.Err != nil && result.Skipped:
		update.Message = fmt.Sprintf("[%d/%d] ~ skipped: %s", track, total, result.Descriptor.Query)
	case result.Err != nil:
		update.Message = fmt.Sprintf("[%d/%d] ✗ %s: %v", track, total, result.Descriptor.Query, result.Err)
	default:
		update.Message = fmt.Sprintf("[%d/%d] ✓ %s", track, total, result.Metadata.Display())
	}

	return update
}
