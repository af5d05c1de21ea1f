// package tasks implements the harvest pipeline.
//
// The core abstraction is HarvestEngine, which runs each track through
// primary fetch, enrichment, merge, stream search, download, and
// organization. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sogik/TuneHarvester/internal/metadata"
	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/organize"
	"github.com/sogik/TuneHarvester/internal/services"
	"github.com/sogik/TuneHarvester/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// MaxWorkers caps concurrent track pipelines.
const MaxWorkers = 8

// PrimarySource fetches authoritative track metadata. A nil source means
// no credentials are configured and the phase is skipped.
type PrimarySource interface {
	FetchPrimary(ctx context.Context, d models.QueryDescriptor) (*models.TrackMetadata, error)
}

// SecondarySource enriches a track with catalog metadata. (nil, nil) means
// the source has nothing to add.
type SecondarySource interface {
	Enrich(ctx context.Context, primary *models.TrackMetadata, d models.QueryDescriptor) (*models.TrackMetadata, error)
}

// StreamProvider locates and downloads audio streams.
type StreamProvider interface {
	FindStream(ctx context.Context, query string) (*services.Video, error)
	Download(ctx context.Context, videoURL, destDir, baseName string) (string, error)
}

// StreamCacher memoizes stream search results. A nil cacher disables
// memoization.
type StreamCacher interface {
	Get(key string) (*services.Video, error)
	Put(key string, video *services.Video) error
}

// MetadataTagger writes merged metadata into a downloaded file. A nil
// tagger leaves files untagged.
type MetadataTagger interface {
	Tag(ctx context.Context, path string, meta models.TrackMetadata) error
}

// TrackResult records the outcome for one descriptor.
type TrackResult struct {
	Descriptor models.QueryDescriptor
	Metadata   *models.TrackMetadata
	Path       string // file on disk, empty when not downloaded
	Skipped    bool   // dropped before download (no usable metadata)
	Err        error
}

// HarvestResult summarizes a run.
type HarvestResult struct {
	RunID        string
	PlaylistName string
	Downloaded   int
	Skipped      int
	Failed       int
	Tracks       []TrackResult
}

// HarvestEngine orchestrates the per-track pipeline.
type HarvestEngine struct {
	primary   PrimarySource
	secondary SecondarySource
	streams   StreamProvider
	cache     StreamCacher
	tagger    MetadataTagger
	organizer *organize.Organizer
	limiter   *rate.Limiter
	logger    *log.Logger
	workers   int
}

// NewHarvestEngine wires the pipeline. primary, secondary, cache, and
// limiter may be nil; streams and organizer are required for Harvest.
func NewHarvestEngine(primary PrimarySource, secondary SecondarySource, streams StreamProvider, cache StreamCacher, organizer *organize.Organizer, limiter *rate.Limiter, logger *log.Logger) *HarvestEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &HarvestEngine{
		primary:   primary,
		secondary: secondary,
		streams:   streams,
		cache:     cache,
		organizer: organizer,
		limiter:   limiter,
		logger:    logger,
		workers:   1,
	}
}

// SetTagger installs a metadata tagger run after each successful download.
// Tagging failures are warnings; the downloaded file always survives.
func (e *HarvestEngine) SetTagger(tagger MetadataTagger) {
	e.tagger = tagger
}

// SetWorkers sets the number of concurrent track pipelines, clamped to
// [1, MaxWorkers]. The default of 1 processes tracks strictly in order.
func (e *HarvestEngine) SetWorkers(n int) {
	switch {
	case n < 1:
		e.workers = 1
	case n > MaxWorkers:
		e.workers = MaxWorkers
	default:
		e.workers = n
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *HarvestEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *HarvestEngine) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

// Harvest runs the full pipeline for every descriptor and returns a run
// summary. Per-track failures are recorded, counted, and never abort the
// remaining tracks; only a dead context stops the run early.
func (e *HarvestEngine) Harvest(ctx context.Context, descriptors []models.QueryDescriptor, pctx models.PlaylistContext, progress chan<- ProgressUpdate) (*HarvestResult, error) {
	if e.streams == nil {
		return nil, fmt.Errorf("%w: stream provider not initialized", shared.ErrServiceUnavailable)
	}
	if e.organizer == nil {
		return nil, fmt.Errorf("%w: organizer not initialized", shared.ErrServiceUnavailable)
	}

	result := &HarvestResult{
		RunID:        shared.GenerateID(),
		PlaylistName: pctx.Name,
		Tracks:       make([]TrackResult, len(descriptors)),
	}

	total := len(descriptors)

	if e.workers <= 1 {
		for i, d := range descriptors {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Tracks[i] = e.harvestTrack(ctx, i+1, total, d, pctx, progress)
		}
	} else {
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(e.workers)
		for i, d := range descriptors {
			group.Go(func() error {
				result.Tracks[i] = e.harvestTrack(groupCtx, i+1, total, d, pctx, progress)
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return result, err
		}
	}

	for _, track := range result.Tracks {
		switch {
		case track.Err == nil:
			result.Downloaded++
		case track.Skipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}

	e.logger.Info("harvest finished",
		"run_id", result.RunID,
		"downloaded", result.Downloaded,
		"skipped", result.Skipped,
		"failed", result.Failed)

	return result, nil
}

// Extract runs the pipeline through the merge phase only and returns the
// canonical metadata records. No stream search or download happens.
func (e *HarvestEngine) Extract(ctx context.Context, descriptors []models.QueryDescriptor, progress chan<- ProgressUpdate) ([]models.TrackMetadata, error) {
	records := make([]models.TrackMetadata, 0, len(descriptors))
	total := len(descriptors)

	for i, d := range descriptors {
		if ctx.Err() != nil {
			return records, ctx.Err()
		}

		e.sendProgress(progress, trackStartUpdate(i+1, total, d))

		merged, err := e.resolveMetadata(ctx, i+1, total, d, progress)
		if err != nil {
			e.logger.Warn("track skipped", "query", d.Query, "err", err)
			continue
		}

		records = append(records, merged)
		e.sendProgress(progress, phaseUpdate(TrackDone, i+1, total, fmt.Sprintf("[%d/%d] %s", i+1, total, merged.Display())))
	}

	return records, nil
}

// harvestTrack runs one descriptor through the whole pipeline.
func (e *HarvestEngine) harvestTrack(ctx context.Context, track, total int, d models.QueryDescriptor, pctx models.PlaylistContext, progress chan<- ProgressUpdate) TrackResult {
	result := TrackResult{Descriptor: d}

	e.sendProgress(progress, trackStartUpdate(track, total, d))

	merged, err := e.resolveMetadata(ctx, track, total, d, progress)
	if err != nil {
		result.Skipped = errors.Is(err, shared.ErrMergeSkip)
		result.Err = err
		e.sendProgress(progress, trackDoneUpdate(track, total, result))
		return result
	}
	result.Metadata = &merged

	e.sendProgress(progress, phaseUpdate(SearchStream, track, total, fmt.Sprintf("[%d/%d] Searching stream for %s", track, total, merged.Display())))

	video, err := e.locateStream(ctx, d, merged)
	if err != nil {
		result.Err = err
		e.sendProgress(progress, trackDoneUpdate(track, total, result))
		return result
	}

	e.sendProgress(progress, phaseUpdate(OrganizeTrack, track, total, fmt.Sprintf("[%d/%d] Allocating path", track, total)))
	destPath := e.organizer.TrackPath(pctx, merged)

	e.sendProgress(progress, phaseUpdate(DownloadTrack, track, total, fmt.Sprintf("[%d/%d] Downloading %s", track, total, filepath.Base(destPath))))

	baseName := strings.TrimSuffix(filepath.Base(destPath), filepath.Ext(destPath))
	written, err := e.streams.Download(ctx, video.WatchURL(), filepath.Dir(destPath), baseName)
	if err != nil {
		result.Err = err
		e.sendProgress(progress, trackDoneUpdate(track, total, result))
		return result
	}

	result.Path = written

	if e.tagger != nil {
		e.sendProgress(progress, phaseUpdate(TagTrack, track, total, fmt.Sprintf("[%d/%d] Tagging %s", track, total, filepath.Base(written))))
		if err := e.tagger.Tag(ctx, written, merged); err != nil {
			e.logger.Warn("tagging failed", "path", written, "err", err)
		}
	}

	e.sendProgress(progress, trackDoneUpdate(track, total, result))
	return result
}

// resolveMetadata runs the fetch and merge phases. Fetch failures are
// warnings; only a merge with nothing usable returns an error.
func (e *HarvestEngine) resolveMetadata(ctx context.Context, track, total int, d models.QueryDescriptor, progress chan<- ProgressUpdate) (models.TrackMetadata, error) {
	var primary *models.TrackMetadata
	if e.primary != nil {
		if err := e.wait(ctx); err != nil {
			return models.TrackMetadata{}, err
		}
		fetched, err := e.primary.FetchPrimary(ctx, d)
		if err != nil {
			e.logger.Warn("primary fetch failed", "query", d.Query, "err", err)
		} else {
			primary = fetched
		}
	}

	var secondary *models.TrackMetadata
	if e.secondary != nil {
		e.sendProgress(progress, phaseUpdate(FetchSecondary, track, total, fmt.Sprintf("[%d/%d] Enriching metadata", track, total)))
		if err := e.wait(ctx); err != nil {
			return models.TrackMetadata{}, err
		}
		enriched, err := e.secondary.Enrich(ctx, primary, d)
		if err != nil {
			e.logger.Warn("enrichment failed", "query", d.Query, "err", err)
		} else {
			secondary = enriched
		}
	}

	e.sendProgress(progress, phaseUpdate(MergeMetadata, track, total, fmt.Sprintf("[%d/%d] Merging metadata", track, total)))

	fallback := d.Query
	if d.Source == models.SourceYouTube {
		// Normalize video titles so the fallback parse sees "Artist - Title".
		if artists, title := metadata.ParseVideoTitle(d.Query); title != "" {
			if len(artists) > 0 {
				fallback = strings.Join(artists, ", ") + " - " + title
			} else {
				fallback = title
			}
		}
	}

	return metadata.Merge(primary, secondary, fallback)
}

// locateStream finds the audio stream for a merged record. YouTube
// descriptors already name their video; everything else is searched, with
// results memoized in the cache.
func (e *HarvestEngine) locateStream(ctx context.Context, d models.QueryDescriptor, merged models.TrackMetadata) (*services.Video, error) {
	if d.Source == models.SourceYouTube && d.ID != "" {
		return &services.Video{ID: d.ID, Title: d.Query}, nil
	}

	key := shared.NormalizeTrackKey(merged.Artist(), merged.Title)
	if e.cache != nil {
		if cached, err := e.cache.Get(key); err != nil {
			e.logger.Warn("stream cache read failed", "key", key, "err", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	query := strings.TrimSpace(fmt.Sprintf("%s %s audio", merged.Artist(), merged.Title))
	video, err := e.streams.FindStream(ctx, query)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Put(key, video); err != nil {
			e.logger.Warn("stream cache write failed", "key", key, "err", err)
		}
	}

	return video, nil
}
