package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sogik/TuneHarvester/internal/formatter"
	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/organize"
	"github.com/sogik/TuneHarvester/internal/resolve"
	"github.com/sogik/TuneHarvester/internal/services"
	"github.com/sogik/TuneHarvester/internal/shared"
	"github.com/sogik/TuneHarvester/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Harvest resolves the source argument into track descriptors and runs the
// download pipeline, or the metadata-only extraction when --extract-only is set.
func (r *Runner) Harvest(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	source := cmd.StringArg("source")
	if source == "" {
		return fmt.Errorf("%w: no source given", shared.ErrInvalidSource)
	}

	extractOnly := cmd.Bool("extract-only")
	if !extractOnly && !r.streams.Available() {
		return fmt.Errorf("%w: %q not found in PATH", shared.ErrServiceUnavailable, r.config.Downloads.Binary)
	}

	r.authenticateSpotify(ctx)

	descriptors, pctx, err := r.resolveSource(ctx, cmd, source)
	if err != nil {
		return err
	}

	r.logger.Infof("resolved %d tracks from %s", len(descriptors), source)

	engine := r.buildEngine(cmd)

	if extractOnly {
		return r.extract(ctx, cmd, engine, descriptors, pctx)
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			// Intermediate phases stay quiet; one line when a track
			// starts and one when it finishes.
			if update.Phase == tasks.FetchPrimary || update.Phase == tasks.TrackDone {
				r.writePlainln("%s", update.Message)
			}
		}
	}()

	result, err := engine.Harvest(ctx, descriptors, pctx, progress)
	close(progress)
	wg.Wait()
	if err != nil {
		return err
	}

	r.writePlainln("")
	r.writePlainln("Downloaded: %d  Skipped: %d  Failed: %d", result.Downloaded, result.Skipped, result.Failed)
	return nil
}

// extract merges metadata for every descriptor and writes it in the
// requested format without downloading anything.
func (r *Runner) extract(ctx context.Context, cmd *cli.Command, engine *tasks.HarvestEngine, descriptors []models.QueryDescriptor, pctx models.PlaylistContext) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	tracks, err := engine.Extract(ctx, descriptors, nil)
	if err != nil {
		return err
	}

	export := formatter.Export{Playlist: pctx, Tracks: tracks}

	if path := cmd.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		if err := formatter.Write(f, export, format); err != nil {
			return err
		}
		r.logger.Infof("wrote %d tracks to %s", len(tracks), path)
		return nil
	}

	return formatter.Write(r.output, export, format)
}

// authenticateSpotify verifies the client-credentials grant up front. A
// failed handshake degrades the run to secondary and fallback metadata
// rather than aborting it.
func (r *Runner) authenticateSpotify(ctx context.Context) {
	if r.spotify == nil {
		return
	}
	if err := r.spotify.Authenticate(ctx); err != nil {
		r.logger.Warnf("spotify authentication failed, continuing without it: %v", err)
		r.spotify = nil
	}
}

func (r *Runner) resolveSource(ctx context.Context, cmd *cli.Command, source string) ([]models.QueryDescriptor, models.PlaylistContext, error) {
	// A nil *SpotifyService must stay a nil interface so the resolver
	// rejects Spotify URLs instead of calling through it.
	var lister resolve.SpotifyLister
	if r.spotify != nil {
		lister = r.spotify
	}

	resolver := resolve.NewResolver(lister, r.streams, r.logger)
	opts := resolve.Options{
		PlaylistName:    cmd.String("playlist-name"),
		DestinationRoot: cmd.String("path"),
	}

	return resolver.Resolve(ctx, source, opts)
}

func (r *Runner) buildEngine(cmd *cli.Command) *tasks.HarvestEngine {
	var primary tasks.PrimarySource
	if r.spotify != nil {
		primary = r.spotify
	}

	var secondary tasks.SecondarySource
	if r.lastfm != nil {
		secondary = r.lastfm
	}

	var cache tasks.StreamCacher
	if r.cache != nil && !cmd.Bool("no-cache") {
		cache = r.cache
	}

	var limiter *rate.Limiter
	if r.config.Downloads.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.config.Downloads.RateLimit), 1)
	}

	organizer := organize.NewOrganizer(shared.ExpandHome(r.config.Downloads.Root))

	engine := tasks.NewHarvestEngine(primary, secondary, r.streams, cache, organizer, limiter, r.logger)

	if tagger := services.NewTaggerService(""); tagger.Available() {
		engine.SetTagger(tagger)
	} else {
		r.logger.Warn("python3 not found, downloads will not be tagged")
	}

	workers := r.config.Downloads.Workers
	if cmd.IsSet("workers") {
		workers = int(cmd.Int("workers"))
	}
	engine.SetWorkers(workers)

	return engine
}
