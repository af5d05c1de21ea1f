package main

import (
	"context"
	"fmt"

	"github.com/sogik/TuneHarvester/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheStats reports the number of cached stream searches and the age of
// the oldest entry.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: stream cache not initialized", shared.ErrServiceUnavailable)
	}

	count, oldest, err := r.cache.Count()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	if cmd.Bool("json") {
		stats := map[string]any{"entries": count}
		if !oldest.IsZero() {
			stats["oldest"] = oldest
		}
		return r.writeJSON(stats, true)
	}

	r.writePlainln("Cached stream searches: %d", count)
	if !oldest.IsZero() {
		r.writePlainln("Oldest entry: %s", oldest.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// CacheClear deletes every cached stream search result.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: stream cache not initialized", shared.ErrServiceUnavailable)
	}

	removed, err := r.cache.Purge()
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.logger.Infof("purged %d cache entries", removed)
	r.writePlainln("✓ Removed %d cached entries", removed)
	return nil
}

// Setup writes a starter config file and initializes the cache database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warnf("config file: %v", err)
	} else {
		r.writePlainln("✓ Created %s", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	config.ApplyEnv()

	if !config.Cache.Enabled {
		r.writePlainln("Cache disabled in config, skipping database setup")
		return nil
	}

	repo, err := openStreamCache(config)
	if err != nil {
		return fmt.Errorf("failed to initialize cache database: %w", err)
	}
	r.cache = repo

	r.writePlainln("✓ Cache database ready at %s", shared.ExpandHome(config.Cache.Path))
	return nil
}
