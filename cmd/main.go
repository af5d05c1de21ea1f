package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sogik/TuneHarvester/internal/repositories"
	"github.com/sogik/TuneHarvester/internal/services"
	"github.com/sogik/TuneHarvester/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	godotenv.Load()

	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("ignoring config.toml: %v", err)
		}
	}
	config.ApplyEnv()

	var spotify *services.SpotifyService
	if config.Credentials.Spotify.HasCredentials() {
		svc, err := services.NewSpotifyService(
			config.Credentials.Spotify.ClientID,
			config.Credentials.Spotify.ClientSecret,
		)
		if err != nil {
			logger.Warnf("spotify disabled: %v", err)
		} else {
			spotify = svc
		}
	}

	lastfm := services.NewLastFMService(config.Credentials.LastFM.APIKey)
	streams := services.NewYTDLPService(config.Downloads.Binary)

	var cache *repositories.StreamCacheRepository
	if config.Cache.Enabled {
		if repo, err := openStreamCache(config); err != nil {
			logger.Warnf("stream cache disabled: %v", err)
		} else {
			cache = repo
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		Spotify:    spotify,
		LastFM:     lastfm,
		Streams:    streams,
		Cache:      cache,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "tuneharvester",
		Usage:    "Resolve playlists and queries into organized audio downloads",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	// Per-track failures never surface here; a harvest with partial
	// success returns nil and exits zero. An error means the run could
	// not start or finish at all.
	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrInvalidSource) {
			logger.Fatalf("invalid source: %v", err)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// openStreamCache opens the SQLite cache database, creating its directory
// and schema on first use.
func openStreamCache(config *shared.Config) (*repositories.StreamCacheRepository, error) {
	path := shared.ExpandHome(config.Cache.Path)
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}

	shared.ConfigureDatabase(db, config.Cache.MaxOpenConns, config.Cache.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return repositories.NewStreamCacheRepository(db), nil
}
