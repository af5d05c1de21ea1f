package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/sogik/TuneHarvester/internal/repositories"
	"github.com/sogik/TuneHarvester/internal/services"
	"github.com/sogik/TuneHarvester/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    *services.SpotifyService
	lastfm     *services.LastFMService
	streams    *services.YTDLPService
	cache      *repositories.StreamCacheRepository
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    *services.SpotifyService
	LastFM     *services.LastFMService
	Streams    *services.YTDLPService
	Cache      *repositories.StreamCacheRepository
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Streams == nil {
		opts.Streams = services.NewYTDLPService(opts.Config.Downloads.Binary)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		lastfm:     opts.LastFM,
		streams:    opts.Streams,
		cache:      opts.Cache,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		harvestCommand, cacheCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig swaps in a config file named by the command's --config flag
// and rebuilds the services that depend on it.
func (r *Runner) reloadConfig(cmd *cli.Command) error {
	if !cmd.IsSet("config") {
		return nil
	}

	config, err := shared.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	config.ApplyEnv()

	r.config = config
	r.configPath = cmd.String("config")
	r.streams = services.NewYTDLPService(config.Downloads.Binary)
	r.lastfm = services.NewLastFMService(config.Credentials.LastFM.APIKey)

	r.spotify = nil
	if config.Credentials.Spotify.HasCredentials() {
		svc, err := services.NewSpotifyService(
			config.Credentials.Spotify.ClientID,
			config.Credentials.Spotify.ClientSecret,
		)
		if err != nil {
			return err
		}
		r.spotify = svc
	}

	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
