package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sogik/TuneHarvester/internal/resolve"
	"github.com/sogik/TuneHarvester/internal/shared"
	"github.com/sogik/TuneHarvester/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for resolving and downloading.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	source := cmd.StringArg("source")
	if source == "" {
		return fmt.Errorf("%w: no source given", shared.ErrInvalidSource)
	}

	if !r.streams.Available() {
		return fmt.Errorf("%w: %q not found in PATH", shared.ErrServiceUnavailable, r.config.Downloads.Binary)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tuneharvester-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	r.authenticateSpotify(ctx)

	var lister resolve.SpotifyLister
	if r.spotify != nil {
		lister = r.spotify
	}
	resolver := resolve.NewResolver(lister, r.streams, r.logger)

	opts := resolve.Options{
		PlaylistName:    cmd.String("playlist-name"),
		DestinationRoot: cmd.String("path"),
	}

	engine := r.buildEngine(cmd)

	model := ui.NewModel(ctx, source, opts, resolver, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
