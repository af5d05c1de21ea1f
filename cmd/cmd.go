// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// harvestCommand resolves a source reference and downloads its tracks.
func harvestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "harvest",
		Aliases: []string{"dl"},
		Usage:   "Resolve a playlist, track, or query and download audio",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "source",
				UsageText: "Spotify/YouTube URL, free-text query, or query file",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:    "playlist-name",
				Aliases: []string{"n"},
				Usage:   "Override the destination folder name",
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Override the destination root directory",
			},
			&cli.BoolFlag{
				Name:    "extract-only",
				Aliases: []string{"e"},
				Usage:   "Resolve and merge metadata without downloading",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Metadata output format (json, csv, text, markdown)",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write extracted metadata to a file instead of stdout",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent track pipelines (1 = sequential)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the stream search cache for this run",
			},
		},
		Action: r.Harvest,
	}
}

// cacheCommand inspects and clears the stream search cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the stream search cache",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cache entry count and age",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheStats,
			},
			{
				Name:    "clear",
				Aliases: []string{"purge"},
				Usage:   "Delete all cached stream search results",
				Action:  r.CacheClear,
			},
		},
	}
}

// setupCommand writes a starter config file and initializes the cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file and initialize the cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for interactive harvesting.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for resolving and downloading",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "source",
				UsageText: "Spotify/YouTube URL, free-text query, or query file",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "playlist-name",
				Aliases: []string{"n"},
				Usage:   "Override the destination folder name",
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Override the destination root directory",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent track pipelines (1 = sequential)",
			},
		},
		Action: r.TUI,
	}
}
