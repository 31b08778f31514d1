// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand initializes the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
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

// authCommand handles session management against the streaming account.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the streaming account session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the stored session state",
				Action: r.AuthStatus,
			},
			{
				Name:  "import-curl",
				Usage: "Create a session from a copied browser cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "File containing the cURL command",
					},
					&cli.StringFlag{
						Name:  "curl",
						Usage: "The cURL command itself",
					},
				},
				Action: r.AuthImportCurl,
			},
			{
				Name:   "logout",
				Usage:  "Delete the stored session",
				Action: r.AuthLogout,
			},
		},
	}
}

// playCommand starts playback of a track, optionally inside a context.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a track, optionally inside an album or playlist context",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "uri",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "context",
				Usage: "Context URI (album or playlist) to play inside",
			},
			&cli.IntFlag{
				Name:  "position",
				Usage: "Zero-based position of the track within the context",
				Value: -1,
			},
			&cli.StringFlag{
				Name:  "device",
				Usage: "Target device ID (defaults to the active device)",
			},
		},
		Action: r.Play,
	}
}

// nowCommand prints the currently playing track.
func nowCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "now",
		Aliases: []string{"np"},
		Usage:   "Show the currently playing track",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.NowPlaying,
	}
}

// queueCommand prints the upcoming tracks.
func queueCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "queue",
		Usage: "Show the upcoming tracks",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Show the full queue instead of the capped preview",
			},
		},
		Action: r.Queue,
	}
}

// historyCommand prints recently played tracks.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recently played tracks",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of entries",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Output a Markdown list",
			},
		},
		Action: r.History,
	}
}

// devicesCommand lists the account's playback devices.
func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List the account's playback devices",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Devices,
	}
}

// tuiCommand launches the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive playback dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "device",
				Usage: "Name of the device to drive (defaults to player.device_name)",
			},
		},
		Action: r.TUI,
	}
}
