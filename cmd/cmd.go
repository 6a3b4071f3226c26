// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the web app
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web app",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (default from config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (default from config)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the app in the default browser",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// moviesCommand handles operations on the local movie list
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Manage the movie list",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "Show the ranked list",
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
				Action: r.MoviesList,
			},
			{
				Name:      "search",
				Usage:     "Search TMDB by title",
				ArgsUsage: "<title words...>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MoviesSearch,
			},
			{
				Name:      "add",
				Usage:     "Import one or more movies by TMDB id",
				ArgsUsage: "<tmdb-id> [tmdb-id...]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent TMDB fetches for several ids",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "TMDB fetches per second for several ids",
						Value: 5,
					},
				},
				Action: r.MoviesAdd,
			},
			{
				Name:  "rate",
				Usage: "Set a movie's rating and review",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "id",
						Usage:    "Local movie id",
						Required: true,
					},
					&cli.FloatFlag{
						Name:     "rating",
						Usage:    "Rating out of 10, e.g. 7.5",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "review",
						Usage:    "Short review",
						Required: true,
					},
				},
				Action: r.MoviesRate,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete a movie",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "id",
						Usage:    "Local movie id",
						Required: true,
					},
				},
				Action: r.MoviesDelete,
			},
			{
				Name:  "export",
				Usage: "Export the ranked list",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, md, txt or json",
						Value:   "md",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (a directory with --posters); stdout when empty",
					},
					&cli.BoolFlag{
						Name:  "posters",
						Usage: "Download posters next to a Markdown export",
					},
				},
				Action: r.MoviesExport,
			},
		},
	}
}

// apiCommand handles direct TMDB API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct TMDB API calls",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Authenticated GET against TMDB, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Query parameter as key=value (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive list management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI",
		Action:  r.TUI,
	}
}
