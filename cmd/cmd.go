// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand writes the config file, creates the database and seeds it.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml, initialize the database and load the seed file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "seed",
				Usage: "Seed file (.json, .yaml) loaded into the database (default: server.seed_path)",
			},
			&cli.BoolFlag{
				Name:  "skip-seed",
				Usage: "Only create the schema",
			},
		},
		Action: r.Setup,
	}
}

// moviesCommand handles movie listing and export
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Movie catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List one page of movies, or every page with --all",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "genre",
						Aliases: []string{"g"},
						Usage:   "Only movies tagged with this genre",
					},
					&cli.IntFlag{
						Name:  "from",
						Usage: "Offset of the first movie",
						Value: 0,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Page size (default: paging.page_size)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Walk every page until the catalog is exhausted",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.MoviesList,
			},
			{
				Name:  "export",
				Usage: "Export the whole listing to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "genre",
						Aliases: []string{"g"},
						Usage:   "Only movies tagged with this genre",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: csv, markdown, txt, json",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: derived from genre and format)",
					},
					&cli.BoolFlag{
						Name:  "by-genre",
						Usage: "Write one file per genre",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory for --by-genre (default: marquee_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent genre exports for --by-genre",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  "include-all",
						Usage: "Also export the unfiltered listing with --by-genre",
					},
				},
				Action: r.MoviesExport,
			},
		},
	}
}

// genresCommand lists the genre catalog
func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "List genres with their movie counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Genres,
	}
}

// tuiCommand launches the interactive browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive movie browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file used while the UI owns the terminal (default: logging.file)",
			},
		},
		Action: r.TUI,
	}
}

// serveCommand runs the local fixture backend
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog API from the local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.host:server.port)",
			},
			dbPathFlag(),
			&cli.StringFlag{
				Name:  "seed",
				Usage: "Seed file loaded when the database is empty (default: server.seed_path)",
			},
			&cli.IntFlag{
				Name:  "latency",
				Usage: "Artificial delay per response in milliseconds (default: server.latency_ms)",
				Value: -1,
			},
		},
		Action: r.Serve,
	}
}

// dbCommand handles schema maintenance
func dbCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Database maintenance",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending migrations",
				Flags:  []cli.Flag{dbPathFlag()},
				Action: r.DBMigrate,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{dbPathFlag()},
				Action: r.DBRollback,
			},
			{
				Name:   "status",
				Usage:  "Show applied migrations",
				Flags:  []cli.Flag{dbPathFlag()},
				Action: r.DBStatus,
			},
		},
	}
}

func dbPathFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "db",
		Usage: "Database path (default: database.path)",
	}
}
