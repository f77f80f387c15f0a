// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/urfave/cli/v3"
)

// globalFlags are inherited by every subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "Username for favorites and changes (overrides user.username)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: table, csv, md, txt or json",
		Value:   string(formatter.FormatTable),
	}
}

func idArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "id", UsageText: "movie id"}}
}

func termArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "term", UsageText: "search term"}}
}

// movieFieldFlags returns one flag per editable movie field.
func movieFieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Movie title"},
		&cli.StringFlag{Name: "year", Usage: "Release year (4 digits)"},
		&cli.StringFlag{Name: "runtime", Usage: "Runtime, e.g. \"120 min\""},
		&cli.StringFlag{Name: "genre", Usage: "Genre"},
		&cli.StringFlag{Name: "director", Usage: "Director"},
	}
}

// moviesCommand handles catalog operations
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse and edit the movie catalog",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List movies, optionally filtered",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Only show movies whose title, director or genre contains this text",
					},
					&cli.BoolFlag{
						Name:  "favorites",
						Usage: "Only show favorites of the current user",
					},
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Read the last cached snapshot instead of the service",
					},
				},
				Action: r.MoviesList,
			},
			{
				Name:      "get",
				Usage:     "Show one movie",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Read the movie from the cached snapshot",
					},
				},
				Action: r.MoviesGet,
			},
			{
				Name:      "search",
				Usage:     "Search the catalog on the server",
				Arguments: termArg(),
				Flags:     []cli.Flag{formatFlag()},
				Action:    r.MoviesSearch,
			},
			{
				Name:   "add",
				Usage:  "Add a movie",
				Flags:  movieFieldFlags(),
				Action: r.MoviesAdd,
			},
			{
				Name:      "edit",
				Usage:     "Change fields of a movie",
				Arguments: idArg(),
				Flags:     movieFieldFlags(),
				Action:    r.MoviesEdit,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a movie",
				Arguments: idArg(),
				Action:    r.MoviesDelete,
			},
			{
				Name:  "export",
				Usage: "Export the catalog to files in several formats",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Formats to write (repeatable); defaults to all",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: movies_export_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent writers",
						Value: 3,
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Only export matching movies",
					},
					&cli.BoolFlag{
						Name:  "favorites",
						Usage: "Only export favorites of the current user",
					},
				},
				Action: r.MoviesExport,
			},
		},
	}
}

// favoritesCommand handles per-user favorites
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorites of the current user",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List favorites",
				Flags:   []cli.Flag{formatFlag()},
				Action:  r.FavoritesList,
			},
			{
				Name:      "search",
				Usage:     "Search within favorites",
				Arguments: termArg(),
				Flags:     []cli.Flag{formatFlag()},
				Action:    r.FavoritesSearch,
			},
			{
				Name:      "add",
				Usage:     "Add a movie to favorites",
				Arguments: idArg(),
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a movie from favorites",
				Arguments: idArg(),
				Action:    r.FavoritesRemove,
			},
			{
				Name:      "check",
				Usage:     "Check whether a movie is a favorite",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.FavoritesCheck,
			},
		},
	}
}

// cacheCommand handles the local snapshot cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the local snapshot cache",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show cached counts and recent syncs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of sync records to show",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheShow,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached snapshot",
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// apiCommand handles direct API calls for debugging
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the catalog service",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "dump",
				Usage: "Dump movies and the current user's favorites as raw JSON",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save dump to api_dump.json",
					},
				},
				Action: r.APIDump,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive movie browser",
		Action:  r.TUI,
	}
}
