// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand writes a config file and prepares the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml, initialize the database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// listCommand prints the shelf
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Show the shelf in display order",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "unlistened",
				Usage: "Only show items not yet listened to",
			},
		},
		Action: r.List,
	}
}

// addCommand handles manual entry, bulk import and mix URLs
func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: `Add "Artist - Title", an artist name, a mix URL or a file of lines`,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "line",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Import one entry per line from a file",
			},
			&cli.StringFlag{
				Name:  "mix",
				Usage: "Mixcloud URL to add",
			},
		},
		Action: r.Add,
	}
}

// searchCommand queries the catalog
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the catalog for albums and artists",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "mixes",
				Usage: "Search mixes as well",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.IntFlag{
				Name:  "pick",
				Usage: "Add the Nth result (1-based) to the shelf",
			},
		},
		Action: r.Search,
	}
}

func itemCommand(name, usage string, aliases []string, action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:    name,
		Aliases: aliases,
		Usage:   usage,
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Action: action,
	}
}

// listenedCommand toggles the listened flag
func listenedCommand(r *Runner) *cli.Command {
	return itemCommand("listened", "Toggle the listened flag of an item", []string{"done"}, r.Listened)
}

// againCommand toggles the listen-again flag
func againCommand(r *Runner) *cli.Command {
	return itemCommand("again", "Toggle the listen-again flag of an item", nil, r.Again)
}

// removeCommand deletes an item
func removeCommand(r *Runner) *cli.Command {
	return itemCommand("remove", "Remove an item from the shelf", []string{"rm"}, r.Remove)
}

// retryCommand re-runs artwork resolution
func retryCommand(r *Runner) *cli.Command {
	return itemCommand("retry", "Look for a cover again", nil, r.Retry)
}

// openCommand opens a mix page or a cover in the browser
func openCommand(r *Runner) *cli.Command {
	return itemCommand("open", "Open a mix's page or an item's cover in the browser", nil, r.Open)
}

// moveCommand reorders the shelf
func moveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "move",
		Usage: "Move an item to a position (1-based) and save the order",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "to",
				Usage:    "Target position, 1 is the top of the shelf",
				Required: true,
			},
		},
		Action: r.Move,
	}
}

// exportCommand writes the shelf to disk
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the shelf (json, csv, markdown, txt)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv, markdown, txt",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
			},
		},
		Action: r.Export,
	}
}

// rackCommand shows the rack, optionally spinning it
func rackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "rack",
		Usage: "Show the rack, or spin it to a random unlistened pick",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "shuffle",
				Aliases: []string{"s"},
				Usage:   "Pick a random unlistened item",
			},
		},
		Action: r.Rack,
	}
}

// cacheCommand inspects the identifier lookup cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the catalog identifier cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show the number of cached identifiers per bucket",
				Action: r.CacheStats,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive shelf management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive shelf",
		Action:  r.TUI,
	}
}
