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

// setupCommand initializes the config file and database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize configuration and database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// streamersCommand manages the set of tracked streamers
func streamersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "streamers",
		Aliases: []string{"str"},
		Usage:   "Manage tracked streamers",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Track a streamer's schedule in a Discord guild",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "login",
						Usage:    "Twitch channel login",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "guild",
						Usage:    "Discord guild ID to mirror the schedule into",
						Required: true,
					},
				},
				Action: r.StreamersAdd,
			},
			{
				Name:  "list",
				Usage: "List tracked streamers",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "guild",
						Usage: "Only list streamers mirrored into this guild",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.StreamersList,
			},
			{
				Name:  "remove",
				Usage: "Stop tracking a streamer",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "login",
						Usage:    "Twitch channel login",
						Required: true,
					},
				},
				Action: r.StreamersRemove,
			},
		},
	}
}

// syncCommand reconciles schedules on demand
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile Twitch schedules onto Discord scheduled events",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a reconciliation pass now",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "login",
						Usage: "Only reconcile this streamer",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output run results as JSON",
					},
				},
				Action: r.SyncRun,
			},
		},
	}
}

// scheduleCommand inspects and exports fetched schedules
func scheduleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "schedule",
		Aliases: []string{"sched"},
		Usage:   "Inspect a streamer's published schedule",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print a streamer's upcoming schedule",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "login",
						Usage:    "Twitch channel login",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ScheduleShow,
			},
			{
				Name:  "export",
				Usage: "Export a streamer's schedule to a file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "login",
						Usage:    "Twitch channel login",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, markdown, or text",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.ScheduleExport,
			},
		},
	}
}

// daemonCommand runs reconciliation continuously on a cron schedule
func daemonCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "daemon",
		Usage: "Run reconciliation continuously on the configured cron schedule",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "cron",
				Usage: "Cron expression overriding the configured schedule",
			},
		},
		Action: r.Daemon,
	}
}
