package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurbezz/discord-bot/internal/formatter"
	"github.com/kurbezz/discord-bot/internal/models"
	"github.com/kurbezz/discord-bot/internal/repositories"
	"github.com/kurbezz/discord-bot/internal/shared"
	"github.com/urfave/cli/v3"
)

// fetchSchedule loads a tracked streamer and their published schedule.
func (r *Runner) fetchSchedule(ctx context.Context, login string) (*models.ScheduleExport, error) {
	if r.source == nil {
		return nil, fmt.Errorf("%w: twitch credentials are required", shared.ErrMissingCredentials)
	}

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return nil, err
	}
	defer closeDB()

	repo := repositories.NewStreamerRepository(db)
	streamer, err := findByLogin(repo, login)
	if err != nil {
		return nil, err
	}

	events, err := r.source.Events(ctx, streamer.TwitchID())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for %s: %w", login, err)
	}

	return formatter.BuildScheduleExport(streamer, events), nil
}

// ScheduleShow prints a streamer's upcoming schedule.
func (r *Runner) ScheduleShow(ctx context.Context, cmd *cli.Command) error {
	export, err := r.fetchSchedule(ctx, cmd.String("login"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(export, true)
	}

	text, err := formatter.ExportToText(export)
	if err != nil {
		return err
	}

	r.writePlainHeader(export.DisplayName)
	r.writePlain("%s", text)
	return nil
}

// ScheduleExport writes a streamer's schedule to a file in the requested format.
func (r *Runner) ScheduleExport(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")

	export, err := r.fetchSchedule(ctx, cmd.String("login"))
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("%s Exported schedule to %s\n", r.styles.OK("✓"), result.ScheduleFile)
		r.writePlain("%s\n", r.styles.Help("Metadata written to "+result.MetadataFile))
	case "markdown", "md":
		written, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("%s Exported schedule to %s\n", r.styles.OK("✓"), written)
	case "text", "txt":
		written, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("%s Exported schedule to %s\n", r.styles.OK("✓"), written)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}

	return nil
}
