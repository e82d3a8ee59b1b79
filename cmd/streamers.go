package main

import (
	"context"
	"fmt"

	"github.com/kurbezz/discord-bot/internal/models"
	"github.com/kurbezz/discord-bot/internal/repositories"
	"github.com/kurbezz/discord-bot/internal/shared"
	"github.com/urfave/cli/v3"
)

// findByLogin resolves a tracked streamer by Twitch login.
func findByLogin(repo *repositories.StreamerRepository, login string) (*models.Streamer, error) {
	streamers, err := repo.List(map[string]any{})
	if err != nil {
		return nil, err
	}
	for _, s := range streamers {
		if s.TwitchLogin() == login {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrStreamerNotFound, login)
}

// StreamersAdd starts tracking a streamer's schedule in a Discord guild.
func (r *Runner) StreamersAdd(ctx context.Context, cmd *cli.Command) error {
	login := cmd.String("login")
	guildID := cmd.String("guild")

	if r.twitch == nil {
		return fmt.Errorf("%w: twitch credentials are required", shared.ErrMissingCredentials)
	}

	r.logger.Info("resolving broadcaster", "login", login)
	user, err := r.twitch.UserByLogin(ctx, login)
	if err != nil {
		return fmt.Errorf("failed to resolve broadcaster %s: %w", login, err)
	}

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	repo := repositories.NewStreamerRepository(db)
	streamer := models.NewStreamer(user.ID, user.Login, user.DisplayName, guildID)

	if err := repo.Create(streamer); err != nil {
		return fmt.Errorf("failed to track streamer: %w", err)
	}

	r.writePlain("%s Now tracking %s (broadcaster %s) in guild %s\n",
		r.styles.OK("✓"), user.DisplayName, user.ID, guildID)
	return nil
}

// StreamersList prints all tracked streamers.
func (r *Runner) StreamersList(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	criteria := map[string]any{}
	if guildID := cmd.String("guild"); guildID != "" {
		criteria["guild_id"] = guildID
	}

	repo := repositories.NewStreamerRepository(db)
	streamers, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list streamers: %w", err)
	}

	if cmd.Bool("json") {
		rows := make([]map[string]any, 0, len(streamers))
		for _, s := range streamers {
			rows = append(rows, map[string]any{
				"twitch_id":    s.TwitchID(),
				"twitch_login": s.TwitchLogin(),
				"display_name": s.DisplayName(),
				"guild_id":     s.GuildID(),
				"enabled":      s.Enabled(),
			})
		}
		return r.writeJSON(rows, true)
	}

	if len(streamers) == 0 {
		r.writePlain("No streamers tracked. Use 'streamers add' to start mirroring a schedule.\n")
		return nil
	}

	r.writePlainHeader("Tracked streamers")
	for _, s := range streamers {
		status := r.styles.OK("enabled")
		if !s.Enabled() {
			status = r.styles.Warn("disabled")
		}
		r.writePlain("%s (%s) → guild %s [%s]\n", s.DisplayName(), s.TwitchLogin(), s.GuildID(), status)
	}
	return nil
}

// StreamersRemove stops tracking a streamer.
func (r *Runner) StreamersRemove(ctx context.Context, cmd *cli.Command) error {
	login := cmd.String("login")

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	repo := repositories.NewStreamerRepository(db)
	streamer, err := findByLogin(repo, login)
	if err != nil {
		return err
	}

	if err := repo.Delete(streamer.ID()); err != nil {
		return fmt.Errorf("failed to remove streamer: %w", err)
	}

	r.writePlain("%s Stopped tracking %s\n", r.styles.OK("✓"), streamer.DisplayName())
	r.writePlain("%s\n", r.styles.Help("Previously mirrored events remain in the guild and are no longer managed"))
	return nil
}
