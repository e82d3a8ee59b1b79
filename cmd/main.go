package main

import (
	"context"
	"errors"
	"os"

	"github.com/kurbezz/discord-bot/internal/services"
	"github.com/kurbezz/discord-bot/internal/shared"
	"github.com/urfave/cli/v3"
)

// appCommand assembles the root CLI command.
func appCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "schedmirror",
		Usage:    "Mirror Twitch streaming schedules onto Discord scheduled events",
		Version:  "0.3.0",
		Commands: r.register(),
	}
}

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	opts := RunnerOpts{
		Config: config,
		Logger: logger,
	}

	if config.Credentials.Twitch.ClientID != "" && config.Credentials.Twitch.ClientSecret != "" {
		twitch := services.NewTwitchService(
			config.Credentials.Twitch.ClientID,
			config.Credentials.Twitch.ClientSecret,
			logger,
		)
		opts.Source = twitch
		opts.Twitch = twitch
	}

	if config.Credentials.Discord.BotToken != "" {
		opts.Mirror = services.NewDiscordService(
			config.Credentials.Discord.BotToken,
			config.Credentials.Discord.BotUserID,
			logger,
		)
	}

	runner := NewRunner(opts)
	app := appCommand(runner)

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
