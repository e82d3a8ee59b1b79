package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/kurbezz/discord-bot/internal/repositories"
	"github.com/kurbezz/discord-bot/internal/schedule"
	"github.com/kurbezz/discord-bot/internal/services"
	"github.com/kurbezz/discord-bot/internal/shared"
	"github.com/kurbezz/discord-bot/internal/tasks"
	"github.com/kurbezz/discord-bot/internal/ui"
	"github.com/urfave/cli/v3"
)

// TwitchDirectory resolves broadcasters for streamer registration.
type TwitchDirectory interface {
	User(ctx context.Context, id string) (*services.TwitchUser, error)
	UserByLogin(ctx context.Context, login string) (*services.TwitchUser, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	source schedule.Source
	mirror schedule.Mirror
	twitch TwitchDirectory
	logger *log.Logger
	output io.Writer
	styles *ui.Palette
	db     *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Source schedule.Source
	Mirror schedule.Mirror
	Twitch TwitchDirectory
	Logger *log.Logger
	Output io.Writer
	DB     *sql.DB // Optional preopened database, used by tests
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		source: opts.Source,
		mirror: opts.Mirror,
		twitch: opts.Twitch,
		logger: opts.Logger,
		output: opts.Output,
		styles: ui.DefaultPalette(),
		db:     opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, streamersCommand, syncCommand, scheduleCommand, daemonCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openDatabase returns the streamer database, opening it from config when the
// Runner was not constructed with one. The returned closer is a no-op for
// injected databases.
func (r *Runner) openDatabase() (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	return db, func() { db.Close() }, nil
}

// newEngine builds the mirroring engine over the given repository.
func (r *Runner) newEngine(repo *repositories.StreamerRepository) (*tasks.MirrorEngine, error) {
	if r.source == nil || r.mirror == nil {
		return nil, fmt.Errorf("%w: twitch and discord credentials are required", shared.ErrMissingCredentials)
	}

	syncer := schedule.NewSyncer(r.source, r.mirror, r.logger)
	return tasks.NewMirrorEngine(repo, syncer, r.logger), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("%s\n", r.styles.Title(title))
}
