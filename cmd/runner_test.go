package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kurbezz/discord-bot/internal/models"
	"github.com/kurbezz/discord-bot/internal/repositories"
	"github.com/kurbezz/discord-bot/internal/schedule"
	"github.com/kurbezz/discord-bot/internal/services"
	"github.com/kurbezz/discord-bot/internal/shared"
	tu "github.com/kurbezz/discord-bot/internal/testing"
)

// mockDirectory is a test double for [TwitchDirectory]
type mockDirectory struct {
	users map[string]*services.TwitchUser
}

func (m *mockDirectory) User(ctx context.Context, id string) (*services.TwitchUser, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: twitch user %s", shared.ErrStreamerNotFound, id)
}

func (m *mockDirectory) UserByLogin(ctx context.Context, login string) (*services.TwitchUser, error) {
	if user, ok := m.users[login]; ok {
		return user, nil
	}
	return nil, fmt.Errorf("%w: twitch user %s", shared.ErrStreamerNotFound, login)
}

// newTestDB opens an in-memory database with migrations applied
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func seedStreamer(t *testing.T, db *sql.DB, twitchID, login, guildID string) *models.Streamer {
	t.Helper()

	repo := repositories.NewStreamerRepository(db)
	streamer := models.NewStreamer(twitchID, login, login, guildID)
	if err := repo.Create(streamer); err != nil {
		t.Fatalf("failed to seed streamer: %v", err)
	}
	return streamer
}

func newTestRunner(t *testing.T, opts RunnerOpts) (*Runner, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	logger := shared.NewLogger(io.Discard)

	opts.Logger = logger
	opts.Output = output
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}

	return NewRunner(opts), output
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			source := &tu.MockSource{}
			mirror := &tu.MockMirror{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Source: source,
				Mirror: mirror,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.source != source {
				t.Error("expected source to be set")
			}
			if runner.mirror != mirror {
				t.Error("expected mirror to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes compact JSON", func(t *testing.T) {
			runner, output := newTestRunner(t, RunnerOpts{})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("writeJSON: %v", err)
			}

			if output.String() != `{"key":"value"}`+"\n" {
				t.Errorf("output = %q", output.String())
			}
		})

		t.Run("fails on writer error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}, Logger: shared.NewLogger(io.Discard)})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected error from failing writer")
			}
		})
	})
}

func TestStreamersCommands(t *testing.T) {
	t.Run("add resolves broadcaster and persists", func(t *testing.T) {
		db := newTestDB(t)
		directory := &mockDirectory{users: map[string]*services.TwitchUser{
			"thestreamer": {ID: "141981764", Login: "thestreamer", DisplayName: "TheStreamer"},
		}}
		runner, output := newTestRunner(t, RunnerOpts{DB: db, Twitch: directory})

		app := appCommand(runner)
		err := app.Run(context.Background(), []string{"app", "streamers", "add", "--login", "thestreamer", "--guild", "200"})
		if err != nil {
			t.Fatalf("streamers add: %v", err)
		}

		repo := repositories.NewStreamerRepository(db)
		streamer, err := repo.GetByTwitchID("141981764")
		if err != nil {
			t.Fatalf("streamer not persisted: %v", err)
		}
		if streamer.GuildID() != "200" {
			t.Errorf("guild = %s", streamer.GuildID())
		}
		if !strings.Contains(output.String(), "Now tracking TheStreamer") {
			t.Errorf("output = %q", output.String())
		}
	})

	t.Run("add fails for unknown login", func(t *testing.T) {
		db := newTestDB(t)
		runner, _ := newTestRunner(t, RunnerOpts{DB: db, Twitch: &mockDirectory{}})

		app := appCommand(runner)
		err := app.Run(context.Background(), []string{"app", "streamers", "add", "--login", "nobody", "--guild", "200"})
		if err == nil {
			t.Fatal("expected error for unknown login")
		}
	})

	t.Run("list prints tracked streamers", func(t *testing.T) {
		db := newTestDB(t)
		seedStreamer(t, db, "100", "first", "200")
		seedStreamer(t, db, "101", "second", "300")
		runner, output := newTestRunner(t, RunnerOpts{DB: db})

		app := appCommand(runner)
		if err := app.Run(context.Background(), []string{"app", "streamers", "list"}); err != nil {
			t.Fatalf("streamers list: %v", err)
		}

		for _, want := range []string{"first", "second", "guild 200", "guild 300"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("output missing %q:\n%s", want, output.String())
			}
		}
	})

	t.Run("list as JSON", func(t *testing.T) {
		db := newTestDB(t)
		seedStreamer(t, db, "100", "first", "200")
		runner, output := newTestRunner(t, RunnerOpts{DB: db})

		app := appCommand(runner)
		if err := app.Run(context.Background(), []string{"app", "streamers", "list", "--json"}); err != nil {
			t.Fatalf("streamers list: %v", err)
		}

		var rows []map[string]any
		if err := json.Unmarshal(output.Bytes(), &rows); err != nil {
			t.Fatalf("failed to parse JSON output: %v", err)
		}
		if len(rows) != 1 || rows[0]["twitch_login"] != "first" {
			t.Errorf("rows = %v", rows)
		}
	})

	t.Run("remove deletes the streamer", func(t *testing.T) {
		db := newTestDB(t)
		seedStreamer(t, db, "100", "first", "200")
		runner, _ := newTestRunner(t, RunnerOpts{DB: db})

		app := appCommand(runner)
		if err := app.Run(context.Background(), []string{"app", "streamers", "remove", "--login", "first"}); err != nil {
			t.Fatalf("streamers remove: %v", err)
		}

		repo := repositories.NewStreamerRepository(db)
		streamers, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(streamers) != 0 {
			t.Errorf("expected no streamers, got %d", len(streamers))
		}
	})
}

func TestSyncRunCommand(t *testing.T) {
	startAt := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	t.Run("creates events for a tracked streamer", func(t *testing.T) {
		db := newTestDB(t)
		seedStreamer(t, db, "100", "first", "200")

		source := &tu.MockSource{
			EventsFn: func(ctx context.Context, sourceID string) ([]schedule.SourceEvent, error) {
				return []schedule.SourceEvent{{
					UID:     "abc123",
					Title:   "Game night",
					StartAt: startAt,
					EndAt:   startAt.Add(2 * time.Hour),
				}}, nil
			},
		}

		var created []schedule.CreateRequest
		mirror := &tu.MockMirror{
			CreateFn: func(ctx context.Context, targetID string, req schedule.CreateRequest) (schedule.MirrorEvent, error) {
				created = append(created, req)
				return schedule.MirrorEvent{ID: "1", Name: req.Name}, nil
			},
		}

		runner, output := newTestRunner(t, RunnerOpts{DB: db, Source: source, Mirror: mirror})

		app := appCommand(runner)
		if err := app.Run(context.Background(), []string{"app", "sync", "run"}); err != nil {
			t.Fatalf("sync run: %v", err)
		}

		if len(created) != 1 {
			t.Fatalf("got %d creates, want 1", len(created))
		}
		if created[0].Location != "https://twitch.tv/first" {
			t.Errorf("location = %q", created[0].Location)
		}
		if !strings.Contains(output.String(), "1 created") {
			t.Errorf("output = %q", output.String())
		}
	})

	t.Run("requires credentials", func(t *testing.T) {
		db := newTestDB(t)
		runner, _ := newTestRunner(t, RunnerOpts{DB: db})

		app := appCommand(runner)
		err := app.Run(context.Background(), []string{"app", "sync", "run"})
		if err == nil {
			t.Fatal("expected error without twitch/discord services")
		}
	})

	t.Run("single streamer by login", func(t *testing.T) {
		db := newTestDB(t)
		seedStreamer(t, db, "100", "first", "200")
		seedStreamer(t, db, "101", "second", "300")

		var fetched []string
		source := &tu.MockSource{
			EventsFn: func(ctx context.Context, sourceID string) ([]schedule.SourceEvent, error) {
				fetched = append(fetched, sourceID)
				return nil, nil
			},
		}

		runner, _ := newTestRunner(t, RunnerOpts{DB: db, Source: source, Mirror: &tu.MockMirror{}})

		app := appCommand(runner)
		if err := app.Run(context.Background(), []string{"app", "sync", "run", "--login", "second"}); err != nil {
			t.Fatalf("sync run: %v", err)
		}

		if len(fetched) != 1 || fetched[0] != "101" {
			t.Errorf("fetched = %v, want only broadcaster 101", fetched)
		}
	})
}

func TestScheduleShowCommand(t *testing.T) {
	db := newTestDB(t)
	seedStreamer(t, db, "100", "first", "200")

	startAt := time.Date(2024, time.January, 3, 18, 0, 0, 0, time.UTC)
	source := &tu.MockSource{
		EventsFn: func(ctx context.Context, sourceID string) ([]schedule.SourceEvent, error) {
			return []schedule.SourceEvent{{
				UID:     "abc123",
				Title:   "Game night",
				StartAt: startAt,
				EndAt:   startAt.Add(2 * time.Hour),
				Repeat:  &schedule.WeeklyRepeat{Weekdays: []schedule.Weekday{schedule.Wednesday}},
			}}, nil
		},
	}

	runner, output := newTestRunner(t, RunnerOpts{DB: db, Source: source})

	app := appCommand(runner)
	if err := app.Run(context.Background(), []string{"app", "schedule", "show", "--login", "first"}); err != nil {
		t.Fatalf("schedule show: %v", err)
	}

	for _, want := range []string{"Game night", "repeats weekly: Wednesday"} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("output missing %q:\n%s", want, output.String())
		}
	}
}
