package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/kurbezz/discord-bot/internal/schedule"
	"github.com/kurbezz/discord-bot/internal/shared"
)

func newTestDiscordService(t *testing.T, handler http.HandlerFunc) *DiscordService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &DiscordService{
		baseURL:    srv.URL,
		botToken:   "token",
		botUserID:  "bot",
		httpClient: srv.Client(),
		limiter:    rate.NewLimiter(rate.Inf, 0),
		logger:     shared.NewLogger(nil),
	}
}

func TestDiscordService_OwnedEvents(t *testing.T) {
	svc := newTestDiscordService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/guilds/200/scheduled-events" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bot token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"id": "1",
				"name": "Game night",
				"description": "Chill games\n\n\n\n#abc123",
				"scheduled_start_time": "2024-01-03T18:00:00Z",
				"scheduled_end_time": "2024-01-03T20:00:00Z",
				"recurrence_rule": {"start": "2024-01-03T18:00:00Z", "by_weekday": [0, 2], "interval": 1, "frequency": 2},
				"creator_id": "bot"
			},
			{
				"id": "2",
				"name": "Someone else's event",
				"description": "not ours",
				"scheduled_start_time": "2024-01-04T18:00:00Z",
				"scheduled_end_time": "2024-01-04T20:00:00Z",
				"recurrence_rule": null,
				"creator_id": "human"
			}
		]`))
	})

	events, err := svc.OwnedEvents(context.Background(), "200")
	if err != nil {
		t.Fatalf("OwnedEvents: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("got %d events, want only the bot-owned one", len(events))
	}

	ev := events[0]
	if ev.ID != "1" || ev.CreatorID != "bot" {
		t.Errorf("event = %+v", ev)
	}
	if ev.Recurrence == nil {
		t.Fatal("recurrence rule not decoded")
	}
	if len(ev.Recurrence.ByWeekday) != 2 ||
		ev.Recurrence.ByWeekday[0] != schedule.Monday ||
		ev.Recurrence.ByWeekday[1] != schedule.Wednesday {
		t.Errorf("ByWeekday = %v", ev.Recurrence.ByWeekday)
	}
	if ev.Recurrence.Frequency != schedule.FrequencyWeekly || ev.Recurrence.Interval != 1 {
		t.Errorf("encoding fields = %+v", ev.Recurrence)
	}
}

func TestDiscordService_Create(t *testing.T) {
	start := time.Date(2024, time.January, 3, 18, 0, 0, 0, time.UTC)

	svc := newTestDiscordService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["privacy_level"] != float64(2) || payload["entity_type"] != float64(3) {
			t.Errorf("privacy/entity = %v/%v", payload["privacy_level"], payload["entity_type"])
		}
		meta, _ := payload["entity_metadata"].(map[string]any)
		if meta["location"] != "https://twitch.tv/streamer" {
			t.Errorf("location = %v", meta["location"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "1",
			"name": "Game night",
			"description": "\n\n\n\n#abc123",
			"scheduled_start_time": "2024-01-03T18:00:00Z",
			"scheduled_end_time": "2024-01-03T20:00:00Z",
			"recurrence_rule": null,
			"creator_id": "bot"
		}`))
	})

	created, err := svc.Create(context.Background(), "200", schedule.CreateRequest{
		Name:        "Game night",
		Description: "\n\n\n\n#abc123",
		Location:    "https://twitch.tv/streamer",
		StartAt:     start,
		EndAt:       start.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "1" {
		t.Errorf("created = %+v", created)
	}
}

func TestDiscordService_Create_Rejected(t *testing.T) {
	svc := newTestDiscordService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "Invalid Form Body"}`))
	})

	_, err := svc.Create(context.Background(), "200", schedule.CreateRequest{Name: "bad"})
	if !errors.Is(err, shared.ErrCreateRejected) {
		t.Fatalf("err = %v, want ErrCreateRejected", err)
	}
}

func TestDiscordService_Update(t *testing.T) {
	svc := newTestDiscordService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/guilds/200/scheduled-events/42" {
			t.Errorf("path = %s", r.URL.Path)
		}

		var payload modifyScheduledEvent
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.Name != "Game night v2" {
			t.Errorf("name = %q", payload.Name)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "42",
			"name": "Game night v2",
			"description": "\n\n\n\n#abc123",
			"scheduled_start_time": "2024-01-03T18:00:00Z",
			"scheduled_end_time": "2024-01-03T20:00:00Z",
			"recurrence_rule": null,
			"creator_id": "bot"
		}`))
	})

	updated, err := svc.Update(context.Background(), "200", "42", schedule.UpdateRequest{
		Name:        "Game night v2",
		Description: "\n\n\n\n#abc123",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Game night v2" {
		t.Errorf("updated = %+v", updated)
	}
}

// A request without a recurrence must PATCH an explicit recurrence_rule null
// so the mirror clears any rule it still carries.
func TestDiscordService_Update_ClearsRecurrence(t *testing.T) {
	svc := newTestDiscordService(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		rule, present := payload["recurrence_rule"]
		if !present {
			t.Error("recurrence_rule key missing from PATCH body")
		}
		if rule != nil {
			t.Errorf("recurrence_rule = %v, want null", rule)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "42",
			"name": "Game night",
			"description": "\n\n\n\n#abc123",
			"scheduled_start_time": "2024-01-03T18:00:00Z",
			"scheduled_end_time": "2024-01-03T20:00:00Z",
			"recurrence_rule": null,
			"creator_id": "bot"
		}`))
	})

	updated, err := svc.Update(context.Background(), "200", "42", schedule.UpdateRequest{
		Name:        "Game night",
		Description: "\n\n\n\n#abc123",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Recurrence != nil {
		t.Errorf("Recurrence = %+v, want nil", updated.Recurrence)
	}
}

func TestDiscordService_Update_Rejected(t *testing.T) {
	svc := newTestDiscordService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := svc.Update(context.Background(), "200", "42", schedule.UpdateRequest{})
	if !errors.Is(err, shared.ErrUpdateRejected) {
		t.Fatalf("err = %v, want ErrUpdateRejected", err)
	}
}

func TestDiscordService_Delete(t *testing.T) {
	var deleted bool
	svc := newTestDiscordService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})

	if err := svc.Delete(context.Background(), "200", "42"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Error("delete request never reached the server")
	}
}

func TestDiscordService_Delete_Rejected(t *testing.T) {
	svc := newTestDiscordService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := svc.Delete(context.Background(), "200", "42")
	if !errors.Is(err, shared.ErrDeleteRejected) {
		t.Fatalf("err = %v, want ErrDeleteRejected", err)
	}
}
