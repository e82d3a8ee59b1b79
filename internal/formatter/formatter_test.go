package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kurbezz/discord-bot/internal/models"
	"github.com/kurbezz/discord-bot/internal/schedule"
)

func fixtureExport() *models.ScheduleExport {
	return &models.ScheduleExport{
		DisplayName: "TheStreamer",
		Login:       "thestreamer",
		ChannelURL:  "https://twitch.tv/thestreamer",
		Entries: []models.ScheduleEntry{
			{
				Title:    "Game night",
				Category: "Just Chatting",
				StartAt:  time.Date(2024, time.January, 3, 18, 0, 0, 0, time.UTC),
				EndAt:    time.Date(2024, time.January, 3, 20, 0, 0, 0, time.UTC),
				Weekdays: []string{"Monday", "Wednesday"},
			},
			{
				Title:   "Charity marathon",
				StartAt: time.Date(2024, time.January, 6, 12, 0, 0, 0, time.UTC),
				EndAt:   time.Date(2024, time.January, 6, 12, 45, 0, 0, time.UTC),
			},
		},
	}
}

func TestBuildScheduleExport(t *testing.T) {
	streamer := models.NewStreamer("141981764", "thestreamer", "TheStreamer", "200")
	events := []schedule.SourceEvent{
		{
			UID:      "abc123",
			Title:    "Game night",
			Category: "Just Chatting",
			StartAt:  time.Date(2024, time.January, 3, 18, 0, 0, 0, time.UTC),
			EndAt:    time.Date(2024, time.January, 3, 20, 0, 0, 0, time.UTC),
			Repeat:   &schedule.WeeklyRepeat{Weekdays: []schedule.Weekday{schedule.Monday, schedule.Wednesday}},
		},
		{
			UID:     "oneoff1",
			Title:   "Charity marathon",
			StartAt: time.Date(2024, time.January, 6, 12, 0, 0, 0, time.UTC),
			EndAt:   time.Date(2024, time.January, 6, 12, 45, 0, 0, time.UTC),
		},
	}

	export := BuildScheduleExport(streamer, events)

	if export.Login != "thestreamer" || export.ChannelURL != "https://twitch.tv/thestreamer" {
		t.Errorf("export header = %+v", export)
	}
	if len(export.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(export.Entries))
	}

	recurring := export.Entries[0]
	if !recurring.Recurring() {
		t.Error("first entry should be recurring")
	}
	if len(recurring.Weekdays) != 2 || recurring.Weekdays[0] != "Monday" || recurring.Weekdays[1] != "Wednesday" {
		t.Errorf("weekdays = %v", recurring.Weekdays)
	}

	if export.Entries[1].Recurring() {
		t.Error("one-shot entry should not be recurring")
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(fixtureExport())
	if err != nil {
		t.Fatalf("ExportToCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse generated CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2 entries", len(records))
	}

	if records[0][0] != "Title" || records[0][5] != "Repeats" {
		t.Errorf("header = %v", records[0])
	}

	if records[1][0] != "Game night" || records[1][1] != "Just Chatting" {
		t.Errorf("first row = %v", records[1])
	}
	if records[1][4] != "2h00m" {
		t.Errorf("duration = %q", records[1][4])
	}
	if records[1][5] != "Monday Wednesday" {
		t.Errorf("repeats = %q", records[1][5])
	}

	if records[2][5] != "" {
		t.Errorf("one-shot row should have empty repeats, got %q", records[2][5])
	}
	if records[2][4] != "45m" {
		t.Errorf("one-shot duration = %q", records[2][4])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(fixtureExport())
	if err != nil {
		t.Fatalf("ExportToMarkdown: %v", err)
	}

	out := string(data)
	for _, want := range []string{
		"# TheStreamer",
		"[thestreamer](https://twitch.tv/thestreamer)",
		"**Upcoming streams**: 2",
		"1. Game night (Just Chatting)",
		"Repeats weekly: Monday, Wednesday",
		"2. Charity marathon",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(fixtureExport())
	if err != nil {
		t.Fatalf("ExportToText: %v", err)
	}

	out := string(data)
	for _, want := range []string{
		"Streamer: TheStreamer",
		"Channel: https://twitch.tv/thestreamer",
		"Upcoming streams: 2",
		"repeats weekly: Monday, Wednesday",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text missing %q:\n%s", want, out)
		}
	}
}

func TestToMetadataJSON(t *testing.T) {
	data, err := ToMetadataJSON(fixtureExport())
	if err != nil {
		t.Fatalf("ToMetadataJSON: %v", err)
	}

	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		t.Fatalf("failed to parse metadata JSON: %v", err)
	}

	if metadata["login"] != "thestreamer" {
		t.Errorf("login = %v", metadata["login"])
	}
	if metadata["entries"] != float64(2) {
		t.Errorf("entries = %v", metadata["entries"])
	}
}

func TestWriteCSVExport(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "thestreamer")

	result, err := WriteCSVExport(fixtureExport(), base)
	if err != nil {
		t.Fatalf("WriteCSVExport: %v", err)
	}

	if result.ScheduleFile != base+"_schedule.csv" {
		t.Errorf("schedule file = %s", result.ScheduleFile)
	}

	for _, file := range []string{result.ScheduleFile, result.MetadataFile} {
		if _, err := os.Stat(file); err != nil {
			t.Errorf("expected %s to exist: %v", file, err)
		}
	}
}

func TestWriteMarkdownExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.md")

	written, err := WriteMarkdownExport(fixtureExport(), path)
	if err != nil {
		t.Fatalf("WriteMarkdownExport: %v", err)
	}

	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "# TheStreamer") {
		t.Error("markdown export missing header")
	}
}

func TestWriteTextExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.txt")

	written, err := WriteTextExport(fixtureExport(), path)
	if err != nil {
		t.Fatalf("WriteTextExport: %v", err)
	}

	if written != path {
		t.Errorf("written = %s, want %s", written, path)
	}
}
