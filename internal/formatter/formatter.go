// package formatter provides functions to export streamer schedules to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/kurbezz/discord-bot/internal/models"
	"github.com/kurbezz/discord-bot/internal/schedule"
	"github.com/kurbezz/discord-bot/internal/shared"
)

const timeLayout = "Mon 2006-01-02 15:04 MST"

// BuildScheduleExport converts a streamer's fetched source events into a [models.ScheduleExport].
func BuildScheduleExport(streamer *models.Streamer, events []schedule.SourceEvent) *models.ScheduleExport {
	export := &models.ScheduleExport{
		DisplayName: streamer.DisplayName(),
		Login:       streamer.TwitchLogin(),
		ChannelURL:  streamer.ChannelURL(),
		Entries:     []models.ScheduleEntry{},
	}

	for _, ev := range events {
		entry := models.ScheduleEntry{
			Title:    ev.Title,
			Category: ev.Category,
			StartAt:  ev.StartAt,
			EndAt:    ev.EndAt,
		}
		if ev.Repeat != nil {
			for _, day := range ev.Repeat.Weekdays {
				entry.Weekdays = append(entry.Weekdays, day.String())
			}
		}
		export.Entries = append(export.Entries, entry)
	}

	return export
}

// ExportToCSV converts a ScheduleExport to CSV format with columns: Title, Category, Start, End, Duration, Repeats
func ExportToCSV(export *models.ScheduleExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Category", "Start", "End", "Duration", "Repeats"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range export.Entries {
		record := []string{
			entry.Title,
			entry.Category,
			entry.StartAt.Format(timeLayout),
			entry.EndAt.Format(timeLayout),
			shared.FormatDuration(entry.DurationMinutes()),
			strings.Join(entry.Weekdays, " "),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a ScheduleExport to Markdown format
func ExportToMarkdown(export *models.ScheduleExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.DisplayName))
	buf.WriteString(fmt.Sprintf("**Channel**: [%s](%s)\n", export.Login, export.ChannelURL))
	buf.WriteString(fmt.Sprintf("**Upcoming streams**: %d\n\n", len(export.Entries)))

	buf.WriteString("## Schedule\n\n")
	for i, entry := range export.Entries {
		duration := shared.FormatDuration(entry.DurationMinutes())
		categoryPart := ""
		if entry.Category != "" {
			categoryPart = fmt.Sprintf(" (%s)", entry.Category)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s - %s [%s]\n", i+1, entry.Title, categoryPart, entry.StartAt.Format(timeLayout), duration))
		if entry.Recurring() {
			buf.WriteString(fmt.Sprintf("   - Repeats weekly: %s\n", strings.Join(entry.Weekdays, ", ")))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a ScheduleExport to plain text format
func ExportToText(export *models.ScheduleExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Streamer: %s\n", export.DisplayName))
	buf.WriteString(fmt.Sprintf("Channel: %s\n", export.ChannelURL))
	buf.WriteString(fmt.Sprintf("Upcoming streams: %d\n\n", len(export.Entries)))

	for i, entry := range export.Entries {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, entry.Title, entry.StartAt.Format(timeLayout)))
		if entry.Recurring() {
			buf.WriteString(fmt.Sprintf("   repeats weekly: %s\n", strings.Join(entry.Weekdays, ", ")))
		}
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of the schedule metadata (without entries)
func ToMetadataJSON(export *models.ScheduleExport) ([]byte, error) {
	metadata := struct {
		DisplayName string `json:"display_name"`
		Login       string `json:"login"`
		ChannelURL  string `json:"channel_url"`
		Entries     int    `json:"entries"`
	}{
		DisplayName: export.DisplayName,
		Login:       export.Login,
		ChannelURL:  export.ChannelURL,
		Entries:     len(export.Entries),
	}
	return shared.MarshalJSON(metadata, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ScheduleFile string
	MetadataFile string
}

// WriteCSVExport exports a schedule to CSV format with an accompanying metadata JSON file.
//
// Defaults to the streamer login as the base filename & creates {base}_schedule.csv and {base}_metadata.json
func WriteCSVExport(export *models.ScheduleExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Login
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	scheduleFile := baseFilepath + "_schedule.csv"
	if err := os.WriteFile(scheduleFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ScheduleFile: scheduleFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a schedule to Markdown format.
//
// Defaults to {login}_schedule.md as the filename.
func WriteMarkdownExport(export *models.ScheduleExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_schedule.md", export.Login)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports a schedule to plain text format.
//
// Defaults to {login}_schedule.txt as the filename.
func WriteTextExport(export *models.ScheduleExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_schedule.txt", export.Login)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
