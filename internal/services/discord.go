// Discord REST v10 implementation of the event mirror.
//
// Guild scheduled events reference:
// https://discord.com/developers/docs/resources/guild-scheduled-event
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/kurbezz/discord-bot/internal/schedule"
	"github.com/kurbezz/discord-bot/internal/shared"
)

const discordBaseURL = "https://discord.com/api/v10"

// Scheduled-event constants the mirror entries are always created with:
// guild-only visibility, hosted at an external location.
const (
	privacyLevelGuildOnly = 2
	entityTypeExternal    = 3
)

// discordRecurrenceRule is the wire form of a recurrence rule.
type discordRecurrenceRule struct {
	Start     time.Time `json:"start"`
	ByWeekday []int     `json:"by_weekday"`
	Interval  int       `json:"interval"`
	Frequency int       `json:"frequency"`
}

// discordScheduledEvent is the wire form of a guild scheduled event.
type discordScheduledEvent struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	Description        string                 `json:"description"`
	ScheduledStartTime time.Time              `json:"scheduled_start_time"`
	ScheduledEndTime   time.Time              `json:"scheduled_end_time"`
	RecurrenceRule     *discordRecurrenceRule `json:"recurrence_rule"`
	CreatorID          string                 `json:"creator_id"`
}

type entityMetadata struct {
	Location string `json:"location"`
}

type createScheduledEvent struct {
	Name               string                 `json:"name"`
	Description        string                 `json:"description"`
	PrivacyLevel       int                    `json:"privacy_level"`
	EntityType         int                    `json:"entity_type"`
	EntityMetadata     entityMetadata         `json:"entity_metadata"`
	ScheduledStartTime time.Time              `json:"scheduled_start_time"`
	ScheduledEndTime   time.Time              `json:"scheduled_end_time"`
	RecurrenceRule     *discordRecurrenceRule `json:"recurrence_rule,omitempty"`
}

// modifyScheduledEvent always serializes recurrence_rule, even when nil.
// A PATCH that omits the key leaves the mirror's rule in place, so an event
// dropping its recurrence would never converge; an explicit null clears it.
type modifyScheduledEvent struct {
	Name               string                 `json:"name"`
	Description        string                 `json:"description"`
	ScheduledStartTime time.Time              `json:"scheduled_start_time"`
	ScheduledEndTime   time.Time              `json:"scheduled_end_time"`
	RecurrenceRule     *discordRecurrenceRule `json:"recurrence_rule"`
}

// DiscordService wraps the guild scheduled-events resource. It implements
// [schedule.Mirror]; only events created by botUserID are ever reported or
// touched.
type DiscordService struct {
	baseURL    string
	botToken   string
	botUserID  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewDiscordService creates a Discord adapter authenticated with the given
// bot token. Outbound calls share a limiter tuned to the scheduled-events
// route budget so a large reconciliation plan does not trip HTTP 429s.
func NewDiscordService(botToken, botUserID string, logger *log.Logger) *DiscordService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DiscordService{
		baseURL:    discordBaseURL,
		botToken:   botToken,
		botUserID:  botUserID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(2), 5),
		logger:     logger,
	}
}

// do performs one authenticated request against the Discord API, decoding a
// JSON response into result when it is non-nil.
func (s *DiscordService) do(ctx context.Context, method, path string, body, result any) (int, []byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+s.botToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if result != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, result); err != nil {
			return resp.StatusCode, raw, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, raw, nil
}

// OwnedEvents lists the guild's scheduled events created by the bot itself.
func (s *DiscordService) OwnedEvents(ctx context.Context, guildID string) ([]schedule.MirrorEvent, error) {
	var wire []discordScheduledEvent
	status, raw, err := s.do(ctx, http.MethodGet, "/guilds/"+guildID+"/scheduled-events", nil, &wire)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: list scheduled events: status %d: %s", shared.ErrAPIRequest, status, raw)
	}

	events := make([]schedule.MirrorEvent, 0, len(wire))
	for _, ev := range wire {
		if ev.CreatorID != s.botUserID {
			continue
		}
		events = append(events, toMirrorEvent(ev))
	}

	return events, nil
}

// Create adds a scheduled event to the guild.
func (s *DiscordService) Create(ctx context.Context, guildID string, req schedule.CreateRequest) (schedule.MirrorEvent, error) {
	payload := createScheduledEvent{
		Name:               req.Name,
		Description:        req.Description,
		PrivacyLevel:       privacyLevelGuildOnly,
		EntityType:         entityTypeExternal,
		EntityMetadata:     entityMetadata{Location: req.Location},
		ScheduledStartTime: req.StartAt,
		ScheduledEndTime:   req.EndAt,
		RecurrenceRule:     toWireRule(req.Recurrence),
	}

	var wire discordScheduledEvent
	status, raw, err := s.do(ctx, http.MethodPost, "/guilds/"+guildID+"/scheduled-events", payload, &wire)
	if err != nil {
		return schedule.MirrorEvent{}, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return schedule.MirrorEvent{}, fmt.Errorf("%w: status %d: %s", shared.ErrCreateRejected, status, raw)
	}

	return toMirrorEvent(wire), nil
}

// Update rewrites an existing scheduled event.
func (s *DiscordService) Update(ctx context.Context, guildID, eventID string, req schedule.UpdateRequest) (schedule.MirrorEvent, error) {
	payload := modifyScheduledEvent{
		Name:               req.Name,
		Description:        req.Description,
		ScheduledStartTime: req.StartAt,
		ScheduledEndTime:   req.EndAt,
		RecurrenceRule:     toWireRule(req.Recurrence),
	}

	var wire discordScheduledEvent
	status, raw, err := s.do(ctx, http.MethodPatch, "/guilds/"+guildID+"/scheduled-events/"+eventID, payload, &wire)
	if err != nil {
		return schedule.MirrorEvent{}, err
	}
	if status != http.StatusOK {
		return schedule.MirrorEvent{}, fmt.Errorf("%w: status %d: %s", shared.ErrUpdateRejected, status, raw)
	}

	return toMirrorEvent(wire), nil
}

// Delete removes a scheduled event from the guild.
func (s *DiscordService) Delete(ctx context.Context, guildID, eventID string) error {
	status, raw, err := s.do(ctx, http.MethodDelete, "/guilds/"+guildID+"/scheduled-events/"+eventID, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("%w: status %d: %s", shared.ErrDeleteRejected, status, raw)
	}
	return nil
}

func toMirrorEvent(ev discordScheduledEvent) schedule.MirrorEvent {
	return schedule.MirrorEvent{
		ID:          ev.ID,
		Name:        ev.Name,
		Description: ev.Description,
		StartAt:     ev.ScheduledStartTime,
		EndAt:       ev.ScheduledEndTime,
		Recurrence:  fromWireRule(ev.RecurrenceRule),
		CreatorID:   ev.CreatorID,
	}
}

func toWireRule(rule *schedule.RecurrenceRule) *discordRecurrenceRule {
	if rule == nil {
		return nil
	}
	weekdays := make([]int, len(rule.ByWeekday))
	for i, wd := range rule.ByWeekday {
		weekdays[i] = int(wd)
	}
	return &discordRecurrenceRule{
		Start:     rule.Start,
		ByWeekday: weekdays,
		Interval:  rule.Interval,
		Frequency: rule.Frequency,
	}
}

func fromWireRule(rule *discordRecurrenceRule) *schedule.RecurrenceRule {
	if rule == nil {
		return nil
	}
	weekdays := make([]schedule.Weekday, len(rule.ByWeekday))
	for i, wd := range rule.ByWeekday {
		weekdays[i] = schedule.Weekday(wd)
	}
	return &schedule.RecurrenceRule{
		Start:     rule.Start,
		ByWeekday: weekdays,
		Interval:  rule.Interval,
		Frequency: rule.Frequency,
	}
}
