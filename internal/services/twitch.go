// Twitch Helix implementation of the schedule source.
//
// The schedule feed is public iCalendar data served by
// https://api.twitch.tv/helix/schedule/icalendar; the Users endpoint needs
// an app access token obtained through the OAuth2 client-credentials flow.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/charmbracelet/log"
	"github.com/teambition/rrule-go"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kurbezz/discord-bot/internal/schedule"
	"github.com/kurbezz/discord-bot/internal/shared"
)

const (
	helixBaseURL   = "https://api.twitch.tv/helix"
	twitchTokenURL = "https://id.twitch.tv/oauth2/token"
)

// TwitchUser is a Helix user object reduced to the fields the CLI needs.
type TwitchUser struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// TwitchService fetches broadcaster schedules and user records from the
// Helix API. It implements [schedule.Source].
type TwitchService struct {
	baseURL    string
	clientID   string
	httpClient *http.Client // authenticated with an app access token
	feedClient *http.Client // plain client for the public ICS feed
	logger     *log.Logger
	now        func() time.Time
}

// NewTwitchService creates a Twitch adapter with the given application
// credentials. Token acquisition and refresh are handled by the OAuth2
// client-credentials transport.
func NewTwitchService(clientID, clientSecret string, logger *log.Logger) *TwitchService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     twitchTokenURL,
	}

	return &TwitchService{
		baseURL:    helixBaseURL,
		clientID:   clientID,
		httpClient: cc.Client(context.Background()),
		feedClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		now:        time.Now,
	}
}

// Events fetches and parses the broadcaster's schedule feed. Only events
// that have not started yet or that recur weekly are returned; events with
// a recurrence encoding the engine does not understand are skipped with an
// error logged, and the rest of the feed keeps parsing.
func (s *TwitchService) Events(ctx context.Context, broadcasterID string) ([]schedule.SourceEvent, error) {
	feedURL := fmt.Sprintf("%s/schedule/icalendar?broadcaster_id=%s", s.baseURL, url.QueryEscape(broadcasterID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.feedClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule feed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: schedule feed: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule feed: %w", err)
	}

	return s.parseFeed(broadcasterID, body)
}

// parseFeed converts an iCalendar payload into source events.
func (s *TwitchService) parseFeed(broadcasterID string, body []byte) ([]schedule.SourceEvent, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule feed: %w", err)
	}

	now := s.now()
	events := make([]schedule.SourceEvent, 0)

	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			s.logger.Error("skipping schedule entry", "broadcaster_id", broadcasterID, "err", err)
			continue
		}

		// Past one-shot events are already over; the differ guards this
		// again, but there is no point shipping them out of the adapter.
		if !ev.StartAt.After(now) && ev.Repeat == nil {
			continue
		}

		events = append(events, ev)
	}

	return events, nil
}

func parseVEvent(ve *ical.VEvent) (schedule.SourceEvent, error) {
	var ev schedule.SourceEvent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return ev, fmt.Errorf("%w: event has no UID", shared.ErrInvalidInput)
	}
	ev.UID = uid.Value

	start, err := ve.GetStartAt()
	if err != nil {
		return ev, fmt.Errorf("event %s: invalid DTSTART: %w", ev.UID, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return ev, fmt.Errorf("event %s: invalid DTEND: %w", ev.UID, err)
	}
	ev.StartAt = start
	ev.EndAt = end

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.Description = p.Value
	}
	if p := ve.GetProperty("CATEGORIES"); p != nil {
		// Twitch publishes at most one category per event.
		ev.Category = strings.TrimSpace(strings.Split(p.Value, ",")[0])
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		repeat, err := parseRepeatRule(p.Value, start)
		if err != nil {
			return ev, fmt.Errorf("event %s: %w", ev.UID, err)
		}
		ev.Repeat = repeat
	}

	return ev, nil
}

// parseRepeatRule interprets an RRULE value. Only weekly rules are
// understood; anything else is a hard error for the event rather than a
// silently dropped recurrence.
func parseRepeatRule(raw string, start time.Time) (*schedule.WeeklyRepeat, error) {
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", shared.ErrUnknownRecurrence, raw, err)
	}
	if opt.Freq != rrule.WEEKLY {
		return nil, fmt.Errorf("%w: %q: only weekly repeats are supported", shared.ErrUnknownRecurrence, raw)
	}

	weekdays := make([]schedule.Weekday, 0, len(opt.Byweekday))
	for _, wd := range opt.Byweekday {
		weekdays = append(weekdays, schedule.Weekday(wd.Day()))
	}
	if len(weekdays) == 0 {
		// No BYDAY means the rule repeats on the start's weekday.
		weekdays = append(weekdays, schedule.WeekdayOf(start.UTC()))
	}

	return &schedule.WeeklyRepeat{Weekdays: weekdays}, nil
}

// User resolves a broadcaster by id through the Helix Users endpoint.
func (s *TwitchService) User(ctx context.Context, id string) (*TwitchUser, error) {
	return s.lookupUser(ctx, "id", id)
}

// UserByLogin resolves a broadcaster by channel login through the Helix Users endpoint.
func (s *TwitchService) UserByLogin(ctx context.Context, login string) (*TwitchUser, error) {
	return s.lookupUser(ctx, "login", login)
}

func (s *TwitchService) lookupUser(ctx context.Context, key, value string) (*TwitchUser, error) {
	endpoint := fmt.Sprintf("%s/users?%s=%s", s.baseURL, key, url.QueryEscape(value))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Client-Id", s.clientID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: users: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: users: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var payload struct {
		Data []TwitchUser `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode users response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("%w: twitch user %s", shared.ErrStreamerNotFound, value)
	}

	return &payload.Data[0], nil
}
