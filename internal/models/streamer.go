package models

import (
	"fmt"
	"time"

	"github.com/kurbezz/discord-bot/internal/shared"
)

// Streamer is a tracked Twitch broadcaster paired with the Discord guild
// whose scheduled events mirror the broadcaster's published schedule.
type Streamer struct {
	id          string
	twitchID    string
	twitchLogin string
	displayName string
	guildID     string
	enabled     bool
	createdAt   time.Time
	updatedAt   time.Time
}

// NewStreamer creates a new enabled [Streamer] with initialized timestamps.
func NewStreamer(twitchID, twitchLogin, displayName, guildID string) *Streamer {
	now := time.Now()
	return &Streamer{
		twitchID:    twitchID,
		twitchLogin: twitchLogin,
		displayName: displayName,
		guildID:     guildID,
		enabled:     true,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (s *Streamer) ID() string           { return s.id }
func (s *Streamer) TwitchID() string     { return s.twitchID }
func (s *Streamer) TwitchLogin() string  { return s.twitchLogin }
func (s *Streamer) DisplayName() string  { return s.displayName }
func (s *Streamer) GuildID() string      { return s.guildID }
func (s *Streamer) Enabled() bool        { return s.enabled }
func (s *Streamer) CreatedAt() time.Time { return s.createdAt }
func (s *Streamer) UpdatedAt() time.Time { return s.updatedAt }

func (s *Streamer) SetID(id string)             { s.id = id }
func (s *Streamer) SetEnabled(enabled bool)     { s.enabled = enabled }
func (s *Streamer) SetCreatedAt(t time.Time)    { s.createdAt = t }
func (s *Streamer) SetUpdatedAt(t time.Time)    { s.updatedAt = t }
func (s *Streamer) SetDisplayName(name string)  { s.displayName = name }
func (s *Streamer) SetTwitchLogin(login string) { s.twitchLogin = login }

// ChannelURL returns the broadcaster's channel page, used as the
// location of every mirrored scheduled event.
func (s *Streamer) ChannelURL() string {
	return "https://twitch.tv/" + s.twitchLogin
}

// Validate checks that the streamer has the identifiers persistence requires.
func (s *Streamer) Validate() error {
	if s.twitchID == "" {
		return fmt.Errorf("%w: twitch id is required", shared.ErrInvalidInput)
	}
	if s.twitchLogin == "" {
		return fmt.Errorf("%w: twitch login is required", shared.ErrInvalidInput)
	}
	if s.guildID == "" {
		return fmt.Errorf("%w: guild id is required", shared.ErrInvalidInput)
	}
	return nil
}
