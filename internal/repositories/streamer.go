package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kurbezz/discord-bot/internal/models"
	"github.com/kurbezz/discord-bot/internal/shared"
)

// StreamerRepository implements [models.Repository] for [models.Streamer] persistence.
type StreamerRepository struct {
	db *sql.DB
}

// NewStreamerRepository creates a new [StreamerRepository] with the given database connection
func NewStreamerRepository(db *sql.DB) *StreamerRepository {
	return &StreamerRepository{db: db}
}

// Create inserts a new streamer into the database with a generated ID
func (r *StreamerRepository) Create(streamer *models.Streamer) error {
	id := shared.GenerateID()
	streamer.SetID(id)

	if err := streamer.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO streamers (id, twitch_id, twitch_login, display_name, guild_id, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, id, streamer.TwitchID(), streamer.TwitchLogin(), streamer.DisplayName(),
		streamer.GuildID(), streamer.Enabled(), streamer.CreatedAt(), streamer.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert streamer: %w", err)
	}

	return nil
}

// Get retrieves a streamer by ID
func (r *StreamerRepository) Get(id string) (*models.Streamer, error) {
	query := `
		SELECT id, twitch_id, twitch_login, display_name, guild_id, enabled, created_at, updated_at
		FROM streamers
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id), id)
}

// GetByTwitchID retrieves a streamer by their Twitch broadcaster ID
func (r *StreamerRepository) GetByTwitchID(twitchID string) (*models.Streamer, error) {
	query := `
		SELECT id, twitch_id, twitch_login, display_name, guild_id, enabled, created_at, updated_at
		FROM streamers
		WHERE twitch_id = ?
	`

	return r.scanOne(r.db.QueryRow(query, twitchID), twitchID)
}

// Update modifies an existing streamer in the database
func (r *StreamerRepository) Update(streamer *models.Streamer) error {
	if err := streamer.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	streamer.SetUpdatedAt(now)

	query := `
		UPDATE streamers
		SET twitch_login = ?, display_name = ?, guild_id = ?, enabled = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, streamer.TwitchLogin(), streamer.DisplayName(), streamer.GuildID(),
		streamer.Enabled(), now, streamer.ID())
	if err != nil {
		return fmt.Errorf("failed to update streamer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrStreamerNotFound, streamer.ID())
	}

	return nil
}

// Delete removes a streamer by ID, ending the mirroring of their schedule
func (r *StreamerRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM streamers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete streamer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrStreamerNotFound, id)
	}

	return nil
}

// List retrieves all streamers matching the given criteria
func (r *StreamerRepository) List(criteria map[string]any) ([]*models.Streamer, error) {
	query := `
		SELECT id, twitch_id, twitch_login, display_name, guild_id, enabled, created_at, updated_at
		FROM streamers
		WHERE 1 = 1
	`

	args := []any{}

	if guildID, ok := criteria["guild_id"].(string); ok && guildID != "" {
		query += " AND guild_id = ?"
		args = append(args, guildID)
	}

	if enabled, ok := criteria["enabled"].(bool); ok {
		query += " AND enabled = ?"
		args = append(args, enabled)
	}

	query += " ORDER BY created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query streamers: %w", err)
	}
	defer rows.Close()

	var streamers []*models.Streamer
	for rows.Next() {
		streamer, err := scanStreamer(rows.Scan)
		if err != nil {
			return nil, err
		}
		streamers = append(streamers, streamer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return streamers, nil
}

func (r *StreamerRepository) scanOne(row *sql.Row, key string) (*models.Streamer, error) {
	streamer, err := scanStreamer(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrStreamerNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query streamer: %w", err)
	}
	return streamer, nil
}

func scanStreamer(scan func(dest ...any) error) (*models.Streamer, error) {
	var (
		id          string
		twitchID    string
		twitchLogin string
		displayName string
		guildID     string
		enabled     bool
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := scan(&id, &twitchID, &twitchLogin, &displayName, &guildID, &enabled, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	streamer := models.NewStreamer(twitchID, twitchLogin, displayName, guildID)
	streamer.SetID(id)
	streamer.SetEnabled(enabled)
	streamer.SetCreatedAt(createdAt)
	streamer.SetUpdatedAt(updatedAt)

	return streamer, nil
}
