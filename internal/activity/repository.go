package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gangboard/internal/database"
)

// Repository handles activity log persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new activity log repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a log entry. Pass the caller's transaction as q when the
// entry must commit together with the mutation it records; pass nil to use
// the pool directly.
func (r *Repository) Create(ctx context.Context, q database.Querier, e *LogEntry) error {
	if q == nil {
		q = r.db
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	query := `
		INSERT INTO activity_log (id, guild_id, target_type, target_id, target_name,
			action, points, source, awarded_by, awarded_by_username, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := q.QueryRowContext(ctx, query,
		e.ID, e.GuildID, e.TargetType, e.TargetID, e.TargetName,
		e.Action, e.Points, e.Source, e.AwardedBy, e.AwardedByUsername, e.Reason,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity log entry: %w", err)
	}

	return nil
}

// ListByRange returns log entries for a guild within [from, to), newest
// first. targetID narrows to one member or gang when non-empty.
func (r *Repository) ListByRange(ctx context.Context, guildID string, from, to time.Time, targetID string, limit, offset int) ([]*LogEntry, error) {
	query := `
		SELECT id, guild_id, target_type, target_id, target_name,
		       action, points, source, awarded_by, awarded_by_username, reason, created_at
		FROM activity_log
		WHERE guild_id = $1 AND created_at >= $2 AND created_at < $3
	`
	args := []interface{}{guildID, from, to}

	if targetID != "" {
		query += ` AND target_id = $4 ORDER BY created_at DESC LIMIT $5 OFFSET $6`
		args = append(args, targetID, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $4 OFFSET $5`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity log: %w", err)
	}
	defer rows.Close()

	var entries []*LogEntry
	for rows.Next() {
		e := &LogEntry{}
		if err := rows.Scan(
			&e.ID, &e.GuildID, &e.TargetType, &e.TargetID, &e.TargetName,
			&e.Action, &e.Points, &e.Source, &e.AwardedBy, &e.AwardedByUsername, &e.Reason, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
