package gang

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gangboard/internal/database"
	"gangboard/internal/points"
)

const gangColumns = `id, guild_id, gang_id, name, role_id, channel_id,
	points, weekly_points, points_breakdown, weekly_points_breakdown,
	total_member_points, weekly_member_points, member_count,
	message_count, weekly_message_count, last_active, last_weekly_reset, created_at`

// Repository handles gang data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new gang repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGang(row rowScanner) (*Gang, error) {
	g := &Gang{}
	err := row.Scan(
		&g.ID,
		&g.GuildID,
		&g.GangID,
		&g.Name,
		&g.RoleID,
		&g.ChannelID,
		&g.Points,
		&g.WeeklyPoints,
		&g.PointsBreakdown,
		&g.WeeklyPointsBreakdown,
		&g.TotalMemberPoints,
		&g.WeeklyMemberPoints,
		&g.MemberCount,
		&g.MessageCount,
		&g.WeeklyMessageCount,
		&g.LastActive,
		&g.LastWeeklyReset,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Upsert creates the gang if absent and refreshes its roster bindings if
// present. Safe to run on every startup.
func (r *Repository) Upsert(ctx context.Context, guildID, gangID, name, roleID, channelID string, categories []string) (*Gang, error) {
	query := `
		INSERT INTO gangs (guild_id, gang_id, name, role_id, channel_id, points_breakdown, weekly_points_breakdown)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (guild_id, gang_id)
		DO UPDATE SET name = EXCLUDED.name, role_id = EXCLUDED.role_id, channel_id = EXCLUDED.channel_id
		RETURNING ` + gangColumns

	g, err := scanGang(r.db.QueryRowContext(ctx, query, guildID, gangID, name, roleID, channelID, points.NewBreakdown(categories)))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert gang: %w", err)
	}

	return g, nil
}

// GetByGangID retrieves a gang by its stable id, or nil if absent
func (r *Repository) GetByGangID(ctx context.Context, guildID, gangID string) (*Gang, error) {
	query := `SELECT ` + gangColumns + ` FROM gangs WHERE guild_id = $1 AND gang_id = $2`

	g, err := scanGang(r.db.QueryRowContext(ctx, query, guildID, gangID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gang: %w", err)
	}

	return g, nil
}

// ListByTotalScore returns all gangs of a guild, highest combined score
// first (direct points plus cached member points)
func (r *Repository) ListByTotalScore(ctx context.Context, guildID string, weekly bool) ([]*Gang, error) {
	order := "(points + total_member_points)"
	if weekly {
		order = "(weekly_points + weekly_member_points)"
	}

	query := `SELECT ` + gangColumns + ` FROM gangs WHERE guild_id = $1 ORDER BY ` + order + ` DESC, id`
	return r.queryGangs(ctx, query, guildID)
}

// Atomically runs fn against the gang's row under a row lock and persists
// the mutated gang in the same transaction. Returns ErrGangNotFound without
// side effects if the gang is absent.
func (r *Repository) Atomically(ctx context.Context, guildID, gangID string, fn func(q database.Querier, g *Gang) error) (*Gang, error) {
	var result *Gang

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `SELECT ` + gangColumns + ` FROM gangs WHERE guild_id = $1 AND gang_id = $2 FOR UPDATE`

		g, err := scanGang(tx.QueryRowContext(ctx, query, guildID, gangID))
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrGangNotFound
			}
			return fmt.Errorf("failed to lock gang: %w", err)
		}

		if err := fn(tx, g); err != nil {
			return err
		}

		save := `
			UPDATE gangs
			SET points = $2,
			    weekly_points = $3,
			    points_breakdown = $4,
			    weekly_points_breakdown = $5,
			    last_active = $6
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, save,
			g.ID, g.Points, g.WeeklyPoints, g.PointsBreakdown, g.WeeklyPointsBreakdown, g.LastActive,
		); err != nil {
			return fmt.Errorf("failed to save gang: %w", err)
		}

		result = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// RefreshMemberTotals recomputes the gang's cached member aggregates from
// the member records in one statement. A gang with no members ends up with
// zeroed caches, not an error.
func (r *Repository) RefreshMemberTotals(ctx context.Context, guildID, gangID string) error {
	query := `
		UPDATE gangs g
		SET total_member_points = s.total,
		    weekly_member_points = s.weekly_total,
		    member_count = s.cnt
		FROM (
			SELECT COALESCE(SUM(points), 0) AS total,
			       COALESCE(SUM(weekly_points), 0) AS weekly_total,
			       COUNT(*) AS cnt
			FROM members
			WHERE guild_id = $1 AND current_gang_id = $2
		) s
		WHERE g.guild_id = $1 AND g.gang_id = $2
	`

	if _, err := r.db.ExecContext(ctx, query, guildID, gangID); err != nil {
		return fmt.Errorf("failed to refresh gang totals: %w", err)
	}

	return nil
}

// BumpMessageStats increments the gang's message counters. Runs on the
// caller's transaction so the tracker's member update and gang counters
// commit together.
func (r *Repository) BumpMessageStats(ctx context.Context, q database.Querier, guildID, gangID string, now time.Time) error {
	query := `
		UPDATE gangs
		SET message_count = message_count + 1,
		    weekly_message_count = weekly_message_count + 1,
		    last_active = $3
		WHERE guild_id = $1 AND gang_id = $2
	`

	if _, err := q.ExecContext(ctx, query, guildID, gangID, now); err != nil {
		return fmt.Errorf("failed to bump gang message stats: %w", err)
	}

	return nil
}

// ResetWeekly zeroes the weekly counters of every gang in the guild. One
// UPDATE covers all rows, so each gang's zeroing is atomic.
func (r *Repository) ResetWeekly(ctx context.Context, guildID string, zero points.Breakdown, now time.Time) (int64, error) {
	query := `
		UPDATE gangs
		SET weekly_points = 0,
		    weekly_points_breakdown = $2,
		    weekly_member_points = 0,
		    weekly_message_count = 0,
		    last_weekly_reset = $3
		WHERE guild_id = $1
	`

	res, err := r.db.ExecContext(ctx, query, guildID, zero, now)
	if err != nil {
		return 0, fmt.Errorf("failed to reset gang weekly points: %w", err)
	}

	return res.RowsAffected()
}

// ResetAll zeroes weekly and lifetime counters of every gang in the guild
func (r *Repository) ResetAll(ctx context.Context, guildID string, zero points.Breakdown, now time.Time) (int64, error) {
	query := `
		UPDATE gangs
		SET points = 0,
		    points_breakdown = $2,
		    total_member_points = 0,
		    message_count = 0,
		    weekly_points = 0,
		    weekly_points_breakdown = $2,
		    weekly_member_points = 0,
		    weekly_message_count = 0,
		    last_weekly_reset = $3
		WHERE guild_id = $1
	`

	res, err := r.db.ExecContext(ctx, query, guildID, zero, now)
	if err != nil {
		return 0, fmt.Errorf("failed to reset gang points: %w", err)
	}

	return res.RowsAffected()
}

// ListOrphans returns gangs that are no longer part of the configured roster
func (r *Repository) ListOrphans(ctx context.Context, guildID string, rosterIDs []string) ([]*Gang, error) {
	query := `SELECT ` + gangColumns + ` FROM gangs WHERE guild_id = $1 AND gang_id <> ALL($2) ORDER BY id`
	return r.queryGangs(ctx, query, guildID, pq.Array(rosterIDs))
}

// Delete removes a gang row. Callers migrate its members first.
func (r *Repository) Delete(ctx context.Context, guildID, gangID string) error {
	query := `DELETE FROM gangs WHERE guild_id = $1 AND gang_id = $2`

	res, err := r.db.ExecContext(ctx, query, guildID, gangID)
	if err != nil {
		return fmt.Errorf("failed to delete gang: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrGangNotFound
	}

	return nil
}

func (r *Repository) queryGangs(ctx context.Context, query string, args ...interface{}) ([]*Gang, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list gangs: %w", err)
	}
	defer rows.Close()

	var gangs []*Gang
	for rows.Next() {
		g, err := scanGang(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gang: %w", err)
		}
		gangs = append(gangs, g)
	}

	return gangs, rows.Err()
}
