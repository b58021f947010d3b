package member

import (
	"context"
	"database/sql"
	"fmt"

	"gangboard/internal/database"
)

const memberColumns = `id, guild_id, discord_id, username, current_gang_id, current_gang_name,
	points, weekly_points, message_count, weekly_message_count,
	gang_points, recent_messages, last_active, last_weekly_reset, created_at`

// Repository handles member data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new member repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMember(row rowScanner) (*Member, error) {
	m := &Member{}
	err := row.Scan(
		&m.ID,
		&m.GuildID,
		&m.DiscordID,
		&m.Username,
		&m.CurrentGangID,
		&m.CurrentGangName,
		&m.Points,
		&m.WeeklyPoints,
		&m.MessageCount,
		&m.WeeklyMessageCount,
		&m.GangPoints,
		&m.RecentMessages,
		&m.LastActive,
		&m.LastWeeklyReset,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetByDiscordID retrieves a member by their platform id, or nil if absent
func (r *Repository) GetByDiscordID(ctx context.Context, guildID, discordID string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE guild_id = $1 AND discord_id = $2`

	m, err := scanMember(r.db.QueryRowContext(ctx, query, guildID, discordID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return m, nil
}

// Save writes every mutable field of the member back to its row. One UPDATE
// per member keeps each mutation atomic at the row level.
func (r *Repository) Save(ctx context.Context, q database.Querier, m *Member) error {
	query := `
		UPDATE members
		SET username = $2,
		    current_gang_id = $3,
		    current_gang_name = $4,
		    points = $5,
		    weekly_points = $6,
		    message_count = $7,
		    weekly_message_count = $8,
		    gang_points = $9,
		    recent_messages = $10,
		    last_active = $11,
		    last_weekly_reset = $12
		WHERE id = $1
	`

	_, err := q.ExecContext(ctx, query,
		m.ID, m.Username, m.CurrentGangID, m.CurrentGangName,
		m.Points, m.WeeklyPoints, m.MessageCount, m.WeeklyMessageCount,
		m.GangPoints, m.RecentMessages, m.LastActive, m.LastWeeklyReset,
	)
	if err != nil {
		return fmt.Errorf("failed to save member: %w", err)
	}

	return nil
}

// Atomically runs fn against the member's row under a row lock and persists
// the mutated member in the same transaction. Concurrent operations on the
// same member serialize here; operations on other members are unaffected.
// Returns ErrMemberNotFound without side effects if the member is absent.
func (r *Repository) Atomically(ctx context.Context, guildID, discordID string, fn func(q database.Querier, m *Member) error) (*Member, error) {
	var result *Member

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `SELECT ` + memberColumns + ` FROM members WHERE guild_id = $1 AND discord_id = $2 FOR UPDATE`

		m, err := scanMember(tx.QueryRowContext(ctx, query, guildID, discordID))
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrMemberNotFound
			}
			return fmt.Errorf("failed to lock member: %w", err)
		}

		if err := fn(tx, m); err != nil {
			return err
		}

		if err := r.Save(ctx, tx, m); err != nil {
			return err
		}

		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// TrackAtomically is Atomically with lazy creation: if the member does not
// exist yet it is inserted from seed first, then locked like any other row.
// The insert races safely against concurrent messages from the same author
// via ON CONFLICT DO NOTHING.
func (r *Repository) TrackAtomically(ctx context.Context, seed *Member, fn func(q database.Querier, m *Member) error) (*Member, error) {
	var result *Member

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		insert := `
			INSERT INTO members (guild_id, discord_id, username, current_gang_id, current_gang_name, gang_points, recent_messages)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (guild_id, discord_id) DO NOTHING
		`
		_, err := tx.ExecContext(ctx, insert,
			seed.GuildID, seed.DiscordID, seed.Username,
			seed.CurrentGangID, seed.CurrentGangName, seed.GangPoints, seed.RecentMessages,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert member: %w", err)
		}

		query := `SELECT ` + memberColumns + ` FROM members WHERE guild_id = $1 AND discord_id = $2 FOR UPDATE`

		m, err := scanMember(tx.QueryRowContext(ctx, query, seed.GuildID, seed.DiscordID))
		if err != nil {
			return fmt.Errorf("failed to lock member: %w", err)
		}

		if err := fn(tx, m); err != nil {
			return err
		}

		if err := r.Save(ctx, tx, m); err != nil {
			return err
		}

		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// List retrieves members of a guild ordered by creation, with pagination
func (r *Repository) List(ctx context.Context, guildID string, limit, offset int) ([]*Member, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM members WHERE guild_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, guildID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	query := `SELECT ` + memberColumns + ` FROM members WHERE guild_id = $1 ORDER BY id LIMIT $2 OFFSET $3`

	members, err := r.queryMembers(ctx, query, guildID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// ListByGuild retrieves every member of a guild, for rollover iteration
func (r *Repository) ListByGuild(ctx context.Context, guildID string) ([]*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE guild_id = $1 ORDER BY id`
	return r.queryMembers(ctx, query, guildID)
}

// TopByPoints returns the member leaderboard: positive scores only, highest
// first, creation order breaking ties. gangID narrows the board to one gang;
// weekly switches the ranking field.
func (r *Repository) TopByPoints(ctx context.Context, guildID, gangID string, weekly bool, limit, offset int) ([]*Member, error) {
	field := "points"
	if weekly {
		field = "weekly_points"
	}

	if gangID != "" {
		query := `SELECT ` + memberColumns + ` FROM members
			WHERE guild_id = $1 AND current_gang_id = $2 AND ` + field + ` > 0
			ORDER BY ` + field + ` DESC, id LIMIT $3 OFFSET $4`
		return r.queryMembers(ctx, query, guildID, gangID, limit, offset)
	}

	query := `SELECT ` + memberColumns + ` FROM members
		WHERE guild_id = $1 AND ` + field + ` > 0
		ORDER BY ` + field + ` DESC, id LIMIT $2 OFFSET $3`
	return r.queryMembers(ctx, query, guildID, limit, offset)
}

// Rank returns a member's leaderboard position: members strictly ahead, plus one
func (r *Repository) Rank(ctx context.Context, guildID string, score int64, weekly bool) (int, error) {
	field := "points"
	if weekly {
		field = "weekly_points"
	}

	var ahead int
	query := `SELECT COUNT(*) FROM members WHERE guild_id = $1 AND ` + field + ` > $2`
	if err := r.db.QueryRowContext(ctx, query, guildID, score).Scan(&ahead); err != nil {
		return 0, fmt.Errorf("failed to rank member: %w", err)
	}

	return ahead + 1, nil
}

// BulkSwitchGang moves every member of fromGang to toGang, for orphan gang
// cleanup. Buckets for the old gang are left in place so history survives.
func (r *Repository) BulkSwitchGang(ctx context.Context, fromGangID, toGangID, toGangName string, categories []string) (int, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE current_gang_id = $1`
	members, err := r.queryMembers(ctx, query, fromGangID)
	if err != nil {
		return 0, err
	}

	for _, m := range members {
		if _, err := r.Atomically(ctx, m.GuildID, m.DiscordID, func(q database.Querier, locked *Member) error {
			locked.SwitchGang(toGangID, toGangName, categories)
			return nil
		}); err != nil {
			return 0, err
		}
	}

	return len(members), nil
}

func (r *Repository) queryMembers(ctx context.Context, query string, args ...interface{}) ([]*Member, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}
