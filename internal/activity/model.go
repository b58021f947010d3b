package activity

import "time"

// Target types for log entries
const (
	TargetMember = "member"
	TargetGang   = "gang"
)

// Actions recorded in the log
const (
	ActionAward  = "award"
	ActionDeduct = "deduct"
)

// LogEntry is an immutable audit record of a point mutation. Entries are
// only ever inserted and read; an external exporter consumes them through
// the range query.
type LogEntry struct {
	ID                string    `json:"id"`
	GuildID           string    `json:"guild_id"`
	TargetType        string    `json:"target_type"`
	TargetID          string    `json:"target_id"`
	TargetName        string    `json:"target_name"`
	Action            string    `json:"action"`
	Points            int64     `json:"points"`
	Source            string    `json:"source"`
	AwardedBy         *string   `json:"awarded_by,omitempty"`
	AwardedByUsername *string   `json:"awarded_by_username,omitempty"`
	Reason            *string   `json:"reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
