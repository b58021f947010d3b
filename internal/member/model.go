package member

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gangboard/internal/points"
)

// PointBucket tracks a member's points within a single gang. A member keeps
// one bucket per gang they have ever belonged to, so points survive a gang
// switch and are restored on re-entry.
type PointBucket struct {
	GangID                string           `json:"gangId"`
	GangName              string           `json:"gangName"`
	Points                int64            `json:"points"`
	WeeklyPoints          int64            `json:"weeklyPoints"`
	PointsBreakdown       points.Breakdown `json:"pointsBreakdown"`
	WeeklyPointsBreakdown points.Breakdown `json:"weeklyPointsBreakdown"`
}

// NewPointBucket creates an empty bucket with zeroed category breakdowns
func NewPointBucket(gangID, gangName string, categories []string) PointBucket {
	return PointBucket{
		GangID:                gangID,
		GangName:              gangName,
		PointsBreakdown:       points.NewBreakdown(categories),
		WeeklyPointsBreakdown: points.NewBreakdown(categories),
	}
}

// BucketList is the set of a member's per-gang buckets, stored as JSONB
type BucketList []PointBucket

// Value implements driver.Valuer
func (l BucketList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *BucketList) Scan(src interface{}) error {
	return points.ScanJSON(src, l, "gang points")
}

// RecentMessage is one entry of the spam-detection window
type RecentMessage struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageWindow is a bounded, time-pruned list of recent message contents.
// It only feeds duplicate detection; losing it degrades spam detection, not
// point totals.
type MessageWindow []RecentMessage

// Value implements driver.Valuer
func (w MessageWindow) Value() (driver.Value, error) {
	if w == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w)
}

// Scan implements sql.Scanner
func (w *MessageWindow) Scan(src interface{}) error {
	return points.ScanJSON(src, w, "recent messages")
}

// Member represents one community member within a guild
type Member struct {
	ID                 int64         `json:"id"`
	GuildID            string        `json:"guild_id"`
	DiscordID          string        `json:"discord_id"`
	Username           string        `json:"username"`
	CurrentGangID      string        `json:"current_gang_id"`
	CurrentGangName    string        `json:"current_gang_name"`
	Points             int64         `json:"points"`
	WeeklyPoints       int64         `json:"weekly_points"`
	MessageCount       int64         `json:"message_count"`
	WeeklyMessageCount int64         `json:"weekly_message_count"`
	GangPoints         BucketList    `json:"gang_points"`
	RecentMessages     MessageWindow `json:"-"`
	LastActive         *time.Time    `json:"last_active,omitempty"`
	LastWeeklyReset    *time.Time    `json:"last_weekly_reset,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
}

// New creates a member with a single zero bucket for their starting gang
func New(guildID, discordID, username, gangID, gangName string, categories []string) *Member {
	return &Member{
		GuildID:         guildID,
		DiscordID:       discordID,
		Username:        username,
		CurrentGangID:   gangID,
		CurrentGangName: gangName,
		GangPoints:      BucketList{NewPointBucket(gangID, gangName, categories)},
	}
}

// Bucket returns the bucket for gangID, or nil if the member has no history there
func (m *Member) Bucket(gangID string) *PointBucket {
	for i := range m.GangPoints {
		if m.GangPoints[i].GangID == gangID {
			return &m.GangPoints[i]
		}
	}
	return nil
}

// AddPoints applies a point delta to the member's bucket for gangID,
// creating the bucket if this is the member's first history in that gang.
// The delta lands on the given category in both the lifetime and weekly
// breakdowns; categories are then clamped at zero and the bucket totals
// recomputed as the sum of their breakdown, so the sum invariant holds
// exactly. If the bucket belongs to the member's current gang the root
// points mirror is refreshed too.
func (m *Member) AddPoints(gangID, gangName string, delta int64, category string, categories []string) *PointBucket {
	bucket := m.Bucket(gangID)
	if bucket == nil {
		m.GangPoints = append(m.GangPoints, NewPointBucket(gangID, gangName, categories))
		bucket = &m.GangPoints[len(m.GangPoints)-1]
	}

	// buckets deserialized from older rows may lack their breakdown maps
	if bucket.PointsBreakdown == nil {
		bucket.PointsBreakdown = points.NewBreakdown(categories)
	}
	if bucket.WeeklyPointsBreakdown == nil {
		bucket.WeeklyPointsBreakdown = points.NewBreakdown(categories)
	}

	bucket.PointsBreakdown[category] += delta
	bucket.WeeklyPointsBreakdown[category] += delta

	bucket.PointsBreakdown.Clamp()
	bucket.WeeklyPointsBreakdown.Clamp()

	bucket.Points = bucket.PointsBreakdown.Sum()
	bucket.WeeklyPoints = bucket.WeeklyPointsBreakdown.Sum()

	if gangID == m.CurrentGangID {
		m.Points = bucket.Points
		m.WeeklyPoints = bucket.WeeklyPoints
	}

	return bucket
}

// SwitchGang moves the member to a new gang. Points earned in the old gang
// stay in its bucket; returning to a gang restores the bucket it left
// behind. This is the only operation that changes which bucket backs the
// member's root points fields.
func (m *Member) SwitchGang(gangID, gangName string, categories []string) {
	if m.CurrentGangID == gangID {
		return
	}

	m.CurrentGangID = gangID
	m.CurrentGangName = gangName

	if bucket := m.Bucket(gangID); bucket != nil {
		m.Points = bucket.Points
		m.WeeklyPoints = bucket.WeeklyPoints
		return
	}

	m.GangPoints = append(m.GangPoints, NewPointBucket(gangID, gangName, categories))
	m.Points = 0
	m.WeeklyPoints = 0
}

// ResetWeekly zeroes the weekly counters in every bucket, preserving
// lifetime totals
func (m *Member) ResetWeekly(now time.Time) {
	for i := range m.GangPoints {
		b := &m.GangPoints[i]
		b.WeeklyPoints = 0
		b.WeeklyPointsBreakdown.Zero()
	}
	m.WeeklyPoints = 0
	m.WeeklyMessageCount = 0
	m.LastWeeklyReset = &now
}

// ResetAll zeroes every counter, lifetime totals included
func (m *Member) ResetAll(now time.Time) {
	for i := range m.GangPoints {
		b := &m.GangPoints[i]
		b.Points = 0
		b.WeeklyPoints = 0
		b.PointsBreakdown.Zero()
		b.WeeklyPointsBreakdown.Zero()
	}
	m.Points = 0
	m.WeeklyPoints = 0
	m.MessageCount = 0
	m.WeeklyMessageCount = 0
	m.LastWeeklyReset = &now
}

// PruneWindow drops window entries at or older than cutoff
func (m *Member) PruneWindow(cutoff time.Time) {
	kept := m.RecentMessages[:0]
	for _, msg := range m.RecentMessages {
		if msg.Timestamp.After(cutoff) {
			kept = append(kept, msg)
		}
	}
	m.RecentMessages = kept
}

// HasRecentDuplicate reports whether content already appears in the window
func (m *Member) HasRecentDuplicate(content string) bool {
	for _, msg := range m.RecentMessages {
		if msg.Content == content {
			return true
		}
	}
	return false
}

// RecordMessage appends content to the spam-detection window
func (m *Member) RecordMessage(content string, now time.Time) {
	m.RecentMessages = append(m.RecentMessages, RecentMessage{Content: content, Timestamp: now})
}

// OnCooldown reports whether the member earned activity points within the
// cooldown window ending at now
func (m *Member) OnCooldown(now time.Time, window time.Duration) bool {
	return m.LastActive != nil && now.Sub(*m.LastActive) < window
}
