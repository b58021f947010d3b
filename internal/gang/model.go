package gang

import (
	"time"

	"gangboard/internal/points"
)

// Gang represents a named cohort members belong to. It carries its own
// direct point pool, independent of its members' points, plus cached
// aggregates over member records for cheap leaderboard reads.
type Gang struct {
	ID        int64  `json:"id"`
	GuildID   string `json:"guild_id"`
	GangID    string `json:"gang_id"`
	Name      string `json:"name"`
	RoleID    string `json:"role_id"`
	ChannelID string `json:"channel_id"`

	// Points awarded directly to the gang, not via members
	Points                int64            `json:"points"`
	WeeklyPoints          int64            `json:"weekly_points"`
	PointsBreakdown       points.Breakdown `json:"points_breakdown"`
	WeeklyPointsBreakdown points.Breakdown `json:"weekly_points_breakdown"`

	// Cached aggregates over current members; recomputed by
	// RefreshMemberTotals, may lag one award behind
	TotalMemberPoints  int64 `json:"total_member_points"`
	WeeklyMemberPoints int64 `json:"weekly_member_points"`
	MemberCount        int64 `json:"member_count"`

	MessageCount       int64      `json:"message_count"`
	WeeklyMessageCount int64      `json:"weekly_message_count"`
	LastActive         *time.Time `json:"last_active,omitempty"`
	LastWeeklyReset    *time.Time `json:"last_weekly_reset,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// TotalScore is the gang's leaderboard score: direct points plus the cached
// member point total
func (g *Gang) TotalScore() int64 {
	return g.Points + g.TotalMemberPoints
}

// WeeklyTotalScore is the weekly counterpart of TotalScore
func (g *Gang) WeeklyTotalScore() int64 {
	return g.WeeklyPoints + g.WeeklyMemberPoints
}

// ApplyAward adds a point delta to the gang's direct pool under the same
// discipline as member buckets: the delta lands on one category, categories
// are clamped at zero, and the totals are recomputed from the breakdown.
func (g *Gang) ApplyAward(delta int64, category string, categories []string) {
	if g.PointsBreakdown == nil {
		g.PointsBreakdown = points.NewBreakdown(categories)
	}
	if g.WeeklyPointsBreakdown == nil {
		g.WeeklyPointsBreakdown = points.NewBreakdown(categories)
	}

	g.PointsBreakdown[category] += delta
	g.WeeklyPointsBreakdown[category] += delta

	g.PointsBreakdown.Clamp()
	g.WeeklyPointsBreakdown.Clamp()

	g.Points = g.PointsBreakdown.Sum()
	g.WeeklyPoints = g.WeeklyPointsBreakdown.Sum()
}
