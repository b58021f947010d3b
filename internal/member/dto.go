package member

// RegisterMemberRequest represents the request to register or update a member.
// GangID and GangName arrive pre-resolved by the membership-sync collaborator.
type RegisterMemberRequest struct {
	GuildID   string `json:"guild_id" validate:"required"`
	DiscordID string `json:"discord_id" validate:"required"`
	Username  string `json:"username" validate:"required"`
	GangID    string `json:"gang_id" validate:"required"`
	GangName  string `json:"gang_name" validate:"required"`
}

// SwitchGangRequest represents an externally-resolved gang switch trigger
type SwitchGangRequest struct {
	GuildID  string `json:"guild_id" validate:"required"`
	GangID   string `json:"gang_id" validate:"required"`
	GangName string `json:"gang_name" validate:"required"`
}

// BucketResponse represents one per-gang point bucket
type BucketResponse struct {
	GangID                string           `json:"gang_id"`
	GangName              string           `json:"gang_name"`
	Points                int64            `json:"points"`
	WeeklyPoints          int64            `json:"weekly_points"`
	PointsBreakdown       map[string]int64 `json:"points_breakdown"`
	WeeklyPointsBreakdown map[string]int64 `json:"weekly_points_breakdown"`
}

// MemberResponse represents a member in API responses
type MemberResponse struct {
	DiscordID          string           `json:"discord_id"`
	Username           string           `json:"username"`
	GangID             string           `json:"gang_id"`
	GangName           string           `json:"gang_name"`
	Points             int64            `json:"points"`
	WeeklyPoints       int64            `json:"weekly_points"`
	MessageCount       int64            `json:"message_count"`
	WeeklyMessageCount int64            `json:"weekly_message_count"`
	LastActive         string           `json:"last_active,omitempty"`
	GangHistory        []BucketResponse `json:"gang_history,omitempty"`
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	resp := &MemberResponse{
		DiscordID:          m.DiscordID,
		Username:           m.Username,
		GangID:             m.CurrentGangID,
		GangName:           m.CurrentGangName,
		Points:             m.Points,
		WeeklyPoints:       m.WeeklyPoints,
		MessageCount:       m.MessageCount,
		WeeklyMessageCount: m.WeeklyMessageCount,
	}

	if m.LastActive != nil {
		resp.LastActive = m.LastActive.Format("2006-01-02T15:04:05Z")
	}

	for _, b := range m.GangPoints {
		resp.GangHistory = append(resp.GangHistory, BucketResponse{
			GangID:                b.GangID,
			GangName:              b.GangName,
			Points:                b.Points,
			WeeklyPoints:          b.WeeklyPoints,
			PointsBreakdown:       b.PointsBreakdown,
			WeeklyPointsBreakdown: b.WeeklyPointsBreakdown,
		})
	}

	return resp
}
