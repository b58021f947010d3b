package gang

// GangResponse represents a gang in API responses
type GangResponse struct {
	GangID             string           `json:"gang_id"`
	Name               string           `json:"name"`
	Points             int64            `json:"points"`
	WeeklyPoints       int64            `json:"weekly_points"`
	TotalMemberPoints  int64            `json:"total_member_points"`
	WeeklyMemberPoints int64            `json:"weekly_member_points"`
	TotalScore         int64            `json:"total_score"`
	WeeklyTotalScore   int64            `json:"weekly_total_score"`
	MemberCount        int64            `json:"member_count"`
	MessageCount       int64            `json:"message_count"`
	PointsBreakdown    map[string]int64 `json:"points_breakdown,omitempty"`
}

// ToResponse converts a Gang model to a GangResponse DTO
func (g *Gang) ToResponse() *GangResponse {
	return &GangResponse{
		GangID:             g.GangID,
		Name:               g.Name,
		Points:             g.Points,
		WeeklyPoints:       g.WeeklyPoints,
		TotalMemberPoints:  g.TotalMemberPoints,
		WeeklyMemberPoints: g.WeeklyMemberPoints,
		TotalScore:         g.TotalScore(),
		WeeklyTotalScore:   g.WeeklyTotalScore(),
		MemberCount:        g.MemberCount,
		MessageCount:       g.MessageCount,
		PointsBreakdown:    g.PointsBreakdown,
	}
}
