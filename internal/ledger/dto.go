package ledger

// MemberAwardRequest is an inbound award for a single member
type MemberAwardRequest struct {
	GuildID           string  `json:"guild_id"`
	DiscordID         string  `json:"discord_id" validate:"required"`
	Points            int64   `json:"points" validate:"required"`
	Source            string  `json:"source"`
	AwardedBy         *string `json:"awarded_by,omitempty"`
	AwardedByUsername *string `json:"awarded_by_username,omitempty"`
	Reason            *string `json:"reason,omitempty"`
}

// GangAwardRequest is an inbound award for a gang's direct point pool
type GangAwardRequest struct {
	GuildID           string  `json:"guild_id"`
	GangID            string  `json:"gang_id" validate:"required"`
	Points            int64   `json:"points" validate:"required"`
	Source            string  `json:"source"`
	AwardedBy         *string `json:"awarded_by,omitempty"`
	AwardedByUsername *string `json:"awarded_by_username,omitempty"`
	Reason            *string `json:"reason,omitempty"`
}
