package tracker

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"gangboard/internal/activity"
	"gangboard/internal/config"
	"gangboard/internal/database"
	"gangboard/internal/gang"
	"gangboard/internal/member"
)

const (
	// minContentLength is the shortest trimmed message that can earn a point
	minContentLength = 5

	// spamWindow is both the duplicate-detection lookback and the
	// per-member award cooldown
	spamWindow = 5 * time.Minute
)

// fillerMessages never earn points, regardless of length
var fillerMessages = map[string]bool{
	"hi": true, "hey": true, "hello": true,
	"gm": true, "good morning": true,
	"gn": true, "good night": true,
	".": true, "..": true, "...": true,
}

// Message is one observed chat message in a gang channel
type Message struct {
	GuildID   string    `json:"guild_id"`
	ChannelID string    `json:"channel_id"`
	DiscordID string    `json:"discord_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MemberStore locks (creating if needed) a member row for a tracked message
type MemberStore interface {
	TrackAtomically(ctx context.Context, seed *member.Member, fn func(q database.Querier, m *member.Member) error) (*member.Member, error)
}

// GangStore covers the gang writes the tracker needs
type GangStore interface {
	Upsert(ctx context.Context, guildID, gangID, name, roleID, channelID string, categories []string) (*gang.Gang, error)
	BumpMessageStats(ctx context.Context, q database.Querier, guildID, gangID string, now time.Time) error
}

// LogStore appends audit entries
type LogStore interface {
	Create(ctx context.Context, q database.Querier, e *activity.LogEntry) error
}

// Aggregator recomputes a gang's cached member totals
type Aggregator interface {
	RefreshMemberTotals(ctx context.Context, guildID, gangID string) error
}

// Service is the activity rate limiter: it scores inbound chat messages and
// awards one activity point per member per cooldown window, with duplicate
// and filler suppression.
type Service struct {
	roster           *config.Config
	members          MemberStore
	gangs            GangStore
	logs             LogStore
	agg              Aggregator
	memberCategories []string
	activityCategory string
}

// NewService creates a new tracker service
func NewService(roster *config.Config, members MemberStore, gangs GangStore, logs LogStore, agg Aggregator, memberCategories []string, activityCategory string) *Service {
	return &Service{
		roster:           roster,
		members:          members,
		gangs:            gangs,
		logs:             logs,
		agg:              agg,
		memberCategories: memberCategories,
		activityCategory: activityCategory,
	}
}

// TrackMessage evaluates one message. Messages from channels not bound to a
// gang are dropped silently; that is normal flow, not an error. Returns the
// member (nil when dropped) and whether a point was awarded.
//
// The whole member sequence, window prune, duplicate check, cooldown check,
// counters and award, runs inside one transaction under the member's row
// lock, so a burst of near-simultaneous messages from one author can never
// double-award.
func (s *Service) TrackMessage(ctx context.Context, msg *Message) (*member.Member, bool, error) {
	gangCfg := s.roster.GangByChannel(msg.ChannelID)
	if gangCfg == nil {
		return nil, false, nil
	}

	if _, err := s.gangs.Upsert(ctx, msg.GuildID, gangCfg.GangID, gangCfg.Name, gangCfg.RoleID, gangCfg.ChannelID, s.roster.GangCategories); err != nil {
		return nil, false, err
	}

	now := msg.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	seed := member.New(msg.GuildID, msg.DiscordID, msg.Username, gangCfg.GangID, gangCfg.Name, s.memberCategories)

	awarded := false
	switchedFrom := ""
	m, err := s.members.TrackAtomically(ctx, seed, func(q database.Querier, m *member.Member) error {
		if m.CurrentGangID != gangCfg.GangID {
			switchedFrom = m.CurrentGangID
			m.SwitchGang(gangCfg.GangID, gangCfg.Name, s.memberCategories)
		}

		content := strings.TrimSpace(msg.Content)
		if utf8.RuneCountInString(content) < minContentLength || fillerMessages[strings.ToLower(content)] {
			return nil
		}

		m.PruneWindow(now.Add(-spamWindow))

		// Duplicates and cooldown suppress the award but still land in
		// the window, so repeating the message keeps it suppressed.
		if m.HasRecentDuplicate(content) {
			m.RecordMessage(content, now)
			return nil
		}
		if m.OnCooldown(now, spamWindow) {
			m.RecordMessage(content, now)
			return nil
		}

		m.RecordMessage(content, now)
		m.LastActive = &now
		m.MessageCount++
		m.WeeklyMessageCount++
		m.AddPoints(gangCfg.GangID, gangCfg.Name, 1, s.activityCategory, s.memberCategories)

		if err := s.gangs.BumpMessageStats(ctx, q, msg.GuildID, gangCfg.GangID, now); err != nil {
			return err
		}

		reason := "activity"
		if err := s.logs.Create(ctx, q, &activity.LogEntry{
			GuildID:    msg.GuildID,
			TargetType: activity.TargetMember,
			TargetID:   m.DiscordID,
			TargetName: m.Username,
			Action:     activity.ActionAward,
			Points:     1,
			Source:     s.activityCategory,
			Reason:     &reason,
		}); err != nil {
			return err
		}

		awarded = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	// A gang switch moves the member between aggregates even when the
	// message itself earned nothing, so both sides refresh regardless of
	// the award outcome.
	if awarded || switchedFrom != "" {
		if err := s.agg.RefreshMemberTotals(ctx, msg.GuildID, gangCfg.GangID); err != nil {
			log.Printf("failed to refresh gang %s totals after activity award: %v", gangCfg.GangID, err)
		}
	}
	if switchedFrom != "" {
		if err := s.agg.RefreshMemberTotals(ctx, msg.GuildID, switchedFrom); err != nil {
			log.Printf("failed to refresh gang %s totals after gang switch: %v", switchedFrom, err)
		}
	}

	return m, awarded, nil
}
