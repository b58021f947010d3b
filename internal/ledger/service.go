package ledger

import (
	"context"
	"errors"
	"log"

	"gangboard/internal/activity"
	"gangboard/internal/database"
	"gangboard/internal/gang"
	"gangboard/internal/member"
)

// Common errors
var (
	ErrInvalidDelta = errors.New("points delta must be a non-zero integer")
)

// FallbackCategory receives deltas whose category is not in the configured set
const FallbackCategory = "other"

// MemberStore applies a serialized mutation to one member
type MemberStore interface {
	Atomically(ctx context.Context, guildID, discordID string, fn func(q database.Querier, m *member.Member) error) (*member.Member, error)
}

// GangStore applies a serialized mutation to one gang
type GangStore interface {
	Atomically(ctx context.Context, guildID, gangID string, fn func(q database.Querier, g *gang.Gang) error) (*gang.Gang, error)
}

// LogStore appends audit entries
type LogStore interface {
	Create(ctx context.Context, q database.Querier, e *activity.LogEntry) error
}

// Aggregator recomputes a gang's cached member totals
type Aggregator interface {
	RefreshMemberTotals(ctx context.Context, guildID, gangID string) error
}

// Service is the points ledger: it applies award/deduct deltas to member
// buckets and gang pools, keeps the breakdown-sum invariant, and writes an
// audit entry for every mutation.
type Service struct {
	members MemberStore
	gangs   GangStore
	logs    LogStore
	agg     Aggregator

	memberCategories []string
	gangCategories   []string
	memberCatSet     map[string]bool
	gangCatSet       map[string]bool
}

// NewService creates a new ledger service. The category sets are
// configuration; anything outside them lands on the "other" bucket.
func NewService(members MemberStore, gangs GangStore, logs LogStore, agg Aggregator, memberCategories, gangCategories []string) *Service {
	return &Service{
		members:          members,
		gangs:            gangs,
		logs:             logs,
		agg:              agg,
		memberCategories: memberCategories,
		gangCategories:   gangCategories,
		memberCatSet:     toSet(memberCategories),
		gangCatSet:       toSet(gangCategories),
	}
}

// AwardMemberPoints applies a point delta to a member's current gang bucket
// and logs it. The member must already exist; awarding never implicitly
// registers anyone. The audit entry commits in the same transaction as the
// member row, then the gang's cached totals are refreshed best-effort.
func (s *Service) AwardMemberPoints(ctx context.Context, req *MemberAwardRequest) (*member.Member, error) {
	if req.Points == 0 {
		return nil, ErrInvalidDelta
	}
	category := s.normalize(req.Source, s.memberCatSet)

	m, err := s.members.Atomically(ctx, req.GuildID, req.DiscordID, func(q database.Querier, m *member.Member) error {
		m.AddPoints(m.CurrentGangID, m.CurrentGangName, req.Points, category, s.memberCategories)

		return s.logs.Create(ctx, q, &activity.LogEntry{
			GuildID:           req.GuildID,
			TargetType:        activity.TargetMember,
			TargetID:          m.DiscordID,
			TargetName:        m.Username,
			Action:            actionFor(req.Points),
			Points:            req.Points,
			Source:            category,
			AwardedBy:         req.AwardedBy,
			AwardedByUsername: req.AwardedByUsername,
			Reason:            req.Reason,
		})
	})
	if err != nil {
		return nil, err
	}

	// Aggregation is deliberately outside the transaction: leaderboard
	// reads may lag one award behind, they never block on it.
	if m.CurrentGangID != "" {
		if err := s.agg.RefreshMemberTotals(ctx, req.GuildID, m.CurrentGangID); err != nil {
			log.Printf("failed to refresh gang %s totals after award: %v", m.CurrentGangID, err)
		}
	}

	return m, nil
}

// AwardGangPoints applies a point delta directly to a gang's own pool.
// Member points are untouched; gang and member scores only meet in the
// combined leaderboard total.
func (s *Service) AwardGangPoints(ctx context.Context, req *GangAwardRequest) (*gang.Gang, error) {
	if req.Points == 0 {
		return nil, ErrInvalidDelta
	}
	category := s.normalize(req.Source, s.gangCatSet)

	return s.gangs.Atomically(ctx, req.GuildID, req.GangID, func(q database.Querier, g *gang.Gang) error {
		g.ApplyAward(req.Points, category, s.gangCategories)

		return s.logs.Create(ctx, q, &activity.LogEntry{
			GuildID:           req.GuildID,
			TargetType:        activity.TargetGang,
			TargetID:          g.GangID,
			TargetName:        g.Name,
			Action:            actionFor(req.Points),
			Points:            req.Points,
			Source:            category,
			AwardedBy:         req.AwardedBy,
			AwardedByUsername: req.AwardedByUsername,
			Reason:            req.Reason,
		})
	})
}

func (s *Service) normalize(category string, valid map[string]bool) string {
	if valid[category] {
		return category
	}
	return FallbackCategory
}

func actionFor(delta int64) string {
	if delta >= 0 {
		return activity.ActionAward
	}
	return activity.ActionDeduct
}

func toSet(categories []string) map[string]bool {
	set := make(map[string]bool, len(categories))
	for _, c := range categories {
		set[c] = true
	}
	return set
}
