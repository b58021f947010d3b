package rollover

import (
	"context"
	"errors"
	"time"

	"gangboard/internal/database"
	"gangboard/internal/member"
	"gangboard/internal/points"
)

// MemberStore covers the member operations a reset needs
type MemberStore interface {
	ListByGuild(ctx context.Context, guildID string) ([]*member.Member, error)
	Atomically(ctx context.Context, guildID, discordID string, fn func(q database.Querier, m *member.Member) error) (*member.Member, error)
}

// GangStore covers the gang-wide reset statements
type GangStore interface {
	ResetWeekly(ctx context.Context, guildID string, zero points.Breakdown, now time.Time) (int64, error)
	ResetAll(ctx context.Context, guildID string, zero points.Breakdown, now time.Time) (int64, error)
}

// Summary reports what a reset touched
type Summary struct {
	MembersReset int       `json:"members_reset"`
	GangsReset   int64     `json:"gangs_reset"`
	Timestamp    time.Time `json:"timestamp"`
}

// Service zeroes weekly counters across a guild. Each member is zeroed
// under its own row lock, so an award racing the reset lands entirely
// before or entirely after that member's zeroing, never half-applied.
// Running a reset twice is harmless: zeroing zeroes is a no-op.
type Service struct {
	members        MemberStore
	gangs          GangStore
	gangCategories []string
}

// NewService creates a new rollover service
func NewService(members MemberStore, gangs GangStore, gangCategories []string) *Service {
	return &Service{members: members, gangs: gangs, gangCategories: gangCategories}
}

// ResetWeekly zeroes weekly counters for every member and gang in the
// guild, preserving lifetime totals
func (s *Service) ResetWeekly(ctx context.Context, guildID string) (*Summary, error) {
	now := time.Now().UTC()

	reset, err := s.resetMembers(ctx, guildID, func(m *member.Member) {
		m.ResetWeekly(now)
	})
	if err != nil {
		return nil, err
	}

	gangsReset, err := s.gangs.ResetWeekly(ctx, guildID, points.NewBreakdown(s.gangCategories), now)
	if err != nil {
		return nil, err
	}

	return &Summary{MembersReset: reset, GangsReset: gangsReset, Timestamp: now}, nil
}

// ResetAll zeroes weekly and lifetime counters alike. A full wipe, used
// administratively, never on a schedule.
func (s *Service) ResetAll(ctx context.Context, guildID string) (*Summary, error) {
	now := time.Now().UTC()

	reset, err := s.resetMembers(ctx, guildID, func(m *member.Member) {
		m.ResetAll(now)
	})
	if err != nil {
		return nil, err
	}

	gangsReset, err := s.gangs.ResetAll(ctx, guildID, points.NewBreakdown(s.gangCategories), now)
	if err != nil {
		return nil, err
	}

	return &Summary{MembersReset: reset, GangsReset: gangsReset, Timestamp: now}, nil
}

func (s *Service) resetMembers(ctx context.Context, guildID string, zero func(m *member.Member)) (int, error) {
	members, err := s.members.ListByGuild(ctx, guildID)
	if err != nil {
		return 0, err
	}

	reset := 0
	for _, m := range members {
		_, err := s.members.Atomically(ctx, guildID, m.DiscordID, func(q database.Querier, locked *member.Member) error {
			zero(locked)
			return nil
		})
		if err != nil {
			// A member deleted between the listing and the lock is not
			// part of the guild anymore; skip it.
			if errors.Is(err, member.ErrMemberNotFound) {
				continue
			}
			return 0, err
		}
		reset++
	}

	return reset, nil
}
