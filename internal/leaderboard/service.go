package leaderboard

import (
	"context"

	"gangboard/internal/gang"
	"gangboard/internal/member"
)

// MemberStore covers the member queries leaderboards read
type MemberStore interface {
	TopByPoints(ctx context.Context, guildID, gangID string, weekly bool, limit, offset int) ([]*member.Member, error)
	GetByDiscordID(ctx context.Context, guildID, discordID string) (*member.Member, error)
	Rank(ctx context.Context, guildID string, score int64, weekly bool) (int, error)
}

// GangStore covers the gang queries leaderboards read
type GangStore interface {
	ListByTotalScore(ctx context.Context, guildID string, weekly bool) ([]*gang.Gang, error)
}

// Service answers leaderboard and rank queries. It only reads: member rows
// directly, gang rows through their cached member totals, which may lag the
// latest award by one aggregation pass.
type Service struct {
	members MemberStore
	gangs   GangStore
}

// NewService creates a new leaderboard service
func NewService(members MemberStore, gangs GangStore) *Service {
	return &Service{members: members, gangs: gangs}
}

// TopMembers returns the member board for a guild, optionally narrowed to
// one gang. Only members with a positive score appear.
func (s *Service) TopMembers(ctx context.Context, guildID, gangID string, weekly bool, page, perPage int) ([]*member.Member, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	return s.members.TopByPoints(ctx, guildID, gangID, weekly, perPage, (page-1)*perPage)
}

// TopGangs returns all gangs ordered by direct points plus cached member points
func (s *Service) TopGangs(ctx context.Context, guildID string, weekly bool) ([]*gang.Gang, error) {
	return s.gangs.ListByTotalScore(ctx, guildID, weekly)
}

// MemberRank returns a member's position on the guild board: the number of
// members strictly ahead, plus one
func (s *Service) MemberRank(ctx context.Context, guildID, discordID string, weekly bool) (*member.Member, int, error) {
	m, err := s.members.GetByDiscordID(ctx, guildID, discordID)
	if err != nil {
		return nil, 0, err
	}
	if m == nil {
		return nil, 0, member.ErrMemberNotFound
	}

	score := m.Points
	if weekly {
		score = m.WeeklyPoints
	}

	rank, err := s.members.Rank(ctx, guildID, score, weekly)
	if err != nil {
		return nil, 0, err
	}

	return m, rank, nil
}
