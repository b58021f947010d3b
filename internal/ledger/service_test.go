package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gangboard/internal/activity"
	"gangboard/internal/database"
	"gangboard/internal/gang"
	"gangboard/internal/member"
)

var (
	memberCategories = []string{"twitter", "games", "artAndMemes", "activity", "gangActivity", "other"}
	gangCategories   = []string{"events", "competitions", "other"}
)

type stubMemberStore struct {
	members map[string]*member.Member
	calls   int
}

func (s *stubMemberStore) Atomically(ctx context.Context, guildID, discordID string, fn func(q database.Querier, m *member.Member) error) (*member.Member, error) {
	s.calls++
	m, ok := s.members[discordID]
	if !ok {
		return nil, member.ErrMemberNotFound
	}
	if err := fn(nil, m); err != nil {
		return nil, err
	}
	return m, nil
}

type stubGangStore struct {
	gangs map[string]*gang.Gang
}

func (s *stubGangStore) Atomically(ctx context.Context, guildID, gangID string, fn func(q database.Querier, g *gang.Gang) error) (*gang.Gang, error) {
	g, ok := s.gangs[gangID]
	if !ok {
		return nil, gang.ErrGangNotFound
	}
	if err := fn(nil, g); err != nil {
		return nil, err
	}
	return g, nil
}

type stubLogStore struct {
	entries []*activity.LogEntry
}

func (s *stubLogStore) Create(ctx context.Context, q database.Querier, e *activity.LogEntry) error {
	s.entries = append(s.entries, e)
	return nil
}

type stubAggregator struct {
	refreshed []string
}

func (s *stubAggregator) RefreshMemberTotals(ctx context.Context, guildID, gangID string) error {
	s.refreshed = append(s.refreshed, gangID)
	return nil
}

func newTestService() (*Service, *stubMemberStore, *stubGangStore, *stubLogStore, *stubAggregator) {
	members := &stubMemberStore{members: map[string]*member.Member{
		"discord-1": member.New("guild-1", "discord-1", "alice", "reds", "The Reds", memberCategories),
	}}
	gangs := &stubGangStore{gangs: map[string]*gang.Gang{
		"reds": {GuildID: "guild-1", GangID: "reds", Name: "The Reds"},
	}}
	logs := &stubLogStore{}
	agg := &stubAggregator{}
	return NewService(members, gangs, logs, agg, memberCategories, gangCategories), members, gangs, logs, agg
}

func TestAwardMemberPoints(t *testing.T) {
	svc, members, _, logs, agg := newTestService()

	m, err := svc.AwardMemberPoints(context.Background(), &MemberAwardRequest{
		GuildID:   "guild-1",
		DiscordID: "discord-1",
		Points:    10,
		Source:    "games",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10), m.Points)
	assert.Equal(t, int64(10), m.Bucket("reds").PointsBreakdown["games"])
	assert.Equal(t, 1, members.calls)

	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, activity.TargetMember, entry.TargetType)
	assert.Equal(t, "discord-1", entry.TargetID)
	assert.Equal(t, "alice", entry.TargetName)
	assert.Equal(t, activity.ActionAward, entry.Action)
	assert.Equal(t, int64(10), entry.Points)
	assert.Equal(t, "games", entry.Source)

	assert.Equal(t, []string{"reds"}, agg.refreshed)
}

func TestAwardMemberPointsDeduction(t *testing.T) {
	svc, _, _, logs, _ := newTestService()

	_, err := svc.AwardMemberPoints(context.Background(), &MemberAwardRequest{
		GuildID:   "guild-1",
		DiscordID: "discord-1",
		Points:    -3,
		Source:    "games",
	})

	require.NoError(t, err)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, activity.ActionDeduct, logs.entries[0].Action)
	assert.Equal(t, int64(-3), logs.entries[0].Points)
}

func TestAwardMemberPointsZeroDelta(t *testing.T) {
	svc, members, _, logs, _ := newTestService()

	_, err := svc.AwardMemberPoints(context.Background(), &MemberAwardRequest{
		GuildID:   "guild-1",
		DiscordID: "discord-1",
		Points:    0,
		Source:    "games",
	})

	assert.ErrorIs(t, err, ErrInvalidDelta)
	assert.Equal(t, 0, members.calls)
	assert.Empty(t, logs.entries)
}

func TestAwardMemberPointsUnknownMember(t *testing.T) {
	svc, _, _, logs, agg := newTestService()

	_, err := svc.AwardMemberPoints(context.Background(), &MemberAwardRequest{
		GuildID:   "guild-1",
		DiscordID: "nobody",
		Points:    5,
		Source:    "games",
	})

	assert.ErrorIs(t, err, member.ErrMemberNotFound)
	assert.Empty(t, logs.entries)
	assert.Empty(t, agg.refreshed)
}

func TestAwardMemberPointsUnknownCategoryFallsBackToOther(t *testing.T) {
	svc, members, _, logs, _ := newTestService()

	_, err := svc.AwardMemberPoints(context.Background(), &MemberAwardRequest{
		GuildID:   "guild-1",
		DiscordID: "discord-1",
		Points:    5,
		Source:    "raffle",
	})

	require.NoError(t, err)
	m := members.members["discord-1"]
	assert.Equal(t, int64(5), m.Bucket("reds").PointsBreakdown[FallbackCategory])
	assert.Equal(t, FallbackCategory, logs.entries[0].Source)
}

func TestAwardGangPoints(t *testing.T) {
	svc, _, gangs, logs, _ := newTestService()

	g, err := svc.AwardGangPoints(context.Background(), &GangAwardRequest{
		GuildID: "guild-1",
		GangID:  "reds",
		Points:  20,
		Source:  "events",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(20), g.Points)
	assert.Equal(t, int64(20), gangs.gangs["reds"].PointsBreakdown["events"])

	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, activity.TargetGang, entry.TargetType)
	assert.Equal(t, "reds", entry.TargetID)
	assert.Equal(t, "The Reds", entry.TargetName)
}

func TestAwardGangPointsUnknownGang(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.AwardGangPoints(context.Background(), &GangAwardRequest{
		GuildID: "guild-1",
		GangID:  "ghosts",
		Points:  5,
		Source:  "events",
	})

	assert.ErrorIs(t, err, gang.ErrGangNotFound)
}

func TestAwardGangPointsZeroDelta(t *testing.T) {
	svc, _, _, logs, _ := newTestService()

	_, err := svc.AwardGangPoints(context.Background(), &GangAwardRequest{
		GuildID: "guild-1",
		GangID:  "reds",
		Points:  0,
	})

	assert.ErrorIs(t, err, ErrInvalidDelta)
	assert.Empty(t, logs.entries)
}
