package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gangboard/internal/activity"
	"gangboard/internal/config"
	"gangboard/internal/database"
	"gangboard/internal/gang"
	"gangboard/internal/member"
)

var trackerCategories = []string{"twitter", "games", "artAndMemes", "activity", "gangActivity", "other"}

type stubMemberStore struct {
	members map[string]*member.Member
}

func (s *stubMemberStore) TrackAtomically(ctx context.Context, seed *member.Member, fn func(q database.Querier, m *member.Member) error) (*member.Member, error) {
	m, ok := s.members[seed.DiscordID]
	if !ok {
		m = seed
		s.members[seed.DiscordID] = m
	}
	if err := fn(nil, m); err != nil {
		return nil, err
	}
	return m, nil
}

type stubGangStore struct {
	upserts int
	bumps   int
}

func (s *stubGangStore) Upsert(ctx context.Context, guildID, gangID, name, roleID, channelID string, categories []string) (*gang.Gang, error) {
	s.upserts++
	return &gang.Gang{GuildID: guildID, GangID: gangID, Name: name}, nil
}

func (s *stubGangStore) BumpMessageStats(ctx context.Context, q database.Querier, guildID, gangID string, now time.Time) error {
	s.bumps++
	return nil
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
	roster := &config.Config{
		GuildID: "guild-1",
		Gangs: []config.GangConfig{
			{Name: "The Reds", GangID: "reds", RoleID: "role-r", ChannelID: "chan-r"},
			{Name: "The Blues", GangID: "blues", RoleID: "role-b", ChannelID: "chan-b"},
		},
		MemberCategories: trackerCategories,
		GangCategories:   []string{"events", "competitions", "other"},
		ActivityCategory: "gangActivity",
	}
	members := &stubMemberStore{members: map[string]*member.Member{}}
	gangs := &stubGangStore{}
	logs := &stubLogStore{}
	agg := &stubAggregator{}
	svc := NewService(roster, members, gangs, logs, agg, trackerCategories, "gangActivity")
	return svc, members, gangs, logs, agg
}

func msgAt(channelID, discordID, content string, ts time.Time) *Message {
	return &Message{
		GuildID:   "guild-1",
		ChannelID: channelID,
		DiscordID: discordID,
		Username:  "alice",
		Content:   content,
		Timestamp: ts,
	}
}

func TestTrackMessageAwardsPoint(t *testing.T) {
	svc, members, gangs, logs, agg := newTestService()
	now := time.Now().UTC()

	m, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "good game everyone", now))

	require.NoError(t, err)
	assert.True(t, awarded)
	require.NotNil(t, m)
	assert.Equal(t, int64(1), m.Points)
	assert.Equal(t, int64(1), m.Bucket("reds").PointsBreakdown["gangActivity"])
	assert.Equal(t, int64(1), m.MessageCount)
	assert.Equal(t, int64(1), m.WeeklyMessageCount)
	require.NotNil(t, m.LastActive)
	assert.Equal(t, now, *m.LastActive)

	assert.Len(t, members.members, 1)
	assert.Equal(t, 1, gangs.upserts)
	assert.Equal(t, 1, gangs.bumps)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, int64(1), logs.entries[0].Points)
	assert.Equal(t, "gangActivity", logs.entries[0].Source)
	assert.Equal(t, []string{"reds"}, agg.refreshed)
}

func TestTrackMessageUnknownChannelIsDroppedSilently(t *testing.T) {
	svc, members, gangs, logs, _ := newTestService()

	m, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-x", "discord-1", "good game everyone", time.Now().UTC()))

	require.NoError(t, err)
	assert.False(t, awarded)
	assert.Nil(t, m)
	assert.Empty(t, members.members)
	assert.Equal(t, 0, gangs.upserts)
	assert.Empty(t, logs.entries)
}

func TestTrackMessageShortContentEarnsNothing(t *testing.T) {
	svc, _, gangs, logs, _ := newTestService()

	// four runes, one short of the minimum
	m, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "heya", time.Now().UTC()))

	require.NoError(t, err)
	assert.False(t, awarded)
	require.NotNil(t, m)
	assert.Equal(t, int64(0), m.Points)
	assert.Empty(t, m.RecentMessages)
	assert.Equal(t, 0, gangs.bumps)
	assert.Empty(t, logs.entries)
}

func TestTrackMessageFiveRunesIsEnough(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "howdy", time.Now().UTC()))

	require.NoError(t, err)
	assert.True(t, awarded)
}

func TestTrackMessageTrimsWhitespaceBeforeLengthCheck(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "   hiya    ", time.Now().UTC()))

	require.NoError(t, err)
	assert.False(t, awarded)
}

func TestTrackMessageFillerEarnsNothing(t *testing.T) {
	svc, _, _, logs, _ := newTestService()

	// long enough, but a known filler greeting
	m, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "Good Morning", time.Now().UTC()))

	require.NoError(t, err)
	assert.False(t, awarded)
	assert.Equal(t, int64(0), m.Points)
	assert.Empty(t, logs.entries)
}

func TestTrackMessageDuplicateWithinWindowSuppressed(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	now := time.Now().UTC()

	_, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "what a great match", now))
	require.NoError(t, err)
	require.True(t, awarded)

	m, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "what a great match", now.Add(2*time.Minute)))

	require.NoError(t, err)
	assert.False(t, awarded)
	assert.Equal(t, int64(1), m.Points)
	// the rejected repeat still lands in the window
	assert.Len(t, m.RecentMessages, 2)
}

func TestTrackMessageCooldownAllowsOnePointPerWindow(t *testing.T) {
	svc, _, _, logs, _ := newTestService()
	now := time.Now().UTC()

	_, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "first real message", now))
	require.NoError(t, err)
	require.True(t, awarded)

	m, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "second real message", now.Add(2*time.Minute)))
	require.NoError(t, err)
	assert.False(t, awarded)
	assert.Equal(t, int64(1), m.Points)
	assert.Len(t, logs.entries, 1)

	m, awarded, err = svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "third real message", now.Add(6*time.Minute)))
	require.NoError(t, err)
	assert.True(t, awarded)
	assert.Equal(t, int64(2), m.Points)
}

func TestTrackMessageOldWindowEntriesArePruned(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	now := time.Now().UTC()

	_, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "what a great match", now))
	require.NoError(t, err)
	require.True(t, awarded)

	// same content, but far outside the lookback window
	m, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "what a great match", now.Add(20*time.Minute)))

	require.NoError(t, err)
	assert.True(t, awarded)
	assert.Equal(t, int64(2), m.Points)
	assert.Len(t, m.RecentMessages, 1)
}

func TestTrackMessageSwitchesGangOnForeignChannel(t *testing.T) {
	svc, _, _, _, agg := newTestService()
	now := time.Now().UTC()

	_, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "first real message", now))
	require.NoError(t, err)
	require.True(t, awarded)

	m, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-b", "discord-1", "hello from the blues", now.Add(10*time.Minute)))

	require.NoError(t, err)
	assert.True(t, awarded)
	assert.Equal(t, "blues", m.CurrentGangID)
	assert.Equal(t, int64(1), m.Points)
	assert.Equal(t, int64(1), m.Bucket("reds").Points)
	// both sides of the switch get their caches refreshed
	assert.Equal(t, []string{"reds", "blues", "reds"}, agg.refreshed)
}

func TestTrackMessageSuppressedSwitchStillRefreshesBothGangs(t *testing.T) {
	svc, _, _, logs, agg := newTestService()
	now := time.Now().UTC()

	_, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-r", "discord-1", "first real message", now))
	require.NoError(t, err)
	require.True(t, awarded)

	// a filler greeting in another gang's channel earns nothing, but the
	// member still moves gangs, so both aggregates must be recomputed
	m, awarded, err := svc.TrackMessage(context.Background(), msgAt("chan-b", "discord-1", "hey", now.Add(time.Minute)))

	require.NoError(t, err)
	assert.False(t, awarded)
	assert.Equal(t, "blues", m.CurrentGangID)
	assert.Len(t, logs.entries, 1)
	assert.Equal(t, []string{"reds", "blues", "reds"}, agg.refreshed)
}
