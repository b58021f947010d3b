package gang

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testGangCategories = []string{"events", "competitions", "other"}

func TestTotalScoreCombinesDirectAndMemberPoints(t *testing.T) {
	g := &Gang{Points: 5, TotalMemberPoints: 10}
	assert.Equal(t, int64(15), g.TotalScore())

	g = &Gang{WeeklyPoints: 3, WeeklyMemberPoints: 4}
	assert.Equal(t, int64(7), g.WeeklyTotalScore())
}

func TestTotalScoreOrdering(t *testing.T) {
	gangs := []*Gang{
		{GangID: "a", Points: 5, TotalMemberPoints: 10},
		{GangID: "b", Points: 0, TotalMemberPoints: 20},
		{GangID: "c", Points: 100, TotalMemberPoints: 0},
	}

	sort.Slice(gangs, func(i, j int) bool {
		return gangs[i].TotalScore() > gangs[j].TotalScore()
	})

	assert.Equal(t, []int64{100, 20, 15}, []int64{
		gangs[0].TotalScore(), gangs[1].TotalScore(), gangs[2].TotalScore(),
	})
	assert.Equal(t, "c", gangs[0].GangID)
}

func TestApplyAwardRecomputesTotals(t *testing.T) {
	g := &Gang{}

	g.ApplyAward(10, "events", testGangCategories)
	g.ApplyAward(5, "competitions", testGangCategories)

	assert.Equal(t, int64(10), g.PointsBreakdown["events"])
	assert.Equal(t, int64(5), g.PointsBreakdown["competitions"])
	assert.Equal(t, int64(15), g.Points)
	assert.Equal(t, int64(15), g.WeeklyPoints)
}

func TestApplyAwardClampsCategoryAtZero(t *testing.T) {
	g := &Gang{}

	g.ApplyAward(10, "events", testGangCategories)
	g.ApplyAward(-25, "events", testGangCategories)

	assert.Equal(t, int64(0), g.PointsBreakdown["events"])
	assert.Equal(t, int64(0), g.Points)
}

func TestApplyAwardInitializesNilBreakdowns(t *testing.T) {
	g := &Gang{}

	g.ApplyAward(1, "other", testGangCategories)

	assert.Equal(t, g.Points, g.PointsBreakdown.Sum())
	assert.Equal(t, g.WeeklyPoints, g.WeeklyPointsBreakdown.Sum())
}
