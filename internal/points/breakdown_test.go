package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBreakdownStartsAtZero(t *testing.T) {
	b := NewBreakdown([]string{"games", "activity", "other"})

	require.Len(t, b, 3)
	assert.Equal(t, int64(0), b["games"])
	assert.Equal(t, int64(0), b.Sum())
}

func TestSum(t *testing.T) {
	b := Breakdown{"games": 3, "activity": 7, "other": 0}
	assert.Equal(t, int64(10), b.Sum())
}

func TestClampFloorsNegativesOnly(t *testing.T) {
	b := Breakdown{"games": -5, "activity": 7}

	b.Clamp()

	assert.Equal(t, int64(0), b["games"])
	assert.Equal(t, int64(7), b["activity"])
}

func TestZeroKeepsKeys(t *testing.T) {
	b := Breakdown{"games": 3, "activity": 7}

	b.Zero()

	require.Len(t, b, 2)
	assert.Equal(t, int64(0), b.Sum())
}
