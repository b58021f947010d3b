package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRoster(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gangs.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadGangs(t *testing.T) {
	path := writeRoster(t, `[
		{"name": "The Reds", "gangId": "reds", "roleId": "role-r", "channelId": "chan-r"},
		{"name": "The Blues", "gangId": "blues", "roleId": "role-b", "channelId": "chan-b"}
	]`)

	gangs, err := loadGangs(path)

	require.NoError(t, err)
	require.Len(t, gangs, 2)
	assert.Equal(t, "reds", gangs[0].GangID)
	assert.Equal(t, "The Blues", gangs[1].Name)
}

func TestLoadGangsRejectsDuplicateIDs(t *testing.T) {
	path := writeRoster(t, `[
		{"name": "The Reds", "gangId": "reds"},
		{"name": "Also Reds", "gangId": "reds"}
	]`)

	_, err := loadGangs(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate gangId")
}

func TestLoadGangsRejectsMissingFields(t *testing.T) {
	path := writeRoster(t, `[{"name": "", "gangId": "reds"}]`)

	_, err := loadGangs(path)

	require.Error(t, err)
}

func TestLoadGangsMissingFile(t *testing.T) {
	_, err := loadGangs(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestGangLookups(t *testing.T) {
	cfg := &Config{Gangs: []GangConfig{
		{Name: "The Reds", GangID: "reds", RoleID: "role-r", ChannelID: " chan-r "},
		{Name: "The Blues", GangID: "blues", RoleID: "role-b", ChannelID: "chan-b"},
	}}

	// configured channel ids are trimmed before matching
	g := cfg.GangByChannel("chan-r")
	require.NotNil(t, g)
	assert.Equal(t, "reds", g.GangID)
	assert.Nil(t, cfg.GangByChannel("chan-x"))

	g = cfg.GangByRole("role-b")
	require.NotNil(t, g)
	assert.Equal(t, "blues", g.GangID)
	assert.Nil(t, cfg.GangByRole("role-x"))

	g = cfg.GangByID("blues")
	require.NotNil(t, g)
	assert.Equal(t, "The Blues", g.Name)
	assert.Nil(t, cfg.GangByID("ghosts"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList("a, b ,c"))
	assert.Empty(t, splitList(" , ,"))
}
