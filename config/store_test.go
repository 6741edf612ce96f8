package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_WriteThenLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "installkit-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	s := NewStore(filepath.Join(dir, "games"), nil)
	s.now = func() time.Time {
		return time.Unix(1546300800, 0)
	}

	configID, err := s.WriteGameConfig("quake", map[string]interface{}{
		"game": map[string]interface{}{
			"exe":  "/games/quake/quake",
			"args": []interface{}{"-nosound"},
		},
		"system": map[string]interface{}{
			"disable_compositor": true,
		},
		"year": nil,
	})
	require.NoError(t, err)
	assert.EqualValues(t, "quake-1546300800", configID)

	_, err = os.Stat(filepath.Join(dir, "games", "quake-1546300800.yml"))
	require.NoError(t, err)

	loaded, err := s.LoadGameConfig("linux", configID)
	require.NoError(t, err)

	game, ok := loaded["game"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, "/games/quake/quake", game["exe"])
	assert.EqualValues(t, []interface{}{"-nosound"}, game["args"])

	system, ok := loaded["system"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, true, system["disable_compositor"])
	assert.Nil(t, loaded["year"])
}

func Test_LoadMissingConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "installkit-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	var warnings []string
	s := NewStore(dir, nil)
	s.Consumer.OnMessage = func(lvl string, msg string) {
		if lvl == "warning" {
			warnings = append(warnings, msg)
		}
	}

	loaded, err := s.LoadGameConfig("wine", "nope-123")
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.Len(t, warnings, 1)
}
