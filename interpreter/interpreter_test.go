package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Substitute(t *testing.T) {
	i := New(Params{
		TargetPath: "/games/quake",
		CacheDir:   "/cache/quake",
		Version:    "GOG",
		Variables: map[string]interface{}{
			"ARCH":    "x86_64",
			"RELEASE": 2,
		},
	})
	i.SetGameFile("GAME", "/cache/quake/setup.exe")

	assert.EqualValues(t, "/games/quake/quake", i.Substitute("$GAMEDIR/quake"))
	assert.EqualValues(t, "/cache/quake/setup.exe", i.Substitute("$GAME"))
	assert.EqualValues(t, "quake-x86_64-2", i.Substitute("quake-$ARCH-$RELEASE"))
	assert.EqualValues(t, "GOG", i.Substitute("$VERSION"))
	assert.EqualValues(t, "no variables", i.Substitute("no variables"))
	assert.EqualValues(t, "$UNKNOWN", i.Substitute("$UNKNOWN"))
}

func Test_SubstituteIsIdempotent(t *testing.T) {
	i := New(Params{TargetPath: "/games/quake"})
	once := i.Substitute("$GAMEDIR/id1")
	assert.EqualValues(t, once, i.Substitute(once))
}

func Test_Extras(t *testing.T) {
	i := New(Params{Extras: []string{"soundtrack"}})
	extras := i.Extras()
	extras[0] = "mutated"
	assert.EqualValues(t, []string{"soundtrack"}, i.Extras())
	assert.EqualValues(t, map[string]string{}, i.GameFiles())
}
