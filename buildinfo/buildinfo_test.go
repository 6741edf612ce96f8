package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_VersionString(t *testing.T) {
	defer func(v, b, c string) {
		Version, BuiltAt, Commit = v, b, c
	}(Version, BuiltAt, Commit)

	Version, BuiltAt, Commit = "head", "", ""
	assert.EqualValues(t, "head, no build date", VersionString())

	Version, BuiltAt, Commit = "v0.3.0", "0", "abcdef"
	assert.EqualValues(t, "v0.3.0, built on Jan  1 1970 @ 00:00:00, ref abcdef", VersionString())

	BuiltAt = "yesterday"
	assert.EqualValues(t, "v0.3.0, invalid build date, ref abcdef", VersionString())
}
