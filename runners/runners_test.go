package runners

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_PlatformOf(t *testing.T) {
	r := NewRegistry()

	platform, err := r.PlatformOf("wine")
	assert.NoError(t, err)
	assert.EqualValues(t, "Windows", platform)

	platform, err = r.PlatformOf("dosbox")
	assert.NoError(t, err)
	assert.EqualValues(t, "MS-DOS", platform)

	_, err = r.PlatformOf("wien")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean 'wine'")

	_, err = r.PlatformOf("zzzzzzzzzzzzzzzzzzzzzz")
	assert.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}
