package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContinueDedupsRefreshes(t *testing.T) {
	var r Registry
	r.Initialize()

	// a fresh client/track combination counts
	assert.True(t, r.Continue("10.0.0.1", "track1"))

	// the same client refreshing the same track does not
	assert.False(t, r.Continue("10.0.0.1", "track1"))

	// switching to another track counts again
	assert.True(t, r.Continue("10.0.0.1", "track2"))

	// another client playing the first track counts as well
	assert.True(t, r.Continue("10.0.0.2", "track1"))
}

func TestCountAndDump(t *testing.T) {
	var r Registry
	r.Initialize()

	r.Continue("10.0.0.1", "track1")
	r.Continue("10.0.0.2", "track1")
	r.Continue("10.0.0.3", "track2")

	assert.Equal(t, 3, r.Count())
	assert.Len(t, r.Dump(2), 2)
	assert.Len(t, r.Dump(10), 3)
}
