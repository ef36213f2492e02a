package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContinueFiltersRefreshes(t *testing.T) {

	r := Registry{}
	r.Initialize()

	// first access counts
	assert.True(t, r.Continue("10.0.0.1", "poll-1"))

	// same client re-reading the same poll is a refresh
	assert.False(t, r.Continue("10.0.0.1", "poll-1"))

	// another poll counts again
	assert.True(t, r.Continue("10.0.0.1", "poll-2"))

	// another client counts independently
	assert.True(t, r.Continue("10.0.0.2", "poll-2"))

	assert.Equal(t, 2, r.Count())
}

func TestDump(t *testing.T) {

	r := Registry{}
	r.Initialize()

	r.Continue("10.0.0.1", "poll-1")
	r.Continue("10.0.0.2", "poll-2")

	res := r.Dump(50)
	assert.Len(t, res, 2)
}

func TestFlushKeepsSmallRegistries(t *testing.T) {

	r := Registry{}
	r.Initialize()

	r.Continue("10.0.0.1", "poll-1")

	// eviction only kicks in above the size threshold
	r.Flush()
	assert.Equal(t, 1, r.Count())
}
