package analytics

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// with analytics switched off every method must return without ever
// touching the influx APIs (the zero-value tracker would panic otherwise)
func TestTrackerDisabled(t *testing.T) {

	os.Setenv("USE_ANALYTICS", "NO")

	tracker := Tracker{}

	tracker.SaveVisit("poll-1", "user-1", "10.0.0.1")
	tracker.SaveVote("poll-1", "user-1")

	cnt, err := tracker.GetVisits("poll-1", time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), cnt)

	visitors, err := tracker.ListVisitors("poll-1", time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Nil(t, visitors)
}
