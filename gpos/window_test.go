package gpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowValidate(t *testing.T) {
	w := &VestingWindow{PeriodSec: 6 * 30 * day, SubperiodSec: 30 * day}
	require.NoError(t, w.Validate())

	assert.Error(t, (&VestingWindow{PeriodSec: 0, SubperiodSec: day}).Validate())
	assert.Error(t, (&VestingWindow{PeriodSec: day, SubperiodSec: 0}).Validate())
	assert.Error(t, (&VestingWindow{PeriodSec: 10 * day, SubperiodSec: 3 * day}).Validate())
}

func TestWindowMaybeRoll(t *testing.T) {
	start := int64(1000000)
	w := &VestingWindow{PeriodSec: 100, SubperiodSec: 10, PeriodStart: start}

	// inside the window, including the exact boundary, nothing changes
	assert.False(t, w.MaybeRoll(start+50))
	assert.Equal(t, start, w.PeriodStart)
	assert.False(t, w.MaybeRoll(start+100))
	assert.Equal(t, start, w.PeriodStart)

	// past the boundary the window restarts at the tick timestamp itself
	now := start + 137
	assert.True(t, w.MaybeRoll(now))
	assert.Equal(t, now, w.PeriodStart)

	// same tick replayed is a no-op
	assert.False(t, w.MaybeRoll(now))
	assert.Equal(t, now, w.PeriodStart)
}

func TestWindowSubperiodIndex(t *testing.T) {
	w := &VestingWindow{PeriodSec: 60, SubperiodSec: 10, PeriodStart: 1000}
	assert.Equal(t, int64(6), w.SubperiodCount())
	assert.Equal(t, int64(0), w.SubperiodIndex(900))
	assert.Equal(t, int64(0), w.SubperiodIndex(1005))
	assert.Equal(t, int64(3), w.SubperiodIndex(1035))
	assert.Equal(t, int64(5), w.SubperiodIndex(1059))
	// clamped once the window has elapsed but not yet rolled
	assert.Equal(t, int64(5), w.SubperiodIndex(1200))
}
