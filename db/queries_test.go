package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveNextPayoutTime(t *testing.T) {
	base := int64(1541875137)
	interval := int64(86400)

	// after a payout the local schedule advanced past the mirror's stale value
	advanced := base + interval
	assert.Equal(t, advanced, resolveNextPayoutTime(advanced, base, base))

	// governance moved the payout earlier mid-cycle
	earlier := base + interval/2
	assert.Equal(t, earlier, resolveNextPayoutTime(advanced, base, earlier))

	// governance moved the payout later
	later := base + 3*interval
	assert.Equal(t, later, resolveNextPayoutTime(advanced, base, later))

	// steady state: mirror and local already agree
	assert.Equal(t, advanced, resolveNextPayoutTime(advanced, advanced, advanced))
}
