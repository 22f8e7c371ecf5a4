package gpos

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = int64(86400)

func TestCoefficientBounds(t *testing.T) {
	period := 180 * day
	voteTime := int64(1000000)

	// full weight right after voting
	assert.Equal(t, 0, Coefficient(voteTime, voteTime, period).Cmp(big.NewRat(1, 1)))

	// zero at exactly one period and beyond
	assert.Equal(t, 0, Coefficient(voteTime+period, voteTime, period).Sign())
	assert.Equal(t, 0, Coefficient(voteTime+period+day, voteTime, period).Sign())

	// never voted
	assert.Equal(t, 0, Coefficient(voteTime, 0, period).Sign())

	// clock behind the vote clamps to full weight
	assert.Equal(t, 0, Coefficient(voteTime-10, voteTime, period).Cmp(big.NewRat(1, 1)))
}

func TestCoefficientMonotonic(t *testing.T) {
	period := 6 * day
	voteTime := int64(500000)
	prev := big.NewRat(2, 1)
	for elapsed := int64(0); elapsed <= period+day; elapsed += 3600 {
		c := Coefficient(voteTime+elapsed, voteTime, period)
		require.True(t, c.Cmp(prev) <= 0, "coefficient grew at elapsed=%v", elapsed)
		require.True(t, c.Sign() >= 0)
		require.True(t, c.Cmp(big.NewRat(1, 1)) <= 0)
		prev = c
	}
}

func TestWeightedStakeSixSubperiods(t *testing.T) {
	sub := 30 * day
	period := 6 * sub
	voteTime := int64(1541875137)
	expected := []uint64{100, 83, 66, 50, 33, 16, 0}
	for k, want := range expected {
		now := voteTime + int64(k)*sub
		st := StakeState{LastVoteTime: voteTime, GposBalance: 100}
		assert.Equal(t, want, st.AccountWeight(now, period), "subperiod %v", k)
	}
}

func TestWeightedStakeFourSubperiods(t *testing.T) {
	sub := 7 * day
	period := 4 * sub
	voteTime := int64(1569380400)
	for _, stake := range []uint64{1, 3, 100, 999, 1000000007} {
		for k := int64(0); k <= 4; k++ {
			now := voteTime + k*sub
			want := stake * uint64(4-k) / 4
			st := StakeState{LastVoteTime: voteTime, GposBalance: stake}
			assert.Equal(t, want, st.AccountWeight(now, period), "stake %v subperiod %v", stake, k)
		}
	}
}

func TestWeightedStakeLargeBalance(t *testing.T) {
	// balance * numerator must not overflow before the division
	period := 6 * day
	voteTime := int64(1000)
	now := voteTime + period/2
	var balance uint64 = 1 << 63
	got := WeightedStake(balance, Coefficient(now, voteTime, period))
	assert.Equal(t, balance/2, got)
}

func TestWeightedStakeZeroCases(t *testing.T) {
	assert.Equal(t, uint64(0), WeightedStake(0, big.NewRat(1, 1)))
	assert.Equal(t, uint64(0), WeightedStake(1000, new(big.Rat)))
	st := StakeState{LastVoteTime: 0, GposBalance: 1000}
	assert.Equal(t, uint64(0), st.AccountWeight(10000, 6*day))
}
