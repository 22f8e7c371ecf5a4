package gpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSharesProRata(t *testing.T) {
	now := int64(1000000)
	holders := []Holder{
		{AccountID: "alice", LastVoteTime: now, GposBalance: 300},
		{AccountID: "bob", LastVoteTime: now, GposBalance: 100},
	}
	shares, distributed, totalWeight := ComputeShares(now, 6*day, 100, holders)
	require.Len(t, shares, 2)
	assert.Equal(t, uint64(400), totalWeight.Uint64())
	assert.Equal(t, uint64(100), distributed)
	assert.Equal(t, Share{AccountID: "alice", WeightedStake: 300, Amount: 75}, shares[0])
	assert.Equal(t, Share{AccountID: "bob", WeightedStake: 100, Amount: 25}, shares[1])
}

func TestComputeSharesTruncationLeavesRemainder(t *testing.T) {
	now := int64(1000000)
	holders := []Holder{
		{AccountID: "a", LastVoteTime: now, GposBalance: 1},
		{AccountID: "b", LastVoteTime: now, GposBalance: 1},
		{AccountID: "c", LastVoteTime: now, GposBalance: 1},
	}
	shares, distributed, _ := ComputeShares(now, day, 100, holders)
	require.Len(t, shares, 3)
	for _, s := range shares {
		assert.Equal(t, uint64(33), s.Amount)
	}
	// 1 stays behind for the next payout
	assert.Equal(t, uint64(99), distributed)
}

func TestComputeSharesZeroTotalWeight(t *testing.T) {
	now := int64(1000000)
	period := 6 * day

	// stale voters and never-voters both weigh nothing
	holders := []Holder{
		{AccountID: "stale", LastVoteTime: now - period, GposBalance: 500},
		{AccountID: "mute", LastVoteTime: 0, GposBalance: 500},
	}
	shares, distributed, totalWeight := ComputeShares(now, period, 100, holders)
	assert.Empty(t, shares)
	assert.Equal(t, uint64(0), distributed)
	assert.Equal(t, 0, totalWeight.Sign())
}

func TestComputeSharesDecayShrinksShare(t *testing.T) {
	sub := 30 * day
	period := 6 * sub
	now := int64(4000000000)
	holders := []Holder{
		{AccountID: "fresh", LastVoteTime: now, GposBalance: 100},
		{AccountID: "halfway", LastVoteTime: now - 3*sub, GposBalance: 100},
	}
	shares, distributed, _ := ComputeShares(now, period, 150, holders)
	require.Len(t, shares, 2)
	assert.Equal(t, uint64(100), shares[0].WeightedStake)
	assert.Equal(t, uint64(100), shares[0].Amount)
	assert.Equal(t, uint64(50), shares[1].WeightedStake)
	assert.Equal(t, uint64(50), shares[1].Amount)
	assert.Equal(t, uint64(150), distributed)
}

func TestComputeSharesNeverExceedsPool(t *testing.T) {
	now := int64(7777777)
	holders := []Holder{
		{AccountID: "a", LastVoteTime: now - 1000, GposBalance: 7919},
		{AccountID: "b", LastVoteTime: now - 50000, GposBalance: 104729},
		{AccountID: "c", LastVoteTime: now, GposBalance: 3},
	}
	for _, pool := range []uint64{0, 1, 7, 99, 1000003} {
		_, distributed, _ := ComputeShares(now, 6*day, pool, holders)
		assert.LessOrEqual(t, distributed, pool)
	}
}

func TestComputeSharesDeterministicOrder(t *testing.T) {
	now := int64(123456)
	holders := []Holder{
		{AccountID: "zed", LastVoteTime: now, GposBalance: 10},
		{AccountID: "abe", LastVoteTime: now, GposBalance: 10},
		{AccountID: "mia", LastVoteTime: now, GposBalance: 10},
	}
	shares, _, _ := ComputeShares(now, day, 30, holders)
	require.Len(t, shares, 3)
	assert.Equal(t, "abe", shares[0].AccountID)
	assert.Equal(t, "mia", shares[1].AccountID)
	assert.Equal(t, "zed", shares[2].AccountID)
}

func TestPayoutDue(t *testing.T) {
	assert.False(t, PayoutDue(99, 100))
	assert.True(t, PayoutDue(100, 100))
	assert.True(t, PayoutDue(101, 100))
}

func TestAdvancePayoutTime(t *testing.T) {
	// single interval
	assert.Equal(t, int64(200), AdvancePayoutTime(100, 100, 100))

	// several missed intervals are caught up in one firing
	next := AdvancePayoutTime(100, 100, 950)
	assert.Equal(t, int64(1000), next)
	assert.Greater(t, next, int64(950))

	// landing exactly on now still advances past it
	assert.Equal(t, int64(1100), AdvancePayoutTime(100, 100, 1000))
}
