package gpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyFullWeightPerTarget(t *testing.T) {
	period := 6 * day
	now := int64(2000000)
	stakes := map[string]StakeState{
		"alice": {LastVoteTime: now, GposBalance: 300},
		"bob":   {LastVoteTime: now, GposBalance: 100},
	}
	edges := []VoteEdge{
		{Voter: "alice", Target: "wit-1", Kind: TargetWitness},
		{Voter: "alice", Target: "com-1", Kind: TargetCommittee},
		{Voter: "bob", Target: "wit-1", Kind: TargetWitness},
	}

	totals, skipped := Tally(now, period, edges, stakes)
	require.Equal(t, 0, skipped)
	require.Len(t, totals, 2)

	// votes are not divided among targets: alice counts 300 on both
	assert.Equal(t, TallyTotal{Target: "wit-1", Kind: TargetWitness, TotalVotes: 400}, totals[0])
	assert.Equal(t, TallyTotal{Target: "com-1", Kind: TargetCommittee, TotalVotes: 300}, totals[1])
}

func TestTallyDecayedWeight(t *testing.T) {
	sub := 30 * day
	period := 6 * sub
	now := int64(3000000000)
	stakes := map[string]StakeState{
		"fresh": {LastVoteTime: now, GposBalance: 100},
		"stale": {LastVoteTime: now - 3*sub, GposBalance: 100},
		"dead":  {LastVoteTime: now - period, GposBalance: 100},
		"mute":  {LastVoteTime: 0, GposBalance: 100},
	}
	edges := []VoteEdge{
		{Voter: "fresh", Target: "w", Kind: TargetWitness},
		{Voter: "stale", Target: "w", Kind: TargetWitness},
		{Voter: "dead", Target: "w", Kind: TargetWitness},
		{Voter: "mute", Target: "w", Kind: TargetWitness},
	}
	totals, skipped := Tally(now, period, edges, stakes)
	require.Equal(t, 0, skipped)
	require.Len(t, totals, 1)
	assert.Equal(t, uint64(150), totals[0].TotalVotes)
}

func TestTallySkipsMissingVoters(t *testing.T) {
	now := int64(1000)
	stakes := map[string]StakeState{
		"alice": {LastVoteTime: now, GposBalance: 50},
	}
	edges := []VoteEdge{
		{Voter: "alice", Target: "w", Kind: TargetWitness},
		{Voter: "ghost", Target: "w", Kind: TargetWitness},
	}
	totals, skipped := Tally(now, day, edges, stakes)
	assert.Equal(t, 1, skipped)
	require.Len(t, totals, 1)
	assert.Equal(t, uint64(50), totals[0].TotalVotes)
}

func TestTallyReplacesNothingCarriesNothing(t *testing.T) {
	// an empty edge set yields an empty tally no matter what ran before
	totals, skipped := Tally(1000, day, nil, map[string]StakeState{"a": {LastVoteTime: 1, GposBalance: 9}})
	assert.Equal(t, 0, skipped)
	assert.Empty(t, totals)
}

func TestTallyDeterministicOrder(t *testing.T) {
	now := int64(5000)
	stakes := map[string]StakeState{"v": {LastVoteTime: now, GposBalance: 10}}
	edges := []VoteEdge{
		{Voter: "v", Target: "z", Kind: TargetWorker},
		{Voter: "v", Target: "b", Kind: TargetWitness},
		{Voter: "v", Target: "a", Kind: TargetWitness},
		{Voter: "v", Target: "c", Kind: TargetCommittee},
	}
	for i := 0; i < 10; i++ {
		totals, _ := Tally(now, day, edges, stakes)
		require.Len(t, totals, 4)
		assert.Equal(t, "a", totals[0].Target)
		assert.Equal(t, "b", totals[1].Target)
		assert.Equal(t, "c", totals[2].Target)
		assert.Equal(t, "z", totals[3].Target)
	}
}
