package maintenance

import (
	"errors"
	"testing"

	"gpos_engine/gpos"
	"gpos_engine/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = int64(86400)

// fakeStore keeps the whole tick state in memory.
type fakeStore struct {
	params   types.ChainParams
	stakes   map[string]gpos.StakeState
	edges    []gpos.VoteEdge
	tally    []*types.TallyRecord
	assets   []*types.DividendAsset
	balances map[string]uint64
	payouts  []*types.PayoutRecord

	failTransfer bool
}

func newFakeStore(periodStart int64) *fakeStore {
	return &fakeStore{
		params: types.ChainParams{
			Id: 1,
			PeriodStart: periodStart,
			VestingPeriod: 6 * 30 * day,
			VestingSubperiod: 30 * day,
		},
		stakes: make(map[string]gpos.StakeState),
		balances: make(map[string]uint64),
	}
}

func (f *fakeStore) ChainParams() (*types.ChainParams, error) {
	p := f.params
	return &p, nil
}

func (f *fakeStore) SavePeriodStart(start int64) error {
	f.params.PeriodStart = start
	return nil
}

func (f *fakeStore) StakeStates() (map[string]gpos.StakeState, error) { return f.stakes, nil }

func (f *fakeStore) VoteEdges() ([]gpos.VoteEdge, error) { return f.edges, nil }

func (f *fakeStore) ReplaceTally(recs []*types.TallyRecord) error {
	f.tally = recs
	return nil
}

func (f *fakeStore) DividendAssets() ([]*types.DividendAsset, error) { return f.assets, nil }

func (f *fakeStore) AccountBalance(name string) (uint64, error) { return f.balances[name], nil }

func (f *fakeStore) GposHolders() ([]gpos.Holder, error) {
	var holders []gpos.Holder
	for name, st := range f.stakes {
		if st.GposBalance > 0 {
			holders = append(holders, gpos.Holder{AccountID: name, LastVoteTime: st.LastVoteTime, GposBalance: st.GposBalance})
		}
	}
	return holders, nil
}

func (f *fakeStore) ExecutePayout(asset *types.DividendAsset, recs []*types.PayoutRecord, distributed uint64, nextPayout int64) error {
	if f.failTransfer || f.balances[asset.DistributionAccount] < distributed {
		return errors.New("distribution account balance below computed payout")
	}
	f.balances[asset.DistributionAccount] -= distributed
	for _, rec := range recs {
		f.balances[rec.Account] += rec.Amount
		f.payouts = append(f.payouts, rec)
	}
	return f.AdvanceSchedule(asset.AssetId, nextPayout)
}

func (f *fakeStore) AdvanceSchedule(assetId string, next int64) error {
	for _, a := range f.assets {
		if a.AssetId == assetId {
			a.NextPayoutTime = next
		}
	}
	return nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestTickRollsWindowOnlyWhenElapsed(t *testing.T) {
	start := int64(1000000)
	f := newFakeStore(start)

	res, err := RunTick(f, testLogger(), start+f.params.VestingPeriod)
	require.NoError(t, err)
	assert.False(t, res.Rolled)
	assert.Equal(t, start, f.params.PeriodStart)

	now := start + f.params.VestingPeriod + 77
	res, err = RunTick(f, testLogger(), now)
	require.NoError(t, err)
	assert.True(t, res.Rolled)
	assert.Equal(t, now, f.params.PeriodStart)
}

func TestTickRebuildsTallyFromScratch(t *testing.T) {
	now := int64(5000000)
	f := newFakeStore(now)
	f.stakes["alice"] = gpos.StakeState{LastVoteTime: now, GposBalance: 300}
	f.stakes["bob"] = gpos.StakeState{LastVoteTime: now, GposBalance: 100}
	f.edges = []gpos.VoteEdge{
		{Voter: "alice", Target: "wit-1", Kind: gpos.TargetWitness},
		{Voter: "bob", Target: "wit-1", Kind: gpos.TargetWitness},
		{Voter: "alice", Target: "wrk-1", Kind: gpos.TargetWorker},
	}
	// a stale total from an earlier tick must not survive
	f.tally = []*types.TallyRecord{{TallyId: "old", Target: "wit-9", TotalVotes: 999}}

	res, err := RunTick(f, testLogger(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TallyTargets)
	require.Len(t, f.tally, 2)
	assert.Equal(t, "wit-1", f.tally[0].Target)
	assert.Equal(t, uint64(400), f.tally[0].TotalVotes)
	assert.Equal(t, "wrk-1", f.tally[1].Target)
	assert.Equal(t, uint64(300), f.tally[1].TotalVotes)
}

func TestTickFiresDuePayout(t *testing.T) {
	now := int64(9000000)
	f := newFakeStore(now)
	f.stakes["alice"] = gpos.StakeState{LastVoteTime: now, GposBalance: 300}
	f.stakes["bob"] = gpos.StakeState{LastVoteTime: now, GposBalance: 100}
	f.assets = []*types.DividendAsset{{
		AssetId: "1.3.0", Symbol: "CORE", DistributionAccount: "dividend-account",
		PayoutInterval: day, NextPayoutTime: now,
	}}
	f.balances["dividend-account"] = 100

	res, err := RunTick(f, testLogger(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, res.PayoutsFired)
	assert.Equal(t, uint64(100), res.Distributed)
	assert.Equal(t, uint64(75), f.balances["alice"])
	assert.Equal(t, uint64(25), f.balances["bob"])
	assert.Equal(t, uint64(0), f.balances["dividend-account"])
	assert.Greater(t, f.assets[0].NextPayoutTime, now)
}

func TestTickPayoutLeftoverRollsForward(t *testing.T) {
	now := int64(9000000)
	f := newFakeStore(now)
	for _, name := range []string{"a", "b", "c"} {
		f.stakes[name] = gpos.StakeState{LastVoteTime: now, GposBalance: 100}
	}
	f.assets = []*types.DividendAsset{{
		AssetId: "1.3.0", Symbol: "CORE", DistributionAccount: "dividend-account",
		PayoutInterval: day, NextPayoutTime: now,
	}}
	f.balances["dividend-account"] = 100

	_, err := RunTick(f, testLogger(), now)
	require.NoError(t, err)
	// 3x33 paid, 1 base unit stays for the next payout
	assert.Equal(t, uint64(1), f.balances["dividend-account"])

	// next cycle sees the leftover topped up
	f.balances["dividend-account"] += 99
	next := f.assets[0].NextPayoutTime
	_, err = RunTick(f, testLogger(), next)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), f.balances["dividend-account"])
	assert.Equal(t, uint64(66), f.balances["a"])
}

func TestTickZeroWeightLeavesPoolUntouched(t *testing.T) {
	now := int64(9000000)
	f := newFakeStore(now)
	// holder exists but never voted
	f.stakes["mute"] = gpos.StakeState{LastVoteTime: 0, GposBalance: 500}
	f.assets = []*types.DividendAsset{{
		AssetId: "1.3.0", Symbol: "CORE", DistributionAccount: "dividend-account",
		PayoutInterval: day, NextPayoutTime: now,
	}}
	f.balances["dividend-account"] = 100

	res, err := RunTick(f, testLogger(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, res.PayoutsFired)
	assert.Equal(t, uint64(100), f.balances["dividend-account"])
	// the schedule still advances
	assert.Greater(t, f.assets[0].NextPayoutTime, now)
}

func TestTickAfterAllHoldersWithdraw(t *testing.T) {
	now := int64(9000000)
	f := newFakeStore(now)
	f.stakes["alice"] = gpos.StakeState{LastVoteTime: now, GposBalance: 300}
	f.assets = []*types.DividendAsset{{
		AssetId: "1.3.0", Symbol: "CORE", DistributionAccount: "dividend-account",
		PayoutInterval: day, NextPayoutTime: now,
	}}
	f.balances["dividend-account"] = 100

	res, err := RunTick(f, testLogger(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, res.PayoutsFired)
	assert.Equal(t, uint64(100), f.balances["alice"])

	// every GPOS balance withdrawn on chain before the next payout: the pool
	// stays put, no former holder gets paid, the schedule still advances
	f.stakes["alice"] = gpos.StakeState{LastVoteTime: now, GposBalance: 0}
	f.balances["dividend-account"] = 50
	next := f.assets[0].NextPayoutTime
	res, err = RunTick(f, testLogger(), next)
	require.NoError(t, err)
	assert.Equal(t, 0, res.PayoutsFired)
	assert.Equal(t, uint64(50), f.balances["dividend-account"])
	assert.Equal(t, uint64(100), f.balances["alice"])
	assert.Greater(t, f.assets[0].NextPayoutTime, next)
}

func TestTickCatchesUpMissedIntervals(t *testing.T) {
	base := int64(9000000)
	f := newFakeStore(base)
	f.stakes["alice"] = gpos.StakeState{LastVoteTime: base, GposBalance: 10}
	f.assets = []*types.DividendAsset{{
		AssetId: "1.3.0", Symbol: "CORE", DistributionAccount: "dividend-account",
		PayoutInterval: 100, NextPayoutTime: base,
	}}
	f.balances["dividend-account"] = 10

	// tick lands 9.5 intervals late: one payout, schedule catches up past now
	now := base + 950
	_, err := RunTick(f, testLogger(), now)
	require.NoError(t, err)
	assert.Equal(t, base+1000, f.assets[0].NextPayoutTime)
	assert.Len(t, f.payouts, 1)
}

func TestTickIdempotentAtSameTimestamp(t *testing.T) {
	now := int64(9000000)
	f := newFakeStore(now)
	f.stakes["alice"] = gpos.StakeState{LastVoteTime: now, GposBalance: 300}
	f.edges = []gpos.VoteEdge{{Voter: "alice", Target: "w", Kind: gpos.TargetWitness}}
	f.assets = []*types.DividendAsset{{
		AssetId: "1.3.0", Symbol: "CORE", DistributionAccount: "dividend-account",
		PayoutInterval: day, NextPayoutTime: now,
	}}
	f.balances["dividend-account"] = 100

	_, err := RunTick(f, testLogger(), now)
	require.NoError(t, err)
	firstTally := f.tally
	firstAlice := f.balances["alice"]

	// same now replayed: identical tally, no duplicate transfer
	res, err := RunTick(f, testLogger(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, res.PayoutsFired)
	assert.Equal(t, firstAlice, f.balances["alice"])
	require.Len(t, f.tally, len(firstTally))
	assert.Equal(t, firstTally[0].TotalVotes, f.tally[0].TotalVotes)
	assert.Equal(t, firstTally[0].TallyId, f.tally[0].TallyId)
}

func TestTickTransferShortfallIsFatal(t *testing.T) {
	now := int64(9000000)
	f := newFakeStore(now)
	f.stakes["alice"] = gpos.StakeState{LastVoteTime: now, GposBalance: 300}
	f.assets = []*types.DividendAsset{{
		AssetId: "1.3.0", Symbol: "CORE", DistributionAccount: "dividend-account",
		PayoutInterval: day, NextPayoutTime: now,
	}}
	f.balances["dividend-account"] = 100
	f.failTransfer = true

	_, err := RunTick(f, testLogger(), now)
	require.Error(t, err)
	// nothing moved, schedule untouched
	assert.Equal(t, uint64(0), f.balances["alice"])
	assert.Equal(t, now, f.assets[0].NextPayoutTime)
}
