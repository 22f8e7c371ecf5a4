package gpos

import (
	"math/big"
	"sort"
)

// Holder is one account that owns a nonzero GPOS vesting balance at payout
// time.
type Holder struct {
	AccountID    string
	LastVoteTime int64
	GposBalance  uint64
}

// Share is one account's slice of a dividend pool.
type Share struct {
	AccountID     string
	WeightedStake uint64
	Amount        uint64
}

// PayoutDue reports whether an asset's payout fires at this tick.
func PayoutDue(now int64, nextPayoutTime int64) bool {
	return now >= nextPayoutTime
}

// AdvancePayoutTime moves next_payout_time forward by whole intervals until
// it lies strictly past now. Catching up over several missed intervals is a
// routine condition, not an error.
func AdvancePayoutTime(next int64, intervalSec int64, now int64) int64 {
	if intervalSec <= 0 {
		return next
	}
	for next <= now {
		next += intervalSec
	}
	return next
}

// ComputeShares splits pool over the holders pro rata by decayed stake, with
// the same coefficient the governance tally uses. Shares are floored, so the
// sum of amounts can fall short of pool; the remainder stays with the caller
// and rolls into the next payout. A zero total weight distributes nothing.
// Holders are walked in ascending account id order so every node emits the
// same transfer sequence.
func ComputeShares(now int64, periodSec int64, pool uint64, holders []Holder) (shares []Share, distributed uint64, totalWeight *big.Int) {
	sorted := make([]Holder, len(holders))
	copy(sorted, holders)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AccountID < sorted[j].AccountID })

	totalWeight = new(big.Int)
	weights := make([]uint64, len(sorted))
	for i, h := range sorted {
		w := WeightedStake(h.GposBalance, Coefficient(now, h.LastVoteTime, periodSec))
		weights[i] = w
		totalWeight.Add(totalWeight, new(big.Int).SetUint64(w))
	}
	if pool == 0 || totalWeight.Sign() == 0 {
		return nil, 0, totalWeight
	}

	bigPool := new(big.Int).SetUint64(pool)
	for i, h := range sorted {
		if weights[i] == 0 {
			continue
		}
		amt := new(big.Int).SetUint64(weights[i])
		amt.Mul(amt, bigPool)
		amt.Quo(amt, totalWeight)
		share := Share{
			AccountID:     h.AccountID,
			WeightedStake: weights[i],
			Amount:        amt.Uint64(),
		}
		shares = append(shares, share)
		distributed += share.Amount
	}
	return shares, distributed, totalWeight
}
