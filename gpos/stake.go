package gpos

import "math/big"

// StakeState is the per-account input of the decay computation: when the
// account last refreshed its vote set and the summed amount of its GPOS-kind
// vesting balances. A zero LastVoteTime means the account never voted.
type StakeState struct {
	LastVoteTime int64
	GposBalance  uint64
}

// Coefficient returns the decay multiplier applied to an account's GPOS
// stake as an exact rational in [0, 1]. Full weight right after a vote,
// shrinking linearly to zero once a whole vesting period passed without a
// fresh vote. An account that never voted carries no weight at all.
//
// The arithmetic stays in integer numerator/denominator form so every node
// derives the identical floored stake from it.
func Coefficient(now int64, lastVoteTime int64, periodSec int64) *big.Rat {
	if lastVoteTime <= 0 || periodSec <= 0 {
		return new(big.Rat)
	}
	elapsed := now - lastVoteTime
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= periodSec {
		return new(big.Rat)
	}
	return big.NewRat(periodSec-elapsed, periodSec)
}

// WeightedStake floors balance * coeff toward zero.
func WeightedStake(balance uint64, coeff *big.Rat) uint64 {
	if balance == 0 || coeff.Sign() <= 0 {
		return 0
	}
	n := new(big.Int).SetUint64(balance)
	n.Mul(n, coeff.Num())
	n.Quo(n, coeff.Denom())
	return n.Uint64()
}

// AccountWeight is the shared weighting consumed by both the governance
// tally and the dividend distributor.
func (s StakeState) AccountWeight(now int64, periodSec int64) uint64 {
	return WeightedStake(s.GposBalance, Coefficient(now, s.LastVoteTime, periodSec))
}
