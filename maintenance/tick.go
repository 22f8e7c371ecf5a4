package maintenance

import (
	"fmt"
	"strconv"

	"gpos_engine/gpos"
	"gpos_engine/metrics"
	"gpos_engine/types"
	"gpos_engine/utils"

	"github.com/sirupsen/logrus"
)

// TickResult summarizes what one maintenance tick did.
type TickResult struct {
	Rolled        bool
	TallyTargets  int
	SkippedVoters int
	PayoutsFired  int
	Distributed   uint64
}

// RunTick executes one maintenance tick at the given timestamp: roll the
// vesting window if it elapsed, rebuild every governance tally from scratch,
// then fire every due dividend payout. Zero-weight populations and empty
// pools are routine no-ops; a transfer shortfall aborts the tick with the
// error surfaced to the caller.
func RunTick(store Store, logger *logrus.Logger, now int64) (*TickResult, error) {
	result := &TickResult{}

	params, err := store.ChainParams()
	if err != nil {
		return nil, fmt.Errorf("tick: fail to load window params: %v", err)
	}
	window := gpos.VestingWindow{
		PeriodSec:    params.VestingPeriod,
		SubperiodSec: params.VestingSubperiod,
		PeriodStart:  params.PeriodStart,
	}
	if err = window.Validate(); err != nil {
		return nil, fmt.Errorf("tick: bad window params: %v", err)
	}

	if window.MaybeRoll(now) {
		if err = store.SavePeriodStart(window.PeriodStart); err != nil {
			return nil, fmt.Errorf("tick: fail to persist rolled period start: %v", err)
		}
		logger.Infof("tick: vesting window rolled, new period start is %v", window.PeriodStart)
		metrics.WindowRolls.Inc()
		result.Rolled = true
	}

	if err = runTally(store, logger, now, window.PeriodSec, result); err != nil {
		return nil, err
	}
	if err = runPayouts(store, logger, now, window.PeriodSec, result); err != nil {
		return nil, err
	}
	return result, nil
}

func runTally(store Store, logger *logrus.Logger, now int64, periodSec int64, result *TickResult) error {
	stakes, err := store.StakeStates()
	if err != nil {
		return fmt.Errorf("tick: fail to load stake states: %v", err)
	}
	edges, err := store.VoteEdges()
	if err != nil {
		return fmt.Errorf("tick: fail to load vote edges: %v", err)
	}
	totals, skipped := gpos.Tally(now, periodSec, edges, stakes)
	if skipped > 0 {
		logger.Warnf("tick: %v vote edges skipped, their voters are gone", skipped)
		metrics.TallySkippedVoters.Add(float64(skipped))
	}
	recs := make([]*types.TallyRecord, 0, len(totals))
	for _, total := range totals {
		recs = append(recs, &types.TallyRecord{
			TallyId:    utils.DeterministicId(total.Kind.String(), total.Target),
			Target:     total.Target,
			Kind:       int(total.Kind),
			TotalVotes: total.TotalVotes,
			TickTime:   now,
		})
	}
	if err = store.ReplaceTally(recs); err != nil {
		return fmt.Errorf("tick: fail to replace tally records: %v", err)
	}
	result.TallyTargets = len(recs)
	result.SkippedVoters = skipped
	metrics.TallyTargets.Set(float64(len(recs)))
	logger.Infof("tick: tally rebuilt over %v targets from %v edges", len(recs), len(edges))
	return nil
}

func runPayouts(store Store, logger *logrus.Logger, now int64, periodSec int64, result *TickResult) error {
	assets, err := store.DividendAssets()
	if err != nil {
		return fmt.Errorf("tick: fail to load dividend assets: %v", err)
	}
	for _, asset := range assets {
		if !gpos.PayoutDue(now, asset.NextPayoutTime) {
			continue
		}
		next := gpos.AdvancePayoutTime(asset.NextPayoutTime, asset.PayoutInterval, now)

		pool, err := store.AccountBalance(asset.DistributionAccount)
		if err != nil {
			return fmt.Errorf("tick: fail to read pool of asset %v: %v", asset.Symbol, err)
		}
		holders, err := store.GposHolders()
		if err != nil {
			return fmt.Errorf("tick: fail to enumerate holders for asset %v: %v", asset.Symbol, err)
		}
		shares, distributed, totalWeight := gpos.ComputeShares(now, periodSec, pool, holders)
		if len(shares) == 0 {
			// empty pool or fully decayed population: the pool stays put,
			// only the schedule moves
			logger.Infof("tick: asset %v payout fired with nothing to distribute (pool %v, total weight %v)",
				asset.Symbol, pool, totalWeight.String())
			if err = store.AdvanceSchedule(asset.AssetId, next); err != nil {
				return fmt.Errorf("tick: fail to advance schedule of asset %v: %v", asset.Symbol, err)
			}
			continue
		}

		period := payoutPeriod(now, asset.PayoutInterval)
		recs := make([]*types.PayoutRecord, 0, len(shares))
		for _, share := range shares {
			rec := &types.PayoutRecord{
				Id:            utils.DeterministicId("payout", asset.AssetId, share.AccountID, strconv.FormatInt(now, 10)),
				Period:        period,
				AssetId:       asset.AssetId,
				Symbol:        asset.Symbol,
				Account:       share.AccountID,
				Amount:        share.Amount,
				WeightedStake: share.WeightedStake,
				TotalWeight:   totalWeight.String(),
				Pool:          pool,
				Time:          now,
				Status:        types.ProcessingStatusDefault,
			}
			if share.Amount == 0 {
				rec.Status = types.ProcessingStatusNotNeedTransfer
			} else {
				rec.TransferHash = utils.DeterministicId("transfer", asset.AssetId, share.AccountID, strconv.FormatInt(now, 10))
			}
			recs = append(recs, rec)
		}
		if err = store.ExecutePayout(asset, recs, distributed, next); err != nil {
			return fmt.Errorf("tick: payout of asset %v failed: %v", asset.Symbol, err)
		}
		logger.Infof("tick: asset %v paid %v of pool %v to %v stakeholders, %v left for next payout",
			asset.Symbol, distributed, pool, len(shares), pool-distributed)
		metrics.PayoutsFired.WithLabelValues(asset.Symbol).Inc()
		metrics.DistributedAmount.WithLabelValues(asset.Symbol).Add(float64(distributed))
		result.PayoutsFired++
		result.Distributed += distributed
	}
	return nil
}

// payoutPeriod numbers payout cycles for bookkeeping rows.
func payoutPeriod(now int64, intervalSec int64) uint64 {
	if intervalSec <= 0 {
		return 0
	}
	return uint64(now / intervalSec)
}
