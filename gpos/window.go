package gpos

import (
	"errors"
	"fmt"
)

// VestingWindow holds the chain-wide GPOS window parameters. PeriodStart is
// rollover bookkeeping for the rolling epoch; decay itself is always anchored
// to an account's last vote time, never to the window start.
type VestingWindow struct {
	PeriodSec    int64
	SubperiodSec int64
	PeriodStart  int64
}

func (w *VestingWindow) Validate() error {
	if w.PeriodSec <= 0 {
		return errors.New("vesting period must be positive")
	}
	if w.SubperiodSec <= 0 {
		return errors.New("vesting subperiod must be positive")
	}
	if w.PeriodSec%w.SubperiodSec != 0 {
		return fmt.Errorf("vesting subperiod %v does not divide period %v", w.SubperiodSec, w.PeriodSec)
	}
	return nil
}

// MaybeRoll restarts the window once it has fully elapsed. The new start is
// the triggering maintenance timestamp, not an exact period multiple. Returns
// whether the window rolled.
func (w *VestingWindow) MaybeRoll(now int64) bool {
	if now > w.PeriodStart+w.PeriodSec {
		w.PeriodStart = now
		return true
	}
	return false
}

// SubperiodCount is the number of subperiods one full window contains.
func (w *VestingWindow) SubperiodCount() int64 {
	return w.PeriodSec / w.SubperiodSec
}

// SubperiodIndex reports which subperiod of the current window now falls in,
// clamped to the last subperiod when now runs past the window end.
func (w *VestingWindow) SubperiodIndex(now int64) int64 {
	if now <= w.PeriodStart {
		return 0
	}
	idx := (now - w.PeriodStart) / w.SubperiodSec
	if max := w.SubperiodCount() - 1; idx > max {
		idx = max
	}
	return idx
}
