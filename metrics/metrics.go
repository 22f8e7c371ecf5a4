package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	TickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gpos",
		Name:      "maintenance_tick_duration_seconds",
		Help:      "Wall time of one maintenance tick.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})

	WindowRolls = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gpos",
		Name:      "window_rolls_total",
		Help:      "Number of vesting window rollovers.",
	})

	TallyTargets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gpos",
		Name:      "tally_targets",
		Help:      "Governance targets with at least one vote at the last tick.",
	})

	TallySkippedVoters = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gpos",
		Name:      "tally_skipped_voters_total",
		Help:      "Vote edges skipped because the voter's account vanished.",
	})

	PayoutsFired = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpos",
		Name:      "payouts_fired_total",
		Help:      "Dividend payouts fired, by asset symbol.",
	}, []string{"asset"})

	DistributedAmount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gpos",
		Name:      "distributed_amount_total",
		Help:      "Base units distributed to stakeholders, by asset symbol.",
	}, []string{"asset"})

	TickFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gpos",
		Name:      "maintenance_tick_failures_total",
		Help:      "Maintenance ticks aborted on a fatal error.",
	})
)

// Register installs every collector on the default registry; safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			TickDuration,
			WindowRolls,
			TallyTargets,
			TallySkippedVoters,
			PayoutsFired,
			DistributedAmount,
			TickFailures,
		)
	})
}
