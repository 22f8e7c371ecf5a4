package maintenance

import (
	"fmt"
	"time"

	"gpos_engine/config"
	"gpos_engine/logs"
	"gpos_engine/metrics"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

var sv *MaintenanceService

// MaintenanceService drives the maintenance tick on the configured cadence.
// The host ledger serializes ticks against all other mutation; here the
// isHandling guard only protects against a tick outliving its own interval.
type MaintenanceService struct {
	logger  *logrus.Logger
	cron    *cron.Cron
	store   Store
	isHandling bool
}

func NewMaintenanceService(store Store) *MaintenanceService {
	return &MaintenanceService{
		logger: logs.GetLogger(),
		cron: cron.New(),
		store: store,
	}
}

func StartMaintenanceService() error {
	sv = NewMaintenanceService(NewDbStore())
	spec := fmt.Sprintf("@every %vs", config.MaintenanceTimeInterval)
	err := sv.cron.AddFunc(spec, sv.runMaintenanceTick)
	if err != nil {
		sv.logger.Errorf("StartMaintenanceService: fail to start maintenance service, the error is %v", err)
		return err
	}
	sv.cron.Start()
	return nil
}

func StopMaintenanceService() {
	if sv != nil && sv.cron != nil {
		sv.cron.Stop()
	}
}

func (sv *MaintenanceService) runMaintenanceTick()  {
	sv.logger.Infof("Start this round maintenance tick")
	if sv.isHandling {
		sv.logger.Infoln("last maintenance tick not finish")
		return
	}
	sv.isHandling = true
	defer func() { sv.isHandling = false }()

	start := time.Now()
	now := start.Unix()
	result,err := RunTick(sv.store, sv.logger, now)
	metrics.TickDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// internal-consistency violations abort the tick; nothing partial
		// is kept and the next tick recomputes from fresh inputs
		metrics.TickFailures.Inc()
		sv.logger.Errorf("runMaintenanceTick: tick at %v aborted, the error is %v", now, err)
		return
	}
	sv.logger.Infof("runMaintenanceTick: finish tick at %v, rolled=%v targets=%v payouts=%v distributed=%v",
		now, result.Rolled, result.TallyTargets, result.PayoutsFired, result.Distributed)
}
