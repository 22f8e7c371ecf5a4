package snapshot

import (
	"time"

	"gpos_engine/config"
	"gpos_engine/db"
	"gpos_engine/logs"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// StakeSyncService refreshes the service database from the ledger mirror:
// account vote times, GPOS vesting balances, live vote edges and dividend
// asset configs. The maintenance tick always reads the latest refreshed
// state, never the mirror directly.
type StakeSyncService struct {
	stopCh      chan bool
	logger      *logrus.Logger
}

func NewStakeSyncService() (*StakeSyncService, error) {
	logger := logs.GetLogger()
	service := &StakeSyncService{
		logger: logger,
	}
	return service, nil
}

func (s *StakeSyncService) StartSyncService() {
	s.stopCh = make(chan bool)
	interval := time.Duration(config.SnapshotTimeInterval) * time.Second
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <- ticker.C:
				s.snapshot()
			case <- s.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

func (s *StakeSyncService) StopSyncService()  {
	s.stopCh <- true
	close(s.stopCh)
}

func (s *StakeSyncService) snapshot() {
	curTime := time.Now()
	s.logger.Infof("Start snapshot: the timestamp is %v", curTime.Unix())

	var g errgroup.Group

	//1. refresh account rows (balance + last vote time)
	g.Go(func() error {
		accounts,err := db.GetMirrorAccounts(curTime)
		if err != nil {
			s.logger.Errorf("snapshot: Fail to get mirror accounts, the error is %v", err)
			return err
		}
		if len(accounts) < 1 {
			s.logger.Infof("snapshot: mirror account set is empty on time:%v", curTime)
			return nil
		}
		if err = db.BatchReplaceAccountInfo(accounts); err != nil {
			s.logger.Errorf("snapshot: Fail to batch replace accounts on time:%v, the error is %v", curTime, err)
			return err
		}
		return nil
	})

	//2. refresh gpos vesting balances
	g.Go(func() error {
		balances,err := db.GetMirrorVestingBalances(curTime)
		if err != nil {
			s.logger.Errorf("snapshot: Fail to get mirror vesting balances, the error is %v", err)
			return err
		}
		if len(balances) < 1 {
			s.logger.Infof("snapshot: mirror vesting balance set is empty on time:%v", curTime)
		}
		// an empty set still replaces: every holder withdrew on chain
		if err = db.BatchReplaceVestingBalances(balances); err != nil {
			s.logger.Errorf("snapshot: Fail to batch replace vesting balances on time:%v, the error is %v", curTime, err)
			return err
		}
		return nil
	})

	//3. refresh live vote edges
	g.Go(func() error {
		edges,err := db.GetMirrorVoteEdges(curTime)
		if err != nil {
			s.logger.Errorf("snapshot: Fail to get mirror vote edges, the error is %v", err)
			return err
		}
		if err = db.BatchReplaceVoteEdges(edges); err != nil {
			s.logger.Errorf("snapshot: Fail to batch replace vote edges on time:%v, the error is %v", curTime, err)
			return err
		}
		return nil
	})

	//4. refresh dividend asset configs
	g.Go(func() error {
		assets,err := db.GetMirrorDividendAssets()
		if err != nil {
			s.logger.Errorf("snapshot: Fail to get mirror dividend assets, the error is %v", err)
			return err
		}
		if len(assets) < 1 {
			return nil
		}
		if err = db.UpsertDividendAssets(assets); err != nil {
			s.logger.Errorf("snapshot: Fail to upsert dividend assets on time:%v, the error is %v", curTime, err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Errorf("snapshot: this round snapshot finished with errors, the last is %v", err)
		return
	}
	s.logger.Infoln("Finish this round snapshot")
}
