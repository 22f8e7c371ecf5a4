package db

import (
	"errors"
	"fmt"
	"time"

	"gpos_engine/config"
	"gpos_engine/logs"
	"gpos_engine/rpc"
	"gpos_engine/types"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
)

var (
	serDB *gorm.DB
	mirrorDb *gorm.DB
	mirrorDbHost string
	curHeadBlock uint64
	checkInterval = 1 * time.Minute
	stop  chan bool
)

func StartDbService() error {
	logger := logs.GetLogger()
	logger.Debugln("Start db service")
	db,err := getServiceDB()
	if err != nil {
		logger.Errorf("StartDbService: fail to get db,the error is %v", err)
		return err
	}
	serDB = db
	//create tables if not exist
	err = createTables(serDB)
	if err != nil {
		return err
	}
	//seed the window params singleton on first start
	err = initChainParams(serDB)
	if err != nil {
		return err
	}

	mDb,err := getMirrorDb()
	if err != nil {
		logger.Errorf("StartDbService: fail to get ledger mirror db,the error is %v", err)
		return err
	}
	mirrorDb = mDb
	stop = make(chan bool)
	checkMirrorDbValid()
	return nil
}

func createTables(db *gorm.DB) (err error) {
	if db == nil {
		return errors.New("service db is empty")
	}
	logger := logs.GetLogger()
	tables := []interface{}{
		&types.ChainParams{},
		&types.AccountInfo{},
		&types.VestingBalance{},
		&types.VoteEdgeRecord{},
		&types.TallyRecord{},
		&types.DividendAsset{},
		&types.PayoutRecord{},
	}
	for _,table := range tables {
		if !db.HasTable(table) {
			if err = db.CreateTable(table).Error; err != nil {
				logger.Errorf("fail to create table for %T,the error is %v", table, err)
				return err
			}
		}
	}
	return
}

// initChainParams writes the genesis window row if the table is empty; the
// row is mutated in place from then on.
func initChainParams(db *gorm.DB) error {
	logger := logs.GetLogger()
	var count int
	if err := db.Model(&types.ChainParams{}).Count(&count).Error; err != nil {
		logger.Errorf("initChainParams: fail to count chain params, the error is %v", err)
		return err
	}
	if count > 0 {
		return nil
	}
	params := &types.ChainParams{
		Id: 1,
		PeriodStart: config.GenesisPeriodStart,
		VestingPeriod: config.VestingPeriodSec,
		VestingSubperiod: config.VestingSubperiodSec,
	}
	if err := db.Create(params).Error; err != nil {
		logger.Errorf("initChainParams: fail to seed chain params, the error is %v", err)
		return err
	}
	logger.Infof("initChainParams: seeded window params, period start is %v", params.PeriodStart)
	return nil
}

func getMirrorDb() (*gorm.DB, error) {
	if mirrorDb != nil {
		return mirrorDb,nil
	}
	logger := logs.GetLogger()
	list,err := config.GetMirrorDbConfigList()
	if err != nil {
		logger.Errorf("getMirrorDb: fail to get ledger mirror db config, the error is %v", err)
		return nil, errors.New("open db: fail to get mirror db config")
	}
	var dbErr error
	for _,cf := range list {
		db,err := openDb(cf)
		if err != nil {
			logger.Errorf("getMirrorDb: fail to open db, the error is %v", err)
			dbErr = err
		} else if db != nil {
			mirrorDbHost = cf.Host
			mirrorDb = db
			return db,nil
		}
	}
	return nil, dbErr
}

func getServiceDB() (*gorm.DB,error){
	log := logs.GetLogger()
	if serDB == nil {
		dbCfg,err := config.GetServiceDbConfig()
		if err != nil {
			log.Errorf("getServiceDB: fail to get db config, the error is %v ", err)
			return nil, errors.New("open db: fail to get service db config")
		}

		db,err := openDb(dbCfg)
		if err != nil {
			log.Errorf("getServiceDB: fail to open db, the error is %v ", err)
			return nil,errors.New("open db: fail to open")
		}
		return db,nil
	}
	return serDB,nil
}

func openDb(dbCfg *config.DbConfig) (*gorm.DB, error) {
	log := logs.GetLogger()
	source := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port,dbCfg.DbName)
	db,err := gorm.Open(dbCfg.Driver, source)
	if err != nil {
		log.Errorf("openDb: fail to open db: %v, the error is %v ", dbCfg, err)
		return nil,errors.New("fail to open db")
	}
	return db,nil
}

// Timing check the mirror database status regularly(check head block change)
func checkMirrorDbValid()  {
	ticker := time.NewTicker(checkInterval)
	go func() {
		for {
			select {
			case <- ticker.C:
				checkHeadBlockStatus()
			case <- stop:
				ticker.Stop()
				return
			}
		}
	}()
}

func checkHeadBlockStatus()  {
	logger := logs.GetLogger()
	logger.Debugln("check mirror head block status")
	if mirrorDb == nil {
		return
	}
	var status types.LedgerStatus
	err := mirrorDb.Take(&status).Error
	if err != nil {
		logger.Errorf("checkHeadBlockStatus: fail to get ledger head status, the error is %v", err)
		return
	}
	if status.HeadBlockNum <= curHeadBlock {
		logger.Infof("new head block is %v, cache head block is %v", status.HeadBlockNum, curHeadBlock)
		logger.Infof("checkHeadBlockStatus: Need to switch to another ledger mirror db")
		switchMirrorDb()
	}
	curHeadBlock = status.HeadBlockNum
}

// switchMirrorDb walks the configured mirror list and moves to the first
// node that is both alive (gRPC health probe) and openable.
func switchMirrorDb() {
	logger := logs.GetLogger()
	list,err := config.GetMirrorDbConfigList()
	if err != nil {
		logger.Errorf("switchMirrorDb: fail to get db config list, the error is %v", err)
		return
	}
	for _,cf := range list {
		if cf.Host == mirrorDbHost {
			continue
		}
		if cf.HealthAddr != "" && !rpc.ProbeMirrorNode(cf.HealthAddr) {
			logger.Infof("switchMirrorDb: mirror node %v failed the health probe, skip", cf.Host)
			continue
		}
		db,err := openDb(cf)
		if err == nil {
			logger.Infof("switchMirrorDb: success to switch origin mirror db:%v to new db:%v", mirrorDbHost, cf.Host)
			mirrorDb = db
			mirrorDbHost = cf.Host
			return
		}
		logger.Errorf("switchMirrorDb: fail to switch new db, the error is %v", err)
	}
}

func CloseDbService() {
	logger := logs.GetLogger()
	logger.Infoln("Close my sql database")
	if stop != nil {
		close(stop)
	}
	if serDB != nil {
		if err := serDB.Close(); err != nil {
			logger.Errorf("Fail to close serve db, the error is %v", err)
		}
	}
	if mirrorDb != nil {
		if err := mirrorDb.Close(); err != nil {
			logger.Errorf("Fail to close ledger mirror db, the error is %v", err)
		}
	}
}
