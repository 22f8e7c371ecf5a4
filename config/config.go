package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"strconv"
	"sync"
)

const (
	EnvDev  = "dev"
	EnvPro  = "pro"
	EnvTest = "test"
)

type MirrorDbInfo struct {
	MirrorDbDriver   string `json:"mirrorDbDriver"`
	MirrorDbUser     string `json:"mirrorDbUser"`
	MirrorDbPassword string `json:"mirrorDbPassword"`
	MirrorDbName     string `json:"mirrorDbName"`
	MirrorDbHost     string `json:"mirrorDbHost"`
	MirrorDbPort     string `json:"mirrorDbPort"`
	HealthAddr       string `json:"healthAddr"`
}

type EnvConfig struct {
	HttpPort      string      `json:"httpPort"`
	DbDriver      string      `json:"dbDriver"`
	DbUser        string      `json:"dbUser"`
	DbPassword    string      `json:"dbPassword"`
	DbName        string      `json:"dbName"`
	DbHost        string      `json:"dbHost"`
	DbPort        string      `json:"dbPort"`
	LogPath       string      `json:"logPath"`
	MirrorDbList  []MirrorDbInfo `json:"mirrorDbList"`
	MaintenanceInterval string `json:"maintenanceInterval"`
	SnapshotInterval    string `json:"snapshotInterval"`
	VestingPeriod       string `json:"vestingPeriod"`
	VestingSubperiod    string `json:"vestingSubperiod"`
	GenesisPeriodStart  string `json:"genesisPeriodStart"`
}

type GposConfig struct {
	Dev    EnvConfig     `json:"dev"`
	Pro    EnvConfig     `json:"pro"`
	Test   EnvConfig     `json:"test"`
}

type DbConfig struct {
	Driver string
	User   string
	Password string
	Host     string
	Port     string
	DbName   string
	HealthAddr string
}

var (
	gposConfig *EnvConfig
	configOnce sync.Once
	env = EnvDev // default env is dev
	MaintenanceTimeInterval int64
	SnapshotTimeInterval int64
	VestingPeriodSec int64
	VestingSubperiodSec int64
	GenesisPeriodStart int64
)

// read config json file
func LoadGposConfig(path string) error {
	if gposConfig != nil {
		return nil
	}
	var config GposConfig
	cfgJson,err := ioutil.ReadFile(path)
	if err != nil {
		fmt.Printf("LoadGposConfig:fail to read json file, the error is %v", err)
		return err
	}
	if err := json.Unmarshal(cfgJson, &config); err != nil {
		fmt.Printf("LoadGposConfig: fail to Unmarshal json, the error is %v \n", err)
		return err
	}
	if IsDevEnv() {
		gposConfig = &config.Dev
	} else if IsTestEnv() {
		gposConfig = &config.Test
	} else if IsProEnv(){
		gposConfig = &config.Pro
	} else {
		return errors.New("fail to get gpos config of unKnown env")
	}

	MaintenanceTimeInterval,err = strconv.ParseInt(gposConfig.MaintenanceInterval, 10, 64)
	if err != nil {
		return errors.New(fmt.Sprintf("fail to convert MaintenanceInterval:%v to int64, the error is %v", gposConfig.MaintenanceInterval, err))
	}
	SnapshotTimeInterval,err = strconv.ParseInt(gposConfig.SnapshotInterval, 10, 64)
	if err != nil {
		return errors.New(fmt.Sprintf("fail to convert SnapshotInterval:%v to int64, the error is %v", gposConfig.SnapshotInterval, err))
	}
	VestingPeriodSec,err = strconv.ParseInt(gposConfig.VestingPeriod, 10, 64)
	if err != nil {
		return errors.New(fmt.Sprintf("fail to convert VestingPeriod:%v to int64, the error is %v", gposConfig.VestingPeriod, err))
	}
	VestingSubperiodSec,err = strconv.ParseInt(gposConfig.VestingSubperiod, 10, 64)
	if err != nil {
		return errors.New(fmt.Sprintf("fail to convert VestingSubperiod:%v to int64, the error is %v", gposConfig.VestingSubperiod, err))
	}
	GenesisPeriodStart,err = strconv.ParseInt(gposConfig.GenesisPeriodStart, 10, 64)
	if err != nil {
		return errors.New(fmt.Sprintf("fail to convert GenesisPeriodStart:%v to int64, the error is %v", gposConfig.GenesisPeriodStart, err))
	}
	if VestingPeriodSec <= 0 || VestingSubperiodSec <= 0 {
		return errors.New("vesting period and subperiod must be positive")
	}
	if VestingPeriodSec%VestingSubperiodSec != 0 {
		return errors.New("vesting subperiod must divide evenly into vesting period")
	}
	return nil
}

func SetConfigEnv(ev string) error{
	if ev != EnvPro && ev != EnvDev && ev != EnvTest {
		return errors.New(fmt.Sprintf("Fail to set unknown environment %v", ev))
	}
	configOnce.Do(func() {
		env = ev
	})
	return nil
}

func IsDevEnv() bool {
	return env == EnvDev
}

func IsTestEnv() bool {
	return env == EnvTest
}

func IsProEnv() bool {
	return env == EnvPro
}

func GetHttpPort() string {
	return gposConfig.HttpPort
}

// get log output path
func GetLogOutputPath() string {
	if gposConfig != nil {
		return gposConfig.LogPath
	}
	return ""
}

// get ledger mirror database config list
func GetMirrorDbConfigList() ([]*DbConfig, error) {
	var list []*DbConfig
	if gposConfig == nil {
		return nil, errors.New("can't get mirror db config from empty gpos config")
	}
	for _,cf := range gposConfig.MirrorDbList {
		info := &DbConfig{}
		info.Driver = cf.MirrorDbDriver
		info.User = cf.MirrorDbUser
		info.Password = cf.MirrorDbPassword
		info.Port= cf.MirrorDbPort
		info.Host = cf.MirrorDbHost
		info.DbName = cf.MirrorDbName
		info.HealthAddr = cf.HealthAddr
		list = append(list, info)
	}
	return list,nil
}

// get local gpos service db config
func GetServiceDbConfig() (*DbConfig,error) {
	if gposConfig == nil {
		return nil, errors.New("can't get service db config from empty gpos config")
	}
	config := &DbConfig{}
	config.Driver = gposConfig.DbDriver
	config.User = gposConfig.DbUser
	config.Password = gposConfig.DbPassword
	config.Port= gposConfig.DbPort
	config.Host = gposConfig.DbHost
	config.DbName = gposConfig.DbName
	return config, nil
}

// get health-probe address of every configured mirror node
func GetMirrorHealthAddrList() ([]string,error) {
	if gposConfig == nil {
		return nil, errors.New("can't get health address list from empty config")
	}
	var list []string
	for _,cf := range gposConfig.MirrorDbList {
		if len(cf.HealthAddr) > 0 {
			list = append(list, cf.HealthAddr)
		}
	}
	return list,nil
}

func GetHealthProbeTimeout() int  {
	return 3
}
