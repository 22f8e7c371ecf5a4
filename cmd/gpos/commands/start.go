package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gpos_engine/check"
	"gpos_engine/config"
	"gpos_engine/db"
	"gpos_engine/logs"
	"gpos_engine/maintenance"
	"gpos_engine/snapshot"
	"gpos_engine/webServer"

	"github.com/coschain/cobra"
	"github.com/ethereum/go-ethereum/log"
)

var (
	svEnv string
	cfgPath string
)

var StartCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "start",
		Short:     "start gpos maintenance service",
		Long:      "start gpos maintenance service,if has arg 'env',will use it for service env",
		ValidArgs: []string{"env"},
		Run:       startService,
	}
	cmd.Flags().StringVarP(&svEnv, "env", "e", "pro", "service env (default is pro)")
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "./gpos_config.json", "config json file path")

	return cmd
}

func startService(cmd *cobra.Command, args []string)  {
	fmt.Println("start gpos maintenance service")

	err := config.SetConfigEnv(svEnv)
	if err != nil {
		fmt.Println("StartService:fail to set env")
		os.Exit(1)
	}

	//load config json file
	err = config.LoadGposConfig(cfgPath)
	if err != nil {
		fmt.Println("StartService:fail to load config file ")
		os.Exit(1)
	}

	logger,err := logs.StartLogService()
	if err != nil {
		log.Error("fail to start log service")
		os.Exit(1)
	}
	logger.Debug("start gpos maintenance service")

	//start db service
	err = db.StartDbService()
	if err != nil {
		logger.Error("StartDbService:fail to start db service")
		os.Exit(1)
	}
	defer db.CloseDbService()
	logger.Debugln("Successfully start db service")

	//start stake state snapshot service
	syncSv,err := snapshot.NewStakeSyncService()
	if err != nil {
		logger.Error(fmt.Sprintf("NewStakeSyncService:fail to create new snapshot service, error is %v", err))
		os.Exit(1)
	}
	syncSv.StartSyncService()

	//start maintenance tick service
	err = maintenance.StartMaintenanceService()
	if err != nil {
		logger.Errorf("StartMaintenanceService: fail to start maintenance service, the error is %v", err)
		os.Exit(1)
	}

	checkSv := check.NewPayoutResultChecker()
	checkSv.StartCheck()
	defer func() {
		syncSv.StopSyncService()
		maintenance.StopMaintenanceService()
		checkSv.StopCheck()
	}()

	//start http service
	err = webServer.StartServer()
	if err != nil {
		os.Exit(1)
	}
	defer webServer.StopServer()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	for {
		s := <-c
		switch s {
		case syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT:
			return
		case syscall.SIGHUP:
		default:
			return
		}
	}
}
