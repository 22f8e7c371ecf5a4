package webServer

import (
	"context"
	"net/http"
	"time"

	"gpos_engine/config"
	"gpos_engine/logs"
	"gpos_engine/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var server *http.Server

// StartServer brings the read-only query API up in the background.
func StartServer() error {
	logger := logs.GetLogger()
	metrics.Register()

	mux := http.NewServeMux()
	mux.HandleFunc("/gpos/account", getAccountWeight)
	mux.HandleFunc("/gpos/tally", getTallyTotals)
	mux.HandleFunc("/gpos/payouts", getPayoutHistory)
	mux.HandleFunc("/gpos/dividends", getDividendSchedule)
	mux.HandleFunc("/gpos/window", getWindowInfo)
	mux.Handle("/metrics", promhttp.Handler())

	server = &http.Server{
		Addr: ":" + config.GetHttpPort(),
		Handler: mux,
	}
	go func() {
		logger.Infof("web server listening on port %v", config.GetHttpPort())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("StartServer: web server stopped, the error is %v", err)
		}
	}()
	return nil
}

func StopServer() {
	if server == nil {
		return
	}
	ctx,cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logs.GetLogger().Errorf("StopServer: fail to shut web server down, the error is %v", err)
	}
}
