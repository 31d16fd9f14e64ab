// Package main wires the progress pipeline into a standalone status daemon:
// tracked tasks feed the hub, sinks fan out to logs, Prometheus, and the
// in-memory registry, and the HTTP API serves status reads.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/taskmeter/taskmeter/config"
	"github.com/taskmeter/taskmeter/httpapi"
	"github.com/taskmeter/taskmeter/hub"
	"github.com/taskmeter/taskmeter/internal/logging"
	"github.com/taskmeter/taskmeter/registry"
	"github.com/taskmeter/taskmeter/sinks"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	taskReg := registry.New()
	promSink, err := sinks.NewPrometheusSink(promReg)
	if err != nil {
		logger.Fatal("register progress metrics", zap.Error(err))
	}
	progressHub := hub.FromConfig(cfg.Hub, logging.Named(logger, "hub"),
		sinks.NewLogSink(logging.Named(logger, "progress")),
		promSink,
		sinks.NewRegistrySink(taskReg),
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := progressHub.Close(closeCtx); err != nil {
			logger.Warn("hub close failed", zap.Error(err))
		}
	}()

	server := httpapi.NewServer(
		taskReg,
		promReg,
		logging.Named(logger, "httpapi"),
		time.Duration(cfg.Server.RequestTimeoutSec)*time.Second,
	)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	if err := server.Serve(ctx, addr); err != nil {
		logger.Fatal("status server failed", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
