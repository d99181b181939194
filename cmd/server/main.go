// Package main - Entry point for the mua-risk HTTP server
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mua-risk/adapters/analysisfile"
	"mua-risk/api"
	"mua-risk/internal/config"
	"mua-risk/internal/logging"
)

const version = "0.1.0"

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "Path to config file")
	addr := flag.String("addr", "", "Server address (overrides config)")
	uiPath := flag.String("ui", "", "Path to static UI files (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if *addr == "" {
		*addr = cfg.Server.Addr
	}

	apiServer := api.NewServer(version, api.Options{
		Defaults: analysisfile.Defaults{
			UseStudentT:        cfg.Analysis.UseStudentT,
			TargetConsumerRisk: cfg.Analysis.TargetConsumerRisk,
		},
		Precision: cfg.Analysis.Precision,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiServer))
	if *uiPath != "" {
		mux.Handle("/", http.FileServer(http.Dir(*uiPath)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("mua-risk server starting",
		zap.String("version", version),
		zap.String("addr", *addr),
		zap.String("api", "/api"))

	if err := api.Serve(ctx, *addr, mux); err != nil {
		logging.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
