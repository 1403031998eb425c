// Package main is the entry point for the lumen viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/app"
	"github.com/Faultbox/lumen/internal/config"
	"github.com/Faultbox/lumen/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== lumen viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	runErr := a.Run()
	a.Close()
	if runErr != nil {
		logger.Error("viewer error", zap.Error(runErr))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
