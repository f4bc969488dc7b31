package main

import (
	"os"

	"github.com/deusflow/factcheck/internal/app"
	"github.com/deusflow/factcheck/internal/config"
	"github.com/deusflow/factcheck/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(false)
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug)

	if err := app.Run(cfg); err != nil {
		logger.Error("factcheck stopped", "error", err)
		os.Exit(1)
	}
}
