package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/config"
	"github.com/fdg312/nutri-hub/internal/dbmigrate"
	"github.com/fdg312/nutri-hub/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/migrate [up|status|down]")
		os.Exit(2)
	}

	command := os.Args[1]
	switch command {
	case "up", "status", "down":
	default:
		fmt.Fprintf(os.Stderr, "unsupported command %q (allowed: up, status, down)\n", command)
		os.Exit(2)
	}

	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync(logger)

	target, err := dbmigrate.SelectTarget(cfg, false)
	if err != nil {
		logger.Fatal("migrate: no target", zap.Error(err))
	}
	if target.Warning != "" {
		logger.Warn("migrate: " + target.Warning)
	}
	logger.Info("migrate", zap.String("command", command), zap.String("dialect", target.Dialect), zap.String("using", target.Source))

	if err := dbmigrate.Run(command, target.Dialect, target.URL); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	logger.Info("migrate: completed successfully", zap.String("command", command))
}
