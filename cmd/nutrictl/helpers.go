package main

import (
	"context"
	"encoding/json"
	"io"

	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/config"
	"github.com/fdg312/nutri-hub/internal/logging"
	"github.com/fdg312/nutri-hub/internal/storage"
	"github.com/fdg312/nutri-hub/internal/storage/slots"
)

// loadConfig applies the persistent flags on top of the environment.
func loadConfig() *config.Config {
	cfg := config.Load()
	if stateFile != "" {
		cfg.Storage.FilePath = stateFile
		if storageMode == "" {
			cfg.Storage.Mode = config.StorageModeFile
		}
	}
	if storageMode != "" {
		cfg.Storage.Mode = storageMode
	}
	return cfg
}

func newLogger(cfg *config.Config) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := logging.New("debug", "console")
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// openBridge opens the configured slot. Callers must Close the bridge.
func openBridge(ctx context.Context, cfg *config.Config) (*storage.Bridge, error) {
	logger := newLogger(cfg)
	slot, _, err := slots.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return storage.NewBridge(slot, logger, nil), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
