// Package slots selects and opens the state slot backend from configuration.
package slots

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/blob"
	"github.com/fdg312/nutri-hub/internal/config"
	"github.com/fdg312/nutri-hub/internal/storage"
	"github.com/fdg312/nutri-hub/internal/storage/file"
	"github.com/fdg312/nutri-hub/internal/storage/memory"
	"github.com/fdg312/nutri-hub/internal/storage/postgres"
	"github.com/fdg312/nutri-hub/internal/storage/s3slot"
	"github.com/fdg312/nutri-hub/internal/storage/sqlite"
)

// Open returns the slot for cfg.Storage.Mode and the mode actually used.
//
// In auto mode Postgres is tried when a database URL is set and the file
// backend is used otherwise; a failed Postgres connection falls back to the
// file backend. Explicit modes never fall back.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Slot, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sc := cfg.Storage

	switch sc.Mode {
	case config.StorageModeMemory:
		logger.Info("storage: using in-memory slot (state is lost on restart)")
		return memory.New(), config.StorageModeMemory, nil

	case config.StorageModeFile:
		slot, err := file.New(sc.FilePath)
		if err != nil {
			return nil, "", err
		}
		logger.Info("storage: using file slot", zap.String("path", sc.FilePath))
		return slot, config.StorageModeFile, nil

	case config.StorageModeSQLite:
		slot, err := sqlite.Open(sc.SQLPath, sc.SlotKey)
		if err != nil {
			return nil, "", fmt.Errorf("sqlite slot: %w", err)
		}
		logger.Info("storage: using sqlite slot", zap.String("path", sc.SQLPath), zap.String("key", sc.SlotKey))
		return slot, config.StorageModeSQLite, nil

	case config.StorageModePostgres:
		slot, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("postgres slot: %w", err)
		}
		logger.Info("storage: using postgres slot", zap.String("key", sc.SlotKey))
		return slot, config.StorageModePostgres, nil

	case config.StorageModeS3:
		store, err := blob.NewBlobStore(ctx, sc.S3, logger)
		if err != nil {
			return nil, "", err
		}
		logger.Info("storage: using s3 slot", zap.String("object", s3slot.ObjectKey(sc.S3.Prefix, sc.SlotKey)))
		return s3slot.New(store, sc.S3.Prefix, sc.SlotKey), config.StorageModeS3, nil

	case config.StorageModeAuto, "":
		if cfg.DatabaseURL != "" {
			slot, err := openPostgres(ctx, cfg)
			if err == nil {
				logger.Info("storage: using postgres slot (auto)", zap.String("key", sc.SlotKey))
				return slot, config.StorageModePostgres, nil
			}
			logger.Warn("storage: postgres unavailable, falling back to file slot", zap.Error(err))
		}
		slot, err := file.New(sc.FilePath)
		if err != nil {
			return nil, "", err
		}
		logger.Info("storage: using file slot (auto)", zap.String("path", sc.FilePath))
		return slot, config.StorageModeFile, nil

	default:
		return nil, "", fmt.Errorf("unsupported storage mode: %s", sc.Mode)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (storage.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return postgres.New(ctx, cfg.DatabaseURL, cfg.Storage.SlotKey)
}
