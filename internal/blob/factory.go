package blob

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	appcfg "github.com/fdg312/nutri-hub/internal/config"
)

// NewBlobStore builds an S3 store from cfg, logging diagnostics without secrets.
// It fails when the configuration is incomplete.
func NewBlobStore(ctx context.Context, cfg appcfg.S3Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.IsConfigured() {
		missing := cfg.MissingRequired()
		logger.Error("blob.s3: config incomplete",
			zap.String("code", "s3_config_incomplete"),
			zap.Strings("missing", missing),
			zap.String("summary", cfg.DiagnosticsSummary()),
		)
		return nil, fmt.Errorf("S3 requested but missing required config: %s", strings.Join(missing, ", "))
	}

	logger.Info("blob.s3: ready", zap.String("code", "s3_ready"), zap.String("summary", cfg.DiagnosticsSummary()))
	store, err := NewS3Store(ctx, cfg.Endpoint, cfg.Region, cfg.Bucket, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		logger.Error("blob.s3: init failed", zap.Error(err))
		return nil, fmt.Errorf("S3 init failed: %w", err)
	}
	return store, nil
}
