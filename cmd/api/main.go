package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/config"
	"github.com/fdg312/nutri-hub/internal/dbmigrate"
	"github.com/fdg312/nutri-hub/internal/httpserver"
	"github.com/fdg312/nutri-hub/internal/logging"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync(logger)

	for _, w := range cfg.Warnings {
		logger.Warn("config: " + w)
	}
	printStartupBanner(logger, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if cfg.RunMigrationsOnStartup {
		runStartupMigrations(logger, cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := httpserver.New(ctx, cfg, httpserver.WithLogger(logger))
	if err != nil {
		logger.Fatal("server init failed", zap.Error(err))
	}
	defer server.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
		return
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func runStartupMigrations(logger *zap.Logger, cfg *config.Config) {
	target, err := dbmigrate.SelectTarget(cfg, true)
	if err != nil {
		logger.Fatal("startup migrations", zap.Error(err))
	}

	logger.Info("startup migrations", zap.String("command", "up"), zap.String("dialect", target.Dialect), zap.String("using", target.Source))
	if err := dbmigrate.Run("up", target.Dialect, target.URL); err != nil {
		logger.Fatal("startup migrations failed", zap.Error(err))
	}
	logger.Info("startup migrations completed")
}

// printStartupBanner logs a one-time summary of the resolved configuration.
// No secrets are ever printed, only masked indicators ("set" / "not set").
func printStartupBanner(logger *zap.Logger, cfg *config.Config) {
	fields := []zap.Field{
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
		zap.String("time_zone", cfg.Location.String()),

		zap.String("storage_mode", cfg.Storage.Mode),
		zap.String("slot_key", cfg.Storage.SlotKey),
		zap.String("database_url", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled)),
		zap.String("database_url_direct", setOrNot(cfg.DatabaseURLDirect)),
		zap.Bool("migrations_on_startup", cfg.RunMigrationsOnStartup),

		zap.String("auth_mode", cfg.AuthMode),
		zap.Bool("auth_required", cfg.AuthRequired),
		zap.String("jwt_secret", secretStatus(cfg.JWTSecret, "change_me")),

		zap.String("ai_mode", cfg.AIMode),
		zap.Int("recipes_count", cfg.RecipesCount),
		zap.Int("upload_max_mb", cfg.UploadMaxMB),
	}

	switch cfg.Storage.Mode {
	case config.StorageModeFile, config.StorageModeAuto:
		fields = append(fields, zap.String("state_file", cfg.Storage.FilePath))
	case config.StorageModeSQLite:
		fields = append(fields, zap.String("sqlite_path", cfg.Storage.SQLPath))
	}
	if cfg.Storage.Mode == config.StorageModeS3 || cfg.Storage.S3.IsConfigured() {
		fields = append(fields, zap.String("s3", cfg.Storage.S3.DiagnosticsSummary()))
	}

	switch cfg.AIMode {
	case config.AIModeOpenAI:
		fields = append(fields,
			zap.String("openai_model", cfg.OpenAIModel),
			zap.String("openai_api_key", setOrNot(cfg.OpenAIAPIKey)),
		)
	case config.AIModeGemini:
		fields = append(fields,
			zap.String("gemini_model", cfg.Gemini.Model),
			zap.String("gemini_project", config.NonEmptyOrDash(cfg.Gemini.ProjectID)),
			zap.String("gemini_location", cfg.Gemini.Location),
			zap.String("gemini_credentials", setOrNot(cfg.Gemini.CredentialsFile)),
		)
	}

	logger.Info("nutri-hub api starting", fields...)
}

// ---- helpers (no secrets) ----

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}
