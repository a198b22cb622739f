package config

import (
	"strings"
	"testing"
)

func TestS3ConfigIsConfigured(t *testing.T) {
	t.Run("empty config is not configured", func(t *testing.T) {
		cfg := S3Config{}
		if cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=false for empty config")
		}
	})

	t.Run("required fields set is configured", func(t *testing.T) {
		cfg := S3Config{
			Endpoint:        "https://storage.yandexcloud.net",
			Region:          "ru-central1",
			Bucket:          "bucket",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		}
		if !cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=true when all required fields are set")
		}
	})
}

func TestS3ConfigMissingRequired(t *testing.T) {
	cfg := S3Config{
		Endpoint: "https://storage.yandexcloud.net",
		Bucket:   "bucket",
	}
	missing := cfg.MissingRequired()

	want := []string{"S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY"}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %d (%v)", len(want), len(missing), missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected missing[%d]=%s, got %s", i, want[i], missing[i])
		}
	}
}

func TestS3ConfigDiagnostics(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		level, code, _ := (S3Config{}).Diagnostics()
		if level != "INFO" || code != "s3_not_configured" {
			t.Fatalf("expected INFO/s3_not_configured, got %s/%s", level, code)
		}
	})

	t.Run("partial config", func(t *testing.T) {
		level, code, _ := (S3Config{Endpoint: "https://storage.yandexcloud.net"}).Diagnostics()
		if level != "WARN" || code != "s3_partial_config" {
			t.Fatalf("expected WARN/s3_partial_config, got %s/%s", level, code)
		}
	})

	t.Run("summary hides secrets", func(t *testing.T) {
		summary := S3Config{AccessKeyID: "AKIA123", SecretAccessKey: "shh"}.DiagnosticsSummary()
		if strings.Contains(summary, "AKIA123") || strings.Contains(summary, "shh") {
			t.Fatalf("summary leaks secrets: %s", summary)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "ENV", "STORAGE_MODE", "AI_MODE", "STATE_SLOT_KEY", "RECIPES_COUNT", "TIME_ZONE", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Env != "local" {
		t.Fatalf("expected env=local, got %s", cfg.Env)
	}
	if cfg.Storage.Mode != StorageModeAuto {
		t.Fatalf("expected storage mode auto, got %s", cfg.Storage.Mode)
	}
	if cfg.Storage.SlotKey != DefaultStateSlotKey {
		t.Fatalf("expected slot key %s, got %s", DefaultStateSlotKey, cfg.Storage.SlotKey)
	}
	if cfg.AIMode != AIModeMock {
		t.Fatalf("expected ai mode mock, got %s", cfg.AIMode)
	}
	if cfg.RecipesCount != 4 {
		t.Fatalf("expected 4 recipes, got %d", cfg.RecipesCount)
	}
	if cfg.LogFormat != "console" {
		t.Fatalf("expected console log format locally, got %s", cfg.LogFormat)
	}
	if len(cfg.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", cfg.Warnings)
	}
}

func TestLoadUnknownModesFallBack(t *testing.T) {
	t.Setenv("STORAGE_MODE", "floppy")
	t.Setenv("AI_MODE", "oracle")
	t.Setenv("TIME_ZONE", "Mars/Olympus_Mons")

	cfg := Load()
	if cfg.Storage.Mode != StorageModeAuto {
		t.Fatalf("expected storage fallback to auto, got %s", cfg.Storage.Mode)
	}
	if cfg.AIMode != AIModeMock {
		t.Fatalf("expected ai fallback to mock, got %s", cfg.AIMode)
	}
	if len(cfg.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d (%v)", len(cfg.Warnings), cfg.Warnings)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "mock is valid", cfg: Config{AIMode: AIModeMock, Storage: StorageConfig{Mode: StorageModeMemory}}},
		{name: "openai without key", cfg: Config{AIMode: AIModeOpenAI}, wantErr: "OPENAI_API_KEY"},
		{name: "gemini without project", cfg: Config{AIMode: AIModeGemini}, wantErr: "GEMINI_PROJECT_ID"},
		{name: "postgres without url", cfg: Config{AIMode: AIModeMock, Storage: StorageConfig{Mode: StorageModePostgres}}, wantErr: "DATABASE_URL"},
		{name: "s3 incomplete", cfg: Config{AIMode: AIModeMock, Storage: StorageConfig{Mode: StorageModeS3}}, wantErr: "S3_BUCKET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
