package dbmigrate

import (
	"testing"

	"github.com/fdg312/nutri-hub/internal/config"
)

func TestSelectDatabaseURL(t *testing.T) {
	tests := []struct {
		name          string
		cfg           config.Config
		requireDirect bool
		wantURL       string
		wantSource    string
		wantWarning   bool
		wantErr       bool
	}{
		{
			name:       "direct wins",
			cfg:        config.Config{DatabaseURLDirect: "postgres://direct", DatabaseURLRaw: "postgres://url", DatabaseURLPooled: "postgres://pooled"},
			wantURL:    "postgres://direct",
			wantSource: "DATABASE_URL_DIRECT",
		},
		{
			name:       "falls back to DATABASE_URL",
			cfg:        config.Config{DatabaseURLRaw: "postgres://url", DatabaseURLPooled: "postgres://pooled"},
			wantURL:    "postgres://url",
			wantSource: "DATABASE_URL",
		},
		{
			name:        "pooled only warns",
			cfg:         config.Config{DatabaseURLPooled: "postgres://pooled"},
			wantURL:     "postgres://pooled",
			wantSource:  "DATABASE_URL_POOLED",
			wantWarning: true,
		},
		{
			name:          "require direct without one",
			cfg:           config.Config{DatabaseURLRaw: "postgres://url"},
			requireDirect: true,
			wantErr:       true,
		},
		{
			name:    "nothing configured",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbURL, source, warning, err := SelectDatabaseURL(&tt.cfg, tt.requireDirect)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dbURL != tt.wantURL || source != tt.wantSource {
				t.Errorf("got dbURL=%q source=%q, want %q %q", dbURL, source, tt.wantURL, tt.wantSource)
			}
			if (warning != "") != tt.wantWarning {
				t.Errorf("warning = %q, want present=%v", warning, tt.wantWarning)
			}
		})
	}
}

func TestSelectTarget_SQLite(t *testing.T) {
	cfg := &config.Config{
		DatabaseURLRaw: "postgres://url",
		Storage: config.StorageConfig{
			Mode:    config.StorageModeSQLite,
			SQLPath: "data/nutri.db",
		},
	}

	target, err := SelectTarget(cfg, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Dialect != DialectSQLite || target.URL != "data/nutri.db" {
		t.Fatalf("expected sqlite target, got %+v", target)
	}
}

func TestSelectTarget_Postgres(t *testing.T) {
	cfg := &config.Config{
		DatabaseURLPooled: "postgres://pooled",
		Storage:           config.StorageConfig{Mode: config.StorageModeAuto},
	}

	target, err := SelectTarget(cfg, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Dialect != DialectPostgres || target.Source != "DATABASE_URL_POOLED" {
		t.Fatalf("expected pooled postgres target, got %+v", target)
	}
	if target.Warning == "" {
		t.Fatal("expected pooled warning")
	}
}
