package slots

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fdg312/nutri-hub/internal/config"
	"github.com/fdg312/nutri-hub/internal/storage/file"
	"github.com/fdg312/nutri-hub/internal/storage/memory"
	"github.com/fdg312/nutri-hub/internal/storage/sqlite"
)

func testConfig(t *testing.T, mode string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Storage: config.StorageConfig{
			Mode:     mode,
			SlotKey:  config.DefaultStateSlotKey,
			FilePath: filepath.Join(dir, "state.json"),
			SQLPath:  filepath.Join(dir, "nutri.db"),
		},
	}
}

func TestOpenModes(t *testing.T) {
	ctx := context.Background()

	slot, mode, err := Open(ctx, testConfig(t, config.StorageModeMemory), nil)
	if err != nil || mode != config.StorageModeMemory {
		t.Fatalf("memory: mode=%s err=%v", mode, err)
	}
	if _, ok := slot.(*memory.MemorySlot); !ok {
		t.Fatalf("expected *memory.MemorySlot, got %T", slot)
	}

	slot, mode, err = Open(ctx, testConfig(t, config.StorageModeFile), nil)
	if err != nil || mode != config.StorageModeFile {
		t.Fatalf("file: mode=%s err=%v", mode, err)
	}
	if _, ok := slot.(*file.FileSlot); !ok {
		t.Fatalf("expected *file.FileSlot, got %T", slot)
	}

	slot, mode, err = Open(ctx, testConfig(t, config.StorageModeSQLite), nil)
	if err != nil || mode != config.StorageModeSQLite {
		t.Fatalf("sqlite: mode=%s err=%v", mode, err)
	}
	if _, ok := slot.(*sqlite.SQLiteSlot); !ok {
		t.Fatalf("expected *sqlite.SQLiteSlot, got %T", slot)
	}
	slot.Close()
}

func TestOpenAutoWithoutDatabaseUsesFile(t *testing.T) {
	_, mode, err := Open(context.Background(), testConfig(t, config.StorageModeAuto), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != config.StorageModeFile {
		t.Fatalf("expected file mode, got %s", mode)
	}
}

func TestOpenS3IncompleteFails(t *testing.T) {
	if _, _, err := Open(context.Background(), testConfig(t, config.StorageModeS3), nil); err == nil {
		t.Fatal("expected error for incomplete S3 config")
	}
}

func TestOpenUnknownMode(t *testing.T) {
	if _, _, err := Open(context.Background(), testConfig(t, "floppy"), nil); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
