package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fdg312/nutri-hub/internal/storage"
)

func newTestSlot(t *testing.T, path, key string) *SQLiteSlot {
	t.Helper()
	s, err := Open(path, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSlot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nutri.db")
	s := newTestSlot(t, path, "state")

	if _, err := s.Load(ctx); !errors.Is(err, storage.ErrSlotEmpty) {
		t.Fatalf("expected ErrSlotEmpty, got %v", err)
	}

	if err := s.Save(ctx, []byte(`{"streak":1}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, []byte(`{"streak":2}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `{"streak":2}` {
		t.Fatalf("unexpected value %s", got)
	}
}

func TestSQLiteSlotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nutri.db")

	a := newTestSlot(t, path, "a")
	if err := a.Save(ctx, []byte(`"a"`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	a.Close()

	b := newTestSlot(t, path, "b")
	if _, err := b.Load(ctx); !errors.Is(err, storage.ErrSlotEmpty) {
		t.Fatalf("expected slot b to be empty, got %v", err)
	}
}
