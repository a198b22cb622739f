// Package s3slot stores the state slot as a single object in an
// S3-compatible bucket.
package s3slot

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/fdg312/nutri-hub/internal/blob"
	"github.com/fdg312/nutri-hub/internal/storage"
)

// Slot keeps the snapshot at <prefix>/<key>.json.
type Slot struct {
	store     blob.Store
	objectKey string
}

// New creates a slot over store.
func New(store blob.Store, prefix, key string) *Slot {
	return &Slot{store: store, objectKey: ObjectKey(prefix, key)}
}

// ObjectKey builds the object name for a slot key.
func ObjectKey(prefix, key string) string {
	if prefix == "" {
		return key + ".json"
	}
	return path.Join(prefix, key+".json")
}

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.store.GetObject(ctx, s.objectKey)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, storage.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load slot object: %w", err)
	}
	return data, nil
}

func (s *Slot) Save(ctx context.Context, data []byte) error {
	if _, err := s.store.PutObject(ctx, s.objectKey, data, "application/json"); err != nil {
		return fmt.Errorf("failed to save slot object: %w", err)
	}
	return nil
}

func (s *Slot) Close() error {
	return nil
}
