package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/metrics"
	"github.com/fdg312/nutri-hub/internal/state"
)

// ErrSlotEmpty is returned by Slot.Load when nothing has been saved yet.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot — один именованный слот ключ-значение, хранящий весь снимок состояния
type Slot interface {
	// Load возвращает сохранённые байты или ErrSlotEmpty
	Load(ctx context.Context) ([]byte, error)

	// Save перезаписывает слот целиком
	Save(ctx context.Context, data []byte) error

	// Close освобождает ресурсы (соединения, файлы)
	Close() error
}

// Bridge moves the whole AppState to and from a Slot. It implements
// state.Persister.
type Bridge struct {
	slot    Slot
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewBridge wraps slot. logger and m may be nil.
func NewBridge(slot Slot, logger *zap.Logger, m *metrics.Metrics) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{slot: slot, logger: logger, metrics: m}
}

// Load returns the persisted state. An absent, unreadable or malformed slot
// yields state.Default(); the reason is logged and counted, never returned.
func (b *Bridge) Load(ctx context.Context) state.AppState {
	data, err := b.slot.Load(ctx)
	switch {
	case errors.Is(err, ErrSlotEmpty):
		b.logger.Info("state: slot empty, starting from default")
		b.metrics.StateLoadedDefault("absent")
		return state.Default()
	case err != nil:
		b.logger.Warn("state: slot unreadable, starting from default", zap.Error(err))
		b.metrics.StateLoadedDefault("unreadable")
		return state.Default()
	}

	s, err := state.Decode(data)
	if err != nil {
		b.logger.Warn("state: slot corrupted, starting from default", zap.Error(err), zap.Int("bytes", len(data)))
		b.metrics.StateLoadedDefault("corrupt")
		return state.Default()
	}
	return s
}

// Save writes the full snapshot.
func (b *Bridge) Save(ctx context.Context, s state.AppState) error {
	data, err := state.Encode(s)
	if err != nil {
		b.metrics.StateSaved(err)
		return fmt.Errorf("encode state: %w", err)
	}
	err = b.slot.Save(ctx, data)
	b.metrics.StateSaved(err)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Close closes the underlying slot.
func (b *Bridge) Close() error {
	return b.slot.Close()
}
