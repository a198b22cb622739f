package memory

import (
	"context"
	"sync"

	"github.com/fdg312/nutri-hub/internal/storage"
)

// MemorySlot — in-memory реализация storage.Slot
type MemorySlot struct {
	mu   sync.RWMutex
	data []byte
	set  bool
}

// New создаёт пустой MemorySlot
func New() *MemorySlot {
	return &MemorySlot{}
}

// NewWithData создаёт MemorySlot с уже сохранёнными байтами
func NewWithData(data []byte) *MemorySlot {
	s := New()
	s.data = append([]byte(nil), data...)
	s.set = true
	return s
}

func (s *MemorySlot) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return nil, storage.ErrSlotEmpty
	}
	return append([]byte(nil), s.data...), nil
}

func (s *MemorySlot) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.set = true
	return nil
}

func (s *MemorySlot) Close() error {
	return nil
}
