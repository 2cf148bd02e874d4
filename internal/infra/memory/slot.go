package memory

import (
	"context"
	"sync"

	"negeri-quiz/internal/domain"
)

// Slot is an in-memory implementation of app.Slot. Useful for tests and for
// running without durable storage.
type Slot struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewSlot() *Slot {
	return &Slot{data: make(map[string][]byte)}
}

func (s *Slot) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, domain.ErrSlotEmpty
	}
	return append([]byte(nil), data...), nil
}

func (s *Slot) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *Slot) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
