package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"negeri-quiz/internal/domain"
)

// Slot stores each key as <dir>/<key>.json. Writes go through a temp file
// and a rename so a crash mid-write never leaves a torn blob behind.
type Slot struct {
	dir string
	mu  sync.Mutex
}

func NewSlot(dir string) *Slot {
	return &Slot{dir: dir}
}

func (s *Slot) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, err
	}
	return data, nil
}

func (s *Slot) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	path := s.path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (s *Slot) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Slot) path(key string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, key)
	return filepath.Join(s.dir, name+".json")
}
