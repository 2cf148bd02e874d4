package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"negeri-quiz/internal/domain"
	"negeri-quiz/internal/infra/file"
)

func TestSlotWritesAtomically(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	slot := file.NewSlot(dir)

	if _, err := slot.Get(ctx, "gameProgress"); !errors.Is(err, domain.ErrSlotEmpty) {
		t.Fatalf("Get() on missing file error = %v", err)
	}
	if err := slot.Put(ctx, "gameProgress", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gameProgress.json.tmp")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp file renamed away, stat err = %v", err)
	}
	got, err := slot.Get(ctx, "gameProgress")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"version":1}` {
		t.Fatalf("Get() = %s", got)
	}

	if err := slot.Delete(ctx, "gameProgress"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := slot.Delete(ctx, "gameProgress"); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
}

func TestSlotKeepsKeysInsideDir(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	slot := file.NewSlot(dir)

	if err := slot.Put(ctx, "../escape", []byte("x")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".._escape.json")); err != nil {
		t.Fatalf("expected sanitized file inside dir: %v", err)
	}
}
