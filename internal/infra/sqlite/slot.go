package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"negeri-quiz/internal/domain"
)

// Slot keeps progress blobs in a single SQLite table.
type Slot struct {
	db *sql.DB
}

func NewSlot(filePath string) (*Slot, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filePath)
	if err != nil {
		return nil, err
	}
	// One writer per process; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	s := &Slot{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Slot) Close() error {
	return s.db.Close()
}

func (s *Slot) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM progress_slots WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Slot) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress_slots (key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().UnixMilli(),
	)
	return err
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM progress_slots WHERE key = ?`, key)
	return err
}

func (s *Slot) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS progress_slots (
			key TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)`)
	return err
}
