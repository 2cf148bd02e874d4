package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"negeri-quiz/internal/domain"
)

// Slot stores progress blobs in the progress_slots table.
type Slot struct {
	pool *pgxpool.Pool
}

func NewSlot(pool *pgxpool.Pool) *Slot {
	return &Slot{pool: pool}
}

func (s *Slot) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data::text FROM progress_slots WHERE key=$1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Slot) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO progress_slots (key, data, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`, key, string(data))
	return err
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM progress_slots WHERE key=$1`, key)
	return err
}
