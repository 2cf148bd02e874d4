package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"

	"negeri-quiz/internal/domain"
)

// Slot is a durable key-value slot holding one serialized progress blob
// (in-memory, file, SQLite, Redis, Postgres).
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// ProgressRepository loads and stores the persisted projection of the game.
type ProgressRepository interface {
	Load(ctx context.Context) (domain.PersistedProgress, error)
	Save(ctx context.Context, progress domain.PersistedProgress) error
	Erase(ctx context.Context) error
}

// ProgressVersion is the envelope version written by Save.
const ProgressVersion = 1

// DefaultProgressKey is the logical name of the progress slot.
const DefaultProgressKey = "gameProgress"

type envelope struct {
	Version  int                      `json:"version"`
	SavedAt  int64                    `json:"savedAt"`
	Progress domain.PersistedProgress `json:"progress"`
}

// RetryPolicy controls Save retries: Attempts counts the first try, and the
// wait doubles from Initial between tries.
type RetryPolicy struct {
	Initial  time.Duration
	Attempts uint
}

// DefaultRetryPolicy is one try plus two retries, waiting 1s then 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Initial: time.Second, Attempts: 3}
}

// backOff doubles the wait from Initial with no jitter.
func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.Initial << p.Attempts
	b.Reset()
	return b
}

// ProgressStore serializes progress into a single Slot key.
type ProgressStore struct {
	slot  Slot
	key   string
	retry RetryPolicy
	now   func() time.Time

	// onRetry sees each failed attempt and the wait before the next one.
	onRetry func(attempt int, wait time.Duration)
}

func NewProgressStore(slot Slot, key string, retry RetryPolicy) *ProgressStore {
	if key == "" {
		key = DefaultProgressKey
	}
	if retry.Attempts == 0 {
		retry.Attempts = 1
	}
	return &ProgressStore{slot: slot, key: key, retry: retry, now: time.Now}
}

// Load returns the stored progress. It returns domain.ErrSlotEmpty when
// nothing was saved yet and a wrapped decode error for unreadable blobs.
func (s *ProgressStore) Load(ctx context.Context) (domain.PersistedProgress, error) {
	data, err := s.slot.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, domain.ErrSlotEmpty) {
			return domain.PersistedProgress{}, err
		}
		return domain.PersistedProgress{}, fmt.Errorf("read progress: %w", err)
	}
	if len(data) == 0 {
		return domain.PersistedProgress{}, domain.ErrSlotEmpty
	}
	return decodeProgress(data)
}

// Save writes progress, retrying failed writes with exponential backoff.
func (s *ProgressStore) Save(ctx context.Context, progress domain.PersistedProgress) error {
	data, err := json.Marshal(envelope{
		Version:  ProgressVersion,
		SavedAt:  s.now().UnixMilli(),
		Progress: progress,
	})
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, s.slot.Put(ctx, s.key, data)
	},
		backoff.WithBackOff(s.retry.backOff()),
		backoff.WithMaxTries(s.retry.Attempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Printf("save progress attempt %d failed: %v (retrying in %s)", attempt, err, wait)
			if s.onRetry != nil {
				s.onRetry(attempt, wait)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("save progress after %d attempts: %w", attempt, err)
	}
	return nil
}

// Erase removes the stored progress.
func (s *ProgressStore) Erase(ctx context.Context) error {
	if err := s.slot.Delete(ctx, s.key); err != nil && !errors.Is(err, domain.ErrSlotEmpty) {
		return fmt.Errorf("erase progress: %w", err)
	}
	return nil
}

// decodeProgress reads a versioned envelope, migrating legacy blobs that were
// written as a bare progress object.
func decodeProgress(data []byte) (domain.PersistedProgress, error) {
	var head struct {
		Version  *int            `json:"version"`
		Progress json.RawMessage `json:"progress"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return domain.PersistedProgress{}, fmt.Errorf("decode progress: %w", err)
	}

	version := 0
	if head.Version != nil {
		version = *head.Version
	}
	switch {
	case version == 0:
		return migrateLegacy(data)
	case version > ProgressVersion:
		return domain.PersistedProgress{}, fmt.Errorf("%w: %d", domain.ErrUnsupportedVersion, version)
	}

	var progress domain.PersistedProgress
	if len(head.Progress) == 0 {
		return progress, fmt.Errorf("decode progress: missing payload")
	}
	if err := json.Unmarshal(head.Progress, &progress); err != nil {
		return domain.PersistedProgress{}, fmt.Errorf("decode progress: %w", err)
	}
	return progress, nil
}

func migrateLegacy(data []byte) (domain.PersistedProgress, error) {
	var progress domain.PersistedProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return domain.PersistedProgress{}, fmt.Errorf("migrate legacy progress: %w", err)
	}
	return progress, nil
}
