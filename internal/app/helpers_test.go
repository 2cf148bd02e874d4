package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"negeri-quiz/internal/app"
	"negeri-quiz/internal/domain"
	"negeri-quiz/internal/infra/memory"
)

var errDiskFull = errors.New("disk full")

// flakySlot wraps the in-memory slot and fails a configurable number of writes.
type flakySlot struct {
	*memory.Slot

	mu          sync.Mutex
	failPuts    int
	failDeletes bool
	attempts    int
	writes      [][]byte
}

func newFlakySlot() *flakySlot {
	return &flakySlot{Slot: memory.NewSlot()}
}

func (s *flakySlot) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	s.attempts++
	if s.failPuts > 0 {
		s.failPuts--
		s.mu.Unlock()
		return errDiskFull
	}
	s.writes = append(s.writes, append([]byte(nil), data...))
	s.mu.Unlock()
	return s.Slot.Put(ctx, key, data)
}

func (s *flakySlot) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	fail := s.failDeletes
	s.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return s.Slot.Delete(ctx, key)
}

func (s *flakySlot) setFailPuts(n int) {
	s.mu.Lock()
	s.failPuts = n
	s.mu.Unlock()
}

func (s *flakySlot) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func (s *flakySlot) attemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *flakySlot) lastWrite(t *testing.T) domain.PersistedProgress {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.writes) == 0 {
		t.Fatalf("expected at least one write")
	}
	var env struct {
		Version  int                      `json:"version"`
		Progress domain.PersistedProgress `json:"progress"`
	}
	if err := json.Unmarshal(s.writes[len(s.writes)-1], &env); err != nil {
		t.Fatalf("decode write: %v", err)
	}
	if env.Version != app.ProgressVersion {
		t.Fatalf("expected version %d, got %d", app.ProgressVersion, env.Version)
	}
	return env.Progress
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var testTimers = map[string]int{"johor": 600, "kedah": 300}

func fastRetry() app.RetryPolicy {
	return app.RetryPolicy{Initial: time.Millisecond, Attempts: 3}
}

func newTestEngine(t *testing.T, slot app.Slot, debounce time.Duration, clock *fakeClock) *app.Engine {
	t.Helper()
	store := app.NewProgressStore(slot, "", fastRetry())
	engine := app.NewEngineWithClock(store, testTimers, debounce, clock.Now)
	if err := engine.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return engine
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func perlisQuestion() domain.Question {
	return domain.Question{
		ID:            "perlis-1",
		Kind:          domain.KindFillBlank,
		Prompt:        "Ibu negeri Perlis ialah ____.",
		CorrectAnswer: domain.TextAnswer("Kangar"),
		Explanation:   "Kangar ialah ibu negeri Perlis.",
	}
}
