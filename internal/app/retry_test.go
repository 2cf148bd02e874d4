package app

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"negeri-quiz/internal/domain"
)

type failingSlot struct {
	mu   sync.Mutex
	puts int
}

func (s *failingSlot) Get(context.Context, string) ([]byte, error) { return nil, domain.ErrSlotEmpty }

func (s *failingSlot) Put(context.Context, string, []byte) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return errors.New("disk full")
}

func (s *failingSlot) Delete(context.Context, string) error { return nil }

func (s *failingSlot) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func TestDefaultRetryPolicyWaitsOneThenTwoSeconds(t *testing.T) {
	policy := DefaultRetryPolicy()
	if policy.Attempts != 3 {
		t.Fatalf("expected first try plus two retries, got %d attempts", policy.Attempts)
	}
	b := policy.backOff()
	got := []time.Duration{b.NextBackOff(), b.NextBackOff()}
	want := []time.Duration{time.Second, 2 * time.Second}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected waits %v, got %v", want, got)
	}
}

func TestSaveFollowsRetrySchedule(t *testing.T) {
	slot := &failingSlot{}
	store := NewProgressStore(slot, "", RetryPolicy{Initial: 5 * time.Millisecond, Attempts: 3})
	var waits []time.Duration
	store.onRetry = func(_ int, wait time.Duration) { waits = append(waits, wait) }

	if err := store.Save(context.Background(), domain.PersistedProgress{}); err == nil {
		t.Fatalf("expected save to give up")
	}
	if n := slot.putCount(); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
	want := []time.Duration{5 * time.Millisecond, 10 * time.Millisecond}
	if !reflect.DeepEqual(waits, want) {
		t.Fatalf("expected waits %v, got %v", want, waits)
	}
}

func TestSaveWithDefaultPolicyRetriesAfterOneAndTwoSeconds(t *testing.T) {
	if testing.Short() {
		t.Skip("waits three seconds")
	}
	slot := &failingSlot{}
	store := NewProgressStore(slot, "", DefaultRetryPolicy())
	var waits []time.Duration
	store.onRetry = func(_ int, wait time.Duration) { waits = append(waits, wait) }

	start := time.Now()
	err := store.Save(context.Background(), domain.PersistedProgress{})
	elapsed := time.Since(start)
	if err == nil {
		t.Fatalf("expected save to give up")
	}
	if n := slot.putCount(); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
	if want := []time.Duration{time.Second, 2 * time.Second}; !reflect.DeepEqual(waits, want) {
		t.Fatalf("expected waits %v, got %v", want, waits)
	}
	if elapsed < 3*time.Second {
		t.Fatalf("expected at least 3s of backoff, took %s", elapsed)
	}
}
