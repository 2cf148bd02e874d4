package app

import (
	"sync"
	"time"

	"negeri-quiz/internal/domain"
)

// debouncer keeps the newest progress snapshot in one slot and arms a single
// timer. When the timer fires, whatever sits in the slot at that moment is
// written, so a burst of mutations costs one write of the last state.
type debouncer struct {
	interval time.Duration
	fire     func()

	mu      sync.Mutex
	pending *domain.PersistedProgress
	timer   *time.Timer
}

func newDebouncer(interval time.Duration, fire func()) *debouncer {
	return &debouncer{interval: interval, fire: fire}
}

func (d *debouncer) schedule(progress domain.PersistedProgress) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = &progress
	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.fire)
	}
}

// take empties the slot and disarms the timer.
func (d *debouncer) take() (domain.PersistedProgress, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.pending == nil {
		return domain.PersistedProgress{}, false
	}
	progress := *d.pending
	d.pending = nil
	return progress, true
}

// cancel drops the pending snapshot without writing it.
func (d *debouncer) cancel() {
	d.take()
}
