// Package timer computes a pausable countdown from wall-clock timestamps.
// Every function is pure; callers own the TimerRecord and poll Remaining or
// Expired at their own cadence (once per second is enough for the UI).
package timer

import (
	"math"
	"time"

	"negeri-quiz/internal/domain"
)

// Start returns a fresh running timer, or nil when durationSeconds is not
// positive (the region has no timer).
func Start(stateID string, durationSeconds int, now time.Time) *domain.TimerRecord {
	if durationSeconds <= 0 {
		return nil
	}
	return &domain.TimerRecord{
		StateID:   stateID,
		StartTime: now.UnixMilli(),
		Duration:  durationSeconds,
	}
}

// Elapsed returns the running seconds of t, excluding every paused interval.
func Elapsed(t domain.TimerRecord, now time.Time) float64 {
	ref := now.UnixMilli()
	if t.IsPaused && t.PausedAt != nil {
		ref = *t.PausedAt
	}
	elapsed := float64(ref-t.StartTime)/1000 - t.PausedDuration
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining returns max(0, duration - floor(elapsed)) in whole seconds.
func Remaining(t domain.TimerRecord, now time.Time) int {
	remaining := t.Duration - int(math.Floor(Elapsed(t, now)))
	if remaining < 0 {
		return 0
	}
	return remaining
}

func Expired(t domain.TimerRecord, now time.Time) bool {
	return Remaining(t, now) <= 0
}

// Pause freezes the countdown. Pausing a paused timer returns it unchanged so
// the paused interval is never counted twice.
func Pause(t domain.TimerRecord, now time.Time) domain.TimerRecord {
	if t.IsPaused {
		return t
	}
	at := now.UnixMilli()
	t.IsPaused = true
	t.PausedAt = &at
	return t
}

// Resume folds the paused interval into PausedDuration and clears PausedAt.
// Resuming a running timer returns it unchanged.
func Resume(t domain.TimerRecord, now time.Time) domain.TimerRecord {
	if !t.IsPaused {
		return t
	}
	if t.PausedAt != nil {
		if paused := float64(now.UnixMilli()-*t.PausedAt) / 1000; paused > 0 {
			t.PausedDuration += paused
		}
	}
	t.IsPaused = false
	t.PausedAt = nil
	return t
}
