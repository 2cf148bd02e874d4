package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"negeri-quiz/internal/domain"
	"negeri-quiz/internal/evaluator"
	"negeri-quiz/internal/timer"
)

const (
	// LoadWarning is surfaced once when stored progress could not be read.
	LoadWarning = "Saved progress could not be loaded. Starting a new game."
	// SaveErrorMessage stays visible until a later save succeeds.
	SaveErrorMessage = "Progress could not be saved. Your latest answers may be lost if you close the game."
)

// DefaultDebounce coalesces mutations into at most one write per interval.
const DefaultDebounce = time.Second

// View is the read-only picture of the engine handed to the UI.
type View struct {
	State       domain.GameState `json:"gameState"`
	IsLoading   bool             `json:"isLoading"`
	SaveError   string           `json:"saveError,omitempty"`
	LoadWarning string           `json:"loadWarning,omitempty"`
}

// AnswerResult is the feedback for a single answered question.
type AnswerResult struct {
	QuestionID  string `json:"questionId"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation,omitempty"`
}

// TimerStatus is what a 1 Hz poll of the running timer needs.
type TimerStatus struct {
	Active    bool   `json:"active"`
	StateID   string `json:"stateId,omitempty"`
	Remaining int    `json:"remaining"`
	Paused    bool   `json:"paused"`
	Expired   bool   `json:"expired"`
}

// Engine owns the authoritative GameState. Construct one per process, call
// Load once, then route every mutation through its methods.
type Engine struct {
	store    ProgressRepository
	timers   map[string]int
	now      func() time.Time
	debounce *debouncer

	mu          sync.RWMutex
	state       domain.GameState
	loading     bool
	ready       chan struct{}
	saveError   string
	loadWarning string
	subscribers map[chan View]struct{}

	// writeMu serializes slot writes and erases.
	writeMu sync.Mutex
}

// NewEngine builds an engine in the Loading state. timers maps region ids to
// countdown seconds; regions without an entry have no timer.
func NewEngine(store ProgressRepository, timers map[string]int, debounce time.Duration) *Engine {
	return NewEngineWithClock(store, timers, debounce, time.Now)
}

// NewEngineWithClock is NewEngine with an injected wall clock.
func NewEngineWithClock(store ProgressRepository, timers map[string]int, debounce time.Duration, now func() time.Time) *Engine {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	table := make(map[string]int, len(timers))
	for id, secs := range timers {
		table[id] = secs
	}
	e := &Engine{
		store:       store,
		timers:      table,
		now:         now,
		state:       domain.NewGameState(),
		loading:     true,
		ready:       make(chan struct{}),
		subscribers: make(map[chan View]struct{}),
	}
	e.debounce = newDebouncer(debounce, func() {
		_ = e.writePending(context.Background())
	})
	return e
}

// Load hydrates the engine from storage and moves it to Ready. A missing or
// unreadable blob leaves the defaults in place; in the unreadable case the
// error is returned and LoadWarning is set, but the engine is Ready anyway.
func (e *Engine) Load(ctx context.Context) error {
	progress, err := e.store.Load(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loading {
		return nil
	}

	switch {
	case err == nil:
		e.state = progress.Hydrate()
	case errors.Is(err, domain.ErrSlotEmpty):
		err = nil
	default:
		log.Printf("load progress failed, using defaults: %v", err)
		e.loadWarning = LoadWarning
	}
	e.loading = false
	close(e.ready)
	e.broadcastLocked()
	return err
}

// Ready is closed once Load has finished.
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

func (e *Engine) IsLoading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading
}

// SaveError returns the persistent save failure message, or "".
func (e *Engine) SaveError() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.saveError
}

// State returns a copy of the current game state.
func (e *Engine) State() domain.GameState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

func (e *Engine) View() View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.viewLocked()
}

// AnswerQuestion grades answer against q, records it under questionID and
// counts a wrong answer when incorrect. Re-answering overwrites.
func (e *Engine) AnswerQuestion(questionID string, answer domain.AnswerValue, q domain.Question) AnswerResult {
	correct := evaluator.Evaluate(q, answer)
	e.mutate(func(s *domain.GameState) {
		s.Answers[questionID] = answer
		if !correct {
			s.WrongAnswerCount++
		}
	})
	return AnswerResult{QuestionID: questionID, IsCorrect: correct, Explanation: q.Explanation}
}

// CompleteState marks stateID as permanently completed.
func (e *Engine) CompleteState(stateID string) {
	e.mutate(func(s *domain.GameState) {
		if !s.IsCompleted(stateID) {
			s.CompletedStates = append(s.CompletedStates, stateID)
		}
		s.CurrentState = stateID
		s.CurrentQuestionIndex = 0
		s.ShowSuccessModal = true
		s.StateTimer = nil
	})
}

// ClearStateAnswers drops every answer of stateID, its resume cursor and the
// running timer. Completion is untouched.
func (e *Engine) ClearStateAnswers(stateID string) {
	e.mutate(func(s *domain.GameState) {
		for id := range s.Answers {
			if belongsToState(id, stateID) {
				delete(s.Answers, id)
			}
		}
		delete(s.QuestionIndexByState, stateID)
		s.StateTimer = nil
	})
}

// belongsToState matches "<state>-<n>" and "<state>_<n>" question ids.
// Content mixes both separators; the underscore form can go once the
// question banks use dashes only.
func belongsToState(questionID, stateID string) bool {
	return strings.HasPrefix(questionID, stateID+"-") || strings.HasPrefix(questionID, stateID+"_")
}

// SetQuestionIndexForState stores the resume cursor of stateID.
func (e *Engine) SetQuestionIndexForState(stateID string, index int) {
	if index < 0 {
		index = 0
	}
	e.mutate(func(s *domain.GameState) {
		s.QuestionIndexByState[stateID] = index
		s.CurrentQuestionIndex = index
	})
}

// StartStateTimer starts the configured countdown for stateID, or clears the
// timer when the region has none.
func (e *Engine) StartStateTimer(stateID string) {
	now := e.now()
	e.mutate(func(s *domain.GameState) {
		s.StateTimer = timer.Start(stateID, e.timers[stateID], now)
	})
}

func (e *Engine) PauseStateTimer() {
	now := e.now()
	e.mutateIf(func(s *domain.GameState) bool {
		if s.StateTimer == nil || s.StateTimer.IsPaused {
			return false
		}
		paused := timer.Pause(*s.StateTimer, now)
		s.StateTimer = &paused
		return true
	})
}

func (e *Engine) ResumeStateTimer() {
	now := e.now()
	e.mutateIf(func(s *domain.GameState) bool {
		if s.StateTimer == nil || !s.StateTimer.IsPaused {
			return false
		}
		resumed := timer.Resume(*s.StateTimer, now)
		s.StateTimer = &resumed
		return true
	})
}

func (e *Engine) ClearStateTimer() {
	e.mutateIf(func(s *domain.GameState) bool {
		if s.StateTimer == nil {
			return false
		}
		s.StateTimer = nil
		return true
	})
}

// TimerStatus reports the running countdown at the current wall clock.
func (e *Engine) TimerStatus() TimerStatus {
	now := e.now()
	e.mu.RLock()
	defer e.mu.RUnlock()
	t := e.state.StateTimer
	if t == nil {
		return TimerStatus{}
	}
	remaining := timer.Remaining(*t, now)
	return TimerStatus{
		Active:    true,
		StateID:   t.StateID,
		Remaining: remaining,
		Paused:    t.IsPaused,
		Expired:   remaining <= 0,
	}
}

// FailState raises the failure modal for stateID and stops its timer.
func (e *Engine) FailState(stateID string) {
	e.mutate(func(s *domain.GameState) {
		s.CurrentState = stateID
		s.ShowGagalModal = true
		s.StateTimer = nil
	})
}

func (e *Engine) DismissSuccessModal() {
	e.mutateIf(func(s *domain.GameState) bool {
		changed := s.ShowSuccessModal
		s.ShowSuccessModal = false
		return changed
	})
}

func (e *Engine) DismissGagalModal() {
	e.mutateIf(func(s *domain.GameState) bool {
		changed := s.ShowGagalModal
		s.ShowGagalModal = false
		return changed
	})
}

// SetPlayerProfile overwrites the profile. Callers validate first.
func (e *Engine) SetPlayerProfile(name string, age int) {
	e.mutate(func(s *domain.GameState) {
		s.PlayerProfile = &domain.PlayerProfile{Name: name, Age: age}
	})
}

func (e *Engine) SetCurrentState(stateID string) {
	e.mutate(func(s *domain.GameState) {
		s.CurrentState = stateID
		s.CurrentQuestionIndex = s.QuestionIndexByState[stateID]
	})
}

func (e *Engine) MarkTutorialSeen() {
	e.mutateIf(func(s *domain.GameState) bool {
		changed := !s.HasSeenTutorial
		s.HasSeenTutorial = true
		return changed
	})
}

func (e *Engine) SetAllowFontScaling(allow bool) {
	e.mutate(func(s *domain.GameState) {
		s.AllowFontScaling = allow
	})
}

// ResetGame erases stored progress and restores the defaults. The in-memory
// reset happens even when the erase fails; the defaults are then saved over
// whatever the slot still holds.
func (e *Engine) ResetGame(ctx context.Context) {
	e.mustBeReady()
	e.debounce.cancel()

	e.writeMu.Lock()
	if err := e.store.Erase(ctx); err != nil {
		log.Printf("erase progress failed: %v", err)
	}
	e.writeMu.Unlock()

	e.mu.Lock()
	e.loadWarning = ""
	e.mu.Unlock()
	e.mutate(func(s *domain.GameState) {
		*s = domain.NewGameState()
	})
}

// Flush writes the pending snapshot now instead of waiting for the debounce.
func (e *Engine) Flush(ctx context.Context) error {
	return e.writePending(ctx)
}

// Subscribe returns a channel of views, primed with the current one. Slow
// readers only ever miss intermediate views, never the latest. The caller
// must invoke cancel.
func (e *Engine) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 8)

	// Primed under the lock so no broadcast can land ahead of the initial view.
	e.mu.Lock()
	ch <- e.viewLocked()
	e.subscribers[ch] = struct{}{}
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		if _, ok := e.subscribers[ch]; ok {
			delete(e.subscribers, ch)
			close(ch)
		}
		e.mu.Unlock()
	}
	return ch, cancel
}

func (e *Engine) mutate(fn func(s *domain.GameState)) {
	e.mutateIf(func(s *domain.GameState) bool {
		fn(s)
		return true
	})
}

func (e *Engine) mutateIf(fn func(s *domain.GameState) bool) {
	e.mustBeReady()
	e.mu.Lock()
	defer e.mu.Unlock()
	if !fn(&e.state) {
		return
	}
	e.debounce.schedule(e.state.Progress(e.now().UnixMilli()))
	e.broadcastLocked()
}

func (e *Engine) mustBeReady() {
	select {
	case <-e.ready:
	default:
		panic("app: engine mutated before Load completed")
	}
}

// writePending persists the newest pending snapshot, if any, and updates the
// save error banner.
func (e *Engine) writePending(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	progress, ok := e.debounce.take()
	if !ok {
		return nil
	}
	err := e.store.Save(ctx, progress)
	if err != nil {
		log.Printf("persist progress failed: %v", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	previous := e.saveError
	if err != nil {
		e.saveError = SaveErrorMessage
	} else {
		e.saveError = ""
	}
	if previous != e.saveError {
		e.broadcastLocked()
	}
	return err
}

func (e *Engine) viewLocked() View {
	return View{
		State:       e.state.Clone(),
		IsLoading:   e.loading,
		SaveError:   e.saveError,
		LoadWarning: e.loadWarning,
	}
}

func (e *Engine) broadcastLocked() {
	view := e.viewLocked()
	for ch := range e.subscribers {
		select {
		case ch <- view:
		default:
			// Drop the oldest queued view so the newest always lands.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- view:
			default:
			}
		}
	}
}
