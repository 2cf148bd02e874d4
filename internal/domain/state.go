package domain

import "strings"

// PlayerProfile identifies the child playing. Name is 2-30 characters after
// trimming and Age is 6-12; the form layer enforces both.
type PlayerProfile struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

const (
	MinNameLength = 2
	MaxNameLength = 30
	MinAge        = 6
	MaxAge        = 12
)

// Validate applies the profile form rules and returns the trimmed profile.
func (p PlayerProfile) Validate() (PlayerProfile, error) {
	name := strings.TrimSpace(p.Name)
	n := len([]rune(name))
	if n < MinNameLength || n > MaxNameLength {
		return PlayerProfile{}, ErrInvalidProfile
	}
	if p.Age < MinAge || p.Age > MaxAge {
		return PlayerProfile{}, ErrInvalidProfile
	}
	return PlayerProfile{Name: name, Age: p.Age}, nil
}

// TimerRecord is a pausable countdown. StartTime and PausedAt are wall-clock
// unix milliseconds, Duration is whole seconds and PausedDuration accumulates
// paused seconds. PausedAt is set if and only if IsPaused is true.
type TimerRecord struct {
	StateID        string  `json:"stateId,omitempty"`
	StartTime      int64   `json:"startTime"`
	Duration       int     `json:"duration"`
	IsPaused       bool    `json:"isPaused"`
	PausedAt       *int64  `json:"pausedAt,omitempty"`
	PausedDuration float64 `json:"pausedDuration"`
}

func (t *TimerRecord) Clone() *TimerRecord {
	if t == nil {
		return nil
	}
	c := *t
	if t.PausedAt != nil {
		at := *t.PausedAt
		c.PausedAt = &at
	}
	return &c
}

// GameState is the authoritative aggregate owned by the engine.
type GameState struct {
	CurrentState         string                 `json:"currentState,omitempty"`
	CompletedStates      []string               `json:"completedStates"`
	Answers              map[string]AnswerValue `json:"answers"`
	QuestionIndexByState map[string]int         `json:"questionIndexByState"`
	CurrentQuestionIndex int                    `json:"currentQuestionIndex"`
	WrongAnswerCount     int                    `json:"wrongAnswerCount"`
	HasSeenTutorial      bool                   `json:"hasSeenTutorial"`
	PlayerProfile        *PlayerProfile         `json:"playerProfile"`
	StateTimer           *TimerRecord           `json:"stateTimer"`
	AllowFontScaling     bool                   `json:"allowFontScaling"`
	ShowSuccessModal     bool                   `json:"showSuccessModal"`
	ShowGagalModal       bool                   `json:"showGagalModal"`
}

// NewGameState returns the hard-coded defaults a fresh install starts from.
func NewGameState() GameState {
	return GameState{
		CompletedStates:      []string{},
		Answers:              map[string]AnswerValue{},
		QuestionIndexByState: map[string]int{},
		AllowFontScaling:     true,
	}
}

// IsCompleted reports whether stateID is in the completed set.
func (g GameState) IsCompleted(stateID string) bool {
	for _, id := range g.CompletedStates {
		if id == stateID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand to readers.
func (g GameState) Clone() GameState {
	c := g
	c.CompletedStates = append([]string{}, g.CompletedStates...)
	c.Answers = make(map[string]AnswerValue, len(g.Answers))
	for k, v := range g.Answers {
		c.Answers[k] = v
	}
	c.QuestionIndexByState = make(map[string]int, len(g.QuestionIndexByState))
	for k, v := range g.QuestionIndexByState {
		c.QuestionIndexByState[k] = v
	}
	if g.PlayerProfile != nil {
		p := *g.PlayerProfile
		c.PlayerProfile = &p
	}
	c.StateTimer = g.StateTimer.Clone()
	return c
}

// PersistedProgress is the durable projection of GameState. Transient UI flags
// and WrongAnswerCount are intentionally absent.
type PersistedProgress struct {
	CompletedStates      []string               `json:"completedStates"`
	HasSeenTutorial      bool                   `json:"hasSeenTutorial"`
	LastPlayedState      string                 `json:"lastPlayedState,omitempty"`
	Timestamp            int64                  `json:"timestamp"`
	PlayerProfile        *PlayerProfile         `json:"playerProfile,omitempty"`
	AllowFontScaling     *bool                  `json:"allowFontScaling,omitempty"`
	Answers              map[string]AnswerValue `json:"answers,omitempty"`
	QuestionIndexByState map[string]int         `json:"questionIndexByState,omitempty"`
	StateTimer           *TimerRecord           `json:"stateTimer,omitempty"`
}

// Progress projects the persisted subset of g, stamped with nowMillis.
func (g GameState) Progress(nowMillis int64) PersistedProgress {
	c := g.Clone()
	fontScaling := c.AllowFontScaling
	return PersistedProgress{
		CompletedStates:      c.CompletedStates,
		HasSeenTutorial:      c.HasSeenTutorial,
		LastPlayedState:      c.CurrentState,
		Timestamp:            nowMillis,
		PlayerProfile:        c.PlayerProfile,
		AllowFontScaling:     &fontScaling,
		Answers:              c.Answers,
		QuestionIndexByState: c.QuestionIndexByState,
		StateTimer:           c.StateTimer,
	}
}

// Hydrate merges p over the defaults. Missing optional fields keep their
// default values so older blobs still load.
func (p PersistedProgress) Hydrate() GameState {
	g := NewGameState()
	for _, id := range p.CompletedStates {
		if id != "" && !g.IsCompleted(id) {
			g.CompletedStates = append(g.CompletedStates, id)
		}
	}
	g.HasSeenTutorial = p.HasSeenTutorial
	g.CurrentState = p.LastPlayedState
	if p.PlayerProfile != nil {
		profile := *p.PlayerProfile
		g.PlayerProfile = &profile
	}
	if p.AllowFontScaling != nil {
		g.AllowFontScaling = *p.AllowFontScaling
	}
	for k, v := range p.Answers {
		g.Answers[k] = v
	}
	for k, v := range p.QuestionIndexByState {
		g.QuestionIndexByState[k] = v
	}
	if t := p.StateTimer.Clone(); t != nil {
		if t.IsPaused != (t.PausedAt != nil) {
			t.IsPaused = false
			t.PausedAt = nil
		}
		g.StateTimer = t
	}
	return g
}
