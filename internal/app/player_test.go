package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"negeri-quiz/internal/app"
	"negeri-quiz/internal/content"
	"negeri-quiz/internal/domain"
	"negeri-quiz/internal/infra/memory"
)

func newTestPlayer(t *testing.T, clock *fakeClock) *app.Player {
	t.Helper()
	seconds := 600
	regions := []domain.Region{
		{ID: "perlis", Name: "Perlis", Questions: []domain.Question{perlisQuestion()}},
		{ID: "johor", Name: "Johor", TimerSeconds: &seconds, Questions: []domain.Question{{
			ID:            "johor-1",
			Kind:          domain.KindTrueFalse,
			Prompt:        "Johor Bahru ialah ibu negeri Johor.",
			CorrectAnswer: domain.BoolAnswer(true),
		}}},
	}
	repo := memory.NewRegionRepository(content.NewBank(regions), time.Minute)
	engine := newTestEngine(t, newFlakySlot(), time.Hour, clock)
	return app.NewPlayer(engine, repo)
}

func TestEnterStateStartsConfiguredTimer(t *testing.T) {
	clock := newFakeClock()
	player := newTestPlayer(t, clock)

	region, err := player.EnterState(context.Background(), "johor")
	if err != nil {
		t.Fatalf("enter: %v", err)
	}
	if region.Name != "Johor" {
		t.Fatalf("expected johor region, got %+v", region)
	}
	state := player.Engine().State()
	if state.CurrentState != "johor" {
		t.Fatalf("expected current state johor, got %q", state.CurrentState)
	}
	if state.StateTimer == nil || state.StateTimer.Duration != 600 || state.StateTimer.StateID != "johor" {
		t.Fatalf("expected 600s johor timer, got %+v", state.StateTimer)
	}

	if _, err := player.EnterState(context.Background(), "perlis"); err != nil {
		t.Fatalf("enter perlis: %v", err)
	}
	if player.Engine().State().StateTimer != nil {
		t.Fatalf("expected no timer for a region without a duration")
	}
}

func TestEnterUnknownStateLeavesEngineUntouched(t *testing.T) {
	player := newTestPlayer(t, newFakeClock())

	if _, err := player.EnterState(context.Background(), "atlantis"); !errors.Is(err, domain.ErrRegionNotFound) {
		t.Fatalf("expected ErrRegionNotFound, got %v", err)
	}
	if got := player.Engine().State().CurrentState; got != "" {
		t.Fatalf("expected no current state, got %q", got)
	}
}

func TestSubmitAnswerGradesAgainstBank(t *testing.T) {
	player := newTestPlayer(t, newFakeClock())
	ctx := context.Background()

	res, err := player.SubmitAnswer(ctx, "johor", "johor-1", domain.BoolAnswer(true))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.IsCorrect {
		t.Fatalf("expected correct answer")
	}
	res, err = player.SubmitAnswer(ctx, "perlis", "perlis-1", domain.TextAnswer("Arau"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.IsCorrect || res.Explanation == "" {
		t.Fatalf("expected wrong answer with explanation, got %+v", res)
	}
	if got := player.Engine().State().WrongAnswerCount; got != 1 {
		t.Fatalf("expected one wrong answer, got %d", got)
	}

	if _, err := player.SubmitAnswer(ctx, "perlis", "perlis-9", domain.TextAnswer("x")); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}
