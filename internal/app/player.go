package app

import (
	"context"

	"negeri-quiz/internal/domain"
)

// ContentRepository loads region content (from cache/backing store).
type ContentRepository interface {
	GetRegion(ctx context.Context, regionID string) (domain.Region, error)
}

// RegionLoader fetches region content from a backing store (YAML bank, Postgres).
type RegionLoader interface {
	LoadRegion(ctx context.Context, regionID string) (domain.Region, error)
	LoadRegions(ctx context.Context) ([]domain.Region, error)
}

// Player resolves UI intents that refer to content by id and forwards them to
// the engine.
type Player struct {
	engine  *Engine
	content ContentRepository
}

func NewPlayer(engine *Engine, content ContentRepository) *Player {
	return &Player{engine: engine, content: content}
}

func (p *Player) Engine() *Engine {
	return p.engine
}

// EnterState loads the region, makes it current and starts its timer.
func (p *Player) EnterState(ctx context.Context, stateID string) (domain.Region, error) {
	region, err := p.content.GetRegion(ctx, stateID)
	if err != nil {
		return domain.Region{}, err
	}
	p.engine.SetCurrentState(stateID)
	p.engine.StartStateTimer(stateID)
	return region, nil
}

// SubmitAnswer looks the question up in the region bank and grades it.
func (p *Player) SubmitAnswer(ctx context.Context, stateID, questionID string, answer domain.AnswerValue) (AnswerResult, error) {
	region, err := p.content.GetRegion(ctx, stateID)
	if err != nil {
		return AnswerResult{}, err
	}
	question, ok := region.Question(questionID)
	if !ok {
		return AnswerResult{}, domain.ErrQuestionNotFound
	}
	return p.engine.AnswerQuestion(questionID, answer, question), nil
}
