package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"negeri-quiz/internal/app"
	"negeri-quiz/internal/content"
	"negeri-quiz/internal/domain"
)

func TestRegionRepositoryLoadsBankOnce(t *testing.T) {
	loader := &countingLoader{RegionLoader: content.NewBank(sampleBank())}
	repo := NewRegionRepository(loader, time.Minute)
	ctx := context.Background()

	if _, err := repo.GetRegion(ctx, "perlis"); err != nil {
		t.Fatalf("get region: %v", err)
	}
	region, err := repo.GetRegion(ctx, "johor")
	if err != nil {
		t.Fatalf("get region 2: %v", err)
	}
	timers, err := repo.Timers(ctx)
	if err != nil {
		t.Fatalf("timers: %v", err)
	}
	if loader.calls() != 1 {
		t.Fatalf("expected one bank load for lookups and timers, got %d", loader.calls())
	}
	if _, ok := region.Question("johor-1"); !ok {
		t.Fatalf("expected cached region to keep its questions")
	}
	if timers["johor"] != 600 {
		t.Fatalf("expected johor 600s, got %v", timers)
	}
	if _, ok := timers["perlis"]; ok {
		t.Fatalf("expected perlis without timer, got %v", timers)
	}
}

func TestRegionRepositorySkipsInvalidRegions(t *testing.T) {
	broken := domain.Region{ID: "kedah", Questions: []domain.Question{{
		ID:            "kedah-1",
		Kind:          domain.KindMultipleChoice,
		CorrectAnswer: domain.TextAnswer("Alor Setar"),
		Options:       []string{"Alor Setar"},
	}}}
	repo := NewRegionRepository(content.NewBank(append(sampleBank(), broken)), time.Minute)
	ctx := context.Background()

	if _, err := repo.GetRegion(ctx, "kedah"); !errors.Is(err, domain.ErrRegionNotFound) {
		t.Fatalf("expected invalid region to be dropped, got %v", err)
	}
	regions, err := repo.LoadRegions(ctx)
	if err != nil {
		t.Fatalf("load regions: %v", err)
	}
	if len(regions) != 2 || regions[0].ID != "perlis" || regions[1].ID != "johor" {
		t.Fatalf("expected valid regions in bank order, got %+v", regions)
	}
}

func TestRegionRepositoryReloadsAfterTTL(t *testing.T) {
	loader := &countingLoader{RegionLoader: content.NewBank(sampleBank())}
	repo := NewRegionRepository(loader, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	repo.clock = func() time.Time { return now }
	ctx := context.Background()

	if _, err := repo.GetRegion(ctx, "perlis"); err != nil {
		t.Fatalf("get region: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetRegion(ctx, "perlis"); err != nil {
		t.Fatalf("get region after ttl: %v", err)
	}
	if loader.calls() != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", loader.calls())
	}

	loader.fail = errors.New("db down")
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetRegion(ctx, "perlis"); err != nil {
		t.Fatalf("expected stale bank while reload fails, got %v", err)
	}
}

func TestRegionRepositoryUnknownRegion(t *testing.T) {
	repo := NewRegionRepository(content.NewBank(nil), time.Minute)
	if _, err := repo.GetRegion(context.Background(), "atlantis"); !errors.Is(err, domain.ErrRegionNotFound) {
		t.Fatalf("expected region not found, got %v", err)
	}
}

func TestRegionRepositoryFirstLoadErrorSurfaces(t *testing.T) {
	loader := &countingLoader{RegionLoader: content.NewBank(nil), fail: errors.New("db down")}
	repo := NewRegionRepository(loader, time.Minute)
	if _, err := repo.GetRegion(context.Background(), "perlis"); err == nil {
		t.Fatalf("expected load error without a cached bank")
	}
}

type countingLoader struct {
	app.RegionLoader
	fail error

	mu sync.Mutex
	n  int
}

func (l *countingLoader) LoadRegions(ctx context.Context) ([]domain.Region, error) {
	l.mu.Lock()
	l.n++
	l.mu.Unlock()
	if l.fail != nil {
		return nil, l.fail
	}
	return l.RegionLoader.LoadRegions(ctx)
}

func (l *countingLoader) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}

func sampleBank() []domain.Region {
	seconds := 600
	return []domain.Region{
		{
			ID:      "perlis",
			Name:    "Perlis",
			Capital: "Kangar",
			Questions: []domain.Question{{
				ID:            "perlis-1",
				Kind:          domain.KindMultipleChoice,
				Prompt:        "Apakah ibu negeri Perlis?",
				Options:       []string{"Kangar", "Arau", "Alor Setar", "Ipoh"},
				CorrectAnswer: domain.TextAnswer("Kangar"),
			}},
		},
		{
			ID:           "johor",
			Name:         "Johor",
			TimerSeconds: &seconds,
			Questions: []domain.Question{{
				ID:            "johor-1",
				Kind:          domain.KindTrueFalse,
				Prompt:        "Johor Bahru ialah ibu negeri Johor.",
				CorrectAnswer: domain.BoolAnswer(true),
			}},
		},
	}
}
