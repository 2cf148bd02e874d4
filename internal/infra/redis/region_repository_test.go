package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"negeri-quiz/internal/app"
	"negeri-quiz/internal/content"
	"negeri-quiz/internal/domain"
)

func TestRegionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		RegionLoader: content.NewBank([]domain.Region{sampleRegion()}),
	}
	repo := NewRegionRepository(client, loader, time.Minute)

	_, err = repo.GetRegion(context.Background(), "perlis")
	if err != nil {
		t.Fatalf("get region: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:region:perlis") {
		t.Fatalf("expected region cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	region, err := repo.GetRegion(context.Background(), "perlis")
	if err != nil {
		t.Fatalf("get region 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	q, ok := region.Question("perlis-1")
	if !ok {
		t.Fatalf("expected cached question")
	}
	if got, _ := q.CorrectAnswer.Text(); got != "Kangar" {
		t.Fatalf("expected correct answer to survive the cache, got %q", got)
	}
}

type countingLoader struct {
	app.RegionLoader
	calls int
}

func (l *countingLoader) LoadRegion(ctx context.Context, regionID string) (domain.Region, error) {
	l.calls++
	return l.RegionLoader.LoadRegion(ctx, regionID)
}

func sampleRegion() domain.Region {
	return domain.Region{
		ID:      "perlis",
		Name:    "Perlis",
		Capital: "Kangar",
		Questions: []domain.Question{
			{
				ID:            "perlis-1",
				Kind:          domain.KindMultipleChoice,
				Prompt:        "Apakah ibu negeri Perlis?",
				Options:       []string{"Kangar", "Arau", "Alor Setar", "Ipoh"},
				CorrectAnswer: domain.TextAnswer("Kangar"),
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
