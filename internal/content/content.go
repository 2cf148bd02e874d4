// Package content loads the static region question banks.
package content

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"negeri-quiz/internal/app"
	"negeri-quiz/internal/domain"
)

//go:embed regions.yaml
var builtinBank []byte

type bank struct {
	Regions []domain.Region `yaml:"regions"`
}

// Builtin returns the bank compiled into the binary.
func Builtin() ([]domain.Region, error) {
	return Parse(builtinBank)
}

// Load reads a YAML bank from path.
func Load(path string) ([]domain.Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a YAML bank.
func Parse(data []byte) ([]domain.Region, error) {
	var b bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	for _, region := range b.Regions {
		if err := Validate(region); err != nil {
			return nil, err
		}
	}
	return b.Regions, nil
}

// Validate checks a region's questions against the shape each kind requires.
func Validate(region domain.Region) error {
	if region.ID == "" {
		return fmt.Errorf("region without id")
	}
	seen := make(map[string]struct{}, len(region.Questions))
	for _, q := range region.Questions {
		if q.ID == "" {
			return fmt.Errorf("region %s: question without id", region.ID)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("region %s: duplicate question %s", region.ID, q.ID)
		}
		seen[q.ID] = struct{}{}

		switch q.Kind {
		case domain.KindMultipleChoice:
			answer, ok := q.CorrectAnswer.Text()
			if !ok || len(q.Options) != 4 || !contains(q.Options, answer) {
				return fmt.Errorf("question %s: multiple choice needs 4 options including the answer", q.ID)
			}
		case domain.KindTrueFalse:
			if _, ok := q.CorrectAnswer.Bool(); !ok {
				return fmt.Errorf("question %s: true/false needs a boolean answer", q.ID)
			}
		case domain.KindFillBlank:
			if _, ok := q.CorrectAnswer.Text(); !ok {
				return fmt.Errorf("question %s: fill blank needs a text answer", q.ID)
			}
		case domain.KindMatching:
			if len(q.Options) != 9 || len(q.CorrectAnswers) == 0 {
				return fmt.Errorf("question %s: matching needs 9 options and a correct subset", q.ID)
			}
			for _, a := range q.CorrectAnswers {
				if !contains(q.Options, a) {
					return fmt.Errorf("question %s: %q is not an option", q.ID, a)
				}
			}
		default:
			return fmt.Errorf("question %s: unknown type %q", q.ID, q.Kind)
		}
	}
	return nil
}

// TimerTable maps region ids to their countdown seconds, skipping regions
// that have no timer.
func TimerTable(regions []domain.Region) map[string]int {
	table := make(map[string]int, len(regions))
	for _, region := range regions {
		if region.TimerSeconds != nil && *region.TimerSeconds > 0 {
			table[region.ID] = *region.TimerSeconds
		}
	}
	return table
}

// Bank is a parsed question bank held in memory. It keeps the order regions
// were declared in; a later duplicate id replaces the earlier entry.
type Bank struct {
	order   []string
	regions map[string]domain.Region
}

func NewBank(regions []domain.Region) *Bank {
	b := &Bank{regions: make(map[string]domain.Region, len(regions))}
	for _, region := range regions {
		if _, dup := b.regions[region.ID]; !dup {
			b.order = append(b.order, region.ID)
		}
		b.regions[region.ID] = region
	}
	return b
}

func (b *Bank) LoadRegion(_ context.Context, regionID string) (domain.Region, error) {
	if region, ok := b.regions[regionID]; ok {
		return region, nil
	}
	return domain.Region{}, domain.ErrRegionNotFound
}

func (b *Bank) LoadRegions(_ context.Context) ([]domain.Region, error) {
	out := make([]domain.Region, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.regions[id])
	}
	return out, nil
}

// NewLoader returns the bank at path, or the built-in bank when path is empty.
func NewLoader(path string) (*Bank, error) {
	var (
		regions []domain.Region
		err     error
	)
	if path == "" {
		regions, err = Builtin()
	} else {
		regions, err = Load(path)
	}
	if err != nil {
		return nil, err
	}
	return NewBank(regions), nil
}

// Timers loads every region from loader and builds the timer table.
func Timers(ctx context.Context, loader app.RegionLoader) (map[string]int, error) {
	regions, err := loader.LoadRegions(ctx)
	if err != nil {
		return nil, err
	}
	return TimerTable(regions), nil
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
