package data

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed lifecycle.yaml
var defaultLifecycleYAML []byte

// StageTable holds the lower age/lifespan ratio of each living stage.
type StageTable struct {
	Thresholds []float64 `yaml:"thresholds"`
}

// LifespanRange controls how long a newborn worm lives.
type LifespanRange struct {
	MinMinutes      float64 `yaml:"min_minutes"`
	MaxMinutes      float64 `yaml:"max_minutes"`
	GenerationBonus float64 `yaml:"generation_bonus"` // fraction added per generation after the first
	MaxBonus        float64 `yaml:"max_bonus"`
}

type NameParts struct {
	Prefixes []string `yaml:"prefixes"`
	Suffixes []string `yaml:"suffixes"`
}

// Cosmetics are the attachment IDs a newborn worm starts with.
type Cosmetics struct {
	Hat     string `yaml:"hat"`
	Face    string `yaml:"face"`
	Costume string `yaml:"costume"`
}

// LifecycleTable is the static tuning data for the lifecycle engine.
type LifecycleTable struct {
	Stages    StageTable    `yaml:"stages"`
	Lifespan  LifespanRange `yaml:"lifespan"`
	Names     NameParts     `yaml:"names"`
	Cosmetics Cosmetics     `yaml:"cosmetics"`
}

// LoadLifecycleTable reads a lifecycle table from path, or the built-in table
// when path is empty.
func LoadLifecycleTable(path string) (*LifecycleTable, error) {
	if path == "" {
		return ParseLifecycleTable(defaultLifecycleYAML)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lifecycle table: %w", err)
	}
	t, err := ParseLifecycleTable(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func ParseLifecycleTable(raw []byte) (*LifecycleTable, error) {
	var t LifecycleTable
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse lifecycle table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *LifecycleTable) validate() error {
	th := t.Stages.Thresholds
	if len(th) != 6 {
		return fmt.Errorf("lifecycle table: want 6 stage thresholds, got %d", len(th))
	}
	if th[0] != 0 {
		return fmt.Errorf("lifecycle table: first threshold must be 0, got %v", th[0])
	}
	for i := 1; i < len(th); i++ {
		if th[i] <= th[i-1] || th[i] >= 1 {
			return fmt.Errorf("lifecycle table: threshold %d (%v) must increase and stay below 1", i, th[i])
		}
	}
	if t.Lifespan.MinMinutes <= 0 || t.Lifespan.MaxMinutes < t.Lifespan.MinMinutes {
		return fmt.Errorf("lifecycle table: bad lifespan range [%v, %v]", t.Lifespan.MinMinutes, t.Lifespan.MaxMinutes)
	}
	if t.Lifespan.GenerationBonus < 0 || t.Lifespan.MaxBonus < 0 {
		return fmt.Errorf("lifecycle table: negative lifespan bonus")
	}
	if len(t.Names.Prefixes) == 0 || len(t.Names.Suffixes) == 0 {
		return fmt.Errorf("lifecycle table: name prefixes and suffixes are required")
	}
	return nil
}

// Thresholds returns the stage thresholds as a fixed array.
func (t *LifecycleTable) Thresholds() [6]float64 {
	var out [6]float64
	copy(out[:], t.Stages.Thresholds)
	return out
}

// Breeder rolls lifespans and names for newborn worms from a LifecycleTable.
type Breeder struct {
	table *LifecycleTable
	rng   *rand.Rand
	title cases.Caser
}

func NewBreeder(t *LifecycleTable, rng *rand.Rand) *Breeder {
	return &Breeder{table: t, rng: rng, title: cases.Title(language.English)}
}

// Lifespan rolls a lifespan in simulated minutes for a worm of generation gen.
func (b *Breeder) Lifespan(gen int) float64 {
	r := b.table.Lifespan
	base := r.MinMinutes + b.rng.Float64()*(r.MaxMinutes-r.MinMinutes)
	bonus := r.GenerationBonus * float64(gen-1)
	if bonus > r.MaxBonus {
		bonus = r.MaxBonus
	}
	if bonus < 0 {
		bonus = 0
	}
	return base * (1 + bonus)
}

func (b *Breeder) Name(int) string {
	n := b.table.Names
	raw := n.Prefixes[b.rng.Intn(len(n.Prefixes))] + n.Suffixes[b.rng.Intn(len(n.Suffixes))]
	return b.title.String(raw)
}

func (b *Breeder) Cosmetics() Cosmetics { return b.table.Cosmetics }
