package scripting

import "github.com/wormlife/wormlife/internal/data"

// Fallback is the table-driven breeder the scripts may override.
type Fallback interface {
	Lifespan(generation int) float64
	Name(generation int) string
	Cosmetics() data.Cosmetics
}

// Breeder lets worm_lifespan and worm_name override the table-driven rolls.
// The table result is always computed first and passed to the script as
// "base", so a script can scale it or ignore it.
type Breeder struct {
	engine   *Engine
	fallback Fallback
}

func NewBreeder(e *Engine, fallback Fallback) *Breeder {
	return &Breeder{engine: e, fallback: fallback}
}

func (b *Breeder) Lifespan(generation int) float64 {
	base := b.fallback.Lifespan(generation)
	if v, ok := b.engine.CalcLifespan(generation, base); ok {
		return v
	}
	return base
}

func (b *Breeder) Name(generation int) string {
	base := b.fallback.Name(generation)
	if v, ok := b.engine.WormName(generation, base); ok {
		return v
	}
	return base
}

func (b *Breeder) Cosmetics() data.Cosmetics { return b.fallback.Cosmetics() }
