// Package lifecycle ages the active worm, moves it through its life stages,
// and replaces it with the next generation when it dies.
package lifecycle

import (
	"math"
	"time"

	"github.com/wormlife/wormlife/internal/component"
	"github.com/wormlife/wormlife/internal/core/ecs"
	"github.com/wormlife/wormlife/internal/core/event"
	"github.com/wormlife/wormlife/internal/data"
	"github.com/wormlife/wormlife/internal/metrics"
	"github.com/wormlife/wormlife/internal/world"
	"go.uber.org/zap"
)

// Breeder supplies the randomized traits of a newborn worm.
type Breeder interface {
	Lifespan(generation int) float64
	Name(generation int) string
	Cosmetics() data.Cosmetics
}

type Config struct {
	// Thresholds is the lower age/lifespan ratio of each living stage.
	// Thresholds[0] must be 0 and the values strictly increasing below 1.
	Thresholds [component.AliveStages]float64
	// TimeMultiplier scales wall-clock time into simulated time.
	TimeMultiplier float64
}

// Engine is the lifecycle state machine. It only ever touches the active
// worm, and only from the game loop goroutine.
type Engine struct {
	store   *world.Store
	bus     *event.Bus
	breeder Breeder
	cfg     Config
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewEngine(store *world.Store, bus *event.Bus, breeder Breeder, cfg Config, m *metrics.Metrics, log *zap.Logger) *Engine {
	if cfg.TimeMultiplier <= 0 {
		cfg.TimeMultiplier = 1
	}
	return &Engine{
		store:   store,
		bus:     bus,
		breeder: breeder,
		cfg:     cfg,
		metrics: m,
		log:     log,
	}
}

// StageFor maps an age to a life stage. Anything at or past the lifespan is
// deceased regardless of the ratio.
func (e *Engine) StageFor(age, lifespan float64) component.LifeStage {
	return StageFor(e.cfg.Thresholds, age, lifespan)
}

func StageFor(th [component.AliveStages]float64, age, lifespan float64) component.LifeStage {
	if age >= lifespan {
		return component.StageDeceased
	}
	ratio := age / lifespan
	stage := component.StageEgg
	for i := 1; i < len(th); i++ {
		if ratio >= th[i] {
			stage = component.LifeStage(i)
		}
	}
	return stage
}

// Tick converts a wall-clock delta into simulated minutes and advances.
func (e *Engine) Tick(dt time.Duration) {
	e.Advance(dt.Minutes() * e.cfg.TimeMultiplier)
}

// Advance ages the active worm by minutes of simulated time. Non-positive
// deltas and a missing active worm are silent no-ops. Death, successor
// creation and the active switch happen inside this one call.
func (e *Engine) Advance(minutes float64) {
	if !(minutes > 0) || math.IsInf(minutes, 0) {
		return
	}
	cur, ok := e.store.Active()
	if !ok {
		return
	}
	if !cur.Alive {
		e.ensureSuccessor(cur)
		return
	}

	var (
		from, to component.LifeStage
		died     bool
	)
	_ = e.store.Mutate(cur.ID, func(w *component.Worm) {
		from = w.Stage
		w.Age += minutes
		to = e.StageFor(w.Age, w.Lifespan)
		if to < w.Stage {
			to = w.Stage
		}
		w.Stage = to
		if to == component.StageDeceased {
			w.Alive = false
			died = true
		}
	})
	e.metrics.Tick()

	updated, _ := e.store.Get(cur.ID)
	switch {
	case died:
		e.log.Info("worm died",
			zap.Int64("id", int64(updated.ID)),
			zap.String("name", updated.Name),
			zap.Int("generation", updated.Generation),
			zap.Float64("age", updated.Age))
		event.Emit(e.bus, event.WormDied{Worm: updated, Cause: event.CauseOldAge})
		e.metrics.Died(string(event.CauseOldAge))
		e.succeed(updated)
	case to > from:
		e.log.Debug("worm evolved",
			zap.Int64("id", int64(updated.ID)),
			zap.Stringer("from", from),
			zap.Stringer("to", to))
		event.Emit(e.bus, event.WormEvolved{Worm: updated, From: from, To: to})
		e.metrics.Evolved(to.String())
	}
}

// Bootstrap makes sure a living worm is active: it creates generation 1 in
// an empty store and repairs a dead active worm that has no successor.
func (e *Engine) Bootstrap() (component.Worm, bool) {
	if e.store.Len() == 0 {
		w := e.spawn(1, component.NoParent)
		return w, true
	}
	cur, ok := e.store.Active()
	if !ok {
		if id, found := pickActive(e.store.All()); found {
			_ = e.store.SetActive(id)
			cur, _ = e.store.Active()
		}
	}
	if !cur.Alive {
		return e.ensureSuccessor(cur), true
	}
	return cur, false
}

// ensureSuccessor activates (or creates) the successor of a dead worm.
func (e *Engine) ensureSuccessor(dead component.Worm) component.Worm {
	for _, id := range dead.ChildIDs {
		if child, ok := e.store.Get(id); ok {
			_ = e.store.SetActive(id)
			e.metrics.ActiveGeneration(child.Generation)
			return child
		}
	}
	e.log.Warn("dead worm without successor, creating one",
		zap.Int64("id", int64(dead.ID)), zap.Int("generation", dead.Generation))
	return e.succeed(dead)
}

func (e *Engine) succeed(dead component.Worm) component.Worm {
	child := e.spawn(dead.Generation+1, dead.ID)
	_ = e.store.Mutate(dead.ID, func(w *component.Worm) {
		if !w.HasChild(child.ID) {
			w.ChildIDs = append(w.ChildIDs, child.ID)
		}
	})
	return child
}

// spawn creates a newborn worm and makes it active.
func (e *Engine) spawn(generation int, parent ecs.ID) component.Worm {
	look := e.breeder.Cosmetics()
	w := component.Worm{
		ID:         e.store.Allocate(),
		Generation: generation,
		ParentID:   parent,
		ChildIDs:   []ecs.ID{},
		Lifespan:   e.breeder.Lifespan(generation),
		Stage:      component.StageEgg,
		Alive:      true,
		Name:       e.breeder.Name(generation),
		HatID:      look.Hat,
		FaceID:     look.Face,
		CostumeID:  look.Costume,
	}
	if err := e.store.Add(w); err != nil {
		// Allocate never collides with stored IDs; reaching this is a bug.
		e.log.Error("spawn rejected", zap.Error(err))
		return w
	}
	e.log.Info("worm born",
		zap.Int64("id", int64(w.ID)),
		zap.String("name", w.Name),
		zap.Int("generation", generation),
		zap.Float64("lifespan", w.Lifespan))
	event.Emit(e.bus, event.WormCreated{Worm: w.Clone()})
	e.metrics.Born(generation)
	_ = e.store.SetActive(w.ID)
	return w
}

// Seed restores persisted worms verbatim and activates the newest
// generation (ties go to the highest ID). Restored ages and stages are
// trusted; Check reports disagreements without fixing them.
func (e *Engine) Seed(worms []component.Worm) int {
	e.store.Clear()
	n := 0
	for _, w := range worms {
		if err := e.store.Add(w); err == nil {
			n++
		}
	}
	if id, ok := pickActive(e.store.All()); ok {
		_ = e.store.SetActive(id)
		w, _ := e.store.Get(id)
		e.metrics.ActiveGeneration(w.Generation)
	}
	e.Check()
	return n
}

func pickActive(worms []component.Worm) (ecs.ID, bool) {
	if len(worms) == 0 {
		return 0, false
	}
	best := worms[0]
	for _, w := range worms[1:] {
		if w.Generation > best.Generation || (w.Generation == best.Generation && w.ID > best.ID) {
			best = w
		}
	}
	return best.ID, true
}

// Mismatch is a worm whose stored stage disagrees with its age.
type Mismatch struct {
	ID       ecs.ID
	Stored   component.LifeStage
	Expected component.LifeStage
}

// Check recomputes every worm's stage from its age and lifespan and logs
// the disagreements. It never mutates the store.
func (e *Engine) Check() []Mismatch {
	var out []Mismatch
	for _, w := range e.store.All() {
		want := e.StageFor(w.Age, w.Lifespan)
		if !w.Alive {
			want = component.StageDeceased
		}
		if want == w.Stage {
			continue
		}
		out = append(out, Mismatch{ID: w.ID, Stored: w.Stage, Expected: want})
		e.log.Warn("restored worm stage disagrees with age",
			zap.Int64("id", int64(w.ID)),
			zap.Stringer("stored", w.Stage),
			zap.Stringer("expected", want),
			zap.Float64("age", w.Age),
			zap.Float64("lifespan", w.Lifespan))
	}
	return out
}
