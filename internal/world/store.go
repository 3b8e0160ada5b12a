package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/wormlife/wormlife/internal/component"
	"github.com/wormlife/wormlife/internal/core/ecs"
	"github.com/wormlife/wormlife/internal/core/event"
	"go.uber.org/zap"
)

var (
	ErrUnknownWorm   = errors.New("unknown worm")
	ErrMalformedWorm = errors.New("malformed worm")
)

// Store holds every worm created or restored in this session and tracks the
// single active worm. Accessed only from the game loop goroutine; no locks.
type Store struct {
	worms     *ecs.Store[component.Worm]
	ids       *ecs.Allocator
	order     []ecs.ID // insertion order, for picking a new active worm on removal
	active    ecs.ID
	hasActive bool

	bus *event.Bus
	log *zap.Logger
}

func NewStore(bus *event.Bus, log *zap.Logger) *Store {
	return &Store{
		worms: ecs.NewStore[component.Worm](),
		ids:   ecs.NewAllocator(),
		order: make([]ecs.ID, 0, 16),
		bus:   bus,
		log:   log,
	}
}

// Allocate reserves a fresh worm ID.
func (s *Store) Allocate() ecs.ID {
	return s.ids.Next()
}

// Add inserts a worm record. Malformed records are logged and dropped.
func (s *Store) Add(w component.Worm) error {
	if err := checkWorm(w); err != nil {
		s.log.Warn("rejected worm record", zap.Int64("id", int64(w.ID)), zap.Error(err))
		return err
	}
	if s.worms.Has(w.ID) {
		err := fmt.Errorf("%w: id %d already stored", ErrMalformedWorm, w.ID)
		s.log.Warn("rejected worm record", zap.Int64("id", int64(w.ID)), zap.Error(err))
		return err
	}
	rec := w.Clone()
	s.worms.Set(w.ID, &rec)
	s.order = append(s.order, w.ID)
	s.ids.Observe(w.ID)
	return nil
}

func checkWorm(w component.Worm) error {
	switch {
	case w.ID < 0:
		return fmt.Errorf("%w: negative id %d", ErrMalformedWorm, w.ID)
	case w.Generation < 1:
		return fmt.Errorf("%w: generation %d", ErrMalformedWorm, w.Generation)
	case !w.Stage.Valid():
		return fmt.Errorf("%w: life stage %d", ErrMalformedWorm, w.Stage)
	case !finite(w.Lifespan) || w.Lifespan <= 0:
		return fmt.Errorf("%w: lifespan %v", ErrMalformedWorm, w.Lifespan)
	case !finite(w.Age) || w.Age < 0:
		return fmt.Errorf("%w: age %v", ErrMalformedWorm, w.Age)
	}
	return nil
}

func finite(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }

// SetActive makes id the active worm and announces the change.
func (s *Store) SetActive(id ecs.ID) error {
	next, ok := s.worms.Get(id)
	if !ok {
		s.log.Warn("set active: unknown worm", zap.Int64("id", int64(id)))
		return fmt.Errorf("set active %d: %w", id, ErrUnknownWorm)
	}
	s.activate(next, s.activeCopy())
	return nil
}

func (s *Store) activate(next *component.Worm, prev *component.Worm) {
	s.active = next.ID
	s.hasActive = true
	n := next.Clone()
	event.Emit(s.bus, event.ActiveWormChanged{Prev: prev, Next: &n})
}

// Remove deletes a worm. Removing the active worm promotes the most recently
// added remaining worm, or leaves the store without an active worm.
func (s *Store) Remove(id ecs.ID) error {
	if !s.worms.Has(id) {
		s.log.Warn("remove: unknown worm", zap.Int64("id", int64(id)))
		return fmt.Errorf("remove %d: %w", id, ErrUnknownWorm)
	}
	wasActive := s.hasActive && s.active == id
	prev := s.activeCopy()
	s.worms.Remove(id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if !wasActive {
		return nil
	}
	if len(s.order) == 0 {
		s.hasActive = false
		event.Emit(s.bus, event.ActiveWormChanged{Prev: prev})
		return nil
	}
	next, _ := s.worms.Get(s.order[len(s.order)-1])
	s.activate(next, prev)
	return nil
}

// Clear empties the store and resets the ID allocator. Only used when a
// fresh save replaces the session.
func (s *Store) Clear() {
	s.worms.Clear()
	s.order = s.order[:0]
	s.hasActive = false
	s.active = 0
	s.ids.Reset()
}

// Mutate applies fn to the stored record. It is the only write path; the ID
// cannot be changed through it.
func (s *Store) Mutate(id ecs.ID, fn func(*component.Worm)) error {
	w, ok := s.worms.Get(id)
	if !ok {
		return fmt.Errorf("mutate %d: %w", id, ErrUnknownWorm)
	}
	fn(w)
	w.ID = id
	return nil
}

func (s *Store) Get(id ecs.ID) (component.Worm, bool) {
	w, ok := s.worms.Get(id)
	if !ok {
		return component.Worm{}, false
	}
	return w.Clone(), true
}

// Active returns a copy of the active worm.
func (s *Store) Active() (component.Worm, bool) {
	if !s.hasActive {
		return component.Worm{}, false
	}
	return s.Get(s.active)
}

func (s *Store) activeCopy() *component.Worm {
	w, ok := s.Active()
	if !ok {
		return nil
	}
	return &w
}

// ByGeneration returns the worms of one generation ordered by ID.
func (s *Store) ByGeneration(gen int) []component.Worm {
	return s.collect(func(w *component.Worm) bool { return w.Generation == gen })
}

// All returns every worm ordered by ID.
func (s *Store) All() []component.Worm {
	return s.collect(func(*component.Worm) bool { return true })
}

// AllAlive returns the living worms ordered by ID.
func (s *Store) AllAlive() []component.Worm {
	return s.collect(func(w *component.Worm) bool { return w.Alive })
}

func (s *Store) Len() int { return s.worms.Len() }

// NextID reports the ID the allocator will hand out next.
func (s *Store) NextID() ecs.ID { return s.ids.Peek() }

func (s *Store) collect(keep func(*component.Worm) bool) []component.Worm {
	out := make([]component.Worm, 0, s.worms.Len())
	s.worms.Each(func(_ ecs.ID, w *component.Worm) {
		if keep(w) {
			out = append(out, w.Clone())
		}
	})
	return out
}
