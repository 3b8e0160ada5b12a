package system

import (
	"time"

	"github.com/wormlife/wormlife/internal/core/event"
	coresys "github.com/wormlife/wormlife/internal/core/system"
)

// EventDispatchSystem delivers the events emitted during this tick once all
// simulation work is done, so listeners never observe a half-finished
// death and succession. Phase 3 (Output).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.Flush()
}
