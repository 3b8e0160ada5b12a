package system

import (
	"time"

	coresys "github.com/wormlife/wormlife/internal/core/system"
	"github.com/wormlife/wormlife/internal/lifecycle"
)

// LifecycleSystem ages the active worm once per tick. Phase 1 (Update).
type LifecycleSystem struct {
	engine *lifecycle.Engine
}

func NewLifecycleSystem(engine *lifecycle.Engine) *LifecycleSystem {
	return &LifecycleSystem{engine: engine}
}

func (s *LifecycleSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *LifecycleSystem) Update(dt time.Duration) {
	s.engine.Tick(dt)
}
