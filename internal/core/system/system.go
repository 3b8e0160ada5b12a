package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: host signals (pause, focus loss)
	PhaseUpdate                  // 1: lifecycle simulation
	PhasePostUpdate              // 2: play clock, collaborators
	PhaseOutput                  // 3: event dispatch
	PhasePersist                 // 4: autosave
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
