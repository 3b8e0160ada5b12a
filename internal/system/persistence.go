package system

import (
	"time"

	coresys "github.com/wormlife/wormlife/internal/core/system"
	"github.com/wormlife/wormlife/internal/persist"
	"go.uber.org/zap"
)

// HostSignal is a lifecycle notification from the host application.
type HostSignal int

const (
	HostPause HostSignal = iota
	HostFocusLost
	HostQuit
)

func (h HostSignal) String() string {
	switch h {
	case HostPause:
		return "pause"
	case HostFocusLost:
		return "focus_lost"
	case HostQuit:
		return "quit"
	}
	return "unknown"
}

// PersistenceSystem accumulates play time and autosaves the aggregate on a
// fixed interval. Phase 4 (Persist).
type PersistenceSystem struct {
	gateway  *persist.Gateway
	autosave *coresys.Periodic
	log      *zap.Logger
}

func NewPersistenceSystem(g *persist.Gateway, interval time.Duration, log *zap.Logger) *PersistenceSystem {
	s := &PersistenceSystem{gateway: g, log: log}
	s.autosave = coresys.NewPeriodic(interval, func() {
		// Failures are logged by the gateway; the next interval retries.
		_ = s.gateway.Save()
	})
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(dt time.Duration) {
	if !s.gateway.Loaded() {
		return
	}
	s.gateway.AddPlayTime(dt)
	s.autosave.Advance(dt)
}

// OnHost forces one synchronous save when the host pauses, loses focus or
// quits, and restarts the autosave interval.
func (s *PersistenceSystem) OnHost(sig HostSignal) error {
	s.log.Info("forced save", zap.Stringer("reason", sig))
	err := s.gateway.Save()
	s.autosave.Reset()
	if sig == HostQuit {
		s.autosave.Cancel()
	}
	return err
}

// SaveNow saves immediately without touching the autosave interval.
func (s *PersistenceSystem) SaveNow() error {
	return s.gateway.Save()
}

// StopAutosave cancels the periodic save; forced saves still work.
func (s *PersistenceSystem) StopAutosave() { s.autosave.Cancel() }
