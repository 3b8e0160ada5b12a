package system

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/wormlife/wormlife/internal/component"
	"github.com/wormlife/wormlife/internal/core/event"
	coresys "github.com/wormlife/wormlife/internal/core/system"
	"github.com/wormlife/wormlife/internal/fade"
	"github.com/wormlife/wormlife/internal/persist"
	"github.com/wormlife/wormlife/internal/world"
)

const mourningFade = 5 * time.Second

// StatusSystem writes lifecycle announcements and a periodic heartbeat line
// for the active worm. After a death the heartbeat fades in over a short
// mourning period. Phase 3 (Output), after event dispatch.
type StatusSystem struct {
	out       io.Writer
	store     *world.Store
	heartbeat *coresys.Periodic
	mourning  fade.Fader
	unsub     []func()
}

func NewStatusSystem(out io.Writer, bus *event.Bus, store *world.Store, every time.Duration) *StatusSystem {
	s := &StatusSystem{out: out, store: store}
	s.mourning.Start(1, 0)
	s.heartbeat = coresys.NewPeriodic(every, s.printHeartbeat)
	s.unsub = append(s.unsub,
		event.Subscribe(bus, func(ev persist.Loaded) {
			fmt.Fprintf(s.out, "  %s save loaded from %s (%d worms)\n", color.YellowString("◆"), ev.Source, len(ev.Data.WormList))
		}),
		event.Subscribe(bus, func(ev event.WormCreated) {
			fmt.Fprintf(s.out, "  %s %s hatched (generation %d)\n", color.GreenString("✦"), ev.Worm.Name, ev.Worm.Generation)
		}),
		event.Subscribe(bus, func(ev event.WormEvolved) {
			fmt.Fprintf(s.out, "  %s %s grew: %s → %s\n", color.CyanString("▲"), ev.Worm.Name, ev.From, ev.To)
		}),
		event.Subscribe(bus, func(ev event.WormDied) {
			fmt.Fprintf(s.out, "  %s %s died of %s at %s\n", color.RedString("†"), ev.Worm.Name, ev.Cause, formatMinutes(ev.Worm.Age))
			s.mourning.Start(0, 0)
			s.mourning.Start(1, mourningFade)
		}),
	)
	return s
}

func (s *StatusSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *StatusSystem) Update(dt time.Duration) {
	s.mourning.Advance(dt)
	s.heartbeat.Advance(dt)
}

// Close unsubscribes from the bus.
func (s *StatusSystem) Close() {
	for _, u := range s.unsub {
		u()
	}
	s.unsub = nil
}

func (s *StatusSystem) printHeartbeat() {
	w, ok := s.store.Active()
	if !ok {
		return
	}
	line := fmt.Sprintf("%s · gen %d · %s · %s / %s",
		w.Name, w.Generation, w.Stage, formatMinutes(w.Age), formatMinutes(w.Lifespan))
	if s.mourning.Value() < 1 {
		line = color.New(color.Faint).Sprint(line)
	}
	fmt.Fprintf(s.out, "  %s %s\n", stageGlyph(w.Stage), line)
}

func stageGlyph(st component.LifeStage) string {
	switch st {
	case component.StageEgg:
		return "○"
	case component.StageElder:
		return "◉"
	case component.StageDeceased:
		return "†"
	}
	return "●"
}

func formatMinutes(m float64) string {
	d := time.Duration(m * float64(time.Minute)).Round(time.Minute)
	days := int(d.Hours()) / 24
	if days > 0 {
		return fmt.Sprintf("%dd%s", days, (d - time.Duration(days)*24*time.Hour).String())
	}
	return d.String()
}
