package system

import "time"

// Periodic is a cancellable fixed-interval task driven by tick deltas rather
// than a wall-clock timer, so it runs on the same goroutine as the runner.
type Periodic struct {
	interval  time.Duration
	elapsed   time.Duration
	fn        func()
	cancelled bool
}

// NewPeriodic panics on a non-positive interval; that is a wiring bug.
func NewPeriodic(interval time.Duration, fn func()) *Periodic {
	if interval <= 0 {
		panic("system: periodic interval must be positive")
	}
	return &Periodic{interval: interval, fn: fn}
}

// Advance accumulates dt and fires once if the interval elapsed. A long
// stall fires at most once; missed runs are not replayed.
func (p *Periodic) Advance(dt time.Duration) bool {
	if p.cancelled || dt <= 0 {
		return false
	}
	p.elapsed += dt
	if p.elapsed < p.interval {
		return false
	}
	p.elapsed = 0
	p.fn()
	return true
}

// Reset restarts the interval from zero and re-arms a cancelled task.
func (p *Periodic) Reset() {
	p.elapsed = 0
	p.cancelled = false
}

func (p *Periodic) Cancel()         { p.cancelled = true }
func (p *Periodic) Cancelled() bool { return p.cancelled }
