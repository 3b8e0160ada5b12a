// Package fade holds the time interpolation used by presentation layers for
// fades tied to lifecycle events (a worm's death, a save indicator). It has
// no timers of its own; callers advance it from their tick.
package fade

import "time"

// Strength returns the signal strength in [0,1] for a fade that has run for
// elapsed out of duration, with a smoothstep ease. A non-positive duration
// is an instant fade.
func Strength(elapsed, duration time.Duration) float64 {
	if duration <= 0 || elapsed >= duration {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	t := float64(elapsed) / float64(duration)
	return t * t * (3 - 2*t)
}

// Fader runs one fade at a time. Starting a new fade supersedes the one in
// progress and restarts the clock.
type Fader struct {
	from, to float64
	elapsed  time.Duration
	duration time.Duration
	run      uint64 // incremented on every Start; identifies the live fade
	active   bool
}

// Start begins a fade from the current value to target over d and returns
// the run number of the new fade.
func (f *Fader) Start(target float64, d time.Duration) uint64 {
	f.from = f.Value()
	f.to = target
	f.elapsed = 0
	f.duration = d
	f.run++
	f.active = true
	return f.run
}

// Advance moves the fade forward and reports whether it just finished.
func (f *Fader) Advance(dt time.Duration) bool {
	if !f.active || dt <= 0 {
		return false
	}
	f.elapsed += dt
	if f.elapsed >= f.duration {
		f.elapsed = f.duration
		f.active = false
		return true
	}
	return false
}

// Cancel stops the fade where it is.
func (f *Fader) Cancel() {
	if f.active {
		f.from = f.Value()
		f.to = f.from
		f.active = false
	}
}

// Value returns the current interpolated value.
func (f *Fader) Value() float64 {
	s := Strength(f.elapsed, f.duration)
	return f.from + (f.to-f.from)*s
}

func (f *Fader) Active() bool { return f.active }
func (f *Fader) Run() uint64  { return f.run }
