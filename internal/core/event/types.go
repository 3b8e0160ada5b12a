package event

import "github.com/wormlife/wormlife/internal/component"

// Cause explains why a worm died.
type Cause string

const (
	CauseOldAge Cause = "old_age"
)

type WormCreated struct {
	Worm component.Worm
}

// WormEvolved fires when a living worm moves to a later life stage.
type WormEvolved struct {
	Worm component.Worm
	From component.LifeStage
	To   component.LifeStage
}

type WormDied struct {
	Worm  component.Worm
	Cause Cause
}

// ActiveWormChanged fires whenever the active pointer moves. Prev is nil when
// there was no active worm before.
type ActiveWormChanged struct {
	Prev *component.Worm
	Next *component.Worm
}
