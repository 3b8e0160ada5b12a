package economy

import (
	"slices"

	"github.com/wormlife/wormlife/internal/core/ecs"
)

// AchievementWorm records which worm earned an achievement.
type AchievementWorm struct {
	AchievementID string
	WormID        ecs.ID
}

// Achievements tracks unlocked achievement identifiers. Unlock rules are
// owned by the UI layer; this only remembers the outcome.
type Achievements struct {
	unlocked []string
	earnedBy []AchievementWorm
}

func NewAchievements() *Achievements {
	return &Achievements{unlocked: []string{}, earnedBy: []AchievementWorm{}}
}

func (a *Achievements) Restore(unlocked []string, earnedBy []AchievementWorm) {
	a.unlocked = append(make([]string, 0, len(unlocked)), unlocked...)
	a.earnedBy = append(make([]AchievementWorm, 0, len(earnedBy)), earnedBy...)
}

// Unlock records an achievement earned by worm. It returns false if the
// achievement was already unlocked.
func (a *Achievements) Unlock(id string, worm ecs.ID) bool {
	if id == "" || slices.Contains(a.unlocked, id) {
		return false
	}
	a.unlocked = append(a.unlocked, id)
	a.earnedBy = append(a.earnedBy, AchievementWorm{AchievementID: id, WormID: worm})
	return true
}

func (a *Achievements) Unlocked(id string) bool { return slices.Contains(a.unlocked, id) }

func (a *Achievements) UnlockedIDs() []string {
	return append(make([]string, 0, len(a.unlocked)), a.unlocked...)
}

func (a *Achievements) QualifyingWorms() []AchievementWorm {
	return append(make([]AchievementWorm, 0, len(a.earnedBy)), a.earnedBy...)
}
