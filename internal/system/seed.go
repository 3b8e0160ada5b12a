package system

import (
	"github.com/wormlife/wormlife/internal/core/event"
	"github.com/wormlife/wormlife/internal/economy"
	"github.com/wormlife/wormlife/internal/lifecycle"
	"github.com/wormlife/wormlife/internal/persist"
	"go.uber.org/zap"
)

// SeedFromSave reseeds the live collaborators every time the gateway adopts
// an aggregate, on the initial load and on a reload from the backup. The
// returned function unsubscribes.
func SeedFromSave(bus *event.Bus, engine *lifecycle.Engine, wallet *economy.Wallet,
	inventory *economy.Inventory, achievements *economy.Achievements, log *zap.Logger) func() {
	return event.Subscribe(bus, func(ev persist.Loaded) {
		d := ev.Data
		restored := engine.Seed(d.WormList)
		if w, created := engine.Bootstrap(); created {
			log.Info("worm hatched on load", zap.String("name", w.Name), zap.Int("generation", w.Generation))
		}
		wallet.Restore(d.AcornCount, d.DiamondCount)
		inventory.Restore(d.OwnedItemIDs, d.Equipped())
		achievements.Restore(d.UnlockedAchIDs, d.AchievementWorms())
		log.Info("seeded from save",
			zap.String("source", string(ev.Source)),
			zap.Int("worms", restored),
			zap.Int("acorns", d.AcornCount),
			zap.Int("diamonds", d.DiamondCount))
	})
}
