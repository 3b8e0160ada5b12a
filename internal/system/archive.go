package system

import (
	"context"
	"time"

	"github.com/wormlife/wormlife/internal/core/event"
	"github.com/wormlife/wormlife/internal/persist"
	"go.uber.org/zap"
)

// RecordDeaths appends every WormDied event to the lineage archive. The
// returned function stops recording.
func RecordDeaths(bus *event.Bus, archive *persist.Archive, now func() time.Time, log *zap.Logger) func() {
	return event.Subscribe(bus, func(ev event.WormDied) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := archive.RecordDeath(ctx, ev.Worm, string(ev.Cause), now()); err != nil {
			log.Error("archive death failed", zap.Int64("id", int64(ev.Worm.ID)), zap.Error(err))
		}
	})
}
