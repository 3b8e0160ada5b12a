package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/wormlife/wormlife/internal/component"
	"github.com/wormlife/wormlife/internal/core/event"
	"github.com/wormlife/wormlife/internal/economy"
	"github.com/wormlife/wormlife/internal/metrics"
	"go.uber.org/zap"
)

const (
	PrimaryName = "gamesave"
	BackupName  = "gamesave_backup"
)

var ErrNotLoaded = errors.New("save data not loaded")

// Source tells where the current aggregate came from.
type Source string

const (
	SourcePrimary Source = "primary"
	SourceBackup  Source = "backup"
	SourceFresh   Source = "fresh"
)

// Loaded is emitted after every successful load or reload. Data is a copy
// dependents may use to seed themselves.
type Loaded struct {
	Data   *SaveData
	Source Source
}

// Collaborators that own live state. The gateway pulls from them at save
// time; a nil collaborator contributes empty values.
type (
	WormSource interface {
		All() []component.Worm
	}
	ResourceSource interface {
		Counts() (acorns, diamonds int)
	}
	InventorySource interface {
		OwnedItemIDs() []string
		Equipped() economy.Equipped
	}
	AchievementSource interface {
		UnlockedIDs() []string
		QualifyingWorms() []economy.AchievementWorm
	}
)

type Sources struct {
	Worms        WormSource
	Resources    ResourceSource
	Inventory    InventorySource
	Achievements AchievementSource
}

// Settings are the player options stored in the aggregate.
type Settings struct {
	Sfx      AudioOption
	Bgm      AudioOption
	MapIndex int
}

// Gateway owns the save files and the in-memory aggregate. Accessed only
// from the game loop goroutine.
type Gateway struct {
	fs      afero.Fs
	primary string
	backup  string

	data   *SaveData
	source Source
	// primaryTrusted is false while the primary file on disk is one that was
	// rejected at load; it must not be rotated over a good backup.
	primaryTrusted bool

	sources Sources
	session string

	bus     *event.Bus
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewGateway(fs afero.Fs, dir string, bus *event.Bus, m *metrics.Metrics, log *zap.Logger) *Gateway {
	return &Gateway{
		fs:      fs,
		primary: filepath.Join(dir, PrimaryName),
		backup:  filepath.Join(dir, BackupName),
		session: uuid.NewString(),
		bus:     bus,
		metrics: m,
		log:     log.With(zap.String("save_dir", dir)),
	}
}

// Bind wires the live-state collaborators. Called after Load, once the
// collaborators have seeded themselves from the loaded aggregate.
func (g *Gateway) Bind(src Sources) { g.sources = src }

// Load reads the primary file, falling back to the backup and then to a
// fresh aggregate. It never fails.
func (g *Gateway) Load() *SaveData {
	d, src := g.load()
	g.adopt(d, src)
	return d.Clone()
}

func (g *Gateway) load() (*SaveData, Source) {
	raw, err := afero.ReadFile(g.fs, g.primary)
	if errors.Is(err, os.ErrNotExist) {
		g.log.Info("no save file, starting fresh")
		g.primaryTrusted = true
		return NewSaveData(), SourceFresh
	}
	if err != nil {
		g.log.Warn("save file unreadable", zap.Error(err))
		g.discardPrimary()
		return g.recover()
	}
	d, err := decode(raw)
	switch {
	case err == nil:
		g.primaryTrusted = true
		return d, SourcePrimary
	case errors.Is(err, errEmpty), errors.Is(err, ErrInvalid):
		g.log.Warn("save file rejected", zap.Error(err))
		g.primaryTrusted = false
	default:
		g.log.Warn("save file corrupt", zap.Error(err))
		g.discardPrimary()
	}
	return g.recover()
}

// recover adopts the backup if it is valid, otherwise a fresh aggregate.
func (g *Gateway) recover() (*SaveData, Source) {
	d, err := g.readBackup()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			g.log.Warn("backup unusable, starting fresh", zap.Error(err))
		} else {
			g.log.Warn("no backup, starting fresh")
		}
		return NewSaveData(), SourceFresh
	}
	g.log.Info("recovered save from backup", zap.Int("worms", len(d.WormList)))
	return d, SourceBackup
}

func (g *Gateway) readBackup() (*SaveData, error) {
	raw, err := afero.ReadFile(g.fs, g.backup)
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

// discardPrimary deletes a primary file that failed to read or parse so the
// next start does not trip over it again.
func (g *Gateway) discardPrimary() {
	if err := g.fs.Remove(g.primary); err != nil && !errors.Is(err, os.ErrNotExist) {
		g.log.Warn("could not delete corrupt save file", zap.Error(err))
		g.primaryTrusted = false
		return
	}
	g.primaryTrusted = true
}

func (g *Gateway) adopt(d *SaveData, src Source) {
	g.data = d
	g.source = src
	g.metrics.Loaded(string(src))
	g.log.Info("save data loaded",
		zap.String("source", string(src)),
		zap.Int("worms", len(d.WormList)),
		zap.Float64("play_time", d.TotalPlayTime))
	event.Emit(g.bus, Loaded{Data: d.Clone(), Source: src})
}

// ReloadFromBackup replaces the current aggregate with the backup file. On
// failure the current aggregate is kept.
func (g *Gateway) ReloadFromBackup() (*SaveData, error) {
	d, err := g.readBackup()
	if err != nil {
		g.log.Warn("reload from backup failed", zap.Error(err))
		return nil, fmt.Errorf("reload from backup: %w", err)
	}
	g.adopt(d, SourceBackup)
	return d.Clone(), nil
}

// Save snapshots the collaborators, rotates the primary into the backup and
// writes the new primary. A failed write puts the backup back in place.
func (g *Gateway) Save() error {
	if g.data == nil {
		g.log.Warn("save skipped: nothing loaded")
		return ErrNotLoaded
	}
	snap := g.snapshot()
	raw, err := encode(snap)
	if err != nil {
		g.log.Error("save encode failed", zap.Error(err))
		g.metrics.Saved("failed")
		return err
	}
	// From here on the snapshot is the in-memory truth even if the write fails.
	g.data = snap

	rotated := false
	if g.primaryTrusted {
		err := g.copyFile(g.primary, g.backup)
		switch {
		case err == nil:
			rotated = true
		case !errors.Is(err, os.ErrNotExist):
			g.log.Warn("backup rotation failed", zap.Error(err))
		}
	}

	if err := afero.WriteFile(g.fs, g.primary, raw, 0o644); err != nil {
		g.log.Error("save write failed", zap.Error(err))
		if !rotated {
			// A failed rotation may have left a torn backup; only a backup
			// that still decodes may replace the primary.
			if _, berr := g.readBackup(); berr != nil {
				g.log.Error("backup unusable, progress unsaved", zap.Error(berr))
				g.metrics.Saved("failed")
				return fmt.Errorf("write save: %w", err)
			}
		}
		if rerr := g.copyFile(g.backup, g.primary); rerr != nil {
			g.log.Error("restore from backup failed, progress unsaved", zap.Error(rerr))
			g.metrics.Saved("failed")
		} else {
			g.primaryTrusted = true
			g.metrics.Saved("restored")
		}
		return fmt.Errorf("write save: %w", err)
	}
	g.primaryTrusted = true
	g.metrics.Saved("ok")
	g.log.Debug("saved", zap.Int("bytes", len(raw)), zap.Int("worms", len(snap.WormList)))
	return nil
}

// snapshot builds a fresh aggregate from the collaborators. Gateway-owned
// fields (play time, settings) are carried over from the current aggregate.
func (g *Gateway) snapshot() *SaveData {
	cur := g.data
	d := &SaveData{
		TotalPlayTime:    cur.TotalPlayTime,
		SelectedMapIndex: cur.SelectedMapIndex,
		SfxOption:        cur.SfxOption,
		BgmOption:        cur.BgmOption,
		SessionID:        g.session,
	}
	s := g.sources
	if s.Worms != nil {
		d.WormList = s.Worms.All()
	}
	if s.Resources != nil {
		d.AcornCount, d.DiamondCount = s.Resources.Counts()
	}
	if s.Inventory != nil {
		d.OwnedItemIDs = s.Inventory.OwnedItemIDs()
		eq := s.Inventory.Equipped()
		d.EquippedHatID, d.EquippedFaceID, d.EquippedCostumeID = eq.Hat, eq.Face, eq.Costume
	}
	if s.Achievements != nil {
		d.UnlockedAchIDs = s.Achievements.UnlockedIDs()
		for _, a := range s.Achievements.QualifyingWorms() {
			d.AchievementWormIDs = append(d.AchievementWormIDs, AchievementWormID{AchievementID: a.AchievementID, WormID: a.WormID})
		}
	}
	d.normalize()
	return d
}

func (g *Gateway) copyFile(src, dst string) error {
	raw, err := afero.ReadFile(g.fs, src)
	if err != nil {
		return err
	}
	return afero.WriteFile(g.fs, dst, raw, 0o644)
}

// Data returns a copy of the current aggregate, or nil before Load.
func (g *Gateway) Data() *SaveData { return g.data.Clone() }

func (g *Gateway) Loaded() bool   { return g.data != nil }
func (g *Gateway) Source() Source { return g.source }

// AddPlayTime accumulates wall-clock play time.
func (g *Gateway) AddPlayTime(dt time.Duration) {
	if g.data == nil || dt <= 0 {
		return
	}
	g.data.TotalPlayTime += dt.Seconds()
}

func (g *Gateway) Settings() Settings {
	if g.data == nil {
		return Settings{Sfx: AudioMedium, Bgm: AudioMedium}
	}
	return Settings{Sfx: g.data.SfxOption, Bgm: g.data.BgmOption, MapIndex: g.data.SelectedMapIndex}
}

// SetSettings stores validated player options; they are written on the next save.
func (g *Gateway) SetSettings(s Settings) error {
	if g.data == nil {
		return ErrNotLoaded
	}
	if !s.Sfx.Valid() || !s.Bgm.Valid() || s.MapIndex < 0 {
		g.log.Warn("rejected settings", zap.Stringer("sfx", s.Sfx), zap.Stringer("bgm", s.Bgm), zap.Int("map", s.MapIndex))
		return fmt.Errorf("%w: settings out of range", ErrInvalid)
	}
	g.data.SfxOption, g.data.BgmOption, g.data.SelectedMapIndex = s.Sfx, s.Bgm, s.MapIndex
	return nil
}
