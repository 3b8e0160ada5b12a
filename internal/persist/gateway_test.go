package persist

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wormlife/wormlife/internal/component"
	"github.com/wormlife/wormlife/internal/core/ecs"
	"github.com/wormlife/wormlife/internal/core/event"
	"github.com/wormlife/wormlife/internal/economy"
)

const dir = "/save"

type wormList []component.Worm

func (l wormList) All() []component.Worm { return l }

type counts struct{ acorns, diamonds int }

func (c counts) Counts() (int, int) { return c.acorns, c.diamonds }

func sampleWorms() wormList {
	return wormList{
		{ID: 0, Generation: 1, ParentID: component.NoParent, ChildIDs: []ecs.ID{1}, Age: 4320.25, Lifespan: 4320.25, Stage: component.StageDeceased, Name: "Wiggle"},
		{ID: 1, Generation: 2, ParentID: 0, ChildIDs: []ecs.ID{}, Age: 12.5, Lifespan: 5000.125, Stage: component.StageBaby, Alive: true, Name: "Squirm", HatID: "hat_leaf"},
	}
}

func newGateway(fs afero.Fs) *Gateway {
	return NewGateway(fs, dir, nil, nil, zap.NewNop())
}

func writeDoc(t *testing.T, fs afero.Fs, name string, d *SaveData) {
	t.Helper()
	raw, err := encode(d)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, dir+"/"+name, raw, 0o644))
}

func TestLoadMissingPrimaryIsFreshAndIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	// A valid backup is ignored when the primary is simply absent.
	writeDoc(t, fs, BackupName, &SaveData{AcornCount: 9, SfxOption: AudioLow})

	a := newGateway(fs).Load()
	b := newGateway(fs).Load()

	assert.Equal(t, a, b)
	assert.Equal(t, NewSaveData(), a)
	assert.Zero(t, a.AcornCount)
	assert.NotNil(t, a.WormList)
	assert.Empty(t, a.WormList)
	assert.NotNil(t, a.OwnedItemIDs)
	assert.NotNil(t, a.UnlockedAchIDs)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := newGateway(fs)
	g.Load()
	inv := economy.NewInventory(nil, zap.NewNop())
	inv.Grant("hat_leaf")
	inv.Restore(inv.OwnedItemIDs(), economy.Equipped{Hat: "hat_leaf"})
	ach := economy.NewAchievements()
	ach.Unlock("first_death", 0)
	g.Bind(Sources{Worms: sampleWorms(), Resources: counts{3, 1}, Inventory: inv, Achievements: ach})
	require.NoError(t, g.SetSettings(Settings{Sfx: AudioHigh, Bgm: AudioOff, MapIndex: 2}))
	g.AddPlayTime(90 * time.Second)
	require.NoError(t, g.Save())

	r := newGateway(fs)
	got := r.Load()
	assert.Equal(t, SourcePrimary, r.Source())

	require.Len(t, got.WormList, 2)
	for i, want := range sampleWorms() {
		w := got.WormList[i]
		assert.Equal(t, want.ID, w.ID)
		assert.Equal(t, want.Generation, w.Generation)
		assert.Equal(t, want.Age, w.Age)
		assert.Equal(t, want.Lifespan, w.Lifespan)
		assert.Equal(t, want.Stage, w.Stage)
		assert.Equal(t, want.ParentID, w.ParentID)
		assert.Equal(t, want.ChildIDs, w.ChildIDs)
		assert.Equal(t, want.HatID, w.HatID)
	}
	assert.Equal(t, 3, got.AcornCount)
	assert.Equal(t, 1, got.DiamondCount)
	assert.Equal(t, []string{"hat_leaf"}, got.OwnedItemIDs)
	assert.Equal(t, "hat_leaf", got.EquippedHatID)
	assert.Equal(t, []string{"first_death"}, got.UnlockedAchIDs)
	assert.Equal(t, []AchievementWormID{{AchievementID: "first_death", WormID: 0}}, got.AchievementWormIDs)
	assert.Equal(t, Settings{Sfx: AudioHigh, Bgm: AudioOff, MapIndex: 2}, r.Settings())
	assert.InDelta(t, 90.0, got.TotalPlayTime, 1e-9)
	assert.NotEmpty(t, got.SessionID)
	assert.NotEmpty(t, got.Checksum)
}

func TestSaveRotatesSingleBackup(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := newGateway(fs)
	g.Load()

	g.Bind(Sources{Resources: counts{1, 0}})
	require.NoError(t, g.Save())
	exists, _ := afero.Exists(fs, dir+"/"+BackupName)
	assert.False(t, exists, "first save has nothing to back up")

	g.Bind(Sources{Resources: counts{2, 0}})
	require.NoError(t, g.Save())
	g.Bind(Sources{Resources: counts{3, 0}})
	require.NoError(t, g.Save())

	backup, err := g.readBackup()
	require.NoError(t, err)
	assert.Equal(t, 2, backup.AcornCount)
	assert.Equal(t, 3, newGateway(fs).Load().AcornCount)
}

func TestGarbagePrimaryRecoversFromBackup(t *testing.T) {
	fs := afero.NewMemMapFs()
	want := &SaveData{AcornCount: 7, DiamondCount: 2, WormList: sampleWorms(), SfxOption: AudioMax, BgmOption: AudioLow}
	writeDoc(t, fs, BackupName, want)
	require.NoError(t, afero.WriteFile(fs, dir+"/"+PrimaryName, []byte(`{"acornCount": 3, "wormList": [ garbage`), 0o644))

	g := newGateway(fs)
	got := g.Load()

	assert.Equal(t, SourceBackup, g.Source())
	wantDecoded, err := g.readBackup()
	require.NoError(t, err)
	assert.Equal(t, wantDecoded, got)
	assert.Equal(t, 7, got.AcornCount)

	exists, _ := afero.Exists(fs, dir+"/"+PrimaryName)
	assert.False(t, exists, "corrupt primary is deleted")
}

func TestRejectedPrimaryFallsBack(t *testing.T) {
	backup := &SaveData{AcornCount: 5}
	cases := map[string]func(fs afero.Fs){
		"zero length": func(fs afero.Fs) {
			_ = afero.WriteFile(fs, dir+"/"+PrimaryName, nil, 0o644)
		},
		"negative acorns": func(fs afero.Fs) {
			raw, _ := json.Marshal(map[string]any{"acornCount": -1, "wormList": []any{}, "ownedItemIds": []any{}, "unlockedAchIds": []any{}})
			_ = afero.WriteFile(fs, dir+"/"+PrimaryName, raw, 0o644)
		},
		"missing wormList": func(fs afero.Fs) {
			raw, _ := json.Marshal(map[string]any{"ownedItemIds": []any{}, "unlockedAchIds": []any{}})
			_ = afero.WriteFile(fs, dir+"/"+PrimaryName, raw, 0o644)
		},
		"audio out of range": func(fs afero.Fs) {
			raw, _ := json.Marshal(map[string]any{"sfxOption": 5, "wormList": []any{}, "ownedItemIds": []any{}, "unlockedAchIds": []any{}})
			_ = afero.WriteFile(fs, dir+"/"+PrimaryName, raw, 0o644)
		},
		"checksum mismatch": func(fs afero.Fs) {
			d := &SaveData{AcornCount: 1}
			raw, _ := encode(d)
			var m map[string]any
			_ = json.Unmarshal(raw, &m)
			m["acornCount"] = 999
			raw, _ = json.Marshal(m)
			_ = afero.WriteFile(fs, dir+"/"+PrimaryName, raw, 0o644)
		},
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeDoc(t, fs, BackupName, backup)
			corrupt(fs)

			g := newGateway(fs)
			got := g.Load()
			assert.Equal(t, SourceBackup, g.Source())
			assert.Equal(t, 5, got.AcornCount)
		})
	}
}

func TestRejectedPrimaryIsNotRotatedOverBackup(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDoc(t, fs, BackupName, &SaveData{AcornCount: 5})
	require.NoError(t, afero.WriteFile(fs, dir+"/"+PrimaryName, nil, 0o644))

	g := newGateway(fs)
	g.Load()
	g.Bind(Sources{Resources: counts{6, 0}})
	require.NoError(t, g.Save())

	backup, err := g.readBackup()
	require.NoError(t, err)
	assert.Equal(t, 5, backup.AcornCount)
}

func TestBothFilesInvalidStartsFresh(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, dir+"/"+PrimaryName, []byte("}{"), 0o644))
	require.NoError(t, afero.WriteFile(fs, dir+"/"+BackupName, []byte("null"), 0o644))

	g := newGateway(fs)
	got := g.Load()
	assert.Equal(t, SourceFresh, g.Source())
	assert.Equal(t, NewSaveData(), got)
}

func TestSaveBeforeLoad(t *testing.T) {
	g := newGateway(afero.NewMemMapFs())
	assert.ErrorIs(t, g.Save(), ErrNotLoaded)
	assert.ErrorIs(t, g.SetSettings(Settings{}), ErrNotLoaded)
	assert.Nil(t, g.Data())
}

func TestWriteFailureKeepsPreviousSaveAndLogs(t *testing.T) {
	base := afero.NewMemMapFs()
	g := newGateway(base)
	g.Load()
	g.Bind(Sources{Resources: counts{4, 0}})
	require.NoError(t, g.Save())

	core, logs := observer.New(zapcore.ErrorLevel)
	ro := NewGateway(afero.NewReadOnlyFs(base), dir, nil, nil, zap.New(core))
	ro.Load()
	ro.Bind(Sources{Resources: counts{10, 0}})

	var err error
	assert.NotPanics(t, func() { err = ro.Save() })
	assert.Error(t, err)
	assert.Equal(t, 10, ro.Data().AcornCount, "in-memory aggregate keeps the unsaved state")
	assert.NotZero(t, logs.FilterMessage("save write failed").Len())
	assert.Equal(t, 4, newGateway(base).Load().AcornCount, "previous save intact")
}

// failingWriteFs fails the first write to each path in fail, leaving the
// mapped contents behind; an empty value leaves the file untouched.
type failingWriteFs struct {
	afero.Fs
	fail map[string]string
}

func (f *failingWriteFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if left, ok := f.fail[name]; ok && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		delete(f.fail, name)
		if left != "" {
			_ = afero.WriteFile(f.Fs, name, []byte(left), perm)
		}
		return nil, os.ErrPermission
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestTornWriteRestoresPrimaryFromBackup(t *testing.T) {
	base := afero.NewMemMapFs()
	g := newGateway(base)
	g.Load()
	g.Bind(Sources{Resources: counts{1, 0}})
	require.NoError(t, g.Save())
	g.Bind(Sources{Resources: counts{2, 0}})
	require.NoError(t, g.Save())

	flaky := NewGateway(&failingWriteFs{Fs: base, fail: map[string]string{dir + "/" + PrimaryName: `{"acornCount":`}}, dir, nil, nil, zap.NewNop())
	flaky.Load()
	flaky.Bind(Sources{Resources: counts{3, 0}})
	assert.Error(t, flaky.Save())

	// The rotation copied the old primary (2) into the backup before the
	// failed write, and the restore put it back.
	got := newGateway(base).Load()
	assert.Equal(t, 2, got.AcornCount)
}

func TestReloadFromBackup(t *testing.T) {
	fs := afero.NewMemMapFs()
	bus := event.NewBus()
	var loads []Loaded
	event.Subscribe(bus, func(ev Loaded) { loads = append(loads, ev) })

	g := NewGateway(fs, dir, bus, nil, zap.NewNop())
	g.Load()
	_, err := g.ReloadFromBackup()
	assert.Error(t, err, "no backup yet")

	writeDoc(t, fs, BackupName, &SaveData{DiamondCount: 4})
	got, err := g.ReloadFromBackup()
	require.NoError(t, err)
	assert.Equal(t, 4, got.DiamondCount)
	assert.Equal(t, SourceBackup, g.Source())

	bus.Flush()
	require.Len(t, loads, 2)
	assert.Equal(t, SourceFresh, loads[0].Source)
	assert.Equal(t, SourceBackup, loads[1].Source)
	assert.Equal(t, 4, loads[1].Data.DiamondCount)
}

func TestSetSettingsValidates(t *testing.T) {
	g := newGateway(afero.NewMemMapFs())
	g.Load()
	assert.ErrorIs(t, g.SetSettings(Settings{Sfx: AudioMax + 1}), ErrInvalid)
	assert.ErrorIs(t, g.SetSettings(Settings{MapIndex: -1}), ErrInvalid)
	assert.Equal(t, Settings{Sfx: AudioMedium, Bgm: AudioMedium}, g.Settings())
}

func TestNilCollaboratorsContributeDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeDoc(t, fs, PrimaryName, &SaveData{AcornCount: 8, OwnedItemIDs: []string{"x"}})
	g := newGateway(fs)
	g.Load()
	require.NoError(t, g.Save())

	got := newGateway(fs).Load()
	assert.Zero(t, got.AcornCount)
	assert.Empty(t, got.OwnedItemIDs)
	assert.NotNil(t, got.OwnedItemIDs)
}

func TestTornBackupIsNotRestoredOverPrimary(t *testing.T) {
	base := afero.NewMemMapFs()
	g := newGateway(base)
	g.Load()
	g.Bind(Sources{Resources: counts{1, 0}})
	require.NoError(t, g.Save())
	g.Bind(Sources{Resources: counts{2, 0}})
	require.NoError(t, g.Save())

	flaky := NewGateway(&failingWriteFs{Fs: base, fail: map[string]string{
		dir + "/" + BackupName:  `{"acornCount":`,
		dir + "/" + PrimaryName: "",
	}}, dir, nil, nil, zap.NewNop())
	flaky.Load()
	flaky.Bind(Sources{Resources: counts{3, 0}})
	assert.Error(t, flaky.Save())

	r := newGateway(base)
	assert.Equal(t, 2, r.Load().AcornCount)
	assert.Equal(t, SourcePrimary, r.Source())
}
