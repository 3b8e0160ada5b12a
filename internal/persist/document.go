package persist

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wormlife/wormlife/internal/component"
	"github.com/wormlife/wormlife/internal/core/ecs"
	"github.com/wormlife/wormlife/internal/economy"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrInvalid marks a document that parsed but failed validation.
	ErrInvalid = errors.New("invalid save document")
	errEmpty   = errors.New("empty save document")
)

// AudioOption is a volume step for sound effects or music.
type AudioOption int

const (
	AudioOff AudioOption = iota
	AudioLow
	AudioMedium
	AudioHigh
	AudioMax
)

var audioNames = [...]string{"off", "low", "medium", "high", "max"}

func (a AudioOption) Valid() bool { return a >= AudioOff && a <= AudioMax }

func (a AudioOption) String() string {
	if !a.Valid() {
		return fmt.Sprintf("audio(%d)", int(a))
	}
	return audioNames[a]
}

// AchievementWormID pairs an achievement with the worm that earned it.
type AchievementWormID struct {
	AchievementID string `json:"achievementId"`
	WormID        ecs.ID `json:"wormId"`
}

// SaveData is the whole durable game state, written as one JSON document.
type SaveData struct {
	TotalPlayTime float64 `json:"totalPlayTime"` // seconds
	AcornCount    int     `json:"acornCount"`
	DiamondCount  int     `json:"diamondCount"`

	WormList []component.Worm `json:"wormList"`

	OwnedItemIDs      []string `json:"ownedItemIds"`
	EquippedHatID     string   `json:"equippedHatId"`
	EquippedFaceID    string   `json:"equippedFaceId"`
	EquippedCostumeID string   `json:"equippedCostumeId"`
	SelectedMapIndex  int      `json:"selectedMapIndex"`

	UnlockedAchIDs     []string            `json:"unlockedAchIds"`
	AchievementWormIDs []AchievementWormID `json:"achievementWormIds"`

	SfxOption AudioOption `json:"sfxOption"`
	BgmOption AudioOption `json:"bgmOption"`

	SessionID string `json:"sessionId,omitempty"` // process that wrote the file
	Checksum  string `json:"checksum,omitempty"`  // BLAKE2b-256 of the document without this field
}

// NewSaveData returns the default aggregate used when nothing could be loaded.
func NewSaveData() *SaveData {
	d := &SaveData{
		SfxOption: AudioMedium,
		BgmOption: AudioMedium,
	}
	d.normalize()
	return d
}

// Validate reports why d cannot be adopted as the current aggregate.
func (d *SaveData) Validate() error {
	switch {
	case d == nil:
		return fmt.Errorf("%w: missing document", ErrInvalid)
	case d.AcornCount < 0 || d.DiamondCount < 0:
		return fmt.Errorf("%w: negative resource counter (acorns %d, diamonds %d)", ErrInvalid, d.AcornCount, d.DiamondCount)
	case d.SelectedMapIndex < 0:
		return fmt.Errorf("%w: negative map index %d", ErrInvalid, d.SelectedMapIndex)
	case !d.SfxOption.Valid() || !d.BgmOption.Valid():
		return fmt.Errorf("%w: audio option out of range (sfx %d, bgm %d)", ErrInvalid, d.SfxOption, d.BgmOption)
	case d.WormList == nil:
		return fmt.Errorf("%w: wormList absent", ErrInvalid)
	case d.OwnedItemIDs == nil:
		return fmt.Errorf("%w: ownedItemIds absent", ErrInvalid)
	case d.UnlockedAchIDs == nil:
		return fmt.Errorf("%w: unlockedAchIds absent", ErrInvalid)
	}
	return nil
}

// normalize replaces absent lists with empty ones so they are always
// written as [] and never as null.
func (d *SaveData) normalize() {
	if d.WormList == nil {
		d.WormList = []component.Worm{}
	}
	for i := range d.WormList {
		if d.WormList[i].ChildIDs == nil {
			d.WormList[i].ChildIDs = []ecs.ID{}
		}
	}
	if d.OwnedItemIDs == nil {
		d.OwnedItemIDs = []string{}
	}
	if d.UnlockedAchIDs == nil {
		d.UnlockedAchIDs = []string{}
	}
	if d.AchievementWormIDs == nil {
		d.AchievementWormIDs = []AchievementWormID{}
	}
}

// Clone returns a deep copy.
func (d *SaveData) Clone() *SaveData {
	if d == nil {
		return nil
	}
	c := *d
	if d.WormList != nil {
		c.WormList = make([]component.Worm, len(d.WormList))
		for i, w := range d.WormList {
			c.WormList[i] = w.Clone()
		}
	}
	if d.OwnedItemIDs != nil {
		c.OwnedItemIDs = append([]string{}, d.OwnedItemIDs...)
	}
	if d.UnlockedAchIDs != nil {
		c.UnlockedAchIDs = append([]string{}, d.UnlockedAchIDs...)
	}
	if d.AchievementWormIDs != nil {
		c.AchievementWormIDs = append([]AchievementWormID{}, d.AchievementWormIDs...)
	}
	return &c
}

// Equipped returns the equip slots in the inventory's shape.
func (d *SaveData) Equipped() economy.Equipped {
	return economy.Equipped{Hat: d.EquippedHatID, Face: d.EquippedFaceID, Costume: d.EquippedCostumeID}
}

// AchievementWorms returns the qualifying worm list in the achievements' shape.
func (d *SaveData) AchievementWorms() []economy.AchievementWorm {
	out := make([]economy.AchievementWorm, 0, len(d.AchievementWormIDs))
	for _, a := range d.AchievementWormIDs {
		out = append(out, economy.AchievementWorm{AchievementID: a.AchievementID, WormID: a.WormID})
	}
	return out
}

// encode normalizes d, stamps its checksum and renders the file contents.
func encode(d *SaveData) ([]byte, error) {
	d.normalize()
	sum, err := checksum(d)
	if err != nil {
		return nil, err
	}
	d.Checksum = sum
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal save: %w", err)
	}
	return raw, nil
}

// decode parses and validates file contents. Parse failures are returned
// as-is; validation failures wrap ErrInvalid.
func decode(raw []byte) (*SaveData, error) {
	if len(raw) == 0 {
		return nil, errEmpty
	}
	var d SaveData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse save: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if d.Checksum != "" {
		want, err := checksum(&d)
		if err != nil {
			return nil, err
		}
		if want != d.Checksum {
			return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalid)
		}
	}
	d.normalize()
	return &d, nil
}

// checksum hashes the compact JSON of d with the checksum field cleared.
func checksum(d *SaveData) (string, error) {
	c := *d
	c.Checksum = ""
	body, err := json.Marshal(&c)
	if err != nil {
		return "", fmt.Errorf("marshal save for checksum: %w", err)
	}
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
