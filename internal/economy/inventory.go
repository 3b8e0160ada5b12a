package economy

import (
	"fmt"
	"slices"

	"github.com/wormlife/wormlife/internal/component"
	"github.com/wormlife/wormlife/internal/world"
	"go.uber.org/zap"
)

// Slot is a cosmetic attachment point on a worm.
type Slot int

const (
	SlotHat Slot = iota
	SlotFace
	SlotCostume
)

func (s Slot) String() string {
	switch s {
	case SlotHat:
		return "hat"
	case SlotFace:
		return "face"
	case SlotCostume:
		return "costume"
	}
	return "unknown"
}

// Equipped is the set of item IDs currently worn; empty means nothing.
type Equipped struct {
	Hat     string
	Face    string
	Costume string
}

// Inventory tracks owned item identifiers and what the active worm wears.
// Item definitions live elsewhere; only IDs are kept here.
type Inventory struct {
	owned    []string
	equipped Equipped
	store    *world.Store
	log      *zap.Logger
}

func NewInventory(store *world.Store, log *zap.Logger) *Inventory {
	return &Inventory{owned: []string{}, store: store, log: log}
}

// Restore replaces the inventory from a loaded save.
func (inv *Inventory) Restore(owned []string, eq Equipped) {
	inv.owned = append(make([]string, 0, len(owned)), owned...)
	inv.equipped = eq
}

// Grant adds an item; owning the same item twice is a no-op.
func (inv *Inventory) Grant(itemID string) {
	if itemID == "" || inv.Owns(itemID) {
		return
	}
	inv.owned = append(inv.owned, itemID)
}

func (inv *Inventory) Owns(itemID string) bool {
	return slices.Contains(inv.owned, itemID)
}

// Equip puts an owned item in a slot and dresses the active worm with it.
func (inv *Inventory) Equip(slot Slot, itemID string) error {
	if !inv.Owns(itemID) {
		return fmt.Errorf("equip %s: item %q not owned", slot, itemID)
	}
	inv.set(slot, itemID)
	return inv.dress(slot, itemID)
}

// Unequip empties a slot on both the inventory and the active worm.
func (inv *Inventory) Unequip(slot Slot) error {
	inv.set(slot, "")
	return inv.dress(slot, "")
}

func (inv *Inventory) set(slot Slot, itemID string) {
	switch slot {
	case SlotHat:
		inv.equipped.Hat = itemID
	case SlotFace:
		inv.equipped.Face = itemID
	case SlotCostume:
		inv.equipped.Costume = itemID
	}
}

func (inv *Inventory) dress(slot Slot, itemID string) error {
	if inv.store == nil {
		return nil
	}
	w, ok := inv.store.Active()
	if !ok {
		return nil
	}
	return inv.store.Mutate(w.ID, func(w *component.Worm) {
		switch slot {
		case SlotHat:
			w.HatID = itemID
		case SlotFace:
			w.FaceID = itemID
		case SlotCostume:
			w.CostumeID = itemID
		}
	})
}

// OwnedItemIDs returns a copy of the owned item list.
func (inv *Inventory) OwnedItemIDs() []string {
	return append(make([]string, 0, len(inv.owned)), inv.owned...)
}

func (inv *Inventory) Equipped() Equipped { return inv.equipped }
