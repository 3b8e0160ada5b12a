package component

import "github.com/wormlife/wormlife/internal/core/ecs"

// LifeStage is the age-derived phase of a worm. Stages only move forward.
type LifeStage int

const (
	StageEgg      LifeStage = 0
	StageBaby     LifeStage = 1
	StageChild    LifeStage = 2
	StageTeen     LifeStage = 3
	StageAdult    LifeStage = 4
	StageElder    LifeStage = 5
	StageDeceased LifeStage = 6
)

// AliveStages is the number of stages a living worm can be in.
const AliveStages = 6

var stageNames = [...]string{"egg", "baby", "child", "teen", "adult", "elder", "deceased"}

func (s LifeStage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Valid reports whether s is one of the defined stages.
func (s LifeStage) Valid() bool { return s >= StageEgg && s <= StageDeceased }

// NoParent marks a generation-1 worm.
const NoParent ecs.ID = -1

// Worm is one simulated pet. Pure data; the store and the lifecycle engine
// own every mutation.
type Worm struct {
	ID         ecs.ID    `json:"id"`
	Generation int       `json:"generation"`
	ParentID   ecs.ID    `json:"parentId"`
	ChildIDs   []ecs.ID  `json:"childIds"`
	Age        float64   `json:"age"`      // simulated minutes
	Lifespan   float64   `json:"lifespan"` // simulated minutes, fixed at birth
	Stage      LifeStage `json:"lifeStage"`
	Alive      bool      `json:"isAlive"`
	Name       string    `json:"name"`

	HatID     string `json:"hatId"`
	FaceID    string `json:"faceId"`
	CostumeID string `json:"costumeId"`
}

// Clone returns a deep copy so callers never share ChildIDs with the store.
func (w Worm) Clone() Worm {
	if w.ChildIDs != nil {
		w.ChildIDs = append(make([]ecs.ID, 0, len(w.ChildIDs)), w.ChildIDs...)
	}
	return w
}

// HasChild reports whether id is already recorded as a child of w.
func (w Worm) HasChild(id ecs.ID) bool {
	for _, c := range w.ChildIDs {
		if c == id {
			return true
		}
	}
	return false
}
