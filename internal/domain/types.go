package domain

import (
	"fmt"
	"time"
)

// LevelState holds the player's level and banked experience. Level starts at 1;
// experience is whatever is left over after the last level-up was paid for.
type LevelState struct {
	Level      int `json:"level"`
	Experience int `json:"experience"`
}

// DefaultLevelState is the state of a brand-new player.
func DefaultLevelState() LevelState {
	return LevelState{Level: 1, Experience: 0}
}

// AreaCatalog is the static, ordered list of constructible items belonging to one
// themed area. Catalogs come from configuration and are never mutated by the core.
type AreaCatalog struct {
	AreaID string   `json:"area_id"`
	Items  []string `json:"items"`
}

// AreaScore pairs an area with its ranking score from the preference quiz.
// Scores arrive as an ordered sequence; ties keep that insertion order.
type AreaScore struct {
	AreaID string  `json:"area_id"`
	Score  float64 `json:"score"`
}

// RegionState is the unlock bookkeeping for one area.
type RegionState struct {
	AreaID        string `json:"area_id"`
	Unlocked      bool   `json:"unlocked"`
	BuildingCount int    `json:"building_count"`
}

// GridPosition locates a placed building on the city grid.
type GridPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p GridPosition) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// ProjectKey identifies one construction project: the same item may be under
// construction at several positions at once.
type ProjectKey struct {
	ItemID   string       `json:"item_id"`
	Position GridPosition `json:"position"`
}

func (k ProjectKey) String() string {
	return k.ItemID + "@" + k.Position.String()
}

// ConstructionProject is one timed build in progress. Projects are owned
// exclusively by the construction scheduler; all mutation goes through it.
//
// MasterQuests is the full outstanding skip-quest requirement; ActiveQuests is
// the subset currently surfaced on the player's task list. The two lists are
// deliberately separate: deleting a quest hides it from the task list but keeps
// it in the master requirement so it can resurface later.
type ConstructionProject struct {
	ItemID          string       `json:"item_id"`
	Position        GridPosition `json:"position"`
	AreaID          string       `json:"area_id"`
	DurationSeconds float64      `json:"duration_seconds"`
	StartTime       time.Time    `json:"start_time"`
	Completed       bool         `json:"completed"`
	MasterQuests    []string     `json:"master_quests"`
	ActiveQuests    []string     `json:"active_quests"`
	CompletedCount  int          `json:"completed_count"`
	TotalCount      int          `json:"total_count"`
	DeletedCount    int          `json:"deleted_count"`
}

// Key returns the project's identity in the live set.
func (p *ConstructionProject) Key() ProjectKey {
	return ProjectKey{ItemID: p.ItemID, Position: p.Position}
}

// Remaining reports how much build time is left at the given instant.
func (p *ConstructionProject) Remaining(now time.Time) time.Duration {
	elapsed := now.Sub(p.StartTime)
	total := time.Duration(p.DurationSeconds * float64(time.Second))
	if elapsed >= total {
		return 0
	}
	return total - elapsed
}

// QuestTier buckets skip quests by how much build time is left.
type QuestTier string

const (
	QuestTierEasy   QuestTier = "easy"
	QuestTierMedium QuestTier = "medium"
	QuestTierHard   QuestTier = "hard"
	QuestTierExpert QuestTier = "expert"
)
