// Package unlock deterministically assigns every constructible item an unlock
// level and a proportional construction duration, derived from the area unlock
// order and the per-area catalogs.
package unlock

import (
	"context"
	"encoding/json"
	"math"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nvallee/cityforge/internal/domain"
	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/store"
)

// UnlockLevelSentinel is returned for items with no assigned level.
const UnlockLevelSentinel = -1

// timeCacheSize bounds the construction-time lookup cache. Lookups happen on
// every placement, so the whole catalog comfortably fits.
const timeCacheSize = 1024

// Assigner maps items onto the progression curve.
type Assigner interface {
	// Recompute rebuilds the whole unlock-level and construction-time mapping
	// from the given unlock order and catalogs. Output is deterministic for
	// identical input.
	Recompute(ctx context.Context, order []string, catalogs []domain.AreaCatalog)

	// GetUnlockLevel returns an item's unlock level, or UnlockLevelSentinel if
	// the item is unknown.
	GetUnlockLevel(itemID string) int

	// GetConstructionTime returns an item's build duration in minutes. Unknown
	// items degrade to an on-the-fly recomputation, then to a fixed fallback,
	// so the scheduler never observes an undefined duration.
	GetConstructionTime(itemID string) float64

	// ItemsUnlockedAt lists the items whose unlock level is exactly the given
	// level, in master-sequence order.
	ItemsUnlockedAt(level int) []string
}

// Config holds the assignment curve parameters.
type Config struct {
	MaxLevel        int
	MinMinutes      float64
	MaxMinutes      float64
	FallbackMinutes float64
}

type record struct {
	Levels   map[string]int     `json:"levels"`
	Times    map[string]float64 `json:"times"`
	Sequence []string           `json:"sequence"`
	MinLevel int                `json:"min_level"`
	MaxLevel int                `json:"max_level"`
}

type assigner struct {
	mu        sync.RWMutex
	rec       record
	cfg       Config
	kv        store.KV
	timeCache *lru.Cache[string, float64]
}

// NewAssigner restores any persisted mapping and returns the assigner.
func NewAssigner(kv store.KV, cfg Config) Assigner {
	cache, _ := lru.New[string, float64](timeCacheSize)
	a := &assigner{
		rec:       emptyRecord(),
		cfg:       cfg,
		kv:        kv,
		timeCache: cache,
	}
	a.load()
	return a
}

func emptyRecord() record {
	return record{
		Levels: make(map[string]int),
		Times:  make(map[string]float64),
	}
}

func (a *assigner) load() {
	raw, ok := a.kv.Get(store.KeyBuildingUnlocks)
	if !ok {
		return
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.Levels == nil || rec.Times == nil {
		logger.FromContext(context.Background()).Warn("Corrupt building unlock record, resetting", "error", err)
		a.kv.Delete(store.KeyBuildingUnlocks)
		return
	}
	a.rec = rec
}

func (a *assigner) persist() {
	data, err := json.Marshal(a.rec)
	if err != nil {
		logger.FromContext(context.Background()).Error("Failed to serialize unlock record", "error", err)
		return
	}
	a.kv.Set(store.KeyBuildingUnlocks, string(data))
}

func (a *assigner) Recompute(ctx context.Context, order []string, catalogs []domain.AreaCatalog) {
	byArea := make(map[string]domain.AreaCatalog, len(catalogs))
	for _, c := range catalogs {
		byArea[c.AreaID] = c
	}

	// Concatenate catalogs in unlock-order sequence into one master list.
	var sequence []string
	for _, areaID := range order {
		c, ok := byArea[areaID]
		if !ok {
			logger.FromContext(ctx).Warn("Unlock order references unknown area", "area_id", areaID)
			continue
		}
		sequence = append(sequence, c.Items...)
	}

	rec := emptyRecord()
	rec.Sequence = sequence
	total := len(sequence)

	for i, itemID := range sequence {
		rec.Levels[itemID] = a.levelForIndex(i, total)
	}

	rec.MinLevel, rec.MaxLevel = observedRange(rec.Levels)
	for itemID, level := range rec.Levels {
		rec.Times[itemID] = a.timeForLevel(level, rec.MinLevel, rec.MaxLevel)
	}

	a.mu.Lock()
	a.rec = rec
	a.timeCache.Purge()
	a.persist()
	a.mu.Unlock()

	logger.FromContext(ctx).Info("Recomputed building unlock levels",
		"items", total, "min_level", rec.MinLevel, "max_level", rec.MaxLevel)
}

// levelForIndex interpolates the master-sequence index onto [1, MaxLevel]:
// the first item always unlocks at level 1 and the last at MaxLevel, with
// earlier items never unlocking later than later ones.
func (a *assigner) levelForIndex(i, total int) int {
	if total <= 1 {
		return 1
	}
	raw := 1 + float64(i)*float64(a.cfg.MaxLevel-1)/float64(total-1)
	return clamp(int(math.Round(raw)), 1, a.cfg.MaxLevel)
}

// timeForLevel interpolates between the configured minimum and maximum build
// durations, anchored at the observed level range. A degenerate range (all
// items at one level) yields the midpoint for everyone.
func (a *assigner) timeForLevel(level, minObserved, maxObserved int) float64 {
	if minObserved == maxObserved {
		return (a.cfg.MinMinutes + a.cfg.MaxMinutes) / 2
	}
	progress := float64(level-minObserved) / float64(maxObserved-minObserved)
	progress = math.Max(0, math.Min(1, progress))
	return a.cfg.MinMinutes + progress*(a.cfg.MaxMinutes-a.cfg.MinMinutes)
}

func (a *assigner) GetUnlockLevel(itemID string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	level, ok := a.rec.Levels[itemID]
	if !ok {
		return UnlockLevelSentinel
	}
	return level
}

func (a *assigner) GetConstructionTime(itemID string) float64 {
	if minutes, ok := a.timeCache.Get(itemID); ok {
		return minutes
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	minutes, ok := a.rec.Times[itemID]
	if !ok {
		level, hasLevel := a.rec.Levels[itemID]
		if !hasLevel {
			logger.FromContext(context.Background()).Warn("No unlock level for item, using fallback duration",
				"item_id", itemID, "fallback_minutes", a.cfg.FallbackMinutes)
			return a.cfg.FallbackMinutes
		}
		minutes = a.timeForLevel(level, a.rec.MinLevel, a.rec.MaxLevel)
	}

	a.timeCache.Add(itemID, minutes)
	return minutes
}

func (a *assigner) ItemsUnlockedAt(level int) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var items []string
	for _, itemID := range a.rec.Sequence {
		if a.rec.Levels[itemID] == level {
			items = append(items, itemID)
		}
	}
	return items
}

func observedRange(levels map[string]int) (min, max int) {
	first := true
	for _, level := range levels {
		if first {
			min, max = level, level
			first = false
			continue
		}
		if level < min {
			min = level
		}
		if level > max {
			max = level
		}
	}
	return min, max
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
