// Package region owns per-area locked/unlocked state and the unlock order.
// Areas unlock either by explicit starting choice or when the player's level
// reaches the unlock level of the area's first catalog item.
package region

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/nvallee/cityforge/internal/domain"
	"github.com/nvallee/cityforge/internal/event"
	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/metrics"
	"github.com/nvallee/cityforge/internal/store"
	"github.com/nvallee/cityforge/internal/unlock"
)

// Service is the region unlock state machine.
type Service interface {
	// SelectStartingArea replaces the unlock order with the chosen area
	// followed by the rest ranked by score, unlocks the chosen area and locks
	// every other. Intended to be called once per play-through, right after
	// the preference quiz.
	SelectStartingArea(ctx context.Context, areaID string, scores []domain.AreaScore) error

	// ReapplyUnlockOrder rebuilds the ordering metadata exactly like
	// SelectStartingArea but never touches locked/unlocked flags. Used when
	// restoring a session so earned unlocks survive.
	ReapplyUnlockOrder(ctx context.Context, areaID string, scores []domain.AreaScore) error

	// CheckLevelThresholds unlocks every area whose first item's unlock level
	// the given player level now reaches, in unlock-order sequence. Returns
	// the areas unlocked by this call.
	CheckLevelThresholds(ctx context.Context, currentLevel int) []string

	// IsUnlocked reports one area's state.
	IsUnlocked(areaID string) bool

	// Order returns the current unlock order.
	Order() []string

	// UnlockedCount reports how many areas are unlocked.
	UnlockedCount() int

	// AddBuildingToRegion / RemoveBuildingFromRegion maintain the legacy
	// building counter. The counter path can also unlock an area once the
	// count reaches the configured threshold; it coexists with the
	// level-threshold path but only one is expected to be authoritative.
	AddBuildingToRegion(ctx context.Context, areaID string) error
	RemoveBuildingFromRegion(ctx context.Context, areaID string) error

	// ResetAll re-locks everything. Debug only; normal play never re-locks.
	ResetAll(ctx context.Context)
}

// Config holds region unlock parameters.
type Config struct {
	// BuildingThreshold is the counter value at which the legacy manual path
	// unlocks an area.
	BuildingThreshold int
}

type persistedState struct {
	Order   []string                       `json:"order"`
	Regions map[string]*domain.RegionState `json:"regions"`
	Cursor  int                            `json:"cursor"`
}

type service struct {
	mu        sync.Mutex
	order     []string
	regions   map[string]*domain.RegionState
	cursor    int
	catalogs  map[string]domain.AreaCatalog
	cfg       Config
	assigner  unlock.Assigner
	kv        store.KV
	publisher event.Bus
}

// NewService builds the state machine over the known catalogs, restoring any
// persisted unlock state.
func NewService(kv store.KV, publisher event.Bus, assigner unlock.Assigner, catalogs []domain.AreaCatalog, cfg Config) Service {
	byArea := make(map[string]domain.AreaCatalog, len(catalogs))
	regions := make(map[string]*domain.RegionState, len(catalogs))
	order := make([]string, 0, len(catalogs))
	for _, c := range catalogs {
		byArea[c.AreaID] = c
		regions[c.AreaID] = &domain.RegionState{AreaID: c.AreaID}
		order = append(order, c.AreaID)
	}

	s := &service{
		order:     order,
		regions:   regions,
		catalogs:  byArea,
		cfg:       cfg,
		assigner:  assigner,
		kv:        kv,
		publisher: publisher,
	}
	s.load()
	return s
}

func (s *service) load() {
	raw, ok := s.kv.Get(store.KeyRegionState)
	if !ok {
		return
	}

	var state persistedState
	if err := json.Unmarshal([]byte(raw), &state); err != nil || state.Regions == nil {
		logger.FromContext(context.Background()).Warn("Corrupt region state, resetting", "error", err)
		s.kv.Delete(store.KeyRegionState)
		return
	}

	// Known areas keep their persisted state; areas added to the catalog since
	// the save start locked.
	for areaID, st := range state.Regions {
		if _, known := s.regions[areaID]; known {
			s.regions[areaID] = st
		}
	}
	if len(state.Order) > 0 {
		s.order = state.Order
	}
	s.cursor = state.Cursor
}

func (s *service) persist() {
	data, err := json.Marshal(persistedState{Order: s.order, Regions: s.regions, Cursor: s.cursor})
	if err != nil {
		logger.FromContext(context.Background()).Error("Failed to serialize region state", "error", err)
		return
	}
	s.kv.Set(store.KeyRegionState, string(data))
}

// computeOrder places the starting area first, then the remaining areas by
// score descending. The sort is stable, so score ties keep the insertion order
// of the score source.
func (s *service) computeOrder(startingArea string, scores []domain.AreaScore) []string {
	remaining := make([]domain.AreaScore, 0, len(scores))
	seen := map[string]bool{startingArea: true}
	for _, sc := range scores {
		if seen[sc.AreaID] {
			continue
		}
		if _, known := s.catalogs[sc.AreaID]; !known {
			continue
		}
		seen[sc.AreaID] = true
		remaining = append(remaining, sc)
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Score > remaining[j].Score
	})

	order := make([]string, 0, len(s.catalogs))
	order = append(order, startingArea)
	for _, sc := range remaining {
		order = append(order, sc.AreaID)
	}

	// Areas the score source never mentioned go last, in catalog order.
	for _, areaID := range s.catalogOrder() {
		if !seen[areaID] {
			order = append(order, areaID)
		}
	}
	return order
}

func (s *service) catalogOrder() []string {
	ids := make([]string, 0, len(s.catalogs))
	for id := range s.catalogs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *service) SelectStartingArea(ctx context.Context, areaID string, scores []domain.AreaScore) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	if _, known := s.catalogs[areaID]; !known {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrAreaNotFound, areaID)
	}

	if s.unlockedCountLocked() > 1 {
		log.Warn("Starting area re-selected after unlocks were earned; re-locking earned areas", "area_id", areaID)
	}

	s.order = s.computeOrder(areaID, scores)
	for id, st := range s.regions {
		st.Unlocked = id == areaID
	}
	s.cursor = 0
	s.advanceCursorLocked()
	s.persist()
	order := append([]string(nil), s.order...)
	s.mu.Unlock()

	s.assigner.Recompute(ctx, order, s.catalogList())

	log.Info("Starting area selected", "area_id", areaID, "order", order)
	metrics.AreasUnlocked.Inc()
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event.NewAreaUnlockedEvent(areaID)); err != nil {
			log.Warn("Failed to publish area-unlocked event", "area_id", areaID, "error", err)
		}
	}
	return nil
}

func (s *service) ReapplyUnlockOrder(ctx context.Context, areaID string, scores []domain.AreaScore) error {
	s.mu.Lock()
	if _, known := s.catalogs[areaID]; !known {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrAreaNotFound, areaID)
	}

	s.order = s.computeOrder(areaID, scores)
	s.cursor = 0
	s.advanceCursorLocked()
	s.persist()
	order := append([]string(nil), s.order...)
	s.mu.Unlock()

	s.assigner.Recompute(ctx, order, s.catalogList())

	logger.FromContext(ctx).Info("Unlock order reapplied", "area_id", areaID, "order", order)
	return nil
}

func (s *service) catalogList() []domain.AreaCatalog {
	catalogs := make([]domain.AreaCatalog, 0, len(s.catalogs))
	s.mu.Lock()
	order := append([]string(nil), s.order...)
	s.mu.Unlock()
	for _, areaID := range order {
		if c, ok := s.catalogs[areaID]; ok {
			catalogs = append(catalogs, c)
		}
	}
	return catalogs
}

func (s *service) CheckLevelThresholds(ctx context.Context, currentLevel int) []string {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	var unlocked []string
	for _, areaID := range s.order {
		st, ok := s.regions[areaID]
		if !ok || st.Unlocked {
			continue
		}

		threshold, ok := s.firstItemLevelLocked(areaID)
		if !ok {
			log.Warn("Area has no first-item unlock level; skipping threshold check", "area_id", areaID)
			continue
		}
		if currentLevel < threshold {
			continue
		}

		st.Unlocked = true
		unlocked = append(unlocked, areaID)
	}

	if len(unlocked) > 0 {
		s.advanceCursorLocked()
		s.persist()
	}
	s.mu.Unlock()

	for _, areaID := range unlocked {
		log.Info("Area unlocked by level threshold", "area_id", areaID, "level", currentLevel)
		metrics.AreasUnlocked.Inc()
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, event.NewAreaUnlockedEvent(areaID)); err != nil {
				log.Warn("Failed to publish area-unlocked event", "area_id", areaID, "error", err)
			}
		}
	}
	return unlocked
}

// firstItemLevelLocked returns the unlock level of the area's first catalog
// item. Callers hold s.mu.
func (s *service) firstItemLevelLocked(areaID string) (int, bool) {
	c, ok := s.catalogs[areaID]
	if !ok || len(c.Items) == 0 {
		return 0, false
	}
	level := s.assigner.GetUnlockLevel(c.Items[0])
	if level == unlock.UnlockLevelSentinel {
		return 0, false
	}
	return level, true
}

// advanceCursorLocked moves the cursor past the leading run of unlocked areas.
func (s *service) advanceCursorLocked() {
	cursor := 0
	for _, areaID := range s.order {
		st, ok := s.regions[areaID]
		if !ok || !st.Unlocked {
			break
		}
		cursor++
	}
	s.cursor = cursor
}

func (s *service) IsUnlocked(areaID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.regions[areaID]
	return ok && st.Unlocked
}

func (s *service) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func (s *service) UnlockedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlockedCountLocked()
}

func (s *service) unlockedCountLocked() int {
	count := 0
	for _, st := range s.regions {
		if st.Unlocked {
			count++
		}
	}
	return count
}

func (s *service) AddBuildingToRegion(ctx context.Context, areaID string) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	st, ok := s.regions[areaID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrAreaNotFound, areaID)
	}

	st.BuildingCount++
	justUnlocked := false
	if !st.Unlocked && s.cfg.BuildingThreshold > 0 && st.BuildingCount >= s.cfg.BuildingThreshold {
		st.Unlocked = true
		justUnlocked = true
		s.advanceCursorLocked()
	}
	s.persist()
	s.mu.Unlock()

	if justUnlocked {
		log.Info("Area unlocked by building count", "area_id", areaID)
		metrics.AreasUnlocked.Inc()
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, event.NewAreaUnlockedEvent(areaID)); err != nil {
				log.Warn("Failed to publish area-unlocked event", "area_id", areaID, "error", err)
			}
		}
	}
	return nil
}

func (s *service) RemoveBuildingFromRegion(ctx context.Context, areaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.regions[areaID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrAreaNotFound, areaID)
	}
	if st.BuildingCount > 0 {
		st.BuildingCount--
	}
	s.persist()
	return nil
}

func (s *service) ResetAll(ctx context.Context) {
	s.mu.Lock()
	for _, st := range s.regions {
		st.Unlocked = false
		st.BuildingCount = 0
	}
	s.cursor = 0
	s.persist()
	s.mu.Unlock()

	logger.FromContext(ctx).Warn("All regions re-locked (debug reset)")
}
