// Package construction owns all in-progress construction projects: it starts,
// pauses, resumes, and removes them, advances them on a periodic tick, and
// integrates the skip-quest side channel that can finish a build early.
package construction

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/nvallee/cityforge/internal/domain"
	"github.com/nvallee/cityforge/internal/event"
	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/metrics"
	"github.com/nvallee/cityforge/internal/store"
	"github.com/nvallee/cityforge/internal/tasklist"
)

// QuestPool supplies skip-quest texts per area and difficulty tier.
type QuestPool interface {
	GetQuestsForArea(areaID string, tier domain.QuestTier) []string
}

// DiscountProvider is the optional premium entitlement source. A nil provider
// means multiplier 1.0.
type DiscountProvider interface {
	HasConstructionDiscount() bool
	DiscountMultiplier() float64
}

// Service is the construction scheduler.
type Service interface {
	// Register creates a project for a freshly placed item, applying the
	// premium discount when the player qualifies. Duplicate keys are rejected.
	Register(ctx context.Context, itemID string, pos domain.GridPosition, baseMinutes float64, areaID string) error

	// RegisterWithProgress restores a previously paused project exactly as it
	// was. The discount is never re-applied: the stored duration was already
	// adjusted when the project was first registered.
	RegisterWithProgress(ctx context.Context, project domain.ConstructionProject) error

	// Tick completes every active project whose timer has elapsed.
	Tick(ctx context.Context)

	// AddSkipQuests draws count quests for the project's current difficulty
	// tier and surfaces them on the task list. Returns the texts added.
	AddSkipQuests(ctx context.Context, itemID string, pos domain.GridPosition, count int) ([]string, error)

	// CompleteQuest removes a quest from both lists; an empty master list
	// force-completes the project regardless of the timer.
	CompleteQuest(ctx context.Context, itemID string, pos domain.GridPosition, text string) error

	// DeleteQuest hides a quest from the active list only. The master
	// requirement keeps it, so it can resurface later. Never forces completion.
	DeleteQuest(ctx context.Context, itemID string, pos domain.GridPosition, text string) error

	// Pause removes the project from the live set and hands back its record so
	// the caller can later restore it via RegisterWithProgress.
	Pause(ctx context.Context, itemID string, pos domain.GridPosition) (*domain.ConstructionProject, error)

	// Remove discards a project permanently, stripping its surfaced quests
	// from the task list. No completion event fires.
	Remove(ctx context.Context, itemID string, pos domain.GridPosition) error

	// Project returns a copy of one live project.
	Project(itemID string, pos domain.GridPosition) (*domain.ConstructionProject, bool)

	// ActiveProjects returns copies of all live projects, ordered by key.
	ActiveProjects() []domain.ConstructionProject
}

type service struct {
	mu        sync.Mutex
	projects  map[domain.ProjectKey]*domain.ConstructionProject
	kv        store.KV
	publisher event.Bus
	questPool QuestPool
	taskList  tasklist.TaskList
	discount  DiscountProvider

	now func() time.Time
	rng *rand.Rand
}

// NewService restores the live project set from the store and returns the
// scheduler.
func NewService(kv store.KV, publisher event.Bus, pool QuestPool, tasks tasklist.TaskList, discount DiscountProvider) Service {
	s := &service{
		projects:  make(map[domain.ProjectKey]*domain.ConstructionProject),
		kv:        kv,
		publisher: publisher,
		questPool: pool,
		taskList:  tasks,
		discount:  discount,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec
	}
	s.load()
	return s
}

func (s *service) load() {
	raw, ok := s.kv.Get(store.KeyProjects)
	if !ok {
		return
	}

	var projects []domain.ConstructionProject
	if err := json.Unmarshal([]byte(raw), &projects); err != nil {
		logger.FromContext(context.Background()).Warn("Corrupt project set, resetting", "error", err)
		s.kv.Delete(store.KeyProjects)
		return
	}
	for i := range projects {
		p := projects[i]
		s.projects[p.Key()] = &p
	}
}

// persistLocked writes the whole live set. Callers hold s.mu.
func (s *service) persistLocked() {
	projects := make([]domain.ConstructionProject, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, *p)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Key().String() < projects[j].Key().String()
	})

	data, err := json.Marshal(projects)
	if err != nil {
		logger.FromContext(context.Background()).Error("Failed to serialize project set", "error", err)
		return
	}
	s.kv.Set(store.KeyProjects, string(data))
}

func (s *service) Register(ctx context.Context, itemID string, pos domain.GridPosition, baseMinutes float64, areaID string) error {
	log := logger.FromContext(ctx)
	key := domain.ProjectKey{ItemID: itemID, Position: pos}

	durationSeconds := baseMinutes * SecondsPerMinute
	if s.discount != nil && s.discount.HasConstructionDiscount() {
		durationSeconds *= s.discount.DiscountMultiplier()
	}

	s.mu.Lock()
	if _, exists := s.projects[key]; exists {
		s.mu.Unlock()
		log.Warn("Duplicate construction registration rejected", "key", key.String())
		return fmt.Errorf("%w: %s", domain.ErrProjectExists, key.String())
	}

	project := &domain.ConstructionProject{
		ItemID:          itemID,
		Position:        pos,
		AreaID:          areaID,
		DurationSeconds: durationSeconds,
		StartTime:       s.now(),
	}
	s.projects[key] = project
	s.persistLocked()
	s.mu.Unlock()

	log.Info("Construction registered",
		"item_id", itemID, "position", pos.String(), "area_id", areaID, "duration_seconds", durationSeconds)
	metrics.ProjectsRegistered.Inc()

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event.NewConstructionStartedEvent(itemID, pos, areaID, durationSeconds)); err != nil {
			log.Warn("Failed to publish construction-started event", "key", key.String(), "error", err)
		}
	}
	return nil
}

func (s *service) RegisterWithProgress(ctx context.Context, project domain.ConstructionProject) error {
	log := logger.FromContext(ctx)
	key := project.Key()

	s.mu.Lock()
	if _, exists := s.projects[key]; exists {
		s.mu.Unlock()
		log.Warn("Duplicate construction registration rejected", "key", key.String())
		return fmt.Errorf("%w: %s", domain.ErrProjectExists, key.String())
	}

	restored := project
	s.projects[key] = &restored
	s.persistLocked()
	s.mu.Unlock()

	log.Info("Construction restored", "item_id", project.ItemID, "position", project.Position.String())
	return nil
}

func (s *service) Pause(ctx context.Context, itemID string, pos domain.GridPosition) (*domain.ConstructionProject, error) {
	key := domain.ProjectKey{ItemID: itemID, Position: pos}

	s.mu.Lock()
	project, ok := s.projects[key]
	if !ok {
		s.mu.Unlock()
		logger.FromContext(ctx).Warn("Pause requested for unknown project", "key", key.String())
		return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, key.String())
	}

	// Quest lists and timer state travel with the snapshot; elapsed time is
	// implicitly preserved because StartTime and DurationSeconds are retained.
	snapshot := *project
	delete(s.projects, key)
	s.persistLocked()
	s.mu.Unlock()

	logger.FromContext(ctx).Info("Construction paused", "key", key.String())
	return &snapshot, nil
}

func (s *service) Remove(ctx context.Context, itemID string, pos domain.GridPosition) error {
	key := domain.ProjectKey{ItemID: itemID, Position: pos}

	s.mu.Lock()
	project, ok := s.projects[key]
	if !ok {
		s.mu.Unlock()
		logger.FromContext(ctx).Warn("Remove requested for unknown project", "key", key.String())
		return fmt.Errorf("%w: %s", domain.ErrProjectNotFound, key.String())
	}

	surfaced := append([]string(nil), project.ActiveQuests...)
	delete(s.projects, key)
	s.persistLocked()
	s.mu.Unlock()

	for _, text := range surfaced {
		s.taskList.RemoveTask(text)
	}

	logger.FromContext(ctx).Info("Construction removed", "key", key.String())
	return nil
}

func (s *service) Project(itemID string, pos domain.GridPosition) (*domain.ConstructionProject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[domain.ProjectKey{ItemID: itemID, Position: pos}]
	if !ok {
		return nil, false
	}
	copied := *project
	return &copied, true
}

func (s *service) ActiveProjects() []domain.ConstructionProject {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := make([]domain.ConstructionProject, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, *p)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Key().String() < projects[j].Key().String()
	})
	return projects
}
