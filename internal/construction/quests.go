package construction

import (
	"context"
	"fmt"

	"github.com/nvallee/cityforge/internal/domain"
	"github.com/nvallee/cityforge/internal/event"
	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/metrics"
)

// TierForRemaining maps remaining build minutes to the difficulty tier quests
// are drawn from: long builds get harder, more rewarding quests.
func TierForRemaining(minutes float64) domain.QuestTier {
	switch {
	case minutes >= ExpertTierMinutes:
		return domain.QuestTierExpert
	case minutes >= HardTierMinutes:
		return domain.QuestTierHard
	case minutes >= MediumTierMinutes:
		return domain.QuestTierMedium
	default:
		return domain.QuestTierEasy
	}
}

func (s *service) AddSkipQuests(ctx context.Context, itemID string, pos domain.GridPosition, count int) ([]string, error) {
	log := logger.FromContext(ctx)
	key := domain.ProjectKey{ItemID: itemID, Position: pos}

	if count <= 0 {
		return nil, fmt.Errorf("%w: quest count must be > 0, got %d", domain.ErrInvalidInput, count)
	}

	s.mu.Lock()
	project, ok := s.projects[key]
	if !ok {
		s.mu.Unlock()
		log.Warn("Skip quests requested for unknown project", "key", key.String())
		return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, key.String())
	}

	tier := TierForRemaining(remainingMinutes(project, s.now()))

	existing := make(map[string]bool, len(project.MasterQuests))
	for _, text := range project.MasterQuests {
		existing[text] = true
	}

	// Draw without replacement from a shuffled copy of the pool, skipping
	// texts the master list already carries.
	pool := append([]string(nil), s.questPool.GetQuestsForArea(project.AreaID, tier)...)
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	added := make([]string, 0, count)
	for _, text := range pool {
		if len(added) == count {
			break
		}
		if existing[text] {
			continue
		}
		existing[text] = true
		added = append(added, text)
	}

	// Pool exhausted: pad with numbered filler so the requirement still grows.
	for serial := 1; len(added) < count; serial++ {
		text := fmt.Sprintf(FillerQuestFormat, project.ItemID, serial)
		if existing[text] {
			continue
		}
		existing[text] = true
		added = append(added, text)
	}

	project.MasterQuests = append(project.MasterQuests, added...)
	project.ActiveQuests = append(project.ActiveQuests, added...)
	project.TotalCount += len(added)
	s.persistLocked()
	s.mu.Unlock()

	for _, text := range added {
		s.taskList.AddTask(text)
	}

	log.Info("Skip quests added",
		"key", key.String(), "tier", string(tier), "count", len(added))
	metrics.SkipQuestsAdded.Add(float64(len(added)))

	return added, nil
}

func (s *service) CompleteQuest(ctx context.Context, itemID string, pos domain.GridPosition, text string) error {
	log := logger.FromContext(ctx)
	key := domain.ProjectKey{ItemID: itemID, Position: pos}

	s.mu.Lock()
	project, ok := s.projects[key]
	if !ok {
		s.mu.Unlock()
		log.Warn("Quest completion for unknown project", "key", key.String())
		return fmt.Errorf("%w: %s", domain.ErrProjectNotFound, key.String())
	}

	master, removed := removeText(project.MasterQuests, text)
	if !removed {
		s.mu.Unlock()
		log.Warn("Quest completion for unknown quest", "key", key.String(), "text", text)
		return fmt.Errorf("%w: %q", domain.ErrQuestNotFound, text)
	}
	project.MasterQuests = master
	project.ActiveQuests, _ = removeText(project.ActiveQuests, text)
	project.CompletedCount++

	// All requirements met: the quest channel completes the build immediately,
	// no matter how much timer is left.
	forced := len(project.MasterQuests) == 0
	if forced {
		s.completeLocked(project)
	}
	s.persistLocked()
	s.mu.Unlock()

	s.taskList.RemoveTask(text)
	metrics.QuestsCompleted.Inc()

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event.NewQuestCompletedEvent(itemID, pos, text)); err != nil {
			log.Warn("Failed to publish quest-completed event", "key", key.String(), "error", err)
		}
	}

	if forced {
		s.announceCompletion(ctx, project, true)
	}
	return nil
}

func (s *service) DeleteQuest(ctx context.Context, itemID string, pos domain.GridPosition, text string) error {
	log := logger.FromContext(ctx)
	key := domain.ProjectKey{ItemID: itemID, Position: pos}

	s.mu.Lock()
	project, ok := s.projects[key]
	if !ok {
		s.mu.Unlock()
		log.Warn("Quest deletion for unknown project", "key", key.String())
		return fmt.Errorf("%w: %s", domain.ErrProjectNotFound, key.String())
	}

	active, removed := removeText(project.ActiveQuests, text)
	if !removed {
		s.mu.Unlock()
		log.Warn("Quest deletion for unknown quest", "key", key.String(), "text", text)
		return fmt.Errorf("%w: %q", domain.ErrQuestNotFound, text)
	}

	// The master list keeps the text: deletion hides the quest from the task
	// list without shrinking the outstanding requirement.
	project.ActiveQuests = active
	project.DeletedCount++
	s.persistLocked()
	s.mu.Unlock()

	s.taskList.RemoveTask(text)
	metrics.QuestsDeleted.Inc()

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event.NewQuestDeletedEvent(itemID, pos, text)); err != nil {
			log.Warn("Failed to publish quest-deleted event", "key", key.String(), "error", err)
		}
	}
	return nil
}

// removeText removes the first occurrence of text, reporting whether it was
// present.
func removeText(list []string, text string) ([]string, bool) {
	for i, t := range list {
		if t == text {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}
