package construction

import (
	"context"
	"time"

	"github.com/nvallee/cityforge/internal/domain"
	"github.com/nvallee/cityforge/internal/event"
	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/metrics"
)

// Tick completes every project whose timer has elapsed. Completion by timer
// fires even when skip quests remain outstanding: the timer and the quest
// side channel are independent paths to the same completion.
func (s *service) Tick(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var done []*domain.ConstructionProject
	for _, project := range s.projects {
		elapsed := now.Sub(project.StartTime).Seconds()
		if elapsed >= project.DurationSeconds {
			done = append(done, project)
		}
	}
	for _, project := range done {
		s.completeLocked(project)
	}
	if len(done) > 0 {
		s.persistLocked()
	}
	s.mu.Unlock()

	for _, project := range done {
		s.announceCompletion(ctx, project, false)
	}
}

// completeLocked marks the project completed and drops it from the live set.
// Callers hold s.mu and are responsible for persisting and announcing.
func (s *service) completeLocked(project *domain.ConstructionProject) {
	project.Completed = true
	delete(s.projects, project.Key())
}

// announceCompletion strips surfaced quests from the task list and publishes
// exactly one completion event.
func (s *service) announceCompletion(ctx context.Context, project *domain.ConstructionProject, questForced bool) {
	for _, text := range project.ActiveQuests {
		s.taskList.RemoveTask(text)
	}

	log := logger.FromContext(ctx)
	log.Info("Construction completed",
		"item_id", project.ItemID,
		"position", project.Position.String(),
		"quest_forced", questForced)
	metrics.ProjectsCompleted.Inc()

	if s.publisher != nil {
		evt := event.NewConstructionCompletedEvent(project.ItemID, project.Position, project.AreaID, questForced)
		if err := s.publisher.Publish(ctx, evt); err != nil {
			log.Warn("Failed to publish construction-completed event",
				"item_id", project.ItemID, "error", err)
		}
	}
}

// TickJob adapts the scheduler's Tick to the worker.Job interface so the
// interval scheduler can drive it.
type TickJob struct {
	service Service
}

// NewTickJob creates a tick job over the scheduler.
func NewTickJob(service Service) *TickJob {
	return &TickJob{service: service}
}

// Process runs one tick (implements worker.Job).
func (j *TickJob) Process(ctx context.Context) error {
	j.service.Tick(ctx)
	return nil
}

// remainingMinutes reports how much build time is left, floored at zero.
func remainingMinutes(project *domain.ConstructionProject, now time.Time) float64 {
	return project.Remaining(now).Minutes()
}
