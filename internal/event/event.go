package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nvallee/cityforge/internal/domain"
)

// Type represents the type of an event
type Type string

// Event types emitted by the progression core
const (
	PlayerLevelUp         Type = "player.level_up"
	BuildingUnlocked      Type = "building.unlocked"
	AreaUnlocked          Type = "area.unlocked"
	ConstructionStarted   Type = "construction.started"
	ConstructionCompleted Type = "construction.completed"
	QuestCompleted        Type = "quest.completed"
	QuestDeleted          Type = "quest.deleted"
)

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Typed event payloads for type safety

// LevelUpPayloadV1 is emitted once per level gained, even when one XP award
// spans several levels.
type LevelUpPayloadV1 struct {
	NewLevel  int   `json:"new_level"`
	Timestamp int64 `json:"timestamp"`
}

// BuildingUnlockedPayloadV1 announces an item becoming purchasable.
type BuildingUnlockedPayloadV1 struct {
	ItemID      string `json:"item_id"`
	UnlockLevel int    `json:"unlock_level"`
}

// AreaUnlockedPayloadV1 announces a themed area opening up.
type AreaUnlockedPayloadV1 struct {
	AreaID string `json:"area_id"`
}

// ConstructionStartedPayloadV1 announces a new project entering the live set.
type ConstructionStartedPayloadV1 struct {
	ItemID          string              `json:"item_id"`
	Position        domain.GridPosition `json:"position"`
	AreaID          string              `json:"area_id"`
	DurationSeconds float64             `json:"duration_seconds"`
}

// ConstructionCompletedPayloadV1 announces a finished build, whether the timer
// elapsed or the quest side-channel forced it.
type ConstructionCompletedPayloadV1 struct {
	ItemID      string              `json:"item_id"`
	Position    domain.GridPosition `json:"position"`
	AreaID      string              `json:"area_id"`
	QuestForced bool                `json:"quest_forced"`
}

// QuestCompletedPayloadV1 announces one skip quest being finished.
type QuestCompletedPayloadV1 struct {
	ItemID    string              `json:"item_id"`
	Position  domain.GridPosition `json:"position"`
	QuestText string              `json:"quest_text"`
}

// QuestDeletedPayloadV1 announces a quest hidden from the task list. The quest
// stays in the project's master requirement.
type QuestDeletedPayloadV1 struct {
	ItemID    string              `json:"item_id"`
	Position  domain.GridPosition `json:"position"`
	QuestText string              `json:"quest_text"`
}

// Type-safe event constructors

// NewLevelUpEvent creates a level-up event
func NewLevelUpEvent(newLevel int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PlayerLevelUp,
		Payload: LevelUpPayloadV1{
			NewLevel:  newLevel,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewBuildingUnlockedEvent creates a building-unlocked event
func NewBuildingUnlockedEvent(itemID string, unlockLevel int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BuildingUnlocked,
		Payload: BuildingUnlockedPayloadV1{
			ItemID:      itemID,
			UnlockLevel: unlockLevel,
		},
	}
}

// NewAreaUnlockedEvent creates an area-unlocked event
func NewAreaUnlockedEvent(areaID string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    AreaUnlocked,
		Payload: AreaUnlockedPayloadV1{AreaID: areaID},
	}
}

// NewConstructionStartedEvent creates a construction-started event
func NewConstructionStartedEvent(itemID string, pos domain.GridPosition, areaID string, durationSeconds float64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ConstructionStarted,
		Payload: ConstructionStartedPayloadV1{
			ItemID:          itemID,
			Position:        pos,
			AreaID:          areaID,
			DurationSeconds: durationSeconds,
		},
	}
}

// NewConstructionCompletedEvent creates a construction-completed event
func NewConstructionCompletedEvent(itemID string, pos domain.GridPosition, areaID string, questForced bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ConstructionCompleted,
		Payload: ConstructionCompletedPayloadV1{
			ItemID:      itemID,
			Position:    pos,
			AreaID:      areaID,
			QuestForced: questForced,
		},
	}
}

// NewQuestCompletedEvent creates a quest-completed event
func NewQuestCompletedEvent(itemID string, pos domain.GridPosition, questText string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestCompleted,
		Payload: QuestCompletedPayloadV1{
			ItemID:    itemID,
			Position:  pos,
			QuestText: questText,
		},
	}
}

// NewQuestDeletedEvent creates a quest-deleted event
func NewQuestDeletedEvent(itemID string, pos domain.GridPosition, questText string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestDeleted,
		Payload: QuestDeletedPayloadV1{
			ItemID:    itemID,
			Position:  pos,
			QuestText: questText,
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers. Handlers run synchronously in
// subscription order; handler errors are collected, not short-circuited.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
