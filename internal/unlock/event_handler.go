package unlock

import (
	"context"
	"fmt"

	"github.com/nvallee/cityforge/internal/event"
	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/metrics"
)

// EventHandler announces newly reachable buildings when the player levels up.
type EventHandler struct {
	assigner  Assigner
	publisher event.Bus
}

// NewEventHandler creates a new unlock event handler
func NewEventHandler(assigner Assigner, publisher event.Bus) *EventHandler {
	return &EventHandler{assigner: assigner, publisher: publisher}
}

// Register subscribes the handler to relevant events
func (h *EventHandler) Register(bus event.Bus) {
	bus.Subscribe(event.PlayerLevelUp, h.HandleLevelUp)
}

// HandleLevelUp publishes one building-unlocked event for each item whose unlock
// level matches the level just reached. Level-up events fire once per level
// gained, so a multi-level XP award still announces every item.
func (h *EventHandler) HandleLevelUp(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[event.LevelUpPayloadV1](evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to decode level-up payload: %w", err)
	}

	log := logger.FromContext(ctx)
	for _, itemID := range h.assigner.ItemsUnlockedAt(payload.NewLevel) {
		metrics.BuildingsUnlocked.Inc()
		if err := h.publisher.Publish(ctx, event.NewBuildingUnlockedEvent(itemID, payload.NewLevel)); err != nil {
			log.Warn("Failed to publish building-unlocked event", "item_id", itemID, "error", err)
		}
	}

	return nil
}
