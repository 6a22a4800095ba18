package region

import (
	"context"
	"fmt"

	"github.com/nvallee/cityforge/internal/event"
)

// EventHandler re-checks level thresholds whenever the player levels up.
type EventHandler struct {
	service Service
}

// NewEventHandler creates a new region event handler
func NewEventHandler(service Service) *EventHandler {
	return &EventHandler{service: service}
}

// Register subscribes the handler to relevant events
func (h *EventHandler) Register(bus event.Bus) {
	bus.Subscribe(event.PlayerLevelUp, h.HandleLevelUp)
}

// HandleLevelUp runs the threshold check for the level just reached.
func (h *EventHandler) HandleLevelUp(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[event.LevelUpPayloadV1](evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to decode level-up payload: %w", err)
	}

	h.service.CheckLevelThresholds(ctx, payload.NewLevel)
	return nil
}
