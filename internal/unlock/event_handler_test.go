package unlock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvallee/cityforge/internal/domain"
	"github.com/nvallee/cityforge/internal/event"
	"github.com/nvallee/cityforge/internal/store"
)

func TestEventHandler_AnnouncesUnlockedItems(t *testing.T) {
	a := NewAssigner(store.NewMemory(), Config{MaxLevel: 5, MinMinutes: 1, MaxMinutes: 10, FallbackMinutes: 5})
	a.Recompute(context.Background(), []string{"town"}, []domain.AreaCatalog{makeCatalog("town", 3)})

	bus := event.NewMemoryBus()
	NewEventHandler(a, bus).Register(bus)

	var unlocked []string
	bus.Subscribe(event.BuildingUnlocked, func(ctx context.Context, evt event.Event) error {
		payload, err := event.DecodePayload[event.BuildingUnlockedPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		unlocked = append(unlocked, payload.ItemID)
		return nil
	})

	// Levels for three items over [1,5] are 1, 3, 5.
	require.NoError(t, bus.Publish(context.Background(), event.NewLevelUpEvent(3)))
	assert.Equal(t, []string{"town_item_001"}, unlocked)

	require.NoError(t, bus.Publish(context.Background(), event.NewLevelUpEvent(2)))
	assert.Len(t, unlocked, 1, "no items unlock at level 2")
}
