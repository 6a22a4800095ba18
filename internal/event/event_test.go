package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvallee/cityforge/internal/domain"
)

func TestMemoryBus_DispatchOrder(t *testing.T) {
	bus := NewMemoryBus()
	var calls []string
	bus.Subscribe(PlayerLevelUp, func(ctx context.Context, evt Event) error {
		calls = append(calls, "first")
		return nil
	})
	bus.Subscribe(PlayerLevelUp, func(ctx context.Context, evt Event) error {
		calls = append(calls, "second")
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), NewLevelUpEvent(2)))

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestMemoryBus_NoSubscribers(t *testing.T) {
	bus := NewMemoryBus()

	assert.NoError(t, bus.Publish(context.Background(), NewLevelUpEvent(2)))
}

func TestMemoryBus_HandlerErrorsCollected(t *testing.T) {
	bus := NewMemoryBus()
	called := false
	bus.Subscribe(PlayerLevelUp, func(ctx context.Context, evt Event) error {
		return errors.New("boom")
	})
	bus.Subscribe(PlayerLevelUp, func(ctx context.Context, evt Event) error {
		called = true
		return nil
	})

	err := bus.Publish(context.Background(), NewLevelUpEvent(2))

	assert.Error(t, err)
	assert.True(t, called, "a failing handler must not starve later ones")
}

func TestMemoryBus_TypeIsolation(t *testing.T) {
	bus := NewMemoryBus()
	levelUps := 0
	bus.Subscribe(PlayerLevelUp, func(ctx context.Context, evt Event) error {
		levelUps++
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), NewAreaUnlockedEvent("riverside")))

	assert.Zero(t, levelUps)
}

func TestDecodePayload_DirectAssertion(t *testing.T) {
	evt := NewLevelUpEvent(7)

	payload, err := DecodePayload[LevelUpPayloadV1](evt.Payload)

	require.NoError(t, err)
	assert.Equal(t, 7, payload.NewLevel)
}

func TestDecodePayload_JSONFallback(t *testing.T) {
	raw := map[string]interface{}{"new_level": 7, "timestamp": 123}

	payload, err := DecodePayload[LevelUpPayloadV1](raw)

	require.NoError(t, err)
	assert.Equal(t, 7, payload.NewLevel)
	assert.Equal(t, int64(123), payload.Timestamp)
}

func TestEventConstructors_CarrySchemaVersion(t *testing.T) {
	pos := domain.GridPosition{X: 1, Y: 2}
	events := []Event{
		NewLevelUpEvent(2),
		NewBuildingUnlockedEvent("bakery", 3),
		NewAreaUnlockedEvent("riverside"),
		NewConstructionStartedEvent("bakery", pos, "riverside", 3600),
		NewConstructionCompletedEvent("bakery", pos, "riverside", false),
		NewQuestCompletedEvent("bakery", pos, "some quest"),
		NewQuestDeletedEvent("bakery", pos, "some quest"),
	}

	for _, evt := range events {
		assert.Equal(t, EventSchemaVersion, evt.Version, "event %s", evt.Type)
		assert.NotNil(t, evt.Payload)
	}
}
