package region

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvallee/cityforge/internal/domain"
	"github.com/nvallee/cityforge/internal/event"
	"github.com/nvallee/cityforge/internal/store"
	"github.com/nvallee/cityforge/internal/unlock"
)

// Three areas of two items each over levels [1,11] puts the areas' first
// items at levels 1, 5 and 9 once the unlock order is a, b, c.
func testCatalogs() []domain.AreaCatalog {
	return []domain.AreaCatalog{
		{AreaID: "a", Items: []string{"a1", "a2"}},
		{AreaID: "b", Items: []string{"b1", "b2"}},
		{AreaID: "c", Items: []string{"c1", "c2"}},
	}
}

func newTestService(kv store.KV, bus event.Bus, threshold int) Service {
	assigner := unlock.NewAssigner(kv, unlock.Config{MaxLevel: 11, MinMinutes: 1, MaxMinutes: 10, FallbackMinutes: 5})
	return NewService(kv, bus, assigner, testCatalogs(), Config{BuildingThreshold: threshold})
}

func scores(pairs ...domain.AreaScore) []domain.AreaScore {
	return pairs
}

func TestSelectStartingArea_UnlocksOnlyChoice(t *testing.T) {
	svc := newTestService(store.NewMemory(), nil, 0)

	err := svc.SelectStartingArea(context.Background(), "b",
		scores(domain.AreaScore{AreaID: "a", Score: 2}, domain.AreaScore{AreaID: "c", Score: 5}))

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, svc.Order())
	assert.True(t, svc.IsUnlocked("b"))
	assert.False(t, svc.IsUnlocked("a"))
	assert.False(t, svc.IsUnlocked("c"))
	assert.Equal(t, 1, svc.UnlockedCount())
}

func TestSelectStartingArea_UnknownArea(t *testing.T) {
	svc := newTestService(store.NewMemory(), nil, 0)

	err := svc.SelectStartingArea(context.Background(), "nowhere", nil)

	assert.ErrorIs(t, err, domain.ErrAreaNotFound)
}

func TestSelectStartingArea_TiesKeepScoreOrder(t *testing.T) {
	svc := newTestService(store.NewMemory(), nil, 0)

	err := svc.SelectStartingArea(context.Background(), "a",
		scores(domain.AreaScore{AreaID: "c", Score: 1}, domain.AreaScore{AreaID: "b", Score: 1}))

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, svc.Order())
}

func TestSelectStartingArea_UnscoredAreasGoLast(t *testing.T) {
	svc := newTestService(store.NewMemory(), nil, 0)

	err := svc.SelectStartingArea(context.Background(), "b", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, svc.Order())
}

func TestSelectStartingArea_PublishesAreaUnlocked(t *testing.T) {
	bus := event.NewMemoryBus()
	var unlocked []string
	bus.Subscribe(event.AreaUnlocked, func(ctx context.Context, evt event.Event) error {
		payload, err := event.DecodePayload[event.AreaUnlockedPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		unlocked = append(unlocked, payload.AreaID)
		return nil
	})

	svc := newTestService(store.NewMemory(), bus, 0)
	require.NoError(t, svc.SelectStartingArea(context.Background(), "a", nil))

	assert.Equal(t, []string{"a"}, unlocked)
}

func TestCheckLevelThresholds_ProgressiveUnlocks(t *testing.T) {
	svc := newTestService(store.NewMemory(), nil, 0)
	require.NoError(t, svc.SelectStartingArea(context.Background(), "a",
		scores(domain.AreaScore{AreaID: "b", Score: 2}, domain.AreaScore{AreaID: "c", Score: 1})))

	assert.Empty(t, svc.CheckLevelThresholds(context.Background(), 4))

	assert.Equal(t, []string{"b"}, svc.CheckLevelThresholds(context.Background(), 5))
	assert.True(t, svc.IsUnlocked("b"))
	assert.False(t, svc.IsUnlocked("c"))

	// Already-unlocked areas are never reported again.
	assert.Empty(t, svc.CheckLevelThresholds(context.Background(), 5))

	assert.Equal(t, []string{"c"}, svc.CheckLevelThresholds(context.Background(), 9))
	assert.Equal(t, 3, svc.UnlockedCount())
}

func TestCheckLevelThresholds_MultipleAtOnce(t *testing.T) {
	svc := newTestService(store.NewMemory(), nil, 0)
	require.NoError(t, svc.SelectStartingArea(context.Background(), "a",
		scores(domain.AreaScore{AreaID: "b", Score: 2}, domain.AreaScore{AreaID: "c", Score: 1})))

	// A big level jump can clear several thresholds in one check.
	assert.Equal(t, []string{"b", "c"}, svc.CheckLevelThresholds(context.Background(), 11))
}

func TestCheckLevelThresholds_NoOrderSelected(t *testing.T) {
	svc := newTestService(store.NewMemory(), nil, 0)

	// Without a starting selection the assigner has no mapping, so no
	// thresholds exist and nothing unlocks.
	assert.Empty(t, svc.CheckLevelThresholds(context.Background(), 99))
}

func TestReapplyUnlockOrder_KeepsEarnedUnlocks(t *testing.T) {
	kv := store.NewMemory()
	svc := newTestService(kv, nil, 0)
	require.NoError(t, svc.SelectStartingArea(context.Background(), "a",
		scores(domain.AreaScore{AreaID: "b", Score: 2}, domain.AreaScore{AreaID: "c", Score: 1})))
	require.Equal(t, []string{"b"}, svc.CheckLevelThresholds(context.Background(), 5))

	err := svc.ReapplyUnlockOrder(context.Background(), "a",
		scores(domain.AreaScore{AreaID: "c", Score: 2}, domain.AreaScore{AreaID: "b", Score: 1}))

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, svc.Order())
	assert.True(t, svc.IsUnlocked("a"))
	assert.True(t, svc.IsUnlocked("b"), "earned unlock must survive a reorder")
	assert.False(t, svc.IsUnlocked("c"))
}

func TestService_PersistenceRoundTrip(t *testing.T) {
	kv := store.NewMemory()
	svc := newTestService(kv, nil, 0)
	require.NoError(t, svc.SelectStartingArea(context.Background(), "b", nil))
	require.NotEmpty(t, svc.CheckLevelThresholds(context.Background(), 11))

	restored := newTestService(kv, nil, 0)
	assert.Equal(t, svc.Order(), restored.Order())
	assert.Equal(t, svc.UnlockedCount(), restored.UnlockedCount())
}

func TestAddBuildingToRegion_ThresholdUnlock(t *testing.T) {
	bus := event.NewMemoryBus()
	var unlocked []string
	bus.Subscribe(event.AreaUnlocked, func(ctx context.Context, evt event.Event) error {
		payload, err := event.DecodePayload[event.AreaUnlockedPayloadV1](evt.Payload)
		if err != nil {
			return err
		}
		unlocked = append(unlocked, payload.AreaID)
		return nil
	})

	svc := newTestService(store.NewMemory(), bus, 2)

	require.NoError(t, svc.AddBuildingToRegion(context.Background(), "c"))
	assert.False(t, svc.IsUnlocked("c"))

	require.NoError(t, svc.AddBuildingToRegion(context.Background(), "c"))
	assert.True(t, svc.IsUnlocked("c"))
	assert.Equal(t, []string{"c"}, unlocked)

	// Further buildings never re-announce.
	require.NoError(t, svc.AddBuildingToRegion(context.Background(), "c"))
	assert.Len(t, unlocked, 1)
}

func TestRemoveBuildingFromRegion_FloorsAtZero(t *testing.T) {
	svc := newTestService(store.NewMemory(), nil, 0)

	require.NoError(t, svc.RemoveBuildingFromRegion(context.Background(), "a"))
	require.NoError(t, svc.AddBuildingToRegion(context.Background(), "a"))
	require.NoError(t, svc.RemoveBuildingFromRegion(context.Background(), "a"))
	require.NoError(t, svc.RemoveBuildingFromRegion(context.Background(), "a"))

	assert.ErrorIs(t, svc.RemoveBuildingFromRegion(context.Background(), "nowhere"), domain.ErrAreaNotFound)
}

func TestResetAll(t *testing.T) {
	svc := newTestService(store.NewMemory(), nil, 0)
	require.NoError(t, svc.SelectStartingArea(context.Background(), "a", nil))
	require.NotEmpty(t, svc.CheckLevelThresholds(context.Background(), 11))

	svc.ResetAll(context.Background())

	assert.Equal(t, 0, svc.UnlockedCount())
}
