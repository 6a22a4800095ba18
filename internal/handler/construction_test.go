package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvallee/cityforge/internal/construction"
	"github.com/nvallee/cityforge/internal/domain"
	"github.com/nvallee/cityforge/internal/event"
	"github.com/nvallee/cityforge/internal/progression"
	"github.com/nvallee/cityforge/internal/region"
	"github.com/nvallee/cityforge/internal/store"
	"github.com/nvallee/cityforge/internal/tasklist"
	"github.com/nvallee/cityforge/internal/unlock"
)

type emptyPool struct{}

func (emptyPool) GetQuestsForArea(areaID string, tier domain.QuestTier) []string { return nil }

type constructionFixture struct {
	handlers *ConstructionHandlers
	svc      construction.Service
	prog     progression.Service
}

func newConstructionFixture(t *testing.T) *constructionFixture {
	t.Helper()
	kv := store.NewMemory()
	bus := event.NewMemoryBus()
	catalogs := []domain.AreaCatalog{{AreaID: "riverside", Items: []string{"cottage", "bakery", "sawmill"}}}

	assigner := unlock.NewAssigner(kv, unlock.Config{MaxLevel: 10, MinMinutes: 1, MaxMinutes: 60, FallbackMinutes: 30})
	prog := progression.NewService(kv, bus, progression.Config{XPBase: 50, XPMultiplier: 1.15})
	regions := region.NewService(kv, bus, assigner, catalogs, region.Config{})
	svc := construction.NewService(kv, bus, emptyPool{}, tasklist.NewMemory(), nil)

	require.NoError(t, regions.SelectStartingArea(context.Background(), "riverside", nil))

	return &constructionFixture{
		handlers: NewConstructionHandlers(svc, assigner, prog, regions),
		svc:      svc,
		prog:     prog,
	}
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandlePlace_UnlockedItem(t *testing.T) {
	f := newConstructionFixture(t)

	// cottage is the first item, unlocked from level 1.
	rec := postJSON(f.handlers.HandlePlace(), "/api/v1/building/place",
		`{"item_id":"cottage","x":1,"y":2,"area_id":"riverside"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	projects := f.svc.ActiveProjects()
	require.Len(t, projects, 1)
	assert.Equal(t, "cottage", projects[0].ItemID)
	assert.Greater(t, projects[0].DurationSeconds, 0.0)
}

func TestHandlePlace_LockedItem(t *testing.T) {
	f := newConstructionFixture(t)

	// sawmill is the last item and unlocks at the max level.
	rec := postJSON(f.handlers.HandlePlace(), "/api/v1/building/place",
		`{"item_id":"sawmill","x":1,"y":2,"area_id":"riverside"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.svc.ActiveProjects())
}

func TestHandlePlace_DuplicatePosition(t *testing.T) {
	f := newConstructionFixture(t)
	body := `{"item_id":"cottage","x":1,"y":2,"area_id":"riverside"}`

	require.Equal(t, http.StatusOK, postJSON(f.handlers.HandlePlace(), "/api/v1/building/place", body).Code)
	rec := postJSON(f.handlers.HandlePlace(), "/api/v1/building/place", body)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlePlace_MissingItemID(t *testing.T) {
	f := newConstructionFixture(t)

	rec := postJSON(f.handlers.HandlePlace(), "/api/v1/building/place", `{"x":1,"y":2,"area_id":"riverside"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSell(t *testing.T) {
	f := newConstructionFixture(t)
	require.Equal(t, http.StatusOK, postJSON(f.handlers.HandlePlace(), "/api/v1/building/place",
		`{"item_id":"cottage","x":1,"y":2,"area_id":"riverside"}`).Code)

	rec := postJSON(f.handlers.HandleSell(), "/api/v1/building/sell", `{"item_id":"cottage","x":1,"y":2}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.svc.ActiveProjects())
}

func TestHandleSell_NotFound(t *testing.T) {
	f := newConstructionFixture(t)

	rec := postJSON(f.handlers.HandleSell(), "/api/v1/building/sell", `{"item_id":"ghost","x":9,"y":9}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePauseResume_RoundTrip(t *testing.T) {
	f := newConstructionFixture(t)
	require.Equal(t, http.StatusOK, postJSON(f.handlers.HandlePlace(), "/api/v1/building/place",
		`{"item_id":"cottage","x":1,"y":2,"area_id":"riverside"}`).Code)

	pauseRec := postJSON(f.handlers.HandlePause(), "/api/v1/building/pause", `{"item_id":"cottage","x":1,"y":2}`)
	require.Equal(t, http.StatusOK, pauseRec.Code)
	assert.Empty(t, f.svc.ActiveProjects())

	var snapshot domain.ConstructionProject
	require.NoError(t, json.Unmarshal(pauseRec.Body.Bytes(), &snapshot))
	assert.Equal(t, "cottage", snapshot.ItemID)

	resumeRec := postJSON(f.handlers.HandleResume(), "/api/v1/building/resume", pauseRec.Body.String())
	assert.Equal(t, http.StatusOK, resumeRec.Code)

	projects := f.svc.ActiveProjects()
	require.Len(t, projects, 1)
	assert.Equal(t, snapshot.StartTime.Unix(), projects[0].StartTime.Unix())
}

func TestHandleResume_EmptyBody(t *testing.T) {
	f := newConstructionFixture(t)

	rec := postJSON(f.handlers.HandleResume(), "/api/v1/building/resume", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAddSkipQuests(t *testing.T) {
	f := newConstructionFixture(t)
	require.Equal(t, http.StatusOK, postJSON(f.handlers.HandlePlace(), "/api/v1/building/place",
		`{"item_id":"cottage","x":1,"y":2,"area_id":"riverside"}`).Code)

	rec := postJSON(f.handlers.HandleAddSkipQuests(), "/api/v1/building/quests/skip",
		`{"item_id":"cottage","x":1,"y":2,"count":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SkipQuestsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Quests, 2)
}

func TestHandleAddSkipQuests_CountRequired(t *testing.T) {
	f := newConstructionFixture(t)

	rec := postJSON(f.handlers.HandleAddSkipQuests(), "/api/v1/building/quests/skip",
		`{"item_id":"cottage","x":1,"y":2,"count":0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCompleteQuest_UnknownQuest(t *testing.T) {
	f := newConstructionFixture(t)
	require.Equal(t, http.StatusOK, postJSON(f.handlers.HandlePlace(), "/api/v1/building/place",
		`{"item_id":"cottage","x":1,"y":2,"area_id":"riverside"}`).Code)

	rec := postJSON(f.handlers.HandleCompleteQuest(), "/api/v1/building/quests/complete",
		`{"item_id":"cottage","x":1,"y":2,"text":"never added"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListProjects(t *testing.T) {
	f := newConstructionFixture(t)
	require.Equal(t, http.StatusOK, postJSON(f.handlers.HandlePlace(), "/api/v1/building/place",
		`{"item_id":"cottage","x":1,"y":2,"area_id":"riverside"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/building/projects", nil)
	rec := httptest.NewRecorder()
	f.handlers.HandleListProjects()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var projects []domain.ConstructionProject
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	assert.Len(t, projects, 1)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrProjectExists, http.StatusConflict},
		{domain.ErrProjectNotFound, http.StatusNotFound},
		{domain.ErrAreaNotFound, http.StatusNotFound},
		{domain.ErrQuestNotFound, http.StatusNotFound},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := statusForError(tt.err)
		assert.Equal(t, tt.want, status, "error %v", tt.err)
	}
}
