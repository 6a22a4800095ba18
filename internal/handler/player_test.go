package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvallee/cityforge/internal/event"
	"github.com/nvallee/cityforge/internal/progression"
	"github.com/nvallee/cityforge/internal/store"
)

func newProgression() progression.Service {
	return progression.NewService(store.NewMemory(), event.NewMemoryBus(), progression.Config{XPBase: 50, XPMultiplier: 1.15})
}

func TestHandleAddExperience(t *testing.T) {
	svc := newProgression()
	handler := HandleAddExperience(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/player/xp", strings.NewReader(`{"amount": 60}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result progression.XPAwardResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 2, result.NewLevel)
}

func TestHandleAddExperience_InvalidBody(t *testing.T) {
	handler := HandleAddExperience(newProgression())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/player/xp", strings.NewReader(`{bad`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAddExperience_NegativeAmount(t *testing.T) {
	handler := HandleAddExperience(newProgression())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/player/xp", strings.NewReader(`{"amount": -10}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetPlayer(t *testing.T) {
	handler := HandleGetPlayer(newProgression())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/player", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PlayerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Level)
	assert.Equal(t, 0, resp.Experience)
	assert.Equal(t, 50, resp.NextCost)
}
