package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nvallee/cityforge/internal/domain"
	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/region"
)

// SelectAreaRequest carries the starting area choice and the quiz ranking.
type SelectAreaRequest struct {
	AreaID string             `json:"area_id" validate:"required"`
	Scores []domain.AreaScore `json:"scores" validate:"dive"`
}

// RegionStatusResponse reports the unlock order and per-area state.
type RegionStatusResponse struct {
	Order    []string        `json:"order"`
	Unlocked map[string]bool `json:"unlocked"`
}

// HandleSelectStartingArea applies the quiz result: chosen area first,
// everything else ranked by score.
func HandleSelectStartingArea(service region.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req SelectAreaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("Select area: invalid JSON body", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondError(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		if err := service.SelectStartingArea(r.Context(), req.AreaID, req.Scores); err != nil {
			log.Error("Select area: service error", "error", err)
			status, msg := statusForError(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgAreaSelected})
	}
}

// HandleReapplyUnlockOrder rebuilds ordering metadata on session restore
// without touching earned unlocks.
func HandleReapplyUnlockOrder(service region.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req SelectAreaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("Reapply order: invalid JSON body", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondError(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		if err := service.ReapplyUnlockOrder(r.Context(), req.AreaID, req.Scores); err != nil {
			log.Error("Reapply order: service error", "error", err)
			status, msg := statusForError(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgOrderReapplied})
	}
}

// HandleRegionStatus reports the unlock order and each area's state.
func HandleRegionStatus(service region.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order := service.Order()
		unlocked := make(map[string]bool, len(order))
		for _, areaID := range order {
			unlocked[areaID] = service.IsUnlocked(areaID)
		}

		respondJSON(w, http.StatusOK, RegionStatusResponse{Order: order, Unlocked: unlocked})
	}
}
