package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/progression"
)

// AddExperienceRequest is the payload for awarding XP.
type AddExperienceRequest struct {
	Amount int `json:"amount" validate:"min=0"`
}

// PlayerResponse reports the player's current progression state.
type PlayerResponse struct {
	Level      int `json:"level"`
	Experience int `json:"experience"`
	NextCost   int `json:"next_level_cost"`
}

// HandleAddExperience awards experience and reports any level-ups.
func HandleAddExperience(service progression.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req AddExperienceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("Add experience: invalid JSON body", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondError(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		result, err := service.AddExperience(r.Context(), req.Amount)
		if err != nil {
			log.Error("Add experience: service error", "error", err)
			status, msg := statusForError(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

// HandleGetPlayer returns the player's level state.
func HandleGetPlayer(service progression.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := service.State(r.Context())
		respondJSON(w, http.StatusOK, PlayerResponse{
			Level:      state.Level,
			Experience: state.Experience,
			NextCost:   service.ExperienceCost(state.Level),
		})
	}
}
