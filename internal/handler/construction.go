package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nvallee/cityforge/internal/construction"
	"github.com/nvallee/cityforge/internal/domain"
	"github.com/nvallee/cityforge/internal/logger"
	"github.com/nvallee/cityforge/internal/progression"
	"github.com/nvallee/cityforge/internal/region"
	"github.com/nvallee/cityforge/internal/unlock"
)

// ConstructionHandlers contains HTTP handlers for the construction scheduler
type ConstructionHandlers struct {
	service     construction.Service
	assigner    unlock.Assigner
	progression progression.Service
	regions     region.Service
}

// NewConstructionHandlers creates new construction handlers
func NewConstructionHandlers(service construction.Service, assigner unlock.Assigner, prog progression.Service, regions region.Service) *ConstructionHandlers {
	return &ConstructionHandlers{
		service:     service,
		assigner:    assigner,
		progression: prog,
		regions:     regions,
	}
}

// PlaceBuildingRequest asks for an item to be placed and its build started.
type PlaceBuildingRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	AreaID string `json:"area_id" validate:"required"`
}

// ProjectKeyRequest addresses one live project.
type ProjectKeyRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// QuestRequest addresses one quest text on one project.
type QuestRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Text   string `json:"text" validate:"required"`
}

// SkipQuestsRequest asks for skip quests to be drawn for a project.
type SkipQuestsRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Count  int    `json:"count" validate:"gt=0"`
}

// SkipQuestsResponse lists the quest texts just surfaced.
type SkipQuestsResponse struct {
	Quests []string `json:"quests"`
}

// HandlePlace starts construction of an item the player has unlocked. The
// item's duration comes from the unlock level assigner, so the scheduler never
// sees an undefined build time.
func (h *ConstructionHandlers) HandlePlace() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req PlaceBuildingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("Place building: invalid JSON body", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondError(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		unlockLevel := h.assigner.GetUnlockLevel(req.ItemID)
		if unlockLevel != unlock.UnlockLevelSentinel {
			if state := h.progression.State(r.Context()); state.Level < unlockLevel {
				log.Warn("Place building: item still locked",
					"item_id", req.ItemID, "unlock_level", unlockLevel, "player_level", state.Level)
				respondError(w, http.StatusForbidden, ErrMsgBuildingLockedHTTP)
				return
			}
		}

		pos := domain.GridPosition{X: req.X, Y: req.Y}
		minutes := h.assigner.GetConstructionTime(req.ItemID)
		if err := h.service.Register(r.Context(), req.ItemID, pos, minutes, req.AreaID); err != nil {
			log.Error("Place building: service error", "error", err)
			status, msg := statusForError(err)
			respondError(w, status, msg)
			return
		}

		// Legacy counter path; the level-threshold path is authoritative.
		if err := h.regions.AddBuildingToRegion(r.Context(), req.AreaID); err != nil {
			log.Warn("Place building: failed to bump region counter", "area_id", req.AreaID, "error", err)
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgBuildingPlaced})
	}
}

// HandleSell removes a project permanently. No completion event fires.
func (h *ConstructionHandlers) HandleSell() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req ProjectKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("Sell building: invalid JSON body", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondError(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		pos := domain.GridPosition{X: req.X, Y: req.Y}
		project, ok := h.service.Project(req.ItemID, pos)
		if err := h.service.Remove(r.Context(), req.ItemID, pos); err != nil {
			log.Error("Sell building: service error", "error", err)
			status, msg := statusForError(err)
			respondError(w, status, msg)
			return
		}

		if ok {
			if err := h.regions.RemoveBuildingFromRegion(r.Context(), project.AreaID); err != nil {
				log.Warn("Sell building: failed to drop region counter", "area_id", project.AreaID, "error", err)
			}
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgBuildingSold})
	}
}

// HandlePause removes a project from the live set and hands its record back so
// the client can resume it later exactly as it was.
func (h *ConstructionHandlers) HandlePause() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req ProjectKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("Pause building: invalid JSON body", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondError(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		pos := domain.GridPosition{X: req.X, Y: req.Y}
		snapshot, err := h.service.Pause(r.Context(), req.ItemID, pos)
		if err != nil {
			log.Error("Pause building: service error", "error", err)
			status, msg := statusForError(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, snapshot)
	}
}

// HandleResume restores a paused project. The discount is not re-applied.
func (h *ConstructionHandlers) HandleResume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var project domain.ConstructionProject
		if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
			log.Warn("Resume building: invalid JSON body", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if project.ItemID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		if err := h.service.RegisterWithProgress(r.Context(), project); err != nil {
			log.Error("Resume building: service error", "error", err)
			status, msg := statusForError(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgBuildingResumed})
	}
}

// HandleAddSkipQuests draws skip quests for a project.
func (h *ConstructionHandlers) HandleAddSkipQuests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req SkipQuestsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("Skip quests: invalid JSON body", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondError(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		pos := domain.GridPosition{X: req.X, Y: req.Y}
		quests, err := h.service.AddSkipQuests(r.Context(), req.ItemID, pos, req.Count)
		if err != nil {
			log.Error("Skip quests: service error", "error", err)
			status, msg := statusForError(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, SkipQuestsResponse{Quests: quests})
	}
}

// HandleCompleteQuest finishes one skip quest; emptying the master list
// completes the build immediately.
func (h *ConstructionHandlers) HandleCompleteQuest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req QuestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("Complete quest: invalid JSON body", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondError(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		pos := domain.GridPosition{X: req.X, Y: req.Y}
		if err := h.service.CompleteQuest(r.Context(), req.ItemID, pos, req.Text); err != nil {
			log.Error("Complete quest: service error", "error", err)
			status, msg := statusForError(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgQuestCompleted})
	}
}

// HandleDeleteQuest hides one quest from the task list without shrinking the
// outstanding requirement.
func (h *ConstructionHandlers) HandleDeleteQuest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req QuestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn("Delete quest: invalid JSON body", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondError(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		pos := domain.GridPosition{X: req.X, Y: req.Y}
		if err := h.service.DeleteQuest(r.Context(), req.ItemID, pos, req.Text); err != nil {
			log.Error("Delete quest: service error", "error", err)
			status, msg := statusForError(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgQuestDeleted})
	}
}

// HandleListProjects returns all live projects.
func (h *ConstructionHandlers) HandleListProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, h.service.ActiveProjects())
	}
}
