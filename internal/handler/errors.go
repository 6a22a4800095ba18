package handler

import (
	"errors"
	"net/http"

	"github.com/nvallee/cityforge/internal/domain"
)

// Generic HTTP error messages for client responses.
// These intentionally do not expose internal error details.
const (
	ErrMsgInvalidRequest       = "Invalid request body"
	ErrMsgGenericServerError   = "Something went wrong"
	ErrMsgProjectNotFoundHTTP  = "Construction project not found"
	ErrMsgProjectExistsHTTP    = "A building is already under construction at that position"
	ErrMsgAreaNotFoundHTTP     = "Area not found"
	ErrMsgQuestNotFoundHTTP    = "Quest not found"
	ErrMsgBuildingLockedHTTP   = "That building is not unlocked yet"
	ErrMsgAddExperienceFailed  = "Failed to add experience"
	ErrMsgSelectAreaFailed     = "Failed to select starting area"
	ErrMsgPlaceBuildingFailed  = "Failed to place building"
	ErrMsgPauseBuildingFailed  = "Failed to pause construction"
	ErrMsgResumeBuildingFailed = "Failed to resume construction"
	ErrMsgSellBuildingFailed   = "Failed to sell building"
	ErrMsgSkipQuestsFailed     = "Failed to add skip quests"
	ErrMsgCompleteQuestFailed  = "Failed to complete quest"
	ErrMsgDeleteQuestFailed    = "Failed to delete quest"
)

// Success messages for API responses
const (
	MsgExperienceAdded  = "Experience added"
	MsgAreaSelected     = "Starting area selected"
	MsgOrderReapplied   = "Unlock order reapplied"
	MsgBuildingPlaced   = "Building placed"
	MsgBuildingSold     = "Building sold"
	MsgBuildingResumed  = "Construction resumed"
	MsgQuestCompleted   = "Quest completed"
	MsgQuestDeleted     = "Quest deleted"
)

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequest
	case errors.Is(err, domain.ErrProjectExists):
		return http.StatusConflict, ErrMsgProjectExistsHTTP
	case errors.Is(err, domain.ErrProjectNotFound):
		return http.StatusNotFound, ErrMsgProjectNotFoundHTTP
	case errors.Is(err, domain.ErrAreaNotFound):
		return http.StatusNotFound, ErrMsgAreaNotFoundHTTP
	case errors.Is(err, domain.ErrQuestNotFound):
		return http.StatusNotFound, ErrMsgQuestNotFoundHTTP
	default:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}
}
