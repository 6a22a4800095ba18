package handler

import "net/http"

// TaskLister exposes the player's surfaced task list.
type TaskLister interface {
	Tasks() []string
}

// TasksResponse holds the surfaced task texts in display order.
type TasksResponse struct {
	Tasks []string `json:"tasks"`
}

// HandleListTasks returns the surfaced quest texts in the order they appeared.
func HandleListTasks(list TaskLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, TasksResponse{Tasks: list.Tasks()})
	}
}
