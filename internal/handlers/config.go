package handlers

import (
	"net/http"

	"guardian/internal/envfile"
	"guardian/internal/tasks"
)

// GetConfig returns the masked configuration snapshot for the UI.
func GetConfig(store *envfile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := store.Read()
		if err != nil {
			JSONAppError(w, err)
			return
		}
		JSONResponse(w, snap)
	}
}

// TaskStatus reports the progress of a restart task by id.
func TaskStatus(o *tasks.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID := r.PathValue("taskId")
		task, ok := o.Status(taskID)
		if !ok {
			JSONError(w, "Task not found: "+taskID, http.StatusNotFound)
			return
		}
		JSONResponse(w, map[string]interface{}{
			"status": "success",
			"task":   task,
		})
	}
}
