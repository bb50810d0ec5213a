package handlers

import (
	"net/http"

	userapp "github.com/fitforge/v1/internal/application/user"
	"github.com/fitforge/v1/internal/infrastructure/http/middleware"
)

// LogWorkout handles POST /api/v1/workouts
func (h *APIHandlers) LogWorkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Error: "Authentication required"})
		return
	}

	var cmd userapp.LogWorkoutCommand
	if !h.decodeAndValidate(w, r, &cmd) {
		return
	}

	run, err := h.users.LogWorkout(r.Context(), userID, cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    run,
		Message: "Workout logged",
	})
}

// ListWorkouts handles GET /api/v1/workouts
func (h *APIHandlers) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Error: "Authentication required"})
		return
	}

	runs, err := h.users.ListWorkouts(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: runs})
}
