package handlers

import (
	"net/http"
	"time"

	"github.com/fitforge/v1/internal/infrastructure/http/middleware"
	"github.com/fitforge/v1/internal/infrastructure/monitoring"
	"github.com/fitforge/v1/internal/ports/inbound"
	"github.com/fitforge/v1/pkg/errors"
)

// dietRequestPayload is the wire form of a diet generation request
type dietRequestPayload struct {
	Modifying     bool   `json:"modifying"`
	Modifications string `json:"modifications" validate:"max=4000"`
}

// workoutRequestPayload is the wire form of a workout generation request
type workoutRequestPayload struct {
	Modifying     bool   `json:"modifying"`
	Regenerate    bool   `json:"regenerate"`
	Modifications string `json:"modifications" validate:"max=4000"`
}

// GenerateDiet handles POST /api/v1/plans/diet
func (h *APIHandlers) GenerateDiet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Error: "Authentication required"})
		return
	}

	var payload dietRequestPayload
	if !h.decodeAndValidate(w, r, &payload) {
		return
	}

	result, err := h.plans.GenerateDiet(r.Context(), userID, inbound.DietRequest{
		Modifying:         payload.Modifying,
		UserModifications: payload.Modifications,
	})
	monitoring.RecordPlanGeneration("diet", outcomeLabel(err))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

// GenerateWorkout handles POST /api/v1/plans/workout
func (h *APIHandlers) GenerateWorkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Error: "Authentication required"})
		return
	}

	var payload workoutRequestPayload
	if !h.decodeAndValidate(w, r, &payload) {
		return
	}

	result, err := h.plans.GenerateWorkout(r.Context(), userID, inbound.WorkoutRequest{
		Modifying:         payload.Modifying,
		Regenerate:        payload.Regenerate,
		UserModifications: payload.Modifications,
	})
	monitoring.RecordPlanGeneration("workout", outcomeLabel(err))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

// CurrentDiet handles GET /api/v1/plans/diet
func (h *APIHandlers) CurrentDiet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Error: "Authentication required"})
		return
	}

	var date time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	result, err := h.plans.CurrentDiet(r.Context(), userID, date)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

// CurrentWorkout handles GET /api/v1/plans/workout
func (h *APIHandlers) CurrentWorkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Error: "Authentication required"})
		return
	}

	result, err := h.plans.CurrentWorkout(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

// outcomeLabel maps a generation result to a metrics label
func outcomeLabel(err error) string {
	if err == nil {
		return "accepted"
	}
	switch {
	case errors.Is(err, errors.CodeOffTopic):
		return "off_topic"
	case errors.Is(err, errors.CodeSchemaViolation):
		return "schema_violation"
	case errors.Is(err, errors.CodeBanActive):
		return "banned"
	case errors.Is(err, errors.CodeCooldownActive):
		return "cooldown"
	case errors.Is(err, errors.CodeExternalServiceError):
		return "upstream_error"
	default:
		return "error"
	}
}
