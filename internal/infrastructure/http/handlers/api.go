// Package handlers provides JSON API handlers for the HTTP server
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	userapp "github.com/fitforge/v1/internal/application/user"
	"github.com/fitforge/v1/internal/ports/inbound"
	"github.com/fitforge/v1/pkg/errors"
)

// APIResponse is the standard envelope for every JSON response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// APIHandlers aggregates the application services behind the HTTP surface
type APIHandlers struct {
	plans    inbound.PlanService
	users    *userapp.UserService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAPIHandlers creates the API handler set
func NewAPIHandlers(plans inbound.PlanService, users *userapp.UserService, logger *zap.Logger) *APIHandlers {
	return &APIHandlers{
		plans:    plans,
		users:    users,
		validate: validator.New(),
		logger:   logger.Named("api"),
	}
}

func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeError translates application errors into HTTP status codes
func (h *APIHandlers) writeError(w http.ResponseWriter, err error) {
	appErr := errors.FromError(err)
	h.writeJSON(w, appErr.StatusCode(), APIResponse{
		Success: false,
		Error:   appErr.Message,
	})
}

// decodeAndValidate parses a JSON body into dst and runs struct validation
func (h *APIHandlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "Invalid JSON payload",
		})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "Validation failed: " + err.Error(),
		})
		return false
	}
	return true
}
