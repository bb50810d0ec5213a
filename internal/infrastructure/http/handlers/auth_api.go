package handlers

import (
	"net/http"

	userapp "github.com/fitforge/v1/internal/application/user"
	"github.com/fitforge/v1/internal/infrastructure/http/middleware"
	"github.com/fitforge/v1/internal/infrastructure/monitoring"
)

// Register handles POST /api/v1/auth/register
func (h *APIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var cmd userapp.RegisterCommand
	if !h.decodeAndValidate(w, r, &cmd) {
		return
	}

	resp, err := h.users.Register(r.Context(), cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	monitoring.RecordUserRegistered()

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    resp,
		Message: "Account created",
	})
}

// Login handles POST /api/v1/auth/login
func (h *APIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var cmd userapp.LoginCommand
	if !h.decodeAndValidate(w, r, &cmd) {
		return
	}

	resp, err := h.users.Login(r.Context(), cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    resp,
	})
}

// Me handles GET /api/v1/auth/me
func (h *APIHandlers) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Error: "Authentication required"})
		return
	}

	dto, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: dto})
}

// GetProfile handles GET /api/v1/profile
func (h *APIHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Error: "Authentication required"})
		return
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: profile})
}

// UpdateProfile handles PUT /api/v1/profile
func (h *APIHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Error: "Authentication required"})
		return
	}

	var cmd userapp.ProfileCommand
	if !h.decodeAndValidate(w, r, &cmd) {
		return
	}

	profile, err := h.users.UpdateProfile(r.Context(), userID, cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    profile,
		Message: "Profile updated",
	})
}
