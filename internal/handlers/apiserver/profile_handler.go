package apiserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"movienight-go/internal/middleware"
	"movienight-go/internal/services"
)

// ProfileHandler bundles the authenticated user's profile HTTP handlers.
type ProfileHandler struct {
	userService services.UserService
}

// NewProfileHandler creates a new ProfileHandler instance.
func NewProfileHandler(us services.UserService) *ProfileHandler {
	return &ProfileHandler{userService: us}
}

// ChangePasswordRequest is the JSON body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// GetProfile handles GET /api/v1/profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			log.Printf("get profile for %s failed: %v", userID, err)
			writeJSONError(w, "failed to load profile", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/v1/profile.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var update services.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	err := h.userService.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrEmailTaken):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("update profile for %s failed: %v", userID, err)
			writeJSONError(w, "failed to update profile", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "profile updated"})
}

// DeleteAccount handles DELETE /api/v1/profile. Deletion takes the user's
// movie nights and relationship rows with it.
func (h *ProfileHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	err := h.userService.DeleteAccount(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			log.Printf("delete account %s failed: %v", userID, err)
			writeJSONError(w, "failed to delete account", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles POST /api/v1/profile/password.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeJSONError(w, "current and new password are required", http.StatusBadRequest)
		return
	}

	err := h.userService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrInvalidCredentials):
			writeJSONError(w, "current password is incorrect", http.StatusBadRequest)
		default:
			log.Printf("change password for %s failed: %v", userID, err)
			writeJSONError(w, "failed to change password", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "password changed"})
}
