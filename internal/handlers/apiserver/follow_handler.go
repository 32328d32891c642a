package apiserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"movienight-go/internal/middleware"
	"movienight-go/internal/models"
	"movienight-go/internal/services"
)

// FollowHandler bundles the follow-graph HTTP handlers.
type FollowHandler struct {
	followService services.FollowService
}

// NewFollowHandler creates a new FollowHandler instance.
func NewFollowHandler(fs services.FollowService) *FollowHandler {
	return &FollowHandler{followService: fs}
}

// Follow handles POST /api/v1/follow/{userID}.
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	targetID := mux.Vars(r)["userID"]

	err := h.followService.Follow(r.Context(), viewerID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCannotFollowSelf):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrFollowUserMissing):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrAlreadyFollowing):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("follow %s -> %s failed: %v", viewerID, targetID, err)
			writeJSONError(w, "failed to follow user", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "now following"})
}

// Unfollow handles DELETE /api/v1/follow/{userID}.
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	targetID := mux.Vars(r)["userID"]

	err := h.followService.Unfollow(r.Context(), viewerID, targetID)
	if err != nil {
		if errors.Is(err, services.ErrNotFollowing) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			log.Printf("unfollow %s -> %s failed: %v", viewerID, targetID, err)
			writeJSONError(w, "failed to unfollow user", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/v1/follow/stats.
func (h *FollowHandler) Stats(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	stats, err := h.followService.Stats(r.Context(), viewerID)
	if err != nil {
		log.Printf("follow stats for %s failed: %v", viewerID, err)
		writeJSONError(w, "failed to load follow stats", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, stats)
}

// Search handles GET /api/v1/follow/search?query=....
func (h *FollowHandler) Search(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	query := r.URL.Query().Get("query")
	if query == "" {
		writeJSONError(w, "query cannot be empty", http.StatusBadRequest)
		return
	}

	results, err := h.followService.Search(r.Context(), viewerID, query)
	if err != nil {
		log.Printf("follow search for %s failed: %v", viewerID, err)
		writeJSONError(w, "search failed", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.UserSearchResult{}
	}
	writeJSONResponse(w, http.StatusOK, results)
}

// Followers handles GET /api/v1/follow/followers.
func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	results, err := h.followService.ListFollowers(r.Context(), viewerID)
	if err != nil {
		log.Printf("list followers for %s failed: %v", viewerID, err)
		writeJSONError(w, "failed to list followers", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.UserSearchResult{}
	}
	writeJSONResponse(w, http.StatusOK, results)
}

// Following handles GET /api/v1/follow/following.
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	results, err := h.followService.ListFollowing(r.Context(), viewerID)
	if err != nil {
		log.Printf("list following for %s failed: %v", viewerID, err)
		writeJSONError(w, "failed to list following", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.UserSearchResult{}
	}
	writeJSONResponse(w, http.StatusOK, results)
}
