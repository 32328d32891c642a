package apiserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"movienight-go/internal/middleware"
	"movienight-go/internal/models"
	"movienight-go/internal/services"
)

// FriendHandler bundles the friend-request workflow HTTP handlers.
type FriendHandler struct {
	friendService services.FriendService
}

// NewFriendHandler creates a new FriendHandler instance.
func NewFriendHandler(fs services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: fs}
}

// SendRequest handles POST /api/v1/friends/request/{userID}.
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	receiverID := mux.Vars(r)["userID"]

	err := h.friendService.SendRequest(r.Context(), senderID, receiverID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFriendRequestSelf):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrFriendUserMissing):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrAlreadyFriends), errors.Is(err, services.ErrRequestAlreadyPending):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("send friend request %s -> %s failed: %v", senderID, receiverID, err)
			writeJSONError(w, "failed to send friend request", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "friend request sent"})
}

// Accept handles POST /api/v1/friends/accept/{requestID}.
func (h *FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, h.friendService.Accept, "friend request accepted")
}

// Reject handles POST /api/v1/friends/reject/{requestID}.
func (h *FriendHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, h.friendService.Reject, "friend request rejected")
}

// resolveRequest is the shared accept/reject plumbing: both take a request id
// path variable, require the caller to be the receiver and the request to be
// pending, and differ only in the transition applied.
func (h *FriendHandler) resolveRequest(
	w http.ResponseWriter,
	r *http.Request,
	resolve func(ctx context.Context, receiverID string, requestID uint) error,
	successMessage string,
) {
	receiverID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	requestID, ok := parseRequestID(r)
	if !ok {
		writeJSONError(w, "invalid friend request id", http.StatusBadRequest)
		return
	}

	err := resolve(r.Context(), receiverID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFriendRequestNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrRequestNotPending):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("resolve friend request %d by %s failed: %v", requestID, receiverID, err)
			writeJSONError(w, "failed to process friend request", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": successMessage})
}

// Cancel handles DELETE /api/v1/friends/request/{userID}: the sender
// withdraws their own pending request to userID.
func (h *FriendHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	receiverID := mux.Vars(r)["userID"]

	err := h.friendService.Cancel(r.Context(), senderID, receiverID)
	if err != nil {
		if errors.Is(err, services.ErrFriendRequestNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			log.Printf("cancel friend request %s -> %s failed: %v", senderID, receiverID, err)
			writeJSONError(w, "failed to cancel friend request", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfriend handles DELETE /api/v1/friends/{userID}.
func (h *FriendHandler) Unfriend(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	otherID := mux.Vars(r)["userID"]

	err := h.friendService.Unfriend(r.Context(), viewerID, otherID)
	if err != nil {
		if errors.Is(err, services.ErrFriendshipNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			log.Printf("unfriend %s / %s failed: %v", viewerID, otherID, err)
			writeJSONError(w, "failed to remove friend", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/v1/friends/stats.
func (h *FriendHandler) Stats(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	stats, err := h.friendService.Stats(r.Context(), viewerID)
	if err != nil {
		log.Printf("friend stats for %s failed: %v", viewerID, err)
		writeJSONError(w, "failed to load friend stats", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, stats)
}

// Search handles GET /api/v1/friends/search?query=....
func (h *FriendHandler) Search(w http.ResponseWriter, r *http.Request) {
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

	results, err := h.friendService.Search(r.Context(), viewerID, query)
	if err != nil {
		log.Printf("friend search for %s failed: %v", viewerID, err)
		writeJSONError(w, "search failed", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []models.UserSearchResult{}
	}
	writeJSONResponse(w, http.StatusOK, results)
}

// ListFriends handles GET /api/v1/friends.
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), viewerID)
	if err != nil {
		log.Printf("list friends for %s failed: %v", viewerID, err)
		writeJSONError(w, "failed to list friends", http.StatusInternalServerError)
		return
	}
	if friends == nil {
		friends = []models.UserSearchResult{}
	}
	writeJSONResponse(w, http.StatusOK, friends)
}

// PendingRequests handles GET /api/v1/friends/requests.
func (h *FriendHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	requests, err := h.friendService.ListPendingReceived(r.Context(), viewerID)
	if err != nil {
		log.Printf("list pending requests for %s failed: %v", viewerID, err)
		writeJSONError(w, "failed to list pending requests", http.StatusInternalServerError)
		return
	}
	if requests == nil {
		requests = []models.PendingFriendRequest{}
	}
	writeJSONResponse(w, http.StatusOK, requests)
}

func parseRequestID(r *http.Request) (uint, bool) {
	idStr := mux.Vars(r)["requestID"]
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
