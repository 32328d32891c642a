package apiserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"movienight-go/internal/middleware"
	"movienight-go/internal/models"
	"movienight-go/internal/services"
)

// MovieNightHandler bundles the owner-scoped movie night CRUD handlers.
type MovieNightHandler struct {
	movieNightService services.MovieNightService
}

// NewMovieNightHandler creates a new MovieNightHandler instance.
func NewMovieNightHandler(ms services.MovieNightService) *MovieNightHandler {
	return &MovieNightHandler{movieNightService: ms}
}

// Create handles POST /api/v1/movie-nights.
func (h *MovieNightHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var input services.MovieNightInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if input.MovieTitle == "" {
		writeJSONError(w, "movie title is required", http.StatusBadRequest)
		return
	}

	night, err := h.movieNightService.Create(r.Context(), ownerID, input)
	if err != nil {
		log.Printf("create movie night for %s failed: %v", ownerID, err)
		writeJSONError(w, "failed to create movie night", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusCreated, night)
}

// Get handles GET /api/v1/movie-nights/{id}.
func (h *MovieNightHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	id, ok := parseMovieNightID(r)
	if !ok {
		writeJSONError(w, "invalid movie night id", http.StatusBadRequest)
		return
	}

	details, err := h.movieNightService.Get(r.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, services.ErrMovieNightNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			log.Printf("get movie night %d for %s failed: %v", id, ownerID, err)
			writeJSONError(w, "failed to load movie night", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, details)
}

// Update handles PUT /api/v1/movie-nights/{id}.
func (h *MovieNightHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	id, ok := parseMovieNightID(r)
	if !ok {
		writeJSONError(w, "invalid movie night id", http.StatusBadRequest)
		return
	}

	var input services.MovieNightInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	night, err := h.movieNightService.Update(r.Context(), ownerID, id, input)
	if err != nil {
		if errors.Is(err, services.ErrMovieNightNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			log.Printf("update movie night %d for %s failed: %v", id, ownerID, err)
			writeJSONError(w, "failed to update movie night", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, night)
}

// Delete handles DELETE /api/v1/movie-nights/{id}.
func (h *MovieNightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	id, ok := parseMovieNightID(r)
	if !ok {
		writeJSONError(w, "invalid movie night id", http.StatusBadRequest)
		return
	}

	err := h.movieNightService.Delete(r.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, services.ErrMovieNightNotFound) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			log.Printf("delete movie night %d for %s failed: %v", id, ownerID, err)
			writeJSONError(w, "failed to delete movie night", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/v1/movie-nights, with optional ?filter=upcoming|past.
func (h *MovieNightHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var (
		nights []models.MovieNight
		err    error
	)
	switch r.URL.Query().Get("filter") {
	case "upcoming":
		nights, err = h.movieNightService.ListUpcoming(r.Context(), ownerID)
	case "past":
		nights, err = h.movieNightService.ListPast(r.Context(), ownerID)
	default:
		nights, err = h.movieNightService.List(r.Context(), ownerID)
	}
	if err != nil {
		log.Printf("list movie nights for %s failed: %v", ownerID, err)
		writeJSONError(w, "failed to list movie nights", http.StatusInternalServerError)
		return
	}
	if nights == nil {
		nights = []models.MovieNight{}
	}
	writeJSONResponse(w, http.StatusOK, nights)
}

func parseMovieNightID(r *http.Request) (uint, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
