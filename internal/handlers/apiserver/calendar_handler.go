package apiserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"movienight-go/internal/middleware"
	"movienight-go/internal/services"
)

// CalendarHandler bundles the friend-gated calendar and RSVP handlers.
type CalendarHandler struct {
	calendarService services.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler instance.
func NewCalendarHandler(cs services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: cs}
}

// GetUserCalendar handles GET /api/v1/calendar/{userID}.
func (h *CalendarHandler) GetUserCalendar(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	ownerID := mux.Vars(r)["userID"]

	view, err := h.calendarService.GetUserCalendar(r.Context(), viewerID, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFriends):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, services.ErrCalendarUserMissing):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		default:
			log.Printf("get calendar of %s for %s failed: %v", ownerID, viewerID, err)
			writeJSONError(w, "failed to load calendar", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// GetMovieNightDetails handles GET /api/v1/calendar/movie-nights/{movieNightID}.
func (h *CalendarHandler) GetMovieNightDetails(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	movieNightID, ok := parseCalendarMovieNightID(r)
	if !ok {
		writeJSONError(w, "invalid movie night id", http.StatusBadRequest)
		return
	}

	details, err := h.calendarService.GetMovieNightDetails(r.Context(), viewerID, movieNightID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMovieNightNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotFriends):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		default:
			log.Printf("get movie night %d for %s failed: %v", movieNightID, viewerID, err)
			writeJSONError(w, "failed to load movie night", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, details)
}

// Attend handles POST /api/v1/calendar/movie-nights/{movieNightID}/attend.
func (h *CalendarHandler) Attend(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	movieNightID, ok := parseCalendarMovieNightID(r)
	if !ok {
		writeJSONError(w, "invalid movie night id", http.StatusBadRequest)
		return
	}

	err := h.calendarService.Attend(r.Context(), viewerID, movieNightID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMovieNightNotFound):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrNotFriends):
			writeJSONError(w, err.Error(), http.StatusForbidden)
		case errors.Is(err, services.ErrAlreadyAttending):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			log.Printf("attend movie night %d by %s failed: %v", movieNightID, viewerID, err)
			writeJSONError(w, "failed to join movie night", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "attending movie night"})
}

// Unattend handles DELETE /api/v1/calendar/movie-nights/{movieNightID}/attend.
func (h *CalendarHandler) Unattend(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	movieNightID, ok := parseCalendarMovieNightID(r)
	if !ok {
		writeJSONError(w, "invalid movie night id", http.StatusBadRequest)
		return
	}

	err := h.calendarService.Unattend(r.Context(), viewerID, movieNightID)
	if err != nil {
		if errors.Is(err, services.ErrNotAttending) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
		} else {
			log.Printf("unattend movie night %d by %s failed: %v", movieNightID, viewerID, err)
			writeJSONError(w, "failed to leave movie night", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseCalendarMovieNightID(r *http.Request) (uint, bool) {
	idStr := mux.Vars(r)["movieNightID"]
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
