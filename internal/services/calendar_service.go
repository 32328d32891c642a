package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"movienight-go/internal/config"
	"movienight-go/internal/kafka"
	"movienight-go/internal/models"
	"movienight-go/internal/storage"
)

var ErrCalendarUserMissing = errors.New("calendar owner does not exist")

// CalendarView is the friend-gated view of another user's calendar.
type CalendarView struct {
	User             *models.UserPublicInfo `json:"user"`
	MovieNights      []models.MovieNight    `json:"movieNights"`
	TotalMovieNights int64                  `json:"totalMovieNights"`
	FriendsCount     int64                  `json:"friendsCount"`
	IsOwnCalendar    bool                   `json:"isOwnCalendar"`
}

// MovieNightDetails is the friend-gated detail view of a single movie night.
type MovieNightDetails struct {
	MovieNight  *models.MovieNight    `json:"movieNight"`
	Attendees   []models.AttendeeInfo `json:"attendees"`
	IsAttending bool                  `json:"isAttending"`
	IsOwner     bool                  `json:"isOwner"`
}

// CalendarService composes the visibility guard with calendar and RSVP reads
// and writes. Denials surface as ErrNotFriends so callers can distinguish
// forbidden from missing.
type CalendarService interface {
	GetUserCalendar(ctx context.Context, viewerID, ownerID string) (*CalendarView, error)
	GetMovieNightDetails(ctx context.Context, viewerID string, movieNightID uint) (*MovieNightDetails, error)
	Attend(ctx context.Context, viewerID string, movieNightID uint) error
	Unattend(ctx context.Context, viewerID string, movieNightID uint) error
}

type calendarService struct {
	userRepo       storage.UserRepository
	movieNightRepo storage.MovieNightRepository
	friendRepo     storage.FriendRequestRepository
	visibility     VisibilityService
	attendance     AttendanceService
	producer       kafka.MessageProducer
	kafkaCfg       config.KafkaConfig
}

// NewCalendarService creates a new CalendarService instance. producer may be
// nil; then no relationship events are emitted.
func NewCalendarService(
	userRepo storage.UserRepository,
	movieNightRepo storage.MovieNightRepository,
	friendRepo storage.FriendRequestRepository,
	visibility VisibilityService,
	attendance AttendanceService,
	producer kafka.MessageProducer,
	kafkaCfg config.KafkaConfig,
) CalendarService {
	return &calendarService{
		userRepo:       userRepo,
		movieNightRepo: movieNightRepo,
		friendRepo:     friendRepo,
		visibility:     visibility,
		attendance:     attendance,
		producer:       producer,
		kafkaCfg:       kafkaCfg,
	}
}

// GetUserCalendar returns the owner's upcoming movie nights plus profile and
// counters, after the friendship gate.
func (s *calendarService) GetUserCalendar(ctx context.Context, viewerID, ownerID string) (*CalendarView, error) {
	allowed, err := s.visibility.CanViewCalendar(ctx, viewerID, ownerID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotFriends
	}

	owner, err := s.userRepo.GetPublicInfoByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarUserMissing
		}
		return nil, fmt.Errorf("failed to load calendar owner %s: %w", ownerID, err)
	}

	nights, err := s.movieNightRepo.ListUpcoming(ctx, ownerID, today())
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming movie nights: %w", err)
	}
	total, err := s.movieNightRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count movie nights: %w", err)
	}
	friendsCount, err := s.friendRepo.CountAcceptedFor(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count friends: %w", err)
	}

	return &CalendarView{
		User:             owner,
		MovieNights:      nights,
		TotalMovieNights: total,
		FriendsCount:     friendsCount,
		IsOwnCalendar:    viewerID == ownerID,
	}, nil
}

// GetMovieNightDetails returns the movie night with its attendees. A missing
// movie night answers not-found before any authorization, a visible one is
// gated on friendship with the owner.
func (s *calendarService) GetMovieNightDetails(ctx context.Context, viewerID string, movieNightID uint) (*MovieNightDetails, error) {
	night, err := s.movieNightRepo.GetByID(ctx, movieNightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNightNotFound
		}
		return nil, fmt.Errorf("failed to load movie night %d: %w", movieNightID, err)
	}

	allowed, err := s.visibility.CanViewEvent(ctx, viewerID, night.UserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotFriends
	}

	attendees, err := s.attendance.ListAttendees(ctx, movieNightID)
	if err != nil {
		return nil, err
	}
	isAttending := false
	for _, a := range attendees {
		if a.ID == viewerID {
			isAttending = true
			break
		}
	}

	return &MovieNightDetails{
		MovieNight:  night,
		Attendees:   attendees,
		IsAttending: isAttending,
		IsOwner:     night.UserID == viewerID,
	}, nil
}

// Attend RSVPs the viewer to the movie night after the friendship gate.
func (s *calendarService) Attend(ctx context.Context, viewerID string, movieNightID uint) error {
	ownerID, err := s.movieNightRepo.GetOwnerID(ctx, movieNightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMovieNightNotFound
		}
		return fmt.Errorf("failed to resolve movie night owner: %w", err)
	}

	allowed, err := s.visibility.CanAttend(ctx, viewerID, ownerID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrNotFriends
	}

	if err := s.attendance.Rsvp(ctx, movieNightID, viewerID); err != nil {
		return err
	}

	publishRelationshipEvent(ctx, s.producer, s.kafkaCfg.RelationshipEventsTopic, RelationshipEvent{
		Type:       "rsvp",
		ActorID:    viewerID,
		SubjectID:  ownerID,
		ResourceID: movieNightID,
		Timestamp:  time.Now(),
	})
	return nil
}

// Unattend removes the viewer's own RSVP. Removing your own row needs no
// friendship gate.
func (s *calendarService) Unattend(ctx context.Context, viewerID string, movieNightID uint) error {
	return s.attendance.CancelRsvp(ctx, movieNightID, viewerID)
}

// today truncates now to midnight local time, matching the calendar's notion
// of an upcoming date.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
