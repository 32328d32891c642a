package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"movienight-go/internal/models"
	"movienight-go/internal/storage"
)

var (
	ErrAlreadyAttending = errors.New("already attending this movie night")
	ErrNotAttending     = errors.New("not attending this movie night")
)

// AttendanceService is the RSVP ledger. It does not authorize: callers run
// the visibility check before invoking a write here.
type AttendanceService interface {
	Rsvp(ctx context.Context, movieNightID uint, userID string) error
	CancelRsvp(ctx context.Context, movieNightID uint, userID string) error
	IsAttending(ctx context.Context, movieNightID uint, userID string) (bool, error)
	ListAttendees(ctx context.Context, movieNightID uint) ([]models.AttendeeInfo, error)
}

type attendanceService struct {
	userRepo       storage.UserRepository
	attendanceRepo storage.AttendanceRepository
}

// NewAttendanceService creates a new AttendanceService instance.
func NewAttendanceService(userRepo storage.UserRepository, attendanceRepo storage.AttendanceRepository) AttendanceService {
	return &attendanceService{userRepo: userRepo, attendanceRepo: attendanceRepo}
}

// Rsvp records the user's attendance. A second RSVP for the same pair fails
// with ErrAlreadyAttending, with the unique pair index as the race backstop.
func (s *attendanceService) Rsvp(ctx context.Context, movieNightID uint, userID string) error {
	attending, err := s.attendanceRepo.Exists(ctx, movieNightID, userID)
	if err != nil {
		return fmt.Errorf("failed to check existing RSVP: %w", err)
	}
	if attending {
		return ErrAlreadyAttending
	}

	attendee := &models.MovieNightAttendee{MovieNightID: movieNightID, UserID: userID}
	if err := s.attendanceRepo.Create(ctx, attendee); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyAttending
		}
		return fmt.Errorf("failed to create RSVP: %w", err)
	}
	return nil
}

// CancelRsvp removes the user's attendance row.
func (s *attendanceService) CancelRsvp(ctx context.Context, movieNightID uint, userID string) error {
	deleted, err := s.attendanceRepo.Delete(ctx, movieNightID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete RSVP: %w", err)
	}
	if !deleted {
		return ErrNotAttending
	}
	return nil
}

// IsAttending reports whether the user has an RSVP for the movie night.
func (s *attendanceService) IsAttending(ctx context.Context, movieNightID uint, userID string) (bool, error) {
	return s.attendanceRepo.Exists(ctx, movieNightID, userID)
}

// ListAttendees projects the RSVPs, in RSVP order, to attendee profiles.
func (s *attendanceService) ListAttendees(ctx context.Context, movieNightID uint) ([]models.AttendeeInfo, error) {
	attendees, err := s.attendanceRepo.ListByMovieNight(ctx, movieNightID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}

	userIDs := make([]string, 0, len(attendees))
	for _, a := range attendees {
		userIDs = append(userIDs, a.UserID)
	}
	infos, err := s.userRepo.GetPublicInfoByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendee profiles: %w", err)
	}
	byID := make(map[string]*models.UserPublicInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}

	results := make([]models.AttendeeInfo, 0, len(attendees))
	for _, a := range attendees {
		info, ok := byID[a.UserID]
		if !ok {
			log.Printf("RSVP references missing user %s, skipping", a.UserID)
			continue
		}
		results = append(results, models.AttendeeInfo{
			UserPublicInfo: *info,
			RsvpedAt:       a.RsvpedAt,
		})
	}
	return results, nil
}
