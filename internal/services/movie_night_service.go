package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"movienight-go/internal/models"
	"movienight-go/internal/storage"
)

var ErrMovieNightNotFound = errors.New("movie night not found")

// MovieNightInput carries the caller-editable fields of a movie night.
type MovieNightInput struct {
	MovieTitle    string    `json:"movieTitle"`
	ScheduledDate time.Time `json:"scheduledDate"`
	StartTime     string    `json:"startTime"`
	Notes         string    `json:"notes"`
	ImageURL      string    `json:"imageUrl"`
	Genre         string    `json:"genre"`
}

// MovieNightService is the owner-scoped movie night CRUD. Every operation
// takes the authenticated owner id; rows belonging to other users read as
// not found.
type MovieNightService interface {
	Create(ctx context.Context, ownerID string, input MovieNightInput) (*models.MovieNight, error)
	Get(ctx context.Context, ownerID string, id uint) (*MovieNightDetails, error)
	Update(ctx context.Context, ownerID string, id uint, input MovieNightInput) (*models.MovieNight, error)
	Delete(ctx context.Context, ownerID string, id uint) error
	List(ctx context.Context, ownerID string) ([]models.MovieNight, error)
	ListUpcoming(ctx context.Context, ownerID string) ([]models.MovieNight, error)
	ListPast(ctx context.Context, ownerID string) ([]models.MovieNight, error)
}

type movieNightService struct {
	movieNightRepo storage.MovieNightRepository
	attendance     AttendanceService
}

// NewMovieNightService creates a new MovieNightService instance.
func NewMovieNightService(movieNightRepo storage.MovieNightRepository, attendance AttendanceService) MovieNightService {
	return &movieNightService{movieNightRepo: movieNightRepo, attendance: attendance}
}

func (s *movieNightService) Create(ctx context.Context, ownerID string, input MovieNightInput) (*models.MovieNight, error) {
	night := &models.MovieNight{
		MovieTitle:    input.MovieTitle,
		ScheduledDate: input.ScheduledDate,
		StartTime:     input.StartTime,
		Notes:         input.Notes,
		ImageURL:      input.ImageURL,
		Genre:         input.Genre,
		UserID:        ownerID,
	}
	if err := s.movieNightRepo.Create(ctx, night); err != nil {
		return nil, fmt.Errorf("failed to create movie night: %w", err)
	}
	return night, nil
}

// Get returns the owner's movie night with its attendees.
func (s *movieNightService) Get(ctx context.Context, ownerID string, id uint) (*MovieNightDetails, error) {
	night, err := s.getForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	attendees, err := s.attendance.ListAttendees(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MovieNightDetails{
		MovieNight: night,
		Attendees:  attendees,
		IsOwner:    true,
	}, nil
}

func (s *movieNightService) Update(ctx context.Context, ownerID string, id uint, input MovieNightInput) (*models.MovieNight, error) {
	night, err := s.getForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	night.MovieTitle = input.MovieTitle
	night.ScheduledDate = input.ScheduledDate
	night.StartTime = input.StartTime
	night.Notes = input.Notes
	night.ImageURL = input.ImageURL
	night.Genre = input.Genre

	if err := s.movieNightRepo.Update(ctx, night); err != nil {
		return nil, fmt.Errorf("failed to update movie night %d: %w", id, err)
	}
	return night, nil
}

func (s *movieNightService) Delete(ctx context.Context, ownerID string, id uint) error {
	night, err := s.getForOwner(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.movieNightRepo.Delete(ctx, night); err != nil {
		return fmt.Errorf("failed to delete movie night %d: %w", id, err)
	}
	return nil
}

func (s *movieNightService) List(ctx context.Context, ownerID string) ([]models.MovieNight, error) {
	return s.movieNightRepo.ListByOwner(ctx, ownerID)
}

func (s *movieNightService) ListUpcoming(ctx context.Context, ownerID string) ([]models.MovieNight, error) {
	return s.movieNightRepo.ListUpcoming(ctx, ownerID, today())
}

func (s *movieNightService) ListPast(ctx context.Context, ownerID string) ([]models.MovieNight, error) {
	return s.movieNightRepo.ListPast(ctx, ownerID, today())
}

func (s *movieNightService) getForOwner(ctx context.Context, ownerID string, id uint) (*models.MovieNight, error) {
	night, err := s.movieNightRepo.GetByIDForOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNightNotFound
		}
		return nil, fmt.Errorf("failed to load movie night %d: %w", id, err)
	}
	return night, nil
}
