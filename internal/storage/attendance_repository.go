package storage

import (
	"context"

	"gorm.io/gorm"

	"movienight-go/internal/models"
)

// AttendanceRepository defines the interface for RSVP data operations.
type AttendanceRepository interface {
	Create(ctx context.Context, attendee *models.MovieNightAttendee) error
	Delete(ctx context.Context, movieNightID uint, userID string) (bool, error)
	DeleteAllForUser(ctx context.Context, userID string) error
	Exists(ctx context.Context, movieNightID uint, userID string) (bool, error)
	ListByMovieNight(ctx context.Context, movieNightID uint) ([]models.MovieNightAttendee, error)
}

type gormAttendanceRepository struct {
	db *gorm.DB
}

// NewGormAttendanceRepository creates a new GORM-based AttendanceRepository.
func NewGormAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &gormAttendanceRepository{db: db}
}

func (r *gormAttendanceRepository) Create(ctx context.Context, attendee *models.MovieNightAttendee) error {
	return r.db.WithContext(ctx).Create(attendee).Error
}

// Delete removes the RSVP row and reports whether one actually existed.
func (r *gormAttendanceRepository) Delete(ctx context.Context, movieNightID uint, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("movie_night_id = ? AND user_id = ?", movieNightID, userID).
		Delete(&models.MovieNightAttendee{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteAllForUser removes every RSVP made by userID.
func (r *gormAttendanceRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.MovieNightAttendee{}).Error
}

func (r *gormAttendanceRepository) Exists(ctx context.Context, movieNightID uint, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MovieNightAttendee{}).
		Where("movie_night_id = ? AND user_id = ?", movieNightID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByMovieNight returns RSVPs in the order they were made.
func (r *gormAttendanceRepository) ListByMovieNight(ctx context.Context, movieNightID uint) ([]models.MovieNightAttendee, error) {
	var attendees []models.MovieNightAttendee
	err := r.db.WithContext(ctx).
		Where("movie_night_id = ?", movieNightID).
		Order("rsvped_at").
		Find(&attendees).Error
	return attendees, err
}
