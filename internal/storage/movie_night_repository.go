package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"movienight-go/internal/models"
)

// MovieNightRepository defines the interface for movie night data operations.
type MovieNightRepository interface {
	Create(ctx context.Context, night *models.MovieNight) error
	GetByID(ctx context.Context, id uint) (*models.MovieNight, error)
	GetByIDForOwner(ctx context.Context, id uint, ownerID string) (*models.MovieNight, error)
	GetOwnerID(ctx context.Context, id uint) (string, error)
	Update(ctx context.Context, night *models.MovieNight) error
	Delete(ctx context.Context, night *models.MovieNight) error
	DeleteByOwner(ctx context.Context, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.MovieNight, error)
	ListUpcoming(ctx context.Context, ownerID string, from time.Time) ([]models.MovieNight, error)
	ListPast(ctx context.Context, ownerID string, before time.Time) ([]models.MovieNight, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	CountUpcoming(ctx context.Context, ownerID string, from time.Time) (int64, error)
}

type gormMovieNightRepository struct {
	db *gorm.DB
}

// NewGormMovieNightRepository creates a new GORM-based MovieNightRepository.
func NewGormMovieNightRepository(db *gorm.DB) MovieNightRepository {
	return &gormMovieNightRepository{db: db}
}

func (r *gormMovieNightRepository) Create(ctx context.Context, night *models.MovieNight) error {
	return r.db.WithContext(ctx).Create(night).Error
}

func (r *gormMovieNightRepository) GetByID(ctx context.Context, id uint) (*models.MovieNight, error) {
	var night models.MovieNight
	err := r.db.WithContext(ctx).First(&night, id).Error
	if err != nil {
		return nil, err
	}
	return &night, nil
}

// GetByIDForOwner scopes the lookup to the owner; anyone else gets
// gorm.ErrRecordNotFound.
func (r *gormMovieNightRepository) GetByIDForOwner(ctx context.Context, id uint, ownerID string) (*models.MovieNight, error) {
	var night models.MovieNight
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&night).Error
	if err != nil {
		return nil, err
	}
	return &night, nil
}

// GetOwnerID returns just the owner user id of the movie night.
func (r *gormMovieNightRepository) GetOwnerID(ctx context.Context, id uint) (string, error) {
	var ownerID string
	err := r.db.WithContext(ctx).Model(&models.MovieNight{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("user_id", &ownerID).Error
	if err != nil {
		return "", err
	}
	if ownerID == "" {
		return "", gorm.ErrRecordNotFound
	}
	return ownerID, nil
}

func (r *gormMovieNightRepository) Update(ctx context.Context, night *models.MovieNight) error {
	return r.db.WithContext(ctx).Save(night).Error
}

func (r *gormMovieNightRepository) Delete(ctx context.Context, night *models.MovieNight) error {
	return r.db.WithContext(ctx).Delete(night).Error
}

// DeleteByOwner removes every movie night belonging to ownerID.
func (r *gormMovieNightRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Delete(&models.MovieNight{}).Error
}

func (r *gormMovieNightRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.MovieNight, error) {
	var nights []models.MovieNight
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("scheduled_date, start_time").
		Find(&nights).Error
	return nights, err
}

func (r *gormMovieNightRepository) ListUpcoming(ctx context.Context, ownerID string, from time.Time) ([]models.MovieNight, error) {
	var nights []models.MovieNight
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND scheduled_date >= ?", ownerID, from).
		Order("scheduled_date, start_time").
		Find(&nights).Error
	return nights, err
}

func (r *gormMovieNightRepository) ListPast(ctx context.Context, ownerID string, before time.Time) ([]models.MovieNight, error) {
	var nights []models.MovieNight
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND scheduled_date < ?", ownerID, before).
		Order("scheduled_date DESC, start_time DESC").
		Find(&nights).Error
	return nights, err
}

func (r *gormMovieNightRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MovieNight{}).
		Where("user_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

func (r *gormMovieNightRepository) CountUpcoming(ctx context.Context, ownerID string, from time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MovieNight{}).
		Where("user_id = ? AND scheduled_date >= ?", ownerID, from).
		Count(&count).Error
	return count, err
}
