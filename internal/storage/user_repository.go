package storage

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"movienight-go/internal/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, user *models.User) error
	ExistsByID(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, query string, excludeID string, limit int) ([]models.User, error)
	GetPublicInfoByID(ctx context.Context, id string) (*models.UserPublicInfo, error)
	GetPublicInfoByIDs(ctx context.Context, ids []string) ([]*models.UserPublicInfo, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *gormUserRepository) Delete(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Delete(user).Error
}

// ExistsByID reports whether a user row with the given id exists.
func (r *gormUserRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Search finds users matching the query on email or first/last name,
// case-insensitively, excluding excludeID.
func (r *gormUserRepository) Search(ctx context.Context, query string, excludeID string, limit int) ([]models.User, error) {
	var users []models.User
	searchTerm := "%" + strings.ToLower(query) + "%"

	err := r.db.WithContext(ctx).
		Where("(LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?) AND id != ?",
			searchTerm, searchTerm, searchTerm, excludeID).
		Select("id", "email", "first_name", "last_name", "avatar_url").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return users, nil
		}
		return nil, err
	}
	return users, nil
}

func (r *gormUserRepository) GetPublicInfoByID(ctx context.Context, id string) (*models.UserPublicInfo, error) {
	var info models.UserPublicInfo
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "email", "first_name", "last_name", "avatar_url").
		Where("id = ?", id).
		First(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *gormUserRepository) GetPublicInfoByIDs(ctx context.Context, ids []string) ([]*models.UserPublicInfo, error) {
	var infos []*models.UserPublicInfo
	if len(ids) == 0 {
		return infos, nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "email", "first_name", "last_name", "avatar_url").
		Where("id IN ?", ids).
		Find(&infos).Error
	if err != nil {
		return nil, err
	}
	return infos, nil
}
