package storage

import (
	"context"

	"gorm.io/gorm"

	"movienight-go/internal/models"
)

// FollowRepository defines the interface for follow edge data operations.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, followerID, followingID string) (bool, error)
	DeleteAllInvolving(ctx context.Context, userID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
	ListFollowerIDs(ctx context.Context, userID string) ([]string, error)
	ListFollowingIDs(ctx context.Context, userID string) ([]string, error)
	FollowingIDsAmong(ctx context.Context, followerID string, candidateIDs []string) ([]string, error)
}

type gormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-based FollowRepository.
func NewGormFollowRepository(db *gorm.DB) FollowRepository {
	return &gormFollowRepository{db: db}
}

func (r *gormFollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

// Delete removes the edge and reports whether a row was actually deleted.
func (r *gormFollowRepository) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteAllInvolving removes every edge touching userID, in either role.
func (r *gormFollowRepository) DeleteAllInvolving(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? OR following_id = ?", userID, userID).
		Delete(&models.Follow{}).Error
}

func (r *gormFollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormFollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *gormFollowRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *gormFollowRepository) ListFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Order("created_at").
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *gormFollowRepository) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at").
		Pluck("following_id", &ids).Error
	return ids, err
}

// FollowingIDsAmong returns the subset of candidateIDs that followerID
// follows, in a single query, so listings can annotate each candidate
// without one query per row.
func (r *gormFollowRepository) FollowingIDsAmong(ctx context.Context, followerID string, candidateIDs []string) ([]string, error) {
	var ids []string
	if len(candidateIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ?", followerID, candidateIDs).
		Pluck("following_id", &ids).Error
	return ids, err
}
