package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"movienight-go/internal/models"
)

// FriendRequestRepository defines the interface for friend request data operations.
type FriendRequestRepository interface {
	Create(ctx context.Context, request *models.FriendRequest) error
	FindBetween(ctx context.Context, userID1, userID2 string) (*models.FriendRequest, error)
	FindAccepted(ctx context.Context, userID1, userID2 string) (*models.FriendRequest, error)
	FindPendingFrom(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error)
	GetByIDForReceiver(ctx context.Context, requestID uint, receiverID string) (*models.FriendRequest, error)
	MarkAccepted(ctx context.Context, requestID uint, acceptedAt time.Time) error
	MarkRejected(ctx context.Context, requestID uint) error
	DeleteByID(ctx context.Context, requestID uint) error
	DeleteAllInvolving(ctx context.Context, userID string) error
	CountAcceptedFor(ctx context.Context, userID string) (int64, error)
	CountPendingReceived(ctx context.Context, userID string) (int64, error)
	ListAcceptedFor(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListPendingReceived(ctx context.Context, userID string) ([]models.FriendRequest, error)
	ListInvolving(ctx context.Context, userID string, candidateIDs []string) ([]models.FriendRequest, error)
}

type gormFriendRequestRepository struct {
	db *gorm.DB
}

// NewGormFriendRequestRepository creates a new GORM-based FriendRequestRepository.
func NewGormFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &gormFriendRequestRepository{db: db}
}

func (r *gormFriendRequestRepository) Create(ctx context.Context, request *models.FriendRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// FindBetween returns the request row for the unordered pair, whatever its
// status, or nil when no row exists.
func (r *gormFriendRequestRepository) FindBetween(ctx context.Context, userID1, userID2 string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID1, userID2, userID2, userID1).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// FindAccepted returns the accepted row for the unordered pair, or nil.
func (r *gormFriendRequestRepository) FindAccepted(ctx context.Context, userID1, userID2 string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", models.FriendRequestStatusAccepted).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID1, userID2, userID2, userID1).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// FindPendingFrom returns the pending row with exactly this direction, or nil.
// Cancellation must not match the reverse direction.
func (r *gormFriendRequestRepository) FindPendingFrom(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ? AND status = ?",
			senderID, receiverID, models.FriendRequestStatusPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetByIDForReceiver returns the request only when receiverID really is its
// receiver; a wrong party sees gorm.ErrRecordNotFound, not the row.
func (r *gormFriendRequestRepository) GetByIDForReceiver(ctx context.Context, requestID uint, receiverID string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("id = ? AND receiver_id = ?", requestID, receiverID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *gormFriendRequestRepository) MarkAccepted(ctx context.Context, requestID uint, acceptedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ?", requestID).
		Updates(map[string]interface{}{
			"status":      models.FriendRequestStatusAccepted,
			"accepted_at": acceptedAt,
		}).Error
}

func (r *gormFriendRequestRepository) MarkRejected(ctx context.Context, requestID uint) error {
	return r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ?", requestID).
		Update("status", models.FriendRequestStatusRejected).Error
}

func (r *gormFriendRequestRepository) DeleteByID(ctx context.Context, requestID uint) error {
	return r.db.WithContext(ctx).Delete(&models.FriendRequest{}, requestID).Error
}

// DeleteAllInvolving removes every request row where userID is the sender or
// the receiver, whatever the status.
func (r *gormFriendRequestRepository) DeleteAllInvolving(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&models.FriendRequest{}).Error
}

func (r *gormFriendRequestRepository) CountAcceptedFor(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("status = ? AND (sender_id = ? OR receiver_id = ?)",
			models.FriendRequestStatusAccepted, userID, userID).
		Count(&count).Error
	return count, err
}

func (r *gormFriendRequestRepository) CountPendingReceived(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("status = ? AND receiver_id = ?", models.FriendRequestStatusPending, userID).
		Count(&count).Error
	return count, err
}

func (r *gormFriendRequestRepository) ListAcceptedFor(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND (sender_id = ? OR receiver_id = ?)",
			models.FriendRequestStatusAccepted, userID, userID).
		Find(&requests).Error
	return requests, err
}

func (r *gormFriendRequestRepository) ListPendingReceived(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND receiver_id = ?", models.FriendRequestStatusPending, userID).
		Order("created_at").
		Find(&requests).Error
	return requests, err
}

// ListInvolving returns every request row between userID and any of the
// candidates, in one query, for search-result annotation.
func (r *gormFriendRequestRepository) ListInvolving(ctx context.Context, userID string, candidateIDs []string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if len(candidateIDs) == 0 {
		return requests, nil
	}
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id IN ?) OR (receiver_id = ? AND sender_id IN ?)",
			userID, candidateIDs, userID, candidateIDs).
		Find(&requests).Error
	return requests, err
}
