package services

import (
	"context"
	"errors"
	"fmt"

	"movienight-go/internal/storage"
)

// ErrNotFriends is the authorization denial of the visibility guard. It is
// distinct from the not-found errors so handlers can answer 403 rather
// than 404.
var ErrNotFriends = errors.New("must be friends to access this resource")

// VisibilityService is the authorization decision layer gating calendar and
// event access. Pure composition over current friendship state, no state of
// its own and no caching.
type VisibilityService interface {
	CanViewCalendar(ctx context.Context, viewerID, ownerID string) (bool, error)
	CanViewEvent(ctx context.Context, viewerID, ownerID string) (bool, error)
	CanAttend(ctx context.Context, viewerID, ownerID string) (bool, error)
}

type visibilityService struct {
	friendRepo storage.FriendRequestRepository
}

// NewVisibilityService creates a new VisibilityService instance.
func NewVisibilityService(friendRepo storage.FriendRequestRepository) VisibilityService {
	return &visibilityService{friendRepo: friendRepo}
}

// CanViewCalendar permits the owner, otherwise requires friendship.
func (s *visibilityService) CanViewCalendar(ctx context.Context, viewerID, ownerID string) (bool, error) {
	return s.ownerOrFriend(ctx, viewerID, ownerID)
}

// CanViewEvent applies the same rule as CanViewCalendar against the event owner.
func (s *visibilityService) CanViewEvent(ctx context.Context, viewerID, ownerID string) (bool, error) {
	return s.ownerOrFriend(ctx, viewerID, ownerID)
}

// CanAttend applies the same rule as CanViewEvent: owning your own event
// always permits, otherwise the viewer must be friends with the owner.
func (s *visibilityService) CanAttend(ctx context.Context, viewerID, ownerID string) (bool, error) {
	return s.ownerOrFriend(ctx, viewerID, ownerID)
}

func (s *visibilityService) ownerOrFriend(ctx context.Context, viewerID, ownerID string) (bool, error) {
	if viewerID == ownerID {
		return true, nil
	}
	accepted, err := s.friendRepo.FindAccepted(ctx, viewerID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return accepted != nil, nil
}
