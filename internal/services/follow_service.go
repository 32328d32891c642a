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
	ErrCannotFollowSelf  = errors.New("cannot follow yourself")
	ErrFollowUserMissing = errors.New("user to follow does not exist")
	ErrAlreadyFollowing  = errors.New("already following this user")
	ErrNotFollowing      = errors.New("not following this user")
)

const searchResultLimit = 10

// FollowService manages the directed follow graph.
type FollowService interface {
	Follow(ctx context.Context, followerID, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
	Stats(ctx context.Context, userID string) (*models.FollowStats, error)
	Search(ctx context.Context, viewerID, query string) ([]models.UserSearchResult, error)
	ListFollowers(ctx context.Context, userID string) ([]models.UserSearchResult, error)
	ListFollowing(ctx context.Context, userID string) ([]models.UserSearchResult, error)
}

type followService struct {
	userRepo   storage.UserRepository
	followRepo storage.FollowRepository
}

// NewFollowService creates a new FollowService instance.
func NewFollowService(userRepo storage.UserRepository, followRepo storage.FollowRepository) FollowService {
	return &followService{userRepo: userRepo, followRepo: followRepo}
}

// Follow creates the edge followerID -> targetID. A second call for the same
// pair fails with ErrAlreadyFollowing; it does not no-op. The existence check
// gives the clean error, the unique pair index catches the race.
func (s *followService) Follow(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return ErrCannotFollowSelf
	}

	exists, err := s.userRepo.ExistsByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to check user %s: %w", targetID, err)
	}
	if !exists {
		return ErrFollowUserMissing
	}

	following, err := s.followRepo.Exists(ctx, followerID, targetID)
	if err != nil {
		return fmt.Errorf("failed to check existing follow: %w", err)
	}
	if following {
		return ErrAlreadyFollowing
	}

	follow := &models.Follow{FollowerID: followerID, FollowingID: targetID}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent identical follow.
			return ErrAlreadyFollowing
		}
		return fmt.Errorf("failed to create follow edge: %w", err)
	}
	return nil
}

// Unfollow removes the edge followerID -> targetID.
func (s *followService) Unfollow(ctx context.Context, followerID, targetID string) error {
	deleted, err := s.followRepo.Delete(ctx, followerID, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete follow edge: %w", err)
	}
	if !deleted {
		return ErrNotFollowing
	}
	return nil
}

// Stats returns the follower and following counts for the user.
func (s *followService) Stats(ctx context.Context, userID string) (*models.FollowStats, error) {
	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}
	following, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count following: %w", err)
	}
	return &models.FollowStats{FollowersCount: followers, FollowingCount: following}, nil
}

// Search finds users matching the query and annotates each result with
// whether the viewer already follows them, resolved in one bulk query.
func (s *followService) Search(ctx context.Context, viewerID, query string) ([]models.UserSearchResult, error) {
	users, err := s.userRepo.Search(ctx, query, viewerID, searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	candidateIDs := make([]string, 0, len(users))
	for _, u := range users {
		candidateIDs = append(candidateIDs, u.ID)
	}
	followedIDs, err := s.followRepo.FollowingIDsAmong(ctx, viewerID, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve follow flags: %w", err)
	}
	followed := make(map[string]bool, len(followedIDs))
	for _, id := range followedIDs {
		followed[id] = true
	}

	results := make([]models.UserSearchResult, 0, len(users))
	for _, u := range users {
		results = append(results, models.UserSearchResult{
			UserPublicInfo: models.UserPublicInfo{
				ID:        u.ID,
				Email:     u.Email,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				AvatarURL: u.AvatarURL,
			},
			IsFollowing: followed[u.ID],
		})
	}
	return results, nil
}

// ListFollowers lists the users following userID, each annotated with
// whether userID follows them back.
func (s *followService) ListFollowers(ctx context.Context, userID string) ([]models.UserSearchResult, error) {
	followerIDs, err := s.followRepo.ListFollowerIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follower ids: %w", err)
	}
	followsBackIDs, err := s.followRepo.FollowingIDsAmong(ctx, userID, followerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve follow-back flags: %w", err)
	}
	followsBack := make(map[string]bool, len(followsBackIDs))
	for _, id := range followsBackIDs {
		followsBack[id] = true
	}

	return s.projectUsers(ctx, followerIDs, func(id string) bool { return followsBack[id] })
}

// ListFollowing lists the users userID follows; IsFollowing is trivially true.
func (s *followService) ListFollowing(ctx context.Context, userID string) ([]models.UserSearchResult, error) {
	followingIDs, err := s.followRepo.ListFollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following ids: %w", err)
	}
	return s.projectUsers(ctx, followingIDs, func(string) bool { return true })
}

// projectUsers resolves ids to public profiles, preserving the id order.
func (s *followService) projectUsers(ctx context.Context, ids []string, isFollowing func(string) bool) ([]models.UserSearchResult, error) {
	infos, err := s.userRepo.GetPublicInfoByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profiles: %w", err)
	}
	byID := make(map[string]*models.UserPublicInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}

	results := make([]models.UserSearchResult, 0, len(ids))
	for _, id := range ids {
		info, ok := byID[id]
		if !ok {
			log.Printf("follow list references missing user %s, skipping", id)
			continue
		}
		results = append(results, models.UserSearchResult{
			UserPublicInfo: *info,
			IsFollowing:    isFollowing(id),
		})
	}
	return results, nil
}
