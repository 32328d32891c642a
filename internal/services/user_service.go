package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"movienight-go/internal/auth"
	"movienight-go/internal/models"
	"movienight-go/internal/storage"
)

var ErrEmailTaken = errors.New("email is already taken")

// UserProfile is the authenticated user's own profile view with the
// aggregate counters shown on the profile page.
type UserProfile struct {
	Email               string    `json:"email"`
	FirstName           string    `json:"firstName,omitempty"`
	LastName            string    `json:"lastName,omitempty"`
	AvatarURL           string    `json:"avatarUrl,omitempty"`
	LetterboxdUsername  string    `json:"letterboxdUsername,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	TotalMovieNights    int64     `json:"totalMovieNights"`
	UpcomingMovieNights int64     `json:"upcomingMovieNights"`
	FollowersCount      int64     `json:"followersCount"`
	FollowingCount      int64     `json:"followingCount"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Email              string `json:"email"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	AvatarURL          string `json:"avatarUrl"`
	LetterboxdUsername string `json:"letterboxdUsername"`
}

// UserService serves the user's own profile and account lifecycle.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID string) error
}

type userService struct {
	userRepo       storage.UserRepository
	movieNightRepo storage.MovieNightRepository
	followRepo     storage.FollowRepository
	friendRepo     storage.FriendRequestRepository
	attendanceRepo storage.AttendanceRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(
	userRepo storage.UserRepository,
	movieNightRepo storage.MovieNightRepository,
	followRepo storage.FollowRepository,
	friendRepo storage.FriendRequestRepository,
	attendanceRepo storage.AttendanceRepository,
) UserService {
	return &userService{
		userRepo:       userRepo,
		movieNightRepo: movieNightRepo,
		followRepo:     followRepo,
		friendRepo:     friendRepo,
		attendanceRepo: attendanceRepo,
	}
}

// GetProfile returns the user's profile with movie night and follow counters.
func (s *userService) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.movieNightRepo.CountByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count movie nights: %w", err)
	}
	upcoming, err := s.movieNightRepo.CountUpcoming(ctx, userID, today())
	if err != nil {
		return nil, fmt.Errorf("failed to count upcoming movie nights: %w", err)
	}
	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}
	following, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count following: %w", err)
	}

	return &UserProfile{
		Email:               user.Email,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		AvatarURL:           user.AvatarURL,
		LetterboxdUsername:  user.LetterboxdUsername,
		CreatedAt:           user.CreatedAt,
		TotalMovieNights:    total,
		UpcomingMovieNights: upcoming,
		FollowersCount:      followers,
		FollowingCount:      following,
	}, nil
}

// UpdateProfile updates the editable fields. Changing the email requires it
// not to be taken by another account.
func (s *userService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if update.Email != "" && update.Email != user.Email {
		other, err := s.userRepo.GetByEmail(ctx, update.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if other != nil && other.ID != userID {
			return ErrEmailTaken
		}
		user.Email = update.Email
	}
	user.FirstName = update.FirstName
	user.LastName = update.LastName
	user.AvatarURL = update.AvatarURL
	user.LetterboxdUsername = update.LetterboxdUsername

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *userService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// DeleteAccount removes the user and everything hanging off them: their movie
// nights, their RSVPs, and every follow edge and friend request row touching
// them. The OnDelete:CASCADE constraints cover the same ground at the
// database level; the explicit deletes keep the behavior observable through
// the repositories.
func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.movieNightRepo.DeleteByOwner(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete movie nights: %w", err)
	}
	if err := s.attendanceRepo.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete RSVPs: %w", err)
	}
	if err := s.followRepo.DeleteAllInvolving(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete follow edges: %w", err)
	}
	if err := s.friendRepo.DeleteAllInvolving(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete friend requests: %w", err)
	}
	if err := s.userRepo.Delete(ctx, user); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	return nil
}

func (s *userService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return user, nil
}
