package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account in the system. The ID is an opaque UUID string;
// relationship rows reference it by value only.
type User struct {
	ID           string    `gorm:"type:uuid;primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(100)" json:"firstName,omitempty"`
	LastName     string    `gorm:"type:varchar(100)" json:"lastName,omitempty"`
	AvatarURL    string    `gorm:"type:varchar(255)" json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`

	// Letterboxd handle shown on the profile page, not part of the public
	// projection.
	LetterboxdUsername string `gorm:"type:varchar(100)" json:"letterboxdUsername,omitempty"`
}

// BeforeCreate assigns a UUID when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// UserPublicInfo holds the minimal public projection of a user, used wherever
// another user's profile is displayed (friend lists, attendees, search).
type UserPublicInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// UserSearchResult is a UserPublicInfo annotated with the viewer's
// relationship to the listed user. IsFollowing is filled by follow-flavored
// listings, FriendshipStatus by friend-flavored ones.
type UserSearchResult struct {
	UserPublicInfo
	IsFollowing      bool             `json:"isFollowing"`
	FriendshipStatus FriendshipStatus `json:"friendshipStatus,omitempty"`
}
