package models

import "time"

// FriendRequestStatus is the stored state of a friend request row.
type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

// FriendshipStatus is the derived relationship between a viewer and another
// user, computed from the current friend request row (or its absence).
type FriendshipStatus string

const (
	FriendshipNone            FriendshipStatus = "none"
	FriendshipPendingSent     FriendshipStatus = "pending_sent"
	FriendshipPendingReceived FriendshipStatus = "pending_received"
	FriendshipFriends         FriendshipStatus = "friends"
)

// FriendRequest is a relationship proposal from SenderID to ReceiverID.
// Lifecycle: created pending, then accepted or rejected exactly once, or
// deleted outright (cancel while pending, unfriend while accepted). Absence
// of a row means no relationship; rejected rows are retained.
type FriendRequest struct {
	BaseModel
	SenderID   string              `gorm:"type:uuid;not null;uniqueIndex:idx_friend_requests_pair" json:"senderId"`
	ReceiverID string              `gorm:"type:uuid;not null;uniqueIndex:idx_friend_requests_pair" json:"receiverId"`
	Status     FriendRequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AcceptedAt *time.Time          `json:"acceptedAt,omitempty"`

	Sender   User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the FriendRequest model.
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Other returns the counterpart user id of the request relative to userID.
func (fr *FriendRequest) Other(userID string) string {
	if fr.SenderID == userID {
		return fr.ReceiverID
	}
	return fr.SenderID
}

// StatusRelativeTo derives the FriendshipStatus of this row as seen by viewerID.
func (fr *FriendRequest) StatusRelativeTo(viewerID string) FriendshipStatus {
	switch fr.Status {
	case FriendRequestStatusAccepted:
		return FriendshipFriends
	case FriendRequestStatusPending:
		if fr.SenderID == viewerID {
			return FriendshipPendingSent
		}
		return FriendshipPendingReceived
	}
	// A rejected row reads as no relationship, but it still occupies the
	// unique pair index (see FriendService.SendRequest).
	return FriendshipNone
}

// PendingFriendRequest is the listing projection for a received pending
// request, carrying the sender's public profile.
type PendingFriendRequest struct {
	ID         uint            `json:"id"`
	SenderID   string          `json:"senderId"`
	ReceiverID string          `json:"receiverId"`
	CreatedAt  time.Time       `json:"createdAt"`
	Sender     *UserPublicInfo `json:"sender"`
}

// FriendStats carries the aggregate friendship counters for one user.
type FriendStats struct {
	FriendsCount         int64 `json:"friendsCount"`
	PendingRequestsCount int64 `json:"pendingRequestsCount"`
}
