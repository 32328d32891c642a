package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"movienight-go/internal/config"
	"movienight-go/internal/kafka"
	"movienight-go/internal/models"
	"movienight-go/internal/storage"
)

var (
	ErrFriendRequestSelf     = errors.New("cannot send a friend request to yourself")
	ErrFriendUserMissing     = errors.New("user does not exist")
	ErrAlreadyFriends        = errors.New("already friends")
	ErrRequestAlreadyPending = errors.New("friend request already pending")
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrRequestNotPending     = errors.New("friend request is not pending")
	ErrFriendshipNotFound    = errors.New("friendship not found")
)

// RelationshipEvent is the payload published to Kafka after a successful
// friend-request or RSVP mutation. Publishing is best effort and never fails
// the mutation itself.
type RelationshipEvent struct {
	Type       string    `json:"type"` // "friend_request_sent", "friend_request_accepted", "rsvp"
	ActorID    string    `json:"actorId"`
	SubjectID  string    `json:"subjectId"`
	ResourceID uint      `json:"resourceId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// publishRelationshipEvent sends the event to the relationship-events topic.
// A nil producer skips publishing; failures are logged and swallowed because
// the storage mutation already committed.
func publishRelationshipEvent(ctx context.Context, producer kafka.MessageProducer, topic string, event RelationshipEvent) {
	if producer == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal relationship event: %v", err)
		return
	}
	key := []byte(event.ActorID + "-" + event.SubjectID)
	if err := producer.SendMessage(ctx, topic, key, payload); err != nil {
		log.Printf("failed to publish relationship event %s: %v", event.Type, err)
	}
}

// FriendService drives the friend-request workflow and the friendship state
// derived from it.
type FriendService interface {
	SendRequest(ctx context.Context, senderID, receiverID string) error
	Accept(ctx context.Context, receiverID string, requestID uint) error
	Reject(ctx context.Context, receiverID string, requestID uint) error
	Cancel(ctx context.Context, senderID, receiverID string) error
	Unfriend(ctx context.Context, userID, otherID string) error
	StatusFor(ctx context.Context, viewerID, otherID string) (models.FriendshipStatus, error)
	Stats(ctx context.Context, userID string) (*models.FriendStats, error)
	ListFriends(ctx context.Context, userID string) ([]models.UserSearchResult, error)
	ListPendingReceived(ctx context.Context, userID string) ([]models.PendingFriendRequest, error)
	Search(ctx context.Context, viewerID, query string) ([]models.UserSearchResult, error)
}

type friendService struct {
	userRepo   storage.UserRepository
	friendRepo storage.FriendRequestRepository
	producer   kafka.MessageProducer
	kafkaCfg   config.KafkaConfig
}

// NewFriendService creates a new FriendService instance. producer may be nil;
// then no relationship events are emitted.
func NewFriendService(
	userRepo storage.UserRepository,
	friendRepo storage.FriendRequestRepository,
	producer kafka.MessageProducer,
	kafkaCfg config.KafkaConfig,
) FriendService {
	return &friendService{
		userRepo:   userRepo,
		friendRepo: friendRepo,
		producer:   producer,
		kafkaCfg:   kafkaCfg,
	}
}

// SendRequest creates a new pending request from senderID to receiverID.
//
// The lookup over the unordered pair is a read-then-write race: a reverse
// request can land between the check and the insert. The unique
// (sender_id, receiver_id) index is the backstop, and a duplicate-key error
// is reported as the pending conflict rather than a storage fault. A
// retained rejected row passes the check but still trips the index for the
// same direction, so re-requesting after rejection fails; that matches the
// current product behavior.
func (s *friendService) SendRequest(ctx context.Context, senderID, receiverID string) error {
	if senderID == receiverID {
		return ErrFriendRequestSelf
	}

	exists, err := s.userRepo.ExistsByID(ctx, receiverID)
	if err != nil {
		return fmt.Errorf("failed to check user %s: %w", receiverID, err)
	}
	if !exists {
		return ErrFriendUserMissing
	}

	existing, err := s.friendRepo.FindBetween(ctx, senderID, receiverID)
	if err != nil {
		return fmt.Errorf("failed to check existing friend request: %w", err)
	}
	if existing != nil {
		switch existing.Status {
		case models.FriendRequestStatusAccepted:
			return ErrAlreadyFriends
		case models.FriendRequestStatusPending:
			return ErrRequestAlreadyPending
		}
	}

	request := &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendRequestStatusPending,
	}
	if err := s.friendRepo.Create(ctx, request); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrRequestAlreadyPending
		}
		return fmt.Errorf("failed to create friend request: %w", err)
	}

	publishRelationshipEvent(ctx, s.producer, s.kafkaCfg.RelationshipEventsTopic, RelationshipEvent{
		Type:      "friend_request_sent",
		ActorID:   senderID,
		SubjectID: receiverID,
		Timestamp: time.Now(),
	})
	return nil
}

// Accept transitions the request to accepted and stamps acceptedAt. Only the
// receiver may accept; anyone else sees ErrFriendRequestNotFound, never the
// row.
func (s *friendService) Accept(ctx context.Context, receiverID string, requestID uint) error {
	request, err := s.getPendingForReceiver(ctx, requestID, receiverID)
	if err != nil {
		return err
	}

	if err := s.friendRepo.MarkAccepted(ctx, request.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to accept friend request %d: %w", request.ID, err)
	}

	publishRelationshipEvent(ctx, s.producer, s.kafkaCfg.RelationshipEventsTopic, RelationshipEvent{
		Type:      "friend_request_accepted",
		ActorID:   receiverID,
		SubjectID: request.SenderID,
		Timestamp: time.Now(),
	})
	return nil
}

// Reject transitions the request to rejected. The row is retained.
func (s *friendService) Reject(ctx context.Context, receiverID string, requestID uint) error {
	request, err := s.getPendingForReceiver(ctx, requestID, receiverID)
	if err != nil {
		return err
	}

	if err := s.friendRepo.MarkRejected(ctx, request.ID); err != nil {
		return fmt.Errorf("failed to reject friend request %d: %w", request.ID, err)
	}
	return nil
}

func (s *friendService) getPendingForReceiver(ctx context.Context, requestID uint, receiverID string) (*models.FriendRequest, error) {
	request, err := s.friendRepo.GetByIDForReceiver(ctx, requestID, receiverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFriendRequestNotFound
		}
		return nil, fmt.Errorf("failed to load friend request %d: %w", requestID, err)
	}
	if request.Status != models.FriendRequestStatusPending {
		return nil, ErrRequestNotPending
	}
	return request, nil
}

// Cancel deletes the sender's own pending request to receiverID. The exact
// direction is required; the sender cannot cancel a request addressed to them.
func (s *friendService) Cancel(ctx context.Context, senderID, receiverID string) error {
	request, err := s.friendRepo.FindPendingFrom(ctx, senderID, receiverID)
	if err != nil {
		return fmt.Errorf("failed to find pending friend request: %w", err)
	}
	if request == nil {
		return ErrFriendRequestNotFound
	}
	if err := s.friendRepo.DeleteByID(ctx, request.ID); err != nil {
		return fmt.Errorf("failed to delete friend request %d: %w", request.ID, err)
	}
	return nil
}

// Unfriend deletes the accepted row between the two users, in either
// direction. Friendship has no ex-friend memory; afterwards StatusFor
// reports none.
func (s *friendService) Unfriend(ctx context.Context, userID, otherID string) error {
	request, err := s.friendRepo.FindAccepted(ctx, userID, otherID)
	if err != nil {
		return fmt.Errorf("failed to find friendship: %w", err)
	}
	if request == nil {
		return ErrFriendshipNotFound
	}
	if err := s.friendRepo.DeleteByID(ctx, request.ID); err != nil {
		return fmt.Errorf("failed to delete friendship row %d: %w", request.ID, err)
	}
	return nil
}

// StatusFor derives the viewer-relative friendship status from the current
// row for the pair, or FriendshipNone when no row exists. Always computed
// fresh from storage, never cached.
func (s *friendService) StatusFor(ctx context.Context, viewerID, otherID string) (models.FriendshipStatus, error) {
	request, err := s.friendRepo.FindBetween(ctx, viewerID, otherID)
	if err != nil {
		return models.FriendshipNone, fmt.Errorf("failed to load friend request: %w", err)
	}
	if request == nil {
		return models.FriendshipNone, nil
	}
	return request.StatusRelativeTo(viewerID), nil
}

// Stats returns the friends count and the count of pending requests
// addressed to the user.
func (s *friendService) Stats(ctx context.Context, userID string) (*models.FriendStats, error) {
	friends, err := s.friendRepo.CountAcceptedFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count friends: %w", err)
	}
	pending, err := s.friendRepo.CountPendingReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return &models.FriendStats{FriendsCount: friends, PendingRequestsCount: pending}, nil
}

// ListFriends projects every accepted row touching userID to the other
// party's public profile.
func (s *friendService) ListFriends(ctx context.Context, userID string) ([]models.UserSearchResult, error) {
	accepted, err := s.friendRepo.ListAcceptedFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}

	friendIDs := make([]string, 0, len(accepted))
	for _, fr := range accepted {
		friendIDs = append(friendIDs, fr.Other(userID))
	}
	infos, err := s.userRepo.GetPublicInfoByIDs(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load friend profiles: %w", err)
	}
	byID := make(map[string]*models.UserPublicInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}

	results := make([]models.UserSearchResult, 0, len(friendIDs))
	for _, id := range friendIDs {
		info, ok := byID[id]
		if !ok {
			log.Printf("friendship references missing user %s, skipping", id)
			continue
		}
		results = append(results, models.UserSearchResult{
			UserPublicInfo:   *info,
			FriendshipStatus: models.FriendshipFriends,
		})
	}
	return results, nil
}

// ListPendingReceived lists pending requests addressed to userID, each with
// the sender's public profile.
func (s *friendService) ListPendingReceived(ctx context.Context, userID string) ([]models.PendingFriendRequest, error) {
	pending, err := s.friendRepo.ListPendingReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	results := make([]models.PendingFriendRequest, 0, len(pending))
	for _, req := range pending {
		sender, err := s.userRepo.GetPublicInfoByID(ctx, req.SenderID)
		if err != nil {
			log.Printf("failed to load sender %s for request %d: %v", req.SenderID, req.ID, err)
			continue
		}
		results = append(results, models.PendingFriendRequest{
			ID:         req.ID,
			SenderID:   req.SenderID,
			ReceiverID: req.ReceiverID,
			CreatedAt:  req.CreatedAt,
			Sender:     sender,
		})
	}
	return results, nil
}

// Search finds users matching the query and annotates each result with the
// viewer-relative friendship status, resolved in one bulk query.
func (s *friendService) Search(ctx context.Context, viewerID, query string) ([]models.UserSearchResult, error) {
	users, err := s.userRepo.Search(ctx, query, viewerID, searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	candidateIDs := make([]string, 0, len(users))
	for _, u := range users {
		candidateIDs = append(candidateIDs, u.ID)
	}
	requests, err := s.friendRepo.ListInvolving(ctx, viewerID, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve friendship statuses: %w", err)
	}
	statusByOther := make(map[string]models.FriendshipStatus, len(requests))
	for i := range requests {
		req := &requests[i]
		statusByOther[req.Other(viewerID)] = req.StatusRelativeTo(viewerID)
	}

	results := make([]models.UserSearchResult, 0, len(users))
	for _, u := range users {
		status, ok := statusByOther[u.ID]
		if !ok {
			status = models.FriendshipNone
		}
		results = append(results, models.UserSearchResult{
			UserPublicInfo: models.UserPublicInfo{
				ID:        u.ID,
				Email:     u.Email,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				AvatarURL: u.AvatarURL,
			},
			FriendshipStatus: status,
		})
	}
	return results, nil
}
