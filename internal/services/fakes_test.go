package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"movienight-go/internal/models"
)

// In-memory repository fakes. They mimic the storage semantics the services
// rely on: unique pair indexes surface gorm.ErrDuplicatedKey, scoped lookups
// surface gorm.ErrRecordNotFound, deletes report whether a row existed.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, user.ID)
	return nil
}

func (r *fakeUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) Search(ctx context.Context, query string, excludeID string, limit int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	term := strings.ToLower(query)
	var results []models.User
	for _, u := range r.users {
		if u.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Email), term) ||
			strings.Contains(strings.ToLower(u.FirstName), term) ||
			strings.Contains(strings.ToLower(u.LastName), term) {
			results = append(results, *u)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (r *fakeUserRepo) GetPublicInfoByID(ctx context.Context, id string) (*models.UserPublicInfo, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return publicInfo(u), nil
}

func (r *fakeUserRepo) GetPublicInfoByIDs(ctx context.Context, ids []string) ([]*models.UserPublicInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var infos []*models.UserPublicInfo
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			infos = append(infos, publicInfo(u))
		}
	}
	return infos, nil
}

func publicInfo(u *models.User) *models.UserPublicInfo {
	return &models.UserPublicInfo{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
	}
}

type fakeFollowRepo struct {
	mu     sync.Mutex
	edges  []models.Follow
	nextID uint
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{nextID: 1}
}

func (r *fakeFollowRepo) Create(ctx context.Context, follow *models.Follow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.FollowerID == follow.FollowerID && e.FollowingID == follow.FollowingID {
			return gorm.ErrDuplicatedKey
		}
	}
	follow.ID = r.nextID
	follow.CreatedAt = time.Now()
	r.nextID++
	r.edges = append(r.edges, *follow)
	return nil
}

func (r *fakeFollowRepo) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFollowRepo) DeleteAllInvolving(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.edges[:0]
	for _, e := range r.edges {
		if e.FollowerID != userID && e.FollowingID != userID {
			kept = append(kept, e)
		}
	}
	r.edges = kept
	return nil
}

func (r *fakeFollowRepo) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.FollowerID == followerID && e.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFollowRepo) CountFollowers(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.edges {
		if e.FollowingID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFollowRepo) CountFollowing(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.edges {
		if e.FollowerID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFollowRepo) ListFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, e := range r.edges {
		if e.FollowingID == userID {
			ids = append(ids, e.FollowerID)
		}
	}
	return ids, nil
}

func (r *fakeFollowRepo) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, e := range r.edges {
		if e.FollowerID == userID {
			ids = append(ids, e.FollowingID)
		}
	}
	return ids, nil
}

func (r *fakeFollowRepo) FollowingIDsAmong(ctx context.Context, followerID string, candidateIDs []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidates := make(map[string]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		candidates[id] = true
	}
	var ids []string
	for _, e := range r.edges {
		if e.FollowerID == followerID && candidates[e.FollowingID] {
			ids = append(ids, e.FollowingID)
		}
	}
	return ids, nil
}

type fakeFriendRequestRepo struct {
	mu       sync.Mutex
	requests []models.FriendRequest
	nextID   uint
}

func newFakeFriendRequestRepo() *fakeFriendRequestRepo {
	return &fakeFriendRequestRepo{nextID: 1}
}

func (r *fakeFriendRequestRepo) Create(ctx context.Context, request *models.FriendRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// The unique index covers the exact (sender, receiver) direction only.
	for _, fr := range r.requests {
		if fr.SenderID == request.SenderID && fr.ReceiverID == request.ReceiverID {
			return gorm.ErrDuplicatedKey
		}
	}
	request.ID = r.nextID
	request.CreatedAt = time.Now()
	r.nextID++
	r.requests = append(r.requests, *request)
	return nil
}

func (r *fakeFriendRequestRepo) FindBetween(ctx context.Context, userID1, userID2 string) (*models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.requests {
		fr := r.requests[i]
		if (fr.SenderID == userID1 && fr.ReceiverID == userID2) ||
			(fr.SenderID == userID2 && fr.ReceiverID == userID1) {
			return &fr, nil
		}
	}
	return nil, nil
}

func (r *fakeFriendRequestRepo) FindAccepted(ctx context.Context, userID1, userID2 string) (*models.FriendRequest, error) {
	fr, err := r.FindBetween(ctx, userID1, userID2)
	if err != nil || fr == nil {
		return nil, err
	}
	if fr.Status != models.FriendRequestStatusAccepted {
		return nil, nil
	}
	return fr, nil
}

func (r *fakeFriendRequestRepo) FindPendingFrom(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.requests {
		fr := r.requests[i]
		if fr.SenderID == senderID && fr.ReceiverID == receiverID && fr.Status == models.FriendRequestStatusPending {
			return &fr, nil
		}
	}
	return nil, nil
}

func (r *fakeFriendRequestRepo) GetByIDForReceiver(ctx context.Context, requestID uint, receiverID string) (*models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.requests {
		fr := r.requests[i]
		if fr.ID == requestID && fr.ReceiverID == receiverID {
			return &fr, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFriendRequestRepo) MarkAccepted(ctx context.Context, requestID uint, acceptedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.requests {
		if r.requests[i].ID == requestID {
			r.requests[i].Status = models.FriendRequestStatusAccepted
			r.requests[i].AcceptedAt = &acceptedAt
			return nil
		}
	}
	return nil
}

func (r *fakeFriendRequestRepo) MarkRejected(ctx context.Context, requestID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.requests {
		if r.requests[i].ID == requestID {
			r.requests[i].Status = models.FriendRequestStatusRejected
			return nil
		}
	}
	return nil
}

func (r *fakeFriendRequestRepo) DeleteByID(ctx context.Context, requestID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.requests {
		if r.requests[i].ID == requestID {
			r.requests = append(r.requests[:i], r.requests[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeFriendRequestRepo) DeleteAllInvolving(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.requests[:0]
	for _, fr := range r.requests {
		if fr.SenderID != userID && fr.ReceiverID != userID {
			kept = append(kept, fr)
		}
	}
	r.requests = kept
	return nil
}

func (r *fakeFriendRequestRepo) CountAcceptedFor(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, fr := range r.requests {
		if fr.Status == models.FriendRequestStatusAccepted && (fr.SenderID == userID || fr.ReceiverID == userID) {
			count++
		}
	}
	return count, nil
}

func (r *fakeFriendRequestRepo) CountPendingReceived(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, fr := range r.requests {
		if fr.Status == models.FriendRequestStatusPending && fr.ReceiverID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFriendRequestRepo) ListAcceptedFor(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var results []models.FriendRequest
	for _, fr := range r.requests {
		if fr.Status == models.FriendRequestStatusAccepted && (fr.SenderID == userID || fr.ReceiverID == userID) {
			results = append(results, fr)
		}
	}
	return results, nil
}

func (r *fakeFriendRequestRepo) ListPendingReceived(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var results []models.FriendRequest
	for _, fr := range r.requests {
		if fr.Status == models.FriendRequestStatusPending && fr.ReceiverID == userID {
			results = append(results, fr)
		}
	}
	return results, nil
}

func (r *fakeFriendRequestRepo) ListInvolving(ctx context.Context, userID string, candidateIDs []string) ([]models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidates := make(map[string]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		candidates[id] = true
	}
	var results []models.FriendRequest
	for _, fr := range r.requests {
		if (fr.SenderID == userID && candidates[fr.ReceiverID]) ||
			(fr.ReceiverID == userID && candidates[fr.SenderID]) {
			results = append(results, fr)
		}
	}
	return results, nil
}

type fakeAttendanceRepo struct {
	mu        sync.Mutex
	attendees []models.MovieNightAttendee
	nextID    uint
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{nextID: 1}
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, attendee *models.MovieNightAttendee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.MovieNightID == attendee.MovieNightID && a.UserID == attendee.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	attendee.ID = r.nextID
	// Strictly increasing stamps so RSVP ordering is deterministic.
	attendee.RsvpedAt = time.Unix(int64(r.nextID), 0)
	r.nextID++
	r.attendees = append(r.attendees, *attendee)
	return nil
}

func (r *fakeAttendanceRepo) Delete(ctx context.Context, movieNightID uint, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.attendees {
		if a.MovieNightID == movieNightID && a.UserID == userID {
			r.attendees = append(r.attendees[:i], r.attendees[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttendanceRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.attendees[:0]
	for _, a := range r.attendees {
		if a.UserID != userID {
			kept = append(kept, a)
		}
	}
	r.attendees = kept
	return nil
}

func (r *fakeAttendanceRepo) Exists(ctx context.Context, movieNightID uint, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.MovieNightID == movieNightID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttendanceRepo) ListByMovieNight(ctx context.Context, movieNightID uint) ([]models.MovieNightAttendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var results []models.MovieNightAttendee
	for _, a := range r.attendees {
		if a.MovieNightID == movieNightID {
			results = append(results, a)
		}
	}
	return results, nil
}

type fakeMovieNightRepo struct {
	mu     sync.Mutex
	nights map[uint]*models.MovieNight
	nextID uint
}

func newFakeMovieNightRepo() *fakeMovieNightRepo {
	return &fakeMovieNightRepo{nights: make(map[uint]*models.MovieNight), nextID: 1}
}

func (r *fakeMovieNightRepo) Create(ctx context.Context, night *models.MovieNight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	night.ID = r.nextID
	night.CreatedAt = time.Now()
	r.nextID++
	copied := *night
	r.nights[night.ID] = &copied
	return nil
}

func (r *fakeMovieNightRepo) GetByID(ctx context.Context, id uint) (*models.MovieNight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nights[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *n
	return &copied, nil
}

func (r *fakeMovieNightRepo) GetByIDForOwner(ctx context.Context, id uint, ownerID string) (*models.MovieNight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nights[id]
	if !ok || n.UserID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *n
	return &copied, nil
}

func (r *fakeMovieNightRepo) GetOwnerID(ctx context.Context, id uint) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nights[id]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return n.UserID, nil
}

func (r *fakeMovieNightRepo) Update(ctx context.Context, night *models.MovieNight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *night
	r.nights[night.ID] = &copied
	return nil
}

func (r *fakeMovieNightRepo) Delete(ctx context.Context, night *models.MovieNight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nights, night.ID)
	return nil
}

func (r *fakeMovieNightRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.nights {
		if n.UserID == ownerID {
			delete(r.nights, id)
		}
	}
	return nil
}

func (r *fakeMovieNightRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.MovieNight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var results []models.MovieNight
	for id := uint(1); id < r.nextID; id++ {
		if n, ok := r.nights[id]; ok && n.UserID == ownerID {
			results = append(results, *n)
		}
	}
	return results, nil
}

func (r *fakeMovieNightRepo) ListUpcoming(ctx context.Context, ownerID string, from time.Time) ([]models.MovieNight, error) {
	all, _ := r.ListByOwner(ctx, ownerID)
	var results []models.MovieNight
	for _, n := range all {
		if !n.ScheduledDate.Before(from) {
			results = append(results, n)
		}
	}
	return results, nil
}

func (r *fakeMovieNightRepo) ListPast(ctx context.Context, ownerID string, before time.Time) ([]models.MovieNight, error) {
	all, _ := r.ListByOwner(ctx, ownerID)
	var results []models.MovieNight
	for _, n := range all {
		if n.ScheduledDate.Before(before) {
			results = append(results, n)
		}
	}
	return results, nil
}

func (r *fakeMovieNightRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	all, _ := r.ListByOwner(ctx, ownerID)
	return int64(len(all)), nil
}

func (r *fakeMovieNightRepo) CountUpcoming(ctx context.Context, ownerID string, from time.Time) (int64, error) {
	upcoming, _ := r.ListUpcoming(ctx, ownerID, from)
	return int64(len(upcoming)), nil
}

// fakeProducer records published messages.
type fakeProducer struct {
	mu       sync.Mutex
	messages []fakeMessage
}

type fakeMessage struct {
	topic   string
	key     []byte
	payload []byte
}

func (p *fakeProducer) SendMessage(ctx context.Context, topic string, key []byte, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, fakeMessage{topic: topic, key: key, payload: payload})
	return nil
}

func (p *fakeProducer) Close() {}

func testUser(id, email string) *models.User {
	return &models.User{ID: id, Email: email, CreatedAt: time.Now()}
}
