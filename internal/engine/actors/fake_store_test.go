package actors

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"vibelink/internal/models"
	"vibelink/internal/utils"

	"github.com/google/uuid"
)

// fakeStore is an in-memory database.Store for actor tests. Failure toggles
// let tests force individual operations to error.
type fakeStore struct {
	mu sync.Mutex

	users          map[uuid.UUID]*models.User
	projectMatches []*models.ProjectMatch
	directMatches  []*models.DirectMatch
	friendRequests map[uuid.UUID]*models.FriendRequest
	comments       map[uuid.UUID]*models.Comment
	likes          map[uuid.UUID]map[uuid.UUID]bool
	messages       []*models.ChatMessage

	failProjectMatches bool
	failDirectMatches  bool
	failLikedLookup    bool
	failInsertLike     bool
	failSaveComment    bool
	failSaveMessage    bool
	failUpdateRequest  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:          make(map[uuid.UUID]*models.User),
		friendRequests: make(map[uuid.UUID]*models.FriendRequest),
		comments:       make(map[uuid.UUID]*models.Comment),
		likes:          make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (f *fakeStore) addUser(username string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &models.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now(),
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeStore) Close(ctx context.Context) error { return nil }

func (f *fakeStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, utils.NewUserNotFoundError(id.String())
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
}

func (f *fakeStore) SaveUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) SearchUsersByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []*models.User
	for _, user := range f.users {
		if strings.HasPrefix(user.Username, prefix) {
			found = append(found, user)
		}
	}
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (f *fakeStore) GetProjectMatchesForUser(ctx context.Context, userID uuid.UUID) ([]*models.ProjectMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProjectMatches {
		return nil, errors.New("store unavailable")
	}
	var out []*models.ProjectMatch
	for _, match := range f.projectMatches {
		if match.CreatorID == userID || match.UserID == userID {
			out = append(out, match)
		}
	}
	return out, nil
}

func (f *fakeStore) GetDirectMatchesForUser(ctx context.Context, userID uuid.UUID) ([]*models.DirectMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDirectMatches {
		return nil, errors.New("store unavailable")
	}
	var out []*models.DirectMatch
	for _, match := range f.directMatches {
		if match.User1ID == userID || match.User2ID == userID {
			out = append(out, match)
		}
	}
	return out, nil
}

func (f *fakeStore) AreUsersMatched(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, match := range f.projectMatches {
		if (match.CreatorID == userA && match.UserID == userB) || (match.CreatorID == userB && match.UserID == userA) {
			return true, nil
		}
	}
	for _, match := range f.directMatches {
		if (match.User1ID == userA && match.User2ID == userB) || (match.User1ID == userB && match.User2ID == userA) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SaveFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *req
	f.friendRequests[req.ID] = &stored
	return nil
}

func (f *fakeStore) GetFriendRequest(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req, ok := f.friendRequests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, utils.NewAppError(utils.ErrNotFound, "Friend request not found", nil)
}

func (f *fakeStore) FindActiveRequestBetween(ctx context.Context, userA, userB uuid.UUID) (*models.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.friendRequests {
		if req.Status == models.FriendRequestRejected {
			continue
		}
		if (req.SenderID == userA && req.ReceiverID == userB) || (req.SenderID == userB && req.ReceiverID == userA) {
			copied := *req
			return &copied, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrNotFound, "No active request", nil)
}

func (f *fakeStore) UpdateFriendRequestStatus(ctx context.Context, id uuid.UUID, status models.FriendRequestStatus, respondedAt time.Time) (*models.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdateRequest {
		return nil, errors.New("store unavailable")
	}
	req, ok := f.friendRequests[id]
	if !ok || req.Status != models.FriendRequestPending {
		return nil, utils.NewAppError(utils.ErrNotFound, "Pending friend request not found", nil)
	}
	req.Status = status
	req.RespondedAt = &respondedAt
	copied := *req
	return &copied, nil
}

func (f *fakeStore) DeletePendingFriendRequest(ctx context.Context, id, senderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.friendRequests[id]
	if !ok || req.SenderID != senderID || req.Status != models.FriendRequestPending {
		return utils.NewAppError(utils.ErrNotFound, "Pending friend request not found", nil)
	}
	delete(f.friendRequests, id)
	return nil
}

func (f *fakeStore) GetFriendRequestsForUser(ctx context.Context, userID uuid.UUID) ([]*models.FriendRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.FriendRequest
	for _, req := range f.friendRequests {
		if req.Status != models.FriendRequestPending {
			continue
		}
		if req.SenderID == userID || req.ReceiverID == userID {
			copied := *req
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) SaveComment(ctx context.Context, comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaveComment {
		return errors.New("store unavailable")
	}
	stored := *comment
	stored.Replies = nil
	f.comments[comment.ID] = &stored
	if comment.ParentID != nil {
		if parent, ok := f.comments[*comment.ParentID]; ok {
			parent.ReplyCount++
		}
	}
	return nil
}

func (f *fakeStore) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if comment, ok := f.comments[id]; ok {
		copied := *comment
		return &copied, nil
	}
	return nil, utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
}

func (f *fakeStore) DeleteComment(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeStore) GetTopLevelComments(ctx context.Context, contentID uuid.UUID) ([]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Comment
	for _, comment := range f.comments {
		if comment.ContentID == contentID && comment.ParentID == nil {
			copied := *comment
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetReplies(ctx context.Context, parentID uuid.UUID) ([]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Comment
	for _, comment := range f.comments {
		if comment.ParentID != nil && *comment.ParentID == parentID {
			copied := *comment
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetLikedCommentIDs(ctx context.Context, userID uuid.UUID, commentIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLikedLookup {
		return nil, errors.New("store unavailable")
	}
	liked := make(map[uuid.UUID]bool)
	for _, id := range commentIDs {
		if f.likes[id][userID] {
			liked[id] = true
		}
	}
	return liked, nil
}

func (f *fakeStore) InsertCommentLike(ctx context.Context, commentID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsertLike {
		return errors.New("store unavailable")
	}
	if f.likes[commentID][userID] {
		return utils.NewAppError(utils.ErrDuplicate, "Already liked", nil)
	}
	if f.likes[commentID] == nil {
		f.likes[commentID] = make(map[uuid.UUID]bool)
	}
	f.likes[commentID][userID] = true
	if comment, ok := f.comments[commentID]; ok {
		comment.LikeCount++
	}
	return nil
}

func (f *fakeStore) DeleteCommentLike(ctx context.Context, commentID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.likes[commentID][userID] {
		return utils.NewAppError(utils.ErrNotFound, "Like not found", nil)
	}
	delete(f.likes[commentID], userID)
	if comment, ok := f.comments[commentID]; ok && comment.LikeCount > 0 {
		comment.LikeCount--
	}
	return nil
}

func (f *fakeStore) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaveMessage {
		return errors.New("store unavailable")
	}
	stored := *msg
	f.messages = append(f.messages, &stored)
	return nil
}

func (f *fakeStore) GetChatMessages(ctx context.Context, chatID uuid.UUID) ([]*models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ChatMessage
	for _, msg := range f.messages {
		if msg.ChatID == chatID {
			copied := *msg
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) MarkChatMessageRead(ctx context.Context, msgID, readerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, msg := range f.messages {
		if msg.ID == msgID {
			msg.IsRead = true
			return nil
		}
	}
	return utils.NewAppError(utils.ErrNotFound, "Message not found", nil)
}
