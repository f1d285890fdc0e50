package actors

import (
	stdctx "context"
	"log"
	"strings"
	"time"

	"vibelink/internal/database"
	"vibelink/internal/models"
	"vibelink/internal/realtime"
	"vibelink/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for CommentActor
type (
	CreateCommentMsg struct {
		// CommentID is assigned by the sending side so an optimistic local
		// entry and its realtime echo share an identity. Nil means the
		// actor assigns one.
		CommentID uuid.UUID  `json:"commentId,omitempty"`
		ContentID uuid.UUID  `json:"contentId"`
		AuthorID  uuid.UUID  `json:"authorId"`
		ParentID  *uuid.UUID `json:"parentId,omitempty"`
		Content   string     `json:"content"`
		// Users the author explicitly picked from autocomplete; the only
		// candidates for mention extraction.
		SelectedMentions []*models.User `json:"-"`
	}

	DeleteCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		AuthorID  uuid.UUID `json:"authorId"`
	}

	GetCommentThreadMsg struct {
		ContentID uuid.UUID `json:"contentId"`
		ViewerID  uuid.UUID `json:"viewerId"`
	}

	ToggleCommentLikeMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		UserID    uuid.UUID `json:"userId"`
		Like      bool      `json:"like"`
	}
)

// CommentActor manages comment operations and thread assembly.
type CommentActor struct {
	store     database.Store
	hub       *realtime.Hub
	metrics   *utils.MetricsCollector
	userCache map[uuid.UUID]string // Simple cache for usernames
}

func NewCommentActor(store database.Store, hub *realtime.Hub, metrics *utils.MetricsCollector) actor.Actor {
	return &CommentActor{
		store:     store,
		hub:       hub,
		metrics:   metrics,
		userCache: make(map[uuid.UUID]string),
	}
}

func (a *CommentActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("CommentActor started with PID: %v", context.Self())

	case *CreateCommentMsg:
		a.handleCreateComment(context, msg)

	case *DeleteCommentMsg:
		a.handleDeleteComment(context, msg)

	case *GetCommentThreadMsg:
		a.handleGetCommentThread(context, msg)

	case *ToggleCommentLikeMsg:
		a.handleToggleCommentLike(context, msg)
	}
}

// Helper function to get username, using cache first
func (a *CommentActor) getUsername(ctx stdctx.Context, userID uuid.UUID) string {
	if username, ok := a.userCache[userID]; ok {
		return username
	}

	user, err := a.store.GetUser(ctx, userID)
	if err != nil {
		log.Printf("Error fetching user %s for username: %v", userID, err)
		return "[unknown]"
	}

	a.userCache[userID] = user.Username
	return user.Username
}

func (a *CommentActor) populateUsernames(ctx stdctx.Context, comments []*models.Comment) {
	for _, comment := range comments {
		if comment.AuthorUsername == "" {
			comment.AuthorUsername = a.getUsername(ctx, comment.UserID)
		}
		for _, reply := range comment.Replies {
			if reply.AuthorUsername == "" {
				reply.AuthorUsername = a.getUsername(ctx, reply.UserID)
			}
		}
	}
}

func (a *CommentActor) handleCreateComment(context actor.Context, msg *CreateCommentMsg) {
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Content) == "" {
		context.Respond(utils.NewValidationError("comment content is empty"))
		return
	}

	if msg.ParentID != nil {
		parent, err := a.store.GetComment(ctx, *msg.ParentID)
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrNotFound) {
				context.Respond(utils.NewAppError(utils.ErrNotFound, "Parent comment not found", nil))
			} else {
				context.Respond(utils.NewAppError(utils.ErrStore, "Failed to fetch parent comment", err))
			}
			return
		}
		// Threads are two levels deep; a reply always hangs off the
		// top-level comment.
		if parent.ParentID != nil {
			context.Respond(utils.NewValidationError("replies to replies are not supported"))
			return
		}
	}

	commentID := msg.CommentID
	if commentID == uuid.Nil {
		commentID = uuid.New()
	}

	newComment := &models.Comment{
		ID:             commentID,
		ContentID:      msg.ContentID,
		UserID:         msg.AuthorID,
		ParentID:       msg.ParentID,
		Content:        msg.Content,
		MentionedUsers: ExtractMentions(msg.Content, msg.SelectedMentions),
		CreatedAt:      time.Now(),
	}

	if err := a.store.SaveComment(ctx, newComment); err != nil {
		log.Printf("Error saving comment: %v", err)
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to save comment", err))
		return
	}

	newComment.AuthorUsername = a.getUsername(ctx, msg.AuthorID)

	a.hub.Publish(realtime.Event{
		Type:   realtime.EventInsert,
		Entity: realtime.EntityComments,
		Row:    newComment,
	})
	context.Respond(newComment)
}

func (a *CommentActor) handleDeleteComment(context actor.Context, msg *DeleteCommentMsg) {
	ctx := stdctx.Background()

	comment, err := a.store.GetComment(ctx, msg.CommentID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(utils.NewAppError(utils.ErrNotFound, "Comment not found", nil))
			return
		}
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to fetch comment", err))
		return
	}

	// Only the author may delete their comment.
	if comment.UserID != msg.AuthorID {
		context.Respond(utils.NewAppError(utils.ErrUnauthorized, "Not authorized to delete this comment", nil))
		return
	}

	if err := a.store.DeleteComment(ctx, msg.CommentID); err != nil {
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to delete comment", err))
		return
	}

	a.hub.Publish(realtime.Event{
		Type:   realtime.EventDelete,
		Entity: realtime.EntityComments,
		Row:    comment,
	})
	context.Respond(&models.StatusResponse{Success: true, Message: "Comment deleted"})
}

// handleGetCommentThread assembles the two-level thread for a content item
// and annotates it with the viewer's like state.
func (a *CommentActor) handleGetCommentThread(context actor.Context, msg *GetCommentThreadMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	thread, err := AssembleThread(ctx, a.store, msg.ContentID, msg.ViewerID)
	if err != nil {
		log.Printf("Error assembling thread for content %s: %v", msg.ContentID, err)
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to fetch comments", err))
		return
	}

	a.populateUsernames(ctx, thread)

	a.metrics.AddOperationLatency("assemble_thread", time.Since(startTime))
	context.Respond(thread)
}

// handleToggleCommentLike applies a like or unlike. Both directions are
// idempotent: liking an already-liked comment and unliking a comment with
// no like row are successful no-ops, so concurrent toggles reconcile
// instead of failing.
func (a *CommentActor) handleToggleCommentLike(context actor.Context, msg *ToggleCommentLikeMsg) {
	ctx := stdctx.Background()

	if msg.Like {
		err := a.store.InsertCommentLike(ctx, msg.CommentID, msg.UserID)
		if err != nil && !utils.IsErrorCode(err, utils.ErrDuplicate) {
			log.Printf("Error liking comment %s by user %s: %v", msg.CommentID, msg.UserID, err)
			context.Respond(utils.NewAppError(utils.ErrStore, "Failed to like comment", err))
			return
		}
	} else {
		err := a.store.DeleteCommentLike(ctx, msg.CommentID, msg.UserID)
		if err != nil && !utils.IsErrorCode(err, utils.ErrNotFound) {
			log.Printf("Error unliking comment %s by user %s: %v", msg.CommentID, msg.UserID, err)
			context.Respond(utils.NewAppError(utils.ErrStore, "Failed to unlike comment", err))
			return
		}
	}

	context.Respond(&models.StatusResponse{Success: true})
}

// AssembleThread builds the two-level comment tree for a content item:
// top-level comments oldest first, each carrying its direct replies oldest
// first. The viewer's likes are resolved in one batched query over the
// whole id set; if that query fails the tree is returned without
// annotations rather than failing the fetch.
func AssembleThread(ctx stdctx.Context, store database.Store, contentID, viewerID uuid.UUID) ([]*models.Comment, error) {
	topLevel, err := store.GetTopLevelComments(ctx, contentID)
	if err != nil {
		return nil, err
	}

	commentIDs := make([]uuid.UUID, 0, len(topLevel))
	for _, comment := range topLevel {
		commentIDs = append(commentIDs, comment.ID)

		replies, err := store.GetReplies(ctx, comment.ID)
		if err != nil {
			return nil, err
		}
		comment.Replies = replies
		for _, reply := range replies {
			// A reply never carries nested replies of its own.
			reply.Replies = nil
			commentIDs = append(commentIDs, reply.ID)
		}
	}

	if viewerID == uuid.Nil || len(commentIDs) == 0 {
		return topLevel, nil
	}

	liked, err := store.GetLikedCommentIDs(ctx, viewerID, commentIDs)
	if err != nil {
		log.Printf("Like lookup failed for content %s, returning thread without annotations: %v", contentID, err)
		return topLevel, nil
	}

	for _, comment := range topLevel {
		comment.UserHasLiked = liked[comment.ID]
		for _, reply := range comment.Replies {
			reply.UserHasLiked = liked[reply.ID]
		}
	}
	return topLevel, nil
}
