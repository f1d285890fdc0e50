package actors

import (
	stdctx "context"
	"strings"
	"time"

	"vibelink/internal/models"
	"vibelink/internal/realtime"
	"vibelink/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for ThreadSessionActor
type (
	RefreshThreadMsg struct{}

	ToggleLikeMsg struct {
		CommentID uuid.UUID `json:"commentId"`
	}

	PostCommentMsg struct {
		Content          string         `json:"content"`
		ParentID         *uuid.UUID     `json:"parentId,omitempty"`
		SelectedMentions []*models.User `json:"-"`
	}

	GetThreadSessionStateMsg struct{}

	threadFetchedMsg struct {
		comments []*models.Comment
		err      error
	}
)

// ThreadSessionState is the snapshot an open comment thread view renders.
type ThreadSessionState struct {
	Comments []*models.Comment `json:"comments"`
	Error    *utils.AppError   `json:"error,omitempty"`
}

// ThreadSessionActor owns the two-level comment tree of one open content
// view. Like toggles and comment posts are optimistic with rollback on a
// failed commit.
type ThreadSessionActor struct {
	viewerID   uuid.UUID
	contentID  uuid.UUID
	commentPID *actor.PID
	hub        *realtime.Hub
	out        func([]byte)
	timeout    time.Duration

	comments []*models.Comment
	pending  map[uuid.UUID]bool
	lastErr  *utils.AppError
	sub      *realtime.Subscription
}

func NewThreadSessionActor(viewerID, contentID uuid.UUID, commentPID *actor.PID, hub *realtime.Hub, out func([]byte)) actor.Actor {
	return &ThreadSessionActor{
		viewerID:   viewerID,
		contentID:  contentID,
		commentPID: commentPID,
		hub:        hub,
		out:        out,
		timeout:    5 * time.Second,
		pending:    make(map[uuid.UUID]bool),
	}
}

func (a *ThreadSessionActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		self := context.Self()
		root := context.ActorSystem().Root
		a.sub = a.hub.Subscribe(
			realtime.EntityComments,
			[]realtime.EventType{realtime.EventInsert, realtime.EventDelete},
			a.commentFilter,
			func(evt realtime.Event) { root.Send(self, &realtimeEventMsg{event: evt}) },
		)
		context.Send(self, &RefreshThreadMsg{})

	case *actor.Stopping:
		if a.sub != nil {
			a.sub.Unsubscribe()
			a.sub = nil
		}

	case *RefreshThreadMsg:
		a.startFetch(context)

	case *threadFetchedMsg:
		a.handleFetched(msg)

	case *ToggleLikeMsg:
		a.handleToggleLike(context, msg)

	case *PostCommentMsg:
		a.handlePostComment(context, msg)

	case *commandDoneMsg:
		if appErr := finishCommand(msg); appErr != nil {
			a.lastErr = appErr
			pushUpdate(a.out, "error", appErr.Message)
		}

	case *realtimeEventMsg:
		a.handleEvent(context, msg.event)

	case *GetThreadSessionStateMsg:
		context.Respond(a.snapshot())
	}
}

func (a *ThreadSessionActor) commentFilter(evt realtime.Event) bool {
	comment, ok := evt.Row.(*models.Comment)
	if !ok {
		return false
	}
	return comment.ContentID == a.contentID
}

func (a *ThreadSessionActor) startFetch(context actor.Context) {
	self := context.Self()
	root := context.ActorSystem().Root
	commentPID := a.commentPID
	contentID := a.contentID
	viewerID := a.viewerID
	timeout := a.timeout

	go func() {
		result, err := requestResult(root, commentPID, &GetCommentThreadMsg{
			ContentID: contentID,
			ViewerID:  viewerID,
		}, timeout)
		if err != nil {
			root.Send(self, &threadFetchedMsg{err: err})
			return
		}
		comments, _ := result.([]*models.Comment)
		root.Send(self, &threadFetchedMsg{comments: comments})
	}()
}

// handleFetched installs a completed thread fetch; overlapping fetches are
// not sequenced, the last to complete wins.
func (a *ThreadSessionActor) handleFetched(msg *threadFetchedMsg) {
	if msg.err != nil {
		a.comments = nil
		a.lastErr = toAppError(msg.err)
		pushUpdate(a.out, "error", a.lastErr.Message)
		return
	}
	a.comments = msg.comments
	a.lastErr = nil
	pushUpdate(a.out, "comments", a.comments)
}

// handleToggleLike flips the viewer's like state immediately and commits
// the toggle. The domain actor treats an already-liked insert and a
// missing-row unlike as successful no-ops, so only real store failures roll
// back.
func (a *ThreadSessionActor) handleToggleLike(context actor.Context, msg *ToggleLikeMsg) {
	if a.viewerID == uuid.Nil {
		a.lastErr = utils.NewAuthRequiredError("like comment")
		context.Respond(a.lastErr)
		return
	}

	comment := a.findComment(msg.CommentID)
	if comment == nil {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Comment not in view", nil))
		return
	}

	wasLiked := comment.UserHasLiked
	previousCount := comment.LikeCount

	comment.UserHasLiked = !wasLiked
	if wasLiked {
		if comment.LikeCount > 0 {
			comment.LikeCount--
		}
	} else {
		comment.LikeCount++
	}
	pushUpdate(a.out, "comments", a.comments)

	root := context.ActorSystem().Root
	commentPID := a.commentPID
	viewerID := a.viewerID
	timeout := a.timeout
	like := !wasLiked

	startCommand(context, &command{
		name: "toggle_comment_like",
		commit: func(ctx stdctx.Context) (interface{}, error) {
			return requestResult(root, commentPID, &ToggleCommentLikeMsg{
				CommentID: msg.CommentID,
				UserID:    viewerID,
				Like:      like,
			}, timeout)
		},
		rollback: func() {
			comment.UserHasLiked = wasLiked
			comment.LikeCount = previousCount
			pushUpdate(a.out, "comments", a.comments)
		},
	})

	context.Respond(&models.StatusResponse{Success: true})
}

// handlePostComment appends a provisional comment and commits it. The
// authoritative row replaces the provisional one on success; on failure the
// provisional entry is removed again.
func (a *ThreadSessionActor) handlePostComment(context actor.Context, msg *PostCommentMsg) {
	if a.viewerID == uuid.Nil {
		a.lastErr = utils.NewAuthRequiredError("post comment")
		context.Respond(a.lastErr)
		return
	}
	if strings.TrimSpace(msg.Content) == "" {
		context.Respond(utils.NewValidationError("comment content is empty"))
		return
	}

	var parent *models.Comment
	if msg.ParentID != nil {
		parent = a.findComment(*msg.ParentID)
		if parent == nil || parent.ParentID != nil {
			context.Respond(utils.NewValidationError("parent comment not available for replies"))
			return
		}
	}

	provisional := &models.Comment{
		ID:        uuid.New(),
		ContentID: a.contentID,
		UserID:    a.viewerID,
		ParentID:  msg.ParentID,
		Content:   msg.Content,
		CreatedAt: time.Now(),
	}

	if parent != nil {
		parent.Replies = append(parent.Replies, provisional)
		parent.ReplyCount++
	} else {
		a.comments = append(a.comments, provisional)
	}
	a.pending[provisional.ID] = true
	pushUpdate(a.out, "comments", a.comments)

	root := context.ActorSystem().Root
	commentPID := a.commentPID
	timeout := a.timeout

	startCommand(context, &command{
		name: "post_comment",
		commit: func(ctx stdctx.Context) (interface{}, error) {
			return requestResult(root, commentPID, &CreateCommentMsg{
				CommentID:        provisional.ID,
				ContentID:        provisional.ContentID,
				AuthorID:         provisional.UserID,
				ParentID:         provisional.ParentID,
				Content:          provisional.Content,
				SelectedMentions: msg.SelectedMentions,
			}, timeout)
		},
		rollback: func() {
			a.removeComment(provisional.ID)
			delete(a.pending, provisional.ID)
			pushUpdate(a.out, "comments", a.comments)
		},
		onCommit: func(result interface{}) {
			confirmed, ok := result.(*models.Comment)
			if !ok {
				return
			}
			a.replaceComment(provisional.ID, confirmed)
			delete(a.pending, provisional.ID)
			pushUpdate(a.out, "comments", a.comments)
		},
	})

	context.Respond(&models.StatusResponse{Success: true})
}

// handleEvent reacts to comment changes from the feed. The echo of the
// viewer's own provisional post is ignored; everything else triggers a full
// thread re-fetch since counters and ordering are store-owned.
func (a *ThreadSessionActor) handleEvent(context actor.Context, evt realtime.Event) {
	comment, ok := evt.Row.(*models.Comment)
	if !ok {
		return
	}
	if evt.Type == realtime.EventInsert && a.pending[comment.ID] {
		return
	}
	context.Send(context.Self(), &RefreshThreadMsg{})
}

// findComment searches both levels of the tree.
func (a *ThreadSessionActor) findComment(id uuid.UUID) *models.Comment {
	for _, comment := range a.comments {
		if comment.ID == id {
			return comment
		}
		for _, reply := range comment.Replies {
			if reply.ID == id {
				return reply
			}
		}
	}
	return nil
}

func (a *ThreadSessionActor) removeComment(id uuid.UUID) {
	for i, comment := range a.comments {
		if comment.ID == id {
			a.comments = append(a.comments[:i], a.comments[i+1:]...)
			return
		}
		for j, reply := range comment.Replies {
			if reply.ID == id {
				comment.Replies = append(comment.Replies[:j], comment.Replies[j+1:]...)
				if comment.ReplyCount > 0 {
					comment.ReplyCount--
				}
				return
			}
		}
	}
}

func (a *ThreadSessionActor) replaceComment(id uuid.UUID, replacement *models.Comment) {
	for i, comment := range a.comments {
		if comment.ID == id {
			replacement.Replies = comment.Replies
			a.comments[i] = replacement
			return
		}
		for j, reply := range comment.Replies {
			if reply.ID == id {
				comment.Replies[j] = replacement
				return
			}
		}
	}
}

func (a *ThreadSessionActor) snapshot() *ThreadSessionState {
	comments := a.comments
	if comments == nil {
		comments = []*models.Comment{}
	}
	return &ThreadSessionState{
		Comments: comments,
		Error:    a.lastErr,
	}
}
