package actors

import (
	stdctx "context"
	"log"
	"time"

	"vibelink/internal/database"
	"vibelink/internal/models"
	"vibelink/internal/realtime"
	"vibelink/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for MatchActor
type (
	GetConsolidatedMatchesMsg struct {
		ViewerID uuid.UUID `json:"viewerId"`
	}

	SendFriendRequestMsg struct {
		SenderID   uuid.UUID `json:"senderId"`
		ReceiverID uuid.UUID `json:"receiverId"`
		Message    string    `json:"message,omitempty"`
	}

	RespondFriendRequestMsg struct {
		RequestID  uuid.UUID `json:"requestId"`
		ReceiverID uuid.UUID `json:"receiverId"`
		Accept     bool      `json:"accept"`
	}

	CancelFriendRequestMsg struct {
		RequestID uuid.UUID `json:"requestId"`
		SenderID  uuid.UUID `json:"senderId"`
	}

	GetFriendRequestsMsg struct {
		UserID uuid.UUID `json:"userId"`
	}
)

// MatchActor owns the match consolidation and friend request operations.
// Match rows themselves are created by the external matching process; this
// actor only projects them.
type MatchActor struct {
	store   database.Store
	hub     *realtime.Hub
	metrics *utils.MetricsCollector
}

func NewMatchActor(store database.Store, hub *realtime.Hub, metrics *utils.MetricsCollector) actor.Actor {
	return &MatchActor{
		store:   store,
		hub:     hub,
		metrics: metrics,
	}
}

func (a *MatchActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("MatchActor started with PID: %v", context.Self())

	case *GetConsolidatedMatchesMsg:
		a.handleGetConsolidatedMatches(context, msg)

	case *SendFriendRequestMsg:
		a.handleSendFriendRequest(context, msg)

	case *RespondFriendRequestMsg:
		a.handleRespondFriendRequest(context, msg)

	case *CancelFriendRequestMsg:
		a.handleCancelFriendRequest(context, msg)

	case *GetFriendRequestsMsg:
		a.handleGetFriendRequests(context, msg)
	}
}

// handleGetConsolidatedMatches fetches both relation sources and merges
// them. Either fetch failing aborts the whole consolidation; no partial
// list is ever returned.
func (a *MatchActor) handleGetConsolidatedMatches(context actor.Context, msg *GetConsolidatedMatchesMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	projectMatches, err := a.store.GetProjectMatchesForUser(ctx, msg.ViewerID)
	if err != nil {
		log.Printf("Error fetching project matches for %s: %v", msg.ViewerID, err)
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to fetch project matches", err))
		return
	}

	directMatches, err := a.store.GetDirectMatchesForUser(ctx, msg.ViewerID)
	if err != nil {
		log.Printf("Error fetching direct matches for %s: %v", msg.ViewerID, err)
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to fetch direct matches", err))
		return
	}

	consolidated := ConsolidateMatches(msg.ViewerID, projectMatches, directMatches)

	a.metrics.AddOperationLatency("consolidate_matches", time.Since(startTime))
	context.Respond(consolidated)
}

func (a *MatchActor) handleSendFriendRequest(context actor.Context, msg *SendFriendRequestMsg) {
	ctx := stdctx.Background()

	if msg.SenderID == msg.ReceiverID {
		context.Respond(utils.NewValidationError("cannot send a friend request to yourself"))
		return
	}

	if _, err := a.store.GetUser(ctx, msg.ReceiverID); err != nil {
		if utils.IsErrorCode(err, utils.ErrUserNotFound) {
			context.Respond(utils.NewUserNotFoundError(msg.ReceiverID.String()))
			return
		}
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to fetch receiver", err))
		return
	}

	// At most one active request per unordered pair, in either direction.
	existing, err := a.store.FindActiveRequestBetween(ctx, msg.SenderID, msg.ReceiverID)
	if err != nil && !utils.IsErrorCode(err, utils.ErrNotFound) {
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to check existing requests", err))
		return
	}
	if existing != nil {
		context.Respond(utils.NewAppError(utils.ErrRequestExists, "A friend request between these users already exists", nil))
		return
	}

	matched, err := a.store.AreUsersMatched(ctx, msg.SenderID, msg.ReceiverID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to check match state", err))
		return
	}
	if matched {
		context.Respond(utils.NewAppError(utils.ErrAlreadyMatched, "These users are already matched", nil))
		return
	}

	request := &models.FriendRequest{
		ID:         uuid.New(),
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Message:    msg.Message,
		Status:     models.FriendRequestPending,
		CreatedAt:  time.Now(),
	}

	if err := a.store.SaveFriendRequest(ctx, request); err != nil {
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to save friend request", err))
		return
	}

	a.hub.Publish(realtime.Event{
		Type:   realtime.EventInsert,
		Entity: realtime.EntityFriendRequests,
		Row:    request,
	})
	context.Respond(request)
}

func (a *MatchActor) handleRespondFriendRequest(context actor.Context, msg *RespondFriendRequestMsg) {
	ctx := stdctx.Background()

	request, err := a.store.GetFriendRequest(ctx, msg.RequestID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(utils.NewAppError(utils.ErrNotFound, "Friend request not found", nil))
			return
		}
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to fetch friend request", err))
		return
	}

	if request.ReceiverID != msg.ReceiverID {
		context.Respond(utils.NewAppError(utils.ErrUnauthorized, "Only the receiver can respond to a friend request", nil))
		return
	}

	status := models.FriendRequestRejected
	if msg.Accept {
		status = models.FriendRequestAccepted
	}

	updated, err := a.store.UpdateFriendRequestStatus(ctx, msg.RequestID, status, time.Now())
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(utils.NewAppError(utils.ErrNotFound, "Friend request is no longer pending", nil))
			return
		}
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to update friend request", err))
		return
	}

	a.hub.Publish(realtime.Event{
		Type:   realtime.EventUpdate,
		Entity: realtime.EntityFriendRequests,
		Row:    updated,
	})
	context.Respond(updated)
}

func (a *MatchActor) handleCancelFriendRequest(context actor.Context, msg *CancelFriendRequestMsg) {
	ctx := stdctx.Background()

	request, err := a.store.GetFriendRequest(ctx, msg.RequestID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(utils.NewAppError(utils.ErrNotFound, "Friend request not found", nil))
			return
		}
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to fetch friend request", err))
		return
	}

	if err := a.store.DeletePendingFriendRequest(ctx, msg.RequestID, msg.SenderID); err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(utils.NewAppError(utils.ErrNotFound, "Pending friend request not found", nil))
			return
		}
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to delete friend request", err))
		return
	}

	a.hub.Publish(realtime.Event{
		Type:   realtime.EventDelete,
		Entity: realtime.EntityFriendRequests,
		Row:    request,
	})
	context.Respond(&models.StatusResponse{Success: true, Message: "Friend request cancelled"})
}

func (a *MatchActor) handleGetFriendRequests(context actor.Context, msg *GetFriendRequestsMsg) {
	ctx := stdctx.Background()

	requests, err := a.store.GetFriendRequestsForUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to fetch friend requests", err))
		return
	}
	if requests == nil {
		requests = []*models.FriendRequest{}
	}
	context.Respond(requests)
}
