package actors

import (
	stdctx "context"
	"log"
	"time"

	"vibelink/internal/models"
	"vibelink/internal/realtime"
	"vibelink/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for MatchSessionActor
type (
	RefreshMatchesMsg struct{}

	RefreshFriendRequestsMsg struct{}

	AcceptFriendRequestMsg struct {
		RequestID uuid.UUID `json:"requestId"`
	}

	RejectFriendRequestMsg struct {
		RequestID uuid.UUID `json:"requestId"`
	}

	GetMatchSessionStateMsg struct{}

	matchesFetchedMsg struct {
		matches []*models.ConsolidatedMatch
		err     error
	}

	requestsFetchedMsg struct {
		requests []*models.FriendRequest
		err      error
	}
)

// MatchSessionState is the snapshot a matches view renders.
type MatchSessionState struct {
	Matches        []*models.ConsolidatedMatch `json:"matches"`
	FriendRequests []*models.FriendRequest     `json:"friendRequests"`
	Error          *utils.AppError             `json:"error,omitempty"`
}

// MatchSessionActor owns the consolidated match list and pending friend
// requests for one open matches view. It is spawned when the view opens and
// stopped when it closes; all of its caches die with it.
type MatchSessionActor struct {
	viewerID uuid.UUID
	matchPID *actor.PID
	hub      *realtime.Hub
	out      func([]byte)
	timeout  time.Duration

	matches  []*models.ConsolidatedMatch
	requests []*models.FriendRequest
	lastErr  *utils.AppError
	subs     []*realtime.Subscription
}

func NewMatchSessionActor(viewerID uuid.UUID, matchPID *actor.PID, hub *realtime.Hub, out func([]byte)) actor.Actor {
	return &MatchSessionActor{
		viewerID: viewerID,
		matchPID: matchPID,
		hub:      hub,
		out:      out,
		timeout:  5 * time.Second,
	}
}

func (a *MatchSessionActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		a.subscribe(context)
		context.Send(context.Self(), &RefreshMatchesMsg{})
		context.Send(context.Self(), &RefreshFriendRequestsMsg{})

	case *actor.Stopping:
		// Release every subscription handle on the way out, error paths
		// included.
		for _, sub := range a.subs {
			sub.Unsubscribe()
		}
		a.subs = nil

	case *RefreshMatchesMsg:
		a.startMatchesFetch(context)

	case *RefreshFriendRequestsMsg:
		a.startRequestsFetch(context)

	case *matchesFetchedMsg:
		a.handleMatchesFetched(msg)

	case *requestsFetchedMsg:
		a.handleRequestsFetched(msg)

	case *AcceptFriendRequestMsg:
		a.handleRespond(context, msg.RequestID, true)

	case *RejectFriendRequestMsg:
		a.handleRespond(context, msg.RequestID, false)

	case *commandDoneMsg:
		if appErr := finishCommand(msg); appErr != nil {
			a.lastErr = appErr
			pushUpdate(a.out, "error", appErr.Message)
		}

	case *realtimeEventMsg:
		a.handleEvent(context, msg.event)

	case *GetMatchSessionStateMsg:
		context.Respond(a.snapshot())
	}
}

func (a *MatchSessionActor) subscribe(context actor.Context) {
	self := context.Self()
	root := context.ActorSystem().Root
	deliver := func(evt realtime.Event) {
		root.Send(self, &realtimeEventMsg{event: evt})
	}

	matchTypes := []realtime.EventType{realtime.EventInsert, realtime.EventUpdate}
	allTypes := []realtime.EventType{realtime.EventInsert, realtime.EventUpdate, realtime.EventDelete}

	a.subs = append(a.subs,
		a.hub.Subscribe(realtime.EntityProjectMatches, matchTypes, a.projectMatchFilter, deliver),
		a.hub.Subscribe(realtime.EntityDirectMatches, matchTypes, a.directMatchFilter, deliver),
		a.hub.Subscribe(realtime.EntityFriendRequests, allTypes, a.friendRequestFilter, deliver),
	)
}

func (a *MatchSessionActor) projectMatchFilter(evt realtime.Event) bool {
	match, ok := evt.Row.(*models.ProjectMatch)
	if !ok {
		return false
	}
	return match.CreatorID == a.viewerID || match.UserID == a.viewerID
}

func (a *MatchSessionActor) directMatchFilter(evt realtime.Event) bool {
	match, ok := evt.Row.(*models.DirectMatch)
	if !ok {
		return false
	}
	return match.User1ID == a.viewerID || match.User2ID == a.viewerID
}

func (a *MatchSessionActor) friendRequestFilter(evt realtime.Event) bool {
	request, ok := evt.Row.(*models.FriendRequest)
	if !ok {
		return false
	}
	return request.SenderID == a.viewerID || request.ReceiverID == a.viewerID
}

// startMatchesFetch kicks off an aggregate re-fetch. There is no sequence
// check across overlapping fetches: the last one to complete wins, which is
// a documented best-effort tradeoff of the change feed.
func (a *MatchSessionActor) startMatchesFetch(context actor.Context) {
	self := context.Self()
	root := context.ActorSystem().Root
	viewerID := a.viewerID
	matchPID := a.matchPID
	timeout := a.timeout

	go func() {
		result, err := requestResult(root, matchPID, &GetConsolidatedMatchesMsg{ViewerID: viewerID}, timeout)
		if err != nil {
			root.Send(self, &matchesFetchedMsg{err: err})
			return
		}
		matches, _ := result.([]*models.ConsolidatedMatch)
		root.Send(self, &matchesFetchedMsg{matches: matches})
	}()
}

func (a *MatchSessionActor) startRequestsFetch(context actor.Context) {
	self := context.Self()
	root := context.ActorSystem().Root
	viewerID := a.viewerID
	matchPID := a.matchPID
	timeout := a.timeout

	go func() {
		result, err := requestResult(root, matchPID, &GetFriendRequestsMsg{UserID: viewerID}, timeout)
		if err != nil {
			root.Send(self, &requestsFetchedMsg{err: err})
			return
		}
		requests, _ := result.([]*models.FriendRequest)
		root.Send(self, &requestsFetchedMsg{requests: requests})
	}()
}

func (a *MatchSessionActor) handleMatchesFetched(msg *matchesFetchedMsg) {
	if msg.err != nil {
		// A failed consolidation surfaces as a single error state; no
		// partial list is kept alongside it.
		a.matches = nil
		a.lastErr = toAppError(msg.err)
		pushUpdate(a.out, "error", a.lastErr.Message)
		return
	}
	a.matches = msg.matches
	a.lastErr = nil
	pushUpdate(a.out, "matches", a.matches)
}

func (a *MatchSessionActor) handleRequestsFetched(msg *requestsFetchedMsg) {
	if msg.err != nil {
		a.requests = nil
		a.lastErr = toAppError(msg.err)
		pushUpdate(a.out, "error", a.lastErr.Message)
		return
	}
	a.requests = msg.requests
	a.lastErr = nil
	pushUpdate(a.out, "friend_requests", a.requests)
}

// handleRespond optimistically removes the request from the local list and
// commits the status transition; on failure the request is restored at its
// original position.
func (a *MatchSessionActor) handleRespond(context actor.Context, requestID uuid.UUID, accept bool) {
	if a.viewerID == uuid.Nil {
		a.lastErr = utils.NewAuthRequiredError("respond to friend request")
		context.Respond(a.lastErr)
		return
	}

	index := -1
	for i, request := range a.requests {
		if request.ID == requestID {
			index = i
			break
		}
	}
	if index == -1 {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Friend request not in view", nil))
		return
	}

	removed := a.requests[index]
	a.requests = append(a.requests[:index], a.requests[index+1:]...)
	pushUpdate(a.out, "friend_requests", a.requests)

	root := context.ActorSystem().Root
	self := context.Self()
	matchPID := a.matchPID
	viewerID := a.viewerID
	timeout := a.timeout

	startCommand(context, &command{
		name: "respond_friend_request",
		commit: func(ctx stdctx.Context) (interface{}, error) {
			return requestResult(root, matchPID, &RespondFriendRequestMsg{
				RequestID:  requestID,
				ReceiverID: viewerID,
				Accept:     accept,
			}, timeout)
		},
		rollback: func() {
			if index > len(a.requests) {
				index = len(a.requests)
			}
			a.requests = append(a.requests[:index], append([]*models.FriendRequest{removed}, a.requests[index:]...)...)
			pushUpdate(a.out, "friend_requests", a.requests)
		},
		onCommit: func(interface{}) {
			if accept {
				// The matching process may have produced a new match row.
				root.Send(self, &RefreshMatchesMsg{})
			}
		},
	})

	context.Respond(&models.StatusResponse{Success: true})
}

func (a *MatchSessionActor) handleEvent(context actor.Context, evt realtime.Event) {
	switch evt.Entity {
	case realtime.EntityProjectMatches, realtime.EntityDirectMatches:
		context.Send(context.Self(), &RefreshMatchesMsg{})
	case realtime.EntityFriendRequests:
		context.Send(context.Self(), &RefreshFriendRequestsMsg{})
	default:
		log.Printf("MatchSession: unexpected event entity %s", evt.Entity)
	}
}

func (a *MatchSessionActor) snapshot() *MatchSessionState {
	matches := a.matches
	if matches == nil {
		matches = []*models.ConsolidatedMatch{}
	}
	requests := a.requests
	if requests == nil {
		requests = []*models.FriendRequest{}
	}
	return &MatchSessionState{
		Matches:        matches,
		FriendRequests: requests,
		Error:          a.lastErr,
	}
}

func toAppError(err error) *utils.AppError {
	if appErr, ok := err.(*utils.AppError); ok {
		return appErr
	}
	return utils.NewAppError(utils.ErrStore, "Fetch failed", err)
}
