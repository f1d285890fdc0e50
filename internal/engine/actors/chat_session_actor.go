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

// Message types for ChatSessionActor
type (
	SendMessageMsg struct {
		Content string `json:"content"`
	}

	RefreshChatMsg struct{}

	GetChatSessionStateMsg struct{}

	chatFetchedMsg struct {
		messages []*models.ChatMessage
		err      error
	}
)

// ChatSessionState is the snapshot an open chat view renders.
type ChatSessionState struct {
	Messages []*models.ChatMessage `json:"messages"`
	Draft    string                `json:"draft"`
	Error    *utils.AppError       `json:"error,omitempty"`
}

// ChatSessionActor owns the message list of one open chat. Sends are
// optimistic: the message appears immediately with a locally assigned id,
// the realtime echo is reconciled against it by that id, and a failed send
// restores the text into the draft instead of discarding it.
type ChatSessionActor struct {
	viewerID uuid.UUID
	chatID   uuid.UUID
	chatPID  *actor.PID
	hub      *realtime.Hub
	out      func([]byte)
	timeout  time.Duration

	messages []*models.ChatMessage
	pending  map[uuid.UUID]*models.ChatMessage
	draft    string
	lastErr  *utils.AppError
	sub      *realtime.Subscription
}

func NewChatSessionActor(viewerID, chatID uuid.UUID, chatPID *actor.PID, hub *realtime.Hub, out func([]byte)) actor.Actor {
	return &ChatSessionActor{
		viewerID: viewerID,
		chatID:   chatID,
		chatPID:  chatPID,
		hub:      hub,
		out:      out,
		timeout:  5 * time.Second,
		pending:  make(map[uuid.UUID]*models.ChatMessage),
	}
}

func (a *ChatSessionActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		self := context.Self()
		root := context.ActorSystem().Root
		a.sub = a.hub.Subscribe(
			realtime.EntityMessages,
			[]realtime.EventType{realtime.EventInsert},
			a.messageFilter,
			func(evt realtime.Event) { root.Send(self, &realtimeEventMsg{event: evt}) },
		)
		context.Send(self, &RefreshChatMsg{})

	case *actor.Stopping:
		if a.sub != nil {
			a.sub.Unsubscribe()
			a.sub = nil
		}

	case *RefreshChatMsg:
		a.startFetch(context)

	case *chatFetchedMsg:
		a.handleFetched(msg)

	case *SendMessageMsg:
		a.handleSend(context, msg)

	case *commandDoneMsg:
		if appErr := finishCommand(msg); appErr != nil {
			a.lastErr = appErr
			pushUpdate(a.out, "error", appErr.Message)
		}

	case *realtimeEventMsg:
		a.handleEvent(msg.event)

	case *GetChatSessionStateMsg:
		context.Respond(a.snapshot())
	}
}

func (a *ChatSessionActor) messageFilter(evt realtime.Event) bool {
	message, ok := evt.Row.(*models.ChatMessage)
	if !ok {
		return false
	}
	return message.ChatID == a.chatID
}

func (a *ChatSessionActor) startFetch(context actor.Context) {
	self := context.Self()
	root := context.ActorSystem().Root
	chatPID := a.chatPID
	chatID := a.chatID
	timeout := a.timeout

	go func() {
		result, err := requestResult(root, chatPID, &GetChatMessagesMsg{ChatID: chatID}, timeout)
		if err != nil {
			root.Send(self, &chatFetchedMsg{err: err})
			return
		}
		messages, _ := result.([]*models.ChatMessage)
		root.Send(self, &chatFetchedMsg{messages: messages})
	}()
}

// handleFetched installs a completed fetch. Overlapping fetches are not
// sequenced; the last one to complete wins. Provisional sends that have not
// been confirmed yet are re-appended so they stay visible.
func (a *ChatSessionActor) handleFetched(msg *chatFetchedMsg) {
	if msg.err != nil {
		a.messages = nil
		a.lastErr = toAppError(msg.err)
		pushUpdate(a.out, "error", a.lastErr.Message)
		return
	}

	a.messages = msg.messages
	for _, provisional := range a.pending {
		if !a.hasMessage(provisional.ID) {
			a.messages = append(a.messages, provisional)
		}
	}
	a.lastErr = nil
	pushUpdate(a.out, "messages", a.messages)
}

func (a *ChatSessionActor) handleSend(context actor.Context, msg *SendMessageMsg) {
	if a.viewerID == uuid.Nil {
		a.lastErr = utils.NewAuthRequiredError("send message")
		context.Respond(a.lastErr)
		return
	}
	if strings.TrimSpace(msg.Content) == "" {
		context.Respond(utils.NewValidationError("message content is empty"))
		return
	}

	provisional := &models.ChatMessage{
		ID:        uuid.New(),
		ChatID:    a.chatID,
		SenderID:  a.viewerID,
		Content:   msg.Content,
		CreatedAt: time.Now(),
	}

	// Optimistic apply: the message shows up immediately and the input
	// clears.
	a.messages = append(a.messages, provisional)
	a.pending[provisional.ID] = provisional
	a.draft = ""
	pushUpdate(a.out, "messages", a.messages)

	root := context.ActorSystem().Root
	chatPID := a.chatPID
	timeout := a.timeout
	content := msg.Content

	startCommand(context, &command{
		name: "send_message",
		commit: func(ctx stdctx.Context) (interface{}, error) {
			return requestResult(root, chatPID, &SendChatMessageMsg{
				MessageID: provisional.ID,
				ChatID:    provisional.ChatID,
				SenderID:  provisional.SenderID,
				Content:   provisional.Content,
			}, timeout)
		},
		rollback: func() {
			a.removeMessage(provisional.ID)
			delete(a.pending, provisional.ID)
			// The unsent text goes back into the input field.
			a.draft = content
			pushUpdate(a.out, "messages", a.messages)
			pushUpdate(a.out, "draft", a.draft)
		},
		onCommit: func(result interface{}) {
			confirmed, ok := result.(*models.ChatMessage)
			if !ok {
				return
			}
			// Server-assigned fields replace the provisional placeholder.
			a.replaceMessage(provisional.ID, confirmed)
			delete(a.pending, provisional.ID)
			pushUpdate(a.out, "messages", a.messages)
		},
	})

	context.Respond(&models.StatusResponse{Success: true})
}

// handleEvent appends messages arriving on the change feed. An echo of the
// viewer's own optimistic send is recognized by its id and replaces the
// provisional entry instead of appending a duplicate.
func (a *ChatSessionActor) handleEvent(evt realtime.Event) {
	message, ok := evt.Row.(*models.ChatMessage)
	if !ok {
		return
	}

	if _, isPending := a.pending[message.ID]; isPending {
		a.replaceMessage(message.ID, message)
		delete(a.pending, message.ID)
		pushUpdate(a.out, "messages", a.messages)
		return
	}
	if a.hasMessage(message.ID) {
		return
	}

	a.messages = append(a.messages, message)
	pushUpdate(a.out, "messages", a.messages)
}

func (a *ChatSessionActor) hasMessage(id uuid.UUID) bool {
	for _, message := range a.messages {
		if message.ID == id {
			return true
		}
	}
	return false
}

func (a *ChatSessionActor) removeMessage(id uuid.UUID) {
	for i, message := range a.messages {
		if message.ID == id {
			a.messages = append(a.messages[:i], a.messages[i+1:]...)
			return
		}
	}
}

func (a *ChatSessionActor) replaceMessage(id uuid.UUID, replacement *models.ChatMessage) {
	for i, message := range a.messages {
		if message.ID == id {
			a.messages[i] = replacement
			return
		}
	}
	a.messages = append(a.messages, replacement)
}

func (a *ChatSessionActor) snapshot() *ChatSessionState {
	messages := a.messages
	if messages == nil {
		messages = []*models.ChatMessage{}
	}
	return &ChatSessionState{
		Messages: messages,
		Draft:    a.draft,
		Error:    a.lastErr,
	}
}
