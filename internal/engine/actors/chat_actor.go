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

// Message types for ChatActor
type (
	SendChatMessageMsg struct {
		// MessageID is assigned by the sending side so an optimistic local
		// entry and its realtime echo share an identity.
		MessageID uuid.UUID `json:"messageId"`
		ChatID    uuid.UUID `json:"chatId"`
		SenderID  uuid.UUID `json:"senderId"`
		Content   string    `json:"content"`
	}

	GetChatMessagesMsg struct {
		ChatID uuid.UUID `json:"chatId"`
	}

	MarkMessageReadMsg struct {
		MessageID uuid.UUID `json:"messageId"`
		ReaderID  uuid.UUID `json:"readerId"`
	}
)

// ChatActor manages direct chat messages.
type ChatActor struct {
	store   database.Store
	hub     *realtime.Hub
	metrics *utils.MetricsCollector
}

func NewChatActor(store database.Store, hub *realtime.Hub, metrics *utils.MetricsCollector) actor.Actor {
	return &ChatActor{
		store:   store,
		hub:     hub,
		metrics: metrics,
	}
}

func (a *ChatActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("ChatActor started with PID: %v", context.Self())

	case *SendChatMessageMsg:
		a.handleSendMessage(context, msg)

	case *GetChatMessagesMsg:
		a.handleGetMessages(context, msg)

	case *MarkMessageReadMsg:
		a.handleMarkRead(context, msg)
	}
}

func (a *ChatActor) handleSendMessage(context actor.Context, msg *SendChatMessageMsg) {
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Content) == "" {
		context.Respond(utils.NewValidationError("message content is empty"))
		return
	}

	messageID := msg.MessageID
	if messageID == uuid.Nil {
		messageID = uuid.New()
	}

	newMessage := &models.ChatMessage{
		ID:        messageID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: time.Now(),
	}

	if err := a.store.SaveChatMessage(ctx, newMessage); err != nil {
		log.Printf("Error saving message in chat %s: %v", msg.ChatID, err)
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to send message", err))
		return
	}

	a.hub.Publish(realtime.Event{
		Type:   realtime.EventInsert,
		Entity: realtime.EntityMessages,
		Row:    newMessage,
	})
	context.Respond(newMessage)
}

func (a *ChatActor) handleGetMessages(context actor.Context, msg *GetChatMessagesMsg) {
	ctx := stdctx.Background()

	messages, err := a.store.GetChatMessages(ctx, msg.ChatID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to fetch messages", err))
		return
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}
	context.Respond(messages)
}

func (a *ChatActor) handleMarkRead(context actor.Context, msg *MarkMessageReadMsg) {
	ctx := stdctx.Background()

	err := a.store.MarkChatMessageRead(ctx, msg.MessageID, msg.ReaderID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(utils.NewAppError(utils.ErrNotFound, "Message not found", nil))
			return
		}
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to mark message read", err))
		return
	}
	context.Respond(&models.StatusResponse{Success: true})
}
