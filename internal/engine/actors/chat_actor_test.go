package actors

import (
	"context"
	"testing"
	"time"

	"vibelink/internal/models"
	"vibelink/internal/realtime"
	"vibelink/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnChatActor(t *testing.T, store *fakeStore) (*actor.ActorSystem, *actor.PID, *realtime.Hub) {
	t.Helper()
	hub := realtime.NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)

	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewChatActor(store, hub, utils.NewMetricsCollector())
	})
	return system, system.Root.Spawn(props), hub
}

func TestChatActorSendAndFetchMessages(t *testing.T) {
	store := newFakeStore()
	sender := store.addUser("sender")
	chatID := uuid.New()

	system, pid, _ := spawnChatActor(t, store)

	future := system.Root.RequestFuture(pid, &SendChatMessageMsg{
		ChatID:   chatID,
		SenderID: sender.ID,
		Content:  "hello",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	sent, ok := result.(*models.ChatMessage)
	require.True(t, ok, "unexpected response type %T", result)
	assert.NotEqual(t, uuid.Nil, sent.ID)
	assert.Equal(t, "hello", sent.Content)

	future = system.Root.RequestFuture(pid, &GetChatMessagesMsg{ChatID: chatID}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)

	messages, ok := result.([]*models.ChatMessage)
	require.True(t, ok, "unexpected response type %T", result)
	require.Len(t, messages, 1)
	assert.Equal(t, sent.ID, messages[0].ID)
}

func TestChatActorKeepsClientAssignedID(t *testing.T) {
	store := newFakeStore()
	sender := store.addUser("sender")
	messageID := uuid.New()

	system, pid, _ := spawnChatActor(t, store)

	future := system.Root.RequestFuture(pid, &SendChatMessageMsg{
		MessageID: messageID,
		ChatID:    uuid.New(),
		SenderID:  sender.ID,
		Content:   "tracked",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	sent, ok := result.(*models.ChatMessage)
	require.True(t, ok)
	assert.Equal(t, messageID, sent.ID)
}

func TestChatActorRejectsEmptyMessage(t *testing.T) {
	store := newFakeStore()
	sender := store.addUser("sender")

	system, pid, _ := spawnChatActor(t, store)

	future := system.Root.RequestFuture(pid, &SendChatMessageMsg{
		ChatID:   uuid.New(),
		SenderID: sender.ID,
		Content:  "   ",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected AppError, got %T", result)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestChatActorMarkMessageRead(t *testing.T) {
	store := newFakeStore()
	sender := store.addUser("sender")
	reader := store.addUser("reader")
	chatID := uuid.New()

	system, pid, _ := spawnChatActor(t, store)

	future := system.Root.RequestFuture(pid, &SendChatMessageMsg{
		ChatID:   chatID,
		SenderID: sender.ID,
		Content:  "read me",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	sent := result.(*models.ChatMessage)

	future = system.Root.RequestFuture(pid, &MarkMessageReadMsg{
		MessageID: sent.ID,
		ReaderID:  reader.ID,
	}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)

	status, ok := result.(*models.StatusResponse)
	require.True(t, ok, "unexpected response type %T", result)
	assert.True(t, status.Success)

	messages, err := store.GetChatMessages(context.Background(), chatID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].IsRead)

	// Unknown message IDs surface as not found.
	future = system.Root.RequestFuture(pid, &MarkMessageReadMsg{
		MessageID: uuid.New(),
		ReaderID:  reader.ID,
	}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}
