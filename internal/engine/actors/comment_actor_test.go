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

func spawnCommentActor(t *testing.T, store *fakeStore) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	hub := realtime.NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)

	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewCommentActor(store, hub, utils.NewMetricsCollector())
	})
	return system, system.Root.Spawn(props)
}

func TestCommentActorCreateAndThread(t *testing.T) {
	store := newFakeStore()
	author := store.addUser("author")
	replier := store.addUser("replier")
	contentID := uuid.New()

	system, pid := spawnCommentActor(t, store)

	future := system.Root.RequestFuture(pid, &CreateCommentMsg{
		ContentID: contentID,
		AuthorID:  author.ID,
		Content:   "First!",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	top, ok := result.(*models.Comment)
	require.True(t, ok, "unexpected response type %T", result)
	assert.Equal(t, "First!", top.Content)
	assert.Equal(t, "author", top.AuthorUsername)

	future = system.Root.RequestFuture(pid, &CreateCommentMsg{
		ContentID: contentID,
		AuthorID:  replier.ID,
		ParentID:  &top.ID,
		Content:   "Reply",
	}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)
	reply, ok := result.(*models.Comment)
	require.True(t, ok)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)

	// Replies to replies are not supported.
	future = system.Root.RequestFuture(pid, &CreateCommentMsg{
		ContentID: contentID,
		AuthorID:  author.ID,
		ParentID:  &reply.ID,
		Content:   "Too deep",
	}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)

	future = system.Root.RequestFuture(pid, &GetCommentThreadMsg{ContentID: contentID}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)

	thread, ok := result.([]*models.Comment)
	require.True(t, ok, "unexpected response type %T", result)
	require.Len(t, thread, 1)
	require.Len(t, thread[0].Replies, 1)
	assert.Equal(t, "Reply", thread[0].Replies[0].Content)
	assert.Nil(t, thread[0].Replies[0].Replies)
}

func TestCommentActorRejectsEmptyContent(t *testing.T) {
	store := newFakeStore()
	author := store.addUser("author")

	system, pid := spawnCommentActor(t, store)

	future := system.Root.RequestFuture(pid, &CreateCommentMsg{
		ContentID: uuid.New(),
		AuthorID:  author.ID,
		Content:   "   ",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestCommentActorDeleteIsAuthorOnly(t *testing.T) {
	store := newFakeStore()
	author := store.addUser("author")
	other := store.addUser("other")
	contentID := uuid.New()

	system, pid := spawnCommentActor(t, store)

	future := system.Root.RequestFuture(pid, &CreateCommentMsg{
		ContentID: contentID,
		AuthorID:  author.ID,
		Content:   "mine",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	comment := result.(*models.Comment)

	future = system.Root.RequestFuture(pid, &DeleteCommentMsg{
		CommentID: comment.ID,
		AuthorID:  other.ID,
	}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrUnauthorized, appErr.Code)

	future = system.Root.RequestFuture(pid, &DeleteCommentMsg{
		CommentID: comment.ID,
		AuthorID:  author.ID,
	}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)
	status, ok := result.(*models.StatusResponse)
	require.True(t, ok)
	assert.True(t, status.Success)
}

func TestCommentActorLikeToggleIsIdempotent(t *testing.T) {
	store := newFakeStore()
	author := store.addUser("author")
	liker := store.addUser("liker")
	contentID := uuid.New()

	system, pid := spawnCommentActor(t, store)

	future := system.Root.RequestFuture(pid, &CreateCommentMsg{
		ContentID: contentID,
		AuthorID:  author.ID,
		Content:   "like me",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	comment := result.(*models.Comment)

	// Like twice: the duplicate insert is a successful no-op.
	for i := 0; i < 2; i++ {
		future = system.Root.RequestFuture(pid, &ToggleCommentLikeMsg{
			CommentID: comment.ID,
			UserID:    liker.ID,
			Like:      true,
		}, 5*time.Second)
		result, err = future.Result()
		require.NoError(t, err)
		status, ok := result.(*models.StatusResponse)
		require.True(t, ok, "unexpected response type %T", result)
		assert.True(t, status.Success)
	}

	stored, err := store.GetComment(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LikeCount)

	// Unlike twice: the second delete finds nothing and still succeeds.
	for i := 0; i < 2; i++ {
		future = system.Root.RequestFuture(pid, &ToggleCommentLikeMsg{
			CommentID: comment.ID,
			UserID:    liker.ID,
			Like:      false,
		}, 5*time.Second)
		result, err = future.Result()
		require.NoError(t, err)
		status, ok := result.(*models.StatusResponse)
		require.True(t, ok)
		assert.True(t, status.Success)
	}

	stored, err = store.GetComment(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LikeCount)
}

func TestAssembleThreadAnnotatesViewerLikes(t *testing.T) {
	store := newFakeStore()
	author := store.addUser("author")
	viewer := store.addUser("viewer")
	contentID := uuid.New()

	liked := &models.Comment{ID: uuid.New(), ContentID: contentID, UserID: author.ID, Content: "liked", CreatedAt: time.Now()}
	plain := &models.Comment{ID: uuid.New(), ContentID: contentID, UserID: author.ID, Content: "plain", CreatedAt: time.Now().Add(time.Second)}
	require.NoError(t, store.SaveComment(context.Background(), liked))
	require.NoError(t, store.SaveComment(context.Background(), plain))
	require.NoError(t, store.InsertCommentLike(context.Background(), liked.ID, viewer.ID))

	thread, err := AssembleThread(context.Background(), store, contentID, viewer.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.True(t, thread[0].UserHasLiked)
	assert.False(t, thread[1].UserHasLiked)
}

func TestAssembleThreadDegradesWhenLikeLookupFails(t *testing.T) {
	store := newFakeStore()
	author := store.addUser("author")
	viewer := store.addUser("viewer")
	contentID := uuid.New()

	comment := &models.Comment{ID: uuid.New(), ContentID: contentID, UserID: author.ID, Content: "still here", CreatedAt: time.Now()}
	require.NoError(t, store.SaveComment(context.Background(), comment))
	store.failLikedLookup = true

	thread, err := AssembleThread(context.Background(), store, contentID, viewer.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.False(t, thread[0].UserHasLiked)
}

func TestAssembleThreadSkipsAnnotationForAnonymousViewer(t *testing.T) {
	store := newFakeStore()
	author := store.addUser("author")
	contentID := uuid.New()

	comment := &models.Comment{ID: uuid.New(), ContentID: contentID, UserID: author.ID, Content: "public", CreatedAt: time.Now()}
	require.NoError(t, store.SaveComment(context.Background(), comment))
	// A failing like lookup must not matter when nobody is logged in.
	store.failLikedLookup = true

	thread, err := AssembleThread(context.Background(), store, contentID, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, thread, 1)
}
