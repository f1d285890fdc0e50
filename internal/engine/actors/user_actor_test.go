package actors

import (
	"testing"
	"time"

	"vibelink/internal/models"
	"vibelink/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnUserActor(t *testing.T, store *fakeStore) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewUserActor(store)
	})
	return system, system.Root.Spawn(props)
}

func TestUserActorRegisterAndLogin(t *testing.T) {
	store := newFakeStore()
	system, pid := spawnUserActor(t, store)

	future := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "alice",
		FullName: "Alice River",
		Email:    "alice@example.com",
		Password: "s3cret",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	user, ok := result.(*models.User)
	require.True(t, ok, "unexpected response type %T", result)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cret", user.HashedPassword)

	future = system.Root.RequestFuture(pid, &LoginMsg{
		Email:    "alice@example.com",
		Password: "s3cret",
	}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)

	login, ok := result.(*LoginResponse)
	require.True(t, ok, "unexpected response type %T", result)
	assert.True(t, login.Success)
	assert.Equal(t, user.ID.String(), login.UserID)
}

func TestUserActorLoginWrongPassword(t *testing.T) {
	store := newFakeStore()
	system, pid := spawnUserActor(t, store)

	future := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret",
	}, 5*time.Second)
	_, err := future.Result()
	require.NoError(t, err)

	future = system.Root.RequestFuture(pid, &LoginMsg{
		Email:    "alice@example.com",
		Password: "wrong",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	login, ok := result.(*LoginResponse)
	require.True(t, ok)
	assert.False(t, login.Success)
	assert.Equal(t, "Invalid credentials", login.Error)
}

func TestUserActorRegisterDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	system, pid := spawnUserActor(t, store)

	msg := &RegisterUserMsg{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret",
	}
	future := system.Root.RequestFuture(pid, msg, 5*time.Second)
	_, err := future.Result()
	require.NoError(t, err)

	future = system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "othername",
		Email:    "alice@example.com",
		Password: "s3cret",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected AppError, got %T", result)
	assert.Equal(t, utils.ErrUserAlreadyExists, appErr.Code)
}

func TestUserActorRegisterRejectsMissingFields(t *testing.T) {
	store := newFakeStore()
	system, pid := spawnUserActor(t, store)

	future := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Username: "  ",
		Email:    "alice@example.com",
		Password: "s3cret",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestUserActorGetProfileNotFound(t *testing.T) {
	store := newFakeStore()
	system, pid := spawnUserActor(t, store)

	future := system.Root.RequestFuture(pid, &GetUserProfileMsg{UserID: uuid.New()}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrUserNotFound, appErr.Code)
}

func TestUserActorUpdateAvatar(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("alice")
	system, pid := spawnUserActor(t, store)

	future := system.Root.RequestFuture(pid, &UpdateAvatarMsg{
		UserID:    user.ID,
		AvatarURL: "/uploads/pic.png",
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	updated, ok := result.(*models.User)
	require.True(t, ok, "unexpected response type %T", result)
	assert.Equal(t, "/uploads/pic.png", updated.AvatarURL)
}

func TestUserActorSearchClampsLimit(t *testing.T) {
	store := newFakeStore()
	for _, name := range []string{"alice1", "alice2", "bob"} {
		store.addUser(name)
	}
	system, pid := spawnUserActor(t, store)

	future := system.Root.RequestFuture(pid, &SearchUsersMsg{
		UsernamePrefix: "alice",
		Limit:          -5,
	}, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)

	users, ok := result.([]*models.User)
	require.True(t, ok, "unexpected response type %T", result)
	assert.Len(t, users, 2)

	future = system.Root.RequestFuture(pid, &SearchUsersMsg{UsernamePrefix: "nobody"}, 5*time.Second)
	result, err = future.Result()
	require.NoError(t, err)
	users, ok = result.([]*models.User)
	require.True(t, ok)
	assert.Empty(t, users)
}
