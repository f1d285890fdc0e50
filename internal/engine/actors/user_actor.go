package actors

import (
	stdctx "context"
	"log"
	"strings"
	"time"

	"vibelink/internal/database"
	"vibelink/internal/models"
	"vibelink/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Message types for UserActor
type (
	RegisterUserMsg struct {
		Username string `json:"username"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	LoginMsg struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	GetUserProfileMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	UpdateAvatarMsg struct {
		UserID    uuid.UUID `json:"userId"`
		AvatarURL string    `json:"avatarUrl"`
	}

	SearchUsersMsg struct {
		UsernamePrefix string `json:"usernamePrefix"`
		Limit          int    `json:"limit"`
	}
)

// LoginResponse is returned for login attempts.
type LoginResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UserActor manages profile registration, login and lookup.
type UserActor struct {
	store database.Store
}

func NewUserActor(store database.Store) actor.Actor {
	return &UserActor{store: store}
}

func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("UserActor started with PID: %v", context.Self())

	case *RegisterUserMsg:
		a.handleRegister(context, msg)

	case *LoginMsg:
		a.handleLogin(context, msg)

	case *GetUserProfileMsg:
		a.handleGetProfile(context, msg)

	case *UpdateAvatarMsg:
		a.handleUpdateAvatar(context, msg)

	case *SearchUsersMsg:
		a.handleSearchUsers(context, msg)
	}
}

func (a *UserActor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	ctx := stdctx.Background()

	username := strings.TrimSpace(msg.Username)
	email := strings.TrimSpace(msg.Email)
	if username == "" || email == "" || msg.Password == "" {
		context.Respond(utils.NewValidationError("username, email and password are required"))
		return
	}

	if _, err := a.store.GetUserByEmail(ctx, email); err == nil {
		context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil))
		return
	}
	if _, err := a.store.GetUserByUsername(ctx, username); err == nil {
		context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Username already taken", nil))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(msg.Password), bcrypt.DefaultCost)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to hash password", err))
		return
	}

	now := time.Now()
	user := &models.User{
		ID:             uuid.New(),
		Username:       username,
		FullName:       strings.TrimSpace(msg.FullName),
		Email:          email,
		HashedPassword: string(hashed),
		Roles:          []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := a.store.SaveUser(ctx, user); err != nil {
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to save user", err))
		return
	}

	log.Printf("Registered user %s (%s)", user.Username, user.ID)
	context.Respond(user)
}

func (a *UserActor) handleLogin(context actor.Context, msg *LoginMsg) {
	ctx := stdctx.Background()

	user, err := a.store.GetUserByEmail(ctx, msg.Email)
	if err != nil {
		context.Respond(&LoginResponse{Success: false, Error: "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
		context.Respond(&LoginResponse{Success: false, Error: "Invalid credentials"})
		return
	}

	context.Respond(&LoginResponse{Success: true, UserID: user.ID.String()})
}

func (a *UserActor) handleGetProfile(context actor.Context, msg *GetUserProfileMsg) {
	ctx := stdctx.Background()

	user, err := a.store.GetUser(ctx, msg.UserID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrUserNotFound) {
			context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
			return
		}
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to fetch user", err))
		return
	}
	context.Respond(user)
}

func (a *UserActor) handleUpdateAvatar(context actor.Context, msg *UpdateAvatarMsg) {
	ctx := stdctx.Background()

	user, err := a.store.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}

	user.AvatarURL = msg.AvatarURL
	user.UpdatedAt = time.Now()
	if err := a.store.SaveUser(ctx, user); err != nil {
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to update avatar", err))
		return
	}
	context.Respond(user)
}

func (a *UserActor) handleSearchUsers(context actor.Context, msg *SearchUsersMsg) {
	ctx := stdctx.Background()

	limit := msg.Limit
	if limit <= 0 || limit > 20 {
		limit = 10
	}

	users, err := a.store.SearchUsersByUsernamePrefix(ctx, msg.UsernamePrefix, limit)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrStore, "Failed to search users", err))
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	context.Respond(users)
}
