// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"vibelink/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store defines the row-store operations the engine depends on. Filters are
// conjunctions of equality/inclusion predicates expressed per method.
type Store interface {
	// Connection
	Close(ctx context.Context) error

	// User methods
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	SearchUsersByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error)

	// Match methods (rows are created by the external matching process)
	GetProjectMatchesForUser(ctx context.Context, userID uuid.UUID) ([]*models.ProjectMatch, error)
	GetDirectMatchesForUser(ctx context.Context, userID uuid.UUID) ([]*models.DirectMatch, error)
	AreUsersMatched(ctx context.Context, userA, userB uuid.UUID) (bool, error)

	// Friend request methods
	SaveFriendRequest(ctx context.Context, req *models.FriendRequest) error
	GetFriendRequest(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error)
	FindActiveRequestBetween(ctx context.Context, userA, userB uuid.UUID) (*models.FriendRequest, error)
	UpdateFriendRequestStatus(ctx context.Context, id uuid.UUID, status models.FriendRequestStatus, respondedAt time.Time) (*models.FriendRequest, error)
	DeletePendingFriendRequest(ctx context.Context, id, senderID uuid.UUID) error
	GetFriendRequestsForUser(ctx context.Context, userID uuid.UUID) ([]*models.FriendRequest, error)

	// Comment methods
	SaveComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
	GetTopLevelComments(ctx context.Context, contentID uuid.UUID) ([]*models.Comment, error)
	GetReplies(ctx context.Context, parentID uuid.UUID) ([]*models.Comment, error)
	GetLikedCommentIDs(ctx context.Context, userID uuid.UUID, commentIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	InsertCommentLike(ctx context.Context, commentID, userID uuid.UUID) error
	DeleteCommentLike(ctx context.Context, commentID, userID uuid.UUID) error

	// Chat message methods
	SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error
	GetChatMessages(ctx context.Context, chatID uuid.UUID) ([]*models.ChatMessage, error)
	MarkChatMessageRead(ctx context.Context, msgID, readerID uuid.UUID) error
}

type MongoDB struct {
	Client         *mongo.Client
	Users          *mongo.Collection
	ProjectMatches *mongo.Collection
	DirectMatches  *mongo.Collection
	FriendRequests *mongo.Collection
	Comments       *mongo.Collection
	CommentLikes   *mongo.Collection
	Messages       *mongo.Collection
}

func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	log.Println("Successfully connected to MongoDB!")

	db := client.Database(dbName)
	return &MongoDB{
		Client:         client,
		Users:          db.Collection("users"),
		ProjectMatches: db.Collection("project_matches"),
		DirectMatches:  db.Collection("direct_matches"),
		FriendRequests: db.Collection("friend_requests"),
		Comments:       db.Collection("comments"),
		CommentLikes:   db.Collection("comment_likes"),
		Messages:       db.Collection("messages"),
	}, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the engine relies on. The unique
// (commentId,userId) index is the backstop for concurrent like toggles.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	if _, err := m.Users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return fmt.Errorf("failed to create user indexes: %v", err)
	}

	if _, err := m.CommentLikes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "commentId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create comment like index: %v", err)
	}

	if _, err := m.Comments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "contentId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "parentId", Value: 1}, {Key: "createdAt", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create comment indexes: %v", err)
	}

	if _, err := m.FriendRequests.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to create friend request index: %v", err)
	}

	if _, err := m.Messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chatId", Value: 1}, {Key: "createdAt", Value: 1}},
	}); err != nil {
		return fmt.Errorf("failed to create message index: %v", err)
	}

	if _, err := m.ProjectMatches.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "creatorId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create project match indexes: %v", err)
	}

	if _, err := m.DirectMatches.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user1Id", Value: 1}}},
		{Keys: bson.D{{Key: "user2Id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create direct match indexes: %v", err)
	}

	return nil
}
