package database

import (
	"context"
	"fmt"
	"time"

	"vibelink/internal/models"
	"vibelink/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDocument represents user data in MongoDB
type UserDocument struct {
	ID             string    `bson:"_id"`
	Username       string    `bson:"username"`
	FullName       string    `bson:"fullName"`
	Email          string    `bson:"email"`
	HashedPassword string    `bson:"passwordHash"`
	AvatarURL      string    `bson:"avatarUrl,omitempty"`
	Roles          []string  `bson:"roles"`
	IsVerified     bool      `bson:"isVerified"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := UserDocument{
		ID:             user.ID.String(),
		Username:       user.Username,
		FullName:       user.FullName,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		AvatarURL:      user.AvatarURL,
		Roles:          user.Roles,
		IsVerified:     user.IsVerified,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}

	opts := options.Update().SetUpsert(true)
	_, err := m.Users.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewAppError(utils.ErrUserAlreadyExists, "Username or email already taken", err)
		}
		return fmt.Errorf("failed to save user: %v", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id.String()})
}

// GetUserByEmail retrieves a user by email
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"email": email})
}

// GetUserByUsername retrieves a user by username
func (m *MongoDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"username": username})
}

func (m *MongoDB) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc UserDocument
	err := m.Users.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return convertUserDocumentToModel(&doc)
}

// SearchUsersByUsernamePrefix returns users whose username starts with the
// given prefix, for mention autocomplete.
func (m *MongoDB) SearchUsersByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	filter := bson.M{"username": bson.M{"$regex": "^" + escapeRegex(prefix)}}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "username", Value: 1}})

	cursor, err := m.Users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		user, err := convertUserDocumentToModel(&doc)
		if err != nil {
			continue // skip malformed rows rather than failing the search
		}
		users = append(users, user)
	}
	return users, nil
}

func convertUserDocumentToModel(doc *UserDocument) (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}
	if doc.Username == "" {
		return nil, fmt.Errorf("user %s missing username", doc.ID)
	}

	roles := doc.Roles
	if roles == nil {
		roles = []string{}
	}

	return &models.User{
		ID:             id,
		Username:       doc.Username,
		FullName:       doc.FullName,
		Email:          doc.Email,
		HashedPassword: doc.HashedPassword,
		AvatarURL:      doc.AvatarURL,
		Roles:          roles,
		IsVerified:     doc.IsVerified,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

// escapeRegex quotes regex metacharacters so a prefix search stays literal.
func escapeRegex(s string) string {
	special := `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(special); j++ {
			if s[i] == special[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
