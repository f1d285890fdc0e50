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

// FriendRequestDocument represents a friend request row in MongoDB
type FriendRequestDocument struct {
	ID          string     `bson:"_id"`
	SenderID    string     `bson:"senderId"`
	ReceiverID  string     `bson:"receiverId"`
	Message     string     `bson:"message,omitempty"`
	Status      string     `bson:"status"`
	CreatedAt   time.Time  `bson:"createdAt"`
	RespondedAt *time.Time `bson:"respondedAt,omitempty"`
}

// SaveFriendRequest inserts a new friend request row.
func (m *MongoDB) SaveFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	doc := FriendRequestDocument{
		ID:          req.ID.String(),
		SenderID:    req.SenderID.String(),
		ReceiverID:  req.ReceiverID.String(),
		Message:     req.Message,
		Status:      string(req.Status),
		CreatedAt:   req.CreatedAt,
		RespondedAt: req.RespondedAt,
	}

	if _, err := m.FriendRequests.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save friend request: %v", err)
	}
	return nil
}

// GetFriendRequest retrieves a friend request by ID
func (m *MongoDB) GetFriendRequest(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error) {
	var doc FriendRequestDocument
	err := m.FriendRequests.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Friend request not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request: %v", err)
	}
	return convertFriendRequestDocumentToModel(&doc)
}

// FindActiveRequestBetween returns a pending or accepted request between the
// two users, in either direction, or a NOT_FOUND error if none exists.
func (m *MongoDB) FindActiveRequestBetween(ctx context.Context, userA, userB uuid.UUID) (*models.FriendRequest, error) {
	a, b := userA.String(), userB.String()
	filter := bson.M{
		"status": bson.M{"$in": []string{string(models.FriendRequestPending), string(models.FriendRequestAccepted)}},
		"$or": []bson.M{
			{"senderId": a, "receiverId": b},
			{"senderId": b, "receiverId": a},
		},
	}

	var doc FriendRequestDocument
	err := m.FriendRequests.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "No active friend request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find friend request: %v", err)
	}
	return convertFriendRequestDocumentToModel(&doc)
}

// UpdateFriendRequestStatus transitions a pending request to accepted or
// rejected and stamps the response time. Only pending rows transition.
func (m *MongoDB) UpdateFriendRequestStatus(ctx context.Context, id uuid.UUID, status models.FriendRequestStatus, respondedAt time.Time) (*models.FriendRequest, error) {
	filter := bson.M{"_id": id.String(), "status": string(models.FriendRequestPending)}
	update := bson.M{"$set": bson.M{
		"status":      string(status),
		"respondedAt": respondedAt,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc FriendRequestDocument
	err := m.FriendRequests.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Pending friend request not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update friend request: %v", err)
	}
	return convertFriendRequestDocumentToModel(&doc)
}

// DeletePendingFriendRequest removes a request, allowed only for the sender
// and only while the request is still pending.
func (m *MongoDB) DeletePendingFriendRequest(ctx context.Context, id, senderID uuid.UUID) error {
	filter := bson.M{
		"_id":      id.String(),
		"senderId": senderID.String(),
		"status":   string(models.FriendRequestPending),
	}

	result, err := m.FriendRequests.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete friend request: %v", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Pending friend request not found", nil)
	}
	return nil
}

// GetFriendRequestsForUser retrieves pending requests addressed to the user
// plus pending requests the user sent, newest first.
func (m *MongoDB) GetFriendRequestsForUser(ctx context.Context, userID uuid.UUID) ([]*models.FriendRequest, error) {
	idStr := userID.String()
	filter := bson.M{
		"status": string(models.FriendRequestPending),
		"$or": []bson.M{
			{"receiverId": idStr},
			{"senderId": idStr},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := m.FriendRequests.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend requests: %v", err)
	}
	defer cursor.Close(ctx)

	var requests []*models.FriendRequest
	for cursor.Next(ctx) {
		var doc FriendRequestDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode friend request: %v", err)
		}
		req, err := convertFriendRequestDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func convertFriendRequestDocumentToModel(doc *FriendRequestDocument) (*models.FriendRequest, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid friend request ID: %v", err)
	}
	senderID, err := uuid.Parse(doc.SenderID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender ID: %v", err)
	}
	receiverID, err := uuid.Parse(doc.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("invalid receiver ID: %v", err)
	}

	status := models.FriendRequestStatus(doc.Status)
	switch status {
	case models.FriendRequestPending, models.FriendRequestAccepted, models.FriendRequestRejected:
	default:
		return nil, fmt.Errorf("invalid friend request status: %q", doc.Status)
	}

	return &models.FriendRequest{
		ID:          id,
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Message:     doc.Message,
		Status:      status,
		CreatedAt:   doc.CreatedAt,
		RespondedAt: doc.RespondedAt,
	}, nil
}
