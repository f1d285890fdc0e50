package database

import (
	"context"
	"fmt"
	"time"

	"vibelink/internal/models"
	"vibelink/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatMessageDocument represents the MongoDB document structure for chat messages
type ChatMessageDocument struct {
	ID        string    `bson:"_id"`
	ChatID    string    `bson:"chatId"`
	SenderID  string    `bson:"senderId"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
	IsRead    bool      `bson:"isRead"`
}

// SaveChatMessage inserts a new chat message.
func (m *MongoDB) SaveChatMessage(ctx context.Context, message *models.ChatMessage) error {
	doc := ChatMessageDocument{
		ID:        message.ID.String(),
		ChatID:    message.ChatID.String(),
		SenderID:  message.SenderID.String(),
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
		IsRead:    message.IsRead,
	}

	if _, err := m.Messages.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save message: %v", err)
	}
	return nil
}

// GetChatMessages retrieves all messages in a chat in server-assigned
// creation order.
func (m *MongoDB) GetChatMessages(ctx context.Context, chatID uuid.UUID) ([]*models.ChatMessage, error) {
	filter := bson.M{"chatId": chatID.String()}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := m.Messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat messages: %v", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.ChatMessage
	for cursor.Next(ctx) {
		var doc ChatMessageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode message: %v", err)
		}
		msg, err := convertChatMessageDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %v", err)
	}
	return messages, nil
}

// MarkChatMessageRead flags a message as read; only the recipient side may
// do so, which callers enforce by passing the reader's id.
func (m *MongoDB) MarkChatMessageRead(ctx context.Context, msgID, readerID uuid.UUID) error {
	filter := bson.M{
		"_id":      msgID.String(),
		"senderId": bson.M{"$ne": readerID.String()},
	}
	result, err := m.Messages.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return fmt.Errorf("failed to mark message read: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Message not found", nil)
	}
	return nil
}

func convertChatMessageDocumentToModel(doc *ChatMessageDocument) (*models.ChatMessage, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid message ID: %v", err)
	}
	chatID, err := uuid.Parse(doc.ChatID)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %v", err)
	}
	senderID, err := uuid.Parse(doc.SenderID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender ID: %v", err)
	}

	return &models.ChatMessage{
		ID:        id,
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
		IsRead:    doc.IsRead,
	}, nil
}
