package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"vibelink/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// ProjectMatchDocument represents a project-scoped match row in MongoDB.
// These rows are written by the external matching process; this layer only
// reads them.
type ProjectMatchDocument struct {
	ID        string    `bson:"_id"`
	ProjectID string    `bson:"projectId"`
	CreatorID string    `bson:"creatorId"`
	UserID    string    `bson:"userId"`
	ChatID    *string   `bson:"chatId,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	Project   struct {
		Title       string `bson:"title"`
		Description string `bson:"description"`
		CoverURL    string `bson:"coverUrl,omitempty"`
	} `bson:"project"`
}

// DirectMatchDocument represents a direct user-to-user match row.
type DirectMatchDocument struct {
	ID        string    `bson:"_id"`
	User1ID   string    `bson:"user1Id"`
	User2ID   string    `bson:"user2Id"`
	ChatID    *string   `bson:"chatId,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

// GetProjectMatchesForUser retrieves all project matches where the user is
// on either side of the relation.
func (m *MongoDB) GetProjectMatchesForUser(ctx context.Context, userID uuid.UUID) ([]*models.ProjectMatch, error) {
	idStr := userID.String()
	filter := bson.M{
		"$or": []bson.M{
			{"creatorId": idStr},
			{"userId": idStr},
		},
	}

	cursor, err := m.ProjectMatches.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get project matches: %v", err)
	}
	defer cursor.Close(ctx)

	var matches []*models.ProjectMatch
	for cursor.Next(ctx) {
		var doc ProjectMatchDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode project match: %v", err)
		}
		match, err := convertProjectMatchDocumentToModel(&doc)
		if err != nil {
			// Malformed upstream row: log and drop, never propagate.
			log.Printf("Skipping malformed project match %s: %v", doc.ID, err)
			continue
		}
		matches = append(matches, match)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project matches: %v", err)
	}
	return matches, nil
}

// GetDirectMatchesForUser retrieves all direct matches where the user is on
// either side of the relation.
func (m *MongoDB) GetDirectMatchesForUser(ctx context.Context, userID uuid.UUID) ([]*models.DirectMatch, error) {
	idStr := userID.String()
	filter := bson.M{
		"$or": []bson.M{
			{"user1Id": idStr},
			{"user2Id": idStr},
		},
	}

	cursor, err := m.DirectMatches.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get direct matches: %v", err)
	}
	defer cursor.Close(ctx)

	var matches []*models.DirectMatch
	for cursor.Next(ctx) {
		var doc DirectMatchDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode direct match: %v", err)
		}
		match, err := convertDirectMatchDocumentToModel(&doc)
		if err != nil {
			log.Printf("Skipping malformed direct match %s: %v", doc.ID, err)
			continue
		}
		matches = append(matches, match)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate direct matches: %v", err)
	}
	return matches, nil
}

// AreUsersMatched reports whether any match row, project or direct, links
// the two users in either orientation.
func (m *MongoDB) AreUsersMatched(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	a, b := userA.String(), userB.String()

	directFilter := bson.M{
		"$or": []bson.M{
			{"user1Id": a, "user2Id": b},
			{"user1Id": b, "user2Id": a},
		},
	}
	count, err := m.DirectMatches.CountDocuments(ctx, directFilter)
	if err != nil {
		return false, fmt.Errorf("failed to count direct matches: %v", err)
	}
	if count > 0 {
		return true, nil
	}

	projectFilter := bson.M{
		"$or": []bson.M{
			{"creatorId": a, "userId": b},
			{"creatorId": b, "userId": a},
		},
	}
	count, err = m.ProjectMatches.CountDocuments(ctx, projectFilter)
	if err != nil {
		return false, fmt.Errorf("failed to count project matches: %v", err)
	}
	return count > 0, nil
}

func convertProjectMatchDocumentToModel(doc *ProjectMatchDocument) (*models.ProjectMatch, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid match ID: %v", err)
	}
	projectID, err := uuid.Parse(doc.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project ID: %v", err)
	}
	creatorID, err := uuid.Parse(doc.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid creator ID: %v", err)
	}
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	chatID, err := parseOptionalUUID(doc.ChatID)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %v", err)
	}

	return &models.ProjectMatch{
		ID:        id,
		ProjectID: projectID,
		CreatorID: creatorID,
		UserID:    userID,
		ChatID:    chatID,
		CreatedAt: doc.CreatedAt,
		Project: models.ProjectSnapshot{
			Title:       doc.Project.Title,
			Description: doc.Project.Description,
			CoverURL:    doc.Project.CoverURL,
		},
	}, nil
}

func convertDirectMatchDocumentToModel(doc *DirectMatchDocument) (*models.DirectMatch, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid match ID: %v", err)
	}
	user1ID, err := uuid.Parse(doc.User1ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user1 ID: %v", err)
	}
	user2ID, err := uuid.Parse(doc.User2ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user2 ID: %v", err)
	}

	chatID, err := parseOptionalUUID(doc.ChatID)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %v", err)
	}

	return &models.DirectMatch{
		ID:        id,
		User1ID:   user1ID,
		User2ID:   user2ID,
		ChatID:    chatID,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
