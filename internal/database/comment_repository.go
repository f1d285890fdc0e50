package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"vibelink/internal/models"
	"vibelink/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentDocument represents comment data in MongoDB
type CommentDocument struct {
	ID             string    `bson:"_id"`
	ContentID      string    `bson:"contentId"`
	UserID         string    `bson:"userId"`
	ParentID       *string   `bson:"parentId,omitempty"`
	Content        string    `bson:"content"`
	MentionedUsers []string  `bson:"mentionedUsers,omitempty"`
	LikeCount      int       `bson:"likeCount"`
	ReplyCount     int       `bson:"replyCount"`
	CreatedAt      time.Time `bson:"createdAt"`
}

// CommentLikeDocument is the (comment, user) join row whose existence means
// "has liked".
type CommentLikeDocument struct {
	ID        string    `bson:"_id"`
	CommentID string    `bson:"commentId"`
	UserID    string    `bson:"userId"`
	CreatedAt time.Time `bson:"createdAt"`
}

// SaveComment inserts a new comment. A reply also bumps the parent's
// replyCount, which the store owns as the authoritative counter.
func (m *MongoDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	doc := CommentDocument{
		ID:        comment.ID.String(),
		ContentID: comment.ContentID.String(),
		UserID:    comment.UserID.String(),
		Content:   comment.Content,
		LikeCount: comment.LikeCount,
		CreatedAt: comment.CreatedAt,
	}
	for _, id := range comment.MentionedUsers {
		doc.MentionedUsers = append(doc.MentionedUsers, id.String())
	}
	if comment.ParentID != nil {
		parentIDStr := comment.ParentID.String()
		doc.ParentID = &parentIDStr
	}

	if _, err := m.Comments.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save comment: %v", err)
	}

	if comment.ParentID != nil {
		_, err := m.Comments.UpdateOne(ctx,
			bson.M{"_id": comment.ParentID.String()},
			bson.M{"$inc": bson.M{"replyCount": 1}},
		)
		if err != nil {
			log.Printf("Failed to bump reply count for comment %s: %v", comment.ParentID, err)
		}
	}
	return nil
}

// GetComment retrieves a comment by ID
func (m *MongoDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var doc CommentDocument
	err := m.Comments.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Comment not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %v", err)
	}
	return convertCommentDocumentToModel(&doc)
}

// DeleteComment removes a comment, its like rows, and decrements the parent
// reply counter if it was a reply. Authorship checks happen above this layer.
func (m *MongoDB) DeleteComment(ctx context.Context, id uuid.UUID) error {
	var doc CommentDocument
	err := m.Comments.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return utils.NewAppError(utils.ErrNotFound, "Comment not found", err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete comment: %v", err)
	}

	if _, err := m.CommentLikes.DeleteMany(ctx, bson.M{"commentId": doc.ID}); err != nil {
		log.Printf("Failed to delete likes for comment %s: %v", doc.ID, err)
	}

	if doc.ParentID != nil {
		_, err := m.Comments.UpdateOne(ctx,
			bson.M{"_id": *doc.ParentID, "replyCount": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"replyCount": -1}},
		)
		if err != nil {
			log.Printf("Failed to decrement reply count for comment %s: %v", *doc.ParentID, err)
		}
	}
	return nil
}

// GetTopLevelComments retrieves comments with no parent for a content item,
// oldest first.
func (m *MongoDB) GetTopLevelComments(ctx context.Context, contentID uuid.UUID) ([]*models.Comment, error) {
	filter := bson.M{"contentId": contentID.String(), "parentId": nil}
	return m.findComments(ctx, filter)
}

// GetReplies retrieves the direct replies of a comment, oldest first.
func (m *MongoDB) GetReplies(ctx context.Context, parentID uuid.UUID) ([]*models.Comment, error) {
	return m.findComments(ctx, bson.M{"parentId": parentID.String()})
}

func (m *MongoDB) findComments(ctx context.Context, filter bson.M) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := m.Comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %v", err)
	}
	defer cursor.Close(ctx)

	var comments []*models.Comment
	for cursor.Next(ctx) {
		var doc CommentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode comment: %v", err)
		}
		comment, err := convertCommentDocumentToModel(&doc)
		if err != nil {
			log.Printf("Skipping malformed comment %s: %v", doc.ID, err)
			continue
		}
		comments = append(comments, comment)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %v", err)
	}
	return comments, nil
}

// GetLikedCommentIDs returns, as a set, which of the given comments the
// user has liked. One batched query over the whole id set.
func (m *MongoDB) GetLikedCommentIDs(ctx context.Context, userID uuid.UUID, commentIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool)
	if len(commentIDs) == 0 {
		return liked, nil
	}

	idStrs := make([]string, len(commentIDs))
	for i, id := range commentIDs {
		idStrs[i] = id.String()
	}

	filter := bson.M{
		"userId":    userID.String(),
		"commentId": bson.M{"$in": idStrs},
	}
	cursor, err := m.CommentLikes.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment likes: %v", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc CommentLikeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode comment like: %v", err)
		}
		commentID, err := uuid.Parse(doc.CommentID)
		if err != nil {
			continue
		}
		liked[commentID] = true
	}
	return liked, nil
}

// InsertCommentLike records a like and bumps the counter. A duplicate-key
// violation from a concurrent toggle is reported as DUPLICATE so the caller
// can reconcile it as "already liked" instead of failing.
func (m *MongoDB) InsertCommentLike(ctx context.Context, commentID, userID uuid.UUID) error {
	doc := CommentLikeDocument{
		ID:        uuid.New().String(),
		CommentID: commentID.String(),
		UserID:    userID.String(),
		CreatedAt: time.Now(),
	}

	if _, err := m.CommentLikes.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewAppError(utils.ErrDuplicate, "Comment already liked", err)
		}
		return fmt.Errorf("failed to insert comment like: %v", err)
	}

	_, err := m.Comments.UpdateOne(ctx,
		bson.M{"_id": commentID.String()},
		bson.M{"$inc": bson.M{"likeCount": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment like count: %v", err)
	}
	return nil
}

// DeleteCommentLike removes a like and decrements the counter. A missing
// like row surfaces as NOT_FOUND, which unlike flows treat as a no-op.
func (m *MongoDB) DeleteCommentLike(ctx context.Context, commentID, userID uuid.UUID) error {
	filter := bson.M{
		"commentId": commentID.String(),
		"userId":    userID.String(),
	}
	result, err := m.CommentLikes.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete comment like: %v", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Comment like not found", nil)
	}

	// Guard against underflow; the counter never drops below zero.
	_, err = m.Comments.UpdateOne(ctx,
		bson.M{"_id": commentID.String(), "likeCount": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"likeCount": -1}},
	)
	if err != nil {
		return fmt.Errorf("failed to decrement like count: %v", err)
	}
	return nil
}

func convertCommentDocumentToModel(doc *CommentDocument) (*models.Comment, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID: %v", err)
	}
	contentID, err := uuid.Parse(doc.ContentID)
	if err != nil {
		return nil, fmt.Errorf("invalid content ID: %v", err)
	}
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	var parentID *uuid.UUID
	if doc.ParentID != nil {
		parsed, err := uuid.Parse(*doc.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent ID: %v", err)
		}
		parentID = &parsed
	}

	var mentioned []uuid.UUID
	for _, s := range doc.MentionedUsers {
		mentionID, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid mentioned user ID: %v", err)
		}
		mentioned = append(mentioned, mentionID)
	}

	return &models.Comment{
		ID:             id,
		ContentID:      contentID,
		UserID:         userID,
		ParentID:       parentID,
		Content:        doc.Content,
		MentionedUsers: mentioned,
		LikeCount:      doc.LikeCount,
		ReplyCount:     doc.ReplyCount,
		CreatedAt:      doc.CreatedAt,
	}, nil
}
